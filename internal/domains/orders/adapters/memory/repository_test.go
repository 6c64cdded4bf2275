package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/ports"
	"github.com/agizo/agizo-api/internal/shared/money"
)

func sampleItems() []domain.LineItem {
	return []domain.LineItem{
		{Name: "Soap", Price: money.MustNew("19.30"), Quantity: 3},
		{Name: "Rice", Price: money.MustNew("35.99"), Quantity: 4},
		{Name: "Salt", Price: money.MustNew("11.50"), Quantity: 10},
	}
}

func TestCreateWithItems_AssignsIDs(t *testing.T) {
	repo := NewRepository()
	customer := &customerdomain.Customer{ID: 7}

	order, err := repo.CreateWithItems(context.Background(), customer, sampleItems())
	require.NoError(t, err)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, int64(7), *order.CustomerID)
	assert.Equal(t, int64(1), order.ID)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
		assert.NotZero(t, item.ID)
	}
	assert.Equal(t, "316.86", order.Total().String())
}

func TestCreateWithItems_NilCustomer(t *testing.T) {
	repo := NewRepository()
	order, err := repo.CreateWithItems(context.Background(), nil, sampleItems())
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID)
}

func TestCreateWithItems_Empty(t *testing.T) {
	repo := NewRepository()
	_, err := repo.CreateWithItems(context.Background(), nil, nil)
	require.ErrorIs(t, err, ports.ErrPersistence)
	require.ErrorIs(t, err, ports.ErrEmptyOrder)
	assert.Zero(t, repo.Count())
}

func TestCreateWithItems_FaultLeavesNothing(t *testing.T) {
	repo := NewRepository()
	repo.WithItemFault(func(index int, _ domain.LineItem) error {
		if index == 2 {
			return errors.New("disk full")
		}
		return nil
	})

	_, err := repo.CreateWithItems(context.Background(), nil, sampleItems())
	require.ErrorIs(t, err, ports.ErrPersistence)
	assert.Zero(t, repo.Count())

	_, err = repo.GetByID(context.Background(), 1)
	require.ErrorIs(t, err, ports.ErrNotFound)

	repo.WithItemFault(nil)
	order, err := repo.CreateWithItems(context.Background(), nil, sampleItems())
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
}

func TestGetByID_SortsByPriceDesc(t *testing.T) {
	repo := NewRepository()
	created, err := repo.CreateWithItems(context.Background(), nil, sampleItems())
	require.NoError(t, err)

	order, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 3)
	assert.Equal(t, "Rice", order.Items[0].Name)
	assert.Equal(t, "Soap", order.Items[1].Name)
	assert.Equal(t, "Salt", order.Items[2].Name)
}

func TestListByCustomer_NewestFirst(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	customer := &customerdomain.Customer{ID: 3}
	first, err := repo.CreateWithItems(ctx, customer, sampleItems())
	require.NoError(t, err)
	second, err := repo.CreateWithItems(ctx, customer, sampleItems()[:1])
	require.NoError(t, err)
	_, err = repo.CreateWithItems(ctx, &customerdomain.Customer{ID: 4}, sampleItems())
	require.NoError(t, err)

	orders, err := repo.ListByCustomer(ctx, 3)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}
