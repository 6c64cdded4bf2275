package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. Writes are staged and only
// become visible once every item has been accepted.
type Repository struct {
	mu         sync.RWMutex
	orders     map[int64]*domain.Order
	nextID     int64
	nextItemID int64
	now        func() time.Time
	// itemFault, when set, is consulted before each staged item and aborts the write on error.
	itemFault func(index int, item domain.LineItem) error
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]*domain.Order{}, now: time.Now}
}

// WithItemFault installs a hook that can fail the write part-way through the items.
func (r *Repository) WithItemFault(fault func(index int, item domain.LineItem) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemFault = fault
}

func (r *Repository) CreateWithItems(_ context.Context, customer *customerdomain.Customer, items []domain.LineItem) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %w", ports.ErrPersistence, ports.ErrEmptyOrder)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	orderID := r.nextID + 1
	itemID := r.nextItemID
	staged := &domain.Order{ID: orderID, CreatedAt: r.now().UTC(), Items: make([]domain.LineItem, 0, len(items))}
	if customer != nil {
		id := customer.ID
		staged.CustomerID = &id
	}
	for i, item := range items {
		if r.itemFault != nil {
			if err := r.itemFault(i, item); err != nil {
				return nil, fmt.Errorf("%w: %w", ports.ErrPersistence, err)
			}
		}
		itemID++
		item.ID = itemID
		item.OrderID = orderID
		staged.Items = append(staged.Items, item)
	}

	r.nextID = orderID
	r.nextItemID = itemID
	r.orders[orderID] = staged
	return cloneOrder(staged), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := cloneOrder(order)
	sortItems(clone.Items)
	return clone, nil
}

func (r *Repository) ListByCustomer(_ context.Context, customerID int64) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0)
	for _, o := range r.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			clone := cloneOrder(o)
			sortItems(clone.Items)
			list = append(list, clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

// Count reports the number of committed orders.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func sortItems(items []domain.LineItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Price.Cmp(items[j].Price) > 0 })
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	if o.CustomerID != nil {
		id := *o.CustomerID
		clone.CustomerID = &id
	}
	clone.Items = append([]domain.LineItem(nil), o.Items...)
	return &clone
}
