package ports

import (
	"context"
	"errors"

	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrPersistence wraps every storage failure while writing an order.
	ErrPersistence = errors.New("order persistence failed")
	ErrEmptyOrder  = errors.New("order has no items")
)

// Repository persists orders together with their line items.
type Repository interface {
	// CreateWithItems writes the order row and every item row in one transaction.
	// A nil customer stores a NULL customer id.
	CreateWithItems(ctx context.Context, customer *customerdomain.Customer, items []domain.LineItem) (*domain.Order, error)
	// GetByID returns the order with items sorted by price, highest first.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// ListByCustomer returns the customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)
}
