package ports

import (
	"context"
	"time"

	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
)

// CustomerDirectory resolves customers for the order workflow. Absent customers
// are reported with the customers context's ErrNotFound.
type CustomerDirectory interface {
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*customerdomain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*customerdomain.Customer, error)
}

// OrderPlaced is what a notifier needs to confirm an order to its customer.
type OrderPlaced struct {
	OrderID      int64
	CustomerName string
	PhoneNumber  string
	CreatedAt    time.Time
}

// Notifier is invoked strictly after the order is committed.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, event OrderPlaced) error
}

// EventPublisher announces committed orders to other systems.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event domain.OrderCreated) error
}
