package ports

import (
	"context"

	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
	"github.com/agizo/agizo-api/internal/shared/money"
)

// ItemInput is one requested line item. Nil fields were absent from the request.
type ItemInput struct {
	Name     *string
	Price    *money.Amount
	Quantity *int
}

// PlaceOrderInput is an order submission. A nil CustomerPhoneNumber was absent from the request.
type PlaceOrderInput struct {
	CustomerPhoneNumber *string
	Items               []ItemInput
	IdempotencyKey      string
}

// OrderDetails is an order with the customer it belongs to, if any.
type OrderDetails struct {
	Order    *domain.Order
	Customer *customerdomain.Customer
}

// NotificationOutcome reports what happened to the post-commit SMS.
type NotificationOutcome struct {
	Skipped bool
	Err     error
}

type PlaceOrderResult struct {
	OrderDetails
	// Replayed is set when an idempotency key matched an earlier identical request.
	Replayed     bool
	Stage        string
	Notification NotificationOutcome
	PublishErr   error
	// IdempotencyErr is set when the reserved key could not be completed after the order was committed.
	IdempotencyErr error
}

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	GetOrder(ctx context.Context, id int64) (*OrderDetails, error)
}
