package domain

import (
	"time"

	"github.com/agizo/agizo-api/internal/shared/money"
)

// LineItem is one priced product row of an order.
type LineItem struct {
	ID       int64
	OrderID  int64
	Name     string
	Price    money.Amount
	Quantity int
}

// Amount is price times quantity, rounded once to two places.
func (li LineItem) Amount() money.Amount {
	return li.Price.MulQuantity(li.Quantity).Round()
}

// Order groups line items placed by a customer. CustomerID is nil only for orders
// accepted without a known customer.
type Order struct {
	ID         int64
	CustomerID *int64
	CreatedAt  time.Time
	Items      []LineItem
}

// Total is recomputed from the items on every call.
func (o *Order) Total() money.Amount {
	if o == nil {
		return money.Zero().Round()
	}
	return ComputeTotal(o.Items)
}

// ComputeTotal sums price times quantity exactly and rounds the sum to two places.
// An empty slice totals 0.00.
func ComputeTotal(items []LineItem) money.Amount {
	total := money.Zero()
	for _, item := range items {
		total = total.Add(item.Price.MulQuantity(item.Quantity))
	}
	return total.Round()
}

// HasCustomer reports whether the order is linked to a customer profile.
func (o *Order) HasCustomer() bool {
	return o != nil && o.CustomerID != nil
}
