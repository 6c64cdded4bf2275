package domain

import (
	"time"

	"github.com/agizo/agizo-api/internal/shared/money"
)

// OrderCreatedTopic is where OrderCreated events are published.
const OrderCreatedTopic = "order.created"

// OrderCreated is emitted once an order and its items are committed.
type OrderCreated struct {
	EventID    string       `json:"event_id"`
	OrderID    int64        `json:"order_id"`
	CustomerID *int64       `json:"customer_id"`
	Total      money.Amount `json:"total"`
	ItemCount  int          `json:"item_count"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewOrderCreated snapshots order into an event. eventID is supplied by the caller.
func NewOrderCreated(eventID string, order *Order) OrderCreated {
	return OrderCreated{
		EventID:    eventID,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total(),
		ItemCount:  len(order.Items),
		OccurredAt: order.CreatedAt,
	}
}
