package mapper

import (
	"time"

	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
	orderports "github.com/agizo/agizo-api/internal/domains/orders/ports"
	"github.com/agizo/agizo-api/internal/shared/money"
)

const (
	StatusSuccess = "success"
	// DescCreateOrder labels the creation envelope.
	DescCreateOrder = "create order for customer user"
)

// PlaceOrderRequest is the body of POST /api/v1/orders/. Pointer fields tell an absent
// value from a blank one.
type PlaceOrderRequest struct {
	CustomerPhoneNumber *string       `json:"customer_phone_number"`
	Items               []ItemRequest `json:"items"`
}

// ItemRequest keeps every field optional so missing values are reported as required.
type ItemRequest struct {
	Name     *string       `json:"name"`
	Price    *money.Amount `json:"price"`
	Quantity *int          `json:"quantity"`
}

type CustomerRef struct {
	PhoneNumber string `json:"phone_number"`
}

type OrderSummary struct {
	ID        int64        `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Customer  *CustomerRef `json:"customer"`
}

type OrderEnvelope struct {
	Status string       `json:"status"`
	Desc   string       `json:"desc"`
	Order  OrderSummary `json:"order"`
}

type Item struct {
	Name     string       `json:"name"`
	Price    money.Amount `json:"price"`
	Quantity int          `json:"quantity"`
	Amount   money.Amount `json:"amount"`
}

// Order is the detail view; money fields render as two-place strings.
type Order struct {
	ID        int64        `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Customer  *CustomerRef `json:"customer"`
	Items     []Item       `json:"items"`
	Total     money.Amount `json:"total"`
}

func ToPlaceOrderInput(req PlaceOrderRequest, idempotencyKey string) orderports.PlaceOrderInput {
	items := make([]orderports.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderports.ItemInput{Name: item.Name, Price: item.Price, Quantity: item.Quantity})
	}
	return orderports.PlaceOrderInput{
		CustomerPhoneNumber: req.CustomerPhoneNumber,
		Items:               items,
		IdempotencyKey:      idempotencyKey,
	}
}

func FromPlaceOrderResult(result *orderports.PlaceOrderResult) OrderEnvelope {
	env := OrderEnvelope{Status: StatusSuccess, Desc: DescCreateOrder}
	if result == nil || result.Order == nil {
		return env
	}
	env.Order = OrderSummary{
		ID:        result.Order.ID,
		CreatedAt: result.Order.CreatedAt,
		Customer:  customerRef(result.Customer),
	}
	return env
}

func FromOrderDetails(details *orderports.OrderDetails) Order {
	if details == nil || details.Order == nil {
		return Order{Items: []Item{}, Total: domain.ComputeTotal(nil)}
	}
	order := details.Order
	out := Order{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Customer:  customerRef(details.Customer),
		Items:     make([]Item, 0, len(order.Items)),
		Total:     order.Total(),
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, Item{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Amount:   item.Amount(),
		})
	}
	return out
}

func customerRef(customer *customerdomain.Customer) *CustomerRef {
	if customer == nil {
		return nil
	}
	return &CustomerRef{PhoneNumber: customer.PhoneNumber}
}
