package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agizo/agizo-api/internal/shared/money"
	"github.com/agizo/agizo-api/internal/shared/validation"
)

func item(price string, qty int) LineItem {
	return LineItem{Name: "x", Price: money.MustNew(price), Quantity: qty}
}

func TestComputeTotal_Exact(t *testing.T) {
	items := []LineItem{item("19.30", 3), item("35.99", 4), item("11.50", 10)}
	assert.Equal(t, "316.86", ComputeTotal(items).String())

	order := &Order{Items: items}
	assert.Equal(t, "316.86", order.Total().String())
}

func TestComputeTotal_Empty(t *testing.T) {
	assert.Equal(t, "0.00", ComputeTotal(nil).String())
	var order *Order
	assert.Equal(t, "0.00", order.Total().String())
}

func TestLineItemAmount(t *testing.T) {
	assert.Equal(t, "30.00", item("10", 3).Amount().String())
	assert.Equal(t, "30.15", LineItem{Price: money.FromFloat(10.05), Quantity: 3}.Amount().String())
}

func TestOrderTotal_TracksItemChanges(t *testing.T) {
	order := &Order{Items: []LineItem{item("10.00", 1)}}
	assert.Equal(t, "10.00", order.Total().String())
	order.Items = append(order.Items, item("5.50", 2))
	assert.Equal(t, "21.00", order.Total().String())
}

func TestRules_CheckPrice(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		price string
		code  string
	}{
		{"4.99", validation.CodeMinValue},
		{"10.001", validation.CodeMaxDecimalPlaces},
		{"1000.00", validation.CodeMaxDigits},
		{"1000", validation.CodeMaxWholeDigits},
	}
	for _, tc := range cases {
		t.Run(tc.price, func(t *testing.T) {
			var errs validation.Errors
			price := money.MustNew(tc.price)
			rules.CheckPrice(&errs, "price", &price)
			assert.True(t, errs.Has("price", tc.code), "codes: %v", errs.Codes())
		})
	}

	var errs validation.Errors
	ok := money.MustNew("999.99")
	rules.CheckPrice(&errs, "price", &ok)
	floor := money.MustNew("5")
	rules.CheckPrice(&errs, "price", &floor)
	assert.Empty(t, errs)
}

func TestRules_CheckQuantity(t *testing.T) {
	rules := DefaultRules()
	for _, qty := range []int{0, -1} {
		var errs validation.Errors
		rules.CheckQuantity(&errs, "quantity", &qty)
		assert.True(t, errs.Has("quantity", validation.CodeMinValue))
	}
	var errs validation.Errors
	big := MaxQuantity + 1
	rules.CheckQuantity(&errs, "quantity", &big)
	assert.True(t, errs.Has("quantity", validation.CodeMaxValue))

	errs = nil
	rules.CheckQuantity(&errs, "quantity", nil)
	assert.True(t, errs.Has("quantity", validation.CodeRequired))
}

func TestRules_CheckName(t *testing.T) {
	rules := DefaultRules()
	var errs validation.Errors
	blank := "  "
	rules.CheckName(&errs, "name", &blank)
	assert.True(t, errs.Has("name", validation.CodeBlank))

	errs = nil
	long := "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijk"
	rules.CheckName(&errs, "name", &long)
	assert.True(t, errs.Has("name", validation.CodeMaxLength))
}
