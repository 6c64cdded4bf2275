package domain

import (
	"github.com/agizo/agizo-api/internal/shared/money"
	"github.com/agizo/agizo-api/internal/shared/validation"
)

const (
	MaxItemNameLength = 50
	MinQuantity       = 1
	// MaxQuantity matches a positive smallint column.
	MaxQuantity = 32767

	// Price columns are numeric(5,2).
	PriceMaxDigits        = 5
	PriceMaxDecimalPlaces = 2
)

// DefaultMinItemPrice is the lowest unit price accepted for a line item.
var DefaultMinItemPrice = money.MustNew("5.00")

// Rules carries the tunable item constraints.
type Rules struct {
	MinItemPrice money.Amount
}

func DefaultRules() Rules {
	return Rules{MinItemPrice: DefaultMinItemPrice}
}

// CheckName appends violations for a line item name.
func (r Rules) CheckName(errs *validation.Errors, field string, name *string) {
	if name == nil {
		errs.Add(field, validation.CodeRequired, validation.MsgRequired())
		return
	}
	validation.Text(errs, field, *name, 0, MaxItemNameLength)
}

// CheckPrice appends at most one precision violation, then the floor check.
func (r Rules) CheckPrice(errs *validation.Errors, field string, price *money.Amount) {
	if price == nil {
		errs.Add(field, validation.CodeRequired, validation.MsgRequired())
		return
	}
	wholeLimit := PriceMaxDigits - PriceMaxDecimalPlaces
	switch {
	case price.Digits() > PriceMaxDigits:
		errs.Add(field, validation.CodeMaxDigits, validation.MsgMaxDigits(PriceMaxDigits))
	case price.DecimalPlaces() > PriceMaxDecimalPlaces:
		errs.Add(field, validation.CodeMaxDecimalPlaces, validation.MsgMaxDecimalPlaces(PriceMaxDecimalPlaces))
	case price.WholeDigits() > wholeLimit:
		errs.Add(field, validation.CodeMaxWholeDigits, validation.MsgMaxWholeDigits(wholeLimit))
	}
	if price.LessThan(r.MinItemPrice) {
		errs.Add(field, validation.CodeMinValue, validation.MsgMinValue(r.MinItemPrice.String()))
	}
}

func (r Rules) CheckQuantity(errs *validation.Errors, field string, quantity *int) {
	if quantity == nil {
		errs.Add(field, validation.CodeRequired, validation.MsgRequired())
		return
	}
	if *quantity < MinQuantity {
		errs.Add(field, validation.CodeMinValue, validation.MsgMinValue(MinQuantity))
	}
	if *quantity > MaxQuantity {
		errs.Add(field, validation.CodeMaxValue, validation.MsgMaxValue(MaxQuantity))
	}
}
