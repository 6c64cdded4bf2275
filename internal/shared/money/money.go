// Package money holds the exact decimal amount type used for prices and totals.
package money

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every rounded amount carries.
const Scale = 2

var ErrInvalidAmount = errors.New("invalid monetary amount")

// Amount is an exact decimal value. Arithmetic never passes through binary floats.
type Amount struct {
	d decimal.Decimal
}

// Zero returns 0.
func Zero() Amount {
	return Amount{d: decimal.Zero}
}

// New parses a decimal literal such as "19.30".
func New(value string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	return Amount{d: d}, nil
}

// MustNew is New for literals known to be valid; it panics otherwise.
func MustNew(value string) Amount {
	a, err := New(value)
	if err != nil {
		panic(err)
	}
	return a
}

// FromFloat converts using the shortest decimal representation of f, so 10.05 stays 10.05.
func FromFloat(f float64) Amount {
	return Amount{d: decimal.NewFromFloat(f)}
}

// FromInt converts a whole number.
func FromInt(v int64) Amount {
	return Amount{d: decimal.NewFromInt(v)}
}

func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// MulQuantity multiplies by a unit count without rounding.
func (a Amount) MulQuantity(quantity int) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(int64(quantity)))}
}

// Round rounds to Scale places, half to even.
func (a Amount) Round() Amount {
	return Amount{d: a.d.RoundBank(Scale)}
}

func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// Digits reports the total digit count the way a numeric(p,s) column counts it.
func (a Amount) Digits() int {
	digits, _ := a.precision()
	return digits
}

// DecimalPlaces reports the number of fractional digits as written, so "10.50" has 2.
func (a Amount) DecimalPlaces() int {
	_, places := a.precision()
	return places
}

// WholeDigits reports the digits before the decimal point.
func (a Amount) WholeDigits() int {
	digits, places := a.precision()
	return digits - places
}

func (a Amount) precision() (digits, places int) {
	coefficient := a.d.Coefficient()
	n := len(coefficient.Abs(coefficient).String())
	exp := int(a.d.Exponent())
	if exp >= 0 {
		return n + exp, 0
	}
	places = -exp
	if n > places {
		return n, places
	}
	return places, places
}

// String renders the amount with exactly Scale fractional digits, e.g. "30.00".
func (a Amount) String() string {
	return a.d.StringFixedBank(Scale)
}

// Float64 is lossy and only meant for metrics attributes.
func (a Amount) Float64() float64 {
	f, _ := a.d.Float64()
	return f
}

// MarshalJSON writes the amount as a fixed-scale JSON string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string without float conversion.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = bytes.TrimSpace(raw[1 : len(raw)-1])
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	parsed, err := New(string(raw))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Scan implements sql.Scanner for numeric columns.
func (a *Amount) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	a.d = d
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}
