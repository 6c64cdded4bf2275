package domain

import (
	"strings"
	"time"

	"github.com/agizo/agizo-api/internal/shared/validation"
)

const (
	MaxNameLength        = 50
	MinPhoneNumberLength = 10
	MaxPhoneNumberLength = 15
)

// Customer is the profile orders are placed against. Each account owns at most one.
type Customer struct {
	ID          int64
	AccountID   int64
	Name        string
	PhoneNumber string
	CreatedAt   time.Time
}

// Profile pairs a customer with the account that owns it.
type Profile struct {
	Customer *Customer
	Account  *Account
}

// NewCustomer validates and builds a profile for accountID.
func NewCustomer(accountID int64, name, phoneNumber string) (*Customer, error) {
	var errs validation.Errors
	ValidateProfile(&errs, &name, &phoneNumber)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &Customer{
		AccountID:   accountID,
		Name:        strings.TrimSpace(name),
		PhoneNumber: NormalizePhoneNumber(phoneNumber),
	}, nil
}

// ValidateProfile appends name and phone_number violations to errs. A nil field is required.
func ValidateProfile(errs *validation.Errors, name, phoneNumber *string) {
	validation.RequiredText(errs, "name", name, 0, MaxNameLength)
	validation.RequiredText(errs, "phone_number", phoneNumber, MinPhoneNumberLength, MaxPhoneNumberLength)
}

// NormalizePhoneNumber trims surrounding whitespace; numbers are otherwise stored as given.
func NormalizePhoneNumber(phoneNumber string) string {
	return strings.TrimSpace(phoneNumber)
}
