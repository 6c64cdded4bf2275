package ports

import (
	"context"

	"github.com/agizo/agizo-api/internal/domains/customers/domain"
)

type CreateAccountInput struct {
	Email    string
	Password string
}

// RegisterInput creates an account and its customer profile in one step. Nil profile
// fields were absent from the request.
type RegisterInput struct {
	Name        *string
	PhoneNumber *string
	Email       string
	Password    string
}

// CreateCustomerInput attaches a profile to an already authenticated account.
type CreateCustomerInput struct {
	Name        *string
	PhoneNumber *string
}

// Service exposes account and customer use cases to adapters.
type Service interface {
	CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	Register(ctx context.Context, input RegisterInput) (*domain.Profile, error)
	CreateForOwner(ctx context.Context, owner *domain.Account, input CreateCustomerInput) (*domain.Profile, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
}
