package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/agizo/agizo-api/internal/domains/customers/domain"
)

var (
	ErrNotFound        = errors.New("customer not found")
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicate is matched by every uniqueness violation below.
	ErrDuplicate        = errors.New("customer record already exists")
	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrDuplicate)
	ErrPhoneNumberTaken = fmt.Errorf("%w: phone number already registered", ErrDuplicate)
	ErrProfileExists    = fmt.Errorf("%w: account already has a customer profile", ErrDuplicate)
)

// Repository persists accounts and their customer profiles.
type Repository interface {
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*domain.Account, error)
	// CreateCustomer attaches a profile to an existing account.
	CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	// Register creates the account and its profile atomically.
	Register(ctx context.Context, account *domain.Account, customer *domain.Customer) (*domain.Profile, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Customer, error)
	GetByAccountID(ctx context.Context, accountID int64) (*domain.Customer, error)
}
