package application

import (
	"context"
	"errors"

	"github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/customers/ports"
	"github.com/agizo/agizo-api/internal/shared/validation"
)

// Service orchestrates account and customer use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateAccount(ctx context.Context, input ports.CreateAccountInput) (*domain.Account, error) {
	account, err := domain.NewAccount("email", input.Email, "password", input.Password)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.CreateAccount(ctx, account)
}

// Register validates every field up front so the caller sees all violations at once.
func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.Profile, error) {
	var errs validation.Errors
	domain.ValidateProfile(&errs, input.Name, input.PhoneNumber)
	account, err := domain.NewAccount("user_email", input.Email, "user_password", input.Password)
	if err != nil {
		accountErrs, ok := validation.As(err)
		if !ok {
			return nil, err
		}
		errs.Merge(accountErrs)
	}
	if err := errs.Err(); err != nil {
		return nil, mapError(err)
	}
	customer, err := domain.NewCustomer(0, *input.Name, *input.PhoneNumber)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Register(ctx, account, customer)
}

func (s *Service) CreateForOwner(ctx context.Context, owner *domain.Account, input ports.CreateCustomerInput) (*domain.Profile, error) {
	if owner == nil || owner.ID == 0 {
		return nil, ErrInvalidCredentials
	}
	var errs validation.Errors
	domain.ValidateProfile(&errs, input.Name, input.PhoneNumber)
	if err := errs.Err(); err != nil {
		return nil, mapError(err)
	}
	customer, err := domain.NewCustomer(owner.ID, *input.Name, *input.PhoneNumber)
	if err != nil {
		return nil, mapError(err)
	}
	existing, err := s.repo.GetByAccountID(ctx, owner.ID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ports.ErrProfileExists
	}
	saved, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{Customer: saved, Account: owner}, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.repo.GetAccountByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ports.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// FindByPhoneNumber returns ports.ErrNotFound when no profile carries the number.
func (s *Service) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Customer, error) {
	return s.repo.GetByPhoneNumber(ctx, domain.NormalizePhoneNumber(phoneNumber))
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

var _ ports.Service = (*Service)(nil)
