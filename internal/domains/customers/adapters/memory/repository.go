package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/customers/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory account and customer store.
type Repository struct {
	mu             sync.RWMutex
	accounts       map[int64]*domain.Account
	customers      map[int64]*domain.Customer
	nextAccountID  int64
	nextCustomerID int64
	now            func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		accounts:  map[int64]*domain.Account{},
		customers: map[int64]*domain.Customer{},
		now:       time.Now,
	}
}

func (r *Repository) CreateAccount(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if account == nil {
		return nil, errors.New("account is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTakenLocked(account.Email) {
		return nil, ports.ErrEmailTaken
	}
	return r.insertAccountLocked(account), nil
}

func (r *Repository) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, ports.ErrAccountNotFound
}

func (r *Repository) GetAccountByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, ports.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *Repository) CreateCustomer(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[customer.AccountID]; !ok {
		return nil, ports.ErrAccountNotFound
	}
	if err := r.checkCustomerLocked(customer); err != nil {
		return nil, err
	}
	return r.insertCustomerLocked(customer), nil
}

// Register checks every constraint before writing anything so a failure leaves no partial account.
func (r *Repository) Register(_ context.Context, account *domain.Account, customer *domain.Customer) (*domain.Profile, error) {
	if account == nil || customer == nil {
		return nil, errors.New("account and customer are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTakenLocked(account.Email) {
		return nil, ports.ErrEmailTaken
	}
	if r.phoneTakenLocked(customer.PhoneNumber) {
		return nil, ports.ErrPhoneNumberTaken
	}
	savedAccount := r.insertAccountLocked(account)
	pending := *customer
	pending.AccountID = savedAccount.ID
	savedCustomer := r.insertCustomerLocked(&pending)
	return &domain.Profile{Customer: savedCustomer, Account: savedAccount}, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *Repository) GetByPhoneNumber(_ context.Context, phoneNumber string) (*domain.Customer, error) {
	return r.find(func(c *domain.Customer) bool { return c.PhoneNumber == phoneNumber })
}

func (r *Repository) GetByAccountID(_ context.Context, accountID int64) (*domain.Customer, error) {
	return r.find(func(c *domain.Customer) bool { return c.AccountID == accountID })
}

func (r *Repository) find(match func(*domain.Customer) bool) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if match(c) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) checkCustomerLocked(customer *domain.Customer) error {
	for _, c := range r.customers {
		if c.AccountID == customer.AccountID {
			return ports.ErrProfileExists
		}
	}
	if r.phoneTakenLocked(customer.PhoneNumber) {
		return ports.ErrPhoneNumberTaken
	}
	return nil
}

func (r *Repository) emailTakenLocked(email string) bool {
	for _, a := range r.accounts {
		if a.Email == email {
			return true
		}
	}
	return false
}

func (r *Repository) phoneTakenLocked(phoneNumber string) bool {
	for _, c := range r.customers {
		if c.PhoneNumber == phoneNumber {
			return true
		}
	}
	return false
}

func (r *Repository) insertAccountLocked(account *domain.Account) *domain.Account {
	clone := *account
	r.nextAccountID++
	clone.ID = r.nextAccountID
	clone.CreatedAt = r.now().UTC()
	r.accounts[clone.ID] = &clone
	out := clone
	return &out
}

func (r *Repository) insertCustomerLocked(customer *domain.Customer) *domain.Customer {
	clone := *customer
	r.nextCustomerID++
	clone.ID = r.nextCustomerID
	clone.CreatedAt = r.now().UTC()
	r.customers[clone.ID] = &clone
	out := clone
	return &out
}
