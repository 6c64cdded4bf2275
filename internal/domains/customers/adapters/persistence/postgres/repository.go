package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/customers/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists accounts and customer profiles in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&AccountRecord{}, &CustomerRecord{})
	}
	return repo
}

// AccountRecord maps accounts to the accounts table.
type AccountRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Email        string    `gorm:"column:email;size:254;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (AccountRecord) TableName() string { return "accounts" }

// CustomerRecord maps customer profiles; account_id is one-to-one with accounts.
type CustomerRecord struct {
	ID          int64         `gorm:"primaryKey;column:id"`
	AccountID   int64         `gorm:"column:account_id;uniqueIndex;not null"`
	Account     AccountRecord `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Name        string        `gorm:"column:name;size:50;not null"`
	PhoneNumber string        `gorm:"column:phone_number;size:15;uniqueIndex;not null"`
	CreatedAt   time.Time     `gorm:"column:created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at"`
}

func (CustomerRecord) TableName() string { return "customers" }

func (r *Repository) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New("account is nil")
	}
	var saved *domain.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx, &AccountRecord{}, "email = ?", account.Email); err != nil {
			return err
		} else if taken {
			return ports.ErrEmailTaken
		}
		record := toAccountRecord(account)
		if err := tx.Create(&record).Error; err != nil {
			return translateDuplicate(err)
		}
		saved = record.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.firstAccount(ctx, "email = ?", email)
}

func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.firstAccount(ctx, "id = ?", id)
}

func (r *Repository) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	var saved *domain.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if found, err := exists(tx, &AccountRecord{}, "id = ?", customer.AccountID); err != nil {
			return err
		} else if !found {
			return ports.ErrAccountNotFound
		}
		if taken, err := exists(tx, &CustomerRecord{}, "account_id = ?", customer.AccountID); err != nil {
			return err
		} else if taken {
			return ports.ErrProfileExists
		}
		var err error
		saved, err = insertCustomer(tx, customer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Register writes the account and profile in one transaction.
func (r *Repository) Register(ctx context.Context, account *domain.Account, customer *domain.Customer) (*domain.Profile, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if account == nil || customer == nil {
		return nil, errors.New("account and customer are required")
	}
	var profile *domain.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx, &AccountRecord{}, "email = ?", account.Email); err != nil {
			return err
		} else if taken {
			return ports.ErrEmailTaken
		}
		accountRecord := toAccountRecord(account)
		if err := tx.Create(&accountRecord).Error; err != nil {
			return translateDuplicate(err)
		}
		pending := *customer
		pending.AccountID = accountRecord.ID
		saved, err := insertCustomer(tx, &pending)
		if err != nil {
			return err
		}
		profile = &domain.Profile{Customer: saved, Account: accountRecord.toDomain()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.firstCustomer(ctx, "id = ?", id)
}

func (r *Repository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Customer, error) {
	return r.firstCustomer(ctx, "phone_number = ?", phoneNumber)
}

func (r *Repository) GetByAccountID(ctx context.Context, accountID int64) (*domain.Customer, error) {
	return r.firstCustomer(ctx, "account_id = ?", accountID)
}

func (r *Repository) firstAccount(ctx context.Context, query string, arg any) (*domain.Account, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record AccountRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrAccountNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) firstCustomer(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record CustomerRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres customer repository not configured")
	}
	return nil
}

func insertCustomer(tx *gorm.DB, customer *domain.Customer) (*domain.Customer, error) {
	if taken, err := exists(tx, &CustomerRecord{}, "phone_number = ?", customer.PhoneNumber); err != nil {
		return nil, err
	} else if taken {
		return nil, ports.ErrPhoneNumberTaken
	}
	record := toCustomerRecord(customer)
	if err := tx.Omit("Account").Create(&record).Error; err != nil {
		return nil, translateDuplicate(err)
	}
	return record.toDomain(), nil
}

func exists(tx *gorm.DB, model any, query string, arg any) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// translateDuplicate covers a unique index losing a race against the pre-checks.
func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrDuplicate
	}
	return err
}

func toAccountRecord(a *domain.Account) AccountRecord {
	return AccountRecord{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
	}
}

func (r AccountRecord) toDomain() *domain.Account {
	return &domain.Account{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

func toCustomerRecord(c *domain.Customer) CustomerRecord {
	return CustomerRecord{
		ID:          c.ID,
		AccountID:   c.AccountID,
		Name:        c.Name,
		PhoneNumber: c.PhoneNumber,
	}
}

func (r CustomerRecord) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Name:        r.Name,
		PhoneNumber: r.PhoneNumber,
		CreatedAt:   r.CreatedAt,
	}
}
