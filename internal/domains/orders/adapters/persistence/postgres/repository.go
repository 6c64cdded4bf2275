package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	customerpostgres "github.com/agizo/agizo-api/internal/domains/customers/adapters/persistence/postgres"
	customerdomain "github.com/agizo/agizo-api/internal/domains/customers/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/domain"
	"github.com/agizo/agizo-api/internal/domains/orders/ports"
	"github.com/agizo/agizo-api/internal/shared/money"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders and their line items in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&OrderRecord{}, &LineItemRecord{})
	}
	return repo
}

// OrderRecord maps orders. The total is derived from the items and never stored.
type OrderRecord struct {
	ID         int64                            `gorm:"primaryKey;column:id"`
	CustomerID *int64                           `gorm:"column:customer_id;index"`
	Customer   *customerpostgres.CustomerRecord `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
	Items      []LineItemRecord                 `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time                        `gorm:"column:created_at;index"`
	UpdatedAt  time.Time                        `gorm:"column:updated_at"`
}

func (OrderRecord) TableName() string { return "orders" }

// LineItemRecord maps order items; price is numeric(5,2) and quantity a smallint.
type LineItemRecord struct {
	ID       int64        `gorm:"primaryKey;column:id"`
	OrderID  int64        `gorm:"column:order_id;index;not null"`
	Name     string       `gorm:"column:name;size:50;not null"`
	Price    money.Amount `gorm:"column:price;type:numeric(5,2);not null"`
	Quantity int          `gorm:"column:quantity;type:smallint;not null"`
}

func (LineItemRecord) TableName() string { return "order_items" }

// CreateWithItems inserts the order row and all item rows in one transaction.
func (r *Repository) CreateWithItems(ctx context.Context, customer *customerdomain.Customer, items []domain.LineItem) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %w", ports.ErrPersistence, ports.ErrEmptyOrder)
	}
	var saved *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := OrderRecord{}
		if customer != nil {
			id := customer.ID
			record.CustomerID = &id
		}
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			return err
		}
		itemRecords := toItemRecords(record.ID, items)
		if err := tx.Create(&itemRecords).Error; err != nil {
			return err
		}
		record.Items = itemRecords
		saved = record.toDomain()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrPersistence, err)
	}
	return saved, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record OrderRecord
	if err := r.withItems(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []OrderRecord
	if err := r.withItems(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("price DESC").Order("id ASC")
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toItemRecords(orderID int64, items []domain.LineItem) []LineItemRecord {
	records := make([]LineItemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, LineItemRecord{
			OrderID:  orderID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return records
}

func (r OrderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Items:     make([]domain.LineItem, 0, len(r.Items)),
	}
	if r.CustomerID != nil {
		id := *r.CustomerID
		order.CustomerID = &id
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.LineItem{
			ID:       item.ID,
			OrderID:  item.OrderID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return order
}
