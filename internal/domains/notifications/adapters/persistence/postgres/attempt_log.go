package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
	"github.com/agizo/agizo-api/internal/domains/notifications/ports"
)

var _ ports.AttemptLog = (*AttemptLog)(nil)

// AttemptLog persists notification attempts in PostgreSQL.
type AttemptLog struct {
	db *gorm.DB
}

func NewAttemptLog(db *gorm.DB) *AttemptLog {
	return &AttemptLog{db: db}
}

// AttemptRecord maps notification attempts; recipients use a native text[] column.
type AttemptRecord struct {
	ID         int64          `gorm:"primaryKey;column:id"`
	Provider   string         `gorm:"column:provider;size:32"`
	SenderID   string         `gorm:"column:sender_id;size:32"`
	Reference  string         `gorm:"column:reference;size:64;index"`
	Message    string         `gorm:"column:message"`
	Recipients pq.StringArray `gorm:"column:recipients;type:text[]"`
	Status     string         `gorm:"column:status;size:16;index"`
	MessageID  string         `gorm:"column:message_id;size:128"`
	Cost       string         `gorm:"column:cost;size:32"`
	Error      string         `gorm:"column:error"`
	CreatedAt  time.Time      `gorm:"column:created_at;index"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

func (AttemptRecord) TableName() string { return "notification_attempts" }

func (l *AttemptLog) Record(ctx context.Context, attempt *domain.Attempt) (*domain.Attempt, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, errors.New("attempt is nil")
	}
	record := toRecord(attempt)
	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (l *AttemptLog) ListByStatus(ctx context.Context, status domain.AttemptStatus, limit int) ([]*domain.Attempt, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	query := l.db.WithContext(ctx).Where("status = ?", string(status)).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []AttemptRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	attempts := make([]*domain.Attempt, 0, len(records))
	for i := range records {
		attempts = append(attempts, records[i].toDomain())
	}
	return attempts, nil
}

func (l *AttemptLog) UpdateStatus(ctx context.Context, id int64, status domain.AttemptStatus) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	result := l.db.WithContext(ctx).Model(&AttemptRecord{}).Where("id = ?", id).Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrAttemptNotFound
	}
	return nil
}

func (l *AttemptLog) SupersedeFailed(ctx context.Context, reference string) (int64, error) {
	if err := l.ensureDB(); err != nil {
		return 0, err
	}
	result := l.db.WithContext(ctx).Model(&AttemptRecord{}).
		Where("reference = ? AND status = ?", reference, string(domain.AttemptFailed)).
		Update("status", string(domain.AttemptSuperseded))
	return result.RowsAffected, result.Error
}

func (l *AttemptLog) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres notification attempt log not configured")
	}
	return nil
}

func toRecord(a *domain.Attempt) AttemptRecord {
	return AttemptRecord{
		ID:         a.ID,
		Provider:   a.Provider,
		SenderID:   a.SenderID,
		Reference:  a.Reference,
		Message:    a.Message,
		Recipients: pq.StringArray(a.Recipients),
		Status:     string(a.Status),
		MessageID:  a.MessageID,
		Cost:       a.Cost,
		Error:      a.Error,
	}
}

func (r AttemptRecord) toDomain() *domain.Attempt {
	return &domain.Attempt{
		ID:         r.ID,
		Provider:   r.Provider,
		SenderID:   r.SenderID,
		Reference:  r.Reference,
		Message:    r.Message,
		Recipients: []string(r.Recipients),
		Status:     domain.AttemptStatus(r.Status),
		MessageID:  r.MessageID,
		Cost:       r.Cost,
		Error:      r.Error,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
