package ports

import (
	"context"
	"errors"

	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
)

// ErrVendorRejected wraps any refusal reported by an SMS vendor.
var ErrVendorRejected = errors.New("sms vendor rejected message")

var ErrAttemptNotFound = errors.New("notification attempt not found")

// SendRequest is one vendor call.
type SendRequest struct {
	Message    string
	Recipients []string
	SenderID   string
}

// SMSSender is the capability every vendor client must provide.
type SMSSender interface {
	Send(ctx context.Context, req SendRequest) (*domain.Receipt, error)
	Provider() string
}

// AttemptLog keeps a durable trail of sends so failures can be retried.
type AttemptLog interface {
	Record(ctx context.Context, attempt *domain.Attempt) (*domain.Attempt, error)
	ListByStatus(ctx context.Context, status domain.AttemptStatus, limit int) ([]*domain.Attempt, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AttemptStatus) error
	// SupersedeFailed marks every failed attempt for reference as superseded and reports how many changed.
	SupersedeFailed(ctx context.Context, reference string) (int64, error)
}
