package ports

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different payload or order.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// ErrIdempotencyInProgress is returned while another request holding the same key has not
// committed its order yet. It matches ErrIdempotencyConflict under errors.Is.
var ErrIdempotencyInProgress = fmt.Errorf("%w: request with this key is still in progress", ErrIdempotencyConflict)

// IdempotencyRecord ties a client-supplied key to the order it created. OrderID is zero
// while the key is reserved but the order is not committed yet.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Pending reports whether the key is reserved without a committed order.
func (r IdempotencyRecord) Pending() bool {
	return r.OrderID == 0
}

// IdempotencyStore persists idempotency keys so retried order submissions can be replayed.
// A key is claimed with Reserve before the order is written, then either completed with the
// order id or released when the write fails.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Reserve claims the key for requestHash with an insert-if-absent. It returns nil when
	// the caller now owns the key, or the record already stored under it.
	Reserve(ctx context.Context, key, requestHash string) (*IdempotencyRecord, error)
	// Complete attaches the committed order to a pending reservation.
	Complete(ctx context.Context, key string, orderID int64) error
	// Release drops a pending reservation. Completed keys are left untouched.
	Release(ctx context.Context, key string) error
}
