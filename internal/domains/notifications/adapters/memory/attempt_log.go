package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
	"github.com/agizo/agizo-api/internal/domains/notifications/ports"
)

var _ ports.AttemptLog = (*AttemptLog)(nil)

// AttemptLog keeps notification attempts in memory for development and tests.
type AttemptLog struct {
	mu       sync.RWMutex
	attempts map[int64]*domain.Attempt
	nextID   int64
	now      func() time.Time
	// recordErr, when set, fails Record so log outages can be exercised.
	recordErr error
}

func NewAttemptLog() *AttemptLog {
	return &AttemptLog{attempts: map[int64]*domain.Attempt{}, now: time.Now}
}

func (l *AttemptLog) Record(_ context.Context, attempt *domain.Attempt) (*domain.Attempt, error) {
	if attempt == nil {
		return nil, errors.New("attempt is nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.recordErr != nil {
		return nil, l.recordErr
	}
	l.nextID++
	clone := cloneAttempt(attempt)
	clone.ID = l.nextID
	clone.CreatedAt = l.now().UTC()
	clone.UpdatedAt = clone.CreatedAt
	l.attempts[clone.ID] = clone
	return cloneAttempt(clone), nil
}

// ListByStatus returns the oldest matching attempts first. A non-positive limit means no limit.
func (l *AttemptLog) ListByStatus(_ context.Context, status domain.AttemptStatus, limit int) ([]*domain.Attempt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	list := make([]*domain.Attempt, 0)
	for _, a := range l.attempts {
		if a.Status == status {
			list = append(list, cloneAttempt(a))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (l *AttemptLog) UpdateStatus(_ context.Context, id int64, status domain.AttemptStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.attempts[id]
	if !ok {
		return ports.ErrAttemptNotFound
	}
	a.Status = status
	a.UpdatedAt = l.now().UTC()
	return nil
}

func (l *AttemptLog) SupersedeFailed(_ context.Context, reference string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var changed int64
	for _, a := range l.attempts {
		if a.Reference == reference && a.Status == domain.AttemptFailed {
			a.Status = domain.AttemptSuperseded
			a.UpdatedAt = l.now().UTC()
			changed++
		}
	}
	return changed, nil
}

// FailRecords makes every later Record call return err; nil restores normal behavior.
func (l *AttemptLog) FailRecords(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordErr = err
}

func cloneAttempt(a *domain.Attempt) *domain.Attempt {
	clone := *a
	clone.Recipients = append([]string(nil), a.Recipients...)
	return &clone
}
