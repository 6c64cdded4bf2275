//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
	"github.com/agizo/agizo-api/internal/domains/notifications/ports"
	"github.com/agizo/agizo-api/internal/platform/dbtest"
)

func TestAttemptLog_PostgresLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	log := NewAttemptLog(dbtest.StartPostgres(t))
	ctx := context.Background()

	recorded, err := log.Record(ctx, &domain.Attempt{
		Provider:   "africastalking",
		SenderID:   "Agizo",
		Reference:  "order:7",
		Message:    "Hello Amina",
		Recipients: []string{"+254700000000"},
		Status:     domain.AttemptFailed,
		Error:      "timeout",
	})
	require.NoError(t, err)
	require.NotZero(t, recorded.ID)

	failed, err := log.ListByStatus(ctx, domain.AttemptFailed, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, []string{"+254700000000"}, failed[0].Recipients)
	assert.Equal(t, "order:7", failed[0].Reference)

	require.NoError(t, log.UpdateStatus(ctx, recorded.ID, domain.AttemptRetried))
	failed, err = log.ListByStatus(ctx, domain.AttemptFailed, 10)
	require.NoError(t, err)
	assert.Empty(t, failed)

	require.ErrorIs(t, log.UpdateStatus(ctx, 9999, domain.AttemptSent), ports.ErrAttemptNotFound)
}

func TestAttemptLog_PostgresSupersedeFailed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	log := NewAttemptLog(dbtest.StartPostgres(t))
	ctx := context.Background()
	for _, attempt := range []*domain.Attempt{
		{Reference: "order:8", Status: domain.AttemptFailed, Recipients: []string{"+254700000000"}},
		{Reference: "order:8", Status: domain.AttemptFailed, Recipients: []string{"+254700000000"}},
		{Reference: "order:9", Status: domain.AttemptFailed, Recipients: []string{"+254700000001"}},
	} {
		_, err := log.Record(ctx, attempt)
		require.NoError(t, err)
	}

	changed, err := log.SupersedeFailed(ctx, "order:8")
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	failed, err := log.ListByStatus(ctx, domain.AttemptFailed, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "order:9", failed[0].Reference)
}
