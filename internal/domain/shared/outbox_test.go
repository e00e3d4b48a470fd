package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	tenantID := uuid.New()
	ev := &stubEvent{BaseDomainEvent: NewBaseDomainEvent("Stub", "Thing", uuid.New(), tenantID)}

	entry := NewOutboxEntry(tenantID, ev, []byte(`{}`))

	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, ev.EventID(), entry.EventID)
	assert.Equal(t, "Stub", entry.EventType)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	t.Run("pending and failed entries can be claimed", func(t *testing.T) {
		for _, s := range []OutboxStatus{OutboxStatusPending, OutboxStatusFailed} {
			entry := &OutboxEntry{Status: s}
			require.NoError(t, entry.MarkProcessing())
			assert.Equal(t, OutboxStatusProcessing, entry.Status)
		}
	})

	t.Run("sent entries cannot be claimed", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusSent}
		err := entry.MarkProcessing()
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Contains(t, err.Error(), "SENT")
	})
}

func TestOutboxEntry_Requeue(t *testing.T) {
	t.Run("requeues dead entry", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Status:     OutboxStatusDead,
			RetryCount: 5,
			MaxRetries: 5,
			LastError:  "material not found",
		}

		require.NoError(t, entry.Requeue())
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
	})

	t.Run("rejects live entries", func(t *testing.T) {
		for _, s := range []OutboxStatus{OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed} {
			entry := &OutboxEntry{Status: s}
			assert.ErrorIs(t, entry.Requeue(), ErrInvalidState)
		}
	})
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("moves to dead after max retries", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 4, MaxRetries: 5}

		entry.MarkFailed("final error")

		assert.True(t, entry.IsDead())
		assert.Equal(t, 5, entry.RetryCount)
		assert.Equal(t, "final error", entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
	})

	t.Run("schedules exponential retry", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 5}

		entry.MarkFailed("error 1")
		require.NotNil(t, entry.NextRetryAt)
		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.True(t, entry.CanRetry())
		first := time.Until(*entry.NextRetryAt)
		assert.True(t, first > 0 && first <= time.Second)

		entry.Status = OutboxStatusProcessing
		entry.MarkFailed("error 2")
		second := time.Until(*entry.NextRetryAt)
		assert.True(t, second > time.Second && second <= 2*time.Second)
	})
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, Backoff(0))
	assert.Equal(t, time.Second, Backoff(1))
	assert.Equal(t, 4*time.Second, Backoff(3))
	assert.Equal(t, MaxBackoff, Backoff(12))
	assert.Equal(t, MaxBackoff, Backoff(64))
}
