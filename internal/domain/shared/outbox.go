package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox entry.
//
//	PENDING -> PROCESSING -> SENT
//	              |
//	              +-> FAILED -> PROCESSING ... -> DEAD -> PENDING (requeue)
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
	MaxBackoff         = 5 * time.Minute
)

// OutboxEntry is a serialized domain event stored in the same transaction
// as the aggregate change that raised it.
type OutboxEntry struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	MaxRetries    int
	LastError     string
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewOutboxEntry(tenantID uuid.UUID, event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Backoff is the wait before attempt n+1 after n failures: 1s, 2s, 4s and
// so on up to MaxBackoff.
func Backoff(n int) time.Duration {
	n = max(n, 1)
	if n > 20 {
		return MaxBackoff
	}
	return min(DefaultBaseBackoff<<(n-1), MaxBackoff)
}

func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

func (e *OutboxEntry) requireStatus(op string, allowed ...OutboxStatus) error {
	for _, s := range allowed {
		if e.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s an outbox entry in status %s", ErrInvalidState, op, e.Status)
}

// MarkProcessing claims a pending or failed entry
func (e *OutboxEntry) MarkProcessing() error {
	if err := e.requireStatus("claim", OutboxStatusPending, OutboxStatusFailed); err != nil {
		return err
	}
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed counts a failed attempt. The entry is scheduled again after
// Backoff, or goes DEAD once RetryCount reaches MaxRetries.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = now
	e.NextRetryAt = nil

	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		return
	}
	e.Status = OutboxStatusFailed
	next := now.Add(Backoff(e.RetryCount))
	e.NextRetryAt = &next
}

// Requeue gives a dead entry a fresh retry budget
func (e *OutboxEntry) Requeue() error {
	if err := e.requireStatus("requeue", OutboxStatusDead); err != nil {
		return err
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.UpdatedAt = time.Now()
	return nil
}

// OutboxRepository defines the interface for outbox persistence
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	// FindDeadForTenant lists dead-lettered entries of one tenant, newest first
	FindDeadForTenant(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]*OutboxEntry, int64, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*OutboxEntry, error)
	// MarkProcessing atomically claims entries and returns the ones it claimed
	MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	// ReleaseStale returns entries claimed before claimedBefore to the retry
	// queue. They belong to a processor that died mid-delivery.
	ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[OutboxStatus]int64, error)
}
