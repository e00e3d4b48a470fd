package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher is the repositories' OutboxEventSaver. Events are written
// with the aggregate change, so an order and the usage propagation it
// triggers commit or roll back together.
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer, maxRetries: shared.DefaultMaxRetries}
}

// SetMaxRetries sets the failed deliveries a new entry tolerates before it
// is dead-lettered. n < 1 is ignored.
func (p *OutboxPublisher) SetMaxRetries(n int) {
	if n > 0 {
		p.maxRetries = n
	}
}

func (p *OutboxPublisher) entryFor(event shared.DomainEvent) (*shared.OutboxEntry, error) {
	if event.TenantID() == uuid.Nil {
		return nil, fmt.Errorf("event %s has no tenant", event.EventType())
	}
	// unregistered types fail here, not at delivery time
	payload, err := p.serializer.Serialize(event)
	if err != nil {
		return nil, err
	}
	entry := shared.NewOutboxEntry(event.TenantID(), event, payload)
	entry.MaxRetries = p.maxRetries
	return entry, nil
}

// PublishWithTx stores events as pending outbox entries on tx
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	entries := make([]*shared.OutboxEntry, len(events))
	for i, event := range events {
		entry, err := p.entryFor(event)
		if err != nil {
			return err
		}
		entries[i] = entry
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents accepts the open transaction as txProvider, which must be a *gorm.DB
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
