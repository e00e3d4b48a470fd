package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
)

// OutboxEntryModel stores a domain event written in the same transaction as
// the aggregate change that raised it.
type OutboxEntryModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	EventID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	EventType     string     `gorm:"type:varchar(100);not null"`
	AggregateID   uuid.UUID  `gorm:"type:uuid;not null"`
	AggregateType string     `gorm:"type:varchar(100);not null"`
	Payload       []byte     `gorm:"not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_outbox_status_created,priority:1"`
	RetryCount    int        `gorm:"not null;default:0"`
	MaxRetries    int        `gorm:"not null;default:5"`
	LastError     string     `gorm:"type:text"`
	NextRetryAt   *time.Time `gorm:"index"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (OutboxEntryModel) TableName() string {
	return "outbox_events"
}

func (m *OutboxEntryModel) ToDomain() (*shared.OutboxEntry, error) {
	status := shared.OutboxStatus(m.Status)
	switch status {
	case shared.OutboxStatusPending, shared.OutboxStatusProcessing, shared.OutboxStatusSent,
		shared.OutboxStatusFailed, shared.OutboxStatusDead:
	default:
		return nil, malformed(m.TableName(), m.ID, fmt.Errorf("unknown outbox status %q", m.Status))
	}
	return &shared.OutboxEntry{
		ID:            m.ID,
		TenantID:      m.TenantID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		Status:        status,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		LastError:     m.LastError,
		NextRetryAt:   m.NextRetryAt,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

func OutboxEntryModelFromDomain(e *shared.OutboxEntry) *OutboxEntryModel {
	return &OutboxEntryModel{
		ID:            e.ID,
		TenantID:      e.TenantID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Payload:       e.Payload,
		Status:        string(e.Status),
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
