package shared

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds a version counter and pending domain events to BaseEntity.
// Repositories check Version on update and bump it after a successful write.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent queues an event to be written to the outbox on the next save.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.domainEvents }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.domainEvents = nil }

// NewBaseAggregateRootAt creates an aggregate root at version 1.
func NewBaseAggregateRootAt(now time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntityAt(now),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// TenantAggregateRoot is an aggregate owned by exactly one tenant.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

// NewTenantAggregateRoot creates a tenant-scoped aggregate root stamped with the current time.
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return NewTenantAggregateRootAt(tenantID, time.Now())
}

// NewTenantAggregateRootAt creates a tenant-scoped aggregate root stamped with now.
func NewTenantAggregateRootAt(tenantID uuid.UUID, now time.Time) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRootAt(now),
		TenantID:          tenantID,
	}
}

// SetCreatedBy records the user that created the aggregate.
func (t *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	t.CreatedBy = &userID
}

// BelongsTo reports whether the aggregate is owned by tenantID.
func (t *TenantAggregateRoot) BelongsTo(tenantID uuid.UUID) bool {
	return t.TenantID == tenantID
}
