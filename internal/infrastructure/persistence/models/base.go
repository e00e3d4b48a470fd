package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic-locking version.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) fromRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

func (m *AggregateModel) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Version:    m.Version,
	}
}

// TenantAggregateModel adds tenant and creator to AggregateModel.
type TenantAggregateModel struct {
	AggregateModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

func (m *TenantAggregateModel) fromTenantRoot(t shared.TenantAggregateRoot) {
	m.fromRoot(t.BaseAggregateRoot)
	m.TenantID = t.TenantID
	m.CreatedBy = t.CreatedBy
}

func (m *TenantAggregateModel) tenantRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: m.root(),
		TenantID:          m.TenantID,
		CreatedBy:         m.CreatedBy,
	}
}

// malformed reports a stored row that does not decode into its entity.
func malformed(table string, id uuid.UUID, err error) error {
	return shared.WrapDomainError(shared.ErrMalformedDocument.Code,
		fmt.Sprintf("%s row %s does not match its schema", table, id), err)
}
