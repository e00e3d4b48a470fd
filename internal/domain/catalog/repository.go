package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Display code prefixes.
const (
	ProductCodePrefix     = "PRD"
	RawMaterialCodePrefix = "RM"
)

// ProductRepository persists products. Supported filter keys: status.
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Create(ctx context.Context, product *Product, events ...shared.DomainEvent) error
	// Update saves the product if its version still matches, then bumps the version.
	Update(ctx context.Context, product *Product, events ...shared.DomainEvent) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID, events ...shared.DomainEvent) error
	// GenerateCode returns the next PRD-NNNNN display code of the tenant.
	GenerateCode(ctx context.Context, tenantID uuid.UUID) (string, error)
	ExistsByNameKey(ctx context.Context, tenantID uuid.UUID, key string, excludeID *uuid.UUID) (bool, error)
	// RecordUsage appends the log and counts it on the product in one
	// transaction. It returns false without changes when the same log was
	// already recorded.
	RecordUsage(ctx context.Context, log *UsageLog) (bool, error)
}

// RawMaterialRepository persists raw materials.
type RawMaterialRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RawMaterial, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]RawMaterial, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RawMaterial, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Create(ctx context.Context, material *RawMaterial) error
	Update(ctx context.Context, material *RawMaterial) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	// GenerateCode returns the next RM-NNNNN display code of the tenant.
	GenerateCode(ctx context.Context, tenantID uuid.UUID) (string, error)
	ExistsByNameKey(ctx context.Context, tenantID uuid.UUID, key string, excludeID *uuid.UUID) (bool, error)
	// RecordUsage appends the log and applies it to the material in one
	// transaction; actualPrice, when set, overwrites the actual price. It
	// returns false without changes when the same log was already recorded.
	RecordUsage(ctx context.Context, log *UsageLog, actualPrice *decimal.Decimal) (bool, error)
}

// UsageLogRepository reads usage logs.
type UsageLogRepository interface {
	ListByOwner(ctx context.Context, tenantID uuid.UUID, owner OwnerKind, ownerID uuid.UUID, filter shared.Filter) ([]UsageLog, error)
	CountByOwner(ctx context.Context, tenantID uuid.UUID, owner OwnerKind, ownerID uuid.UUID) (int64, error)
}
