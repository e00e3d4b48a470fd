package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/costing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UsageType tags what consumed or referenced a material or product.
type UsageType string

const (
	UsageTypeProduct    UsageType = "Product"
	UsageTypePoGiven    UsageType = "PoGiven"
	UsageTypePoReceived UsageType = "PoReceived"
)

func (t UsageType) IsValid() bool {
	return t == UsageTypeProduct || t == UsageTypePoGiven || t == UsageTypePoReceived
}

// ParseUsageType converts a stored value to a UsageType.
func ParseUsageType(s string) (UsageType, error) {
	t := UsageType(s)
	if !t.IsValid() {
		return "", shared.WrapDomainError(shared.ErrMalformedDocument.Code, "unknown usage type", fmt.Errorf("%q", s))
	}
	return t, nil
}

// OwnerKind says which collection a usage log hangs under.
type OwnerKind string

const (
	OwnerRawMaterial OwnerKind = "RAW_MATERIAL"
	OwnerProduct     OwnerKind = "PRODUCT"
)

// UsageLog is an append-only record that a quantity of a material or product
// was referenced by an order or a product. At most one log exists per
// owner, reference and reference line.
type UsageLog struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	OwnerKind       OwnerKind
	OwnerID         uuid.UUID
	Type            UsageType
	ReferenceID     uuid.UUID
	ReferenceLineID uuid.UUID
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	Total           decimal.Decimal
	CreatedAt       time.Time
}

// NewUsageLog creates a log entry. Total is quantity × price.
func NewUsageLog(tenantID uuid.UUID, owner OwnerKind, ownerID uuid.UUID, typ UsageType, referenceID, referenceLineID uuid.UUID, qty, price decimal.Decimal) (*UsageLog, error) {
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_USAGE_TYPE", "Usage type must be Product, PoGiven or PoReceived")
	}
	if owner != OwnerRawMaterial && owner != OwnerProduct {
		return nil, shared.NewDomainError("INVALID_USAGE_OWNER", "Usage owner must be a raw material or a product")
	}
	if ownerID == uuid.Nil || referenceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Usage log needs an owner and a reference")
	}
	return &UsageLog{
		ID:              uuid.New(),
		TenantID:        tenantID,
		OwnerKind:       owner,
		OwnerID:         ownerID,
		Type:            typ,
		ReferenceID:     referenceID,
		ReferenceLineID: referenceLineID,
		Quantity:        costing.Clamp(qty),
		Price:           costing.Clamp(price),
		Total:           costing.LineTotal(qty, price),
		CreatedAt:       time.Now(),
	}, nil
}

// Key identifies the log for deduplication.
func (l *UsageLog) Key() string {
	return fmt.Sprintf("%s:%s:%s:%s", l.OwnerKind, l.OwnerID, l.ReferenceID, l.ReferenceLineID)
}
