package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/costing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeRawMaterial = "RawMaterial"

// RawMaterialInput is the editable part of a raw material.
type RawMaterialInput struct {
	Name            string
	Description     string
	Size            string
	Color           string
	UnitType        string
	GSTPercent      decimal.Decimal
	EstimatedPrice  decimal.Decimal
	ActualPrice     decimal.Decimal
	Quantity        decimal.Decimal
	QuantityUsed    decimal.Decimal
	QuantityWastage decimal.Decimal
}

// RawMaterial is a purchasable input with running stock counters.
// ActualPrice is overwritten by every given order that references the
// material; the usage logs keep the history.
type RawMaterial struct {
	shared.TenantAggregateRoot
	Code            string
	Name            string
	Description     string
	Size            string
	Color           string
	UnitType        string
	GSTPercent      decimal.Decimal
	EstimatedPrice  decimal.Decimal
	ActualPrice     decimal.Decimal
	Quantity        decimal.Decimal
	QuantityUsed    decimal.Decimal
	QuantityWastage decimal.Decimal
	UsageCount      int
}

// NewRawMaterial creates a raw material with the given display code.
func NewRawMaterial(tenantID uuid.UUID, code string, in RawMaterialInput) (*RawMaterial, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Raw material code cannot be empty")
	}
	m := &RawMaterial{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
	}
	if err := m.apply(in); err != nil {
		return nil, err
	}
	return m, nil
}

// Update replaces the editable fields.
func (m *RawMaterial) Update(in RawMaterialInput) error {
	if err := m.apply(in); err != nil {
		return err
	}
	m.Touch(time.Now())
	return nil
}

func (m *RawMaterial) apply(in RawMaterialInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Raw material name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Raw material name cannot exceed 200 characters")
	}
	m.Name = name
	m.Description = in.Description
	m.Size = in.Size
	m.Color = in.Color
	m.UnitType = in.UnitType
	m.GSTPercent = costing.Clamp(in.GSTPercent)
	m.EstimatedPrice = costing.Clamp(in.EstimatedPrice)
	m.ActualPrice = costing.Clamp(in.ActualPrice)
	m.Quantity = costing.Clamp(in.Quantity)
	m.QuantityUsed = costing.Clamp(in.QuantityUsed)
	m.QuantityWastage = costing.Clamp(in.QuantityWastage)
	return nil
}

// NameKey returns the duplicate-detection key of the name.
func (m *RawMaterial) NameKey() string {
	return NameKey(m.Name)
}

// AvailableQuantity is quantity minus used minus wastage, never below zero.
func (m *RawMaterial) AvailableQuantity() decimal.Decimal {
	return costing.Clamp(m.Quantity.Sub(m.QuantityUsed).Sub(m.QuantityWastage))
}

// ApplyActualPrice overwrites the actual price.
func (m *RawMaterial) ApplyActualPrice(price decimal.Decimal) {
	m.ActualPrice = costing.Clamp(price)
	m.Touch(time.Now())
}

// Restock adds to the on-hand quantity.
func (m *RawMaterial) Restock(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}
	m.Quantity = m.Quantity.Add(qty)
	m.Touch(time.Now())
	return nil
}

// Consume records quantity used in production and quantity wasted.
func (m *RawMaterial) Consume(used, wastage decimal.Decimal) error {
	if used.IsNegative() || wastage.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Consumed quantities cannot be negative")
	}
	if used.IsZero() && wastage.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Nothing to consume")
	}
	m.QuantityUsed = m.QuantityUsed.Add(used)
	m.QuantityWastage = m.QuantityWastage.Add(wastage)
	m.Touch(time.Now())
	return nil
}

// RecordUsage accounts for a usage log appended under this material and, when
// actualPrice is set, overwrites the actual price.
func (m *RawMaterial) RecordUsage(log *UsageLog, actualPrice *decimal.Decimal) error {
	if log.OwnerKind != OwnerRawMaterial || log.OwnerID != m.ID {
		return shared.NewDomainError("INVALID_USAGE_OWNER", "Usage log belongs to another record")
	}
	m.UsageCount++
	if actualPrice != nil {
		m.ActualPrice = costing.Clamp(*actualPrice)
	}
	m.Touch(log.CreatedAt)
	return nil
}
