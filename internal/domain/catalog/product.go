package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/costing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeProduct = "Product"

// ErrProductLocked is returned for edits to a product that already has usage logged against it.
var ErrProductLocked = shared.NewDomainError("PRODUCT_LOCKED", "Product has logged usage and can no longer be changed")

// ProductStatus represents the approval state of a product
type ProductStatus string

const (
	ProductStatusOnHold   ProductStatus = "On-Hold"
	ProductStatusApproved ProductStatus = "Approved"
	ProductStatusRejected ProductStatus = "Rejected"
)

func (s ProductStatus) IsValid() bool {
	return s == ProductStatusOnHold || s == ProductStatusApproved || s == ProductStatusRejected
}

// ParseProductStatus converts a stored or submitted value to a ProductStatus.
func ParseProductStatus(s string) (ProductStatus, error) {
	st := ProductStatus(s)
	if !st.IsValid() {
		return "", shared.NewDomainError("INVALID_PRODUCT_STATUS", fmt.Sprintf("unknown product status %q", s))
	}
	return st, nil
}

// ProductMaterial is one line of a product's bill of materials. RawMaterialID
// is a lookup reference; Name and Price are copied at the time of entry.
type ProductMaterial struct {
	ID            uuid.UUID
	RawMaterialID uuid.UUID
	Name          string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Total         decimal.Decimal
}

// ProductMaterialInput is a submitted bill-of-materials line.
type ProductMaterialInput struct {
	RawMaterialID uuid.UUID
	Name          string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
}

// ProductInput is the editable part of a product.
type ProductInput struct {
	Name           string
	Description    string
	Size           string
	Color          string
	UnitType       string
	MarginPercent  decimal.Decimal
	WastagePercent decimal.Decimal
	TransportCost  decimal.Decimal
	MiscCost       decimal.Decimal
	GSTPercent     decimal.Decimal
	Materials      []ProductMaterialInput
}

// Product is a finished good with its costing sheet. Once any usage has been
// logged against it the product is locked: status and contents are frozen.
type Product struct {
	shared.TenantAggregateRoot
	Code           string
	Name           string
	Description    string
	Size           string
	Color          string
	UnitType       string
	Status         ProductStatus
	Materials      []ProductMaterial
	TotalRawAmount decimal.Decimal
	MarginPercent  decimal.Decimal
	WastagePercent decimal.Decimal
	TransportCost  decimal.Decimal
	MiscCost       decimal.Decimal
	GSTPercent     decimal.Decimal
	UsageCount     int
}

// NewProduct creates a product in On-Hold status.
func NewProduct(tenantID uuid.UUID, code string, in ProductInput) (*Product, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Status:              ProductStatusOnHold,
	}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// IsLocked reports whether usage has been logged against the product.
func (p *Product) IsLocked() bool {
	return p.UsageCount > 0
}

// Update replaces the editable fields and the bill of materials.
func (p *Product) Update(in ProductInput) error {
	if p.IsLocked() {
		return ErrProductLocked
	}
	if err := p.apply(in); err != nil {
		return err
	}
	p.Touch(time.Now())
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

func (p *Product) apply(in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	// A material that stays in the bill keeps its line id, so its usage log
	// is not written twice.
	previous := make(map[uuid.UUID][]uuid.UUID, len(p.Materials))
	for _, m := range p.Materials {
		previous[m.RawMaterialID] = append(previous[m.RawMaterialID], m.ID)
	}
	materials := make([]ProductMaterial, 0, len(in.Materials))
	for i, m := range in.Materials {
		if m.RawMaterialID == uuid.Nil {
			return shared.NewDomainError("INVALID_MATERIAL", fmt.Sprintf("materials[%d] has no raw material", i))
		}
		id := uuid.New()
		if ids := previous[m.RawMaterialID]; len(ids) > 0 {
			id, previous[m.RawMaterialID] = ids[0], ids[1:]
		}
		materials = append(materials, ProductMaterial{
			ID:            id,
			RawMaterialID: m.RawMaterialID,
			Name:          strings.TrimSpace(m.Name),
			Quantity:      costing.Clamp(m.Quantity),
			Price:         costing.Clamp(m.Price),
			Total:         costing.LineTotal(m.Quantity, m.Price),
		})
	}

	p.Name = name
	p.Description = in.Description
	p.Size = in.Size
	p.Color = in.Color
	p.UnitType = in.UnitType
	p.MarginPercent = costing.Clamp(in.MarginPercent)
	p.WastagePercent = costing.Clamp(in.WastagePercent)
	p.TransportCost = costing.Clamp(in.TransportCost)
	p.MiscCost = costing.Clamp(in.MiscCost)
	p.GSTPercent = costing.Clamp(in.GSTPercent)
	p.Materials = materials
	p.recalculate()
	return nil
}

func (p *Product) recalculate() {
	total := decimal.Zero
	for _, m := range p.Materials {
		total = total.Add(m.Total)
	}
	p.TotalRawAmount = total
}

// NameKey returns the duplicate-detection key of the name.
func (p *Product) NameKey() string {
	return NameKey(p.Name)
}

// SetStatus changes the approval status unless the product is locked.
func (p *Product) SetStatus(status ProductStatus) (bool, error) {
	if !status.IsValid() {
		return false, shared.NewDomainError("INVALID_PRODUCT_STATUS", "Product status must be one of On-Hold, Approved, Rejected")
	}
	if p.IsLocked() {
		return false, ErrProductLocked
	}
	if p.Status == status {
		return false, nil
	}
	from := p.Status
	p.Status = status
	p.Touch(time.Now())
	p.AddDomainEvent(NewProductStatusChangedEvent(p, from, status))
	return true, nil
}

// Pricing returns the suggested price breakdown from the costing sheet.
func (p *Product) Pricing() costing.Breakdown {
	return costing.ProductBreakdown(costing.PricingInput{
		RawAmount:      p.TotalRawAmount,
		MarginPercent:  p.MarginPercent,
		WastagePercent: p.WastagePercent,
		Transport:      p.TransportCost,
		Misc:           p.MiscCost,
		GSTPercent:     p.GSTPercent,
	})
}

// RecordUsage accounts for a usage log appended under this product. The
// first one locks the product.
func (p *Product) RecordUsage(log *UsageLog) error {
	if log.OwnerKind != OwnerProduct || log.OwnerID != p.ID {
		return shared.NewDomainError("INVALID_USAGE_OWNER", "Usage log belongs to another record")
	}
	p.UsageCount++
	p.Touch(log.CreatedAt)
	return nil
}

// MarkDeleted raises the deletion event unless the product is locked.
func (p *Product) MarkDeleted() error {
	if p.IsLocked() {
		return ErrProductLocked
	}
	p.AddDomainEvent(NewProductDeletedEvent(p))
	return nil
}
