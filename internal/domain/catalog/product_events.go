package catalog

import (
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeProductCreated       = "ProductCreated"
	EventTypeProductUpdated       = "ProductUpdated"
	EventTypeProductStatusChanged = "ProductStatusChanged"
	EventTypeProductDeleted       = "ProductDeleted"
)

// MaterialSnapshot is a bill-of-materials line as carried on product events.
type MaterialSnapshot struct {
	LineID        uuid.UUID       `json:"line_id"`
	RawMaterialID uuid.UUID       `json:"raw_material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
}

// ProductCreatedEvent is published when a new product is created. Its
// materials are logged as Product usage on each raw material.
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID          `json:"product_id"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Materials []MaterialSnapshot `json:"materials"`
}

func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Materials:       snapshotMaterials(p),
	}
}

func snapshotMaterials(p *Product) []MaterialSnapshot {
	materials := make([]MaterialSnapshot, len(p.Materials))
	for i, m := range p.Materials {
		materials[i] = MaterialSnapshot{
			LineID:        m.ID,
			RawMaterialID: m.RawMaterialID,
			Quantity:      m.Quantity,
			Price:         m.Price,
		}
	}
	return materials
}

// ProductUpdatedEvent is published when a product is updated. Materials is
// the whole bill after the update.
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID      uuid.UUID          `json:"product_id"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Materials      []MaterialSnapshot `json:"materials"`
	TotalRawAmount decimal.Decimal    `json:"total_raw_amount"`
}

func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Materials:       snapshotMaterials(p),
		TotalRawAmount:  p.TotalRawAmount,
	}
}

// ProductStatusChangedEvent is published when the approval status changes
type ProductStatusChangedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID     `json:"product_id"`
	Code      string        `json:"code"`
	From      ProductStatus `json:"from"`
	To        ProductStatus `json:"to"`
}

func NewProductStatusChangedEvent(p *Product, from, to ProductStatus) *ProductStatusChangedEvent {
	return &ProductStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStatusChanged, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		Code:            p.Code,
		From:            from,
		To:              to,
	}
}

// ProductDeletedEvent is published when a product is deleted
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Code      string    `json:"code"`
}

func NewProductDeletedEvent(p *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, p.ID, p.TenantID),
		ProductID:       p.ID,
		Code:            p.Code,
	}
}
