package purchasing

import (
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypePurchaseOrderCreated              = "PurchaseOrderCreated"
	EventTypePurchaseOrderUpdated              = "PurchaseOrderUpdated"
	EventTypePurchaseOrderStatusChanged        = "PurchaseOrderStatusChanged"
	EventTypePurchaseOrderPaymentStatusChanged = "PurchaseOrderPaymentStatusChanged"
	EventTypePurchaseOrderDeleted              = "PurchaseOrderDeleted"
)

// LineSnapshot is the part of a line the usage propagation needs.
type LineSnapshot struct {
	LineID      uuid.UUID       `json:"line_id"`
	Position    int             `json:"position"`
	MaterialID  *uuid.UUID      `json:"material_id,omitempty"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ActualPrice decimal.Decimal `json:"actual_price"`
	Total       decimal.Decimal `json:"total"`
}

// PurchaseOrderCreatedEvent is raised once per order, when it is first saved.
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Kind        Kind            `json:"kind"`
	Lines       []LineSnapshot  `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Kind:            o.Kind,
		Lines:           snapshotLines(o),
		TotalAmount:     o.TotalAmount,
	}
}

func snapshotLines(o *PurchaseOrder) []LineSnapshot {
	lines := make([]LineSnapshot, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = LineSnapshot{
			LineID:      l.ID,
			Position:    l.Position,
			MaterialID:  l.MaterialID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			ActualPrice: l.EffectiveActualPrice(),
			Total:       l.Total,
		}
	}
	return lines
}

// PurchaseOrderUpdatedEvent is raised when the document is replaced or its
// lines are edited. Lines is the full line set after the change.
type PurchaseOrderUpdatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Kind        Kind            `json:"kind"`
	Lines       []LineSnapshot  `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewPurchaseOrderUpdatedEvent(o *PurchaseOrder) *PurchaseOrderUpdatedEvent {
	return &PurchaseOrderUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderUpdated, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Kind:            o.Kind,
		Lines:           snapshotLines(o),
		TotalAmount:     o.TotalAmount,
	}
}

// PurchaseOrderStatusChangedEvent is raised by SetStatus.
type PurchaseOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
}

func NewPurchaseOrderStatusChangedEvent(o *PurchaseOrder, from, to OrderStatus) *PurchaseOrderStatusChangedEvent {
	return &PurchaseOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderStatusChanged, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		From:            from,
		To:              to,
	}
}

// PurchaseOrderPaymentStatusChangedEvent is raised by SetPaymentStatus.
type PurchaseOrderPaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID     `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	From        PaymentStatus `json:"from"`
	To          PaymentStatus `json:"to"`
}

func NewPurchaseOrderPaymentStatusChangedEvent(o *PurchaseOrder, from, to PaymentStatus) *PurchaseOrderPaymentStatusChangedEvent {
	return &PurchaseOrderPaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderPaymentStatusChanged, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		From:            from,
		To:              to,
	}
}

// PurchaseOrderDeletedEvent is raised before an order is hard-deleted.
type PurchaseOrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Kind        Kind      `json:"kind"`
}

func NewPurchaseOrderDeletedEvent(o *PurchaseOrder) *PurchaseOrderDeletedEvent {
	return &PurchaseOrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderDeleted, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Kind:            o.Kind,
	}
}
