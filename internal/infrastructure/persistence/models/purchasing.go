package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/purchasing"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CounterpartyColumns is embedded into purchase_orders with prefix counterparty_.
type CounterpartyColumns struct {
	CompanyID       *uuid.UUID          `gorm:"type:uuid;index"`
	Name            string              `gorm:"type:varchar(200);not null;default:''"`
	ContactPerson   string              `gorm:"type:varchar(100)"`
	Phone           string              `gorm:"type:varchar(50)"`
	Email           string              `gorm:"type:varchar(200)"`
	TaxID           string              `gorm:"type:varchar(50)"`
	BillingAddress  valueobject.Address `gorm:"type:text"`
	ShippingAddress valueobject.Address `gorm:"type:text"`
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	TenantAggregateModel
	Kind          string              `gorm:"type:varchar(10);not null;index"`
	OrderNumber   string              `gorm:"type:varchar(50);not null"`
	Counterparty  CounterpartyColumns `gorm:"embedded;embeddedPrefix:counterparty_"`
	OrderDate     time.Time           `gorm:"not null;index"`
	DeliveryDate  *time.Time
	Status        string                   `gorm:"type:varchar(20);not null;default:'Pending'"`
	PaymentStatus string                   `gorm:"type:varchar(20);not null;default:'Pending'"`
	Remarks       string                   `gorm:"type:text"`
	Currency      valueobject.Currency     `gorm:"type:text"`
	TotalAmount   decimal.Decimal          `gorm:"type:numeric;not null"`
	TaxAmount     decimal.Decimal          `gorm:"type:numeric;not null"`
	TotalWithTax  decimal.Decimal          `gorm:"type:numeric;not null"`
	Lines         []PurchaseOrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
	Attachments   []OrderAttachmentModel   `gorm:"foreignKey:OrderID;references:ID"`
}

func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the row and its preloaded lines and attachments.
func (m *PurchaseOrderModel) ToDomain() (*purchasing.PurchaseOrder, error) {
	kind, err := purchasing.ParseKind(m.Kind)
	if err != nil {
		return nil, malformed(m.TableName(), m.ID, err)
	}
	status, err := purchasing.ParseOrderStatus(m.Status)
	if err != nil {
		return nil, malformed(m.TableName(), m.ID, err)
	}
	payment, err := purchasing.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, malformed(m.TableName(), m.ID, err)
	}

	o := &purchasing.PurchaseOrder{
		TenantAggregateRoot: m.tenantRoot(),
		Kind:                kind,
		OrderNumber:         m.OrderNumber,
		Counterparty: purchasing.Counterparty{
			CompanyID:       m.Counterparty.CompanyID,
			Name:            m.Counterparty.Name,
			ContactPerson:   m.Counterparty.ContactPerson,
			Phone:           m.Counterparty.Phone,
			Email:           m.Counterparty.Email,
			TaxID:           m.Counterparty.TaxID,
			BillingAddress:  m.Counterparty.BillingAddress,
			ShippingAddress: m.Counterparty.ShippingAddress,
		},
		OrderDate:     m.OrderDate,
		DeliveryDate:  m.DeliveryDate,
		Status:        status,
		PaymentStatus: payment,
		Remarks:       m.Remarks,
		Currency:      m.Currency,
		TotalAmount:   m.TotalAmount,
		TaxAmount:     m.TaxAmount,
		TotalWithTax:  m.TotalWithTax,
		Lines:         make([]purchasing.LineItem, len(m.Lines)),
		Attachments:   make([]purchasing.Attachment, len(m.Attachments)),
	}
	for i := range m.Lines {
		o.Lines[i] = m.Lines[i].ToDomain()
	}
	for i := range m.Attachments {
		o.Attachments[i] = m.Attachments[i].ToDomain()
	}
	return o, nil
}

// FromDomain populates the model, lines and attachments from the aggregate.
func (m *PurchaseOrderModel) FromDomain(o *purchasing.PurchaseOrder) {
	m.fromTenantRoot(o.TenantAggregateRoot)
	m.Kind = string(o.Kind)
	m.OrderNumber = o.OrderNumber
	m.Counterparty = CounterpartyColumns{
		CompanyID:       o.Counterparty.CompanyID,
		Name:            o.Counterparty.Name,
		ContactPerson:   o.Counterparty.ContactPerson,
		Phone:           o.Counterparty.Phone,
		Email:           o.Counterparty.Email,
		TaxID:           o.Counterparty.TaxID,
		BillingAddress:  o.Counterparty.BillingAddress,
		ShippingAddress: o.Counterparty.ShippingAddress,
	}
	m.OrderDate = o.OrderDate
	m.DeliveryDate = o.DeliveryDate
	m.Status = string(o.Status)
	m.PaymentStatus = string(o.PaymentStatus)
	m.Remarks = o.Remarks
	m.Currency = o.Currency
	m.TotalAmount = o.TotalAmount
	m.TaxAmount = o.TaxAmount
	m.TotalWithTax = o.TotalWithTax
	m.Lines = make([]PurchaseOrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i] = PurchaseOrderLineModelFromDomain(o.ID, &o.Lines[i])
	}
	m.Attachments = make([]OrderAttachmentModel, len(o.Attachments))
	for i := range o.Attachments {
		m.Attachments[i] = OrderAttachmentModelFromDomain(o.TenantID, o.ID, &o.Attachments[i])
	}
}

func PurchaseOrderModelFromDomain(o *purchasing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderLineModel is one line row of a purchase order.
type PurchaseOrderLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	MaterialID  *uuid.UUID      `gorm:"type:uuid;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"type:text"`
	Style       string          `gorm:"type:varchar(200)"`
	Color       string          `gorm:"type:varchar(100)"`
	Size        string          `gorm:"type:varchar(100)"`
	UnitType    string          `gorm:"type:varchar(50)"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric;not null"`
	ActualPrice decimal.Decimal `gorm:"type:numeric;not null"`
	GSTPercent  decimal.Decimal `gorm:"type:numeric;not null"`
	Total       decimal.Decimal `gorm:"type:numeric;not null"`
}

func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

func (m *PurchaseOrderLineModel) ToDomain() purchasing.LineItem {
	return purchasing.LineItem{
		ID:          m.ID,
		Position:    m.Position,
		MaterialID:  m.MaterialID,
		ProductID:   m.ProductID,
		Description: m.Description,
		Style:       m.Style,
		Color:       m.Color,
		Size:        m.Size,
		UnitType:    m.UnitType,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		ActualPrice: m.ActualPrice,
		GSTPercent:  m.GSTPercent,
		Total:       m.Total,
	}
}

func PurchaseOrderLineModelFromDomain(orderID uuid.UUID, l *purchasing.LineItem) PurchaseOrderLineModel {
	return PurchaseOrderLineModel{
		ID:          l.ID,
		OrderID:     orderID,
		Position:    l.Position,
		MaterialID:  l.MaterialID,
		ProductID:   l.ProductID,
		Description: l.Description,
		Style:       l.Style,
		Color:       l.Color,
		Size:        l.Size,
		UnitType:    l.UnitType,
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		ActualPrice: l.ActualPrice,
		GSTPercent:  l.GSTPercent,
		Total:       l.Total,
	}
}

// OrderAttachmentModel records an object stored for a purchase order.
type OrderAttachmentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	ObjectKey   string    `gorm:"type:varchar(500);not null"`
	Size        int64     `gorm:"not null"`
	UploadedAt  time.Time `gorm:"not null"`
}

func (OrderAttachmentModel) TableName() string {
	return "purchase_order_attachments"
}

func (m *OrderAttachmentModel) ToDomain() purchasing.Attachment {
	return purchasing.Attachment{
		ID:          m.ID,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		ObjectKey:   m.ObjectKey,
		Size:        m.Size,
		UploadedAt:  m.UploadedAt,
	}
}

func OrderAttachmentModelFromDomain(tenantID, orderID uuid.UUID, a *purchasing.Attachment) OrderAttachmentModel {
	return OrderAttachmentModel{
		ID:          a.ID,
		TenantID:    tenantID,
		OrderID:     orderID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		ObjectKey:   a.ObjectKey,
		Size:        a.Size,
		UploadedAt:  a.UploadedAt,
	}
}
