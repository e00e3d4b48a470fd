package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateTypePurchaseOrder is the aggregate type recorded on events and outbox rows.
const AggregateTypePurchaseOrder = "PurchaseOrder"

var ErrLineNotFound = shared.NewDomainError("LINE_NOT_FOUND", "Line item not found")

// Counterparty is the vendor (given orders) or buyer (received orders) as it
// was at the time the order was written. CompanyID links to the company
// directory when the counterparty was picked from it.
type Counterparty struct {
	CompanyID       *uuid.UUID
	Name            string
	ContactPerson   string
	Phone           string
	Email           string
	TaxID           string
	BillingAddress  valueobject.Address
	ShippingAddress valueobject.Address
}

// Attachment is a file uploaded against a received order.
type Attachment struct {
	ID          uuid.UUID
	FileName    string
	ContentType string
	ObjectKey   string
	Size        int64
	UploadedAt  time.Time
}

// PurchaseOrder is an order given to a vendor or received from a buyer.
// TotalAmount, TaxAmount and TotalWithTax are derived from Lines after every
// mutation and are never set directly.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	Kind          Kind
	OrderNumber   string
	Counterparty  Counterparty
	OrderDate     time.Time
	DeliveryDate  *time.Time
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Remarks       string
	Currency      valueobject.Currency
	Lines         []LineItem
	TotalAmount   decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalWithTax  decimal.Decimal
	Attachments   []Attachment
}

// AddLine appends a line and returns it.
func (o *PurchaseOrder) AddLine(in LineInput) *LineItem {
	o.Lines = append(o.Lines, newLineItem(in))
	o.afterLinesChanged()
	return &o.Lines[len(o.Lines)-1]
}

// UpdateLine replaces the editable fields of a line.
func (o *PurchaseOrder) UpdateLine(lineID uuid.UUID, in LineInput) (*LineItem, error) {
	idx := o.lineIndex(lineID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}
	o.Lines[idx].apply(in)
	o.afterLinesChanged()
	return &o.Lines[idx], nil
}

// RemoveLine deletes a line. An order always keeps at least one line, so
// removing the only remaining line does nothing and reports false.
func (o *PurchaseOrder) RemoveLine(lineID uuid.UUID) (bool, error) {
	idx := o.lineIndex(lineID)
	if idx < 0 {
		return false, ErrLineNotFound
	}
	if len(o.Lines) <= 1 {
		return false, nil
	}
	o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
	o.afterLinesChanged()
	return true, nil
}

// DuplicateLine appends a copy of a line under a new id.
func (o *PurchaseOrder) DuplicateLine(lineID uuid.UUID) (*LineItem, error) {
	idx := o.lineIndex(lineID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}
	o.Lines = append(o.Lines, o.Lines[idx].clone())
	o.afterLinesChanged()
	return &o.Lines[len(o.Lines)-1], nil
}

// Line returns the line with the given id.
func (o *PurchaseOrder) Line(lineID uuid.UUID) (*LineItem, bool) {
	idx := o.lineIndex(lineID)
	if idx < 0 {
		return nil, false
	}
	return &o.Lines[idx], true
}

func (o *PurchaseOrder) lineIndex(lineID uuid.UUID) int {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// Recalculate derives line totals, positions and order totals from the
// current lines. Calling it twice gives the same result.
func (o *PurchaseOrder) Recalculate() {
	total := decimal.Zero
	tax := decimal.Zero
	for i := range o.Lines {
		o.Lines[i].Position = i + 1
		o.Lines[i].recalculate()
		total = total.Add(o.Lines[i].Total)
		tax = tax.Add(o.Lines[i].GSTAmount())
	}
	o.TotalAmount = total
	o.TaxAmount = tax
	o.TotalWithTax = total.Add(tax)
}

// afterLinesChanged keeps one pending update event carrying the latest lines.
func (o *PurchaseOrder) afterLinesChanged() {
	o.Recalculate()
	o.Touch(time.Now())
	o.raiseUpdated()
}

func (o *PurchaseOrder) raiseUpdated() {
	pending := o.GetDomainEvents()
	kept := pending[:0:0]
	for _, ev := range pending {
		if ev.EventType() != EventTypePurchaseOrderUpdated {
			kept = append(kept, ev)
		}
	}
	o.ClearDomainEvents()
	for _, ev := range kept {
		o.AddDomainEvent(ev)
	}
	o.AddDomainEvent(NewPurchaseOrderUpdatedEvent(o))
}

// SetStatus moves the order to any status. Only the status and the updated
// timestamp change. It reports whether the value actually changed.
func (o *PurchaseOrder) SetStatus(status OrderStatus, now time.Time) (bool, error) {
	if !status.IsValid() {
		return false, shared.NewDomainError("INVALID_ORDER_STATUS", "Order status must be one of Pending, InProduction, Completed, Cancelled")
	}
	from := o.Status
	o.Status = status
	o.Touch(now)
	if from == status {
		return false, nil
	}
	o.AddDomainEvent(NewPurchaseOrderStatusChangedEvent(o, from, status))
	return true, nil
}

// SetPaymentStatus moves the payment status to any value, independently of
// the order status.
func (o *PurchaseOrder) SetPaymentStatus(status PaymentStatus, now time.Time) (bool, error) {
	if !status.IsValid() {
		return false, shared.NewDomainError("INVALID_PAYMENT_STATUS", "Payment status must be one of Pending, Partial, Paid, UnPaid")
	}
	from := o.PaymentStatus
	o.PaymentStatus = status
	o.Touch(now)
	if from == status {
		return false, nil
	}
	o.AddDomainEvent(NewPurchaseOrderPaymentStatusChangedEvent(o, from, status))
	return true, nil
}

// AddAttachment records an uploaded file.
func (o *PurchaseOrder) AddAttachment(att Attachment) {
	o.Attachments = append(o.Attachments, att)
	o.Touch(att.UploadedAt)
}

// Attachment returns the attachment with the given id.
func (o *PurchaseOrder) Attachment(id uuid.UUID) (*Attachment, bool) {
	for i := range o.Attachments {
		if o.Attachments[i].ID == id {
			return &o.Attachments[i], true
		}
	}
	return nil, false
}

// MarkDeleted raises the deletion event. The caller removes the row.
func (o *PurchaseOrder) MarkDeleted() {
	o.AddDomainEvent(NewPurchaseOrderDeletedEvent(o))
}
