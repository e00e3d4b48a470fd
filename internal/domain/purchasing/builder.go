package purchasing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
)

// Draft is the full state of the order form at submit time.
type Draft struct {
	Kind          Kind
	OrderNumber   string
	Counterparty  Counterparty
	OrderDate     time.Time
	DeliveryDate  *time.Time
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Remarks       string
	Currency      valueobject.Currency
	Lines         []LineInput
}

// Hint is an advisory note about a missing field. Hints never block a save.
type Hint struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Hints lists the required-field markers the form would show for this draft.
func (d Draft) Hints() []Hint {
	var hints []Hint
	party := "Buyer"
	if d.Kind == KindGiven {
		party = "Vendor"
	}
	if strings.TrimSpace(d.Counterparty.Name) == "" {
		hints = append(hints, Hint{Field: "counterparty.name", Message: party + " name is required"})
	}
	if d.OrderDate.IsZero() {
		hints = append(hints, Hint{Field: "order_date", Message: "Order date is required"})
	}
	if len(d.Lines) == 0 {
		hints = append(hints, Hint{Field: "lines", Message: "At least one line item is required"})
	}
	for i, l := range d.Lines {
		prefix := fmt.Sprintf("lines[%d]", i)
		if d.Kind == KindGiven && l.MaterialID == nil {
			hints = append(hints, Hint{Field: prefix + ".material_id", Message: "Material is required"})
		}
		if d.Kind == KindReceived && l.ProductID == nil && strings.TrimSpace(l.Style) == "" && strings.TrimSpace(l.Description) == "" {
			hints = append(hints, Hint{Field: prefix + ".style", Message: "Style is required"})
		}
		if !l.Quantity.IsPositive() {
			hints = append(hints, Hint{Field: prefix + ".quantity", Message: "Quantity is required"})
		}
		if !l.UnitPrice.IsPositive() {
			hints = append(hints, Hint{Field: prefix + ".unit_price", Message: "Price is required"})
		}
	}
	return hints
}

// Build assembles a new order from a draft. Incomplete drafts are accepted:
// missing text stays empty, missing numbers are zero, a missing order date
// becomes now and an empty line list gets one blank line. Only values that
// cannot be represented (unknown kind or status) are rejected.
func Build(tenantID uuid.UUID, d Draft, now time.Time) (*PurchaseOrder, []Hint, error) {
	if !d.Kind.IsValid() {
		return nil, nil, shared.NewDomainError("INVALID_ORDER_KIND", "Purchase order kind must be GIVEN or RECEIVED")
	}
	status, err := resolveOrderStatus(d.Status, OrderStatusPending)
	if err != nil {
		return nil, nil, err
	}
	payment, err := resolvePaymentStatus(d.PaymentStatus, PaymentStatusPending)
	if err != nil {
		return nil, nil, err
	}
	hints := d.Hints()

	o := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRootAt(tenantID, now),
		Kind:                d.Kind,
		OrderNumber:         strings.TrimSpace(d.OrderNumber),
		Status:              status,
		PaymentStatus:       payment,
	}
	o.fill(d, now)
	o.Lines = make([]LineItem, 0, max(len(d.Lines), 1))
	for _, in := range d.Lines {
		o.Lines = append(o.Lines, newLineItem(in))
	}
	if len(o.Lines) == 0 {
		o.Lines = append(o.Lines, newLineItem(LineInput{}))
	}
	o.Recalculate()

	o.AddDomainEvent(NewPurchaseOrderCreatedEvent(o))
	return o, hints, nil
}

// Replace overwrites the order with a resubmitted draft, keeping its id,
// kind, attachments and creation time. Lines whose id matches an existing
// line keep that id.
func (o *PurchaseOrder) Replace(d Draft, now time.Time) ([]Hint, error) {
	if d.Kind != "" && d.Kind != o.Kind {
		return nil, shared.NewDomainError("INVALID_INPUT", "Purchase order kind cannot change")
	}
	d.Kind = o.Kind
	status, err := resolveOrderStatus(d.Status, o.Status)
	if err != nil {
		return nil, err
	}
	payment, err := resolvePaymentStatus(d.PaymentStatus, o.PaymentStatus)
	if err != nil {
		return nil, err
	}
	hints := d.Hints()

	existing := make(map[uuid.UUID]bool, len(o.Lines))
	for _, l := range o.Lines {
		existing[l.ID] = true
	}
	lines := make([]LineItem, 0, max(len(d.Lines), 1))
	for _, in := range d.Lines {
		line := newLineItem(in)
		if in.ID != nil && existing[*in.ID] {
			line.ID = *in.ID
			delete(existing, *in.ID)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, newLineItem(LineInput{}))
	}

	if number := strings.TrimSpace(d.OrderNumber); number != "" {
		o.OrderNumber = number
	}
	o.Status = status
	o.PaymentStatus = payment
	o.fill(d, now)
	o.Lines = lines
	o.Recalculate()
	o.Touch(now)

	o.raiseUpdated()
	return hints, nil
}

func (o *PurchaseOrder) fill(d Draft, now time.Time) {
	o.Counterparty = d.Counterparty
	o.Counterparty.Name = strings.TrimSpace(d.Counterparty.Name)
	o.Counterparty.BillingAddress = d.Counterparty.BillingAddress.Normalized()
	o.Counterparty.ShippingAddress = d.Counterparty.ShippingAddress.Normalized()
	o.OrderDate = d.OrderDate
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	o.DeliveryDate = d.DeliveryDate
	o.Remarks = d.Remarks
	o.Currency = valueobject.ResolveCurrency(d.Currency)
}

func resolveOrderStatus(s, fallback OrderStatus) (OrderStatus, error) {
	if s == "" {
		return fallback, nil
	}
	return ParseOrderStatus(string(s))
}

func resolvePaymentStatus(s, fallback PaymentStatus) (PaymentStatus, error) {
	if s == "" {
		return fallback, nil
	}
	return ParsePaymentStatus(string(s))
}
