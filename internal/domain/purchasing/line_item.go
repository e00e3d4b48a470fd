package purchasing

import (
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/costing"
	"github.com/shopspring/decimal"
)

// LineInput is the editable part of a line as it arrives from a form.
// ID is set only when an existing line is being resubmitted.
type LineInput struct {
	ID          *uuid.UUID
	MaterialID  *uuid.UUID
	ProductID   *uuid.UUID
	Description string
	Style       string
	Color       string
	Size        string
	UnitType    string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	ActualPrice decimal.Decimal
	GSTPercent  decimal.Decimal
}

// LineItem is one row of an order. For received orders UnitPrice is the price
// of the style; for given orders it is the material's estimated price and
// ActualPrice holds what the vendor confirmed.
type LineItem struct {
	ID          uuid.UUID
	Position    int
	MaterialID  *uuid.UUID
	ProductID   *uuid.UUID
	Description string
	Style       string
	Color       string
	Size        string
	UnitType    string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	ActualPrice decimal.Decimal
	GSTPercent  decimal.Decimal
	Total       decimal.Decimal
}

func newLineItem(in LineInput) LineItem {
	l := LineItem{ID: uuid.New()}
	l.apply(in)
	return l
}

func (l *LineItem) apply(in LineInput) {
	l.MaterialID = in.MaterialID
	l.ProductID = in.ProductID
	l.Description = in.Description
	l.Style = in.Style
	l.Color = in.Color
	l.Size = in.Size
	l.UnitType = in.UnitType
	l.Quantity = costing.Clamp(in.Quantity)
	l.UnitPrice = costing.Clamp(in.UnitPrice)
	l.ActualPrice = costing.Clamp(in.ActualPrice)
	l.GSTPercent = costing.Clamp(in.GSTPercent)
	l.recalculate()
}

func (l *LineItem) recalculate() {
	l.Total = costing.LineTotal(l.Quantity, l.UnitPrice)
}

// GSTAmount is the tax on the line total.
func (l LineItem) GSTAmount() decimal.Decimal {
	return costing.Percentage(l.Total, l.GSTPercent)
}

// EffectiveActualPrice is the price written back to the material when the
// order is propagated: the confirmed price if one was entered, otherwise the
// estimate.
func (l LineItem) EffectiveActualPrice() decimal.Decimal {
	if l.ActualPrice.IsPositive() {
		return l.ActualPrice
	}
	return l.UnitPrice
}

// clone copies the line under a new identity.
func (l LineItem) clone() LineItem {
	c := l
	c.ID = uuid.New()
	if l.MaterialID != nil {
		id := *l.MaterialID
		c.MaterialID = &id
	}
	if l.ProductID != nil {
		id := *l.ProductID
		c.ProductID = &id
	}
	return c
}
