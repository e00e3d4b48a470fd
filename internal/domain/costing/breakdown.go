package costing

import "github.com/shopspring/decimal"

// PricingInput is the costing sheet of a product.
type PricingInput struct {
	RawAmount      decimal.Decimal
	MarginPercent  decimal.Decimal
	WastagePercent decimal.Decimal
	Transport      decimal.Decimal
	Misc           decimal.Decimal
	GSTPercent     decimal.Decimal
}

// Breakdown is the suggested price of a product and how it was reached.
type Breakdown struct {
	RawAmount      decimal.Decimal `json:"raw_amount"`
	Wastage        decimal.Decimal `json:"wastage"`
	Transport      decimal.Decimal `json:"transport"`
	Misc           decimal.Decimal `json:"misc"`
	Cost           decimal.Decimal `json:"cost"`
	Margin         decimal.Decimal `json:"margin"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	GST            decimal.Decimal `json:"gst"`
	PriceWithGST   decimal.Decimal `json:"price_with_gst"`
}

// ProductBreakdown computes the suggested selling price.
//
//	cost      = raw + raw×wastage% + transport + misc
//	suggested = cost + cost×margin%
//	withGST   = suggested + suggested×gst%
func ProductBreakdown(in PricingInput) Breakdown {
	raw := Clamp(in.RawAmount)
	transport := Clamp(in.Transport)
	misc := Clamp(in.Misc)

	wastage := Percentage(raw, Clamp(in.WastagePercent))
	cost := Sum(raw, wastage, transport, misc)
	margin := Percentage(cost, Clamp(in.MarginPercent))
	suggested := cost.Add(margin)
	gst := Percentage(suggested, Clamp(in.GSTPercent))

	return Breakdown{
		RawAmount:      raw,
		Wastage:        wastage,
		Transport:      transport,
		Misc:           misc,
		Cost:           cost,
		Margin:         margin,
		SuggestedPrice: suggested,
		GST:            gst,
		PriceWithGST:   suggested.Add(gst),
	}
}

// LineQuote is the calculator preview for a single order line.
type LineQuote struct {
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Total        decimal.Decimal `json:"total"`
	GSTPercent   decimal.Decimal `json:"gst_percent"`
	GST          decimal.Decimal `json:"gst"`
	TotalWithGST decimal.Decimal `json:"total_with_gst"`
}

// QuoteLine computes the total and GST of one line.
func QuoteLine(qty, price, gstPct decimal.Decimal) LineQuote {
	total := LineTotal(qty, price)
	gst := Percentage(total, Clamp(gstPct))
	return LineQuote{
		Quantity:     Clamp(qty),
		UnitPrice:    Clamp(price),
		Total:        total,
		GSTPercent:   Clamp(gstPct),
		GST:          gst,
		TotalWithGST: total.Add(gst),
	}
}
