// Package costing holds the arithmetic behind order lines and product pricing.
// Values are never rounded here; rounding happens only when rendering with Display.
package costing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Coerce converts a form value to a non-negative decimal. Empty, non-numeric
// and negative inputs become zero.
func Coerce(v any) decimal.Decimal {
	var d decimal.Decimal
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		d = *x
	case Number:
		return x.Decimal()
	case string:
		parsed, ok := parseString(x)
		if !ok {
			return decimal.Zero
		}
		d = parsed
	case json.Number:
		parsed, ok := parseString(string(x))
		if !ok {
			return decimal.Zero
		}
		d = parsed
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat(x)
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat32(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int32:
		d = decimal.NewFromInt32(x)
	case int64:
		d = decimal.NewFromInt(x)
	case uint:
		d = decimal.NewFromUint64(uint64(x))
	case uint32:
		d = decimal.NewFromUint64(uint64(x))
	case uint64:
		d = decimal.NewFromUint64(x)
	default:
		return decimal.Zero
	}
	return Clamp(d)
}

func parseString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Clamp returns d, or zero when d is negative.
func Clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// LineTotal returns qty × price with both sides clamped to zero.
func LineTotal(qty, price decimal.Decimal) decimal.Decimal {
	return Clamp(qty).Mul(Clamp(price))
}

// Percentage returns base × pct / 100.
func Percentage(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// AddPercentage returns base plus pct percent of base.
func AddPercentage(base, pct decimal.Decimal) decimal.Decimal {
	return base.Add(Percentage(base, pct))
}

// Sum adds up the given amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Display formats an amount with two decimal places.
func Display(d decimal.Decimal) string {
	return d.StringFixed(2)
}
