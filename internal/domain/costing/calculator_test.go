package costing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "0"},
		{"empty string", "", "0"},
		{"blank string", "   ", "0"},
		{"numeric string", "12.5", "12.5"},
		{"garbage string", "abc", "0"},
		{"negative string", "-3", "0"},
		{"int", 7, "7"},
		{"negative int", -7, "0"},
		{"float", 2.25, "2.25"},
		{"NaN", math.NaN(), "0"},
		{"infinity", math.Inf(1), "0"},
		{"decimal", d("9.99"), "9.99"},
		{"json number", json.Number("4"), "4"},
		{"unsupported type", true, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, d(tt.want).Equal(Coerce(tt.input)), "got %s", Coerce(tt.input))
		})
	}
}

func TestLineTotal(t *testing.T) {
	t.Run("multiplies quantity by price", func(t *testing.T) {
		assert.Equal(t, "20", LineTotal(d("2"), d("10.00")).String())
		assert.Equal(t, "16.5", LineTotal(d("3"), d("5.50")).String())
	})

	t.Run("empty input counts as zero", func(t *testing.T) {
		assert.True(t, LineTotal(Coerce(""), d("10")).IsZero())
		assert.True(t, LineTotal(d("4"), Coerce("")).IsZero())
	})

	t.Run("negative input is clamped", func(t *testing.T) {
		assert.True(t, LineTotal(d("-2"), d("10")).IsZero())
	})

	t.Run("does not round", func(t *testing.T) {
		total := LineTotal(d("3"), d("0.333"))
		assert.Equal(t, "0.999", total.String())
		assert.Equal(t, "1.00", Display(total))
	})
}

func TestPercentage(t *testing.T) {
	t.Run("GST on 200 at 18 percent", func(t *testing.T) {
		fromString := Percentage(d("200.00"), Coerce("18"))
		fromNumber := Percentage(d("200.00"), Coerce(18))

		assert.Equal(t, "36.00", Display(fromString))
		assert.True(t, fromString.Equal(fromNumber))
	})

	t.Run("add percentage", func(t *testing.T) {
		assert.Equal(t, "236.00", Display(AddPercentage(d("200"), d("18"))))
	})

	t.Run("recomputes from the current base", func(t *testing.T) {
		pct := d("10")
		assert.Equal(t, "10", Percentage(d("100"), pct).String())
		assert.Equal(t, "25", Percentage(d("250"), pct).String())
	})
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().IsZero())
	assert.Equal(t, "36.5", Sum(d("20"), d("16.5")).String())
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`18`, "18"},
		{`"18"`, "18"},
		{`""`, "0"},
		{`null`, "0"},
		{`"n/a"`, "0"},
		{`-5`, "0"},
		{`"12.75"`, "12.75"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &n))
			assert.True(t, d(tt.want).Equal(n.Decimal()))
		})
	}

	t.Run("inside a struct", func(t *testing.T) {
		var body struct {
			GST Number `json:"gst"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"gst":"18"}`), &body))
		assert.Equal(t, "18", body.GST.String())

		out, err := json.Marshal(body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"gst":18}`, string(out))
	})
}

func TestProductBreakdown(t *testing.T) {
	b := ProductBreakdown(PricingInput{
		RawAmount:      d("100"),
		WastagePercent: d("10"),
		Transport:      d("5"),
		Misc:           d("5"),
		MarginPercent:  d("20"),
		GSTPercent:     d("5"),
	})

	assert.Equal(t, "10.00", Display(b.Wastage))
	assert.Equal(t, "120.00", Display(b.Cost))
	assert.Equal(t, "24.00", Display(b.Margin))
	assert.Equal(t, "144.00", Display(b.SuggestedPrice))
	assert.Equal(t, "7.20", Display(b.GST))
	assert.Equal(t, "151.20", Display(b.PriceWithGST))
}

func TestQuoteLine(t *testing.T) {
	q := QuoteLine(d("2"), d("100"), d("18"))

	assert.Equal(t, "200.00", Display(q.Total))
	assert.Equal(t, "36.00", Display(q.GST))
	assert.Equal(t, "236.00", Display(q.TotalWithGST))
}
