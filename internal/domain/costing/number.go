package costing

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Number is a non-negative decimal read from a form field. It accepts JSON
// numbers, numeric strings, "" and null, so GST may arrive as 18 or "18".
type Number struct {
	d decimal.Decimal
}

// NewNumber wraps d, clamping negatives to zero.
func NewNumber(d decimal.Decimal) Number {
	return Number{d: Clamp(d)}
}

// NumberOf coerces any form value.
func NumberOf(v any) Number {
	return Number{d: Coerce(v)}
}

// Decimal returns the wrapped value.
func (n Number) Decimal() decimal.Decimal { return n.d }

func (n Number) IsZero() bool { return n.d.IsZero() }

func (n Number) String() string { return n.d.String() }

// MarshalJSON writes the value as a bare JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.d.String()), nil
}

// UnmarshalJSON never fails on content: anything that is not a non-negative
// number reads as zero.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		n.d = decimal.Zero
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			n.d = decimal.Zero
			return nil
		}
		n.d = Coerce(s)
		return nil
	}
	n.d = Coerce(json.Number(data))
	return nil
}

// Value implements driver.Valuer
func (n Number) Value() (driver.Value, error) {
	return n.d.String(), nil
}

// Scan implements sql.Scanner
func (n *Number) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	n.d = Clamp(d)
	return nil
}
