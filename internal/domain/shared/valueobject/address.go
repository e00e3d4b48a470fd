package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a postal address. Every field is optional; an order may be saved
// with an empty address and filled in later.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// Normalized returns a copy with surrounding whitespace trimmed.
func (a Address) Normalized() Address {
	return Address{
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		Country:    strings.TrimSpace(a.Country),
		PostalCode: strings.TrimSpace(a.PostalCode),
	}
}

// IsEmpty returns true if no field is set
func (a Address) IsEmpty() bool {
	return a.Normalized() == Address{}
}

// String renders the non-empty parts joined by commas.
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Value stores the address as a JSON document
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a.Normalized())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads an address stored by Value
func (a *Address) Scan(value any) error {
	data, err := scanJSON(value, "Address")
	if err != nil {
		return err
	}
	if data == nil {
		*a = Address{}
		return nil
	}
	var v Address
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("cannot decode address: %w", err)
	}
	*a = v
	return nil
}

func scanJSON(value any, typ string) ([]byte, error) {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return nil, fmt.Errorf("cannot scan %T into %s", value, typ)
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return data, nil
}
