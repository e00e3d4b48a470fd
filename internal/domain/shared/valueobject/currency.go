package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Currency describes the currency an order is priced in. Amounts themselves
// are plain decimals; the descriptor is only carried for display.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// DefaultCurrency is used when a submitted order carries no currency.
var DefaultCurrency = Currency{Code: "INR", Symbol: "₹", Name: "Indian Rupee"}

var knownCurrencies = map[string]Currency{
	"INR": DefaultCurrency,
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro"},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound"},
	"AED": {Code: "AED", Symbol: "د.إ", Name: "UAE Dirham"},
}

// ResolveCurrency fills the symbol and name of a known code and falls back to
// DefaultCurrency when the code is empty. Unknown codes are kept as given.
func ResolveCurrency(c Currency) Currency {
	code := strings.ToUpper(strings.TrimSpace(c.Code))
	if code == "" {
		return DefaultCurrency
	}
	known, ok := knownCurrencies[code]
	if !ok {
		c.Code = code
		return c
	}
	if c.Symbol != "" {
		known.Symbol = c.Symbol
	}
	if c.Name != "" {
		known.Name = c.Name
	}
	return known
}

// Value stores the descriptor as a JSON document
func (c Currency) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a descriptor stored by Value
func (c *Currency) Scan(value any) error {
	data, err := scanJSON(value, "Currency")
	if err != nil {
		return err
	}
	if data == nil {
		*c = DefaultCurrency
		return nil
	}
	var v Currency
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("cannot decode currency: %w", err)
	}
	*c = v
	return nil
}
