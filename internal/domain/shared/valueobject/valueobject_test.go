package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_ValueScan(t *testing.T) {
	t.Run("round trips through JSON column", func(t *testing.T) {
		addr := Address{Line1: " 12 Mill Road ", City: "Tiruppur", State: "TN", Country: "India", PostalCode: "641601"}

		v, err := addr.Value()
		require.NoError(t, err)

		var got Address
		require.NoError(t, got.Scan(v))
		assert.Equal(t, "12 Mill Road", got.Line1)
		assert.Equal(t, "Tiruppur", got.City)
	})

	t.Run("empty address stores NULL", func(t *testing.T) {
		v, err := Address{City: "  "}.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("scan rejects unsupported types", func(t *testing.T) {
		var got Address
		assert.Error(t, got.Scan(42))
	})

	t.Run("string skips empty parts", func(t *testing.T) {
		addr := Address{Line1: "Plot 4", City: "Surat", Country: "India"}
		assert.Equal(t, "Plot 4, Surat, India", addr.String())
	})
}

func TestResolveCurrency(t *testing.T) {
	assert.Equal(t, DefaultCurrency, ResolveCurrency(Currency{}))
	assert.Equal(t, "$", ResolveCurrency(Currency{Code: "usd"}).Symbol)
	assert.Equal(t, Currency{Code: "JPY", Symbol: "¥"}, ResolveCurrency(Currency{Code: "jpy", Symbol: "¥"}))
}

func TestCurrency_ScanNull(t *testing.T) {
	var c Currency
	require.NoError(t, c.Scan(nil))
	assert.Equal(t, DefaultCurrency, c)
}
