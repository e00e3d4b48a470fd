package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func givenOrderCreated(t *testing.T) *purchasing.PurchaseOrderCreatedEvent {
	t.Helper()
	materialID := uuid.New()
	order, _, err := purchasing.Build(uuid.New(), purchasing.Draft{
		Kind:         purchasing.KindGiven,
		OrderNumber:  "POG-2026-00007",
		Counterparty: purchasing.Counterparty{Name: "Shree Mills"},
		OrderDate:    time.Now(),
		Lines: []purchasing.LineInput{{
			MaterialID: &materialID,
			Quantity:   decimal.RequireFromString("2.5"),
			UnitPrice:  decimal.NewFromInt(40),
		}},
	}, time.Now())
	require.NoError(t, err)
	return purchasing.NewPurchaseOrderCreatedEvent(order)
}

func TestEventSerializer_RoundTripsOrderEvent(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	original := givenOrderCreated(t)

	data, err := s.Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"GIVEN"`)

	decoded, err := s.Deserialize(purchasing.EventTypePurchaseOrderCreated, data)
	require.NoError(t, err)

	ev, ok := decoded.(*purchasing.PurchaseOrderCreatedEvent)
	require.True(t, ok, "decoded %T", decoded)
	assert.Equal(t, original.EventID(), ev.EventID())
	assert.Equal(t, original.TenantID(), ev.TenantID())
	assert.Equal(t, original.OrderNumber, ev.OrderNumber)
	require.Len(t, ev.Lines, 1)
	assert.Equal(t, original.Lines[0].LineID, ev.Lines[0].LineID)
	assert.Equal(t, *original.Lines[0].MaterialID, *ev.Lines[0].MaterialID)
	assert.True(t, original.TotalAmount.Equal(ev.TotalAmount))
}

func TestEventSerializer_Rejects(t *testing.T) {
	s := NewEventSerializer()
	Register[testEvent](s, "TestEvent")

	t.Run("unregistered event on serialize", func(t *testing.T) {
		_, err := s.Serialize(newTestEvent("Other", uuid.New()))
		assert.ErrorContains(t, err, "not registered")
	})

	t.Run("unknown type on deserialize", func(t *testing.T) {
		_, err := s.Deserialize("Other", []byte(`{}`))
		assert.ErrorContains(t, err, "unknown event type")
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := s.Deserialize("TestEvent", []byte(`{"type":`))
		assert.ErrorContains(t, err, "decode TestEvent")
	})

	t.Run("payload of a different type", func(t *testing.T) {
		data, err := s.Serialize(newTestEvent("TestEvent", uuid.New()))
		require.NoError(t, err)
		Register[testEvent](s, "Renamed")

		_, err = s.Deserialize("Renamed", data)
		assert.ErrorContains(t, err, `row says "Renamed"`)
	})
}

func TestRegisterAllEvents(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	types := s.Types()
	assert.Len(t, types, 13)
	assert.IsIncreasing(t, types)
	assert.Contains(t, types, purchasing.EventTypePurchaseOrderCreated)
	assert.True(t, s.IsRegistered(purchasing.EventTypePurchaseOrderDeleted))
}
