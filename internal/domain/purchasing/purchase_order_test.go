package purchasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTenantID = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func receivedDraft(lines ...LineInput) Draft {
	return Draft{
		Kind:         KindReceived,
		OrderNumber:  "POR-2026-00001",
		Counterparty: Counterparty{Name: "Blue Loom Apparel"},
		OrderDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines:        lines,
	}
}

func line(qty, price string) LineInput {
	return LineInput{Style: "Polo", Color: "Navy", Size: "M", Quantity: dec(qty), UnitPrice: dec(price)}
}

func createTestOrder(t *testing.T, lines ...LineInput) *PurchaseOrder {
	t.Helper()
	o, _, err := Build(testTenantID, receivedDraft(lines...), time.Now())
	require.NoError(t, err)
	return o
}

func TestBuild(t *testing.T) {
	t.Run("totals follow the lines", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10.00"), line("3", "5.50"))

		assert.Equal(t, "36.50", o.TotalAmount.StringFixed(2))
		require.Len(t, o.Lines, 2)
		assert.Equal(t, 1, o.Lines[0].Position)
		assert.Equal(t, 2, o.Lines[1].Position)
		assert.Equal(t, "20", o.Lines[0].Total.String())
	})

	t.Run("defaults statuses and currency", func(t *testing.T) {
		o := createTestOrder(t, line("1", "1"))

		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, valueobject.DefaultCurrency, o.Currency)
		assert.Equal(t, 1, o.Version)
	})

	t.Run("raises created event with line snapshot", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*PurchaseOrderCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, o.ID, created.OrderID)
		assert.Equal(t, "POR-2026-00001", created.OrderNumber)
		require.Len(t, created.Lines, 1)
		assert.Equal(t, o.Lines[0].ID, created.Lines[0].LineID)
	})

	t.Run("incomplete drafts are accepted with hints", func(t *testing.T) {
		now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
		o, hints, err := Build(testTenantID, Draft{Kind: KindGiven}, now)

		require.NoError(t, err)
		assert.Equal(t, "", o.Counterparty.Name)
		assert.Equal(t, now, o.OrderDate)
		assert.Equal(t, now, o.CreatedAt)
		assert.Equal(t, now, o.UpdatedAt)
		require.Len(t, o.Lines, 1, "an order always keeps one line")
		assert.True(t, o.TotalAmount.IsZero())

		fields := make([]string, len(hints))
		for i, h := range hints {
			fields[i] = h.Field
		}
		assert.Contains(t, fields, "counterparty.name")
		assert.Contains(t, fields, "order_date")
		assert.Contains(t, fields, "lines")
	})

	t.Run("given lines without material are hinted", func(t *testing.T) {
		d := Draft{Kind: KindGiven, Counterparty: Counterparty{Name: "Yarn Co"}, OrderDate: time.Now(), Lines: []LineInput{{Quantity: dec("5"), UnitPrice: dec("2")}}}
		hints := d.Hints()
		require.Len(t, hints, 1)
		assert.Equal(t, "lines[0].material_id", hints[0].Field)
		assert.Equal(t, "Vendor name is required", Draft{Kind: KindGiven}.Hints()[0].Message)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, _, err := Build(testTenantID, Draft{Kind: "BARTER"}, time.Now())
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_ORDER_KIND", de.Code)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		d := receivedDraft(line("1", "1"))
		d.Status = "Shipped"
		_, _, err := Build(testTenantID, d, time.Now())
		assert.ErrorContains(t, err, "unknown order status")
	})

	t.Run("negative input is clamped", func(t *testing.T) {
		o := createTestOrder(t, line("-4", "10"))
		assert.True(t, o.Lines[0].Quantity.IsZero())
		assert.True(t, o.TotalAmount.IsZero())
	})
}

func TestPurchaseOrder_Lines(t *testing.T) {
	t.Run("add line updates total", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		added := o.AddLine(line("1", "0.25"))

		assert.Equal(t, 2, added.Position)
		assert.Equal(t, "20.25", o.TotalAmount.String())
	})

	t.Run("update line recomputes its total", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		updated, err := o.UpdateLine(o.Lines[0].ID, LineInput{Style: "Polo", UnitPrice: dec("10")})

		require.NoError(t, err)
		assert.True(t, updated.Total.IsZero())
		assert.True(t, o.TotalAmount.IsZero())
	})

	t.Run("update unknown line fails", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		_, err := o.UpdateLine(uuid.New(), line("1", "1"))
		assert.ErrorIs(t, err, ErrLineNotFound)
	})

	t.Run("removing the last line is a no-op", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		removed, err := o.RemoveLine(o.Lines[0].ID)

		require.NoError(t, err)
		assert.False(t, removed)
		assert.Len(t, o.Lines, 1)
		assert.Equal(t, "20", o.TotalAmount.String())
	})

	t.Run("remove line renumbers and updates total", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"), line("3", "5.50"), line("1", "1"))
		removed, err := o.RemoveLine(o.Lines[0].ID)

		require.NoError(t, err)
		assert.True(t, removed)
		require.Len(t, o.Lines, 2)
		assert.Equal(t, 1, o.Lines[0].Position)
		assert.Equal(t, "17.5", o.TotalAmount.String())
	})

	t.Run("duplicate appends a copy with a new id", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"), line("3", "5.50"))
		before := o.TotalAmount
		src := o.Lines[0]

		dup, err := o.DuplicateLine(src.ID)

		require.NoError(t, err)
		require.Len(t, o.Lines, 3)
		assert.NotEqual(t, src.ID, dup.ID)
		assert.Equal(t, 3, dup.Position)
		assert.Equal(t, src.Style, dup.Style)
		assert.True(t, src.Quantity.Equal(dup.Quantity))
		assert.True(t, src.UnitPrice.Equal(dup.UnitPrice))
		assert.True(t, o.TotalAmount.Equal(before.Add(src.Total)))
	})

	t.Run("recalculate is idempotent", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"), line("3", "5.50"))
		o.Recalculate()
		first := o.TotalAmount
		o.Recalculate()
		assert.True(t, first.Equal(o.TotalAmount))
	})

	t.Run("tax follows line GST", func(t *testing.T) {
		o := createTestOrder(t, LineInput{Quantity: dec("1"), UnitPrice: dec("200.00"), GSTPercent: dec("18")})
		assert.Equal(t, "36.00", o.TaxAmount.StringFixed(2))
		assert.Equal(t, "236.00", o.TotalWithTax.StringFixed(2))
	})
	t.Run("line edits keep one update event with every line", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		materialID := uuid.New()
		o.AddLine(LineInput{MaterialID: &materialID, Quantity: dec("3"), UnitPrice: dec("4")})
		_, err := o.DuplicateLine(o.Lines[0].ID)
		require.NoError(t, err)

		events := o.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypePurchaseOrderCreated, events[0].EventType())
		updated, ok := events[1].(*PurchaseOrderUpdatedEvent)
		require.True(t, ok)
		assert.Equal(t, KindReceived, updated.Kind)
		require.Len(t, updated.Lines, 3)
		assert.Equal(t, &materialID, updated.Lines[1].MaterialID)
		assert.Equal(t, o.Lines[2].ID, updated.Lines[2].LineID)
		assert.True(t, o.TotalAmount.Equal(updated.TotalAmount))
	})

	t.Run("removing the only line raises nothing", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		o.ClearDomainEvents()
		removed, err := o.RemoveLine(o.Lines[0].ID)
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Empty(t, o.GetDomainEvents())
	})
}

func TestPurchaseOrder_Status(t *testing.T) {
	t.Run("any status can follow any other", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		for _, from := range AllOrderStatuses() {
			for _, to := range AllOrderStatuses() {
				o.Status = from
				_, err := o.SetStatus(to, time.Now())
				require.NoError(t, err)
				assert.Equal(t, to, o.Status)
			}
		}
	})

	t.Run("status change leaves lines and totals alone", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"), line("3", "5.50"))
		o.ClearDomainEvents()
		lines := append([]LineItem(nil), o.Lines...)
		total := o.TotalAmount
		later := o.UpdatedAt.Add(time.Minute)

		changed, err := o.SetStatus(OrderStatusCompleted, later)

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, lines, o.Lines)
		assert.True(t, total.Equal(o.TotalAmount))
		assert.Equal(t, later, o.UpdatedAt)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		require.Len(t, o.GetDomainEvents(), 1)
		ev := o.GetDomainEvents()[0].(*PurchaseOrderStatusChangedEvent)
		assert.Equal(t, OrderStatusPending, ev.From)
		assert.Equal(t, OrderStatusCompleted, ev.To)
	})

	t.Run("payment status is independent", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		_, err := o.SetStatus(OrderStatusCancelled, time.Now())
		require.NoError(t, err)
		_, err = o.SetPaymentStatus(PaymentStatusPaid, time.Now())
		require.NoError(t, err)

		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
	})

	t.Run("same status raises no event", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		o.ClearDomainEvents()
		changed, err := o.SetStatus(OrderStatusPending, time.Now())
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, o.GetDomainEvents())
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		_, err := o.SetStatus("Shipped", time.Now())
		assert.Error(t, err)
		_, err = o.SetPaymentStatus("Refunded", time.Now())
		assert.Error(t, err)
		assert.Equal(t, OrderStatusPending, o.Status)
	})
}

func TestPurchaseOrder_Replace(t *testing.T) {
	t.Run("keeps identity and matching line ids", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"), line("3", "5.50"))
		id, created := o.ID, o.CreatedAt
		keep := o.Lines[1].ID

		d := receivedDraft(
			LineInput{ID: &keep, Style: "Tee", Quantity: dec("4"), UnitPrice: dec("5")},
			line("1", "1"),
		)
		d.OrderNumber = ""
		later := time.Now().Add(time.Hour)
		_, err := o.Replace(d, later)

		require.NoError(t, err)
		assert.Equal(t, id, o.ID)
		assert.Equal(t, created, o.CreatedAt)
		assert.Equal(t, "POR-2026-00001", o.OrderNumber)
		assert.Equal(t, keep, o.Lines[0].ID)
		assert.Equal(t, "21", o.TotalAmount.String())
		assert.Equal(t, later, o.UpdatedAt)
	})

	t.Run("unknown line ids get new identities", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		foreign := uuid.New()
		_, err := o.Replace(receivedDraft(LineInput{ID: &foreign, Quantity: dec("1"), UnitPrice: dec("1")}), time.Now())
		require.NoError(t, err)
		assert.NotEqual(t, foreign, o.Lines[0].ID)
	})

	t.Run("kind cannot change", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		d := receivedDraft(line("1", "1"))
		d.Kind = KindGiven
		_, err := o.Replace(d, time.Now())
		assert.Error(t, err)
	})

	t.Run("empty line list keeps one blank line", func(t *testing.T) {
		o := createTestOrder(t, line("2", "10"))
		_, err := o.Replace(receivedDraft(), time.Now())
		require.NoError(t, err)
		assert.Len(t, o.Lines, 1)
		assert.True(t, o.TotalAmount.IsZero())
	})
}

func TestLineItem_EffectiveActualPrice(t *testing.T) {
	l := newLineItem(LineInput{Quantity: dec("1"), UnitPrice: dec("12")})
	assert.Equal(t, "12", l.EffectiveActualPrice().String())

	l = newLineItem(LineInput{Quantity: dec("1"), UnitPrice: dec("12"), ActualPrice: dec("11.5")})
	assert.Equal(t, "11.5", l.EffectiveActualPrice().String())
}

func TestParse(t *testing.T) {
	k, err := ParseKind("GIVEN")
	require.NoError(t, err)
	assert.Equal(t, KindGiven, k)

	_, err = ParseOrderStatus("pending")
	assert.Error(t, err)

	p, err := ParsePaymentStatus("UnPaid")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusUnPaid, p)
}
