package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/purchasing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPurchaseOrderRepository(t *testing.T) (*GormPurchaseOrderRepository, sqlmock.Sqlmock, *mockOutboxSaver) {
	db, mock := newMockGormDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	saver := &mockOutboxSaver{}
	repo.SetOutboxEventSaver(saver)
	return repo, mock, saver
}

func buildGivenOrder(t *testing.T, tenantID uuid.UUID) *purchasing.PurchaseOrder {
	t.Helper()
	materialID := uuid.New()
	order, _, err := purchasing.Build(tenantID, purchasing.Draft{
		Kind:        purchasing.KindGiven,
		OrderNumber: "POG-2026-00001",
		Counterparty: purchasing.Counterparty{
			Name: "Shree Fabrics",
		},
		OrderDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []purchasing.LineInput{{
			MaterialID: &materialID,
			Quantity:   decimal.NewFromInt(10),
			UnitPrice:  decimal.RequireFromString("12.5"),
		}},
	}, time.Now())
	require.NoError(t, err)
	return order
}

var purchaseOrderColumns = []string{
	"id", "tenant_id", "version", "kind", "order_number", "counterparty_name",
	"order_date", "status", "payment_status", "total_amount", "created_at", "updated_at",
}

func TestGormPurchaseOrderRepository_FindByIDForTenant(t *testing.T) {
	t.Run("loads order with lines", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		mock.MatchExpectationsInOrder(false)

		tenantID := uuid.New()
		orderID := uuid.New()
		lineID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, orderID, 1).
			WillReturnRows(sqlmock.NewRows(purchaseOrderColumns).
				AddRow(orderID.String(), tenantID.String(), 3, "RECEIVED", "POR-2026-00007", "Acme Retail",
					now, "InProduction", "Partial", "250", now, now))
		mock.ExpectQuery(`SELECT \* FROM "purchase_order_attachments" WHERE "purchase_order_attachments"."order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))
		mock.ExpectQuery(`SELECT \* FROM "purchase_order_lines" WHERE "purchase_order_lines"."order_id" = \$1 ORDER BY position ASC`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "position", "style", "quantity", "unit_price", "total"}).
				AddRow(lineID.String(), orderID.String(), 1, "Kurta", "10", "25", "250"))

		order, err := repo.FindByIDForTenant(context.Background(), tenantID, orderID)

		require.NoError(t, err)
		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, 3, order.Version)
		assert.Equal(t, purchasing.KindReceived, order.Kind)
		assert.Equal(t, purchasing.OrderStatusInProduction, order.Status)
		assert.Equal(t, purchasing.PaymentStatusPartial, order.PaymentStatus)
		require.Len(t, order.Lines, 1)
		assert.Equal(t, lineID, order.Lines[0].ID)
		assert.True(t, order.Lines[0].Total.Equal(decimal.NewFromInt(250)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		tenantID := uuid.New()
		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, orderID, 1).
			WillReturnRows(sqlmock.NewRows(purchaseOrderColumns))

		order, err := repo.FindByIDForTenant(context.Background(), tenantID, orderID)

		assert.Nil(t, order)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a malformed row", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		mock.MatchExpectationsInOrder(false)
		tenantID := uuid.New()
		orderID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT \* FROM "purchase_orders"`).
			WillReturnRows(sqlmock.NewRows(purchaseOrderColumns).
				AddRow(orderID.String(), tenantID.String(), 1, "GIVEN", "POG-2026-00001", "",
					now, "Shipped", "Pending", "0", now, now))
		mock.ExpectQuery(`SELECT \* FROM "purchase_order_attachments"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))
		mock.ExpectQuery(`SELECT \* FROM "purchase_order_lines"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

		_, err := repo.FindByIDForTenant(context.Background(), tenantID, orderID)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrMalformedDocument)
	})

	t.Run("refuses the nil tenant without querying", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)

		_, err := repo.FindByIDForTenant(context.Background(), uuid.Nil, uuid.New())

		assert.ErrorIs(t, err, tenant.ErrTenantIDRequired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_Create(t *testing.T) {
	t.Run("writes order, lines and events in one transaction", func(t *testing.T) {
		repo, mock, saver := newMockPurchaseOrderRepository(t)
		order := buildGivenOrder(t, uuid.New())

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "purchase_orders"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "purchase_order_lines"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		saver.expectSave(nil)

		err := repo.Create(context.Background(), order, order.GetDomainEvents()...)

		require.NoError(t, err)
		assert.Equal(t, []string{purchasing.EventTypePurchaseOrderCreated}, saver.eventTypes(t))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the outbox write fails", func(t *testing.T) {
		repo, mock, saver := newMockPurchaseOrderRepository(t)
		order := buildGivenOrder(t, uuid.New())

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "purchase_orders"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "purchase_order_lines"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()
		saver.expectSave(assert.AnError)

		err := repo.Create(context.Background(), order, order.GetDomainEvents()...)

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_Update(t *testing.T) {
	t.Run("bumps the version and replaces lines", func(t *testing.T) {
		repo, mock, saver := newMockPurchaseOrderRepository(t)
		order := buildGivenOrder(t, uuid.New())

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id","version" FROM "purchase_orders" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(order.TenantID, order.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(order.ID.String(), 1))
		mock.ExpectExec(`UPDATE "purchase_orders" SET .* WHERE tenant_id = \$\d+ AND \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "purchase_order_lines" WHERE order_id = \$1 AND id NOT IN \(\$2\)`).
			WithArgs(order.ID, order.Lines[0].ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "purchase_order_lines" .* ON CONFLICT \("id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "purchase_order_attachments" WHERE order_id = \$1`).
			WithArgs(order.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		saver.expectSave(nil)

		event := purchasing.NewPurchaseOrderUpdatedEvent(order)
		err := repo.Update(context.Background(), order, event)

		require.NoError(t, err)
		assert.Equal(t, 2, order.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		order := buildGivenOrder(t, uuid.New())

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id","version" FROM "purchase_orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(order.ID.String(), 4))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), order)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, order.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race on the conditional update is a concurrency conflict", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		order := buildGivenOrder(t, uuid.New())

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id","version" FROM "purchase_orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(order.ID.String(), 1))
		mock.ExpectExec(`UPDATE "purchase_orders"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), order)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		order := buildGivenOrder(t, uuid.New())

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id","version" FROM "purchase_orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "version"}))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), order)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_PatchStatus(t *testing.T) {
	status := purchasing.OrderStatusCompleted

	t.Run("updates only the status columns", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		tenantID := uuid.New()
		orderID := uuid.New()
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "purchase_orders" SET "status"=\$1,"updated_at"=\$2 WHERE tenant_id = \$3 AND id = \$4`).
			WithArgs("Completed", now, tenantID, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.PatchStatus(context.Background(), tenantID, orderID, purchasing.StatusPatch{Status: &status, UpdatedAt: now})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "purchase_orders"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.PatchStatus(context.Background(), uuid.New(), uuid.New(), purchasing.StatusPatch{Status: &status, UpdatedAt: time.Now()})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_DeleteForTenant(t *testing.T) {
	t.Run("removes order, lines and attachments", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		tenantID := uuid.New()
		orderID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "purchase_orders" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "purchase_order_lines" WHERE order_id = \$1`).
			WithArgs(orderID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "purchase_order_attachments" WHERE order_id = \$1`).
			WithArgs(orderID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		require.NoError(t, repo.DeleteForTenant(context.Background(), tenantID, orderID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "purchase_orders"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.DeleteForTenant(context.Background(), uuid.New(), uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_StatusSummary(t *testing.T) {
	repo, mock, _ := newMockPurchaseOrderRepository(t)
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT status, payment_status, COUNT\(\*\) AS count FROM "purchase_orders" WHERE tenant_id = \$1 AND kind = \$2 GROUP BY status, payment_status`).
		WithArgs(tenantID, "RECEIVED").
		WillReturnRows(sqlmock.NewRows([]string{"status", "payment_status", "count"}).
			AddRow("Pending", "Pending", 3).
			AddRow("Pending", "Paid", 1).
			AddRow("Completed", "Paid", 2))

	summary, err := repo.StatusSummary(context.Background(), tenantID, purchasing.KindReceived)

	require.NoError(t, err)
	assert.Equal(t, int64(6), summary.Total)
	assert.Equal(t, int64(4), summary.ByStatus[purchasing.OrderStatusPending])
	assert.Equal(t, int64(2), summary.ByStatus[purchasing.OrderStatusCompleted])
	assert.Equal(t, int64(0), summary.ByStatus[purchasing.OrderStatusCancelled])
	assert.Equal(t, int64(3), summary.ByPayment[purchasing.PaymentStatusPaid])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPurchaseOrderRepository_GenerateOrderNumber(t *testing.T) {
	t.Run("continues the yearly sequence of the kind", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		tenantID := uuid.New()
		prefix := fmt.Sprintf("POG-%d-", time.Now().Year())

		mock.ExpectQuery(`SELECT "order_number" FROM "purchase_orders" WHERE tenant_id = \$1 AND order_number LIKE \$2 ORDER BY order_number DESC`).
			WithArgs(tenantID, prefix+"%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"order_number"}).AddRow(prefix + "00041"))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "purchase_orders" WHERE tenant_id = \$1 AND order_number = \$2`).
			WithArgs(tenantID, prefix+"00042").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), tenantID, purchasing.KindGiven)

		require.NoError(t, err)
		assert.Equal(t, prefix+"00042", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("starts at one for received orders", func(t *testing.T) {
		repo, mock, _ := newMockPurchaseOrderRepository(t)
		tenantID := uuid.New()
		prefix := fmt.Sprintf("POR-%d-", time.Now().Year())

		mock.ExpectQuery(`SELECT "order_number" FROM "purchase_orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"order_number"}))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "purchase_orders"`).
			WithArgs(tenantID, prefix+"00001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), tenantID, purchasing.KindReceived)

		require.NoError(t, err)
		assert.Equal(t, prefix+"00001", number)
	})
}

func TestGormPurchaseOrderRepository_FindAllForTenant(t *testing.T) {
	repo, mock, _ := newMockPurchaseOrderRepository(t)
	tenantID := uuid.New()
	orderID := uuid.New()
	now := time.Now()

	filter := shared.Filter{
		Page:     2,
		PageSize: 10,
		OrderBy:  "order_date",
		OrderDir: "asc",
		Filters:  map[string]any{"kind": purchasing.KindGiven},
	}

	mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE tenant_id = \$1 AND kind = \$2 ORDER BY "order_date" LIMIT \$3 OFFSET \$4`).
		WithArgs(tenantID, "GIVEN", 10, 10).
		WillReturnRows(sqlmock.NewRows(purchaseOrderColumns).
			AddRow(orderID.String(), tenantID.String(), 1, "GIVEN", "POG-2026-00011", "Shree Fabrics",
				now, "Pending", "UnPaid", "0", now, now))
	mock.ExpectQuery(`SELECT \* FROM "purchase_order_lines" WHERE "purchase_order_lines"."order_id" = \$1`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	orders, err := repo.FindAllForTenant(context.Background(), tenantID, filter)

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, purchasing.PaymentStatusUnPaid, orders[0].PaymentStatus)
	assert.Empty(t, orders[0].Lines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPurchaseOrderRepository_FindAllForTenant_DateRange(t *testing.T) {
	repo, mock, _ := newMockPurchaseOrderRepository(t)
	tenantID := uuid.New()

	filter := shared.Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "order_date",
		Filters: map[string]any{
			"end_date": time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	// An order placed at 18:30 on the 31st is still inside the range.
	mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE tenant_id = \$1 AND order_date < \$2`).
		WithArgs(tenantID, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 20).
		WillReturnRows(sqlmock.NewRows(purchaseOrderColumns))

	orders, err := repo.FindAllForTenant(context.Background(), tenantID, filter)

	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}
