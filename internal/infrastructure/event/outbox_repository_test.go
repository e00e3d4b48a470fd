package event

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func outboxRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "event_id", "event_type", "aggregate_id",
		"aggregate_type", "payload", "status", "retry_count", "max_retries",
		"last_error", "next_retry_at", "processed_at", "created_at", "updated_at",
	})
}

func TestGormOutboxRepository_Save(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	event := newTestEvent("TestEvent", tenantID)
	payload := []byte(`{"test": true}`)
	entry := shared.NewOutboxEntry(tenantID, event, payload)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(ctx, entry)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_Save_Empty(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	err := repo.Save(ctx)

	require.NoError(t, err)
}

func TestGormOutboxRepository_FindPending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	entryID := uuid.New()
	tenantID := uuid.New()
	eventID := uuid.New()
	aggID := uuid.New()
	now := time.Now()

	rows := outboxRows().AddRow(
		entryID, tenantID, eventID, "TestEvent", aggID,
		"TestAggregate", []byte(`{}`), "PENDING", 0, 5,
		"", nil, nil, now, now,
	)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE status = $1 ORDER BY created_at ASC LIMIT $2`)).
		WithArgs(shared.OutboxStatusPending, 10).
		WillReturnRows(rows)

	entries, err := repo.FindPending(ctx, 10)

	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, entryID, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_FindRetryable(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	before := time.Now()
	rows := outboxRows()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE status = $1 AND next_retry_at <= $2 ORDER BY next_retry_at ASC LIMIT $3`)).
		WithArgs(shared.OutboxStatusFailed, before, 10).
		WillReturnRows(rows)

	entries, err := repo.FindRetryable(ctx, before, 10)

	require.NoError(t, err)
	assert.Len(t, entries, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_Update(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	event := newTestEvent("TestEvent", tenantID)
	entry := shared.NewOutboxEntry(tenantID, event, []byte(`{}`))
	entry.MarkSent()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Update(ctx, entry)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_DeleteOlderThan(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	before := time.Now().Add(-7 * 24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "outbox_events" WHERE status = $1 AND processed_at < $2`)).
		WithArgs(shared.OutboxStatusSent, before).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	deleted, err := repo.DeleteOlderThan(ctx, before)

	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_ReleaseStale(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)
	cutoff := time.Now().Add(-5 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events" SET`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), shared.OutboxStatusProcessing, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	released, err := repo.ReleaseStale(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(2), released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_WithTx(t *testing.T) {
	db, _ := setupMockDB(t)
	repo := NewGormOutboxRepository(db)

	newRepo := repo.WithTx(db)

	assert.NotNil(t, newRepo)
	assert.NotSame(t, repo, newRepo)
}

func TestGormOutboxRepository_Update_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)

	entry := shared.NewOutboxEntry(uuid.New(), newTestEvent("TestEvent", uuid.New()), []byte(`{}`))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), entry)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_MarkProcessing(t *testing.T) {
	t.Run("claims rows with skip locked", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewGormOutboxRepository(db)

		id := uuid.New()
		tenantID := uuid.New()
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE id IN ($1) AND status IN ($2,$3) FOR UPDATE SKIP LOCKED`)).
			WithArgs(id, shared.OutboxStatusPending, shared.OutboxStatusFailed).
			WillReturnRows(outboxRows().AddRow(
				id, tenantID, uuid.New(), "PurchaseOrderCreated", uuid.New(),
				"PurchaseOrder", []byte(`{}`), "PENDING", 0, 5,
				"", nil, nil, now, now,
			))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "outbox_events" SET "status"=$1,"updated_at"=$2 WHERE id IN ($3)`)).
			WithArgs(shared.OutboxStatusProcessing, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		entries, err := repo.MarkProcessing(context.Background(), []uuid.UUID{id})

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, shared.OutboxStatusProcessing, entries[0].Status)
		assert.Equal(t, tenantID, entries[0].TenantID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing left to claim", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewGormOutboxRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events"`)).
			WillReturnRows(outboxRows())
		mock.ExpectCommit()

		entries, err := repo.MarkProcessing(context.Background(), []uuid.UUID{uuid.New()})

		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no ids", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewGormOutboxRepository(db)

		entries, err := repo.MarkProcessing(context.Background(), nil)

		require.NoError(t, err)
		assert.Nil(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOutboxRepository_FindDeadForTenant(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)

	tenantID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "outbox_events" WHERE tenant_id = $1 AND status = $2`)).
		WithArgs(tenantID, shared.OutboxStatusDead).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE tenant_id = $1 AND status = $2 ORDER BY updated_at DESC LIMIT $3`)).
		WithArgs(tenantID, shared.OutboxStatusDead, 20).
		WillReturnRows(outboxRows().AddRow(
			uuid.New(), tenantID, uuid.New(), "PurchaseOrderCreated", uuid.New(),
			"PurchaseOrder", []byte(`{}`), "DEAD", 5, 5,
			"raw material not found", nil, nil, now, now,
		))

	entries, total, err := repo.FindDeadForTenant(context.Background(), tenantID, 1, 20)

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDead())
	assert.Equal(t, "raw material not found", entries[0].LastError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOutboxRepository_FindByIDForTenant(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewGormOutboxRepository(db)

		tenantID, id := uuid.New(), uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE tenant_id = $1 AND id = $2 ORDER BY "outbox_events"."id" LIMIT $3`)).
			WithArgs(tenantID, id, 1).
			WillReturnRows(outboxRows().AddRow(
				id, tenantID, uuid.New(), "ProductUpdated", uuid.New(),
				"Product", []byte(`{}`), "SENT", 0, 5,
				"", nil, now, now, now,
			))

		entry, err := repo.FindByIDForTenant(context.Background(), tenantID, id)

		require.NoError(t, err)
		assert.Equal(t, shared.OutboxStatusSent, entry.Status)
		assert.NotNil(t, entry.ProcessedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other tenant", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewGormOutboxRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events" WHERE tenant_id = $1 AND id = $2`)).
			WillReturnRows(outboxRows())

		_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown status", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewGormOutboxRepository(db)
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "outbox_events"`)).
			WillReturnRows(outboxRows().AddRow(
				uuid.New(), uuid.New(), uuid.New(), "ProductUpdated", uuid.New(),
				"Product", []byte(`{}`), "LOST", 0, 5,
				"", nil, nil, now, now,
			))

		_, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOST")
	})
}

func TestGormOutboxRepository_CountByStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormOutboxRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, count(*) as count FROM "outbox_events" GROUP BY status`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 3).
			AddRow("DEAD", 1))

	counts, err := repo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[shared.OutboxStatusPending])
	assert.Equal(t, int64(1), counts[shared.OutboxStatusDead])
	assert.NoError(t, mock.ExpectationsWereMet())
}
