package event

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestPublisher() *OutboxPublisher {
	s := NewEventSerializer()
	Register[testEvent](s, "TestEvent")
	return NewOutboxPublisher(s)
}

func TestOutboxPublisher_WritesInsideCallerTransaction(t *testing.T) {
	tenantID := uuid.New()
	tests := []struct {
		name   string
		events []shared.DomainEvent
		insert bool
	}{
		{"single event", []shared.DomainEvent{newTestEvent("TestEvent", tenantID)}, true},
		{"batch in one insert", []shared.DomainEvent{
			newTestEvent("TestEvent", tenantID),
			newTestEvent("TestEvent", tenantID),
			newTestEvent("TestEvent", tenantID),
		}, true},
		{"nothing to write", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectBegin()
			if tt.insert {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
					WillReturnResult(sqlmock.NewResult(0, int64(len(tt.events))))
			}
			mock.ExpectCommit()

			err := db.Transaction(func(tx *gorm.DB) error {
				return newTestPublisher().SaveEvents(context.Background(), tx, tt.events...)
			})

			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOutboxPublisher_RollsBackWithAggregate(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	lineSaveFailed := errors.New("line insert failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := newTestPublisher().PublishWithTx(context.Background(), tx, newTestEvent("TestEvent", uuid.New())); err != nil {
			return err
		}
		return lineSaveFailed
	})

	assert.ErrorIs(t, err, lineSaveFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_Rejects(t *testing.T) {
	t.Run("unregistered type", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return NewOutboxPublisher(NewEventSerializer()).PublishWithTx(context.Background(), tx, newTestEvent("TestEvent", uuid.New()))
		})

		assert.ErrorContains(t, err, "not registered")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("event without tenant", func(t *testing.T) {
		db, _ := setupMockDB(t)
		err := newTestPublisher().PublishWithTx(context.Background(), db, newTestEvent("TestEvent", uuid.Nil))
		assert.ErrorContains(t, err, "no tenant")
	})

	t.Run("tx of the wrong type", func(t *testing.T) {
		err := newTestPublisher().SaveEvents(context.Background(), "not a tx", newTestEvent("TestEvent", uuid.New()))
		assert.ErrorContains(t, err, "*gorm.DB")
	})
}

func TestOutboxPublisher_MaxRetriesApplyToNewEntries(t *testing.T) {
	p := newTestPublisher()
	p.SetMaxRetries(8)
	p.SetMaxRetries(0)

	entry, err := p.entryFor(newTestEvent("TestEvent", uuid.New()))

	require.NoError(t, err)
	assert.Equal(t, 8, entry.MaxRetries)
	assert.Equal(t, shared.OutboxStatusPending, entry.Status)
}
