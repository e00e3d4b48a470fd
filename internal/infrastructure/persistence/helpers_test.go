package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockGormDB opens GORM over sqlmock; the mock connection is closed on cleanup.
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return gormDB, mock
}

type mockOutboxSaver struct {
	mock.Mock
}

func (m *mockOutboxSaver) SaveEvents(ctx context.Context, tx any, events ...shared.DomainEvent) error {
	args := m.Called(ctx, tx, events)
	return args.Error(0)
}

func (m *mockOutboxSaver) expectSave(err error) {
	m.On("SaveEvents", mock.Anything, mock.Anything, mock.Anything).Return(err)
}

// eventTypes returns the type names of the events passed to the saver's
// first SaveEvents call.
func (m *mockOutboxSaver) eventTypes(t *testing.T) []string {
	t.Helper()
	require.NotEmpty(t, m.Calls)
	events := m.Calls[0].Arguments.Get(2).([]shared.DomainEvent)
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}
