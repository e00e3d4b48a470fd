package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tracedWidget struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestInstrumentDB_Disabled(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, InstrumentDB(db, DBTracingConfig{Enabled: false}, zaptest.NewLogger(t)))
	assert.Nil(t, db.Callback().Query().Get("mfg_timing:after_query"))
}

func TestInstrumentDB_RecordsSpans(t *testing.T) {
	recorder := useSpanRecorder(t)
	db := openSQLite(t)

	require.NoError(t, InstrumentDB(db, DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zaptest.NewLogger(t)))
	assert.NotNil(t, db.Callback().Query().Get("mfg_timing:after_query"))

	require.NoError(t, db.AutoMigrate(&tracedWidget{}))
	require.NoError(t, db.Create(&tracedWidget{Name: "bolt"}).Error)
	var got tracedWidget
	require.NoError(t, db.First(&got).Error)

	assert.Equal(t, "bolt", got.Name)
	assert.NotEmpty(t, recorder.Ended())
}
