package telemetry

import (
	"context"
	"testing"

	"github.com/mfgops/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestProviders_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()
	cfg := config.TelemetryConfig{
		Enabled:           false,
		MetricsEnabled:    true,
		LogsEnabled:       true,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "mfgops-test",
	}

	tp, err := NewTracerProvider(ctx, ConfigFrom(cfg), logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfigFrom(cfg), logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, LogsConfigFrom(cfg), logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Same(t, logger, lp.Bridge(logger, 0))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestConfigFrom_SignalsNeedMasterSwitch(t *testing.T) {
	cfg := config.TelemetryConfig{Enabled: true, MetricsEnabled: false, LogsEnabled: true}
	assert.True(t, ConfigFrom(cfg).Enabled)
	assert.False(t, MetricsConfigFrom(cfg).Enabled)
	assert.True(t, LogsConfigFrom(cfg).Enabled)

	cfg.Enabled = false
	assert.False(t, LogsConfigFrom(cfg).Enabled)
}

func TestDBTracingConfigFrom(t *testing.T) {
	tel := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}
	assert.Equal(t, "postgresql", DBTracingConfigFrom(tel, config.DatabaseConfig{Driver: "postgres"}).DBSystem)
	got := DBTracingConfigFrom(tel, config.DatabaseConfig{Driver: "sqlite"})
	assert.Equal(t, "sqlite", got.DBSystem)
	assert.True(t, got.Enabled)
}
