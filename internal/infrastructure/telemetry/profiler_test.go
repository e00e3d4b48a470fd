package telemetry

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/mfgops/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{ServerAddress: "http://localhost:4040", ApplicationName: "mfgops-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_EnabledNeedsAddressAndName(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "mfgops-test"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address is required")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application name is required")
}

func TestProfilerConfigFrom(t *testing.T) {
	cfg := config.TelemetryConfig{
		ServiceName: "mfgops-backend",
		Profiling:   config.ProfilingConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"},
	}

	got := ProfilerConfigFrom(cfg)
	assert.True(t, got.Enabled)
	assert.Equal(t, "mfgops-backend", got.ApplicationName)

	cfg.Profiling.ApplicationName = "mfgops-worker"
	assert.Equal(t, "mfgops-worker", ProfilerConfigFrom(cfg).ApplicationName)
}

func TestProfileTypes(t *testing.T) {
	base := profileTypes(ProfilerConfig{})
	assert.Contains(t, base, pyroscope.ProfileCPU)
	assert.NotContains(t, base, pyroscope.ProfileMutexCount)

	all := profileTypes(ProfilerConfig{MutexProfileFraction: 5, BlockProfileRate: 5})
	assert.Len(t, all, len(base)+4)
	assert.Contains(t, all, pyroscope.ProfileBlockDuration)
}

func TestTracerProvider_EnableSpanProfilesWhenDisabled(t *testing.T) {
	tp := &TracerProvider{logger: zaptest.NewLogger(t)}
	assert.NoError(t, tp.EnableSpanProfiles())
}
