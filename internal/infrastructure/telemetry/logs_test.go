package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("component", "outbox"))

	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "kept", entries[0].Message)
		assert.Equal(t, "outbox", entries[0].ContextMap()["component"])
	}
}
