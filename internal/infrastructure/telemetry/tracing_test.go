package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// useSpanRecorder installs a recording global tracer provider for the test
func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := useSpanRecorder(t)
	orderID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "purchase_order", "create",
		SpanAttrOrderID, orderID,
		SpanAttrLineCount, 3,
		"ignored-without-value",
	)
	assert.NotEmpty(t, TraceID(ctx))
	RecordError(span, errors.New("invalid line"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "purchase_order.create", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Contains(t, got.Attributes(), attribute.String(SpanAttrOrderID, orderID.String()))
	assert.Contains(t, got.Attributes(), attribute.Int(SpanAttrLineCount, 3))
	assert.Len(t, got.Attributes(), 2)
}

func TestRecordError_NilIsNoop(t *testing.T) {
	recorder := useSpanRecorder(t)

	_, span := StartServiceSpan(context.Background(), "usage", "record")
	RecordError(span, nil)
	span.End()

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, codes.Unset, recorder.Ended()[0].Status().Code)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}
