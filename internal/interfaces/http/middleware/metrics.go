package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requests *telemetry.Counter
	duration *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requests, err := telemetry.NewCounter(meter, "http_server_requests_total", "Total HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	duration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Requests currently being served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	return &httpMetrics{requests: requests, duration: duration, inFlight: inFlight}, nil
}

// HTTPMetrics counts requests and records latency per route. A nil meter
// or one that fails to create instruments yields a pass-through handler.
func HTTPMetrics(meter metric.Meter) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		method := telemetry.AttrHTTPMethod.String(c.Request.Method)

		m.inFlight.Add(ctx, 1, metric.WithAttributes(method))
		c.Next()
		m.inFlight.Add(ctx, -1, metric.WithAttributes(method))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{
			method,
			telemetry.AttrHTTPRoute.String(route),
			telemetry.AttrHTTPStatusCode.String(strconv.Itoa(c.Writer.Status())),
		}
		if tenantID := c.GetString(JWTTenantIDKey); tenantID != "" {
			attrs = append(attrs, telemetry.AttrTenantID.String(tenantID))
		}
		m.requests.Inc(ctx, attrs...)
		m.duration.RecordDuration(ctx, time.Since(start), attrs...)
	}
}
