package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T, session *identity.Session) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(RequestID(), Tracing("test", otelgin.WithTracerProvider(tp)), SpanErrorMarker())
	if session != nil {
		r.Use(func(c *gin.Context) { setSession(c, *session) })
	}
	r.Use(SpanEnricher())
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	return r, sr
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing(t *testing.T) {
	session := identity.Session{TenantID: uuid.New(), UserID: uuid.New(), Role: identity.RoleStaff}
	r, sr := newTracedRouter(t, &session)

	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/orders/:id")
	attrs := spanAttrs(spans[0])
	assert.Equal(t, "req-1", attrs["request_id"].AsString())
	assert.Equal(t, session.TenantID.String(), attrs["tenant_id"].AsString())
	assert.Equal(t, session.UserID.String(), attrs["user_id"].AsString())
}

func TestSpanErrorMarker(t *testing.T) {
	r, sr := newTracedRouter(t, nil)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/broken", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.NotEqual(t, codes.Error, spans[1].Status().Code)
	assert.True(t, spanAttrs(spans[1])["http.client_error"].AsBool())
}

func TestHTTPMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	tenantID := uuid.New()
	r := gin.New()
	r.Use(HTTPMetrics(mp.Meter("test")))
	r.Use(func(c *gin.Context) { setSession(c, identity.Session{TenantID: tenantID, UserID: uuid.New()}) })
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/1", nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var requests *metricdata.Sum[int64]
	var duration *metricdata.Histogram[float64]
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "http_server_requests_total":
				d := m.Data.(metricdata.Sum[int64])
				requests = &d
			case "http_server_request_duration_seconds":
				d := m.Data.(metricdata.Histogram[float64])
				duration = &d
			}
		}
	}
	require.NotNil(t, requests)
	require.NotNil(t, duration)
	require.Len(t, requests.DataPoints, 1)

	dp := requests.DataPoints[0]
	assert.Equal(t, int64(3), dp.Value)
	route, _ := dp.Attributes.Value("http.route")
	assert.Equal(t, "/orders/:id", route.AsString())
	tenant, _ := dp.Attributes.Value("tenant_id")
	assert.Equal(t, tenantID.String(), tenant.AsString())
	assert.Equal(t, uint64(3), duration.DataPoints[0].Count)
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetrics(nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
