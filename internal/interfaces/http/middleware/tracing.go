// Package middleware holds the gin middleware of the HTTP API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request through otelgin. Spans are named
// after the route pattern, e.g. "GET /api/v1/purchase-orders/:id".
func Tracing(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, opts...)
}

// SpanEnricher adds the request id and, once authenticated, the tenant and
// user to the current span. Register it after the auth middleware.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := getRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if s, ok := GetSession(c); ok {
				span.SetAttributes(
					attribute.String("tenant_id", s.TenantID.String()),
					attribute.String("user_id", s.UserID.String()),
				)
			}
		}
		c.Next()
	}
}

// SpanErrorMarker sets the span status from the response code. 5xx are
// errors; 4xx are recorded as an attribute only since they are caller
// mistakes.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			span.SetStatus(codes.Error, http.StatusText(status))
			for _, e := range c.Errors {
				span.RecordError(e.Err)
			}
		case status >= http.StatusBadRequest:
			span.SetAttributes(attribute.Bool("http.client_error", true))
		}
	}
}
