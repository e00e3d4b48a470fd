package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// Delivery outcomes reported by the outbox processor.
const (
	OutcomeDelivered = "delivered"
	OutcomeRetry     = "retry"
	OutcomeDead      = "dead"
)

// BusinessMetrics counts purchase orders created, usage logs written, outbox
// deliveries and handler runs. A nil *BusinessMetrics records nothing.
type BusinessMetrics struct {
	ordersCreated *Counter
	usageLogged   *Counter
	deliveries    *Counter
	handlerRuns   *Counter
}

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, errors.New("business metrics: meter cannot be nil")
	}
	orders, err := NewCounter(meter, "mfg_purchase_orders_created_total", "Purchase orders created", "{order}")
	if err != nil {
		return nil, err
	}
	usage, err := NewCounter(meter, "mfg_usage_logs_recorded_total", "Usage log entries written", "{entry}")
	if err != nil {
		return nil, err
	}
	deliveries, err := NewCounter(meter, "mfg_outbox_deliveries_total", "Outbox delivery attempts by outcome", "{attempt}")
	if err != nil {
		return nil, err
	}
	runs, err := NewCounter(meter, "mfg_event_handler_runs_total", "Event handler invocations by outcome", "{run}")
	if err != nil {
		return nil, err
	}
	return &BusinessMetrics{ordersCreated: orders, usageLogged: usage, deliveries: deliveries, handlerRuns: runs}, nil
}

// RecordOrderCreated counts a new purchase order of kind
func (m *BusinessMetrics) RecordOrderCreated(ctx context.Context, tenantID uuid.UUID, kind string) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrOrderKind.String(kind))
}

// RecordUsageLogged counts a usage log entry of the given type
func (m *BusinessMetrics) RecordUsageLogged(ctx context.Context, tenantID uuid.UUID, usageType string) {
	if m == nil {
		return
	}
	m.usageLogged.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrUsageType.String(usageType))
}

// ObserveDelivery records one outbox delivery attempt
func (m *BusinessMetrics) ObserveDelivery(ctx context.Context, eventType string, err error, dead bool) {
	if m == nil {
		return
	}
	outcome := OutcomeDelivered
	switch {
	case dead:
		outcome = OutcomeDead
	case err != nil:
		outcome = OutcomeRetry
	}
	m.deliveries.Inc(ctx, AttrEventType.String(eventType), AttrOutcome.String(outcome))
}

// ObserveHandled records one handler run. outcome is applied, duplicate or failed.
func (m *BusinessMetrics) ObserveHandled(ctx context.Context, handler, eventType, outcome string) {
	if m == nil {
		return
	}
	m.handlerRuns.Inc(ctx, AttrHandler.String(handler), AttrEventType.String(eventType), AttrOutcome.String(outcome))
}
