package purchasing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/purchasing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderUsagePropagationHandler handles purchase order created and updated
// events and appends a usage log for every referenced line: given orders log
// PoGiven usage on the raw material and overwrite its actual price, received
// orders log PoReceived usage on the product, which locks it. Update events
// carry every line, so lines logged earlier are no-ops and lines added by an
// edit get their first log.
type OrderUsagePropagationHandler struct {
	materialRepo    catalog.RawMaterialRepository
	productRepo     catalog.ProductRepository
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// orderLines is the part of a created or updated event that drives propagation.
type orderLines struct {
	tenantID    uuid.UUID
	orderID     uuid.UUID
	orderNumber string
	kind        purchasing.Kind
	lines       []purchasing.LineSnapshot
}

// NewOrderUsagePropagationHandler creates a new handler for purchase order events
func NewOrderUsagePropagationHandler(
	materialRepo catalog.RawMaterialRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *OrderUsagePropagationHandler {
	return &OrderUsagePropagationHandler{
		materialRepo: materialRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// SetBusinessMetrics sets the business metrics provider
func (h *OrderUsagePropagationHandler) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	h.businessMetrics = bm
}

// EventTypes returns the event types this handler is interested in
func (h *OrderUsagePropagationHandler) EventTypes() []string {
	return []string{
		purchasing.EventTypePurchaseOrderCreated,
		purchasing.EventTypePurchaseOrderUpdated,
	}
}

// Handle walks the lines in position order. A failing line does not stop
// the rest; the failures are joined so the outbox retries the event, and
// lines already applied are skipped on the retry.
func (h *OrderUsagePropagationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var ol orderLines
	switch ev := event.(type) {
	case *purchasing.PurchaseOrderCreatedEvent:
		ol = orderLines{ev.TenantID(), ev.OrderID, ev.OrderNumber, ev.Kind, ev.Lines}
	case *purchasing.PurchaseOrderUpdatedEvent:
		ol = orderLines{ev.TenantID(), ev.OrderID, ev.OrderNumber, ev.Kind, ev.Lines}
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "usage_propagation", event.EventType(),
		telemetry.SpanAttrTenantID, ol.tenantID.String(),
		telemetry.SpanAttrOrderID, ol.orderID.String(),
		telemetry.SpanAttrOrderKind, string(ol.kind),
		telemetry.SpanAttrLineCount, len(ol.lines))
	defer span.End()

	lines := make([]purchasing.LineSnapshot, len(ol.lines))
	copy(lines, ol.lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })

	var errs []error
	applied, skipped := 0, 0
	for _, line := range lines {
		recorded, err := h.propagateLine(ctx, ol, line)
		switch {
		case err != nil:
			h.logger.Error("failed to propagate order line",
				zap.String("order_id", ol.orderID.String()),
				zap.String("order_number", ol.orderNumber),
				zap.String("line_id", line.LineID.String()),
				zap.Stringp("material_id", uuidString(line.MaterialID)),
				zap.Stringp("product_id", uuidString(line.ProductID)),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("line %d: %w", line.Position, err))
		case recorded:
			applied++
		default:
			skipped++
		}
	}

	h.logger.Info("purchase order usage propagated",
		zap.String("event_type", event.EventType()),
		zap.String("order_id", ol.orderID.String()),
		zap.String("kind", string(ol.kind)),
		zap.Int("lines", len(lines)),
		zap.Int("applied", applied),
		zap.Int("skipped", skipped),
		zap.Int("failed", len(errs)),
	)

	err := errors.Join(errs...)
	telemetry.RecordError(span, err)
	return err
}

// propagateLine reports whether a new usage log was written
func (h *OrderUsagePropagationHandler) propagateLine(ctx context.Context, ol orderLines, line purchasing.LineSnapshot) (bool, error) {
	switch {
	case ol.kind == purchasing.KindGiven && line.MaterialID != nil:
		log, err := catalog.NewUsageLog(ol.tenantID, catalog.OwnerRawMaterial, *line.MaterialID,
			catalog.UsageTypePoGiven, ol.orderID, line.LineID, line.Quantity, line.UnitPrice)
		if err != nil {
			return false, err
		}
		// The snapshot already falls back to the unit price.
		price := line.ActualPrice
		recorded, err := h.materialRepo.RecordUsage(ctx, log, &price)
		if err != nil {
			return false, err
		}
		h.recordMetric(ctx, ol.tenantID, recorded, catalog.UsageTypePoGiven)
		return recorded, nil

	case ol.kind == purchasing.KindReceived && line.ProductID != nil:
		log, err := catalog.NewUsageLog(ol.tenantID, catalog.OwnerProduct, *line.ProductID,
			catalog.UsageTypePoReceived, ol.orderID, line.LineID, line.Quantity, line.UnitPrice)
		if err != nil {
			return false, err
		}
		recorded, err := h.productRepo.RecordUsage(ctx, log)
		if err != nil {
			return false, err
		}
		h.recordMetric(ctx, ol.tenantID, recorded, catalog.UsageTypePoReceived)
		return recorded, nil
	}

	h.logger.Debug("order line has no reference, skipping",
		zap.String("order_id", ol.orderID.String()),
		zap.String("line_id", line.LineID.String()),
	)
	return false, nil
}

func (h *OrderUsagePropagationHandler) recordMetric(ctx context.Context, tenantID uuid.UUID, recorded bool, typ catalog.UsageType) {
	if recorded && h.businessMetrics != nil {
		h.businessMetrics.RecordUsageLogged(ctx, tenantID, string(typ))
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
