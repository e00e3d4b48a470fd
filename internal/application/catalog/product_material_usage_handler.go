package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/catalog"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductMaterialUsageHandler handles product created and updated events and
// logs Product usage on every raw material in the bill of materials. A
// material kept across an update keeps its line id, so only new lines log.
type ProductMaterialUsageHandler struct {
	materialRepo    catalog.RawMaterialRepository
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewProductMaterialUsageHandler creates a new handler for product events
func NewProductMaterialUsageHandler(materialRepo catalog.RawMaterialRepository, logger *zap.Logger) *ProductMaterialUsageHandler {
	return &ProductMaterialUsageHandler{
		materialRepo: materialRepo,
		logger:       logger,
	}
}

// SetBusinessMetrics sets the business metrics provider
func (h *ProductMaterialUsageHandler) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	h.businessMetrics = bm
}

// EventTypes returns the event types this handler is interested in
func (h *ProductMaterialUsageHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductCreated, catalog.EventTypeProductUpdated}
}

// Handle processes a ProductCreatedEvent or ProductUpdatedEvent
func (h *ProductMaterialUsageHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		productID uuid.UUID
		code      string
		materials []catalog.MaterialSnapshot
	)
	switch ev := event.(type) {
	case *catalog.ProductCreatedEvent:
		productID, code, materials = ev.ProductID, ev.Code, ev.Materials
	case *catalog.ProductUpdatedEvent:
		productID, code, materials = ev.ProductID, ev.Code, ev.Materials
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "usage_propagation", event.EventType(),
		telemetry.SpanAttrTenantID, event.TenantID().String(),
		telemetry.SpanAttrOwnerID, productID.String(),
		telemetry.SpanAttrLineCount, len(materials))
	defer span.End()

	var errs []error
	applied := 0
	for i, m := range materials {
		log, err := catalog.NewUsageLog(event.TenantID(), catalog.OwnerRawMaterial, m.RawMaterialID,
			catalog.UsageTypeProduct, productID, m.LineID, m.Quantity, m.Price)
		if err == nil {
			var recorded bool
			recorded, err = h.materialRepo.RecordUsage(ctx, log, nil)
			if recorded {
				applied++
				if h.businessMetrics != nil {
					h.businessMetrics.RecordUsageLogged(ctx, event.TenantID(), string(catalog.UsageTypeProduct))
				}
			}
		}
		if err != nil {
			h.logger.Error("failed to log product material usage",
				zap.String("product_id", productID.String()),
				zap.String("raw_material_id", m.RawMaterialID.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("material %d: %w", i+1, err))
		}
	}

	h.logger.Info("product material usage logged",
		zap.String("event_type", event.EventType()),
		zap.String("product_id", productID.String()),
		zap.String("code", code),
		zap.Int("materials", len(materials)),
		zap.Int("applied", applied),
		zap.Int("failed", len(errs)),
	)

	err := errors.Join(errs...)
	telemetry.RecordError(span, err)
	return err
}
