package purchasing

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/costing"
	"github.com/mfgops/backend/internal/domain/purchasing"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/storage"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const spanService = "purchase_order"

// PurchaseOrderService handles purchase order operations
type PurchaseOrderService struct {
	orderRepo       purchasing.PurchaseOrderRepository
	objects         storage.ObjectStorage
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
	now             func() time.Time
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo purchasing.PurchaseOrderRepository,
	objects storage.ObjectStorage,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		objects:   objects,
		logger:    logger,
		now:       time.Now,
	}
}

// SetBusinessMetrics sets the business metrics provider
func (s *PurchaseOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create submits a new order. Incomplete forms are saved; the response
// carries the advisory hints.
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID, userID uuid.UUID, req SubmitPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "create",
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrOrderKind, req.Kind,
		telemetry.SpanAttrLineCount, len(req.Lines))
	defer span.End()

	draft := req.ToDraft()
	kind, err := purchasing.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}

	draft.OrderNumber = strings.TrimSpace(draft.OrderNumber)
	if draft.OrderNumber == "" {
		draft.OrderNumber, err = s.orderRepo.GenerateOrderNumber(ctx, tenantID, kind)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	} else if err := s.ensureNumberFree(ctx, tenantID, draft.OrderNumber); err != nil {
		return nil, err
	}

	order, hints, err := purchasing.Build(tenantID, draft, s.now())
	if err != nil {
		return nil, err
	}
	order.SetCreatedBy(userID)

	if err := s.orderRepo.Create(ctx, order, order.GetDomainEvents()...); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	order.ClearDomainEvents()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID.String(),
		telemetry.SpanAttrOrderNumber, order.OrderNumber)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderCreated(ctx, tenantID, string(order.Kind))
	}

	response := ToPurchaseOrderResponse(order)
	response.Hints = hints
	return &response, nil
}

// GetByID retrieves an order with its lines and attachments
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves a page of orders matching the filter
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	domainFilter := filter.ToFilter()

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		items[i] = ToPurchaseOrderListItemResponse(&orders[i])
	}
	return items, total, nil
}

// Replace overwrites an order with a resubmitted form. Propagated usage
// logs are not touched.
func (s *PurchaseOrderService) Replace(ctx context.Context, tenantID, orderID uuid.UUID, req SubmitPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != order.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	draft := req.ToDraft()
	draft.OrderNumber = strings.TrimSpace(draft.OrderNumber)
	if draft.OrderNumber != "" && draft.OrderNumber != order.OrderNumber {
		if err := s.ensureNumberFree(ctx, tenantID, draft.OrderNumber); err != nil {
			return nil, err
		}
	}

	hints, err := order.Replace(draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	response.Hints = hints
	return &response, nil
}

// AddLine appends a line to an order
func (s *PurchaseOrderService) AddLine(ctx context.Context, tenantID, orderID uuid.UUID, req LineRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(o *purchasing.PurchaseOrder) error {
		o.AddLine(req.ToInput())
		return nil
	})
}

// UpdateLine replaces the editable fields of a line
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID, req LineRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(o *purchasing.PurchaseOrder) error {
		_, err := o.UpdateLine(lineID, req.ToInput())
		return err
	})
}

// RemoveLine deletes a line. Removing the last line leaves the order as it was.
func (s *PurchaseOrderService) RemoveLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	removed, err := order.RemoveLine(lineID)
	if err != nil {
		return nil, err
	}
	if removed {
		if err := s.save(ctx, order); err != nil {
			return nil, err
		}
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// DuplicateLine appends a copy of a line
func (s *PurchaseOrderService) DuplicateLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, tenantID, orderID, func(o *purchasing.PurchaseOrder) error {
		_, err := o.DuplicateLine(lineID)
		return err
	})
}

// UpdateStatus sets the order status. Lines, totals and the payment status
// are not touched.
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateStatusRequest) (*PurchaseOrderResponse, error) {
	status, err := purchasing.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := order.SetStatus(status, s.now()); err != nil {
		return nil, err
	}
	patch := purchasing.StatusPatch{Status: &status, UpdatedAt: order.UpdatedAt}
	if err := s.orderRepo.PatchStatus(ctx, tenantID, orderID, patch, order.GetDomainEvents()...); err != nil {
		return nil, err
	}
	order.ClearDomainEvents()

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// UpdatePaymentStatus sets the payment status independently of the order status
func (s *PurchaseOrderService) UpdatePaymentStatus(ctx context.Context, tenantID, orderID uuid.UUID, req UpdatePaymentStatusRequest) (*PurchaseOrderResponse, error) {
	status, err := purchasing.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := order.SetPaymentStatus(status, s.now()); err != nil {
		return nil, err
	}
	patch := purchasing.StatusPatch{PaymentStatus: &status, UpdatedAt: order.UpdatedAt}
	if err := s.orderRepo.PatchStatus(ctx, tenantID, orderID, patch, order.GetDomainEvents()...); err != nil {
		return nil, err
	}
	order.ClearDomainEvents()

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Delete removes an order. Usage logs already propagated from it stay, and
// its attachment objects are removed on a best-effort basis.
func (s *PurchaseOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	order.MarkDeleted()
	if err := s.orderRepo.DeleteForTenant(ctx, tenantID, orderID, order.GetDomainEvents()...); err != nil {
		return err
	}
	order.ClearDomainEvents()

	for _, att := range order.Attachments {
		if err := s.objects.DeleteObject(ctx, att.ObjectKey); err != nil {
			s.logger.Warn("failed to delete attachment object",
				zap.String("order_id", orderID.String()),
				zap.String("object_key", att.ObjectKey),
				zap.Error(err),
			)
		}
	}
	return nil
}

// GetStatusSummary counts the orders of one kind per status
func (s *PurchaseOrderService) GetStatusSummary(ctx context.Context, tenantID uuid.UUID, kind string) (*purchasing.StatusSummary, error) {
	k, err := purchasing.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	summary, err := s.orderRepo.StatusSummary(ctx, tenantID, k)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// UploadAttachment stores a file against a received order
func (s *PurchaseOrderService) UploadAttachment(ctx context.Context, tenantID, orderID uuid.UUID, req UploadAttachmentRequest, body io.Reader) (*AttachmentResponse, error) {
	if err := storage.CheckDocument(req.ContentType, req.Size); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Kind != purchasing.KindReceived {
		return nil, shared.NewDomainError("INVALID_STATE", "Attachments can only be added to received orders")
	}

	att := purchasing.Attachment{
		ID:          uuid.New(),
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		UploadedAt:  s.now(),
	}
	att.ObjectKey = storage.AttachmentKey(tenantID, orderID, att.ID, req.FileName)
	if _, err := s.objects.Upload(ctx, att.ObjectKey, body, req.Size, req.ContentType); err != nil {
		return nil, err
	}

	order.AddAttachment(att)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		if delErr := s.objects.DeleteObject(ctx, att.ObjectKey); delErr != nil {
			s.logger.Warn("failed to remove orphaned attachment object",
				zap.String("object_key", att.ObjectKey),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	return &AttachmentResponse{
		ID:          att.ID,
		FileName:    att.FileName,
		ContentType: att.ContentType,
		Size:        att.Size,
		UploadedAt:  att.UploadedAt,
	}, nil
}

// AttachmentURL returns a presigned download link for an attachment
func (s *PurchaseOrderService) AttachmentURL(ctx context.Context, tenantID, orderID, attachmentID uuid.UUID) (*AttachmentURLResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	att, ok := order.Attachment(attachmentID)
	if !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Attachment not found")
	}
	url, expiresAt, err := s.objects.GenerateDownloadURL(ctx, att.ObjectKey)
	if err != nil {
		return nil, err
	}
	return &AttachmentURLResponse{
		AttachmentID: att.ID,
		FileName:     att.FileName,
		URL:          url,
		ExpiresAt:    expiresAt,
	}, nil
}

// QuoteLine is the live calculator shown while a line is typed
func (s *PurchaseOrderService) QuoteLine(req LineQuoteRequest) costing.LineQuote {
	return costing.QuoteLine(req.Quantity.Decimal(), req.UnitPrice.Decimal(), req.GSTPercent.Decimal())
}

// mutate loads an order, applies fn and saves the result
func (s *PurchaseOrderService) mutate(ctx context.Context, tenantID, orderID uuid.UUID, fn func(*purchasing.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

func (s *PurchaseOrderService) save(ctx context.Context, order *purchasing.PurchaseOrder) error {
	if err := s.orderRepo.Update(ctx, order, order.GetDomainEvents()...); err != nil {
		return err
	}
	order.ClearDomainEvents()
	return nil
}

func (s *PurchaseOrderService) ensureNumberFree(ctx context.Context, tenantID uuid.UUID, number string) error {
	exists, err := s.orderRepo.ExistsByOrderNumber(ctx, tenantID, number)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Purchase order with this number already exists")
	}
	return nil
}
