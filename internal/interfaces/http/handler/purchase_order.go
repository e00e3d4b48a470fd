package handler

import (
	"github.com/gin-gonic/gin"
	purchasingapp "github.com/mfgops/backend/internal/application/purchasing"
)

// PurchaseOrderHandler serves GIVEN and RECEIVED purchase orders
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *purchasingapp.PurchaseOrderService
}

func NewPurchaseOrderHandler(orderService *purchasingapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// List handles GET /purchase-orders
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        kind query string false "Kind" Enums(GIVEN, RECEIVED)
// @Param        status query string false "Status" Enums(Pending, InProduction, Completed, Cancelled)
// @Param        payment_status query string false "Payment status" Enums(Pending, Partial, Paid, UnPaid)
// @Param        company_id query string false "Company ID" format(uuid)
// @Param        search query string false "Search term"
// @Param        start_date query string false "Start date" format(date)
// @Param        end_date query string false "End date" format(date)
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Page size" maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]purchasingapp.PurchaseOrderListItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter purchasingapp.PurchaseOrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = pageOf(filter.Page, filter.PageSize)

	items, total, err := h.orderService.List(c.Request.Context(), h.session(c).TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Summary handles GET /purchase-orders/summary?kind=GIVEN|RECEIVED
// @Summary      Count purchase orders by status
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        kind query string false "Order kind" Enums(GIVEN, RECEIVED)
// @Success      200 {object} dto.Response{data=object}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/summary [get]
func (h *PurchaseOrderHandler) Summary(c *gin.Context) {
	summary, err := h.orderService.GetStatusSummary(c.Request.Context(), h.session(c).TenantID, c.Query("kind"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Create handles POST /purchase-orders. Incomplete forms are stored and the
// response lists the hints.
// @Summary      Create a purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        request body purchasingapp.SubmitPurchaseOrderRequest true "Purchase order"
// @Success      201 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req purchasingapp.SubmitPurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := h.session(c)
	order, err := h.orderService.Create(c.Request.Context(), s.TenantID, s.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /purchase-orders/:id
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), h.session(c).TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Replace handles PUT /purchase-orders/:id
// @Summary      Replace a purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body purchasingapp.SubmitPurchaseOrderRequest true "Purchase order"
// @Success      200 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Replace(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req purchasingapp.SubmitPurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Replace(c.Request.Context(), h.session(c).TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete handles DELETE /purchase-orders/:id
// @Summary      Delete a purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), h.session(c).TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddLine handles POST /purchase-orders/:id/lines
// @Summary      Add a line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body purchasingapp.LineRequest true "Line"
// @Success      201 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lines [post]
func (h *PurchaseOrderHandler) AddLine(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req purchasingapp.LineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.AddLine(c.Request.Context(), h.session(c).TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// UpdateLine handles PUT /purchase-orders/:id/lines/:line_id
// @Summary      Update a line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Param        request body purchasingapp.LineRequest true "Line"
// @Success      200 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lines/{line_id} [put]
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "line_id")
	if !ok {
		return
	}
	var req purchasingapp.LineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateLine(c.Request.Context(), h.session(c).TenantID, id, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RemoveLine handles DELETE /purchase-orders/:id/lines/:line_id
// @Summary      Remove a line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lines/{line_id} [delete]
func (h *PurchaseOrderHandler) RemoveLine(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "line_id")
	if !ok {
		return
	}
	order, err := h.orderService.RemoveLine(c.Request.Context(), h.session(c).TenantID, id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// DuplicateLine handles POST /purchase-orders/:id/lines/:line_id/duplicate
// @Summary      Duplicate a line
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Success      201 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/lines/{line_id}/duplicate [post]
func (h *PurchaseOrderHandler) DuplicateLine(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "line_id")
	if !ok {
		return
	}
	order, err := h.orderService.DuplicateLine(c.Request.Context(), h.session(c).TenantID, id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// UpdateStatus handles PATCH /purchase-orders/:id/status
// @Summary      Change the order status
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body purchasingapp.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/status [patch]
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req purchasingapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), h.session(c).TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdatePaymentStatus handles PATCH /purchase-orders/:id/payment-status
// @Summary      Change the payment status
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body purchasingapp.UpdatePaymentStatusRequest true "New payment status"
// @Success      200 {object} dto.Response{data=purchasingapp.PurchaseOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/payment-status [patch]
func (h *PurchaseOrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req purchasingapp.UpdatePaymentStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), h.session(c).TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UploadAttachment handles POST /purchase-orders/:id/attachments. Only
// RECEIVED orders take attachments.
// @Summary      Attach a file to a received order
// @Tags         purchase-orders
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        file formData file true "File to upload"
// @Success      201 {object} dto.Response{data=purchasingapp.AttachmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/attachments [post]
func (h *PurchaseOrderHandler) UploadAttachment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	up, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer up.file.Close()

	att, err := h.orderService.UploadAttachment(c.Request.Context(), h.session(c).TenantID, id, purchasingapp.UploadAttachmentRequest{
		FileName:    up.fileName,
		ContentType: up.contentType,
		Size:        up.size,
	}, up.file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, att)
}

// AttachmentURL handles GET /purchase-orders/:id/attachments/:attachment_id/url
// @Summary      Get a download URL for an attachment
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        attachment_id path string true "Attachment ID" format(uuid)
// @Success      200 {object} dto.Response{data=purchasingapp.AttachmentURLResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /purchase-orders/{id}/attachments/{attachment_id}/url [get]
func (h *PurchaseOrderHandler) AttachmentURL(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := h.pathID(c, "attachment_id")
	if !ok {
		return
	}
	resp, err := h.orderService.AttachmentURL(c.Request.Context(), h.session(c).TenantID, id, attachmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// QuoteLine handles POST /calculator/line: the totals a line form shows
// while it is being typed. Nothing is stored.
// @Summary      Calculate line totals
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        request body purchasingapp.LineQuoteRequest true "Line values"
// @Success      200 {object} dto.Response{data=costing.LineQuote}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /calculator/line [post]
func (h *PurchaseOrderHandler) QuoteLine(c *gin.Context) {
	var req purchasingapp.LineQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, h.orderService.QuoteLine(req))
}
