package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/mfgops/backend/internal/application/catalog"
)

// RawMaterialHandler serves raw materials, their stock and usage
type RawMaterialHandler struct {
	BaseHandler
	materialService *catalogapp.RawMaterialService
}

func NewRawMaterialHandler(materialService *catalogapp.RawMaterialService) *RawMaterialHandler {
	return &RawMaterialHandler{materialService: materialService}
}

// List handles GET /raw-materials
// @Summary      List raw materials
// @Tags         raw-materials
// @Accept       json
// @Produce      json
// @Param        search query string false "Search term"
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Page size" maximum(100)
// @Param        order_by query string false "Sort field" Enums(code, name, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.RawMaterialResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-materials [get]
func (h *RawMaterialHandler) List(c *gin.Context) {
	var filter catalogapp.RawMaterialListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = pageOf(filter.Page, filter.PageSize)

	items, total, err := h.materialService.List(c.Request.Context(), h.session(c).TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Create handles POST /raw-materials
// @Summary      Create a raw material
// @Tags         raw-materials
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.RawMaterialRequest true "Raw material"
// @Success      201 {object} dto.Response{data=catalogapp.RawMaterialResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-materials [post]
func (h *RawMaterialHandler) Create(c *gin.Context) {
	var req catalogapp.RawMaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := h.session(c)
	material, err := h.materialService.Create(c.Request.Context(), s.TenantID, s.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, material)
}

// Get handles GET /raw-materials/:id
// @Summary      Get a raw material
// @Tags         raw-materials
// @Accept       json
// @Produce      json
// @Param        id path string true "Raw material ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.RawMaterialResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-materials/{id} [get]
func (h *RawMaterialHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	material, err := h.materialService.GetByID(c.Request.Context(), h.session(c).TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// Update handles PUT /raw-materials/:id
// @Summary      Update a raw material
// @Tags         raw-materials
// @Accept       json
// @Produce      json
// @Param        id path string true "Raw material ID" format(uuid)
// @Param        request body catalogapp.RawMaterialRequest true "Raw material"
// @Success      200 {object} dto.Response{data=catalogapp.RawMaterialResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-materials/{id} [put]
func (h *RawMaterialHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.RawMaterialRequest
	if !h.bindJSON(c, &req) {
		return
	}
	material, err := h.materialService.Update(c.Request.Context(), h.session(c).TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// Delete handles DELETE /raw-materials/:id
// @Summary      Delete a raw material
// @Tags         raw-materials
// @Accept       json
// @Produce      json
// @Param        id path string true "Raw material ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-materials/{id} [delete]
func (h *RawMaterialHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.materialService.Delete(c.Request.Context(), h.session(c).TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AdjustStock handles POST /raw-materials/:id/stock (restock or consume)
// @Summary      Restock or consume a raw material
// @Tags         raw-materials
// @Accept       json
// @Produce      json
// @Param        id path string true "Raw material ID" format(uuid)
// @Param        request body catalogapp.StockAdjustmentRequest true "Adjustment"
// @Success      200 {object} dto.Response{data=catalogapp.RawMaterialResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-materials/{id}/stock [post]
func (h *RawMaterialHandler) AdjustStock(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.StockAdjustmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	material, err := h.materialService.AdjustStock(c.Request.Context(), h.session(c).TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// Usage handles GET /raw-materials/:id/usage
// @Summary      List raw material usage
// @Tags         raw-materials
// @Accept       json
// @Produce      json
// @Param        id path string true "Raw material ID" format(uuid)
// @Param        type query string false "Type" Enums(Product, PoGiven, PoReceived)
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Page size" maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.UsageLogResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /raw-materials/{id}/usage [get]
func (h *RawMaterialHandler) Usage(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var filter catalogapp.UsageListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = pageOf(filter.Page, filter.PageSize)

	logs, total, err := h.materialService.ListUsage(c.Request.Context(), h.session(c).TenantID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, logs, total, filter.Page, filter.PageSize)
}
