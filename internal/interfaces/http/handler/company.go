package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/mfgops/backend/internal/application/partner"
)

// CompanyHandler serves counterparties and the tenant's own company
type CompanyHandler struct {
	BaseHandler
	companyService *partnerapp.CompanyService
}

func NewCompanyHandler(companyService *partnerapp.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// List handles GET /companies
// @Summary      List companies
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        search query string false "Search term"
// @Param        is_own query boolean false "Is own"
// @Param        page query integer false "Page number"
// @Param        page_size query integer false "Page size" maximum(100)
// @Param        order_by query string false "Sort field" Enums(name, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]partnerapp.CompanyResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var filter partnerapp.CompanyListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = pageOf(filter.Page, filter.PageSize)

	items, total, err := h.companyService.List(c.Request.Context(), h.session(c).TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Own handles GET /companies/own
// @Summary      Get the own company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=partnerapp.CompanyResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/own [get]
func (h *CompanyHandler) Own(c *gin.Context) {
	company, err := h.companyService.GetOwn(c.Request.Context(), h.session(c).TenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Create handles POST /companies
// @Summary      Create a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CompanyRequest true "Company"
// @Success      201 {object} dto.Response{data=partnerapp.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req partnerapp.CompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := h.session(c)
	company, err := h.companyService.Create(c.Request.Context(), s.TenantID, s.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// Get handles GET /companies/:id
// @Summary      Get a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	company, err := h.companyService.GetByID(c.Request.Context(), h.session(c).TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Update handles PUT /companies/:id
// @Summary      Update a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Param        request body partnerapp.CompanyRequest true "Company"
// @Success      200 {object} dto.Response{data=partnerapp.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.CompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	company, err := h.companyService.Update(c.Request.Context(), h.session(c).TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Delete handles DELETE /companies/:id
// @Summary      Delete a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.companyService.Delete(c.Request.Context(), h.session(c).TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadLogo handles POST /companies/:id/logo (multipart, field "file")
// @Summary      Upload a company logo
// @Tags         companies
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Company ID" format(uuid)
// @Param        file formData file true "File to upload"
// @Success      200 {object} dto.Response{data=partnerapp.CompanyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /companies/{id}/logo [post]
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	up, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer up.file.Close()

	company, err := h.companyService.UploadLogo(c.Request.Context(), h.session(c).TenantID, id, partnerapp.UploadLogoRequest{
		FileName:    up.fileName,
		ContentType: up.contentType,
		Size:        up.size,
	}, up.file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}
