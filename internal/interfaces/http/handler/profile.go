package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/mfgops/backend/internal/application/identity"
)

// ProfileHandler serves the caller's own user record under /me
type ProfileHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

func NewProfileHandler(userService *identityapp.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

// Get handles GET /me
// @Summary      Get the caller profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	s := h.session(c)
	resp, err := h.userService.GetProfile(c.Request.Context(), s.TenantID, s.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /me
// @Summary      Update the caller profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body identityapp.UpdateProfileRequest true "Profile fields"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	var req identityapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s := h.session(c)
	resp, err := h.userService.UpdateProfile(c.Request.Context(), s.TenantID, s.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UploadPhoto handles POST /me/photo (multipart, field "file")
// @Summary      Upload a profile photo
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "File to upload"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/photo [post]
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	up, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer up.file.Close()

	s := h.session(c)
	resp, err := h.userService.UploadPhoto(c.Request.Context(), s.TenantID, s.UserID, identityapp.UploadPhotoRequest{
		FileName:    up.fileName,
		ContentType: up.contentType,
		Size:        up.size,
	}, up.file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
