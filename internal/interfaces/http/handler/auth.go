package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/mfgops/backend/internal/application/identity"
)

// AuthHandler serves the phone OTP sign-in flow
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestOTP handles POST /auth/otp
// @Summary      Request a sign-in code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RequestOTPRequest true "Phone number"
// @Success      202 {object} dto.Response{data=identityapp.RequestOTPResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/otp [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req identityapp.RequestOTPRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.RequestOTP(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, resp)
}

// VerifyOTP handles POST /auth/otp/verify. A first sign-in provisions the
// workspace and answers 201.
// @Summary      Verify a sign-in code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.VerifyOTPRequest true "Phone number and code"
// @Success      200 {object} dto.Response{data=identityapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req identityapp.VerifyOTPRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.NewTenant {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// Refresh handles POST /auth/refresh
// @Summary      Refresh the token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identityapp.TokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout handles POST /auth/logout. The body is optional.
// @Summary      Sign out
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LogoutRequest false "Refresh token to revoke"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req identityapp.LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), h.session(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
