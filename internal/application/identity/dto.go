package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/infrastructure/auth"
)

// RequestOTPRequest starts a sign-in for a phone number
type RequestOTPRequest struct {
	Phone string `json:"phone" binding:"required,max=32,phone"`
}

// RequestOTPResponse tells the client when the code expires and when it may ask again
type RequestOTPResponse struct {
	Phone       string    `json:"phone"`
	ExpiresAt   time.Time `json:"expires_at"`
	ResendAfter time.Time `json:"resend_after"`
}

// VerifyOTPRequest completes a sign-in. WorkspaceName names the tenant
// created on a first sign-in and is ignored otherwise.
type VerifyOTPRequest struct {
	Phone         string `json:"phone" binding:"required,max=32,phone"`
	Code          string `json:"code" binding:"required,numeric,min=4,max=10"`
	WorkspaceName string `json:"workspace_name" binding:"max=200"`
}

// LoginResponse is returned by a successful verification
type LoginResponse struct {
	Token     TokenResponse `json:"token"`
	User      UserResponse  `json:"user"`
	NewTenant bool          `json:"new_tenant"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally revokes the refresh token along with the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents a token pair in API responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

func toTokenResponse(p *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}

// UpdateProfileRequest edits the caller's profile
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"max=100"`
	Email       string `json:"email" binding:"omitempty,email,max=200"`
}

// UploadPhotoRequest describes an uploaded profile photo
type UploadPhotoRequest struct {
	FileName    string
	ContentType string
	Size        int64
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Phone       string     `json:"phone"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	HasPhoto    bool       `json:"has_photo"`
	PhotoURL    string     `json:"photo_url,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Phone:       u.Phone,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        string(u.Role),
		HasPhoto:    u.PhotoKey != "",
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
