package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/logger"
	"github.com/mfgops/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware. The string ids are read by the
// metrics and tracing middleware.
const (
	SessionKey      = "session"
	JWTUserIDKey    = "jwt_user_id"
	JWTTenantIDKey  = "jwt_tenant_id"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	TenantHeaderKey = "X-Tenant-ID"
	UserHeaderKey   = "X-User-ID"
)

// SessionAuthenticator turns an access token into the caller's session
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, accessToken string) (identity.Session, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Authenticator SessionAuthenticator
	// AllowTenantHeader accepts X-Tenant-ID (and X-User-ID) in place of a
	// token. Only enable it in development.
	AllowTenantHeader bool
	Logger            *zap.Logger
}

// JWTAuthMiddleware requires a bearer access token and stores the session
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)

		if authHeader == "" && cfg.AllowTenantHeader {
			if session, ok := headerSession(c); ok {
				setSession(c, session)
				c.Next()
				return
			}
		}

		if authHeader == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing token")
			return
		}

		session, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			cfg.Logger.Warn("JWT authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			if de, ok := shared.AsDomainError(err); ok {
				abortUnauthorized(c, de.Code, de.Message)
				return
			}
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// headerSession builds a development session from X-Tenant-ID. The role is
// owner so every route is reachable.
func headerSession(c *gin.Context) (identity.Session, bool) {
	tenantID, err := uuid.Parse(c.GetHeader(TenantHeaderKey))
	if err != nil || tenantID == uuid.Nil {
		return identity.Session{}, false
	}
	userID, _ := uuid.Parse(c.GetHeader(UserHeaderKey))
	return identity.Session{
		TenantID: tenantID,
		UserID:   userID,
		Role:     identity.RoleOwner,
	}, true
}

func setSession(c *gin.Context, session identity.Session) {
	c.Set(SessionKey, session)
	c.Set(JWTTenantIDKey, session.TenantID.String())
	c.Set(JWTUserIDKey, session.UserID.String())

	ctx := logger.WithFields(c.Request.Context(),
		zap.String("tenant_id", session.TenantID.String()),
		zap.String("user_id", session.UserID.String()),
	)
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(dto.NormalizeErrorCode(code))
	if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
		status = http.StatusUnauthorized
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// GetSession retrieves the caller's session from gin.Context
func GetSession(c *gin.Context) (identity.Session, bool) {
	if v, exists := c.Get(SessionKey); exists {
		if s, ok := v.(identity.Session); ok {
			return s, true
		}
	}
	return identity.Session{}, false
}

// MustGetSession retrieves the session or panics. Only use it behind JWTAuthMiddleware.
func MustGetSession(c *gin.Context) identity.Session {
	s, ok := GetSession(c)
	if !ok {
		panic("session not found in context")
	}
	return s
}
