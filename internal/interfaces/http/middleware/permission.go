package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/mfgops/backend/internal/domain/identity"
	"github.com/mfgops/backend/internal/interfaces/http/dto"
)

// RequireRole lets the request through only when the session has one of roles
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !slices.Contains(roles, session.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Your role cannot perform this action", getRequestID(c)))
			return
		}
		c.Next()
	}
}

// RequireOwner is RequireRole(identity.RoleOwner)
func RequireOwner() gin.HandlerFunc {
	return RequireRole(identity.RoleOwner)
}
