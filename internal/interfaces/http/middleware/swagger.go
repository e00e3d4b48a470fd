package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mfgops/backend/internal/interfaces/http/dto"
)

// SwaggerConfig holds the protection applied to the documentation routes
type SwaggerConfig struct {
	RequireAuth bool
	AllowedIPs  []string // single IPs or CIDRs; empty allows every client
}

// SwaggerProtection restricts the documentation routes to the allowed
// networks and, when RequireAuth is set, to callers with a session.
// Malformed entries in AllowedIPs are ignored.
func SwaggerProtection(cfg SwaggerConfig, authenticate gin.HandlerFunc) gin.HandlerFunc {
	var allowed []netip.Prefix
	for _, entry := range cfg.AllowedIPs {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			allowed = append(allowed, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			allowed = append(allowed, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if restricted && !clientAllowed(c.ClientIP(), allowed) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Access to API documentation is restricted"))
			return
		}
		if cfg.RequireAuth && authenticate != nil {
			authenticate(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

func clientAllowed(ip string, allowed []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range allowed {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
