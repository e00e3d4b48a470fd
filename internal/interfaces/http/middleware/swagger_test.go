package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerEngine(cfg SwaggerConfig, authenticate gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.GET("/swagger/*any", SwaggerProtection(cfg, authenticate), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return engine
}

func getDocs(engine *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestSwaggerProtection(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("open when unrestricted", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, getDocs(swaggerEngine(SwaggerConfig{}, nil), "203.0.113.7:4000"))
	})

	t.Run("allowed networks", func(t *testing.T) {
		engine := swaggerEngine(SwaggerConfig{AllowedIPs: []string{"10.0.0.0/8", "192.168.1.20", "not-an-ip"}}, nil)
		assert.Equal(t, http.StatusOK, getDocs(engine, "10.1.2.3:4000"))
		assert.Equal(t, http.StatusOK, getDocs(engine, "192.168.1.20:4000"))
		assert.Equal(t, http.StatusForbidden, getDocs(engine, "192.168.1.21:4000"))
	})

	t.Run("auth required", func(t *testing.T) {
		deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
		assert.Equal(t, http.StatusUnauthorized, getDocs(swaggerEngine(SwaggerConfig{RequireAuth: true}, deny), "10.1.2.3:4000"))

		allow := func(c *gin.Context) { c.Next() }
		assert.Equal(t, http.StatusOK, getDocs(swaggerEngine(SwaggerConfig{RequireAuth: true}, allow), "10.1.2.3:4000"))
	})
}
