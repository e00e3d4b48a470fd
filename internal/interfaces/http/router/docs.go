package router

import (
	"slices"

	"github.com/gin-gonic/gin"
	_ "github.com/mfgops/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Docs serves the OpenAPI document and the Swagger UI at /swagger/*any,
// outside the versioned API prefix.
func (r *Router) Docs(guards ...gin.HandlerFunc) *Router {
	handlers := slices.Concat(guards, []gin.HandlerFunc{ginSwagger.WrapHandler(swaggerFiles.Handler)})
	r.engine.GET("/swagger/*any", handlers...)
	return r
}
