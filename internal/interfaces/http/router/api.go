package router

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/mfgops/backend/internal/interfaces/http/handler"
	"github.com/mfgops/backend/internal/interfaces/http/middleware"
)

// Handlers are the endpoints of the API
type Handlers struct {
	Auth          *handler.AuthHandler
	Profile       *handler.ProfileHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	Product       *handler.ProductHandler
	RawMaterial   *handler.RawMaterialHandler
	Company       *handler.CompanyHandler
	Outbox        *handler.OutboxHandler
	Health        *handler.HealthHandler
}

// Guards are the per-route middleware. Authenticate resolves the session;
// SignInLimit throttles the unauthenticated sign-in routes.
type Guards struct {
	Authenticate gin.HandlerFunc
	SignInLimit  gin.HandlerFunc
}

// Groups lays out the API. Everything except sign-in and health needs a
// session; the outbox admin routes need an owner.
func Groups(h Handlers, g Guards) []RouteRegistrar {
	authed := []gin.HandlerFunc{g.Authenticate, middleware.SpanEnricher()}
	signIn := []gin.HandlerFunc{}
	if g.SignInLimit != nil {
		signIn = append(signIn, g.SignInLimit)
	}

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/otp", chain(signIn, h.Auth.RequestOTP)...)
	auth.POST("/otp/verify", chain(signIn, h.Auth.VerifyOTP)...)
	auth.POST("/refresh", chain(signIn, h.Auth.Refresh)...)
	auth.POST("/logout", chain(authed, h.Auth.Logout)...)

	me := NewDomainGroup("profile", "/me").Use(authed...)
	me.GET("", h.Profile.Get)
	me.PUT("", h.Profile.Update)
	me.POST("/photo", h.Profile.UploadPhoto)

	orders := NewDomainGroup("purchasing", "/purchase-orders").Use(authed...)
	orders.GET("", h.PurchaseOrder.List)
	orders.POST("", h.PurchaseOrder.Create)
	orders.GET("/summary", h.PurchaseOrder.Summary)
	orders.GET("/:id", h.PurchaseOrder.Get)
	orders.PUT("/:id", h.PurchaseOrder.Replace)
	orders.DELETE("/:id", h.PurchaseOrder.Delete)
	orders.POST("/:id/lines", h.PurchaseOrder.AddLine)
	orders.PUT("/:id/lines/:line_id", h.PurchaseOrder.UpdateLine)
	orders.DELETE("/:id/lines/:line_id", h.PurchaseOrder.RemoveLine)
	orders.POST("/:id/lines/:line_id/duplicate", h.PurchaseOrder.DuplicateLine)
	orders.PATCH("/:id/status", h.PurchaseOrder.UpdateStatus)
	orders.PATCH("/:id/payment-status", h.PurchaseOrder.UpdatePaymentStatus)
	orders.POST("/:id/attachments", h.PurchaseOrder.UploadAttachment)
	orders.GET("/:id/attachments/:attachment_id/url", h.PurchaseOrder.AttachmentURL)

	calculator := NewDomainGroup("calculator", "/calculator").Use(authed...)
	calculator.POST("/line", h.PurchaseOrder.QuoteLine)

	products := NewDomainGroup("products", "/products").Use(authed...)
	products.GET("", h.Product.List)
	products.POST("", h.Product.Create)
	products.GET("/:id", h.Product.Get)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.PATCH("/:id/status", h.Product.UpdateStatus)
	products.GET("/:id/pricing", h.Product.Pricing)
	products.GET("/:id/usage", h.Product.Usage)

	materials := NewDomainGroup("raw-materials", "/raw-materials").Use(authed...)
	materials.GET("", h.RawMaterial.List)
	materials.POST("", h.RawMaterial.Create)
	materials.GET("/:id", h.RawMaterial.Get)
	materials.PUT("/:id", h.RawMaterial.Update)
	materials.DELETE("/:id", h.RawMaterial.Delete)
	materials.POST("/:id/stock", h.RawMaterial.AdjustStock)
	materials.GET("/:id/usage", h.RawMaterial.Usage)

	companies := NewDomainGroup("partner", "/companies").Use(authed...)
	companies.GET("", h.Company.List)
	companies.POST("", h.Company.Create)
	companies.GET("/own", h.Company.Own)
	companies.GET("/:id", h.Company.Get)
	companies.PUT("/:id", h.Company.Update)
	companies.DELETE("/:id", h.Company.Delete)
	companies.POST("/:id/logo", h.Company.UploadLogo)

	admin := NewDomainGroup("admin", "/admin").Use(chain(authed, middleware.RequireOwner())...)
	admin.GET("/outbox/dead", h.Outbox.DeadLetters)
	admin.POST("/outbox/:id/retry", h.Outbox.Retry)

	system := NewDomainGroup("system", "")
	system.GET("/health", h.Health.Health)

	return []RouteRegistrar{auth, me, orders, calculator, products, materials, companies, admin, system}
}

func chain(middleware []gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	return slices.Concat(middleware, handlers)
}
