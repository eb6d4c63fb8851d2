// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/middleware"
)

// Handlers groups every handler the API exposes
type Handlers struct {
	Auth    *handlers.AuthHandler
	Google  *handlers.GoogleHandler
	Cart    *handlers.CartHandler
	Order   *handlers.OrderHandler
	Catalog *handlers.CatalogHandler
	Pages   *handlers.PagesHandler
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, h Handlers) {
	SetupAuthRoutes(rg, h)
	SetupCartRoutes(rg, h.Cart)
	SetupOrderRoutes(rg, h.Order)
	SetupCatalogRoutes(rg, h.Catalog)
	SetupPageRoutes(rg, h.Pages)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h Handlers) {
	auth := rg.Group("/auth")
	{
		auth.GET("/session", h.Auth.GetSession)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/refresh", h.Auth.Refresh)

		auth.GET("/google", h.Google.SignIn)
		auth.POST("/google/callback", h.Google.Callback)
		auth.POST("/google/logout", h.Google.SignOut)
		auth.GET("/google/status", h.Google.Status)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items/:productId", h.UpdateCartItem)
		cart.DELETE("/items/:productId", h.RemoveFromCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/checkout", h.Checkout)
	}
}

// SetupOrderRoutes sets up order tracking routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler) {
	orders := rg.Group("/orders")
	{
		orders.GET("/track", h.TrackOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.GET("/:id/receipt", h.DownloadReceipt)
	}
}

// SetupCatalogRoutes sets up product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *handlers.CatalogHandler) {
	products := rg.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("/:id/reviews", middleware.RequireSession(), h.CreateReview)
	}

	rg.GET("/categories", h.GetCategories)
}

// SetupPageRoutes sets up informational page routes
func SetupPageRoutes(rg *gin.RouterGroup, h *handlers.PagesHandler) {
	pages := rg.Group("/pages")
	{
		pages.GET("", h.ListPages)
		pages.POST("/contact", h.SubmitContact)
		pages.GET("/:slug", h.GetPage)
	}
}
