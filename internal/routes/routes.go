package routes

import (
	"github.com/colexalia/colexalia-backend/internal/handler"
	"github.com/colexalia/colexalia-backend/internal/middleware"
	"github.com/colexalia/colexalia-backend/internal/workspace"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups every API handler
type Handlers struct {
	Product    *handler.ProductHandler
	Auth       *handler.AuthHandler
	Account    *handler.AccountHandler
	Wishlist   *handler.WishlistHandler
	Collection *handler.CollectionHandler
	Dashboard  *handler.DashboardHandler
	Premium    *handler.PremiumHandler
}

// Setup configures all API routes under /api/v1.
// userLimit, when non-nil, is applied to every signed-in route.
func Setup(router *gin.Engine, factory *workspace.Factory, h Handlers, userLimit gin.HandlerFunc) {
	api := router.Group("/api/v1")

	// 공개 API (세션 불필요)
	products := api.Group("/products")
	products.GET("", h.Product.Search)
	products.POST("/batch", h.Product.GetBatch)
	products.GET("/:id", h.Product.GetByID)
	products.GET("/:id/history", h.Product.GetPriceHistory)

	api.GET("/affiliate", h.Product.Affiliate)
	api.GET("/premium/plans", h.Premium.Plans)

	// 인증 (세션은 열되 로그인 불필요)
	auth := api.Group("/auth", middleware.Workspace(factory))
	auth.POST("/signup", h.Auth.SignUp)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/google", h.Auth.LoginWithGoogle)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/session", h.Auth.Session)

	// 로그인 필요
	private := []gin.HandlerFunc{middleware.Workspace(factory), middleware.RequireAuth()}
	if userLimit != nil {
		private = append(private, userLimit)
	}

	account := api.Group("/account", private...)
	account.PUT("/display-name", h.Account.UpdateDisplayName)
	account.PUT("/email", h.Account.UpdateEmail)
	account.PUT("/password", h.Account.UpdatePassword)

	wishlist := api.Group("/wishlist", private...)
	wishlist.GET("", h.Wishlist.List)
	wishlist.POST("", h.Wishlist.Add)
	wishlist.GET("/alerts", h.Wishlist.Alerts)
	wishlist.GET("/contains/:productId", h.Wishlist.Contains)
	wishlist.DELETE("/:id", h.Wishlist.Remove)
	wishlist.PUT("/:id/alert", h.Wishlist.SetAlert)

	collection := api.Group("/collection", private...)
	collection.GET("", h.Collection.List)
	collection.POST("", h.Collection.Add)
	collection.GET("/value", h.Collection.Value)
	collection.PATCH("/:id", h.Collection.Update)
	collection.DELETE("/:id", h.Collection.Remove)
	collection.PUT("/:id/prices", h.Collection.UpdatePrices)
	collection.POST("/:id/refresh-prices", h.Collection.RefreshPrices)

	dashboard := api.Group("/dashboard", private...)
	dashboard.GET("", h.Dashboard.Get)
}

// UserRateLimit returns the per-user limiter, or nil without Redis
func UserRateLimit(client *redis.Client, cfg middleware.RateLimitConfig) gin.HandlerFunc {
	if client == nil {
		return nil
	}
	return middleware.RateLimitPerUser(client, cfg)
}
