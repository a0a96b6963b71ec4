// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/modaline/shop-backend/internal/config"
	"github.com/modaline/shop-backend/internal/handlers"
	"github.com/modaline/shop-backend/internal/middleware"
	"github.com/modaline/shop-backend/internal/services"
	"github.com/modaline/shop-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db)
	categoryService := services.NewCategoryService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, cartService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Authentication routes
	auth := r.Group("/auth")
	auth.Use(middleware.AuthRateLimit(cfg.RateLimit))
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
	}

	// Product routes
	products := r.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.POST("/bulk", productHandler.GetProductsBulk)

		protected := products.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.POST("", productHandler.CreateProduct)
			protected.PATCH("/:id", productHandler.UpdateProduct)
			protected.DELETE("/:id", productHandler.DeleteProduct)
			protected.PATCH("/:id/variants/:variantId", productHandler.UpsertVariant)
			protected.PATCH("/:id/variants/:variantId/stock", productHandler.AdjustVariantStock)
			protected.POST("/upload-images", middleware.UploadRateLimit(cfg.RateLimit), productHandler.UploadProductImages)
		}
	}

	// Category routes
	categories := r.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:slug", categoryHandler.GetCategory)
		categories.GET("/:slug/products", categoryHandler.GetCategoryProducts)

		protected := categories.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.POST("", categoryHandler.CreateCategory)
			protected.PATCH("/:slug", categoryHandler.UpdateCategory)
			protected.DELETE("/:slug", categoryHandler.DeleteCategory)
		}
	}

	// Cart routes
	cart := r.Group("/cart")
	cart.Use(middleware.AuthRequired())
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("", cartHandler.AddToCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/sync", cartHandler.SyncCart)
		cart.PATCH("/items", cartHandler.UpdateCartItem)
		cart.DELETE("/items/remove", cartHandler.RemoveFromCart)
	}

	// Order routes
	orders := r.Group("/orders")
	{
		orders.POST("", middleware.OptionalAuth(), orderHandler.CreateOrder)

		protected := orders.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("", orderHandler.GetUserOrders)
			protected.GET("/admin", middleware.AdminRequired(), orderHandler.GetAllOrders)
			protected.GET("/:id", orderHandler.GetOrder)
			protected.PATCH("/:id", orderHandler.UpdateOrderStatus)
			protected.DELETE("/:id", orderHandler.CancelOrder)
		}
	}

	// Static file serving backs the local storage fallback in development
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
