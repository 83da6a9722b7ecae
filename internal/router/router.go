// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/farmfresh/farm-backend/internal/config"
	"github.com/farmfresh/farm-backend/internal/database"
	"github.com/farmfresh/farm-backend/internal/handlers"
	"github.com/farmfresh/farm-backend/internal/middleware"
	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/services"
	"github.com/farmfresh/farm-backend/internal/utils"
)

func Initialize(factory *database.Factory, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage service")
	}
	paymentService := services.NewPaymentService(cfg)

	authService := services.NewAuthService(factory, cfg)
	userService := services.NewUserService(factory)
	productService := services.NewProductService(factory)
	orderService := services.NewOrderService(factory, paymentService)
	cartService := services.NewCartService(factory)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(factory)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	orderHandler := handlers.NewOrderHandler(orderService)
	cartHandler := handlers.NewCartHandler(cartService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", healthHandler.Check)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetCurrentUser)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("", middleware.AdminRequired(), userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", middleware.AdminRequired(), userHandler.DeleteUser)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.ListProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleFarmer, models.RoleAdmin))
			{
				protected.POST("", productHandler.CreateProduct)
				protected.PUT("/:id", productHandler.UpdateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
				protected.POST("/:id/images", middleware.UploadRateLimit(), productHandler.UploadImage)
				protected.DELETE("/:id/images", productHandler.RemoveImage)
			}
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.RoleRequired(models.RoleCustomer), orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
			orders.DELETE("/:id", middleware.AdminRequired(), orderHandler.DeleteOrder)
		}

		// Cart routes
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
		{
			cart.GET("", cartHandler.GetCart)
			cart.PUT("", cartHandler.SetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.DELETE("/items/:productId", cartHandler.RemoveItem)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			payments.POST("/refund", paymentHandler.RefundPayment)
		}

		// Category routes (public)
		v1.GET("/categories", getCategoriesHandler)
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}

func getCategoriesHandler(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"categories": models.Categories(),
	})
}
