package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/storefoundry/go-storefront-platform/shared/config"
	"github.com/storefoundry/go-storefront-platform/shared/middleware"
	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.MigrateAll(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Redis for token-claim caching
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, caching disabled: %v", err)
	}

	// Initialize authentication middleware
	authMiddleware, err := middleware.NewAuthMiddleware(
		os.Getenv("AWS_REGION"),
		os.Getenv("COGNITO_USER_POOL_ID"),
	)
	if err != nil {
		log.Fatal("Failed to initialize auth middleware:", err)
	}

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Orders service is healthy", nil)
	})

	// Orders are managed by the tenant that sells through a storefront.
	orders := router.Group("/orders")
	orders.Use(authMiddleware.RequireAuth())
	orders.Use(authMiddleware.RequireAnyRole(models.RoleShopOwner, models.RoleMerchant))
	{
		orders.GET("", handleListOrders(db))
		orders.GET("/:id", handleGetOrder(db))
		orders.PUT("/:id/status", handleUpdateOrderStatus(db))
	}

	// Start server
	port := os.Getenv("ORDER_SERVICE_PORT")
	if port == "" {
		port = "8004"
	}

	logrus.Infof("Orders service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start orders service:", err)
	}
}
