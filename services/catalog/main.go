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

	// Initialize object storage for product images
	uploader, err := NewS3Uploader()
	if err != nil {
		log.Fatal("Failed to initialize object storage:", err)
	}

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Catalog service is healthy", nil)
	})

	authed := router.Group("/")
	authed.Use(authMiddleware.RequireAuth())
	{
		// Scoped catalog, for tenants that run a storefront.
		selling := authed.Group("/catalog")
		selling.Use(authMiddleware.RequireAnyRole(models.RoleShopOwner, models.RoleMerchant))
		{
			selling.GET("", handleListCatalog(db))
			selling.POST("", handleCreateItem(db))
			selling.DELETE("/:id", handleDeleteItem(db))
		}

		// Sourcing bridge: suppliers publish, merchants browse and import.
		authed.POST("/sourcing",
			authMiddleware.RequireRole(models.RoleSupplier), handlePublishSourcedItem(db))
		authed.GET("/sourcing",
			authMiddleware.RequireRole(models.RoleMerchant), handleListSourcedItems(db))
		authed.POST("/sourcing/:id/import",
			authMiddleware.RequireRole(models.RoleMerchant), handleImportSourcedItem(db))

		authed.POST("/uploads", handleUploadImage(uploader))
	}

	// Start server
	port := os.Getenv("CATALOG_SERVICE_PORT")
	if port == "" {
		port = "8003"
	}

	logrus.Infof("Catalog service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start catalog service:", err)
	}
}
