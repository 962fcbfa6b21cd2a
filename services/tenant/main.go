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

	// Initialize Redis for the settings cache
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

	billingConfig := LoadBillingConfig()

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Tenant service is healthy", nil)
	})

	authed := router.Group("/")
	authed.Use(authMiddleware.RequireAuth())
	{
		authed.GET("/tenants/me", handleGetMe(db))
		authed.GET("/tenants",
			authMiddleware.RequireRole(models.RoleSuperAdmin), handleListTenants(db))

		authed.GET("/merchants",
			authMiddleware.RequireRole(models.RoleAgency), handleListMerchants(db))
		authed.GET("/referral-link",
			authMiddleware.RequireRole(models.RoleAgency), handleReferralLink())
		authed.GET("/billing",
			authMiddleware.RequireRole(models.RoleAgency), handleGetBilling(db, billingConfig))

		authed.GET("/settings", handleGetSettings(db))
		authed.PUT("/settings", handlePutSettings(db))
	}

	// Start server
	port := os.Getenv("TENANT_SERVICE_PORT")
	if port == "" {
		port = "8002"
	}

	logrus.Infof("Tenant service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start tenant service:", err)
	}
}
