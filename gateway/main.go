package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/storefoundry/go-storefront-platform/shared/middleware"
	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Initialize Redis for caching
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Failed to connect to Redis, caching disabled: %v", err)
	}

	// Get AWS configuration
	awsRegion := os.Getenv("AWS_REGION")
	cognitoUserPoolID := os.Getenv("COGNITO_USER_POOL_ID")

	if awsRegion == "" || cognitoUserPoolID == "" {
		log.Fatal("AWS_REGION and COGNITO_USER_POOL_ID must be set")
	}

	// Initialize authentication middleware
	authMiddleware, err := middleware.NewAuthMiddleware(
		awsRegion,
		cognitoUserPoolID,
	)
	if err != nil {
		log.Fatal("Failed to initialize auth middleware:", err)
	}

	// Initialize service clients
	serviceClients := &ServiceClients{
		AuthService:       NewServiceClient(os.Getenv("AUTH_SERVICE_URL")),
		TenantService:     NewServiceClient(os.Getenv("TENANT_SERVICE_URL")),
		CatalogService:    NewServiceClient(os.Getenv("CATALOG_SERVICE_URL")),
		OrderService:      NewServiceClient(os.Getenv("ORDER_SERVICE_URL")),
		StorefrontService: NewServiceClient(os.Getenv("STOREFRONT_SERVICE_URL")),
	}

	// Initialize Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Session-ID")
		c.Header("Access-Control-Expose-Headers", "X-Session-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "API Gateway is healthy", nil)
	})

	// Aggregate service status
	router.GET("/status", func(c *gin.Context) {
		utils.OKResponse(c, "Service status", serviceClients.GetServiceStatus())
	})

	// Authentication routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", serviceClients.AuthService.ProxyRequest)
		auth.POST("/login", serviceClients.AuthService.ProxyRequest)
		auth.POST("/refresh", serviceClients.AuthService.ProxyRequest)
		auth.GET("/verify", authMiddleware.RequireAuth(), serviceClients.AuthService.ProxyRequest)
		auth.POST("/logout", authMiddleware.RequireAuth(), serviceClients.AuthService.ProxyRequest)
	}

	// Tenant registry routes
	tenants := router.Group("/tenants")
	tenants.Use(authMiddleware.RequireAuth())
	{
		tenants.GET("/me", serviceClients.TenantService.ProxyRequest)
		tenants.GET("", authMiddleware.RequireRole(models.RoleSuperAdmin), serviceClients.TenantService.ProxyRequest)
	}

	// Agency routes
	router.GET("/merchants",
		authMiddleware.RequireAuth(), authMiddleware.RequireRole(models.RoleAgency),
		serviceClients.TenantService.ProxyRequest)
	router.GET("/referral-link",
		authMiddleware.RequireAuth(), authMiddleware.RequireRole(models.RoleAgency),
		serviceClients.TenantService.ProxyRequest)
	router.GET("/billing",
		authMiddleware.RequireAuth(), authMiddleware.RequireRole(models.RoleAgency),
		serviceClients.TenantService.ProxyRequest)

	// Storefront settings routes
	settings := router.Group("/settings")
	settings.Use(authMiddleware.RequireAuth())
	{
		settings.GET("", serviceClients.TenantService.ProxyRequest)
		settings.PUT("", serviceClients.TenantService.ProxyRequest)
	}

	// Catalog routes
	catalog := router.Group("/catalog")
	catalog.Use(authMiddleware.RequireAuth(),
		authMiddleware.RequireAnyRole(models.RoleShopOwner, models.RoleMerchant))
	{
		catalog.GET("", serviceClients.CatalogService.ProxyRequest)
		catalog.POST("", serviceClients.CatalogService.ProxyRequest)
		catalog.DELETE("/:id", serviceClients.CatalogService.ProxyRequest)
	}

	// Sourcing bridge routes
	sourcing := router.Group("/sourcing")
	sourcing.Use(authMiddleware.RequireAuth())
	{
		sourcing.POST("", authMiddleware.RequireRole(models.RoleSupplier), serviceClients.CatalogService.ProxyRequest)
		sourcing.GET("", authMiddleware.RequireRole(models.RoleMerchant), serviceClients.CatalogService.ProxyRequest)
		sourcing.POST("/:id/import", authMiddleware.RequireRole(models.RoleMerchant), serviceClients.CatalogService.ProxyRequest)
	}

	// Image upload routes
	router.POST("/uploads", authMiddleware.RequireAuth(), serviceClients.CatalogService.ProxyRequest)

	// Order triage routes
	orders := router.Group("/orders")
	orders.Use(authMiddleware.RequireAuth(),
		authMiddleware.RequireAnyRole(models.RoleShopOwner, models.RoleMerchant))
	{
		orders.GET("", serviceClients.OrderService.ProxyRequest)
		orders.GET("/:id", serviceClients.OrderService.ProxyRequest)
		orders.PUT("/:id/status", serviceClients.OrderService.ProxyRequest)
	}

	// Public storefront routes; visitors need no account
	storefront := router.Group("/storefront")
	{
		storefront.GET("/settings", serviceClients.StorefrontService.ProxyRequest)
		storefront.GET("/products", serviceClients.StorefrontService.ProxyRequest)
		storefront.GET("/categories", serviceClients.StorefrontService.ProxyRequest)
		storefront.GET("/cart", serviceClients.StorefrontService.ProxyRequest)
		storefront.POST("/cart/items", serviceClients.StorefrontService.ProxyRequest)
		storefront.DELETE("/cart/items/:id", serviceClients.StorefrontService.ProxyRequest)
		storefront.POST("/checkout", serviceClients.StorefrontService.ProxyRequest)
	}

	// Start server
	port := os.Getenv("API_GATEWAY_PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("API Gateway starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start API Gateway:", err)
	}
}
