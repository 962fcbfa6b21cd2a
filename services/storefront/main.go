package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/storefoundry/go-storefront-platform/shared/config"
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

	// Initialize Redis for visitor carts
	if err := utils.InitRedis(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize Kafka producer for order events
	producer, err := NewOrderEventProducer(os.Getenv("KAFKA_BROKER"))
	if err != nil {
		log.Fatal("Failed to initialize Kafka producer:", err)
	}

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Storefront service is healthy", nil)
	})

	// Public storefront API, addressed by ?store=<tenant id>. No auth:
	// visitors browse and check out without an account.
	storefront := router.Group("/storefront")
	{
		storefront.GET("/settings", handleGetStoreSettings(db))
		storefront.GET("/products", handleListProducts(db))
		storefront.GET("/categories", handleListCategories(db))

		storefront.GET("/cart", handleGetCart())
		storefront.POST("/cart/items", handleAddCartItem(db))
		storefront.DELETE("/cart/items/:id", handleRemoveCartItem())

		storefront.POST("/checkout", handleCheckout(db, producer))
	}

	// Flush queued order events on shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logrus.Info("Shutting down storefront service...")
		if err := producer.Close(); err != nil {
			logrus.Errorf("Failed to close Kafka producer: %v", err)
		}
		os.Exit(0)
	}()

	// Start server
	port := os.Getenv("STOREFRONT_SERVICE_PORT")
	if port == "" {
		port = "8005"
	}

	logrus.Infof("Storefront service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start storefront service:", err)
	}
}
