package main

import (
	"log"
	"os"

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

	// Initialize database for the failed-notification queue
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.MigrateAll(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Kafka consumer
	consumer, err := NewOrderEventConsumer(os.Getenv("KAFKA_BROKER"), db)
	if err != nil {
		log.Fatal("Failed to initialize Kafka consumer:", err)
	}
	defer consumer.Close()

	// Initialize seller notification client
	notifyClient := NewSellerNotifyClient(os.Getenv("SELLER_NOTIFY_ENDPOINT"))

	// Start consuming order events
	go consumer.ConsumeOrderEvents(notifyClient)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Notifier service is healthy", nil)
	})

	// Delivery status for monitoring
	router.GET("/notifier/health", func(c *gin.Context) {
		utils.OKResponse(c, "Notifier status", notifyClient.GetStatus())
	})

	// Start server
	port := os.Getenv("NOTIFIER_SERVICE_PORT")
	if port == "" {
		port = "8006"
	}

	logrus.Infof("Notifier service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start notifier service:", err)
	}
}
