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

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.MigrateAll(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	retryConsumer := NewRetryConsumer(db)

	// Start retry loop in background
	go retryConsumer.ProcessFailedNotifications()

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Retry consumer is healthy", nil)
	})

	// Retry statistics endpoint
	router.GET("/stats", func(c *gin.Context) {
		utils.OKResponse(c, "Retry statistics", retryConsumer.GetRetryStats())
	})

	// Start server
	port := os.Getenv("RETRY_CONSUMER_PORT")
	if port == "" {
		port = "8007"
	}

	logrus.Infof("Retry consumer starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start retry consumer:", err)
	}
}
