package main

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefoundry/go-storefront-platform/shared/models"
)

func setupNotifierTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.FailedNotification{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestStoreFailedNotification_ParksPendingRow(t *testing.T) {
	db := setupNotifierTestDB(t)
	consumer := &OrderEventConsumer{db: db}

	event := OrderEvent{
		ID:          uuid.NewString(),
		TenantID:    "merchant-a",
		OrderID:     uuid.New(),
		EventType:   "order_placed",
		TotalAmount: 250,
		Timestamp:   time.Now(),
	}

	err := consumer.storeFailedNotification(event, errors.New("seller endpoint returned status 503"))
	assert.NoError(t, err)

	var failed models.FailedNotification
	assert.NoError(t, db.First(&failed, "original_event_id = ?", event.ID).Error)
	assert.Equal(t, "merchant-a", failed.TenantID)
	assert.Equal(t, event.OrderID, failed.OrderID)
	assert.Equal(t, models.NotificationPending, failed.Status)
	assert.Equal(t, 0, failed.RetryCount)
	assert.Contains(t, failed.ErrorMessage, "503")
	assert.Contains(t, failed.Payload, event.ID)
	assert.NotNil(t, failed.NextRetryAt)
	assert.True(t, failed.NextRetryAt.After(time.Now()))
}
