package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/models"
)

// OrderEvent mirrors the message published at checkout.
type OrderEvent struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	OrderID     uuid.UUID `json:"order_id"`
	EventType   string    `json:"event_type"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrderEventConsumer reads order events and forwards them to the seller
// notification endpoint, parking failures for the retry consumer.
type OrderEventConsumer struct {
	reader *kafka.Reader
	db     *gorm.DB
}

// NewOrderEventConsumer creates a consumer in the notifier group
func NewOrderEventConsumer(broker string, db *gorm.DB) (*OrderEventConsumer, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          "order-events",
		GroupID:        "notifier-service",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &OrderEventConsumer{
		reader: reader,
		db:     db,
	}, nil
}

// ConsumeOrderEvents delivers events to the seller endpoint in a loop. A
// delivery failure never stalls the stream; the event is parked and the
// loop moves on.
func (oc *OrderEventConsumer) ConsumeOrderEvents(client *SellerNotifyClient) {
	logrus.Info("Starting order events consumer...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		msg, err := oc.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			// A timeout just means no messages are waiting.
			if err == context.DeadlineExceeded || err.Error() == "context deadline exceeded" {
				continue
			}
			logrus.Errorf("Error reading order message: %v", err)
			time.Sleep(1 * time.Second)
			continue
		}

		var event OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logrus.Errorf("Error unmarshaling order event: %v", err)
			continue
		}

		if err := client.SendOrderNotification(event); err != nil {
			logrus.Errorf("Error delivering order notification: %v", err)
			if dlqErr := oc.storeFailedNotification(event, err); dlqErr != nil {
				logrus.Errorf("Failed to park order notification: %v", dlqErr)
			}
		} else {
			logrus.Infof("Delivered order notification for tenant %s, order %s",
				event.TenantID, event.OrderID)
		}
	}
}

// storeFailedNotification parks an undeliverable event so the retry
// consumer can replay it later.
func (oc *OrderEventConsumer) storeFailedNotification(event OrderEvent, deliveryErr error) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	nextRetryAt := time.Now().Add(1 * time.Minute)
	failed := models.FailedNotification{
		ID:              uuid.New(),
		OriginalEventID: event.ID,
		TenantID:        event.TenantID,
		OrderID:         event.OrderID,
		EventType:       event.EventType,
		Payload:         string(payload),
		ErrorMessage:    deliveryErr.Error(),
		Status:          models.NotificationPending,
		NextRetryAt:     &nextRetryAt,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	return oc.db.Create(&failed).Error
}

// Close closes the Kafka consumer
func (oc *OrderEventConsumer) Close() error {
	if err := oc.reader.Close(); err != nil {
		return fmt.Errorf("failed to close order events reader: %w", err)
	}
	return nil
}
