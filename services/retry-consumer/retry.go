package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/models"
)

const (
	maxRetries    = 5
	batchSize     = 100
	checkInterval = 30 * time.Second
	baseDelay     = 1 * time.Minute
	maxDelay      = 1 * time.Hour
)

// RetryConsumer replays parked order notifications against the seller
// endpoint until they deliver or run out of attempts.
type RetryConsumer struct {
	db         *gorm.DB
	endpoint   string
	httpClient *http.Client
}

// NewRetryConsumer creates a retry consumer over the shared database
func NewRetryConsumer(db *gorm.DB) *RetryConsumer {
	endpoint := os.Getenv("SELLER_NOTIFY_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}

	return &RetryConsumer{
		db:       db,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ProcessFailedNotifications polls for due pending rows and replays them.
func (rc *RetryConsumer) ProcessFailedNotifications() {
	logrus.Info("Starting retry consumer...")

	for {
		var failed []models.FailedNotification
		err := rc.db.Where("status = ? AND next_retry_at <= ?", models.NotificationPending, time.Now()).
			Order("created_at ASC").
			Limit(batchSize).
			Find(&failed).Error

		if err != nil {
			logrus.Errorf("Error fetching failed notifications: %v", err)
			time.Sleep(checkInterval)
			continue
		}

		if len(failed) == 0 {
			time.Sleep(checkInterval)
			continue
		}

		logrus.Infof("Replaying %d failed notifications", len(failed))

		for _, f := range failed {
			if err := rc.retryNotification(f); err != nil {
				logrus.Errorf("Failed to retry notification %s: %v", f.ID, err)
			}
		}

		time.Sleep(checkInterval)
	}
}

// retryNotification replays one parked notification.
func (rc *RetryConsumer) retryNotification(failed models.FailedNotification) error {
	if err := rc.sendToSeller(failed); err != nil {
		return rc.recordAttemptFailure(&failed, err)
	}
	return rc.markResolved(&failed)
}

// sendToSeller re-posts the original event payload to the seller endpoint.
func (rc *RetryConsumer) sendToSeller(failed models.FailedNotification) error {
	var event json.RawMessage = []byte(failed.Payload)

	payload := map[string]interface{}{
		"event_type": failed.EventType,
		"data":       event,
		"timestamp":  time.Now(),
		"retry":      true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	req, err := http.NewRequest("POST", rc.endpoint+"/notifications", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", failed.TenantID)
	req.Header.Set("X-Order-ID", failed.OrderID.String())

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send order notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("seller endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

// nextBackoffDelay doubles the delay per attempt, capped so a long outage
// never pushes retries out indefinitely.
func nextBackoffDelay(retryCount int) time.Duration {
	delay := baseDelay
	for i := 1; i < retryCount; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}

// recordAttemptFailure bumps the retry count, scheduling the next attempt
// or abandoning the row once the attempts are spent.
func (rc *RetryConsumer) recordAttemptFailure(failed *models.FailedNotification, attemptErr error) error {
	failed.RetryCount++
	failed.UpdatedAt = time.Now()

	if failed.RetryCount >= maxRetries {
		failed.Status = models.NotificationAbandoned
		failed.NextRetryAt = nil
		failed.ErrorMessage = fmt.Sprintf("Max retries reached: %s", attemptErr.Error())
	} else {
		nextRetryAt := time.Now().Add(nextBackoffDelay(failed.RetryCount))
		failed.NextRetryAt = &nextRetryAt
		failed.ErrorMessage = attemptErr.Error()
	}

	return rc.db.Save(failed).Error
}

// markResolved closes out a successfully replayed notification.
func (rc *RetryConsumer) markResolved(failed *models.FailedNotification) error {
	now := time.Now()
	failed.Status = models.NotificationResolved
	failed.UpdatedAt = now
	failed.ResolvedAt = &now

	return rc.db.Save(failed).Error
}

// RetryStats counts the queue by status.
type RetryStats struct {
	Pending   int64 `json:"pending"`
	Resolved  int64 `json:"resolved"`
	Abandoned int64 `json:"abandoned"`
}

// GetRetryStats returns queue counts by status plus the loop config.
func (rc *RetryConsumer) GetRetryStats() map[string]interface{} {
	var stats RetryStats

	rc.db.Model(&models.FailedNotification{}).Where("status = ?", models.NotificationPending).Count(&stats.Pending)
	rc.db.Model(&models.FailedNotification{}).Where("status = ?", models.NotificationResolved).Count(&stats.Resolved)
	rc.db.Model(&models.FailedNotification{}).Where("status = ?", models.NotificationAbandoned).Count(&stats.Abandoned)

	return map[string]interface{}{
		"retry_stats": stats,
		"config": map[string]interface{}{
			"max_retries":    maxRetries,
			"batch_size":     batchSize,
			"check_interval": checkInterval.String(),
		},
	}
}
