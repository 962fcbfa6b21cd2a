package models

import (
	"time"

	"github.com/google/uuid"
)

// Failed-notification statuses.
const (
	NotificationPending   = "pending"
	NotificationResolved  = "resolved"
	NotificationAbandoned = "abandoned"
)

// FailedNotification parks an order event whose delivery to the seller
// notification endpoint failed, so the retry consumer can replay it.
type FailedNotification struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OriginalEventID string     `json:"original_event_id" gorm:"type:varchar(64);not null"`
	TenantID        string     `json:"tenant_id" gorm:"type:varchar(255);not null;index"`
	OrderID         uuid.UUID  `json:"order_id" gorm:"type:uuid;not null"`
	EventType       string     `json:"event_type" gorm:"type:varchar(50);not null"`
	Payload         string     `json:"payload" gorm:"type:text"`
	ErrorMessage    string     `json:"error_message" gorm:"type:text"`
	RetryCount      int        `json:"retry_count" gorm:"default:0"`
	Status          string     `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	NextRetryAt     *time.Time `json:"next_retry_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

// TableName returns the table name for the FailedNotification model
func (FailedNotification) TableName() string {
	return "failed_notifications"
}
