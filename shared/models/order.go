package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrderStatus is the flat status set for orders. Any status may move to
// any other status; there is no enforced pipeline and no terminal state.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "New"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// ParseOrderStatus validates a status string against the closed status set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusNew, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// OrderLineItem is a snapshot of one cart line at checkout time. Later
// catalog changes never alter historical orders.
type OrderLineItem struct {
	ItemID    uuid.UUID `json:"item_id"`
	Title     string    `json:"title"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
}

// Subtotal returns unit price times quantity for this line.
func (li OrderLineItem) Subtotal() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// Order is created only by an unauthenticated customer checkout, owned by
// the selling tenant, and never deleted.
type Order struct {
	ID              uuid.UUID                          `json:"id" gorm:"type:uuid;primaryKey"`
	SellingTenantID string                             `json:"selling_tenant_id" gorm:"type:varchar(255);not null;index"`
	CustomerName    string                             `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerPhone   string                             `json:"customer_phone" gorm:"type:varchar(50);not null"`
	CustomerAddress string                             `json:"customer_address" gorm:"type:text"`
	LineItems       datatypes.JSONSlice[OrderLineItem] `json:"line_items"`
	TotalAmount     float64                            `json:"total_amount" gorm:"not null"`
	Status          OrderStatus                        `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt       time.Time                          `json:"created_at" gorm:"index"`
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// ComputeTotal sums unit price times quantity over the line items. The
// stored TotalAmount is always this server-side computation, never a value
// supplied by the client.
func ComputeTotal(items []OrderLineItem) float64 {
	var total float64
	for _, li := range items {
		total += li.Subtotal()
	}
	return total
}
