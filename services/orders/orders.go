package main

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// UpdateStatusRequest represents the order status update request
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// listOrders returns the selling tenant's orders, newest first. Orders
// belonging to any other tenant never appear, whatever the caller's role.
func listOrders(db *gorm.DB, tenantID string) ([]models.Order, error) {
	var orders []models.Order
	err := db.Where("selling_tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// getOrder fetches one order after verifying the caller owns it.
func getOrder(db *gorm.DB, tenantID string, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := db.Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("Order not found")
	}
	if err != nil {
		return nil, err
	}
	if order.SellingTenantID != tenantID {
		return nil, utils.NewForbiddenError("Order belongs to another tenant")
	}
	return &order, nil
}

// updateOrderStatus moves an order to any status in the closed status set.
// There is no pipeline: Completed back to New is as legal as New to
// Shipped. A failed ownership check leaves the stored status untouched.
func updateOrderStatus(db *gorm.DB, tenantID string, orderID uuid.UUID, rawStatus string) (*models.Order, error) {
	status, err := models.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, utils.NewValidationError("Unknown order status")
	}

	order, err := getOrder(db, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := db.Model(order).Update("status", status).Error; err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}
