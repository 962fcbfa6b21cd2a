package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// CheckoutRequest represents the customer checkout form
type CheckoutRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address,omitempty"`
}

// createOrderFromCart turns a staged cart into a persisted order owned by
// the selling tenant. The total is always recomputed from the snapshotted
// line items; nothing the client sends can influence it.
func createOrderFromCart(db *gorm.DB, storeID string, req CheckoutRequest, cart *models.Cart) (*models.Order, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, utils.NewValidationError("Customer name is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, utils.NewValidationError("Customer phone is required")
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, utils.NewValidationError("Cart is empty")
	}

	lineItems := cart.LineItems()
	order := models.Order{
		ID:              uuid.New(),
		SellingTenantID: storeID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		LineItems:       lineItems,
		TotalAmount:     models.ComputeTotal(lineItems),
		Status:          models.OrderStatusNew,
		CreatedAt:       time.Now(),
	}

	if err := db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// buildWhatsAppMessage renders the order summary the customer hands to the
// seller over WhatsApp.
func buildWhatsAppMessage(order *models.Order) string {
	var b strings.Builder
	b.WriteString("*New Order*\n")
	b.WriteString(fmt.Sprintf("Name: %s\n", order.CustomerName))
	b.WriteString(fmt.Sprintf("Phone: %s\n", order.CustomerPhone))
	if order.CustomerAddress != "" {
		b.WriteString(fmt.Sprintf("Address: %s\n", order.CustomerAddress))
	}
	for _, li := range order.LineItems {
		b.WriteString(fmt.Sprintf("- %s (x%d) = %.2f\n", li.Title, li.Quantity, li.Subtotal()))
	}
	b.WriteString(fmt.Sprintf("Total: %.2f", order.TotalAmount))
	return b.String()
}

// buildWhatsAppURL builds the click-to-chat link that hands the order off
// to the seller's phone. The handoff is one-way; no delivery status ever
// comes back through it. Digits only in the phone segment, per wa.me rules.
func buildWhatsAppURL(ownerPhone string, order *models.Order) string {
	phone := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, ownerPhone)

	return fmt.Sprintf("https://wa.me/%s?text=%s", phone, url.QueryEscape(buildWhatsAppMessage(order)))
}
