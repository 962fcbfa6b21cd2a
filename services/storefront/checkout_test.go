package main

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

func stagedCart(storeID string) *models.Cart {
	cart := &models.Cart{StoreID: storeID}
	cart.Add(models.CartItem{ItemID: uuid.New(), Title: "Ceramic Mug", UnitPrice: 100, Quantity: 2})
	cart.Add(models.CartItem{ItemID: uuid.New(), Title: "Dinner Plate", UnitPrice: 50, Quantity: 1})
	return cart
}

func TestCreateOrderFromCart_TotalRecomputedServerSide(t *testing.T) {
	db := setupStorefrontTestDB(t)

	cart := stagedCart("store-1")
	order, err := createOrderFromCart(db, "store-1", CheckoutRequest{
		CustomerName:  "Amina",
		CustomerPhone: "+15550001",
	}, cart)
	assert.NoError(t, err)

	assert.Equal(t, 250.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Equal(t, "store-1", order.SellingTenantID)
	assert.Len(t, order.LineItems, 2)

	var stored models.Order
	assert.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, 250.0, stored.TotalAmount)
}

func TestCreateOrderFromCart_Validation(t *testing.T) {
	db := setupStorefrontTestDB(t)

	cases := []struct {
		name string
		req  CheckoutRequest
		cart *models.Cart
	}{
		{"missing name", CheckoutRequest{CustomerPhone: "+15550001"}, stagedCart("store-1")},
		{"missing phone", CheckoutRequest{CustomerName: "Amina"}, stagedCart("store-1")},
		{"empty cart", CheckoutRequest{CustomerName: "Amina", CustomerPhone: "+15550001"}, &models.Cart{StoreID: "store-1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := createOrderFromCart(db, "store-1", tc.req, tc.cart)
			var validationErr *utils.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	// No order row may exist after the failed attempts.
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestBuildWhatsAppMessage(t *testing.T) {
	order := &models.Order{
		CustomerName:    "Amina",
		CustomerPhone:   "+15550001",
		CustomerAddress: "12 Market St",
		LineItems: []models.OrderLineItem{
			{Title: "Ceramic Mug", UnitPrice: 100, Quantity: 2},
			{Title: "Dinner Plate", UnitPrice: 50, Quantity: 1},
		},
		TotalAmount: 250,
	}

	msg := buildWhatsAppMessage(order)
	assert.True(t, strings.HasPrefix(msg, "*New Order*\n"))
	assert.Contains(t, msg, "Name: Amina")
	assert.Contains(t, msg, "Address: 12 Market St")
	assert.Contains(t, msg, "- Ceramic Mug (x2) = 200.00")
	assert.Contains(t, msg, "- Dinner Plate (x1) = 50.00")
	assert.True(t, strings.HasSuffix(msg, "Total: 250.00"))
}

func TestBuildWhatsAppURL(t *testing.T) {
	order := &models.Order{
		CustomerName:  "Amina",
		CustomerPhone: "+15550001",
		LineItems: []models.OrderLineItem{
			{Title: "Ceramic Mug", UnitPrice: 100, Quantity: 2},
		},
		TotalAmount: 200,
	}

	raw := buildWhatsAppURL("+234 801 234 5678", order)
	assert.True(t, strings.HasPrefix(raw, "https://wa.me/2348012345678?text="))

	parsed, err := url.Parse(raw)
	assert.NoError(t, err)
	text := parsed.Query().Get("text")
	assert.True(t, strings.HasPrefix(text, "*New Order*"))
	assert.Contains(t, text, "Ceramic Mug")
}
