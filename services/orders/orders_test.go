package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, sellingTenantID string, createdAt time.Time) *models.Order {
	lineItems := []models.OrderLineItem{
		{ItemID: uuid.New(), Title: "Mug", UnitPrice: 12, Quantity: 2},
	}
	order := models.Order{
		ID:              uuid.New(),
		SellingTenantID: sellingTenantID,
		CustomerName:    "Amina",
		CustomerPhone:   "+15550001",
		LineItems:       lineItems,
		TotalAmount:     models.ComputeTotal(lineItems),
		Status:          models.OrderStatusNew,
		CreatedAt:       createdAt,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return &order
}

func TestListOrders_ScopedAndNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)

	now := time.Now()
	older := seedOrder(t, db, "merchant-a", now.Add(-time.Hour))
	newer := seedOrder(t, db, "merchant-a", now)
	seedOrder(t, db, "merchant-b", now)

	orders, err := listOrders(db, "merchant-a")
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	db := setupOrdersTestDB(t)

	order := seedOrder(t, db, "merchant-a", time.Now())

	fetched, err := getOrder(db, "merchant-a", order.ID)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)

	_, err = getOrder(db, "merchant-b", order.ID)
	var forbiddenErr *utils.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	_, err = getOrder(db, "merchant-a", uuid.New())
	var notFoundErr *utils.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestUpdateOrderStatus_AnyToAny(t *testing.T) {
	db := setupOrdersTestDB(t)

	order := seedOrder(t, db, "merchant-a", time.Now())

	// No pipeline: every transition in the closed set is legal, including
	// moving backwards out of Completed.
	for _, status := range []string{"Shipped", "Completed", "New", "Cancelled"} {
		updated, err := updateOrderStatus(db, "merchant-a", order.ID, status)
		assert.NoError(t, err)
		assert.Equal(t, models.OrderStatus(status), updated.Status)

		var stored models.Order
		assert.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
		assert.Equal(t, models.OrderStatus(status), stored.Status)
	}
}

func TestUpdateOrderStatus_UnknownStatusRejected(t *testing.T) {
	db := setupOrdersTestDB(t)

	order := seedOrder(t, db, "merchant-a", time.Now())

	_, err := updateOrderStatus(db, "merchant-a", order.ID, "Delivered")
	var validationErr *utils.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	var stored models.Order
	assert.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusNew, stored.Status)
}

func TestUpdateOrderStatus_CrossTenantLeavesStatusUntouched(t *testing.T) {
	db := setupOrdersTestDB(t)

	order := seedOrder(t, db, "merchant-a", time.Now())

	_, err := updateOrderStatus(db, "merchant-b", order.ID, "Shipped")
	var forbiddenErr *utils.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	var stored models.Order
	assert.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusNew, stored.Status)
}
