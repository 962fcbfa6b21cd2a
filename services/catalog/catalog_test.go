package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.CatalogItem{}, &models.SourcedCatalogItem{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func mustCreateItem(t *testing.T, db *gorm.DB, tenantID string, req CreateItemRequest) *models.CatalogItem {
	item, err := createCatalogItem(db, tenantID, req)
	if err != nil {
		t.Fatalf("failed to create catalog item: %v", err)
	}
	return item
}

func TestListCatalog_ScopedToOwner(t *testing.T) {
	db := setupCatalogTestDB(t)

	mustCreateItem(t, db, "merchant-a", CreateItemRequest{Title: "Mug", Price: 12})
	mustCreateItem(t, db, "merchant-a", CreateItemRequest{Title: "Plate", Price: 18})
	mustCreateItem(t, db, "merchant-b", CreateItemRequest{Title: "Bowl", Price: 9})

	itemsA, err := listCatalog(db, "merchant-a")
	assert.NoError(t, err)
	assert.Len(t, itemsA, 2)
	for _, item := range itemsA {
		assert.Equal(t, "merchant-a", item.OwnerTenantID)
	}

	itemsB, err := listCatalog(db, "merchant-b")
	assert.NoError(t, err)
	assert.Len(t, itemsB, 1)
	assert.Equal(t, "Bowl", itemsB[0].Title)

	itemsC, err := listCatalog(db, "merchant-c")
	assert.NoError(t, err)
	assert.Empty(t, itemsC)
}

func TestCreateCatalogItem_Validation(t *testing.T) {
	db := setupCatalogTestDB(t)

	negative := -1
	cases := []struct {
		name string
		req  CreateItemRequest
	}{
		{"blank title", CreateItemRequest{Title: "   ", Price: 10}},
		{"zero price", CreateItemRequest{Title: "Mug", Price: 0}},
		{"negative price", CreateItemRequest{Title: "Mug", Price: -5}},
		{"negative stock", CreateItemRequest{Title: "Mug", Price: 10, Stock: &negative}},
		{"too many images", CreateItemRequest{
			Title:  "Mug",
			Price:  10,
			Images: []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := createCatalogItem(db, "merchant-a", tc.req)
			var validationErr *utils.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	items, err := listCatalog(db, "merchant-a")
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateCatalogItem_UntrackedStockStaysNil(t *testing.T) {
	db := setupCatalogTestDB(t)

	item := mustCreateItem(t, db, "merchant-a", CreateItemRequest{Title: "Mug", Price: 12})
	assert.Nil(t, item.Stock)
	assert.True(t, item.Visible())

	var stored models.CatalogItem
	assert.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Nil(t, stored.Stock)
}

func TestDeleteCatalogItem_OwnerOnly(t *testing.T) {
	db := setupCatalogTestDB(t)

	item := mustCreateItem(t, db, "merchant-a", CreateItemRequest{Title: "Mug", Price: 12})

	err := deleteCatalogItem(db, "merchant-b", item.ID)
	var forbiddenErr *utils.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	// The cross-tenant attempt must not have removed the item.
	items, err := listCatalog(db, "merchant-a")
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	assert.NoError(t, deleteCatalogItem(db, "merchant-a", item.ID))
	items, err = listCatalog(db, "merchant-a")
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteCatalogItem_UnknownID(t *testing.T) {
	db := setupCatalogTestDB(t)

	err := deleteCatalogItem(db, "merchant-a", uuid.New())
	var notFoundErr *utils.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
