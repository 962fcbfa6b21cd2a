package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

func mustPublish(t *testing.T, db *gorm.DB, supplierID, parentID string, req PublishRequest) *models.SourcedCatalogItem {
	item, err := publishSourcedItem(db, supplierID, parentID, req)
	if err != nil {
		t.Fatalf("failed to publish sourced item: %v", err)
	}
	return item
}

func TestPublishSourcedItem_DefaultsToOwnAgencyScope(t *testing.T) {
	db := setupCatalogTestDB(t)

	item := mustPublish(t, db, "supplier-1", "agency-1", PublishRequest{
		Title:         "Wholesale Mug",
		WholesaleCost: 4,
	})
	assert.Equal(t, "agency-1", item.AgencyScopeID)
	assert.Equal(t, "supplier-1", item.SupplierTenantID)
}

func TestPublishSourcedItem_ForeignScopeForbidden(t *testing.T) {
	db := setupCatalogTestDB(t)

	_, err := publishSourcedItem(db, "supplier-1", "agency-1", PublishRequest{
		Title:         "Wholesale Mug",
		WholesaleCost: 4,
		AgencyScopeID: "agency-2",
	})
	var forbiddenErr *utils.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
}

func TestPublishSourcedItem_Validation(t *testing.T) {
	db := setupCatalogTestDB(t)

	cases := []struct {
		name string
		req  PublishRequest
	}{
		{"blank title", PublishRequest{Title: " ", WholesaleCost: 4}},
		{"zero cost", PublishRequest{Title: "Mug", WholesaleCost: 0}},
		{"too many images", PublishRequest{
			Title:         "Mug",
			WholesaleCost: 4,
			Images:        []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := publishSourcedItem(db, "supplier-1", "agency-1", tc.req)
			var validationErr *utils.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestListSourcedForMerchant_ScopeIsolation(t *testing.T) {
	db := setupCatalogTestDB(t)

	mustPublish(t, db, "supplier-1", "agency-1", PublishRequest{Title: "Mug A", WholesaleCost: 4})
	mustPublish(t, db, "supplier-1", "agency-1", PublishRequest{Title: "Mug B", WholesaleCost: 5})
	mustPublish(t, db, "supplier-2", "agency-2", PublishRequest{Title: "Bowl", WholesaleCost: 3})

	// Merchants under different agencies see disjoint sets.
	itemsOne, err := listSourcedForMerchant(db, "agency-1")
	assert.NoError(t, err)
	assert.Len(t, itemsOne, 2)
	for _, item := range itemsOne {
		assert.Equal(t, "agency-1", item.AgencyScopeID)
	}

	itemsTwo, err := listSourcedForMerchant(db, "agency-2")
	assert.NoError(t, err)
	assert.Len(t, itemsTwo, 1)
	assert.Equal(t, "Bowl", itemsTwo[0].Title)
}

func TestImportSourcedItem_MintsIndependentCopy(t *testing.T) {
	db := setupCatalogTestDB(t)

	source := mustPublish(t, db, "supplier-1", "agency-1", PublishRequest{
		Title:         "Wholesale Mug",
		WholesaleCost: 4,
		Images:        []string{"mug.jpg"},
		Description:   "A mug",
	})

	imported, err := importSourcedItem(db, "merchant-1", "agency-1", source.ID, 15)
	assert.NoError(t, err)

	assert.NotEqual(t, source.ID, imported.ID)
	assert.Equal(t, "merchant-1", imported.OwnerTenantID)
	assert.Equal(t, 15.0, imported.Price)
	assert.Equal(t, source.Title, imported.Title)
	assert.NotNil(t, imported.SourceItemID)
	assert.Equal(t, source.ID, *imported.SourceItemID)
	assert.Equal(t, "supplier-1", imported.SourceTenantID)

	// The supplier's record is untouched by the import.
	var stored models.SourcedCatalogItem
	assert.NoError(t, db.First(&stored, "id = ?", source.ID).Error)
	assert.Equal(t, source.Title, stored.Title)
	assert.Equal(t, source.WholesaleCost, stored.WholesaleCost)

	// The copy shows up in the merchant's own catalog.
	items, err := listCatalog(db, "merchant-1")
	assert.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestImportSourcedItem_RepeatedImportsAreIndependent(t *testing.T) {
	db := setupCatalogTestDB(t)

	source := mustPublish(t, db, "supplier-1", "agency-1", PublishRequest{
		Title:         "Wholesale Mug",
		WholesaleCost: 4,
	})

	first, err := importSourcedItem(db, "merchant-1", "agency-1", source.ID, 12)
	assert.NoError(t, err)
	second, err := importSourcedItem(db, "merchant-2", "agency-1", source.ID, 20)
	assert.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 12.0, first.Price)
	assert.Equal(t, 20.0, second.Price)
}

func TestImportSourcedItem_CrossAgencyForbidden(t *testing.T) {
	db := setupCatalogTestDB(t)

	source := mustPublish(t, db, "supplier-1", "agency-1", PublishRequest{
		Title:         "Wholesale Mug",
		WholesaleCost: 4,
	})

	_, err := importSourcedItem(db, "merchant-x", "agency-2", source.ID, 15)
	var forbiddenErr *utils.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	items, listErr := listCatalog(db, "merchant-x")
	assert.NoError(t, listErr)
	assert.Empty(t, items)
}

func TestImportSourcedItem_UnknownSource(t *testing.T) {
	db := setupCatalogTestDB(t)

	_, err := importSourcedItem(db, "merchant-1", "agency-1", uuid.New(), 15)
	var notFoundErr *utils.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestImportSourcedItem_PriceValidation(t *testing.T) {
	db := setupCatalogTestDB(t)

	source := mustPublish(t, db, "supplier-1", "agency-1", PublishRequest{
		Title:         "Wholesale Mug",
		WholesaleCost: 4,
	})

	_, err := importSourcedItem(db, "merchant-1", "agency-1", source.ID, 0)
	var validationErr *utils.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
