package main

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// PublishRequest represents a supplier publishing into its agency scope
type PublishRequest struct {
	Title         string   `json:"title"`
	WholesaleCost float64  `json:"wholesale_cost"`
	Images        []string `json:"images,omitempty"`
	Description   string   `json:"description,omitempty"`
	AgencyScopeID string   `json:"agency_scope_id,omitempty"`
}

// ImportRequest represents a merchant importing a sourced item
type ImportRequest struct {
	SellingPrice float64 `json:"selling_price"`
}

// publishSourcedItem records a supplier's item in its own agency's scope.
// A supplier cannot publish into an agency it does not belong to; an
// unaffiliated supplier publishes into the platform scope.
func publishSourcedItem(db *gorm.DB, supplierTenantID, supplierParentID string, req PublishRequest) (*models.SourcedCatalogItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, utils.NewValidationError("Title is required")
	}
	if req.WholesaleCost <= 0 {
		return nil, utils.NewValidationError("Wholesale cost must be a positive number")
	}
	if len(req.Images) > models.MaxCatalogImages {
		return nil, utils.NewValidationError("At most 3 images per item")
	}

	scope := req.AgencyScopeID
	if scope == "" {
		scope = supplierParentID
	}
	if scope != supplierParentID {
		return nil, utils.NewForbiddenError("Suppliers may only publish into their own agency scope")
	}

	item := models.SourcedCatalogItem{
		ID:               uuid.New(),
		SupplierTenantID: supplierTenantID,
		AgencyScopeID:    scope,
		Title:            req.Title,
		WholesaleCost:    req.WholesaleCost,
		Images:           req.Images,
		Description:      req.Description,
		CreatedAt:        time.Now(),
	}

	if err := db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// listSourcedForMerchant returns the sourced items visible to a merchant:
// exactly those published into the merchant's parent agency scope.
func listSourcedForMerchant(db *gorm.DB, merchantParentID string) ([]models.SourcedCatalogItem, error) {
	var items []models.SourcedCatalogItem
	err := db.Where("agency_scope_id = ?", merchantParentID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// importSourcedItem copies a sourced item into the merchant's own catalog
// as a brand-new, independently owned record. The merchant sets its own
// selling price; there is no margin rule against the wholesale cost. The
// source row is read-only and may be imported by any number of merchants.
func importSourcedItem(db *gorm.DB, merchantTenantID, merchantParentID string, sourcedItemID uuid.UUID, sellingPrice float64) (*models.CatalogItem, error) {
	if sellingPrice <= 0 {
		return nil, utils.NewValidationError("Selling price must be a positive number")
	}

	var source models.SourcedCatalogItem
	err := db.Where("id = ?", sourcedItemID).First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("Sourced item not found")
	}
	if err != nil {
		return nil, err
	}

	if source.AgencyScopeID != merchantParentID {
		return nil, utils.NewForbiddenError("Sourced item belongs to another agency scope")
	}

	item := models.CatalogItem{
		ID:             uuid.New(),
		OwnerTenantID:  merchantTenantID,
		Title:          source.Title,
		Price:          sellingPrice,
		Images:         source.Images,
		Description:    source.Description,
		SourceItemID:   &source.ID,
		SourceTenantID: source.SupplierTenantID,
		CreatedAt:      time.Now(),
	}

	if err := db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}
