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

// CreateItemRequest represents the create catalog item request
type CreateItemRequest struct {
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Stock       *int     `json:"stock,omitempty"`
	Images      []string `json:"images,omitempty"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Badge       string   `json:"badge,omitempty"`
	VideoURL    string   `json:"video_url,omitempty"`
}

// listCatalog returns the tenant's own items, newest first. The owner
// filter is the isolation mechanism: no other tenant's item can ever
// appear here.
func listCatalog(db *gorm.DB, tenantID string) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := db.Where("owner_tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// createCatalogItem validates and records a new item under the tenant's
// scope. Items are immutable once created; corrections are a delete plus
// a re-add.
func createCatalogItem(db *gorm.DB, tenantID string, req CreateItemRequest) (*models.CatalogItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, utils.NewValidationError("Title is required")
	}
	if req.Price <= 0 {
		return nil, utils.NewValidationError("Price must be a positive number")
	}
	if req.Stock != nil && *req.Stock < 0 {
		return nil, utils.NewValidationError("Stock cannot be negative")
	}
	if len(req.Images) > models.MaxCatalogImages {
		return nil, utils.NewValidationError("At most 3 images per item")
	}

	item := models.CatalogItem{
		ID:            uuid.New(),
		OwnerTenantID: tenantID,
		Title:         req.Title,
		Price:         req.Price,
		Stock:         req.Stock,
		Images:        req.Images,
		Category:      req.Category,
		Description:   req.Description,
		Badge:         req.Badge,
		VideoURL:      req.VideoURL,
		CreatedAt:     time.Now(),
	}

	if err := db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// deleteCatalogItem removes an item after verifying ownership. A
// cross-tenant delete attempt is an explicit failure, never a silent
// no-op.
func deleteCatalogItem(db *gorm.DB, tenantID string, itemID uuid.UUID) error {
	var item models.CatalogItem
	err := db.Where("id = ?", itemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError("Catalog item not found")
	}
	if err != nil {
		return err
	}

	if item.OwnerTenantID != tenantID {
		return utils.NewForbiddenError("Catalog item belongs to another tenant")
	}

	return db.Delete(&item).Error
}
