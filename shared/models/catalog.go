package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxCatalogImages caps the image gallery per item.
const MaxCatalogImages = 3

// CatalogItem is a product owned by exactly one tenant. Items are never
// edited in place: re-adding is a new record, and CreatedAt is the only
// sort key (newest first).
type CatalogItem struct {
	ID            uuid.UUID                     `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerTenantID string                        `json:"owner_tenant_id" gorm:"type:varchar(255);not null;index"`
	Title         string                        `json:"title" gorm:"type:varchar(255);not null"`
	Price         float64                       `json:"price" gorm:"not null"`
	Stock         *int                          `json:"stock,omitempty"`
	Images        datatypes.JSONSlice[string]   `json:"images"`
	Category      string                        `json:"category" gorm:"type:varchar(100);index"`
	Description   string                        `json:"description" gorm:"type:text"`
	Badge         string                        `json:"badge" gorm:"type:varchar(50)"`
	VideoURL      string                        `json:"video_url" gorm:"type:varchar(512)"`

	// Provenance, set only when the item was imported from a sourced item.
	SourceItemID   *uuid.UUID `json:"source_item_id,omitempty" gorm:"type:uuid"`
	SourceTenantID string     `json:"source_tenant_id,omitempty" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the table name for the CatalogItem model
func (CatalogItem) TableName() string {
	return "catalog_items"
}

// Visible reports whether the item is shown to storefront visitors.
// A nil stock means a legacy/unconstrained item that is always shown.
func (ci *CatalogItem) Visible() bool {
	return ci.Stock == nil || *ci.Stock > 0
}

// SourcedCatalogItem is published by a supplier into its agency's scope.
// Only merchants whose parent is that agency may see or import it. The row
// itself is read-only after publication: imports copy, never consume.
type SourcedCatalogItem struct {
	ID               uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	SupplierTenantID string                      `json:"supplier_tenant_id" gorm:"type:varchar(255);not null;index"`
	AgencyScopeID    string                      `json:"agency_scope_id" gorm:"type:varchar(255);not null;index"`
	Title            string                      `json:"title" gorm:"type:varchar(255);not null"`
	WholesaleCost    float64                     `json:"wholesale_cost" gorm:"not null"`
	Images           datatypes.JSONSlice[string] `json:"images"`
	Description      string                      `json:"description" gorm:"type:text"`
	CreatedAt        time.Time                   `json:"created_at" gorm:"index"`
}

// TableName returns the table name for the SourcedCatalogItem model
func (SourcedCatalogItem) TableName() string {
	return "sourced_catalog_items"
}
