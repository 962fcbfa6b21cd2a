package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/middleware"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// handleListCatalog lists the caller's own catalog, newest first
func handleListCatalog(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		items, err := listCatalog(db, tenantID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch catalog")
			return
		}

		utils.OKResponse(c, "Catalog retrieved successfully", items)
	}
}

// handleCreateItem adds an item to the caller's own catalog
func handleCreateItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		var req CreateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		item, err := createCatalogItem(db, tenantID, req)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.CreatedResponse(c, "Catalog item created successfully", item)
	}
}

// handleDeleteItem deletes one of the caller's own items
func handleDeleteItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		itemID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid item id")
			return
		}

		if err := deleteCatalogItem(db, tenantID, itemID); err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.OKResponse(c, "Catalog item deleted successfully", nil)
	}
}

// handlePublishSourcedItem lets a supplier publish into its agency scope
func handlePublishSourcedItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, parentTenantID := middleware.GetUserFromContext(c)

		var req PublishRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		item, err := publishSourcedItem(db, tenantID, parentTenantID, req)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.CreatedResponse(c, "Sourced item published successfully", item)
	}
}

// handleListSourcedItems lists the sourced items in the merchant's scope
func handleListSourcedItems(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _, parentTenantID := middleware.GetUserFromContext(c)

		items, err := listSourcedForMerchant(db, parentTenantID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch sourced items")
			return
		}

		utils.OKResponse(c, "Sourced items retrieved successfully", items)
	}
}

// handleImportSourcedItem copies a sourced item into the merchant catalog
func handleImportSourcedItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, parentTenantID := middleware.GetUserFromContext(c)

		sourcedItemID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid sourced item id")
			return
		}

		var req ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		item, err := importSourcedItem(db, tenantID, parentTenantID, sourcedItemID, req.SellingPrice)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.CreatedResponse(c, "Sourced item imported successfully", item)
	}
}
