package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// AddCartItemRequest represents a visitor adding a catalog item to the cart
type AddCartItemRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

const sessionHeader = "X-Session-ID"

// requireStoreID reads the storefront address from the query string. Every
// public endpoint is addressed by ?store=<tenant id>.
func requireStoreID(c *gin.Context) (string, bool) {
	storeID := c.Query("store")
	if storeID == "" {
		utils.BadRequestResponse(c, "Missing store parameter")
		return "", false
	}
	return storeID, true
}

// resolveSessionID reads the visitor's session id, minting one for a first
// visit. The id is always echoed back so the client can persist it.
func resolveSessionID(c *gin.Context) string {
	sessionID := c.GetHeader(sessionHeader)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	c.Header(sessionHeader, sessionID)
	return sessionID
}

// handleGetStoreSettings serves the storefront's branding and contact info
func handleGetStoreSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := requireStoreID(c)
		if !ok {
			return
		}

		settings, err := getStoreSettings(db, storeID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch settings")
			return
		}

		utils.OKResponse(c, "Settings retrieved successfully", settings)
	}
}

// handleListProducts serves the storefront's visible items
func handleListProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := requireStoreID(c)
		if !ok {
			return
		}

		items, err := listVisibleProducts(db, storeID, c.Query("q"), c.Query("category"))
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch products")
			return
		}

		utils.OKResponse(c, "Products retrieved successfully", items)
	}
}

// handleListCategories serves the distinct categories of visible items
func handleListCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := requireStoreID(c)
		if !ok {
			return
		}

		categories, err := listCategories(db, storeID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch categories")
			return
		}

		utils.OKResponse(c, "Categories retrieved successfully", categories)
	}
}

// handleGetCart serves the visitor's staged cart for this storefront
func handleGetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := requireStoreID(c)
		if !ok {
			return
		}
		sessionID := resolveSessionID(c)

		cart, err := utils.GetCart(storeID, sessionID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch cart")
			return
		}

		utils.OKResponse(c, "Cart retrieved successfully", gin.H{
			"cart":           cart,
			"session_id":     sessionID,
			"total_amount":   cart.TotalAmount(),
			"total_quantity": cart.TotalQuantity(),
		})
	}
}

// handleAddCartItem stages a visible catalog item, snapshotting its title
// and price at add time
func handleAddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := requireStoreID(c)
		if !ok {
			return
		}
		sessionID := resolveSessionID(c)

		var req AddCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
		}

		var item models.CatalogItem
		err := db.Where("id = ? AND owner_tenant_id = ?", req.ItemID, storeID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "Product not found in this store")
			return
		}
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch product")
			return
		}
		if !item.Visible() {
			utils.NotFoundResponse(c, "Product is out of stock")
			return
		}

		cart, err := utils.GetCart(storeID, sessionID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch cart")
			return
		}

		cart.Add(models.CartItem{
			ItemID:    item.ID,
			Title:     item.Title,
			UnitPrice: item.Price,
			Quantity:  req.Quantity,
		})

		if err := utils.SaveCart(sessionID, cart); err != nil {
			utils.InternalServerErrorResponse(c, "Failed to save cart")
			return
		}

		utils.OKResponse(c, "Item added to cart", gin.H{
			"cart":       cart,
			"session_id": sessionID,
		})
	}
}

// handleRemoveCartItem drops one staged line from the cart
func handleRemoveCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := requireStoreID(c)
		if !ok {
			return
		}
		sessionID := resolveSessionID(c)

		itemID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid item id")
			return
		}

		cart, err := utils.GetCart(storeID, sessionID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch cart")
			return
		}

		cart.Remove(itemID)

		if err := utils.SaveCart(sessionID, cart); err != nil {
			utils.InternalServerErrorResponse(c, "Failed to save cart")
			return
		}

		utils.OKResponse(c, "Item removed from cart", gin.H{
			"cart":       cart,
			"session_id": sessionID,
		})
	}
}

// handleCheckout turns the staged cart into an order and hands the
// customer off to the seller's WhatsApp
func handleCheckout(db *gorm.DB, producer *OrderEventProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := requireStoreID(c)
		if !ok {
			return
		}
		sessionID := resolveSessionID(c)

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		cart, err := utils.GetCart(storeID, sessionID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch cart")
			return
		}

		order, err := createOrderFromCart(db, storeID, req, cart)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		// The cart served its staging purpose; a failed delete only means
		// a stale cart until its TTL runs out.
		if err := utils.DeleteCart(storeID, sessionID); err != nil {
			logrus.Warnf("Failed to clear cart after checkout: %v", err)
		}

		if producer != nil {
			if err := producer.SendOrderEvent(NewOrderPlacedEvent(order)); err != nil {
				logrus.Warnf("Failed to queue order event: %v", err)
			}
		}

		settings, err := getStoreSettings(db, storeID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch settings")
			return
		}

		utils.CreatedResponse(c, "Order placed successfully", gin.H{
			"order":        order,
			"whatsapp_url": buildWhatsAppURL(settings.OwnerPhone, order),
		})
	}
}
