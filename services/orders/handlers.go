package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/middleware"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// handleListOrders lists the caller's own orders, newest first
func handleListOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		orders, err := listOrders(db, tenantID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch orders")
			return
		}

		utils.OKResponse(c, "Orders retrieved successfully", orders)
	}
}

// handleGetOrder fetches one of the caller's own orders
func handleGetOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid order id")
			return
		}

		order, err := getOrder(db, tenantID, orderID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.OKResponse(c, "Order retrieved successfully", order)
	}
}

// handleUpdateOrderStatus moves one of the caller's orders to a new status
func handleUpdateOrderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.BadRequestResponse(c, "Invalid order id")
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		order, err := updateOrderStatus(db, tenantID, orderID, req.Status)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.OKResponse(c, "Order status updated successfully", order)
	}
}
