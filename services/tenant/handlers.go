package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/middleware"
	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// SettingsRequest carries a full settings save. Saves replace the whole
// record; omitted fields are stored empty, not merged.
type SettingsRequest struct {
	BizName      string `json:"biz_name"`
	PrimaryColor string `json:"primary_color"`
	OwnerPhone   string `json:"owner_phone"`
	LogoURL      string `json:"logo_url"`
	HeroText     string `json:"hero_text"`
	Vision       string `json:"vision"`
	Contact      string `json:"contact"`
}

// getSettings returns the persisted settings for a tenant, or synthesized
// defaults when the tenant has never saved any. Defaults are not written
// back.
func getSettings(db *gorm.DB, tenantID string) (models.Settings, error) {
	var settings models.Settings
	err := db.Where("tenant_id = ?", tenantID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(tenantID), nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// putSettings replaces the tenant's settings record wholesale. Concurrent
// saves race last-write-wins; there is no conflict detection.
func putSettings(db *gorm.DB, settings models.Settings) error {
	return db.Save(&settings).Error
}

// settingsCacheKey namespaces the settings cache per tenant.
func settingsCacheKey(tenantID string) string {
	return "settings:" + tenantID
}

// handleGetSettings returns the tenant's own settings
func handleGetSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		if cached, err := utils.CacheGet(settingsCacheKey(tenantID)); err == nil {
			var settings models.Settings
			if err := json.Unmarshal([]byte(cached), &settings); err == nil {
				utils.OKResponse(c, "Settings retrieved successfully", settings)
				return
			}
		}

		settings, err := getSettings(db, tenantID)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch settings")
			return
		}

		if data, err := json.Marshal(settings); err == nil {
			_ = utils.CacheSet(settingsCacheKey(tenantID), string(data), 10*time.Minute)
		}

		utils.OKResponse(c, "Settings retrieved successfully", settings)
	}
}

// handlePutSettings saves the tenant's settings (full replace)
func handlePutSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		var req SettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		settings := models.Settings{
			TenantID:     tenantID,
			BizName:      req.BizName,
			PrimaryColor: req.PrimaryColor,
			OwnerPhone:   req.OwnerPhone,
			LogoURL:      req.LogoURL,
			HeroText:     req.HeroText,
			Vision:       req.Vision,
			Contact:      req.Contact,
			UpdatedAt:    time.Now(),
		}

		if err := putSettings(db, settings); err != nil {
			utils.InternalServerErrorResponse(c, "Failed to save settings")
			return
		}

		if err := utils.CacheDelete(settingsCacheKey(tenantID)); err != nil {
			logrus.WithField("tenant_id", tenantID).Debug("Settings cache invalidation skipped")
		}

		utils.OKResponse(c, "Settings saved successfully", settings)
	}
}

// handleGetMe resolves the caller's role and scope from its tenant record
func handleGetMe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		var tenant models.Tenant
		if err := db.Where("id = ?", tenantID).First(&tenant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Tenant not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch tenant")
			}
			return
		}

		utils.OKResponse(c, "Tenant resolved successfully", gin.H{
			"tenant":          tenant,
			"sells_directly":  tenant.SellsDirectly(),
			"manages_network": tenant.IsAgency(),
		})
	}
}

// handleListTenants lists every tenant on the platform (super admin only)
func handleListTenants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tenants []models.Tenant
		if err := db.Order("created_at DESC").Find(&tenants).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch tenants")
			return
		}
		utils.OKResponse(c, "Tenants retrieved successfully", tenants)
	}
}

// handleListMerchants lists the agency's downstream merchants
func handleListMerchants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		var merchants []models.Tenant
		err := db.Where("parent_tenant_id = ? AND role = ?", tenantID, models.RoleMerchant).
			Order("created_at DESC").
			Find(&merchants).Error
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch merchants")
			return
		}

		utils.OKResponse(c, "Merchants retrieved successfully", merchants)
	}
}

// handleReferralLink returns the agency's recruitment link. The ref query
// parameter is consumed once, at registration.
func handleReferralLink() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		baseURL := os.Getenv("REGISTRATION_BASE_URL")
		if baseURL == "" {
			baseURL = "https://storefoundry.app/register"
		}

		utils.OKResponse(c, "Referral link generated", gin.H{
			"url": fmt.Sprintf("%s?ref=%s", baseURL, tenantID),
		})
	}
}

// handleGetBilling computes the agency's current bill on demand
func handleGetBilling(db *gorm.DB, cfg BillingConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, _, _ := middleware.GetUserFromContext(c)

		var agency models.Tenant
		if err := db.Where("id = ?", tenantID).First(&agency).Error; err != nil {
			utils.NotFoundResponse(c, "Tenant not found")
			return
		}

		bill, err := ComputeBill(&agency, time.Now(), cfg)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.OKResponse(c, "Billing computed successfully", bill)
	}
}
