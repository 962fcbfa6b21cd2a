package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefoundry/go-storefront-platform/shared/models"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Settings{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestGetSettings_SynthesizesDefaults(t *testing.T) {
	db := setupSettingsTestDB(t)

	settings, err := getSettings(db, "shop-1")
	assert.NoError(t, err)
	assert.Equal(t, "My Shop", settings.BizName)
	assert.Equal(t, "#2563eb", settings.PrimaryColor)
	assert.Empty(t, settings.OwnerPhone)
	assert.Empty(t, settings.LogoURL)

	// Defaults are served, never persisted.
	var count int64
	db.Model(&models.Settings{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPutSettings_RoundTripsExactly(t *testing.T) {
	db := setupSettingsTestDB(t)

	saved := models.Settings{
		TenantID:     "shop-1",
		BizName:      "Karachi Krafts",
		PrimaryColor: "#aa2233",
		OwnerPhone:   "+923001234567",
		LogoURL:      "https://cdn.example.com/logo.png",
		HeroText:     "Handmade, always",
		Vision:       "Craft for everyone",
		Contact:      "Mon-Fri 9-5",
		UpdatedAt:    time.Now(),
	}
	assert.NoError(t, putSettings(db, saved))

	got, err := getSettings(db, "shop-1")
	assert.NoError(t, err)
	assert.Equal(t, saved.BizName, got.BizName)
	assert.Equal(t, saved.PrimaryColor, got.PrimaryColor)
	assert.Equal(t, saved.OwnerPhone, got.OwnerPhone)
	assert.Equal(t, saved.LogoURL, got.LogoURL)
	assert.Equal(t, saved.HeroText, got.HeroText)
	assert.Equal(t, saved.Vision, got.Vision)
	assert.Equal(t, saved.Contact, got.Contact)
}

func TestPutSettings_ReplacesWholesale(t *testing.T) {
	db := setupSettingsTestDB(t)

	assert.NoError(t, putSettings(db, models.Settings{
		TenantID:   "shop-1",
		BizName:    "First Name",
		OwnerPhone: "+92111",
		HeroText:   "Old hero",
	}))

	// A second save with fewer fields must not merge the old values back.
	assert.NoError(t, putSettings(db, models.Settings{
		TenantID: "shop-1",
		BizName:  "Second Name",
	}))

	got, err := getSettings(db, "shop-1")
	assert.NoError(t, err)
	assert.Equal(t, "Second Name", got.BizName)
	assert.Empty(t, got.OwnerPhone)
	assert.Empty(t, got.HeroText)
}

func TestSettings_ScopedPerTenant(t *testing.T) {
	db := setupSettingsTestDB(t)

	assert.NoError(t, putSettings(db, models.Settings{TenantID: "shop-1", BizName: "Shop One"}))
	assert.NoError(t, putSettings(db, models.Settings{TenantID: "shop-2", BizName: "Shop Two"}))

	one, _ := getSettings(db, "shop-1")
	two, _ := getSettings(db, "shop-2")
	assert.Equal(t, "Shop One", one.BizName)
	assert.Equal(t, "Shop Two", two.BizName)
}
