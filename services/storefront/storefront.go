package main

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/storefoundry/go-storefront-platform/shared/models"
)

// getStoreSettings returns the storefront's persisted settings, or the
// synthesized defaults for a tenant that has never saved any. Defaults are
// never written back; the settings table only ever holds explicit saves.
func getStoreSettings(db *gorm.DB, storeID string) (models.Settings, error) {
	var settings models.Settings
	err := db.Where("tenant_id = ?", storeID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(storeID), nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// listVisibleProducts returns the storefront's purchasable items, newest
// first. An item with untracked stock (nil) is always visible; a tracked
// item is visible only while stock is above zero. The q filter is a
// case-insensitive title substring match and category is an exact match,
// both applied as a linear scan over the visible set.
func listVisibleProducts(db *gorm.DB, storeID, q, category string) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := db.Where("owner_tenant_id = ?", storeID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	q = strings.ToLower(strings.TrimSpace(q))
	visible := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if !item.Visible() {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(item.Title), q) {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		visible = append(visible, item)
	}
	return visible, nil
}

// listCategories returns the distinct categories across the storefront's
// visible items, sorted for a stable navigation menu.
func listCategories(db *gorm.DB, storeID string) ([]string, error) {
	items, err := listVisibleProducts(db, storeID, "", "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		categories = append(categories, item.Category)
	}
	sort.Strings(categories)
	return categories, nil
}
