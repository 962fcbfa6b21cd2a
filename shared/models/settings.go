package models

import "time"

// Settings is the singleton branding/storefront-copy record for a tenant.
// Saves replace the whole row; there is no field-level merging, and
// concurrent saves race last-write-wins.
type Settings struct {
	TenantID     string    `json:"tenant_id" gorm:"type:varchar(255);primaryKey"`
	BizName      string    `json:"biz_name" gorm:"type:varchar(255)"`
	PrimaryColor string    `json:"primary_color" gorm:"type:varchar(20)"`
	OwnerPhone   string    `json:"owner_phone" gorm:"type:varchar(50)"`
	LogoURL      string    `json:"logo_url" gorm:"type:varchar(512)"`
	HeroText     string    `json:"hero_text" gorm:"type:text"`
	Vision       string    `json:"vision" gorm:"type:text"`
	Contact      string    `json:"contact" gorm:"type:text"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the Settings model
func (Settings) TableName() string {
	return "settings"
}

// DefaultSettings synthesizes the settings served for a tenant that has
// never saved any. The defaults are returned, not persisted.
func DefaultSettings(tenantID string) Settings {
	return Settings{
		TenantID:     tenantID,
		BizName:      "My Shop",
		PrimaryColor: "#2563eb",
	}
}
