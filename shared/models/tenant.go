package models

import (
	"fmt"
	"time"
)

// TenantRole identifies the kind of tenant behind a principal
type TenantRole string

const (
	RoleSuperAdmin TenantRole = "super_admin"
	RoleShopOwner  TenantRole = "shop_owner"
	RoleAgency     TenantRole = "agency"
	RoleMerchant   TenantRole = "merchant"
	RoleSupplier   TenantRole = "supplier"
)

// RootTenantID is the sentinel parent for tenants not recruited by any
// agency ("platform-owned"). Merchants and suppliers registered without a
// valid referral land here.
const RootTenantID = "platform"

// ParseTenantRole validates a role string against the closed role set.
// All role dispatch in the system goes through TenantRole values produced
// here, never through raw strings.
func ParseTenantRole(s string) (TenantRole, error) {
	switch TenantRole(s) {
	case RoleSuperAdmin, RoleShopOwner, RoleAgency, RoleMerchant, RoleSupplier:
		return TenantRole(s), nil
	}
	return "", fmt.Errorf("unknown tenant role %q", s)
}

// Tenant represents one isolated owner scope. The primary key is the
// Cognito sub of the owning principal, so tenant id and credential id are
// always the same value.
type Tenant struct {
	ID             string     `json:"id" gorm:"type:varchar(255);primaryKey"`
	Role           TenantRole `json:"role" gorm:"type:varchar(32);not null;index"`
	ParentTenantID string     `json:"parent_tenant_id" gorm:"type:varchar(255);index;default:''"`

	// Agency-only fields. TrialStartedAt is set once at registration and
	// never updated; DownstreamCount is maintained by an atomic SQL
	// increment when a referred merchant registers.
	TrialStartedAt  *time.Time `json:"trial_started_at,omitempty"`
	DownstreamCount int        `json:"downstream_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// IsAgency reports whether this tenant can recruit merchants and suppliers.
func (t *Tenant) IsAgency() bool {
	return t.Role == RoleAgency
}

// SellsDirectly reports whether this tenant runs a public storefront.
func (t *Tenant) SellsDirectly() bool {
	return t.Role == RoleShopOwner || t.Role == RoleMerchant
}
