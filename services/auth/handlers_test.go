package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Tenant{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func registerAgency(t *testing.T, db *gorm.DB, id string) *models.Tenant {
	tenant, err := createTenant(db, id, models.RoleAgency, "")
	if err != nil {
		t.Fatalf("failed to create agency: %v", err)
	}
	return tenant
}

func TestCreateTenant_AgencyStartsTrial(t *testing.T) {
	db := setupAuthTestDB(t)

	agency := registerAgency(t, db, "agency-1")

	assert.Equal(t, models.RoleAgency, agency.Role)
	assert.NotNil(t, agency.TrialStartedAt)
	assert.Equal(t, 0, agency.DownstreamCount)
}

func TestCreateTenant_SameRoleIsIdempotent(t *testing.T) {
	db := setupAuthTestDB(t)

	first, err := createTenant(db, "shop-1", models.RoleShopOwner, "")
	assert.NoError(t, err)

	second, err := createTenant(db, "shop-1", models.RoleShopOwner, "")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Tenant{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateTenant_RoleMismatchConflicts(t *testing.T) {
	db := setupAuthTestDB(t)

	_, err := createTenant(db, "p-1", models.RoleShopOwner, "")
	assert.NoError(t, err)

	_, err = createTenant(db, "p-1", models.RoleMerchant, models.RootTenantID)
	assert.Error(t, err)

	var conflict *utils.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestResolveReferralScope_ValidAgency(t *testing.T) {
	db := setupAuthTestDB(t)
	registerAgency(t, db, "agency-1")

	assert.Equal(t, "agency-1", resolveReferralScope(db, "agency-1"))
}

func TestResolveReferralScope_UnknownFallsBackToPlatform(t *testing.T) {
	db := setupAuthTestDB(t)

	assert.Equal(t, models.RootTenantID, resolveReferralScope(db, "no-such-agency"))
	assert.Equal(t, models.RootTenantID, resolveReferralScope(db, ""))
}

func TestResolveReferralScope_NonAgencyTenantFallsBack(t *testing.T) {
	db := setupAuthTestDB(t)

	// A merchant id used as a referral must not become a parent scope.
	_, err := createTenant(db, "merchant-1", models.RoleMerchant, models.RootTenantID)
	assert.NoError(t, err)

	assert.Equal(t, models.RootTenantID, resolveReferralScope(db, "merchant-1"))
}

func TestIncrementDownstream(t *testing.T) {
	db := setupAuthTestDB(t)
	registerAgency(t, db, "agency-1")

	incrementDownstream(db, "agency-1")
	incrementDownstream(db, "agency-1")

	var agency models.Tenant
	assert.NoError(t, db.First(&agency, "id = ?", "agency-1").Error)
	assert.Equal(t, 2, agency.DownstreamCount)
}

func TestIncrementDownstream_UnknownAgencyIsSwallowed(t *testing.T) {
	db := setupAuthTestDB(t)

	// Must not panic or error; the failure is secondary by design of the
	// registration flow.
	incrementDownstream(db, "missing")
}

func TestMerchantRegistrationCountsTowardAgency(t *testing.T) {
	db := setupAuthTestDB(t)
	registerAgency(t, db, "agency-1")

	parent := resolveReferralScope(db, "agency-1")
	_, err := createTenant(db, "merchant-1", models.RoleMerchant, parent)
	assert.NoError(t, err)
	incrementDownstream(db, parent)

	var agency models.Tenant
	db.First(&agency, "id = ?", "agency-1")
	assert.Equal(t, 1, agency.DownstreamCount)

	var merchant models.Tenant
	db.First(&merchant, "id = ?", "merchant-1")
	assert.Equal(t, "agency-1", merchant.ParentTenantID)
}
