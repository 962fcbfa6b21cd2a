package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

func testBillingConfig() BillingConfig {
	return BillingConfig{
		TrialDays:     14,
		BaseFee:       10,
		FreeTierLimit: 50,
		PerUnitFee:    2,
	}
}

func agencyWithTrial(daysAgo int, downstream int) *models.Tenant {
	started := time.Now().Add(-time.Duration(daysAgo) * 24 * time.Hour)
	return &models.Tenant{
		ID:              "agency-1",
		Role:            models.RoleAgency,
		TrialStartedAt:  &started,
		DownstreamCount: downstream,
	}
}

func TestComputeBill_NothingDueDuringTrial(t *testing.T) {
	cfg := testBillingConfig()

	for days := 0; days <= 13; days++ {
		bill, err := ComputeBill(agencyWithTrial(days, 200), time.Now(), cfg)
		assert.NoError(t, err)
		assert.Equal(t, float64(0), bill.AmountDue, "day %d should still be in trial", days)
		assert.Equal(t, 14-days, bill.TrialDaysRemaining)
	}
}

func TestComputeBill_BaseFeeAfterTrial(t *testing.T) {
	cfg := testBillingConfig()

	bill, err := ComputeBill(agencyWithTrial(14, 0), time.Now(), cfg)
	assert.NoError(t, err)
	assert.Equal(t, 0, bill.TrialDaysRemaining)
	assert.Equal(t, float64(10), bill.AmountDue)
}

func TestComputeBill_FreeTierBoundary(t *testing.T) {
	cfg := testBillingConfig()

	atLimit, err := ComputeBill(agencyWithTrial(20, 50), time.Now(), cfg)
	assert.NoError(t, err)
	assert.Equal(t, float64(10), atLimit.AmountDue)

	oneOver, err := ComputeBill(agencyWithTrial(20, 51), time.Now(), cfg)
	assert.NoError(t, err)
	assert.Equal(t, float64(12), oneOver.AmountDue)
}

func TestComputeBill_StrictlyIncreasingPastFreeTier(t *testing.T) {
	cfg := testBillingConfig()

	prev := float64(-1)
	for downstream := 50; downstream <= 60; downstream++ {
		bill, err := ComputeBill(agencyWithTrial(30, downstream), time.Now(), cfg)
		assert.NoError(t, err)
		if downstream > 50 {
			assert.Greater(t, bill.AmountDue, prev)
		}
		prev = bill.AmountDue
	}
}

func TestComputeBill_RejectsNonAgency(t *testing.T) {
	cfg := testBillingConfig()

	_, err := ComputeBill(&models.Tenant{ID: "m-1", Role: models.RoleMerchant}, time.Now(), cfg)
	assert.Error(t, err)

	var forbidden *utils.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestComputeBill_RejectsMissingTrialStart(t *testing.T) {
	cfg := testBillingConfig()

	_, err := ComputeBill(&models.Tenant{ID: "a-1", Role: models.RoleAgency}, time.Now(), cfg)
	assert.Error(t, err)

	var validation *utils.ValidationError
	assert.ErrorAs(t, err, &validation)
}
