package main

import (
	"os"
	"strconv"
	"time"

	"github.com/storefoundry/go-storefront-platform/shared/models"
	"github.com/storefoundry/go-storefront-platform/shared/utils"
)

// BillingConfig holds the billing constants. They are configuration, not
// data: nothing about billing is ever persisted.
type BillingConfig struct {
	TrialDays     int
	BaseFee       float64
	FreeTierLimit int
	PerUnitFee    float64
}

// LoadBillingConfig reads the billing constants from the environment.
func LoadBillingConfig() BillingConfig {
	return BillingConfig{
		TrialDays:     getEnvInt("TRIAL_DAYS", 14),
		BaseFee:       getEnvFloat("BILLING_BASE_FEE", 10),
		FreeTierLimit: getEnvInt("BILLING_FREE_TIER_LIMIT", 50),
		PerUnitFee:    getEnvFloat("BILLING_PER_UNIT_FEE", 2),
	}
}

// Bill is the read-time billing projection for an agency.
type Bill struct {
	TenantID           string  `json:"tenant_id"`
	DaysElapsed        int     `json:"days_elapsed"`
	TrialDaysRemaining int     `json:"trial_days_remaining"`
	DownstreamCount    int     `json:"downstream_count"`
	AmountDue          float64 `json:"amount_due"`
}

// ComputeBill derives an agency's current obligation from elapsed trial
// time and its downstream merchant count. Pure projection: recomputed on
// every view, no ledger, no side effects.
func ComputeBill(agency *models.Tenant, now time.Time, cfg BillingConfig) (*Bill, error) {
	if !agency.IsAgency() {
		return nil, utils.NewForbiddenError("Billing applies to agency tenants only")
	}
	if agency.TrialStartedAt == nil {
		return nil, utils.NewValidationError("Agency has no trial start recorded")
	}

	daysElapsed := int(now.Sub(*agency.TrialStartedAt) / (24 * time.Hour))
	bill := &Bill{
		TenantID:           agency.ID,
		DaysElapsed:        daysElapsed,
		TrialDaysRemaining: cfg.TrialDays - daysElapsed,
		DownstreamCount:    agency.DownstreamCount,
	}

	if bill.TrialDaysRemaining > 0 {
		return bill, nil
	}

	overage := agency.DownstreamCount - cfg.FreeTierLimit
	if overage < 0 {
		overage = 0
	}
	bill.AmountDue = cfg.BaseFee + float64(overage)*cfg.PerUnitFee
	return bill, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
