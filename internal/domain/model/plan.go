package model

import (
	"fmt"
	"strings"

	"marketplace-entitlements/internal/domain"
)

// PlanFamily distinguishes the two independent plan catalogs.
type PlanFamily string

const (
	PlanFamilyConsumer PlanFamily = "consumer"
	PlanFamilyVendor   PlanFamily = "vendor"
)

// Tier is the display name of a purchasable level within a family.
type Tier string

const (
	// Consumer tiers
	TierStarter Tier = "Starter"
	TierPlus    Tier = "Plus"
	TierVIP     Tier = "VIP"

	// Vendor tiers (vendors share the Starter entry tier name)
	TierPro        Tier = "Pro"
	TierEnterprise Tier = "Enterprise"
)

// BillingInterval is the cadence a plan renews at.
type BillingInterval string

const (
	IntervalMonth BillingInterval = "month"
	IntervalYear  BillingInterval = "year"
)

// UnlimitedProducts marks a vendor plan with no product cap.
const UnlimitedProducts = -1

// Plan is one purchasable (tier x interval) offering. Plans are built once
// from configuration at startup and never mutated afterwards.
type Plan struct {
	Key      string
	Family   PlanFamily
	Tier     Tier
	Interval BillingInterval
	PriceID  string

	// Consumer entitlements
	LoyaltyMultiplier    float64
	ReferralRewardPoints int64

	// Vendor entitlements
	ProductLimit      int
	CommissionPercent int
}

func (p *Plan) IsZero() bool { return p == nil || p.Key == "" }

// Unlimited reports whether the plan has no product cap.
func (p *Plan) Unlimited() bool { return p.ProductLimit == UnlimitedProducts }

// PlanKey builds the stable key for a (family, tier, interval) combination,
// e.g. consumer_plus_monthly or vendor_pro_annual.
func PlanKey(family PlanFamily, tier Tier, interval BillingInterval) string {
	suffix := "monthly"
	if interval == IntervalYear {
		suffix = "annual"
	}
	return fmt.Sprintf("%s_%s_%s", family, strings.ToLower(string(tier)), suffix)
}

// NewPlan validates and constructs a plan.
func NewPlan(family PlanFamily, tier Tier, interval BillingInterval, priceID string) (*Plan, error) {
	if family == "" || tier == "" || priceID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if interval != IntervalMonth && interval != IntervalYear {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		Key:      PlanKey(family, tier, interval),
		Family:   family,
		Tier:     tier,
		Interval: interval,
		PriceID:  priceID,
	}, nil
}

// ProductLimitStatus reports a vendor's standing against its plan cap.
type ProductLimitStatus struct {
	Reached bool `json:"reached"`
	Limit   int  `json:"limit"`
	Current int  `json:"current"`
}

// GetProductLimitStatus compares a vendor's current product count with a plan
// limit. An unlimited plan never reports reached.
func GetProductLimitStatus(currentCount, limit int) ProductLimitStatus {
	if limit == UnlimitedProducts {
		return ProductLimitStatus{Reached: false, Limit: limit, Current: currentCount}
	}
	return ProductLimitStatus{Reached: currentCount >= limit, Limit: limit, Current: currentCount}
}
