package model

import (
	"fmt"
	"sort"

	"marketplace-entitlements/internal/domain"
)

// PlanSpec describes one (tier, interval) combination of a catalog together
// with the entitlement values that ship with it. The external price ID is
// supplied separately from configuration.
type PlanSpec struct {
	Tier     Tier
	Interval BillingInterval

	LoyaltyMultiplier    float64
	ReferralRewardPoints int64
	ProductLimit         int
	CommissionPercent    int
}

// Catalog holds the immutable plan set of one family, keyed two ways: by plan
// key and by external price ID. Combinations whose price ID is missing from
// configuration are skipped and reported via Missing.
type Catalog struct {
	family    PlanFamily
	byKey     map[string]*Plan
	byPriceID map[string]*Plan
	missing   []string
}

// NewCatalog crosses the given specs with configured price IDs (keyed by plan
// key). A spec without a configured price ID is not an error; two specs
// sharing a price ID is.
func NewCatalog(family PlanFamily, specs []PlanSpec, priceIDs map[string]string) (*Catalog, error) {
	c := &Catalog{
		family:    family,
		byKey:     make(map[string]*Plan, len(specs)),
		byPriceID: make(map[string]*Plan, len(specs)),
	}
	for _, spec := range specs {
		key := PlanKey(family, spec.Tier, spec.Interval)
		priceID := priceIDs[key]
		if priceID == "" {
			c.missing = append(c.missing, key)
			continue
		}
		if _, ok := c.byPriceID[priceID]; ok {
			return nil, fmt.Errorf("catalog %s: plan %s: %w", family, key, domain.ErrDuplicatePriceID)
		}
		p, err := NewPlan(family, spec.Tier, spec.Interval, priceID)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: plan %s: %w", family, key, err)
		}
		p.LoyaltyMultiplier = spec.LoyaltyMultiplier
		p.ReferralRewardPoints = spec.ReferralRewardPoints
		p.ProductLimit = spec.ProductLimit
		p.CommissionPercent = spec.CommissionPercent
		c.byKey[key] = p
		c.byPriceID[priceID] = p
	}
	sort.Strings(c.missing)
	return c, nil
}

func (c *Catalog) Family() PlanFamily { return c.family }

// ByKey looks a plan up by its stable key.
func (c *Catalog) ByKey(key string) (*Plan, bool) {
	p, ok := c.byKey[key]
	return p, ok
}

// ByPriceID looks a plan up by its external price identifier.
func (c *Catalog) ByPriceID(priceID string) (*Plan, bool) {
	p, ok := c.byPriceID[priceID]
	return p, ok
}

// Plans returns all configured plans in stable key order.
func (c *Catalog) Plans() []*Plan {
	keys := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Plan, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.byKey[k])
	}
	return out
}

// Missing lists plan keys skipped for lack of a configured price ID. Used for
// diagnostics only; lookups on missing keys simply return not-found.
func (c *Catalog) Missing() []string {
	out := make([]string, len(c.missing))
	copy(out, c.missing)
	return out
}

// ConsumerPlanSpecs returns the fixed consumer plan matrix.
func ConsumerPlanSpecs() []PlanSpec {
	specs := make([]PlanSpec, 0, 6)
	tiers := []struct {
		tier         Tier
		multiplier   float64
		rewardPoints int64
	}{
		{TierStarter, 1.0, StarterReferralRewardPoints},
		{TierPlus, 1.5, 0},
		{TierVIP, 2.0, 0},
	}
	for _, t := range tiers {
		for _, iv := range []BillingInterval{IntervalMonth, IntervalYear} {
			specs = append(specs, PlanSpec{
				Tier:                 t.tier,
				Interval:             iv,
				LoyaltyMultiplier:    t.multiplier,
				ReferralRewardPoints: t.rewardPoints,
			})
		}
	}
	return specs
}

// VendorPlanSpecs returns the fixed vendor plan matrix.
func VendorPlanSpecs() []PlanSpec {
	specs := make([]PlanSpec, 0, 6)
	tiers := []struct {
		tier       Tier
		limit      int
		commission int
	}{
		{TierStarter, 25, 10},
		{TierPro, 200, 5},
		{TierEnterprise, UnlimitedProducts, 3},
	}
	for _, t := range tiers {
		for _, iv := range []BillingInterval{IntervalMonth, IntervalYear} {
			specs = append(specs, PlanSpec{
				Tier:              t.tier,
				Interval:          iv,
				ProductLimit:      t.limit,
				CommissionPercent: t.commission,
			})
		}
	}
	return specs
}
