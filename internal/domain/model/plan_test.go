package model

import (
	"errors"
	"testing"

	"marketplace-entitlements/internal/domain"
)

func TestPlanKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		family   PlanFamily
		tier     Tier
		interval BillingInterval
		want     string
	}{
		{PlanFamilyConsumer, TierStarter, IntervalMonth, "consumer_starter_monthly"},
		{PlanFamilyConsumer, TierPlus, IntervalMonth, "consumer_plus_monthly"},
		{PlanFamilyConsumer, TierVIP, IntervalYear, "consumer_vip_annual"},
		{PlanFamilyVendor, TierPro, IntervalYear, "vendor_pro_annual"},
		{PlanFamilyVendor, TierEnterprise, IntervalMonth, "vendor_enterprise_monthly"},
	}
	for _, c := range cases {
		if got := PlanKey(c.family, c.tier, c.interval); got != c.want {
			t.Errorf("PlanKey(%s,%s,%s) = %q, want %q", c.family, c.tier, c.interval, got, c.want)
		}
	}
}

func TestNewPlan_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewPlan(PlanFamilyConsumer, TierPlus, IntervalMonth, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty price id: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := NewPlan(PlanFamilyConsumer, TierPlus, "weekly", "price_x"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("bad interval: expected ErrInvalidArgument, got %v", err)
	}

	p, err := NewPlan(PlanFamilyVendor, TierPro, IntervalYear, "price_pro_year")
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if p.Key != "vendor_pro_annual" {
		t.Fatalf("expected key vendor_pro_annual, got %q", p.Key)
	}
	if p.PriceID != "price_pro_year" {
		t.Fatalf("expected price id to round-trip, got %q", p.PriceID)
	}
}

func TestGetProductLimitStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		current int
		limit   int
		reached bool
	}{
		{"under limit", 5, 10, false},
		{"at limit", 10, 10, true},
		{"over limit", 11, 10, true},
		{"zero of zero", 0, 0, true},
		{"unlimited never reached", 100000, UnlimitedProducts, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GetProductLimitStatus(c.current, c.limit)
			if got.Reached != c.reached {
				t.Fatalf("Reached = %t, want %t", got.Reached, c.reached)
			}
			if got.Limit != c.limit || got.Current != c.current {
				t.Fatalf("expected inputs echoed back, got %+v", got)
			}
		})
	}
}

func TestSubscriptionStatus_IsEntitled(t *testing.T) {
	t.Parallel()

	entitled := map[SubscriptionStatus]bool{
		SubscriptionStatusActive:     true,
		SubscriptionStatusTrialing:   true,
		SubscriptionStatusPastDue:    false,
		SubscriptionStatusCanceled:   false,
		SubscriptionStatusIncomplete: false,
		SubscriptionStatusUnpaid:     false,
		SubscriptionStatusNone:       false,
		SubscriptionStatus("garbage"): false,
	}
	for status, want := range entitled {
		if got := status.IsEntitled(); got != want {
			t.Errorf("IsEntitled(%q) = %t, want %t", status, got, want)
		}
	}
}
