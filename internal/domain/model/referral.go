package model

import "strings"

// DefaultReferralBonusPoints is the flat reward used when the referrer's tier
// carries no specific referralRewardPoints entitlement.
const DefaultReferralBonusPoints int64 = 100

// StarterReferralRewardPoints is the entry-tier entitlement used instead of
// the flat bonus when the referrer is a Starter consumer.
const StarterReferralRewardPoints int64 = 200

const starterConsumerPrefix = "consumer_starter_"

// EnsureReferralCode returns the existing code unchanged when non-empty,
// otherwise invokes gen exactly once. Generation is idempotent by contract: a
// user keeps the first code ever minted for them.
func EnsureReferralCode(existing string, gen func() string) string {
	if existing != "" {
		return existing
	}
	return gen()
}

// IsStarterConsumerPlanKey reports whether the key names an entry-tier
// consumer plan. Empty keys are never starter.
func IsStarterConsumerPlanKey(planKey string) bool {
	return planKey != "" && strings.HasPrefix(planKey, starterConsumerPrefix)
}

// ReferralEligibility carries the three independent inputs of the
// eligibility rule.
type ReferralEligibility struct {
	IsAdmin            bool
	ConsumerPlanKey    string
	IsVendorSubscribed bool
}

// IsReferralLinkEligible restricts referral links to admins, subscribed
// vendors, and entry-tier consumers. Plus/VIP consumers are deliberately
// excluded so referrals never undercut higher-tier conversions.
func IsReferralLinkEligible(in ReferralEligibility) bool {
	return in.IsAdmin || in.IsVendorSubscribed || IsStarterConsumerPlanKey(in.ConsumerPlanKey)
}

// ReferralRewardPoints sizes the referrer's bonus: the Starter tier's specific
// entitlement when the referrer is an entry-tier consumer, the flat default
// otherwise.
func ReferralRewardPoints(referrerPlanKey string, catalog *Catalog) int64 {
	if IsStarterConsumerPlanKey(referrerPlanKey) && catalog != nil {
		if p, ok := catalog.ByKey(referrerPlanKey); ok && p.ReferralRewardPoints > 0 {
			return p.ReferralRewardPoints
		}
		return StarterReferralRewardPoints
	}
	return DefaultReferralBonusPoints
}
