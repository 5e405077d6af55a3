package model

import "time"

// SubscriptionStatus mirrors the payment provider's subscription lifecycle
// string as cached in the data store.
type SubscriptionStatus string

const (
	SubscriptionStatusNone       SubscriptionStatus = ""
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusUnpaid     SubscriptionStatus = "unpaid"
)

// IsEntitled is the single source of truth for "is paid": only active and
// trialing subscriptions grant access. Every other value, including the empty
// string for a missing row, does not.
func (s SubscriptionStatus) IsEntitled() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

// Subscription is the cached per-user subscription row. The payment provider
// owns the truth; this service only reads the cache and derives entitlement.
type Subscription struct {
	UserID           string
	Status           SubscriptionStatus
	PlanKey          string
	PriceID          string
	CurrentPeriodEnd *time.Time
	UpdatedAt        time.Time
}

func (s *Subscription) IsZero() bool { return s == nil || s.UserID == "" }
