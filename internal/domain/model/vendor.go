package model

import "time"

// Vendor is the cached vendor account row. Ownership is checked on every
// read: a row whose OwnerID differs from the requesting user is treated as
// nonexistent rather than leaked across tenants.
type Vendor struct {
	ID      string
	OwnerID string

	Status  SubscriptionStatus
	PlanKey string
	PriceID string

	OnboardingCompletedAt    *time.Time
	TermsAcceptedAt          *time.Time
	ComplianceAcknowledgedAt *time.Time

	ProductCount int
	CreatedAt    time.Time
}

func (v *Vendor) IsZero() bool { return v == nil || v.ID == "" }

// OwnedBy reports whether the row belongs to the given user.
func (v *Vendor) OwnedBy(userID string) bool {
	return v != nil && userID != "" && v.OwnerID == userID
}

// OnboardingComplete requires all three completion marks. Partial completion
// is treated identically to no completion.
func (v *Vendor) OnboardingComplete() bool {
	return v != nil &&
		v.OnboardingCompletedAt != nil &&
		v.TermsAcceptedAt != nil &&
		v.ComplianceAcknowledgedAt != nil
}
