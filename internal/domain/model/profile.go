package model

import "time"

// Profile is the cached marketplace profile row used by the onboarding gates.
type Profile struct {
	UserID                string
	Email                 string
	DisplayName           string
	OnboardingCompletedAt *time.Time
	CreatedAt             time.Time
}

func (p *Profile) IsZero() bool { return p == nil || p.UserID == "" }

// OnboardingComplete reports whether the consumer finished onboarding.
func (p *Profile) OnboardingComplete() bool {
	return p != nil && p.OnboardingCompletedAt != nil
}
