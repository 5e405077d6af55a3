package repository

import (
	"context"

	"marketplace-entitlements/internal/domain/model"
)

// ProfileRepository reads marketplace profile rows for the onboarding gates.
type ProfileRepository interface {
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Profile, error)
	Save(ctx context.Context, tx Tx, p *model.Profile) error
}
