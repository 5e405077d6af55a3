package repository

import (
	"context"

	"marketplace-entitlements/internal/domain/model"
)

// SubscriptionRepository reads the cached per-user subscription rows.
// FindByUser returns domain.ErrNotFound when no row exists; resolvers treat
// that as a valid negative result, not a failure.
type SubscriptionRepository interface {
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error

	// CountByStatus feeds the stats endpoint and the metrics worker.
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}
