package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/repository"
)

// Stats is the operational snapshot served to admins and exported as gauges.
type Stats struct {
	Subscriptions map[model.SubscriptionStatus]int `json:"subscriptions"`
	Verifications map[model.VerificationStatus]int `json:"verifications"`
}

// StatsUseCase aggregates read-only counts for the admin API and the metrics
// worker.
type StatsUseCase struct {
	subs          repository.SubscriptionRepository
	verifications repository.VerificationRepository
	log           *zerolog.Logger
}

func NewStatsUseCase(subs repository.SubscriptionRepository, verifications repository.VerificationRepository, logger *zerolog.Logger) *StatsUseCase {
	l := logger.With().Str("component", "StatsUC").Logger()
	return &StatsUseCase{subs: subs, verifications: verifications, log: &l}
}

func (uc *StatsUseCase) Collect(ctx context.Context) (*Stats, error) {
	subCounts, err := uc.subs.CountByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("collect subscription counts: %w", err)
	}
	verCounts, err := uc.verifications.CountByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("collect verification counts: %w", err)
	}
	return &Stats{Subscriptions: subCounts, Verifications: verCounts}, nil
}
