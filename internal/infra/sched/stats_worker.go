package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/infra/metrics"
	"marketplace-entitlements/internal/usecase"
)

// StatsWorker periodically exports subscription and verification counts as
// Prometheus gauges. Read-only; it never mutates business state.
type StatsWorker struct {
	interval time.Duration
	statsUC  *usecase.StatsUseCase
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, statsUC *usecase.StatsUseCase, logger *zerolog.Logger) *StatsWorker {
	l := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{interval: interval, statsUC: statsUC, log: &l}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			stats, err := w.statsUC.Collect(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("stats collection failed")
				continue
			}
			metrics.SetSubscriptionsTotal(stats.Subscriptions)
			metrics.SetVerificationsTotal(stats.Verifications)
		}
	}
}
