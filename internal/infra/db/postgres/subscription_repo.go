package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

func (r *SubscriptionRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT user_id, status, plan_key, price_id, current_period_end, updated_at
  FROM subscriptions
 WHERE user_id = $1;
`
	var s model.Subscription
	row := ex.QueryRow(ctx, sql, userID)
	if err := row.Scan(&s.UserID, &s.Status, &s.PlanKey, &s.PriceID, &s.CurrentPeriodEnd, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByUser subscription: %w", err)
	}
	return &s, nil
}

func (r *SubscriptionRepo) Save(ctx context.Context, tx repository.Tx, sub *model.Subscription) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO subscriptions (user_id, status, plan_key, price_id, current_period_end, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (user_id) DO UPDATE
  SET status             = EXCLUDED.status,
      plan_key           = EXCLUDED.plan_key,
      price_id           = EXCLUDED.price_id,
      current_period_end = EXCLUDED.current_period_end,
      updated_at         = now();
`
	if _, err := ex.Exec(ctx, sql, sub.UserID, sub.Status, sub.PlanKey, sub.PriceID, sub.CurrentPeriodEnd); err != nil {
		return fmt.Errorf("Save subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT status, COUNT(1) FROM subscriptions GROUP BY status;`
	rows, err := ex.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("CountByStatus subscriptions: %w", err)
	}
	defer rows.Close()
	out := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status model.SubscriptionStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
