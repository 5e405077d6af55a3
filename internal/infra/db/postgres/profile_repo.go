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

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Profile, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT user_id, email, display_name, onboarding_completed_at, created_at
  FROM profiles
 WHERE user_id = $1;
`
	var p model.Profile
	row := ex.QueryRow(ctx, sql, userID)
	if err := row.Scan(&p.UserID, &p.Email, &p.DisplayName, &p.OnboardingCompletedAt, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByUser profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO profiles (user_id, email, display_name, onboarding_completed_at, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE
  SET email                   = EXCLUDED.email,
      display_name            = EXCLUDED.display_name,
      onboarding_completed_at = EXCLUDED.onboarding_completed_at;
`
	if _, err := ex.Exec(ctx, sql, p.UserID, p.Email, p.DisplayName, p.OnboardingCompletedAt, p.CreatedAt); err != nil {
		return fmt.Errorf("Save profile: %w", err)
	}
	return nil
}
