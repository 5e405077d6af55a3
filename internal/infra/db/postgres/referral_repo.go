package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/ports/repository"
)

var _ repository.ReferralCodeRepository = (*ReferralCodeRepo)(nil)

type ReferralCodeRepo struct {
	pool *pgxpool.Pool
}

func NewReferralCodeRepo(pool *pgxpool.Pool) *ReferralCodeRepo {
	return &ReferralCodeRepo{pool: pool}
}

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// Ensure inserts the candidate code for the user unless a code already
// exists, in which case the stored code is returned unchanged. A collision on
// the code column itself (another user already holds the candidate) surfaces
// as domain.ErrAlreadyExists so the caller can retry with a new candidate.
func (r *ReferralCodeRepo) Ensure(ctx context.Context, tx repository.Tx, userID, candidate string) (string, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return "", err
	}
	const sql = `
INSERT INTO referral_codes (user_id, code, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET code = referral_codes.code
RETURNING code;
`
	var code string
	if err := ex.QueryRow(ctx, sql, userID, candidate, time.Now()).Scan(&code); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("referral code %q taken: %w", candidate, domain.ErrAlreadyExists)
		}
		return "", fmt.Errorf("Ensure referral code: %w", err)
	}
	return code, nil
}

func (r *ReferralCodeRepo) FindOwner(ctx context.Context, tx repository.Tx, code string) (string, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return "", err
	}
	const sql = `SELECT user_id FROM referral_codes WHERE code = $1;`
	var userID string
	if err := ex.QueryRow(ctx, sql, code).Scan(&userID); err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("FindOwner referral code: %w", err)
	}
	return userID, nil
}
