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

var _ repository.LoyaltyLedgerRepository = (*LoyaltyLedgerRepo)(nil)

// LoyaltyLedgerRepo appends ledger rows under a per-user advisory lock so the
// running balance stays consistent under concurrent awards and redemptions.
type LoyaltyLedgerRepo struct {
	pool *pgxpool.Pool
}

func NewLoyaltyLedgerRepo(pool *pgxpool.Pool) *LoyaltyLedgerRepo {
	return &LoyaltyLedgerRepo{pool: pool}
}

// Append computes BalanceAfter inside one transaction. A delta that would
// drive the balance negative fails with domain.ErrInsufficientPoints; the
// balance is never clamped.
func (r *LoyaltyLedgerRepo) Append(ctx context.Context, tx repository.Tx, entry *model.LedgerEntry) error {
	if t, ok := tx.(pgx.Tx); ok {
		return r.appendTx(ctx, t, entry)
	}
	dbTx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("Append ledger begin: %w", err)
	}
	defer func() { _ = dbTx.Rollback(ctx) }()
	if err := r.appendTx(ctx, dbTx, entry); err != nil {
		return err
	}
	return dbTx.Commit(ctx)
}

func (r *LoyaltyLedgerRepo) appendTx(ctx context.Context, tx pgx.Tx, entry *model.LedgerEntry) error {
	// Serialize per user; keyed locks are cheaper than FOR UPDATE over the
	// whole history and also cover the first-ever entry.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey(entry.UserID)); err != nil {
		return fmt.Errorf("Append ledger lock: %w", err)
	}

	var balance int64
	const balSQL = `
SELECT COALESCE(
  (SELECT balance_after FROM loyalty_ledger
    WHERE user_id = $1
    ORDER BY created_at DESC, id DESC
    LIMIT 1), 0);`
	if err := tx.QueryRow(ctx, balSQL, entry.UserID).Scan(&balance); err != nil {
		return fmt.Errorf("Append ledger balance: %w", err)
	}

	newBalance := balance + entry.Points
	if newBalance < 0 {
		return fmt.Errorf("balance %d, delta %d: %w", balance, entry.Points, domain.ErrInsufficientPoints)
	}
	entry.BalanceAfter = newBalance

	const insSQL = `
INSERT INTO loyalty_ledger (id, user_id, kind, points, balance_after, reference, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`
	if _, err := tx.Exec(ctx, insSQL,
		entry.ID, entry.UserID, entry.Kind, entry.Points, entry.BalanceAfter, entry.Reference, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("Append ledger insert: %w", err)
	}
	return nil
}

func (r *LoyaltyLedgerRepo) Balance(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const sql = `
SELECT COALESCE(
  (SELECT balance_after FROM loyalty_ledger
    WHERE user_id = $1
    ORDER BY created_at DESC, id DESC
    LIMIT 1), 0);`
	var balance int64
	if err := ex.QueryRow(ctx, sql, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("Balance ledger: %w", err)
	}
	return balance, nil
}

func (r *LoyaltyLedgerRepo) History(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.LedgerEntry, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT id, user_id, kind, points, balance_after, reference, created_at
  FROM loyalty_ledger
 WHERE user_id = $1
 ORDER BY created_at DESC, id DESC
 LIMIT $2;`
	rows, err := ex.Query(ctx, sql, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("History ledger: %w", err)
	}
	defer rows.Close()
	var out []*model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Points, &e.BalanceAfter, &e.Reference, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
