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

var _ repository.VerificationRepository = (*VerificationRepo)(nil)

type VerificationRepo struct {
	pool *pgxpool.Pool
}

func NewVerificationRepo(pool *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{pool: pool}
}

const verificationColumns = `id, user_id, status, created_at, reviewed_at, reviewer_note`

func scanVerification(row pgx.Row) (*model.VerificationRecord, error) {
	var rec model.VerificationRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Status, &rec.CreatedAt, &rec.ReviewedAt, &rec.ReviewerNote)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *VerificationRepo) Save(ctx context.Context, tx repository.Tx, rec *model.VerificationRecord) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO verifications (id, user_id, status, created_at, reviewed_at, reviewer_note)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
  SET status        = EXCLUDED.status,
      reviewed_at   = EXCLUDED.reviewed_at,
      reviewer_note = EXCLUDED.reviewer_note;
`
	if _, err := ex.Exec(ctx, sql, rec.ID, rec.UserID, rec.Status, rec.CreatedAt, rec.ReviewedAt, rec.ReviewerNote); err != nil {
		return fmt.Errorf("Save verification: %w", err)
	}
	return nil
}

func (r *VerificationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.VerificationRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + verificationColumns + ` FROM verifications WHERE id = $1;`
	rec, err := scanVerification(ex.QueryRow(ctx, sql, id))
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("FindByID verification: %w", err)
	}
	return rec, nil
}

// FindLatestByUser implements most-recent-wins for the market gate.
func (r *VerificationRepo) FindLatestByUser(ctx context.Context, tx repository.Tx, userID string) (*model.VerificationRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + verificationColumns + `
  FROM verifications
 WHERE user_id = $1
 ORDER BY created_at DESC, id DESC
 LIMIT 1;`
	rec, err := scanVerification(ex.QueryRow(ctx, sql, userID))
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("FindLatestByUser verification: %w", err)
	}
	return rec, nil
}

func (r *VerificationRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.VerificationStatus, limit int) ([]*model.VerificationRecord, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + verificationColumns + `
  FROM verifications
 WHERE status = $1
 ORDER BY created_at ASC
 LIMIT $2;`
	rows, err := ex.Query(ctx, sql, status, limit)
	if err != nil {
		return nil, fmt.Errorf("ListByStatus verifications: %w", err)
	}
	defer rows.Close()
	var out []*model.VerificationRecord
	for rows.Next() {
		var rec model.VerificationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Status, &rec.CreatedAt, &rec.ReviewedAt, &rec.ReviewerNote); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *VerificationRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.VerificationStatus]int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT status, COUNT(1) FROM verifications GROUP BY status;`
	rows, err := ex.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("CountByStatus verifications: %w", err)
	}
	defer rows.Close()
	out := make(map[model.VerificationStatus]int)
	for rows.Next() {
		var status model.VerificationStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
