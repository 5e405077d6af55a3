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

var _ repository.VendorRepository = (*VendorRepo)(nil)

type VendorRepo struct {
	pool *pgxpool.Pool
}

func NewVendorRepo(pool *pgxpool.Pool) *VendorRepo {
	return &VendorRepo{pool: pool}
}

const vendorColumns = `
id, owner_id, status, plan_key, price_id,
vendor_onboarding_completed, terms_accepted_at, compliance_acknowledged_at,
product_count, created_at`

func scanVendor(row pgx.Row) (*model.Vendor, error) {
	var v model.Vendor
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.Status, &v.PlanKey, &v.PriceID,
		&v.OnboardingCompletedAt, &v.TermsAcceptedAt, &v.ComplianceAcknowledgedAt,
		&v.ProductCount, &v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VendorRepo) FindByOwner(ctx context.Context, tx repository.Tx, ownerID string) (*model.Vendor, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + vendorColumns + ` FROM vendors WHERE owner_id = $1;`
	v, err := scanVendor(ex.QueryRow(ctx, sql, ownerID))
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("FindByOwner vendor: %w", err)
	}
	return v, nil
}

func (r *VendorRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Vendor, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1;`
	v, err := scanVendor(ex.QueryRow(ctx, sql, id))
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("FindByID vendor: %w", err)
	}
	return v, nil
}

func (r *VendorRepo) Save(ctx context.Context, tx repository.Tx, v *model.Vendor) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO vendors (id, owner_id, status, plan_key, price_id,
                     vendor_onboarding_completed, terms_accepted_at, compliance_acknowledged_at,
                     product_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE
  SET status                      = EXCLUDED.status,
      plan_key                    = EXCLUDED.plan_key,
      price_id                    = EXCLUDED.price_id,
      vendor_onboarding_completed = EXCLUDED.vendor_onboarding_completed,
      terms_accepted_at           = EXCLUDED.terms_accepted_at,
      compliance_acknowledged_at  = EXCLUDED.compliance_acknowledged_at,
      product_count               = EXCLUDED.product_count;
`
	_, err = ex.Exec(ctx, sql,
		v.ID, v.OwnerID, v.Status, v.PlanKey, v.PriceID,
		v.OnboardingCompletedAt, v.TermsAcceptedAt, v.ComplianceAcknowledgedAt,
		v.ProductCount, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Save vendor: %w", err)
	}
	return nil
}
