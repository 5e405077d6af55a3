package repository

import (
	"context"

	"marketplace-entitlements/internal/domain/model"
)

// VendorRepository reads vendor account rows. FindByOwner returns
// domain.ErrNotFound when the user has no vendor account.
type VendorRepository interface {
	FindByOwner(ctx context.Context, tx Tx, ownerID string) (*model.Vendor, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Vendor, error)
	Save(ctx context.Context, tx Tx, v *model.Vendor) error
}
