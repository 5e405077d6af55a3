package repository

import (
	"context"

	"marketplace-entitlements/internal/domain/model"
)

// VerificationRepository stores age/ID verification attempts. Multiple rows
// per user are expected; FindLatestByUser returns domain.ErrNotFound when the
// user has never attempted verification.
type VerificationRepository interface {
	Save(ctx context.Context, tx Tx, rec *model.VerificationRecord) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.VerificationRecord, error)
	FindLatestByUser(ctx context.Context, tx Tx, userID string) (*model.VerificationRecord, error)
	ListByStatus(ctx context.Context, tx Tx, status model.VerificationStatus, limit int) ([]*model.VerificationRecord, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.VerificationStatus]int, error)
}
