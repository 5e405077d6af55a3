package repository

import (
	"context"

	"marketplace-entitlements/internal/domain/model"
)

// LoyaltyLedgerRepository owns the append-only points ledger. Append computes
// BalanceAfter atomically under a per-user lock and returns
// domain.ErrInsufficientPoints when a delta would drive the balance negative;
// it never clamps.
type LoyaltyLedgerRepository interface {
	Append(ctx context.Context, tx Tx, entry *model.LedgerEntry) error
	Balance(ctx context.Context, tx Tx, userID string) (int64, error)
	History(ctx context.Context, tx Tx, userID string, limit int) ([]*model.LedgerEntry, error)
}

// ReferralCodeRepository stores the per-user referral code. Ensure is
// idempotent: when a code already exists for the user, the stored code is
// returned and the candidate discarded.
type ReferralCodeRepository interface {
	Ensure(ctx context.Context, tx Tx, userID, candidate string) (string, error)
	FindOwner(ctx context.Context, tx Tx, code string) (string, error)
}
