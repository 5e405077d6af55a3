package model

import (
	"math"
	"time"

	"marketplace-entitlements/internal/domain"
)

// LedgerEntryKind classifies a loyalty ledger delta.
type LedgerEntryKind string

const (
	LedgerEntryPurchaseAward LedgerEntryKind = "purchase_award"
	LedgerEntryReferralBonus LedgerEntryKind = "referral_bonus"
	LedgerEntryRedemption    LedgerEntryKind = "redemption"
	LedgerEntryAdjustment    LedgerEntryKind = "adjustment"
)

// LedgerEntry is one append-only loyalty ledger row. Points is the signed
// delta (negative for redemptions); BalanceAfter is the running balance and is
// computed by the store inside the same transaction that appends the row.
type LedgerEntry struct {
	ID           string
	UserID       string
	Kind         LedgerEntryKind
	Points       int64
	BalanceAfter int64
	Reference    string
	CreatedAt    time.Time
}

func (e *LedgerEntry) IsZero() bool { return e == nil || e.ID == "" }

// NewLedgerEntry validates and constructs a ledger entry. Redemptions must
// carry a negative delta, everything else a non-negative one.
func NewLedgerEntry(id, userID string, kind LedgerEntryKind, points int64, reference string) (*LedgerEntry, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	switch kind {
	case LedgerEntryRedemption:
		if points >= 0 {
			return nil, domain.ErrInvalidArgument
		}
	case LedgerEntryPurchaseAward, LedgerEntryReferralBonus:
		if points < 0 {
			return nil, domain.ErrInvalidArgument
		}
	case LedgerEntryAdjustment:
		// adjustments may go either way
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &LedgerEntry{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		Points:    points,
		Reference: reference,
		CreatedAt: time.Now(),
	}, nil
}

// CalculatePurchasePoints converts a purchase amount into awarded points: one
// base point per whole currency unit spent, scaled by the tier multiplier and
// rounded. Never negative; a zero amount always yields zero points.
func CalculatePurchasePoints(amountCents int64, multiplier float64) int64 {
	if amountCents <= 0 || multiplier <= 0 {
		return 0
	}
	base := amountCents / 100
	pts := int64(math.Round(float64(base) * multiplier))
	if pts < 0 {
		return 0
	}
	return pts
}
