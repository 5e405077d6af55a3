package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/repository"
	"marketplace-entitlements/internal/infra/logging"
	"marketplace-entitlements/internal/infra/metrics"
)

// LoyaltyUseCase owns the points ledger and the referral program rules.
// Balance arithmetic is enforced by the ledger repository inside a single
// transaction; this layer only decides how many points an event is worth.
type LoyaltyUseCase struct {
	ledger        repository.LoyaltyLedgerRepository
	referrals     repository.ReferralCodeRepository
	access        *AccessUseCase
	consumerPlans *model.Catalog
	log           *zerolog.Logger
}

func NewLoyaltyUseCase(
	ledger repository.LoyaltyLedgerRepository,
	referrals repository.ReferralCodeRepository,
	access *AccessUseCase,
	consumerPlans *model.Catalog,
	logger *zerolog.Logger,
) *LoyaltyUseCase {
	l := logger.With().Str("component", "LoyaltyUC").Logger()
	return &LoyaltyUseCase{
		ledger:        ledger,
		referrals:     referrals,
		access:        access,
		consumerPlans: consumerPlans,
		log:           &l,
	}
}

// AwardPurchase converts a purchase into ledger points using the tier
// multiplier of the buyer's plan (1.0 when the plan is unknown). A purchase
// worth zero points writes nothing and returns nil.
func (uc *LoyaltyUseCase) AwardPurchase(ctx context.Context, userID string, amountCents int64, planKey, reference string) (*model.LedgerEntry, error) {
	defer logging.TraceDuration(uc.log, "LoyaltyUC.AwardPurchase")()
	if userID == "" || amountCents < 0 {
		return nil, domain.ErrInvalidArgument
	}

	multiplier := 1.0
	if planKey != "" && uc.consumerPlans != nil {
		if p, ok := uc.consumerPlans.ByKey(planKey); ok && p.LoyaltyMultiplier > 0 {
			multiplier = p.LoyaltyMultiplier
		}
	}
	points := model.CalculatePurchasePoints(amountCents, multiplier)
	if points == 0 {
		return nil, nil
	}

	entry, err := model.NewLedgerEntry(newEntryID(), userID, model.LedgerEntryPurchaseAward, points, reference)
	if err != nil {
		return nil, err
	}
	if err := uc.ledger.Append(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("award purchase: %w", err)
	}
	metrics.AddPointsAwarded(string(model.LedgerEntryPurchaseAward), points)
	return entry, nil
}

// Redeem spends points. The repository rejects (never clamps) a redemption
// that exceeds the current balance.
func (uc *LoyaltyUseCase) Redeem(ctx context.Context, userID string, points int64, reference string) (*model.LedgerEntry, error) {
	defer logging.TraceDuration(uc.log, "LoyaltyUC.Redeem")()
	if userID == "" || points <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	entry, err := model.NewLedgerEntry(newEntryID(), userID, model.LedgerEntryRedemption, -points, reference)
	if err != nil {
		return nil, err
	}
	if err := uc.ledger.Append(ctx, nil, entry); err != nil {
		if errors.Is(err, domain.ErrInsufficientPoints) {
			metrics.IncRedemptionRejected()
		}
		return nil, fmt.Errorf("redeem %d points: %w", points, err)
	}
	metrics.AddPointsRedeemed(points)
	return entry, nil
}

// Adjust applies a signed manual correction from the admin surface.
func (uc *LoyaltyUseCase) Adjust(ctx context.Context, userID string, points int64, reference string) (*model.LedgerEntry, error) {
	if userID == "" || points == 0 {
		return nil, domain.ErrInvalidArgument
	}
	entry, err := model.NewLedgerEntry(newEntryID(), userID, model.LedgerEntryAdjustment, points, reference)
	if err != nil {
		return nil, err
	}
	if err := uc.ledger.Append(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("adjust points: %w", err)
	}
	return entry, nil
}

// Balance returns the user's current point balance (zero for unknown users).
func (uc *LoyaltyUseCase) Balance(ctx context.Context, userID string) (int64, error) {
	return uc.ledger.Balance(ctx, nil, userID)
}

// History returns the newest ledger entries first.
func (uc *LoyaltyUseCase) History(ctx context.Context, userID string, limit int) ([]*model.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.ledger.History(ctx, nil, userID, limit)
}

// EnsureReferralCode returns the user's referral code, minting one on first
// use. Idempotent: the stored code always wins over a fresh candidate. A
// candidate colliding with another user's code is retried once with a new
// candidate before giving up.
func (uc *LoyaltyUseCase) EnsureReferralCode(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrInvalidArgument
	}
	code, err := uc.referrals.Ensure(ctx, nil, userID, newReferralCode())
	if errors.Is(err, domain.ErrAlreadyExists) {
		uc.log.Warn().Str("user_id", userID).Msg("referral code collision, retrying once")
		code, err = uc.referrals.Ensure(ctx, nil, userID, newReferralCode())
	}
	if err != nil {
		return "", fmt.Errorf("ensure referral code: %w", err)
	}
	return code, nil
}

// ReferralLinkEligible resolves the three eligibility inputs for the caller
// and applies the rule: admins, subscribed vendors, and entry-tier consumers.
func (uc *LoyaltyUseCase) ReferralLinkEligible(ctx context.Context, id model.Identity) (bool, error) {
	if uc.access.IsAdminEmail(id.Email) {
		return true, nil
	}
	consumer, err := uc.access.ConsumerAccessStatus(ctx, id.UserID, id.Email)
	if err != nil {
		return false, err
	}
	vendor, err := uc.access.VendorAccessStatus(ctx, id.UserID, id.Email)
	if err != nil {
		return false, err
	}
	return model.IsReferralLinkEligible(model.ReferralEligibility{
		IsAdmin:            consumer.IsAdmin,
		ConsumerPlanKey:    consumer.PlanKey,
		IsVendorSubscribed: vendor.IsSubscribed,
	}), nil
}

// AwardReferralBonus credits the referrer when a referred signup converts.
// Starter-tier referrers receive their tier's entitlement, everyone else the
// flat default bonus.
func (uc *LoyaltyUseCase) AwardReferralBonus(ctx context.Context, referrerID, referrerPlanKey, referredID string) (*model.LedgerEntry, error) {
	defer logging.TraceDuration(uc.log, "LoyaltyUC.AwardReferralBonus")()
	if referrerID == "" || referredID == "" {
		return nil, domain.ErrInvalidArgument
	}
	points := model.ReferralRewardPoints(referrerPlanKey, uc.consumerPlans)
	entry, err := model.NewLedgerEntry(newEntryID(), referrerID, model.LedgerEntryReferralBonus, points, "referred:"+referredID)
	if err != nil {
		return nil, err
	}
	if err := uc.ledger.Append(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("award referral bonus: %w", err)
	}
	metrics.AddPointsAwarded(string(model.LedgerEntryReferralBonus), points)
	return entry, nil
}

func newEntryID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Referral codes are short, URL-safe, and unique via the ULID entropy.
func newReferralCode() string {
	id := ulid.MustNew(ulid.Now(), rand.Reader).String()
	return "REF-" + id[len(id)-8:]
}
