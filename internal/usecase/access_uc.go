package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/config"
	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/repository"
	"marketplace-entitlements/internal/infra/logging"
	"marketplace-entitlements/internal/infra/metrics"
)

// AccessUseCase resolves consumer and vendor entitlement verdicts.
//
// The admin allow-list is checked first and short-circuits without touching
// the store: it is an explicit override, not a fallback. Store reads go
// through the caller-scoped repository; on infrastructure failure they are
// retried exactly once via the elevated (service-role) repository and then
// propagated. Absence of a row is a valid negative result, never an error.
type AccessUseCase struct {
	allowlist       config.AdminAllowlist
	subs            repository.SubscriptionRepository
	subsElevated    repository.SubscriptionRepository
	vendors         repository.VendorRepository
	vendorsElevated repository.VendorRepository
	log             *zerolog.Logger
}

// NewAccessUseCase constructs the resolver. The elevated repositories may be
// nil, in which case the retry path is skipped.
func NewAccessUseCase(
	allowlist config.AdminAllowlist,
	subs repository.SubscriptionRepository,
	subsElevated repository.SubscriptionRepository,
	vendors repository.VendorRepository,
	vendorsElevated repository.VendorRepository,
	logger *zerolog.Logger,
) *AccessUseCase {
	l := logger.With().Str("component", "AccessUC").Logger()
	return &AccessUseCase{
		allowlist:       allowlist,
		subs:            subs,
		subsElevated:    subsElevated,
		vendors:         vendors,
		vendorsElevated: vendorsElevated,
		log:             &l,
	}
}

// IsAdminEmail reports whether the email matches the allow-list (exact match
// or domain suffix, case-insensitive, whitespace-trimmed).
func (uc *AccessUseCase) IsAdminEmail(email string) bool {
	return uc.allowlist.Matches(email)
}

// ConsumerAccessStatus resolves a consumer's entitlement.
func (uc *AccessUseCase) ConsumerAccessStatus(ctx context.Context, userID, email string) (*model.ConsumerAccess, error) {
	defer logging.TraceDuration(uc.log, "AccessUC.ConsumerAccessStatus")()

	if uc.IsAdminEmail(email) {
		metrics.IncAccessCheck("consumer", "admin")
		return model.AdminConsumerAccess(), nil
	}
	if userID == "" {
		metrics.IncAccessCheck("consumer", "unsubscribed")
		return &model.ConsumerAccess{}, nil
	}

	sub, err := uc.fetchSubscription(ctx, userID)
	if err != nil {
		metrics.IncAccessCheck("consumer", "error")
		return nil, fmt.Errorf("consumer access for %s: %w", userID, err)
	}
	if sub == nil {
		metrics.IncAccessCheck("consumer", "unsubscribed")
		return &model.ConsumerAccess{}, nil
	}

	out := &model.ConsumerAccess{
		IsSubscribed: sub.Status.IsEntitled(),
		Status:       sub.Status,
		PlanKey:      sub.PlanKey,
	}
	if out.IsSubscribed {
		metrics.IncAccessCheck("consumer", "subscribed")
	} else {
		metrics.IncAccessCheck("consumer", "unsubscribed")
	}
	return out, nil
}

// VendorAccessStatus resolves a vendor's entitlement. A row owned by a
// different user is treated as nonexistent.
func (uc *AccessUseCase) VendorAccessStatus(ctx context.Context, userID, email string) (*model.VendorAccess, error) {
	defer logging.TraceDuration(uc.log, "AccessUC.VendorAccessStatus")()

	if uc.IsAdminEmail(email) {
		metrics.IncAccessCheck("vendor", "admin")
		return model.AdminVendorAccess(), nil
	}
	if userID == "" {
		metrics.IncAccessCheck("vendor", "unsubscribed")
		return &model.VendorAccess{}, nil
	}

	v, err := uc.fetchVendor(ctx, userID)
	if err != nil {
		metrics.IncAccessCheck("vendor", "error")
		return nil, fmt.Errorf("vendor access for %s: %w", userID, err)
	}
	if v == nil || !v.OwnedBy(userID) {
		metrics.IncAccessCheck("vendor", "unsubscribed")
		return &model.VendorAccess{}, nil
	}

	out := &model.VendorAccess{
		IsVendor:     true,
		IsSubscribed: v.Status.IsEntitled(),
		Status:       v.Status,
		PlanKey:      v.PlanKey,
		VendorID:     v.ID,
	}
	if out.IsSubscribed {
		metrics.IncAccessCheck("vendor", "subscribed")
	} else {
		metrics.IncAccessCheck("vendor", "unsubscribed")
	}
	return out, nil
}

// fetchSubscription returns nil (no error) when the user has no row.
func (uc *AccessUseCase) fetchSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := uc.subs.FindByUser(ctx, nil, userID)
	if err == nil {
		return sub, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if uc.subsElevated == nil {
		return nil, err
	}
	// Single retry via elevated credentials; the only resilience behavior here.
	metrics.IncAccessRetry("consumer")
	uc.log.Warn().Err(err).Str("user_id", userID).Msg("subscription lookup failed, retrying elevated")
	sub, err = uc.subsElevated.FindByUser(ctx, nil, userID)
	if err == nil {
		return sub, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

func (uc *AccessUseCase) fetchVendor(ctx context.Context, ownerID string) (*model.Vendor, error) {
	v, err := uc.vendors.FindByOwner(ctx, nil, ownerID)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if uc.vendorsElevated == nil {
		return nil, err
	}
	metrics.IncAccessRetry("vendor")
	uc.log.Warn().Err(err).Str("user_id", ownerID).Msg("vendor lookup failed, retrying elevated")
	v, err = uc.vendorsElevated.FindByOwner(ctx, nil, ownerID)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}
