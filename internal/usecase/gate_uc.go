package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/repository"
	"marketplace-entitlements/internal/infra/metrics"
)

// Gate families evaluated by the API. Each family has its own terminal
// states but shares the unauthenticated -> onboarding -> allow shape.
const (
	GateFamilyConsumer = "consumer"
	GateFamilyVendor   = "vendor"
	GateFamilyCheckout = "checkout"
	GateFamilyMarket   = "market"
)

// GateUseCase evaluates the onboarding and market access gates. Deny is
// always a redirect value; errors are reserved for infrastructure failure,
// which fails closed at the HTTP layer.
type GateUseCase struct {
	access        *AccessUseCase
	profiles      repository.ProfileRepository
	vendors       repository.VendorRepository
	verifications repository.VerificationRepository
	log           *zerolog.Logger
}

func NewGateUseCase(
	access *AccessUseCase,
	profiles repository.ProfileRepository,
	vendors repository.VendorRepository,
	verifications repository.VerificationRepository,
	logger *zerolog.Logger,
) *GateUseCase {
	l := logger.With().Str("component", "GateUC").Logger()
	return &GateUseCase{
		access:        access,
		profiles:      profiles,
		vendors:       vendors,
		verifications: verifications,
		log:           &l,
	}
}

// Evaluate dispatches a gate family by name. The market family treats the
// gated flag as "content is age/ID-restricted".
func (uc *GateUseCase) Evaluate(ctx context.Context, family string, id model.Identity, gated bool) (model.GateResult, error) {
	switch family {
	case GateFamilyConsumer:
		return uc.ConsumerGate(ctx, id)
	case GateFamilyVendor:
		return uc.VendorGate(ctx, id)
	case GateFamilyCheckout:
		return uc.CheckoutGate(ctx, id)
	case GateFamilyMarket:
		return uc.MarketGate(ctx, id, gated)
	default:
		return model.GateResult{}, fmt.Errorf("gate family %q: %w", family, domain.ErrInvalidArgument)
	}
}

// ConsumerGate guards the consumer area: login, then completed onboarding,
// then an entitled subscription. Admin short-circuits to allow.
func (uc *GateUseCase) ConsumerGate(ctx context.Context, id model.Identity) (model.GateResult, error) {
	if !id.Authenticated() {
		return uc.decided(GateFamilyConsumer, model.GateRedirect(model.RouteLogin)), nil
	}
	access, err := uc.access.ConsumerAccessStatus(ctx, id.UserID, id.Email)
	if err != nil {
		return model.GateResult{}, err
	}
	if access.IsAdmin {
		return uc.decided(GateFamilyConsumer, model.GateAllow()), nil
	}

	profile, err := uc.profiles.FindByUser(ctx, nil, id.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return model.GateResult{}, fmt.Errorf("consumer gate profile: %w", err)
	}
	if !profile.OnboardingComplete() {
		return uc.decided(GateFamilyConsumer, model.GateRedirect(model.RouteOnboarding)), nil
	}
	if !access.IsSubscribed {
		return uc.decided(GateFamilyConsumer, model.GateRedirect(model.RoutePlans)), nil
	}
	return uc.decided(GateFamilyConsumer, model.GateAllow()), nil
}

// VendorGate guards the vendor area. Completeness requires an owned vendor
// row with all three completion marks; partial completion is no completion.
func (uc *GateUseCase) VendorGate(ctx context.Context, id model.Identity) (model.GateResult, error) {
	if !id.Authenticated() {
		return uc.decided(GateFamilyVendor, model.GateRedirect(model.RouteLogin)), nil
	}
	if uc.access.IsAdminEmail(id.Email) {
		return uc.decided(GateFamilyVendor, model.GateAllow()), nil
	}

	v, err := uc.vendors.FindByOwner(ctx, nil, id.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return model.GateResult{}, fmt.Errorf("vendor gate lookup: %w", err)
	}
	if v.IsZero() || !v.OwnedBy(id.UserID) || !v.OnboardingComplete() {
		return uc.decided(GateFamilyVendor, model.GateRedirect(model.RouteVendorOnboarding)), nil
	}
	if !v.Status.IsEntitled() {
		return uc.decided(GateFamilyVendor, model.GateRedirect(model.RouteVendorPlans)), nil
	}
	return uc.decided(GateFamilyVendor, model.GateAllow()), nil
}

// CheckoutGate only requires an authenticated caller.
func (uc *GateUseCase) CheckoutGate(ctx context.Context, id model.Identity) (model.GateResult, error) {
	if !id.Authenticated() {
		return uc.decided(GateFamilyCheckout, model.GateRedirect(model.RouteLogin)), nil
	}
	return uc.decided(GateFamilyCheckout, model.GateAllow()), nil
}

// MarketGate allows non-gated content unconditionally. Gated content requires
// the caller's most recent verification attempt to be approved; pending and
// rejected both deny.
func (uc *GateUseCase) MarketGate(ctx context.Context, id model.Identity, gated bool) (model.GateResult, error) {
	if !gated {
		return uc.decided(GateFamilyMarket, model.GateAllow()), nil
	}
	if !id.Authenticated() {
		return uc.decided(GateFamilyMarket, model.GateRedirect(model.RouteLogin)), nil
	}
	if uc.access.IsAdminEmail(id.Email) {
		return uc.decided(GateFamilyMarket, model.GateAllow()), nil
	}

	rec, err := uc.verifications.FindLatestByUser(ctx, nil, id.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return model.GateResult{}, fmt.Errorf("market gate verification: %w", err)
	}
	if rec != nil && rec.Status == model.VerificationStatusApproved {
		return uc.decided(GateFamilyMarket, model.GateAllow()), nil
	}
	return uc.decided(GateFamilyMarket, model.GateRedirect(model.RouteVerificationStart)), nil
}

func (uc *GateUseCase) decided(family string, res model.GateResult) model.GateResult {
	outcome := "redirect"
	if res.Allow {
		outcome = "allow"
	}
	metrics.IncGateDecision(family, outcome)
	return res
}
