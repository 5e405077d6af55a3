package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/adapter"
	"marketplace-entitlements/internal/infra/logging"
	"marketplace-entitlements/internal/infra/metrics"
)

// CheckoutUseCase builds hosted checkout sessions for a plan key. Success and
// cancel URLs are constructed server-side from the dashboard base URL so the
// request body can never steer the redirect.
type CheckoutUseCase struct {
	consumerPlans *model.Catalog
	vendorPlans   *model.Catalog
	gateway       adapter.CheckoutGateway
	dashboardURL  string
	log           *zerolog.Logger
}

func NewCheckoutUseCase(
	consumerPlans, vendorPlans *model.Catalog,
	gateway adapter.CheckoutGateway,
	dashboardURL string,
	logger *zerolog.Logger,
) *CheckoutUseCase {
	l := logger.With().Str("component", "CheckoutUC").Logger()
	return &CheckoutUseCase{
		consumerPlans: consumerPlans,
		vendorPlans:   vendorPlans,
		gateway:       gateway,
		dashboardURL:  strings.TrimSuffix(dashboardURL, "/"),
		log:           &l,
	}
}

// ResolvePlan finds a plan key in either catalog.
func (uc *CheckoutUseCase) ResolvePlan(planKey string) (*model.Plan, error) {
	if p, ok := uc.consumerPlans.ByKey(planKey); ok {
		return p, nil
	}
	if p, ok := uc.vendorPlans.ByKey(planKey); ok {
		return p, nil
	}
	return nil, fmt.Errorf("plan %q: %w", planKey, domain.ErrUnknownPlan)
}

// CreateSession builds a checkout session for the authenticated caller.
func (uc *CheckoutUseCase) CreateSession(ctx context.Context, id model.Identity, planKey string) (*adapter.CheckoutSession, error) {
	defer logging.TraceDuration(uc.log, "CheckoutUC.CreateSession")()
	if !id.Authenticated() {
		return nil, domain.ErrInvalidArgument
	}
	plan, err := uc.ResolvePlan(planKey)
	if err != nil {
		return nil, err
	}

	sess, err := uc.gateway.CreateCheckoutSession(ctx, adapter.CheckoutParams{
		PriceID:           plan.PriceID,
		CustomerEmail:     id.Email,
		ClientReferenceID: id.UserID,
		SuccessURL:        uc.dashboardURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         uc.dashboardURL + "/billing/cancel",
	})
	if err != nil {
		metrics.IncCheckoutSession("error")
		return nil, fmt.Errorf("create checkout session for %s: %w", planKey, err)
	}
	metrics.IncCheckoutSession("created")
	uc.log.Info().Str("plan_key", planKey).Str("session_id", sess.ID).Msg("checkout session created")
	return sess, nil
}
