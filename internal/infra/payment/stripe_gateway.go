package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"marketplace-entitlements/internal/domain/ports/adapter"
)

// Ensure interface compliance
var _ adapter.CheckoutGateway = (*StripeGateway)(nil)

// StripeGateway builds hosted Checkout sessions in subscription mode. The
// create function is swappable so tests never hit the network.
type StripeGateway struct {
	create func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	log    *zerolog.Logger
}

func NewStripeGateway(secretKey string, logger *zerolog.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	stripe.Key = secretKey
	l := logger.With().Str("component", "StripeGateway").Logger()
	return &StripeGateway{create: session.New, log: &l}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p adapter.CheckoutParams) (*adapter.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(p.PriceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.ClientReferenceID),
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	params.Context = ctx

	s, err := g.create(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &adapter.CheckoutSession{
		ID:        s.ID,
		URL:       s.URL,
		ExpiresAt: time.Unix(s.ExpiresAt, 0),
	}, nil
}
