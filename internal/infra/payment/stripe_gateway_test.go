package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"

	"marketplace-entitlements/internal/domain/ports/adapter"
)

func newTestGateway(t *testing.T, create func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)) *StripeGateway {
	t.Helper()
	logger := zerolog.Nop()
	g, err := NewStripeGateway("sk_test_123", &logger)
	require.NoError(t, err)
	g.create = create
	return g
}

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewStripeGateway("", &logger)
	require.Error(t, err)
}

func TestCreateCheckoutSession_ParamMapping(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	g := newTestGateway(t, func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		captured = params
		return &stripe.CheckoutSession{
			ID:        "cs_123",
			URL:       "https://checkout.stripe.com/pay/cs_123",
			ExpiresAt: 1700000000,
		}, nil
	})

	sess, err := g.CreateCheckoutSession(context.Background(), adapter.CheckoutParams{
		PriceID:           "price_abc",
		CustomerEmail:     "buyer@example.com",
		ClientReferenceID: "u-1",
		SuccessURL:        "https://app.example.com/billing/success",
		CancelURL:         "https://app.example.com/billing/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_123", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", sess.URL)
	assert.Equal(t, int64(1700000000), sess.ExpiresAt.Unix())

	require.NotNil(t, captured)
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), stripe.StringValue(captured.Mode))
	require.Len(t, captured.LineItems, 1)
	assert.Equal(t, "price_abc", stripe.StringValue(captured.LineItems[0].Price))
	assert.Equal(t, int64(1), stripe.Int64Value(captured.LineItems[0].Quantity))
	assert.Equal(t, "buyer@example.com", stripe.StringValue(captured.CustomerEmail))
	assert.Equal(t, "u-1", stripe.StringValue(captured.ClientReferenceID))
	assert.Equal(t, "https://app.example.com/billing/success", stripe.StringValue(captured.SuccessURL))
}

func TestCreateCheckoutSession_OmitsEmptyEmail(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	g := newTestGateway(t, func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		captured = params
		return &stripe.CheckoutSession{ID: "cs_1"}, nil
	})

	_, err := g.CreateCheckoutSession(context.Background(), adapter.CheckoutParams{PriceID: "price_abc"})
	require.NoError(t, err)
	assert.Nil(t, captured.CustomerEmail)
}

func TestCreateCheckoutSession_WrapsError(t *testing.T) {
	boom := errors.New("api unreachable")
	g := newTestGateway(t, func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, boom
	})

	_, err := g.CreateCheckoutSession(context.Background(), adapter.CheckoutParams{PriceID: "price_abc"})
	require.ErrorIs(t, err, boom)
}
