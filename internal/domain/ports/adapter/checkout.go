package adapter

import (
	"context"
	"time"
)

// CheckoutParams describes one checkout session to be created at the payments
// provider. Success/cancel URLs are always constructed server-side.
type CheckoutParams struct {
	PriceID           string
	CustomerEmail     string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
}

// CheckoutSession is the provider's session handle the caller redirects to.
type CheckoutSession struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

// CheckoutGateway abstracts the payments provider's hosted checkout. This is
// the only payments-API call surface in the service; entitlement itself is
// always derived from the cached subscription row, never from live API calls.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
}
