package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(checkoutSessionsTotal)
}

var checkoutSessionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_sessions_total",
		Help: "Checkout session builds by outcome.",
	},
	[]string{"outcome"}, // outcome: created|error
)

func IncCheckoutSession(outcome string) {
	checkoutSessionsTotal.WithLabelValues(outcome).Inc()
}
