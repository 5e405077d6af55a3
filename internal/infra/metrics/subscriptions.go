package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"marketplace-entitlements/internal/domain/model"
)

func init() {
	register(
		subscriptionsTotal,
		verificationsTotal,
		verificationReviewsTotal,
	)
}

var (
	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of cached subscription rows by status.",
		},
		[]string{"status"},
	)

	verificationsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "verifications_total",
			Help: "Current number of verification attempts by status.",
		},
		[]string{"status"},
	)

	verificationReviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_reviews_total",
			Help: "Moderation decisions on verification attempts.",
		},
		[]string{"decision"}, // approved|rejected
	)
)

func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	for status, count := range counts {
		subscriptionsTotal.WithLabelValues(string(status)).Set(float64(count))
	}
}

func SetVerificationsTotal(counts map[model.VerificationStatus]int) {
	for status, count := range counts {
		verificationsTotal.WithLabelValues(string(status)).Set(float64(count))
	}
}

func IncVerificationReview(decision string) {
	verificationReviewsTotal.WithLabelValues(decision).Inc()
}
