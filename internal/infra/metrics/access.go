package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		accessChecksTotal,
		accessRetriesTotal,
	)
}

var (
	accessChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_checks_total",
			Help: "Entitlement resolutions by family and verdict.",
		},
		[]string{"family", "result"}, // result: admin|subscribed|unsubscribed|error
	)

	accessRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_elevated_retries_total",
			Help: "Lookups retried once via the elevated repository.",
		},
		[]string{"family"},
	)
)

func IncAccessCheck(family, result string) {
	accessChecksTotal.WithLabelValues(family, result).Inc()
}

func IncAccessRetry(family string) {
	accessRetriesTotal.WithLabelValues(family).Inc()
}
