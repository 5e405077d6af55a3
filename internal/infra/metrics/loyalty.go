package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		pointsAwardedTotal,
		pointsRedeemedTotal,
		redemptionsRejectedTotal,
	)
}

var (
	pointsAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_points_awarded_total",
			Help: "Loyalty points credited, by ledger entry kind.",
		},
		[]string{"kind"},
	)

	pointsRedeemedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_points_redeemed_total",
			Help: "Loyalty points spent via redemptions.",
		},
	)

	redemptionsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_redemptions_rejected_total",
			Help: "Redemption attempts rejected for exceeding the balance.",
		},
	)
)

func AddPointsAwarded(kind string, points int64) {
	pointsAwardedTotal.WithLabelValues(kind).Add(float64(points))
}

func AddPointsRedeemed(points int64) {
	pointsRedeemedTotal.Add(float64(points))
}

func IncRedemptionRejected() {
	redemptionsRejectedTotal.Inc()
}
