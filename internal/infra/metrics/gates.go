package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(gateDecisionsTotal)
}

var gateDecisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gate_decisions_total",
		Help: "Route gate verdicts by family and outcome.",
	},
	[]string{"family", "outcome"}, // outcome: allow|redirect
)

func IncGateDecision(family, outcome string) {
	gateDecisionsTotal.WithLabelValues(family, outcome).Inc()
}
