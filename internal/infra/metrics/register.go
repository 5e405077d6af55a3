package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registry struct {
	sync.Once
	pending []prometheus.Collector
}

// register queues collectors declared by the per-area files at init time.
func register(cs ...prometheus.Collector) {
	registry.pending = append(registry.pending, cs...)
}

// MustRegister installs every queued collector into the default Prometheus
// registry. Safe to call more than once; only the first call registers.
func MustRegister() {
	registry.Do(func() {
		prometheus.MustRegister(registry.pending...)
	})
}
