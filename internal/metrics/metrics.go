// Package metrics exports provider call metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cryptofeed/internal/aggregate"
	"cryptofeed/internal/provider"
)

const namespace = "cryptofeed"

// Metrics implements aggregate.Recorder.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

var _ aggregate.Recorder = (*Metrics)(nil)

// New registers the collectors on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Provider calls by outcome; failures carry the failure kind.",
		}, []string{"provider", "capability", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Provider call latency including timeouts.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"provider", "capability"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_failures_total",
			Help:      "Fan-outs in which every provider failed.",
		}, []string{"capability"}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.duration, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveCall(p provider.ID, c aggregate.Capability, outcome string, d time.Duration) {
	m.calls.WithLabelValues(string(p), string(c), outcome).Inc()
	m.duration.WithLabelValues(string(p), string(c)).Observe(d.Seconds())
}

func (m *Metrics) ObserveAggregateFailure(c aggregate.Capability) {
	m.failures.WithLabelValues(string(c)).Inc()
}
