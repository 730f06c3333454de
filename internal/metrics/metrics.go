// Package metrics exposes the dispatcher's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch holds the per-dispatcher instruments. Instances are
// registered against an explicit Registerer, never the global default,
// so tests and embedded dispatchers stay isolated.
type Dispatch struct {
	Total    *prometheus.CounterVec
	InFlight prometheus.Gauge
	Duration prometheus.Histogram
}

// Outcome label values for the dispatch counter.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
	OutcomePending  = "pending"
)

// NewDispatch creates and registers the dispatch instruments.
func NewDispatch(reg prometheus.Registerer) *Dispatch {
	m := &Dispatch{
		Total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "actionhub",
			Name:      "dispatch_total",
			Help:      "Dispatch attempts by action key and outcome.",
		}, []string{"key", "outcome"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "actionhub",
			Name:      "dispatch_in_flight",
			Help:      "Invocations currently running.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "actionhub",
			Name:      "dispatch_duration_seconds",
			Help:      "Wall time of completed dispatches.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Total, m.InFlight, m.Duration)
	return m
}

// Observe records one completed dispatch.
func (m *Dispatch) Observe(key, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Total.WithLabelValues(key, outcome).Inc()
	m.Duration.Observe(seconds)
}
