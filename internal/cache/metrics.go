package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics observes engine activity. All methods are nil-safe so the engine
// can run without a registry.
type Metrics struct {
	requests      *prometheus.CounterVec
	dedupHits     prometheus.Counter
	invalidations prometheus.Counter
	refetches     prometheus.Counter
}

// NewMetrics builds and registers the engine collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bankclient",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Completed network operations by family, endpoint and outcome.",
		}, []string{"family", "endpoint", "outcome"}),
		dedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bankclient",
			Subsystem: "cache",
			Name:      "dedup_hits_total",
			Help:      "Subscriptions that attached to an already in-flight call.",
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bankclient",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache entries invalidated by tag.",
		}),
		refetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bankclient",
			Subsystem: "cache",
			Name:      "refetches_total",
			Help:      "Invalidation-triggered re-executions of subscribed queries.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.dedupHits, m.invalidations, m.refetches)
	}
	return m
}

func (m *Metrics) observeRequest(family, endpoint string, failed bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if failed {
		outcome = "error"
	}
	m.requests.WithLabelValues(family, endpoint, outcome).Inc()
}

func (m *Metrics) observeDedupHit() {
	if m == nil {
		return
	}
	m.dedupHits.Inc()
}

func (m *Metrics) observeInvalidation() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

func (m *Metrics) observeRefetch() {
	if m == nil {
		return
	}
	m.refetches.Inc()
}
