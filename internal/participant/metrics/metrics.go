package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for audit log reconstruction.
type Metrics struct {
	// Reconstruction latency by entity kind
	BuildLatency *prometheus.HistogramVec

	// Cache hits and misses by entity kind
	CacheOutcome *prometheus.CounterVec

	// Entries produced per reconstruction by entity kind
	EntryCount *prometheus.HistogramVec
}

// New creates a new Metrics instance with all audit log metrics registered.
func New() *Metrics {
	return &Metrics{
		BuildLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "markpart_auditlog_build_duration_seconds",
			Help:    "Duration of audit log reconstruction by entity kind",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"entity"}), // entity: "actor", "organization", "user", "user_role", ...

		CacheOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "markpart_auditlog_cache_total",
			Help: "Audit log cache hits and misses by entity kind",
		}, []string{"entity", "outcome"}),

		EntryCount: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "markpart_auditlog_entries",
			Help:    "Number of entries produced per reconstruction",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"entity"}),
	}
}

// ObserveBuild records one reconstruction: its duration and its entry count.
func (m *Metrics) ObserveBuild(entity string, d time.Duration, entries int) {
	if m != nil {
		m.BuildLatency.WithLabelValues(entity).Observe(d.Seconds())
		m.EntryCount.WithLabelValues(entity).Observe(float64(entries))
	}
}

// IncrementCache records a cache hit or miss.
func (m *Metrics) IncrementCache(entity, outcome string) {
	if m != nil {
		m.CacheOutcome.WithLabelValues(entity, outcome).Inc()
	}
}
