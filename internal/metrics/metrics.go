// Package metrics counts what a redaction run did and can expose the counters
// over HTTP while the run is in progress.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus instruments of one run. Each Metrics owns its
// registry so tests and repeated runs do not collide.
type Metrics struct {
	Registry        *prometheus.Registry
	Processed       prometheus.Counter
	RewriteFailures prometheus.Counter
	RewriteDuration prometheus.Histogram
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Processed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Records written to the output stream.",
		}),
		RewriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrite_failures_total",
			Help:      "Oracle calls that failed and fell back to the original head.",
		}),
		RewriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rewrite_duration_seconds",
			Help:      "Latency of oracle calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}),
	}
	reg.MustRegister(m.Processed, m.RewriteFailures, m.RewriteDuration)
	return m
}

func (m *Metrics) ObserveRewrite(d time.Duration, failed bool) {
	m.RewriteDuration.Observe(d.Seconds())
	if failed {
		m.RewriteFailures.Inc()
	}
}

func (m *Metrics) RecordWritten() {
	m.Processed.Inc()
}
