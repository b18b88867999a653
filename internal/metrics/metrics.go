// Package metrics exposes analysis and batch counters in the Prometheus
// text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trustlens"

// Metrics owns a private registry so several services can coexist in one
// process (tests do this). A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	analyses *prometheus.CounterVec
	degraded *prometheus.CounterVec
	duration prometheus.Histogram
	scores   prometheus.Histogram
	batches  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by risk tier.",
		}, []string{"tier"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_signals_total",
			Help:      "Signals that fell back to their fixed score.",
		}, []string{"signal"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one analysis including the page fetch.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Distribution of final trust scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Finished batch jobs by final status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.analyses, m.degraded, m.duration, m.scores, m.batches,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(tier string, score float64, degraded []string, took time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(tier).Inc()
	m.scores.Observe(score)
	m.duration.Observe(took.Seconds())
	for _, s := range degraded {
		m.degraded.WithLabelValues(s).Inc()
	}
}

func (m *Metrics) ObserveBatch(status string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(status).Inc()
}

// Handler serves the registry. With a nil receiver it answers 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and for callers adding their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
