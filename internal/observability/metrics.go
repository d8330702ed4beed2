package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	Requests        *prometheus.CounterVec   // labels: view, outcome={ok,invalid,error}
	RequestDuration *prometheus.HistogramVec // labels: view
	FilteredRows    prometheus.Histogram
	TableRows       prometheus.Gauge

	// Payload cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Snapshot publishing metrics.
	SnapshotsPublished    prometheus.Counter
	SnapshotPublishErrors prometheus.Counter

	// Boundary proxy metrics.
	BoundaryFetchDuration prometheus.Histogram
	BoundaryFetchFailures prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.FilteredRows,
		m.TableRows,
		m.CacheLookups,
		m.SnapshotsPublished,
		m.SnapshotPublishErrors,
		m.BoundaryFetchDuration,
		m.BoundaryFetchFailures,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "requests_total",
			Help:      "Dashboard view requests by view and outcome.",
		}, []string{"view", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "request_duration_seconds",
			Help:      "Duration of one filter-aggregate-render cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"view"}),
		FilteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "filtered_rows",
			Help:      "Number of records matching a selection.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 8),
		}),
		TableRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dashboard",
			Name:      "table_rows",
			Help:      "Number of accident records loaded at startup.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "cache_lookups_total",
			Help:      "Payload cache lookups by result.",
		}, []string{"result"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "snapshots_published_total",
			Help:      "Payload snapshots written to the sink topic.",
		}),
		SnapshotPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "snapshot_publish_errors_total",
			Help:      "Payload snapshots that failed to publish.",
		}),
		BoundaryFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "boundary_fetch_duration_seconds",
			Help:      "Duration of county boundary downloads.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		BoundaryFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "boundary_fetch_failures_total",
			Help:      "Failed county boundary downloads.",
		}),
	}
}
