package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// monitoring backend.
type Metrics struct {
	ChartRequests       *prometheus.CounterVec // labels: granularity={raw,hourly,daily}
	StaleChartResponses prometheus.Counter
	AggregationDuration prometheus.Histogram

	BridgeRequests *prometheus.CounterVec // labels: endpoint, outcome={success,error}

	RefreshRuns      prometheus.Counter
	ForecastsDeleted prometheus.Counter
}

// NewMetrics creates and registers all backend metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ChartRequests,
		m.StaleChartResponses,
		m.AggregationDuration,
		m.BridgeRequests,
		m.RefreshRuns,
		m.ForecastsDeleted,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ChartRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swfm",
			Name:      "chart_requests_total",
			Help:      "Chart series builds by display granularity.",
		}, []string{"granularity"}),
		StaleChartResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swfm",
			Name:      "stale_chart_responses_total",
			Help:      "Chart fetches discarded because a newer fetch superseded them.",
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swfm",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of measurement aggregation per chart build.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		BridgeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swfm",
			Name:      "bridge_requests_total",
			Help:      "Forecast service requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RefreshRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swfm",
			Name:      "refresh_runs_total",
			Help:      "Completed periodic refresh cycles.",
		}),
		ForecastsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swfm",
			Name:      "forecasts_deleted_total",
			Help:      "Stale forecast rows removed by the cleanup janitor.",
		}),
	}
}
