package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fvi"

// Metrics holds the Prometheus counters, histograms, and gauges for the FVI service.
type Metrics struct {
	Calculations        *prometheus.CounterVec // labels: method={fuzzy,fallback}
	Score               prometheus.Histogram
	CalculationDuration prometheus.Histogram
	ModelReady          prometheus.Gauge

	// Upstream signal sources.
	UpstreamRequests *prometheus.CounterVec   // labels: source={weather,elevation,hydrology}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: source
	SignalFallbacks  *prometheus.CounterVec   // labels: source={weather,elevation,slope,hydrology}
	SignalCache      *prometheus.CounterVec   // labels: source, result={hit,miss}

	// Risk analysis and publishing.
	AnalysisRequests     *prometheus.CounterVec // labels: outcome={success,error,unavailable}
	AssessmentsPublished prometheus.Counter
	PublishErrors        prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Calculations,
		m.Score,
		m.CalculationDuration,
		m.ModelReady,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.SignalFallbacks,
		m.SignalCache,
		m.AnalysisRequests,
		m.AssessmentsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "FVI calculations by inference method.",
		}, []string{"method"}),
		Score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score",
			Help:      "Distribution of computed FVI scores.",
			Buckets:   []float64{10, 25, 35, 45, 55, 65, 75, 85, 95, 100},
		}),
		CalculationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Duration of a complete gather-infer-interpret cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ModelReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_ready",
			Help:      "1 once the fuzzy rule base has been built.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream signal requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		SignalFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signal_fallbacks_total",
			Help:      "Signals replaced by their static defaults, by source.",
		}, []string{"source"}),
		SignalCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signal_cache_total",
			Help:      "Signal cache lookups by source and result.",
		}, []string{"source", "result"}),
		AnalysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_requests_total",
			Help:      "Risk analysis requests by outcome.",
		}, []string{"outcome"}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_published_total",
			Help:      "Total assessments written to the assessment topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total assessments that could not be published.",
		}),
	}
}
