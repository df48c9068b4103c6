package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "abcalc"

// Metrics are the calculator counters exported on /metrics.
type Metrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	calculationsTotal   *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	monteCarloSamples   prometheus.Counter
	significantResults  *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. Tests pass a fresh prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		calculationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Calculations by kind and outcome (ok, invalid, error)",
			},
			[]string{"kind", "outcome"},
		),
		calculationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "calculation_duration_seconds",
				Help:      "Time spent inside the calculators",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"kind"},
		),
		monteCarloSamples: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "monte_carlo_samples_total",
				Help:      "Posterior draws performed by the Bayesian estimator",
			},
		),
		significantResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "significance_verdicts_total",
				Help:      "Significance verdicts returned, by tail",
			},
			[]string{"tail", "significant"},
		),
	}
}
