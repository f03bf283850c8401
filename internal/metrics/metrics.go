// Package metrics exposes prometheus instrumentation for the HTTP API and
// the shipping calculator.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"shipping-rules/core/types"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Quote metrics
	QuotesTotal        *prometheus.CounterVec
	QuotePackageWeight prometheus.Histogram

	// Settings metrics
	SettingsUpdatesTotal *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg.
// A nil reg registers with the default prometheus registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "shipping_rules"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		QuotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quote",
				Name:      "total",
				Help:      "Total number of shipping quotes computed",
			},
			[]string{"method", "band"}, // band: flat, surcharged
		),
		QuotePackageWeight: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "quote",
				Name:      "package_weight_kg",
				Help:      "Total package weight per quote in kg",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 500},
			},
		),
		SettingsUpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "settings",
				Name:      "updates_total",
				Help:      "Total number of instance settings updates",
			},
			[]string{"result"}, // result: saved, rejected, failed
		),
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordQuote records a computed quote.
func (m *Metrics) RecordQuote(methodID string, quote types.Quote) {
	band := "surcharged"
	if quote.IsFlat() {
		band = "flat"
	}
	m.QuotesTotal.WithLabelValues(methodID, band).Inc()
	m.QuotePackageWeight.Observe(quote.TotalWeight.InexactFloat64())
}

// RecordSettingsUpdate records the outcome of a settings update.
func (m *Metrics) RecordSettingsUpdate(result string) {
	m.SettingsUpdatesTotal.WithLabelValues(result).Inc()
}
