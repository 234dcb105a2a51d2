// Package metrics exposes Prometheus instrumentation for the risk board.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	views       *prometheus.CounterVec
	exports     prometheus.Counter
	reloads     *prometheus.CounterVec
	applyTime   prometheus.Histogram
	catalogRows prometheus.Gauge
	rateLimited prometheus.Counter
}

// New creates a registry with process and Go runtime collectors plus the
// risk board metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		views: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskboard",
			Name:      "views_total",
			Help:      "Table views computed, by endpoint.",
		}, []string{"endpoint"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskboard",
			Name:      "exports_total",
			Help:      "CSV exports served.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskboard",
			Name:      "catalog_reloads_total",
			Help:      "Catalogue reloads, by result.",
		}, []string{"result"}),
		applyTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riskboard",
			Name:      "apply_duration_seconds",
			Help:      "Time spent filtering, sorting and highlighting a view.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		}),
		catalogRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riskboard",
			Name:      "catalog_rows",
			Help:      "Rows in the active catalogue table.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riskboard",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		m.views, m.exports, m.reloads, m.applyTime, m.catalogRows, m.rateLimited,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveView records one computed view and how long it took.
// A nil receiver is a no-op so callers can run without metrics.
func (m *Metrics) ObserveView(endpoint string, took time.Duration) {
	if m == nil {
		return
	}
	m.views.WithLabelValues(endpoint).Inc()
	m.applyTime.Observe(took.Seconds())
}

// IncExport counts a served CSV export.
func (m *Metrics) IncExport() {
	if m == nil {
		return
	}
	m.exports.Inc()
}

// IncRateLimited counts a rejected request.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// CatalogLoaded records a successful (re)load of rows rows.
func (m *Metrics) CatalogLoaded(rows int) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.catalogRows.Set(float64(rows))
}

// CatalogFailed records a failed reload.
func (m *Metrics) CatalogFailed() {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues("error").Inc()
}
