// Package metrics exposes Prometheus counters for renders and the HTTP API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	rendersTotal   *prometheus.CounterVec
	renderSeconds  *prometheus.HistogramVec
	downgrades     prometheus.Counter
	layoutWarnings prometheus.Counter
	captionPages   prometheus.Counter
	activeRenders  prometheus.Gauge
	requestsTotal  *prometheus.CounterVec
	errorsTotal    prometheus.Counter
}

// New creates and registers the stackreel collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		rendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stackreel_renders_total",
			Help: "Renders finished, by final status",
		}, []string{"status"}),
		renderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stackreel_render_stage_seconds",
			Help:    "Wall time spent per render stage",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 900},
		}, []string{"stage"}),
		downgrades: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stackreel_resolution_downgrades_total",
			Help: "Plans whose resolution was lowered to fit a small source",
		}),
		layoutWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stackreel_layout_warnings_total",
			Help: "Non-fatal warnings raised while planning layouts",
		}),
		captionPages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stackreel_caption_pages_total",
			Help: "Caption pages produced by the paginator",
		}),
		activeRenders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stackreel_active_renders",
			Help: "Renders currently in progress",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stackreel_http_requests_total",
			Help: "HTTP requests received, by method",
		}, []string{"method"}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stackreel_http_errors_total",
			Help: "HTTP responses with status 4xx or 5xx",
		}),
	}

	registry.MustRegister(
		m.rendersTotal,
		m.renderSeconds,
		m.downgrades,
		m.layoutWarnings,
		m.captionPages,
		m.activeRenders,
		m.requestsTotal,
		m.errorsTotal,
	)
	return m
}

// Registry exposes the underlying registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RenderStarted increments the active render gauge.
func (m *Metrics) RenderStarted() {
	if m == nil {
		return
	}
	m.activeRenders.Inc()
}

// RenderFinished records a finished render with its status.
func (m *Metrics) RenderFinished(status string) {
	if m == nil {
		return
	}
	m.activeRenders.Dec()
	m.rendersTotal.WithLabelValues(status).Inc()
}

// ObserveStage records the duration of one render stage in seconds.
func (m *Metrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.renderSeconds.WithLabelValues(stage).Observe(seconds)
}

// ObservePlan records planner outcomes.
func (m *Metrics) ObservePlan(warnings int, downgraded bool) {
	if m == nil {
		return
	}
	m.layoutWarnings.Add(float64(warnings))
	if downgraded {
		m.downgrades.Inc()
	}
}

// AddCaptionPages counts produced caption pages.
func (m *Metrics) AddCaptionPages(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.captionPages.Add(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
