package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the Prometheus-backed implementation of the observability
// hooks. The serve command registers it at startup; CLI runs stay on the
// no-op hooks and never touch Prometheus.
type Metrics struct {
	registry *prometheus.Registry

	validateDuration prometheus.Histogram
	validateWarnings prometheus.Counter
	validateFailures prometheus.Counter

	transformDropped prometheus.Counter

	layoutDuration *prometheus.HistogramVec
	layoutNodes    prometheus.Gauge

	storeOps *prometheus.CounterVec
}

// NewMetrics creates the metric set on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		validateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bgpmap",
			Name:      "validate_duration_seconds",
			Help:      "Time spent validating topology documents.",
			Buckets:   prometheus.DefBuckets,
		}),
		validateWarnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bgpmap",
			Name:      "validate_warnings_total",
			Help:      "Semantic warnings emitted by validation.",
		}),
		validateFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bgpmap",
			Name:      "validate_failures_total",
			Help:      "Documents rejected by validation.",
		}),
		transformDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bgpmap",
			Name:      "transform_dropped_edges_total",
			Help:      "Document edges dropped during retargeting.",
		}),
		layoutDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bgpmap",
			Name:      "layout_duration_seconds",
			Help:      "Time spent in the force-directed engine per pass.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"budget"}),
		layoutNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bgpmap",
			Name:      "layout_nodes",
			Help:      "Node count of the most recent layout pass.",
		}),
		storeOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bgpmap",
			Name:      "state_store_operations_total",
			Help:      "View-state store operations by backend and outcome.",
		}, []string{"backend", "op", "outcome"}),
	}
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnValidateComplete implements observability.PipelineHooks.
func (m *Metrics) OnValidateComplete(_ context.Context, warnings int, duration time.Duration, err error) {
	m.validateDuration.Observe(duration.Seconds())
	m.validateWarnings.Add(float64(warnings))
	if err != nil {
		m.validateFailures.Inc()
	}
}

// OnTransformComplete implements observability.PipelineHooks.
func (m *Metrics) OnTransformComplete(_ context.Context, _, _, dropped int, _ time.Duration, _ error) {
	m.transformDropped.Add(float64(dropped))
}

// OnLayoutStart implements observability.PipelineHooks.
func (m *Metrics) OnLayoutStart(_ context.Context, nodes, _ int) {
	m.layoutNodes.Set(float64(nodes))
}

// OnLayoutComplete implements observability.PipelineHooks.
func (m *Metrics) OnLayoutComplete(_ context.Context, _, budget int, duration time.Duration) {
	m.layoutDuration.WithLabelValues(strconv.Itoa(budget)).Observe(duration.Seconds())
}

// OnLoad implements observability.StoreHooks.
func (m *Metrics) OnLoad(_ context.Context, backend string, found bool) {
	outcome := "hit"
	if !found {
		outcome = "miss"
	}
	m.storeOps.WithLabelValues(backend, "load", outcome).Inc()
}

// OnSave implements observability.StoreHooks.
func (m *Metrics) OnSave(_ context.Context, backend string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.storeOps.WithLabelValues(backend, "save", outcome).Inc()
}
