package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "socketgrid"

// Registry holds all metrics for the application.
type Registry struct {
	ConnectionsTotal     *prometheus.CounterVec
	AutogrowRowsTotal    *prometheus.CounterVec
	ComboRebindsTotal    prometheus.Counter
	MatchTypeTotal       *prometheus.CounterVec
	ScenarioStepsTotal   *prometheus.CounterVec
	ScenarioStepDuration *prometheus.HistogramVec
	GraphNodes           prometheus.Gauge
	GraphLinks           prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.ConnectionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Connection attempts by result",
		},
		[]string{"result"},
	)
	r.AutogrowRowsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autogrow_rows_total",
			Help:      "Autogrow rows added or removed",
		},
		[]string{"op"},
	)
	r.ComboRebindsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "combo_rebinds_total",
			Help:      "Dynamic combo socket rebuilds",
		},
	)
	r.MatchTypeTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matchtype_recomputations_total",
			Help:      "Match-type group recomputations by result",
		},
		[]string{"result"},
	)
	r.ScenarioStepsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenario_steps_total",
			Help:      "Scenario steps replayed by kind and status",
		},
		[]string{"kind", "status"},
	)
	r.ScenarioStepDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scenario_step_duration_seconds",
			Help:      "Scenario step latency in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"kind"},
	)
	r.GraphNodes = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the last replayed graph",
		},
	)
	r.GraphLinks = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_links",
			Help:      "Links in the last replayed graph",
		},
	)
	return r
}

// Gatherer returns the underlying Prometheus registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveAutogrow counts autogrow rows added ("grow") or removed ("shrink").
func (r *Registry) ObserveAutogrow(op string, rows int) {
	r.AutogrowRowsTotal.WithLabelValues(op).Add(float64(rows))
}

// ObserveComboRebind counts a combo socket rebuild.
func (r *Registry) ObserveComboRebind(string) {
	r.ComboRebindsTotal.Inc()
}

// ObserveMatchType counts a match-type recomputation.
func (r *Registry) ObserveMatchType(result string) {
	r.MatchTypeTotal.WithLabelValues(result).Inc()
}

// RecordConnection counts a connection attempt.
func (r *Registry) RecordConnection(result string) {
	r.ConnectionsTotal.WithLabelValues(result).Inc()
}

// RecordStep records one replayed scenario step with its duration.
func (r *Registry) RecordStep(kind, status string, duration time.Duration) {
	r.ScenarioStepsTotal.WithLabelValues(kind, status).Inc()
	r.ScenarioStepDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// SetGraphSize publishes the size of the current graph.
func (r *Registry) SetGraphSize(nodes, links int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphLinks.Set(float64(links))
}
