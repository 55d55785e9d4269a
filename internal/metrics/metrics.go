// Package metrics registers the Prometheus collectors exposed on /metrics:
// pipeline stage durations, SPOF counts, and recommendation confidence.
// Exposition follows the same promhttp.Handler()-on-its-own-mux pattern
// used by the rest of the corpus rather than wiring metrics through the
// main application router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "topoforge"

// Registry bundles every collector the pipeline touches, registered once at
// startup and passed by reference into the components that record against
// them.
type Registry struct {
	StageDuration          *prometheus.HistogramVec
	PipelineRuns           *prometheus.CounterVec
	SPOFCount              prometheus.Histogram
	RecommendationConfidence *prometheus.HistogramVec
	OptimizerSwitches      prometheus.Counter
	ConnectivityLoss       *prometheus.HistogramVec
}

// NewRegistry constructs and registers every collector against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"stage", "status"}),

		PipelineRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Number of pipeline runs by terminal outcome.",
		}, []string{"outcome"}),

		SPOFCount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "spof_count",
			Help:      "Number of single points of failure found per analysis.",
			Buckets:   prometheus.LinearBuckets(0, 1, 20),
		}),

		RecommendationConfidence: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_confidence",
			Help:      "Confidence of the chosen recommendation candidate, by pattern.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"pattern"}),

		OptimizerSwitches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_switches_total",
			Help:      "Number of times the autonomous optimizer recommended switching patterns.",
		}),

		ConnectivityLoss: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_connectivity_loss_percent",
			Help:      "Connectivity loss percentage observed across failure simulations, by scenario kind.",
			Buckets:   []float64{1, 5, 10, 25, 50, 75, 100},
		}, []string{"scenario_kind"}),
	}
}

// ObserveStage records one pipeline stage's duration and terminal status.
func (r *Registry) ObserveStage(stage, status string, seconds float64) {
	r.StageDuration.WithLabelValues(stage, status).Observe(seconds)
}

// ObserveRun records one pipeline run's terminal outcome ("ok",
// "partial_success", or "failed").
func (r *Registry) ObserveRun(outcome string) {
	r.PipelineRuns.WithLabelValues(outcome).Inc()
}

// ObserveSPOFCount records an analysis result's SPOF count.
func (r *Registry) ObserveSPOFCount(count int) {
	r.SPOFCount.Observe(float64(count))
}

// ObserveRecommendation records the chosen candidate's confidence.
func (r *Registry) ObserveRecommendation(pattern string, confidence float64) {
	r.RecommendationConfidence.WithLabelValues(pattern).Observe(confidence)
}

// ObserveOptimizerSwitch increments the switch counter when the optimizer
// recommends moving off the currently deployed pattern.
func (r *Registry) ObserveOptimizerSwitch() {
	r.OptimizerSwitches.Inc()
}

// ObserveConnectivityLoss records one simulation result's connectivity loss.
func (r *Registry) ObserveConnectivityLoss(scenarioKind string, percent float64) {
	r.ConnectivityLoss.WithLabelValues(scenarioKind).Observe(percent)
}
