// Package history defines the persistence boundary for the pipeline's
// learning loop. Every backend under its subdirectories
// (sqlite, postgres, neo4j, inmemory) implements Store identically from
// the orchestrator's point of view.
package history

import (
	"context"
	"time"

	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
)

// Store is the persistence boundary the orchestrator and recommender talk
// to. All methods are context-aware so callers can bound them with a
// deadline; the orchestrator passes its run context through unchanged and
// sets no per-stage deadline on store calls.
type Store interface {
	SaveTopology(ctx context.Context, rec domhistory.TopologyRecord) error
	SaveValidation(ctx context.Context, rec domhistory.ValidationRecord) error
	SaveSimulation(ctx context.Context, rec domhistory.SimulationRecord) error
	SaveRecommendation(ctx context.Context, rec domhistory.RecommendationRecord) error
	SaveOptimization(ctx context.Context, rec domhistory.OptimizationRecord) error

	// RecordFeedback attaches a user-selected pattern and/or an explicit
	// satisfaction score to a previously-saved recommendation. Both
	// fields are write-once: a second call with a non-nil value for a
	// field already set returns an error.
	RecordFeedback(ctx context.Context, recommendationID string, userSelected *string, feedback *float64) error

	// RecordActualImprovement attaches the measured effect of an
	// autonomous-optimizer decision. Write-once, like RecordFeedback.
	RecordActualImprovement(ctx context.Context, optimizationID string, improvement float64) error

	// Topology returns the topology record saved under id.
	Topology(ctx context.Context, id string) (domhistory.TopologyRecord, error)

	// RecentMetrics returns the performance metric for every pattern whose
	// metric row was last updated (inline or by a recompute) within the
	// trailing window (spec §4.8: "recent(days)").
	RecentMetrics(ctx context.Context, window time.Duration) ([]domhistory.PerformanceMetric, error)

	// RecomputeMetrics rebuilds every PerformanceMetric from the raw
	// validation/simulation/recommendation history. This is the batch
	// path the maintenance runner invokes periodically; incremental
	// updates happen inline as part of SaveValidation/SaveSimulation.
	RecomputeMetrics(ctx context.Context) error

	Migrate() error
	Clear() error
	Close() error
	Health(ctx context.Context) error
}
