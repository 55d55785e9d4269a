// Package history models the six record shapes the history store persists.
// Each record is a flattened,
// storage-friendly view of the corresponding pipeline-stage result, tagged
// for both JSON (API/export) and sqlx (`db`) marshaling.
package history

import (
	"time"

	"github.com/netforge-labs/topoforge/internal/domain/intent"
)

// TopologyRecord is the persisted shape of one synthesized topology,
// including the intent that produced it.
type TopologyRecord struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Pattern     string    `json:"pattern" db:"pattern"`
	Intent      string    `json:"intent" db:"intent"`     // JSON-encoded intent.Intent
	Topology    string    `json:"topology" db:"topology"` // JSON-encoded topology.Topology
	DeviceCount int       `json:"device_count" db:"device_count"`
	LinkCount   int       `json:"link_count" db:"link_count"`
	Seed        *int64    `json:"seed,omitempty" db:"seed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ValidationRecord ties a validation.Result to the topology it scored.
type ValidationRecord struct {
	ID           string    `json:"id" db:"id"`
	TopologyID   string    `json:"topology_id" db:"topology_id"`
	Satisfied    bool      `json:"satisfied" db:"satisfied"`
	OverallScore float64   `json:"overall_score" db:"overall_score"`
	Violations   string    `json:"violations" db:"violations"` // JSON-encoded []string
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SimulationRecord ties a simulation.Result to the topology it ran against.
type SimulationRecord struct {
	ID               string    `json:"id" db:"id"`
	TopologyID       string    `json:"topology_id" db:"topology_id"`
	ScenarioKind     string    `json:"scenario_kind" db:"scenario_kind"`
	ConnectivityLoss float64   `json:"connectivity_loss" db:"connectivity_loss"`
	Severity         string    `json:"severity" db:"severity"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// PerformanceMetric is one pattern's running aggregate across every
// validation scored against it; this is what the recommender consults.
// FeedbackSatisfied and FeedbackDissatisfied count explicit 1-5 user
// scores bucketed at >=4 and <=2; a neutral 3 lands in neither pool.
type PerformanceMetric struct {
	Pattern              string    `json:"pattern" db:"pattern"`
	SampleSize           int       `json:"sample_size" db:"sample_size"`
	AvgOverallScore      float64   `json:"avg_overall_score" db:"avg_overall_score"`
	SatisfactionRate     float64   `json:"satisfaction_rate" db:"satisfaction_rate"`
	AvgResilienceImpact  float64   `json:"avg_resilience_impact" db:"avg_resilience_impact"`
	FeedbackSatisfied    int       `json:"feedback_satisfied" db:"feedback_satisfied"`
	FeedbackDissatisfied int       `json:"feedback_dissatisfied" db:"feedback_dissatisfied"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// RecommendationRecord captures one recommendation response and, once
// known, whether the caller acted on it. UserSelected and Feedback are
// write-once fields filled in after the fact.
type RecommendationRecord struct {
	ID           string    `json:"id" db:"id"`
	IntentHash   string    `json:"intent_hash" db:"intent_hash"`
	Candidates   string    `json:"candidates" db:"candidates"` // JSON-encoded []recommend.Candidate
	Chosen       string    `json:"chosen" db:"chosen"`
	UserSelected *string   `json:"user_selected,omitempty" db:"user_selected"`
	Feedback     *float64  `json:"feedback,omitempty" db:"feedback"` // explicit user score on a 1-5 scale
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// OptimizationRecord captures one autonomous-optimizer decision and, once
// measured, the actual effect of following it. ActualImprovement is a
// write-once field filled in after the fact.
type OptimizationRecord struct {
	ID                  string         `json:"id" db:"id"`
	CurrentPattern      intent.Pattern `json:"current_pattern" db:"current_pattern"`
	SuggestedPattern    intent.Pattern `json:"suggested_pattern" db:"suggested_pattern"`
	ShouldSwitch        bool           `json:"should_switch" db:"should_switch"`
	Reason              string         `json:"reason" db:"reason"`
	ExpectedImprovement float64        `json:"expected_improvement" db:"expected_improvement"`
	ActualImprovement   *float64       `json:"actual_improvement,omitempty" db:"actual_improvement"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
}
