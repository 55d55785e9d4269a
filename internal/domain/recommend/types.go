// Package recommend models the output of the recommendation engine and
// autonomous optimizer.
package recommend

import "github.com/netforge-labs/topoforge/internal/domain/intent"

// Candidate is one scored pattern option for a given intent shape.
type Candidate struct {
	Pattern         intent.Pattern `json:"pattern"`
	CompositeScore  float64        `json:"composite_score"`
	Confidence      float64        `json:"confidence"`
	ConfidenceLabel string         `json:"confidence_label"`
	SampleSize      int            `json:"sample_size"`
	Pros            []string       `json:"pros"`
	Cons            []string       `json:"cons"`
	Heuristic       bool           `json:"heuristic"`
}

// Result ranks every candidate pattern, best first.
type Result struct {
	Candidates []Candidate    `json:"candidates"`
	Chosen     intent.Pattern `json:"chosen"`
	Reason     string         `json:"reason"`
}

// OptimizationDecision is the outcome of comparing the currently-deployed
// pattern against the recommender's best alternative (override
// requires a >=10-point composite-score margin and >=60 confidence).
type OptimizationDecision struct {
	CurrentPattern      intent.Pattern `json:"current_pattern"`
	SuggestedPattern    intent.Pattern `json:"suggested_pattern"`
	CurrentScore        float64        `json:"current_score"`
	SuggestedScore      float64        `json:"suggested_score"`
	SuggestedConfidence float64        `json:"suggested_confidence"`
	ShouldSwitch        bool           `json:"should_switch"`
	// ExpectedImprovement is the composite-score margin the switch is
	// predicted to gain; zero when ShouldSwitch is false.
	ExpectedImprovement float64 `json:"expected_improvement"`
	Reason              string  `json:"reason"`
}
