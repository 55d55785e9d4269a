// Package recommend scores candidate topology patterns against an intent
// shape using accumulated history, falling back to fixed heuristics when no
// history exists yet. It also carries the autonomous-optimizer comparison
// that decides whether a deployed topology should be rebuilt around a
// better-performing pattern.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	domintent "github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/domain/recommend"
	"github.com/netforge-labs/topoforge/internal/history"
)

// allPatterns is the fixed candidate set scored for every intent.
var allPatterns = []domintent.Pattern{
	domintent.PatternFullMesh,
	domintent.PatternHubSpoke,
	domintent.PatternRing,
	domintent.PatternTree,
	domintent.PatternLeafSpine,
	domintent.PatternHybrid,
}

const (
	confidenceFullSample = 10.0
	// confidenceHeuristic caps what a pattern with no usable history can
	// report; heuristic confidence stays strictly below 40.
	confidenceHeuristic   = 39.0
	minSampleForHistory   = 3
	switchMarginThreshold = 10.0
	switchConfidenceFloor = 60.0
	// lookbackWindow bounds how far back RecentMetrics reaches; a pattern's
	// performance from a year ago says little about today's network gear.
	lookbackWindow = 180 * 24 * time.Hour
)

// Recommender scores candidate patterns for a given intent, blending
// historical performance metrics with static heuristics.
type Recommender struct {
	store history.Store
}

// New returns a Recommender reading from store.
func New(store history.Store) *Recommender {
	return &Recommender{store: store}
}

// Recommend ranks every known pattern against in and returns the winner plus
// the full ranked candidate list (C8).
func (r *Recommender) Recommend(ctx context.Context, in domintent.Intent) (recommend.Result, error) {
	metrics, err := r.store.RecentMetrics(ctx, lookbackWindow)
	if err != nil {
		return recommend.Result{}, fmt.Errorf("recommend: load metrics: %w", err)
	}
	byPattern := make(map[domintent.Pattern]historyMetric, len(metrics))
	for _, m := range metrics {
		byPattern[domintent.Pattern(m.Pattern)] = historyMetric{
			sampleSize:           m.SampleSize,
			avgOverallScore:      m.AvgOverallScore,
			satisfactionRate:     m.SatisfactionRate,
			resilienceImpact:     m.AvgResilienceImpact,
			feedbackSatisfied:    m.FeedbackSatisfied,
			feedbackDissatisfied: m.FeedbackDissatisfied,
		}
	}

	candidates := make([]recommend.Candidate, 0, len(allPatterns))
	for _, pattern := range allPatterns {
		candidates = append(candidates, scoreCandidate(pattern, in, byPattern[pattern]))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CompositeScore > candidates[j].CompositeScore
	})

	chosen := candidates[0].Pattern
	reason := fmt.Sprintf("%s scored highest (%.1f) for a %d-site %s-redundancy intent",
		chosen, candidates[0].CompositeScore, in.SiteCount, in.Redundancy)
	if candidates[0].Heuristic {
		reason += "; no sufficient history yet, heuristic fallback applied"
	}

	return recommend.Result{Candidates: candidates, Chosen: chosen, Reason: reason}, nil
}

// Optimize compares the deployed pattern against the best alternative and
// decides whether an autonomous switch is warranted: the alternative must
// beat the current pattern's composite score by at least
// switchMarginThreshold points and carry at least switchConfidenceFloor
// confidence.
func (r *Recommender) Optimize(ctx context.Context, in domintent.Intent, current domintent.Pattern) (recommend.OptimizationDecision, error) {
	result, err := r.Recommend(ctx, in)
	if err != nil {
		return recommend.OptimizationDecision{}, err
	}

	var currentScore float64
	for _, c := range result.Candidates {
		if c.Pattern == current {
			currentScore = c.CompositeScore
			break
		}
	}

	best := result.Candidates[0]
	decision := recommend.OptimizationDecision{
		CurrentPattern:      current,
		SuggestedPattern:    best.Pattern,
		CurrentScore:        currentScore,
		SuggestedScore:      best.CompositeScore,
		SuggestedConfidence: best.Confidence,
	}

	if best.Pattern == current {
		decision.Reason = "already running the best-scoring pattern"
		return decision, nil
	}

	margin := best.CompositeScore - currentScore
	if margin >= switchMarginThreshold && best.Confidence >= switchConfidenceFloor {
		decision.ShouldSwitch = true
		decision.ExpectedImprovement = margin
		decision.Reason = fmt.Sprintf("%s beats %s by %.1f points at %.0f%% confidence", best.Pattern, current, margin, best.Confidence)
		return decision, nil
	}

	decision.Reason = fmt.Sprintf("%s leads by only %.1f points or confidence %.0f%% is below the switch floor; keeping %s", best.Pattern, margin, best.Confidence, current)
	return decision, nil
}

type historyMetric struct {
	sampleSize           int
	avgOverallScore      float64
	satisfactionRate     float64
	resilienceImpact     float64
	feedbackSatisfied    int
	feedbackDissatisfied int
}

// satisfaction is a weighted average over two pools: each validation
// sample carries weight 1 (satisfied iff the validator said so), each
// explicit user verdict carries weight 5 (scores >=4 satisfied, <=2
// dissatisfied). Direct user signal therefore outranks automated
// scoring; patterns with no feedback fall back to the implicit rate.
func (m historyMetric) satisfaction() float64 {
	fbSamples := m.feedbackSatisfied + m.feedbackDissatisfied
	if fbSamples == 0 {
		return m.satisfactionRate
	}
	implicitSatisfied := m.satisfactionRate / 100 * float64(m.sampleSize)
	weight := float64(m.sampleSize) + 5*float64(fbSamples)
	return 100 * (implicitSatisfied + 5*float64(m.feedbackSatisfied)) / weight
}

// scoreCandidate computes one pattern's Candidate, drawing on historical
// metrics when the sample is large enough and falling back to the
// pattern's static heuristic profile otherwise.
func scoreCandidate(pattern domintent.Pattern, in domintent.Intent, m historyMetric) recommend.Candidate {
	suitability, pros, cons := suitabilityFactor(pattern, in)

	if m.sampleSize >= minSampleForHistory {
		composite := (0.40*m.avgOverallScore + 0.35*m.satisfaction() + 0.25*(100-m.resilienceImpact)) * suitability
		confidence := 100 * min(1.0, float64(m.sampleSize)/confidenceFullSample)
		return recommend.Candidate{
			Pattern:         pattern,
			CompositeScore:  clamp(composite, 0, 100),
			Confidence:      confidence,
			ConfidenceLabel: confidenceLabel(confidence),
			SampleSize:      m.sampleSize,
			Pros:            pros,
			Cons:            cons,
			Heuristic:       false,
		}
	}

	heuristicScore, hPros, hCons := heuristicProfile(pattern, in)
	composite := heuristicScore * suitability
	return recommend.Candidate{
		Pattern:         pattern,
		CompositeScore:  clamp(composite, 0, 100),
		Confidence:      confidenceHeuristic * suitability,
		ConfidenceLabel: "heuristic",
		SampleSize:      m.sampleSize,
		Pros:            append(pros, hPros...),
		Cons:            append(cons, hCons...),
		Heuristic:       true,
	}
}

func confidenceLabel(confidence float64) string {
	switch {
	case confidence >= 80:
		return "high"
	case confidence >= 40:
		return "moderate"
	default:
		return "low"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
