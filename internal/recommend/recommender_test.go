package recommend

import (
	"context"
	"fmt"
	"testing"

	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
	domintent "github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/history/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIntent() domintent.Intent {
	in, err := domintent.Parse(domintent.Raw{SiteCount: 10, Redundancy: "standard", DesignGoal: "redundancy"})
	if err != nil {
		panic(err)
	}
	return in
}

func seedHistory(t *testing.T, store *inmemory.Store, pattern string, n int, score float64, satisfied bool) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", pattern, i)
		require.NoError(t, store.SaveTopology(ctx, domhistory.TopologyRecord{ID: id, Name: id, Pattern: pattern}))
		require.NoError(t, store.SaveValidation(ctx, domhistory.ValidationRecord{TopologyID: id, Satisfied: satisfied, OverallScore: score}))
	}
}

func TestRecommendFallsBackToHeuristicsWithoutHistory(t *testing.T) {
	result, err := New(inmemory.New()).Recommend(context.Background(), testIntent())
	require.NoError(t, err)

	require.NotEmpty(t, result.Candidates)
	best := result.Candidates[0]
	assert.True(t, best.Heuristic)
	assert.Equal(t, "heuristic", best.ConfidenceLabel)
	assert.Less(t, best.Confidence, 40.0)
}

func TestRecommendRanksHistoricalWinnerFirst(t *testing.T) {
	store := inmemory.New()
	seedHistory(t, store, "leaf-spine", 10, 92, true)
	seedHistory(t, store, "ring", 10, 60, true)
	seedHistory(t, store, "hub-spoke", 10, 55, false)

	result, err := New(store).Recommend(context.Background(), testIntent())
	require.NoError(t, err)

	best := result.Candidates[0]
	assert.Equal(t, domintent.PatternLeafSpine, result.Chosen)
	assert.False(t, best.Heuristic)
	assert.GreaterOrEqual(t, best.Confidence, 80.0)
	assert.Equal(t, 10, best.SampleSize)

	// At least a 10-point margin over the runner-up.
	assert.GreaterOrEqual(t, best.CompositeScore-result.Candidates[1].CompositeScore, 10.0)
}

func TestRecommendConfidenceScalesWithSampleSize(t *testing.T) {
	store := inmemory.New()
	seedHistory(t, store, "ring", 5, 80, true)

	result, err := New(store).Recommend(context.Background(), testIntent())
	require.NoError(t, err)

	for _, c := range result.Candidates {
		if c.Pattern == domintent.PatternRing {
			assert.Equal(t, 50.0, c.Confidence)
			return
		}
	}
	t.Fatal("ring candidate missing from result")
}

func TestRecommendSuitabilityCapsPoorFit(t *testing.T) {
	store := inmemory.New()
	// Full mesh with a perfect track record still cannot win at 10 sites:
	// its suitability factor caps the composite well below a fabric's.
	seedHistory(t, store, "full-mesh", 10, 100, true)
	seedHistory(t, store, "leaf-spine", 10, 80, true)

	result, err := New(store).Recommend(context.Background(), testIntent())
	require.NoError(t, err)

	assert.Equal(t, domintent.PatternLeafSpine, result.Chosen)
}

func TestOptimizeSwitchesOnMaterialMargin(t *testing.T) {
	store := inmemory.New()
	seedHistory(t, store, "leaf-spine", 10, 92, true)
	seedHistory(t, store, "ring", 10, 55, false)

	decision, err := New(store).Optimize(context.Background(), testIntent(), domintent.PatternRing)
	require.NoError(t, err)

	assert.True(t, decision.ShouldSwitch)
	assert.Equal(t, domintent.PatternLeafSpine, decision.SuggestedPattern)
	assert.Greater(t, decision.ExpectedImprovement, 10.0)
}

func TestOptimizeHoldsBelowConfidenceFloor(t *testing.T) {
	store := inmemory.New()
	// Three samples meet the history threshold but only yield 30 confidence,
	// below the 60-point switch floor.
	seedHistory(t, store, "leaf-spine", 3, 95, true)
	seedHistory(t, store, "ring", 10, 55, false)

	decision, err := New(store).Optimize(context.Background(), testIntent(), domintent.PatternRing)
	require.NoError(t, err)

	assert.False(t, decision.ShouldSwitch)
}

func TestOptimizeKeepsCurrentBestPattern(t *testing.T) {
	store := inmemory.New()
	seedHistory(t, store, "leaf-spine", 10, 92, true)

	decision, err := New(store).Optimize(context.Background(), testIntent(), domintent.PatternLeafSpine)
	require.NoError(t, err)

	assert.False(t, decision.ShouldSwitch)
	assert.Equal(t, domintent.PatternLeafSpine, decision.SuggestedPattern)
}

func TestRecommendWeightsExplicitFeedback(t *testing.T) {
	store := inmemory.New()
	// Identical validation history for two well-suited patterns; only ring
	// carries an explicit satisfied user verdict (5 on the 1-5 scale),
	// which enters the satisfaction average at 5x the weight of a
	// validation sample and must break the tie.
	seedHistory(t, store, "ring", 10, 80, false)
	seedHistory(t, store, "leaf-spine", 10, 80, false)

	ctx := context.Background()
	require.NoError(t, store.SaveRecommendation(ctx, domhistory.RecommendationRecord{ID: "rec-1", IntentHash: "h", Candidates: "[]", Chosen: "ring"}))
	feedback := 5.0
	require.NoError(t, store.RecordFeedback(ctx, "rec-1", nil, &feedback))
	require.NoError(t, store.RecomputeMetrics(ctx))

	result, err := New(store).Recommend(ctx, testIntent())
	require.NoError(t, err)

	assert.Equal(t, domintent.PatternRing, result.Chosen)
}
