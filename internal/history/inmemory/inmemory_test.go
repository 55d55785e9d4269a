package inmemory

import (
	"context"
	"fmt"
	"testing"
	"time"

	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveRun(t *testing.T, s *Store, id, pattern string, score float64, satisfied bool, loss float64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SaveTopology(ctx, domhistory.TopologyRecord{ID: id, Name: id, Pattern: pattern}))
	require.NoError(t, s.SaveValidation(ctx, domhistory.ValidationRecord{TopologyID: id, Satisfied: satisfied, OverallScore: score}))
	require.NoError(t, s.SaveSimulation(ctx, domhistory.SimulationRecord{TopologyID: id, ScenarioKind: "node_down", ConnectivityLoss: loss, Severity: "low"}))
}

func TestTopologyRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveTopology(ctx, domhistory.TopologyRecord{ID: "t1", Name: "mesh", Pattern: "full-mesh", DeviceCount: 5, LinkCount: 10}))

	rec, err := s.Topology(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "mesh", rec.Name)
	assert.Equal(t, 5, rec.DeviceCount)
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = s.Topology(ctx, "missing")
	require.Error(t, err)
}

func TestMetricsAggregatePerPattern(t *testing.T) {
	s := New()
	saveRun(t, s, "r1", "ring", 80, true, 10)
	saveRun(t, s, "r2", "ring", 60, false, 30)
	saveRun(t, s, "m1", "full-mesh", 90, true, 0)

	metrics, err := s.RecentMetrics(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	// Sorted by pattern name.
	assert.Equal(t, "full-mesh", metrics[0].Pattern)
	assert.Equal(t, "ring", metrics[1].Pattern)

	ring := metrics[1]
	assert.Equal(t, 2, ring.SampleSize)
	assert.InDelta(t, 70.0, ring.AvgOverallScore, 1e-9)
	assert.InDelta(t, 50.0, ring.SatisfactionRate, 1e-9)
	assert.InDelta(t, 20.0, ring.AvgResilienceImpact, 1e-9)
}

func TestIncrementalMetricsAgreeWithBatchRecompute(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		saveRun(t, s, fmt.Sprintf("t%d", i), "tree", float64(60+i*5), i%2 == 0, float64(i))
	}

	ctx := context.Background()
	incremental, err := s.RecentMetrics(ctx, 24*time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.RecomputeMetrics(ctx))
	batch, err := s.RecentMetrics(ctx, 24*time.Hour)
	require.NoError(t, err)

	require.Len(t, incremental, 1)
	require.Len(t, batch, 1)
	assert.Equal(t, incremental[0].SampleSize, batch[0].SampleSize)
	assert.InDelta(t, incremental[0].AvgOverallScore, batch[0].AvgOverallScore, 1e-9)
	assert.InDelta(t, incremental[0].SatisfactionRate, batch[0].SatisfactionRate, 1e-9)
	assert.InDelta(t, incremental[0].AvgResilienceImpact, batch[0].AvgResilienceImpact, 1e-9)
}

func TestMetricsBucketExplicitFeedback(t *testing.T) {
	s := New()
	saveRun(t, s, "r1", "ring", 80, true, 0)

	ctx := context.Background()
	rate := func(id string, score float64) {
		t.Helper()
		require.NoError(t, s.SaveRecommendation(ctx, domhistory.RecommendationRecord{ID: id, IntentHash: "h", Candidates: "[]", Chosen: "ring"}))
		require.NoError(t, s.RecordFeedback(ctx, id, nil, &score))
	}
	rate("rec-1", 5)
	rate("rec-2", 4)
	rate("rec-3", 2)
	rate("rec-4", 3) // neutral, lands in neither pool
	require.NoError(t, s.RecomputeMetrics(ctx))

	metrics, err := s.RecentMetrics(ctx, time.Hour)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 2, metrics[0].FeedbackSatisfied)
	assert.Equal(t, 1, metrics[0].FeedbackDissatisfied)
}

func TestRecordFeedbackIsWriteOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.SaveRecommendation(ctx, domhistory.RecommendationRecord{ID: "rec-1", IntentHash: "h", Candidates: "[]", Chosen: "ring"}))

	selected := "ring"
	feedback := 5.0
	require.NoError(t, s.RecordFeedback(ctx, "rec-1", &selected, &feedback))

	err := s.RecordFeedback(ctx, "rec-1", &selected, nil)
	require.Error(t, err)
	err = s.RecordFeedback(ctx, "rec-1", nil, &feedback)
	require.Error(t, err)

	err = s.RecordFeedback(ctx, "missing", &selected, nil)
	require.Error(t, err)
}

func TestRecordActualImprovementIsWriteOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.SaveOptimization(ctx, domhistory.OptimizationRecord{ID: "opt-1", CurrentPattern: "ring", SuggestedPattern: "leaf-spine", ShouldSwitch: true, ExpectedImprovement: 12}))

	require.NoError(t, s.RecordActualImprovement(ctx, "opt-1", 8.5))
	err := s.RecordActualImprovement(ctx, "opt-1", 9)
	require.Error(t, err)
}

func TestClearResetsEverything(t *testing.T) {
	s := New()
	saveRun(t, s, "t1", "ring", 80, true, 0)

	require.NoError(t, s.Clear())

	metrics, err := s.RecentMetrics(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, metrics)
	_, err = s.Topology(context.Background(), "t1")
	require.Error(t, err)
}
