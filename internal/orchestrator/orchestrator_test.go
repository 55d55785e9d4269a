package orchestrator

import (
	"context"
	"fmt"
	"testing"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	domhistory "github.com/netforge-labs/topoforge/internal/domain/history"
	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/history/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw intent.Raw) intent.Intent {
	t.Helper()
	in, err := intent.Parse(raw)
	require.NoError(t, err)
	return in
}

func stageByName(stages []StageResult, name string) *StageResult {
	for i := range stages {
		if stages[i].Stage == name {
			return &stages[i]
		}
	}
	return nil
}

func TestRunPipelineFullMeshEndToEnd(t *testing.T) {
	store := inmemory.New()
	in := mustParse(t, intent.Raw{Name: "mesh5", Pattern: "full-mesh", SiteCount: 5, Redundancy: "critical", MinimizeSPOF: true, MaxHops: 2})
	seed := int64(42)

	result, err := New(store).RunPipeline(context.Background(), in, RunOptions{Seed: &seed})
	require.NoError(t, err)

	assert.False(t, result.PartialSuccess)
	for _, stage := range result.Stages {
		assert.Equal(t, "ok", stage.Status, "stage %s", stage.Stage)
	}

	assert.Len(t, result.Topology.Devices, 5)
	assert.Len(t, result.Topology.Links, 10)
	assert.Empty(t, result.Analysis.SPOFs)
	assert.Len(t, result.Simulation, 3)
	assert.True(t, result.Validation.Satisfied)

	require.NotEmpty(t, result.TopologyID)
	rec, err := store.Topology(context.Background(), result.TopologyID)
	require.NoError(t, err)
	assert.Equal(t, "full-mesh", rec.Pattern)
	assert.Equal(t, 5, rec.DeviceCount)
	assert.Equal(t, 10, rec.LinkCount)
}

func TestRunPipelineSynthesisFailureIsFatal(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "hub-spoke", SiteCount: 6, Redundancy: "minimum", MinimizeSPOF: true})

	result, err := New(inmemory.New()).RunPipeline(context.Background(), in, RunOptions{})
	require.Error(t, err)

	var unsat *domerrors.UnsatisfiableError
	require.ErrorAs(t, err, &unsat)

	stage := stageByName(result.Stages, StageSynthesis)
	require.NotNil(t, stage)
	assert.Equal(t, "failed", stage.Status)
	assert.Nil(t, stageByName(result.Stages, StageValidate), "later stages must not run after a fatal synthesis failure")
}

func TestRunPipelineCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := mustParse(t, intent.Raw{Pattern: "ring", SiteCount: 4, Redundancy: "standard"})
	_, err := New(inmemory.New()).RunPipeline(ctx, in, RunOptions{})
	require.Error(t, err)

	var cancelled *domerrors.CancelledError
	require.ErrorAs(t, err, &cancelled)
}

func TestRunPipelineResolvesUnsetPatternViaRecommender(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 5, Redundancy: "standard"})
	require.False(t, in.HasPattern())

	result, err := New(inmemory.New()).RunPipeline(context.Background(), in, RunOptions{})
	require.NoError(t, err)

	assert.True(t, result.Intent.HasPattern())
	require.NotNil(t, stageByName(result.Stages, StageRecommend))
	assert.NotEmpty(t, result.Topology.Devices)
}

func TestRunPipelineWithoutStoreSkipsPersistence(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "ring", SiteCount: 4, Redundancy: "standard"})

	result, err := New(nil).RunPipeline(context.Background(), in, RunOptions{})
	require.NoError(t, err)

	assert.Empty(t, result.TopologyID)
	assert.Nil(t, stageByName(result.Stages, StagePersist))
	assert.False(t, result.PartialSuccess)
}

// seedHistory records n validated runs of pattern with the given score so
// the recommender has something to aggregate.
func seedHistory(t *testing.T, store *inmemory.Store, pattern string, n int, score float64, satisfied bool) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%d", pattern, i)
		require.NoError(t, store.SaveTopology(ctx, domhistory.TopologyRecord{ID: id, Name: id, Pattern: pattern}))
		require.NoError(t, store.SaveValidation(ctx, domhistory.ValidationRecord{TopologyID: id, Satisfied: satisfied, OverallScore: score}))
	}
}

func TestRunPipelineOptimizerOverridesWeakPattern(t *testing.T) {
	store := inmemory.New()
	seedHistory(t, store, "leaf-spine", 10, 92, true)
	seedHistory(t, store, "ring", 10, 55, false)

	in := mustParse(t, intent.Raw{Pattern: "ring", SiteCount: 10, Redundancy: "standard"})
	result, err := New(store).RunPipeline(context.Background(), in, RunOptions{Optimize: true})
	require.NoError(t, err)

	assert.Equal(t, intent.PatternLeafSpine, result.Intent.Pattern)
	require.NotNil(t, result.Optimization)
	assert.True(t, result.Optimization.ShouldSwitch)
	assert.Greater(t, result.Optimization.ExpectedImprovement, 0.0)
	require.NotEmpty(t, result.OptimizationID)

	// The pipeline back-fills actual_improvement once validation lands;
	// the field is write-once, so a second write must fail.
	err = store.RecordActualImprovement(context.Background(), result.OptimizationID, 0)
	require.Error(t, err)
}

func TestRunPipelineOptimizerKeepsBestPattern(t *testing.T) {
	store := inmemory.New()
	seedHistory(t, store, "leaf-spine", 10, 92, true)

	in := mustParse(t, intent.Raw{Pattern: "leaf-spine", SiteCount: 10, Redundancy: "standard"})
	result, err := New(store).RunPipeline(context.Background(), in, RunOptions{Optimize: true})
	require.NoError(t, err)

	assert.Equal(t, intent.PatternLeafSpine, result.Intent.Pattern)
	require.NotNil(t, result.Optimization)
	assert.False(t, result.Optimization.ShouldSwitch)
	assert.Empty(t, result.OptimizationID)
}
