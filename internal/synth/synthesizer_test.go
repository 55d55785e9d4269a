package synth

import (
	"testing"

	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw intent.Raw) intent.Intent {
	t.Helper()
	in, err := intent.Parse(raw)
	require.NoError(t, err)
	return in
}

func TestSynthesizeRejectsUnresolvedPattern(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 5})
	_, err := New().Synthesize(in, nil)
	require.Error(t, err)
}

func TestSynthesizeFullMeshGivesNMinusOnePaths(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 5, Pattern: "full-mesh", Redundancy: "minimum"})
	topo, err := New().Synthesize(in, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, len(topo.Devices))

	g := graph.NewFromTopology(topo)
	assert.True(t, g.IsConnected())
	names := topo.DeviceNames()
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			assert.Equal(t, 4, g.EdgeDisjointPaths(names[i], names[j]))
		}
	}
}

func TestSynthesizeFullMeshUnsatisfiableAtHighRedundancy(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 3, Pattern: "full-mesh", Redundancy: "critical"})
	_, err := New().Synthesize(in, nil)
	require.Error(t, err)
}

func TestSynthesizeHubSpokeHasSinglePointOfFailure(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 6, Pattern: "hub-spoke", Redundancy: "minimum"})
	topo, err := New().Synthesize(in, nil)
	require.NoError(t, err)

	g := graph.NewFromTopology(topo)
	aps := g.ArticulationPoints()
	assert.NotEmpty(t, aps, "a bare hub-spoke topology must have the hub as an articulation point")
}

func TestSynthesizeHubSpokeMinimizeSPOFUnsatisfiableAtMinimum(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 6, Pattern: "hub-spoke", Redundancy: "minimum", MinimizeSPOF: true})
	_, err := New().Synthesize(in, nil)
	require.Error(t, err)
}

func TestSynthesizeHubSpokeMinimizeSPOFEliminatesArticulationPoints(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 6, Pattern: "hub-spoke", Redundancy: "standard", MinimizeSPOF: true})
	topo, err := New().Synthesize(in, nil)
	require.NoError(t, err)

	g := graph.NewFromTopology(topo)
	assert.Empty(t, g.ArticulationPoints())
}

func TestSynthesizeRingGivesTwoDisjointPaths(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 6, Pattern: "ring", Redundancy: "standard"})
	topo, err := New().Synthesize(in, nil)
	require.NoError(t, err)

	g := graph.NewFromTopology(topo)
	names := topo.DeviceNames()
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			assert.GreaterOrEqual(t, g.EdgeDisjointPaths(names[i], names[j]), 2)
		}
	}
}

func TestSynthesizeTreeDualHomesAccessLayerAboveMinimum(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 12, Pattern: "tree", Redundancy: "standard"})
	topo, err := New().Synthesize(in, nil)
	require.NoError(t, err)

	g := graph.NewFromTopology(topo)
	assert.True(t, g.IsConnected())
	names := topo.DeviceNames()
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			assert.GreaterOrEqual(t, g.EdgeDisjointPaths(names[i], names[j]), 2)
		}
	}
}

func TestSynthesizeLeafSpineRejectsTooFewDevices(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 3, Pattern: "leaf-spine", Redundancy: "minimum"})
	_, err := New().Synthesize(in, nil)
	require.Error(t, err)
}

func TestSynthesizeLeafSpineFullyCrossConnects(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 10, Pattern: "leaf-spine", Redundancy: "minimum"})
	topo, err := New().Synthesize(in, nil)
	require.NoError(t, err)

	g := graph.NewFromTopology(topo)
	assert.True(t, g.IsConnected())
}

func TestSynthesizeHybridMergesCoreAndBranches(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 30, Pattern: "hybrid", Redundancy: "standard"})
	topo, err := New().Synthesize(in, nil)
	require.NoError(t, err)

	g := graph.NewFromTopology(topo)
	assert.True(t, g.IsConnected())
	assert.Equal(t, 30, len(topo.Devices))
}

func TestSynthesizeIsReplayDeterministicWithSeed(t *testing.T) {
	in := mustParse(t, intent.Raw{SiteCount: 150, Pattern: "hub-spoke", Redundancy: "high"})
	seed := int64(42)

	t1, err := New().Synthesize(in, &seed)
	require.NoError(t, err)
	t2, err := New().Synthesize(in, &seed)
	require.NoError(t, err)

	require.Equal(t, len(t1.Links), len(t2.Links))
	for i := range t1.Links {
		assert.Equal(t, t1.Links[i], t2.Links[i])
	}
}
