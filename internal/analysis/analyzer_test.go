package analysis

import (
	"testing"

	domanalysis "github.com/netforge-labs/topoforge/internal/domain/analysis"
	domintent "github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	"github.com/netforge-labs/topoforge/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTopology(t *testing.T, raw domintent.Raw) topology.Topology {
	t.Helper()
	in, err := domintent.Parse(raw)
	require.NoError(t, err)
	topo, err := synth.New().Synthesize(in, nil)
	require.NoError(t, err)
	return topo
}

func TestAnalyzeTrivialTopologyIsHealthy(t *testing.T) {
	result := New().Analyze(topology.Topology{Name: "single", Devices: []topology.Device{{Name: "a", Kind: topology.DeviceSwitch}}})
	assert.Equal(t, 100, result.HealthScore)
	assert.Empty(t, result.SPOFs)
}

func TestAnalyzeHubSpokeFindsTheHubAsSPOF(t *testing.T) {
	topo := buildTopology(t, domintent.Raw{SiteCount: 6, Pattern: "hub-spoke", Redundancy: "minimum"})
	result := New().Analyze(topo)

	require.NotEmpty(t, result.SPOFs)
	assert.Equal(t, "site-001", result.SPOFs[0].Device)
	// Removing the hub strands 5 of 6 devices from any surviving anchor.
	assert.InDelta(t, 100.0*5/6, result.SPOFs[0].ImpactPercent, 1e-9)
	assert.Equal(t, domanalysis.RiskCritical, result.SPOFs[0].Tier)
}

func TestAnalyzeHubSpokeMinimizeSPOFHasNoSPOFs(t *testing.T) {
	topo := buildTopology(t, domintent.Raw{SiteCount: 6, Pattern: "hub-spoke", Redundancy: "standard", MinimizeSPOF: true})
	result := New().Analyze(topo)
	assert.Empty(t, result.SPOFs)
}

func TestAnalyzeFullMeshHasNoSPOFsAndHighRedundancy(t *testing.T) {
	topo := buildTopology(t, domintent.Raw{SiteCount: 5, Pattern: "full-mesh", Redundancy: "minimum"})
	result := New().Analyze(topo)

	assert.Empty(t, result.SPOFs)
	assert.GreaterOrEqual(t, result.RedundancyFactor, 2.0)
	assert.Equal(t, 1, result.Diameter)
	assert.InDelta(t, 1.0, result.ConnectivityCoef, 1e-9)
}

func TestConnectivityCoefficientIsGraphDensity(t *testing.T) {
	topo := buildTopology(t, domintent.Raw{SiteCount: 6, Pattern: "ring", Redundancy: "standard"})
	result := New().Analyze(topo)

	// A 6-node ring has 6 edges: 2*6/(6*5) = 0.4.
	assert.InDelta(t, 0.4, result.ConnectivityCoef, 1e-9)
}

func TestAnalyzeOverloadedNodeDetectsHighDegreeHub(t *testing.T) {
	topo := buildTopology(t, domintent.Raw{SiteCount: 8, Pattern: "hub-spoke", Redundancy: "minimum"})
	result := New().Analyze(topo)

	require.NotEmpty(t, result.OverloadedNodes)
	assert.Equal(t, "site-001", result.OverloadedNodes[0].Device)
}

func TestHealthScoreClampedToRange(t *testing.T) {
	r := domanalysis.Result{
		SPOFs: []domanalysis.SPOF{
			{Device: "a", Tier: domanalysis.RiskCritical},
			{Device: "b", Tier: domanalysis.RiskCritical},
			{Device: "c", Tier: domanalysis.RiskCritical},
			{Device: "d", Tier: domanalysis.RiskCritical},
		},
	}
	score := healthScore(r)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}

func TestTierForImpactThresholds(t *testing.T) {
	assert.Equal(t, domanalysis.RiskCritical, domanalysis.TierForImpact(75))
	assert.Equal(t, domanalysis.RiskHigh, domanalysis.TierForImpact(30))
	assert.Equal(t, domanalysis.RiskMedium, domanalysis.TierForImpact(15))
	assert.Equal(t, domanalysis.RiskLow, domanalysis.TierForImpact(5))
}
