package validate

import (
	"testing"

	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	"github.com/netforge-labs/topoforge/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw intent.Raw) intent.Intent {
	t.Helper()
	in, err := intent.Parse(raw)
	require.NoError(t, err)
	return in
}

func mustSynthesize(t *testing.T, in intent.Intent, seed int64) topology.Topology {
	t.Helper()
	topo, err := synth.New().Synthesize(in, &seed)
	require.NoError(t, err)
	return topo
}

// starTopology is a hub with three spokes: one articulation point, no
// redundancy anywhere.
func starTopology() topology.Topology {
	link := func(a, b, ifA, ifB string) topology.Link {
		return topology.Link{DeviceA: a, InterfaceA: ifA, DeviceB: b, InterfaceB: ifB, IPAddressA: "10.0.0.1", IPAddressB: "10.0.0.2", SubnetMask: "255.255.255.252"}
	}
	return topology.Topology{
		Name: "star",
		Devices: []topology.Device{
			{Name: "hub", Kind: topology.DeviceSwitch},
			{Name: "s1", Kind: topology.DeviceSwitch},
			{Name: "s2", Kind: topology.DeviceSwitch},
			{Name: "s3", Kind: topology.DeviceSwitch},
		},
		Links: []topology.Link{
			link("hub", "s1", "eth1", "eth0"),
			link("hub", "s2", "eth2", "eth0"),
			link("hub", "s3", "eth3", "eth0"),
		},
	}
}

func TestValidateFullMeshCriticalSatisfied(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "full-mesh", SiteCount: 5, Redundancy: "critical", MinimizeSPOF: true, MaxHops: 2})
	topo := mustSynthesize(t, in, 42)

	result, err := New().Validate(topo, in)
	require.NoError(t, err)

	assert.True(t, result.Satisfied)
	assert.GreaterOrEqual(t, result.OverallScore, 90.0)
	assert.Equal(t, 100.0, result.RedundancyScore)
	assert.Equal(t, 100.0, result.PathDiversityScore)
	assert.True(t, result.MaxHopsOK)
	assert.True(t, result.SPOFEliminated)
	assert.True(t, result.PatternMatched)
	assert.Empty(t, result.Violations)
}

func TestValidateHubSpokeFlagsSPOFWithoutHardViolation(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "hub-spoke", SiteCount: 6, Redundancy: "minimum"})
	topo := mustSynthesize(t, in, 1)

	result, err := New().Validate(topo, in)
	require.NoError(t, err)

	// minimize_spof was never requested, so the hub is flagged in the
	// violations list but does not fail the SPOF check.
	assert.True(t, result.SPOFEliminated)
	assert.NotEmpty(t, result.Violations)
	assert.Contains(t, result.Violations[0], "single point")
}

func TestValidateMinimizeSPOFIsHardViolation(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "hub-spoke", SiteCount: 4, Redundancy: "minimum", MinimizeSPOF: true})

	result, err := New().Validate(starTopology(), in)
	require.NoError(t, err)

	assert.False(t, result.SPOFEliminated)
	assert.False(t, result.Satisfied)
	assert.Contains(t, result.Violations, "minimize_spof is set but single points of failure remain")
}

func TestValidateMaxHopsViolation(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "ring", SiteCount: 6, Redundancy: "standard", MaxHops: 2})
	topo := mustSynthesize(t, in, 3)

	result, err := New().Validate(topo, in)
	require.NoError(t, err)

	// A six-node ring has diameter 3.
	assert.False(t, result.MaxHopsOK)
	assert.False(t, result.Satisfied)
}

func TestValidateLeafSpineStructuralCheck(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "leaf-spine", SiteCount: 10, Redundancy: "critical", MinimizeSPOF: true, MaxHops: 3})
	topo := mustSynthesize(t, in, 9)

	result, err := New().Validate(topo, in)
	require.NoError(t, err)

	assert.True(t, result.PatternMatched)
	assert.True(t, result.SPOFEliminated)
	assert.GreaterOrEqual(t, result.OverallScore, 90.0)
}

func TestValidateLeafSpineRejectsNonBipartite(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "leaf-spine", SiteCount: 4, Redundancy: "minimum"})

	result, err := New().Validate(starTopology(), in)
	require.NoError(t, err)

	assert.False(t, result.PatternMatched)
}

func TestValidateIsDeterministic(t *testing.T) {
	in := mustParse(t, intent.Raw{Pattern: "full-mesh", SiteCount: 5, Redundancy: "critical", MinimizeSPOF: true, MaxHops: 2})
	topo := mustSynthesize(t, in, 42)

	v := New()
	first, err := v.Validate(topo, in)
	require.NoError(t, err)
	second, err := v.Validate(topo, in)
	require.NoError(t, err)

	// DurationMS is wall-clock telemetry; every scored field must match.
	first.DurationMS = 0
	second.DurationMS = 0
	assert.Equal(t, first, second)
}
