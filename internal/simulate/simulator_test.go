package simulate

import (
	"testing"

	"github.com/netforge-labs/topoforge/internal/domain/simulation"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// starTopology builds a hub (a) with three spokes (b, c, d); removing a
// partitions the graph into three singletons.
func starTopology() topology.Topology {
	link := func(a, b string) topology.Link {
		return topology.Link{DeviceA: a, InterfaceA: "eth0", DeviceB: b, InterfaceB: "eth0", IPAddressA: "10.0.0.1", IPAddressB: "10.0.0.2", SubnetMask: "255.255.255.252"}
	}
	return topology.Topology{
		Name: "star",
		Devices: []topology.Device{
			{Name: "a", Kind: topology.DeviceSwitch},
			{Name: "b", Kind: topology.DeviceSwitch},
			{Name: "c", Kind: topology.DeviceSwitch},
			{Name: "d", Kind: topology.DeviceSwitch},
		},
		Links: []topology.Link{link("a", "b"), link("a", "c"), link("a", "d")},
	}
}

func TestRunNodeDownPartitionsStarTopology(t *testing.T) {
	result, err := New().Run(starTopology(), simulation.NodeDown("a"))
	require.NoError(t, err)

	assert.True(t, result.Partitioned)
	assert.Len(t, result.Components, 3)
	assert.Equal(t, 100.0, result.ConnectivityLoss)
	assert.Equal(t, simulation.SeverityCritical, result.Severity)
}

func TestRunNodeDownRejectsUnknownDevice(t *testing.T) {
	_, err := New().Run(starTopology(), simulation.NodeDown("z"))
	require.Error(t, err)
}

func TestRunLinkDownBreaksEveryPairOfIsolatedSpoke(t *testing.T) {
	edge := simulation.EdgeRef{DeviceA: "a", InterfaceA: "eth0", DeviceB: "b", InterfaceB: "eth0"}
	result, err := New().Run(starTopology(), simulation.LinkDown(edge))
	require.NoError(t, err)

	// Cutting a-b isolates spoke b, so every pair involving b breaks.
	assert.True(t, result.Partitioned)
	require.Len(t, result.BrokenPairs, 3)
	assert.Equal(t, "a", result.BrokenPairs[0].DeviceA)
	assert.Equal(t, "b", result.BrokenPairs[0].DeviceB)
	assert.Equal(t, "b", result.BrokenPairs[1].DeviceA)
	assert.Equal(t, "c", result.BrokenPairs[1].DeviceB)
	assert.Equal(t, "b", result.BrokenPairs[2].DeviceA)
	assert.Equal(t, "d", result.BrokenPairs[2].DeviceB)
}

func TestRunLinkDownRejectsUnknownEndpoint(t *testing.T) {
	edge := simulation.EdgeRef{DeviceA: "a", InterfaceA: "eth0", DeviceB: "z", InterfaceB: "eth0"}
	_, err := New().Run(starTopology(), simulation.LinkDown(edge))
	require.Error(t, err)
}

// ringTopology builds a 4-node ring: a-b-c-d-a.
func ringTopology() topology.Topology {
	link := func(a, b, ifA, ifB string) topology.Link {
		return topology.Link{DeviceA: a, InterfaceA: ifA, DeviceB: b, InterfaceB: ifB, IPAddressA: "10.0.0.1", IPAddressB: "10.0.0.2", SubnetMask: "255.255.255.252"}
	}
	return topology.Topology{
		Name: "ring",
		Devices: []topology.Device{
			{Name: "a", Kind: topology.DeviceSwitch},
			{Name: "b", Kind: topology.DeviceSwitch},
			{Name: "c", Kind: topology.DeviceSwitch},
			{Name: "d", Kind: topology.DeviceSwitch},
		},
		Links: []topology.Link{
			link("a", "b", "eth0", "eth0"),
			link("b", "c", "eth1", "eth0"),
			link("c", "d", "eth1", "eth0"),
			link("d", "a", "eth1", "eth1"),
		},
	}
}

func TestRunLinkDownOnRingLosesNothing(t *testing.T) {
	edge := simulation.EdgeRef{DeviceA: "a", InterfaceA: "eth0", DeviceB: "b", InterfaceB: "eth0"}
	result, err := New().Run(ringTopology(), simulation.LinkDown(edge))
	require.NoError(t, err)

	assert.False(t, result.Partitioned)
	assert.Empty(t, result.BrokenPairs)
	assert.Equal(t, 0.0, result.ConnectivityLoss)
	assert.Equal(t, simulation.SeverityLow, result.Severity)
}

func TestRunCascadeRemovesSeedAndNeighborsWithinDepth(t *testing.T) {
	result, err := New().Run(starTopology(), simulation.Cascade("a", 1))
	require.NoError(t, err)

	assert.False(t, result.Partitioned, "no component survives, so nothing is split into several")
	assert.Empty(t, result.Components, "cascade at depth 1 from the hub removes every node in a star")
}

func TestRunUnrecognizedScenarioKindErrors(t *testing.T) {
	_, err := New().Run(starTopology(), simulation.Scenario{Kind: "bogus"})
	require.Error(t, err)
}

func TestSeverityForLossThresholds(t *testing.T) {
	assert.Equal(t, simulation.SeverityCritical, simulation.SeverityForLoss(60))
	assert.Equal(t, simulation.SeverityHigh, simulation.SeverityForLoss(30))
	assert.Equal(t, simulation.SeverityMedium, simulation.SeverityForLoss(15))
	assert.Equal(t, simulation.SeverityLow, simulation.SeverityForLoss(5))
}

func TestRecoveryEstimateByKind(t *testing.T) {
	assert.Equal(t, 30, simulation.RecoveryEstimate(simulation.KindNodeDown))
	assert.Equal(t, 10, simulation.RecoveryEstimate(simulation.KindLinkDown))
	assert.Equal(t, 45, simulation.RecoveryEstimate(simulation.KindMultiLink))
	assert.Equal(t, 60, simulation.RecoveryEstimate(simulation.KindCascade))
}
