package export

import (
	"testing"

	"github.com/netforge-labs/topoforge/internal/domain/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerLabMapsDevicesAndLinks(t *testing.T) {
	topo := topology.Topology{
		Name: "lab",
		Devices: []topology.Device{
			{Name: "r1", Kind: topology.DeviceRouter, RouterID: "10.1.1.1"},
			{Name: "sw1", Kind: topology.DeviceSwitch},
		},
		Links: []topology.Link{
			{DeviceA: "r1", InterfaceA: "eth0", DeviceB: "sw1", InterfaceB: "eth1", IPAddressA: "10.100.0.1", IPAddressB: "10.100.0.2", SubnetMask: "255.255.255.252"},
		},
	}

	out := ContainerLab(topo)

	assert.Equal(t, "lab", out.Name)
	require.Len(t, out.Topology.Nodes, 2)
	assert.Equal(t, string(topology.DeviceRouter), out.Topology.Nodes["r1"].Kind)
	assert.NotEmpty(t, out.Topology.Nodes["r1"].Image)

	require.Len(t, out.Topology.Links, 1)
	assert.Equal(t, []string{"r1:eth0", "sw1:eth1"}, out.Topology.Links[0].Endpoints)
}

func TestContainerLabIsDeterministic(t *testing.T) {
	topo := topology.Topology{
		Name: "lab",
		Devices: []topology.Device{
			{Name: "a", Kind: topology.DeviceSwitch},
			{Name: "b", Kind: topology.DeviceSwitch},
		},
		Links: []topology.Link{
			{DeviceA: "a", InterfaceA: "eth0", DeviceB: "b", InterfaceB: "eth0"},
		},
	}

	assert.Equal(t, ContainerLab(topo), ContainerLab(topo))
}
