// Package export maps a synthesized topology onto a containerlab-shaped
// struct. It is a pure, dependency-free transformation: YAML emission is
// left to the caller (the CLI's run command optionally pipes the result
// through gopkg.in/yaml.v3), so this package never imports a YAML library
// itself.
package export

import (
	"fmt"

	"github.com/netforge-labs/topoforge/internal/domain/topology"
)

// containerlab images per device kind; routers and switches both use the
// same cEOS image.
const (
	routerImage = "ceos:latest"
	switchImage = "ceos:latest"
)

// ContainerLabNode is one node entry under topology.nodes.
type ContainerLabNode struct {
	Kind  string `yaml:"kind" json:"kind"`
	Image string `yaml:"image" json:"image"`
}

// ContainerLabEndpoint is one side of a containerlab link.
type ContainerLabEndpoint struct {
	Node      string `yaml:"-" json:"-"`
	Interface string `yaml:"-" json:"-"`
}

// String renders "node:interface", the form containerlab expects inside a
// link's endpoints list.
func (e ContainerLabEndpoint) String() string {
	return fmt.Sprintf("%s:%s", e.Node, e.Interface)
}

// ContainerLabLink is one point-to-point link, rendered as a two-element
// endpoints list.
type ContainerLabLink struct {
	Endpoints []string `yaml:"endpoints" json:"endpoints"`
}

// ContainerLabConfig is the nested "topology:" block.
type ContainerLabConfig struct {
	Nodes map[string]ContainerLabNode `yaml:"nodes" json:"nodes"`
	Links []ContainerLabLink          `yaml:"links" json:"links"`
}

// ContainerLabTopology is the root document shape.
type ContainerLabTopology struct {
	Name     string             `yaml:"name" json:"name"`
	Topology ContainerLabConfig `yaml:"topology" json:"topology"`
}

// ContainerLab maps t onto a containerlab-shaped struct. It is a pure
// function: no I/O, no randomness, same t always produces the same output.
func ContainerLab(t topology.Topology) ContainerLabTopology {
	nodes := make(map[string]ContainerLabNode, len(t.Devices))
	for _, d := range t.Devices {
		nodes[d.Name] = ContainerLabNode{
			Kind:  string(d.Kind),
			Image: imageFor(d.Kind),
		}
	}

	links := make([]ContainerLabLink, 0, len(t.Links))
	for _, l := range t.Links {
		links = append(links, ContainerLabLink{
			Endpoints: []string{
				ContainerLabEndpoint{Node: l.DeviceA, Interface: l.InterfaceA}.String(),
				ContainerLabEndpoint{Node: l.DeviceB, Interface: l.InterfaceB}.String(),
			},
		})
	}

	return ContainerLabTopology{
		Name: t.Name,
		Topology: ContainerLabConfig{
			Nodes: nodes,
			Links: links,
		},
	}
}

func imageFor(kind topology.DeviceKind) string {
	if kind == topology.DeviceRouter {
		return routerImage
	}
	return switchImage
}
