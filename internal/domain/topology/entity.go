// Package topology models the device-and-link graph the synthesizer
// produces and every downstream component (analyzer, simulator, validator)
// consumes. Device kind is modeled as a small closed tagged
// variant rather than an inheritance hierarchy.
package topology

import (
	"fmt"
	"net"
	"sort"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
)

// DeviceKind is the closed set of device variants. Router carries a router
// ID and AS number and participates in OSPF; Switch is layer-2 only.
type DeviceKind string

const (
	DeviceRouter DeviceKind = "router"
	DeviceSwitch DeviceKind = "switch"
)

// Device is identified by a Name unique within a Topology.
type Device struct {
	Name     string     `json:"name" db:"name"`
	Kind     DeviceKind `json:"kind" db:"kind"`
	RouterID string     `json:"router_id,omitempty" db:"router_id"`
	ASN      int        `json:"asn,omitempty" db:"asn"`
	// Role is a free-form synthesizer annotation (e.g. "hub", "spine",
	// "core", "leaf") used by the validator's pattern-matched checks and
	// by presentation layers. It carries no invariant of its own.
	Role string `json:"role,omitempty" db:"role"`
}

// IsRouter reports whether d participates in OSPF.
func (d Device) IsRouter() bool { return d.Kind == DeviceRouter }

// Link is an undirected association between two distinct devices.
type Link struct {
	DeviceA     string `json:"device_a" db:"device_a"`
	InterfaceA  string `json:"interface_a" db:"interface_a"`
	IPAddressA  string `json:"ip_address_a" db:"ip_address_a"`
	DeviceB     string `json:"device_b" db:"device_b"`
	InterfaceB  string `json:"interface_b" db:"interface_b"`
	IPAddressB  string `json:"ip_address_b" db:"ip_address_b"`
	SubnetMask  string `json:"subnet_mask" db:"subnet_mask"`
	Cost        int    `json:"cost" db:"cost"`
}

// Other returns the endpoint name on the opposite side of device name.
// Panics (programmer error) if name is not an endpoint of l.
func (l Link) Other(name string) string {
	switch name {
	case l.DeviceA:
		return l.DeviceB
	case l.DeviceB:
		return l.DeviceA
	default:
		panic(fmt.Sprintf("topology: %q is not an endpoint of link %s<->%s", name, l.DeviceA, l.DeviceB))
	}
}

// Endpoints returns both endpoint device names in declared order.
func (l Link) Endpoints() (string, string) { return l.DeviceA, l.DeviceB }

// Topology is a named triple of devices, links, and a routing-protocol tag.
type Topology struct {
	Name     string     `json:"name" db:"name"`
	Devices  []Device   `json:"devices" db:"-"`
	Links    []Link     `json:"links" db:"-"`
	Protocol string     `json:"protocol" db:"protocol"`
}

// DeviceByName returns the device with the given name, or false if absent.
func (t Topology) DeviceByName(name string) (Device, bool) {
	for _, d := range t.Devices {
		if d.Name == name {
			return d, true
		}
	}
	return Device{}, false
}

// DeviceNames returns every device name in declared order.
func (t Topology) DeviceNames() []string {
	names := make([]string, len(t.Devices))
	for i, d := range t.Devices {
		names[i] = d.Name
	}
	return names
}

// Validate checks the structural invariants every topology must hold.
// allowDisconnected lets the synthesizer build a deliberately
// pathological test fixture for a disconnected graph; production
// callers should always pass false.
func (t Topology) Validate(allowDisconnected bool) error {
	names := make(map[string]bool, len(t.Devices))
	for _, d := range t.Devices {
		if names[d.Name] {
			return &domerrors.InvalidIntentError{Field: "devices", Value: d.Name, Hint: "duplicate device name"}
		}
		names[d.Name] = true
	}

	routerIDs := make(map[string]string)
	subnets := make(map[string]string)
	ifaceByDevice := make(map[string]map[string]bool)

	for _, d := range t.Devices {
		if d.IsRouter() {
			if d.RouterID == "" {
				return &domerrors.InvalidIntentError{Field: "router_id", Value: d.Name, Hint: "router missing router id"}
			}
			if owner, ok := routerIDs[d.RouterID]; ok && owner != d.Name {
				return &domerrors.InvalidIntentError{Field: "router_id", Value: d.RouterID, Hint: fmt.Sprintf("shared by %s and %s", owner, d.Name)}
			}
			routerIDs[d.RouterID] = d.Name
		}
	}

	for _, l := range t.Links {
		if l.DeviceA == l.DeviceB {
			return &domerrors.InvalidIntentError{Field: "link", Value: l.DeviceA, Hint: "link endpoints must be distinct devices"}
		}
		if !names[l.DeviceA] {
			return &domerrors.InvalidIntentError{Field: "link.device_a", Value: l.DeviceA, Hint: "references unknown device"}
		}
		if !names[l.DeviceB] {
			return &domerrors.InvalidIntentError{Field: "link.device_b", Value: l.DeviceB, Hint: "references unknown device"}
		}
		if l.Cost < 0 {
			return &domerrors.InvalidIntentError{Field: "link.cost", Value: l.Cost, Hint: "must be nonnegative"}
		}

		for _, ep := range []struct{ dev, iface string }{{l.DeviceA, l.InterfaceA}, {l.DeviceB, l.InterfaceB}} {
			if ifaceByDevice[ep.dev] == nil {
				ifaceByDevice[ep.dev] = make(map[string]bool)
			}
			if ifaceByDevice[ep.dev][ep.iface] {
				return &domerrors.InvalidIntentError{Field: "interface", Value: ep.iface, Hint: fmt.Sprintf("duplicate interface label on %s", ep.dev)}
			}
			ifaceByDevice[ep.dev][ep.iface] = true
		}

		subnet, err := subnetKey(l.IPAddressA, l.IPAddressB, l.SubnetMask)
		if err != nil {
			return &domerrors.InvalidIntentError{Field: "link.subnet", Value: fmt.Sprintf("%s/%s", l.IPAddressA, l.IPAddressB), Hint: err.Error()}
		}
		if owner, ok := subnets[subnet]; ok {
			return &domerrors.InvalidIntentError{Field: "link.subnet", Value: subnet, Hint: fmt.Sprintf("reused by link %s", owner)}
		}
		subnets[subnet] = fmt.Sprintf("%s<->%s", l.DeviceA, l.DeviceB)
	}

	if !allowDisconnected && len(t.Devices) > 0 {
		if countComponents(t) != 1 {
			return &domerrors.InvalidIntentError{Field: "topology", Value: t.Name, Hint: "devices are not all mutually reachable"}
		}
	}

	return nil
}

func subnetKey(ipA, ipB, mask string) (string, error) {
	a := net.ParseIP(ipA)
	b := net.ParseIP(ipB)
	m := net.ParseIP(mask)
	if a == nil || b == nil {
		return "", fmt.Errorf("invalid endpoint IP")
	}
	if m == nil {
		return "", fmt.Errorf("invalid subnet mask")
	}
	maskBytes := net.IPMask(m.To4())
	netA := a.Mask(maskBytes)
	netB := b.Mask(maskBytes)
	if netA == nil || netB == nil || !netA.Equal(netB) {
		return "", fmt.Errorf("endpoints do not share a subnet")
	}
	return netA.String() + "/" + mask, nil
}

// countComponents does a plain adjacency-list BFS without depending on the
// graph package, so that Validate has no import cycle with internal/graph
// (which itself is built from a Topology).
func countComponents(t Topology) int {
	adj := make(map[string][]string, len(t.Devices))
	for _, d := range t.Devices {
		adj[d.Name] = nil
	}
	for _, l := range t.Links {
		adj[l.DeviceA] = append(adj[l.DeviceA], l.DeviceB)
		adj[l.DeviceB] = append(adj[l.DeviceB], l.DeviceA)
	}

	visited := make(map[string]bool, len(adj))
	components := 0
	names := make([]string, 0, len(adj))
	for n := range adj {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, start := range names {
		if visited[start] {
			continue
		}
		components++
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nbr := range adj[cur] {
				if !visited[nbr] {
					visited[nbr] = true
					queue = append(queue, nbr)
				}
			}
		}
	}
	return components
}
