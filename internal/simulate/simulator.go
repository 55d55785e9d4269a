// Package simulate implements the failure simulator: it
// removes devices/links from a scratch copy of the graph and measures the
// resulting connectivity loss. It never mutates the topology or graph it
// is given.
package simulate

import (
	"fmt"
	"sort"

	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	"github.com/netforge-labs/topoforge/internal/domain/simulation"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	"github.com/netforge-labs/topoforge/internal/graph"
)

// Simulator runs failure scenarios against a topology. It is stateless.
type Simulator struct{}

// New returns a ready-to-use Simulator.
func New() *Simulator { return &Simulator{} }

// Run executes scenario against t and returns the outcome. It returns an
// *domerrors.InvalidIntentError, without touching t, if the scenario
// references a device or link that does not exist in t.
func (s *Simulator) Run(t topology.Topology, scenario simulation.Scenario) (simulation.Result, error) {
	g := graph.NewFromTopology(t)
	before := reachablePairs(g, g.Nodes())

	working := g.Copy()
	switch scenario.Kind {
	case simulation.KindNodeDown:
		if !working.HasNode(scenario.Device) {
			return simulation.Result{}, &domerrors.InvalidIntentError{Field: "scenario.device", Value: scenario.Device, Hint: "device not present in topology"}
		}
		working.RemoveNode(scenario.Device)

	case simulation.KindLinkDown:
		if err := removeEdgeRef(working, scenario.Edge); err != nil {
			return simulation.Result{}, err
		}

	case simulation.KindMultiLink:
		for _, e := range scenario.Edges {
			if err := removeEdgeRef(working, e); err != nil {
				return simulation.Result{}, err
			}
		}

	case simulation.KindCascade:
		if !working.HasNode(scenario.Device) {
			return simulation.Result{}, &domerrors.InvalidIntentError{Field: "scenario.device", Value: scenario.Device, Hint: "device not present in topology"}
		}
		cascadeFailure(working, scenario.Device, scenario.Depth)

	default:
		return simulation.Result{}, &domerrors.InvalidIntentError{Field: "scenario.kind", Value: string(scenario.Kind), Hint: "unrecognized scenario kind"}
	}

	comps := working.ConnectedComponents()
	after := reachablePairs(working, working.Nodes())
	broken := brokenPairs(g, working, comps)

	loss := 0.0
	if before > 0 {
		loss = 100 * float64(before-after) / float64(before)
	}

	return simulation.Result{
		Scenario:          scenario,
		Partitioned:       len(comps) > 1,
		Components:        comps,
		BrokenPairs:       broken,
		ReachablePairs:    before,
		ConnectivityLoss:  loss,
		Severity:          simulation.SeverityForLoss(loss),
		RecoveryEstimateS: simulation.RecoveryEstimate(scenario.Kind),
	}, nil
}

func removeEdgeRef(g *graph.Graph, e simulation.EdgeRef) error {
	if !g.HasNode(e.DeviceA) || !g.HasNode(e.DeviceB) {
		return &domerrors.InvalidIntentError{Field: "scenario.edge", Value: fmt.Sprintf("%s<->%s", e.DeviceA, e.DeviceB), Hint: "endpoint not present in topology"}
	}
	idx := findLinkIndex(g, e)
	g.RemoveEdge(e.DeviceA, e.DeviceB, idx)
	return nil
}

// findLinkIndex locates the LinkIndex of the edge matching e's interface
// pair, so that removing one of several parallel links removes the right
// one. Returns -1 (remove any matching edge) if no exact interface match
// is found.
func findLinkIndex(g *graph.Graph, e simulation.EdgeRef) int {
	for _, edge := range g.EdgesFrom(e.DeviceA) {
		if edge.To != e.DeviceB || edge.LinkIndex < 0 {
			continue
		}
		l, ok := g.LinkAt(edge.LinkIndex)
		if !ok {
			continue
		}
		if matchesInterfaces(l, e) {
			return edge.LinkIndex
		}
	}
	return -1
}

func matchesInterfaces(l topology.Link, e simulation.EdgeRef) bool {
	if l.DeviceA == e.DeviceA && l.DeviceB == e.DeviceB {
		return l.InterfaceA == e.InterfaceA && l.InterfaceB == e.InterfaceB
	}
	if l.DeviceA == e.DeviceB && l.DeviceB == e.DeviceA {
		return l.InterfaceA == e.InterfaceB && l.InterfaceB == e.InterfaceA
	}
	return false
}

// cascadeFailure removes seed, then walks outward removing every neighbor
// still standing up to depth hops, modeling a control-plane failure that
// propagates before routing reconverges.
func cascadeFailure(g *graph.Graph, seed string, depth int) {
	if depth < 1 {
		depth = 1
	}
	frontier := []string{seed}
	visited := map[string]bool{seed: true}

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []string
		for _, n := range frontier {
			for _, nbr := range g.Neighbors(n) {
				if !visited[nbr] {
					visited[nbr] = true
					next = append(next, nbr)
				}
			}
		}
		frontier = next
	}

	names := make([]string, 0, len(visited))
	for n := range visited {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		g.RemoveNode(n)
	}
}

func reachablePairs(g *graph.Graph, names []string) int {
	count := 0
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if _, ok := g.ShortestPath(names[i], names[j]); ok {
				count++
			}
		}
	}
	return count
}

// brokenPairs returns every pair that was connected in before but is no
// longer present (as two distinct nodes) or no longer reachable in after.
func brokenPairs(before, after *graph.Graph, comps [][]string) []simulation.BrokenPair {
	stillPresent := make(map[string]bool)
	for _, c := range comps {
		for _, n := range c {
			stillPresent[n] = true
		}
	}

	names := before.Nodes()
	var out []simulation.BrokenPair
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			priorPath, hadPath := before.ShortestPath(a, b)
			if !hadPath {
				continue
			}
			if !stillPresent[a] || !stillPresent[b] {
				out = append(out, simulation.BrokenPair{DeviceA: a, DeviceB: b, PriorPath: priorPath})
				continue
			}
			if _, ok := after.ShortestPath(a, b); !ok {
				out = append(out, simulation.BrokenPair{DeviceA: a, DeviceB: b, PriorPath: priorPath})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeviceA != out[j].DeviceA {
			return out[i].DeviceA < out[j].DeviceA
		}
		return out[i].DeviceB < out[j].DeviceB
	})
	return out
}
