package simulate

import (
	"github.com/netforge-labs/topoforge/internal/domain/simulation"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
)

// GenerateTestScenarios builds the worst-case single-node, single-link, and
// two-link scenarios for t by connectivity loss: every node, every link and
// every pair of links is tried, and for each shape the first candidate with
// the highest loss, in the order of t.Devices and t.Links, is returned. Ties
// are not broken by device name.
func (s *Simulator) GenerateTestScenarios(t topology.Topology) ([]simulation.Scenario, error) {
	var out []simulation.Scenario

	if worst, ok, err := s.worstNode(t); err != nil {
		return nil, err
	} else if ok {
		out = append(out, worst)
	}

	if worst, ok, err := s.worstLink(t); err != nil {
		return nil, err
	} else if ok {
		out = append(out, worst)
	}

	if worst, ok, err := s.worstLinkPair(t); err != nil {
		return nil, err
	} else if ok {
		out = append(out, worst)
	}

	return out, nil
}

func (s *Simulator) worstNode(t topology.Topology) (simulation.Scenario, bool, error) {
	var best simulation.Scenario
	bestLoss := -1.0
	found := false

	for _, d := range t.Devices {
		sc := simulation.NodeDown(d.Name)
		res, err := s.Run(t, sc)
		if err != nil {
			return simulation.Scenario{}, false, err
		}
		if res.ConnectivityLoss > bestLoss {
			bestLoss, best, found = res.ConnectivityLoss, sc, true
		}
	}
	return best, found, nil
}

func (s *Simulator) worstLink(t topology.Topology) (simulation.Scenario, bool, error) {
	var best simulation.Scenario
	bestLoss := -1.0
	found := false

	for _, l := range t.Links {
		sc := simulation.LinkDown(edgeRefOf(l))
		res, err := s.Run(t, sc)
		if err != nil {
			return simulation.Scenario{}, false, err
		}
		if res.ConnectivityLoss > bestLoss {
			bestLoss, best, found = res.ConnectivityLoss, sc, true
		}
	}
	return best, found, nil
}

func (s *Simulator) worstLinkPair(t topology.Topology) (simulation.Scenario, bool, error) {
	var best simulation.Scenario
	bestLoss := -1.0
	found := false

	for i := 0; i < len(t.Links); i++ {
		for j := i + 1; j < len(t.Links); j++ {
			sc := simulation.MultiLink([]simulation.EdgeRef{edgeRefOf(t.Links[i]), edgeRefOf(t.Links[j])})
			res, err := s.Run(t, sc)
			if err != nil {
				return simulation.Scenario{}, false, err
			}
			if res.ConnectivityLoss > bestLoss {
				bestLoss, best, found = res.ConnectivityLoss, sc, true
			}
		}
	}
	return best, found, nil
}

func edgeRefOf(l topology.Link) simulation.EdgeRef {
	return simulation.EdgeRef{DeviceA: l.DeviceA, InterfaceA: l.InterfaceA, DeviceB: l.DeviceB, InterfaceB: l.InterfaceB}
}
