// Package validate implements the intent validator: it scores
// a synthesized topology against the intent that was supposed to produce
// it, independent of whether the synthesizer itself ran.
package validate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	"github.com/netforge-labs/topoforge/internal/domain/validation"
	"github.com/netforge-labs/topoforge/internal/graph"
	"github.com/netforge-labs/topoforge/internal/simulate"
)

// satisfiedThreshold is the minimum overall_score for Result.Satisfied,
// absent any hard violation.
const satisfiedThreshold = 70.0

// Validator scores a topology against the intent it claims to satisfy. It
// is stateless and deterministic: identical inputs produce byte-identical
// Results.
type Validator struct{}

// New returns a ready-to-use Validator.
func New() *Validator { return &Validator{} }

// Validate compares t against in and returns the scored result.
func (v *Validator) Validate(t topology.Topology, in intent.Intent) (validation.Result, error) {
	start := time.Now()
	g := graph.NewFromTopology(t)
	names := g.Nodes()

	observedMin := g.MinEdgeDisjointPaths(names)
	target := in.Redundancy.Target()

	redundancyScore := 100.0
	if target > 0 {
		redundancyScore = math.Min(100, 100*float64(observedMin)/float64(target))
	}

	pathDiversityScore := pathDiversityPercent(g, names, target)

	maxHopsOK := maxHops(g, names) <= in.MaxHops

	spofs := g.ArticulationPoints()
	spofEliminated := !requiresSPOFElimination(in) || len(spofs) == 0

	patternMatched, patternViolations := checkPattern(t, g, in.Pattern)

	var violations []string
	violations = append(violations, patternViolations...)
	if !maxHopsOK {
		violations = append(violations, fmt.Sprintf("diameter exceeds max_hops (%d)", in.MaxHops))
	}
	if requiresSPOFElimination(in) && !spofEliminated {
		violations = append(violations, "minimize_spof is set but single points of failure remain")
	}
	if !requiresSPOFElimination(in) && len(spofs) > 0 {
		// Flagged so the caller sees the risk, but not a hard violation:
		// the intent accepted the SPOF by leaving minimize_spof unset.
		violations = append(violations, fmt.Sprintf("%d single point(s) of failure present (elimination not requested)", len(spofs)))
	}

	overall := 0.40*redundancyScore + 0.35*pathDiversityScore + 0.25*resilienceScore(t)
	if !maxHopsOK {
		overall -= 20
	}
	if requiresSPOFElimination(in) && !spofEliminated {
		overall -= 30
	}
	if !patternMatched {
		overall -= 15
	}
	overall = math.Max(0, math.Min(100, overall))

	hardViolation := !maxHopsOK || (requiresSPOFElimination(in) && !spofEliminated)
	satisfied := overall >= satisfiedThreshold && !hardViolation

	sort.Strings(violations)

	return validation.Result{
		Satisfied:          satisfied,
		OverallScore:       overall,
		RedundancyScore:    redundancyScore,
		PathDiversityScore: pathDiversityScore,
		MaxHopsOK:          maxHopsOK,
		SPOFEliminated:     spofEliminated,
		PatternMatched:     patternMatched,
		Violations:         violations,
		DurationMS:         time.Since(start).Milliseconds(),
	}, nil
}

// requiresSPOFElimination decides whether an unresolved hub-style SPOF
// counts as a hard violation. When minimize_spof is false, residual SPOFs
// are *flagged* without failing validation over them, since the intent
// never asked for their elimination.
func requiresSPOFElimination(in intent.Intent) bool {
	return in.MinimizeSPOF
}

func pathDiversityPercent(g *graph.Graph, names []string, target int) float64 {
	if len(names) < 2 || target <= 0 {
		return 100
	}
	met := 0
	total := 0
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			total++
			if g.EdgeDisjointPaths(names[i], names[j]) >= target {
				met++
			}
		}
	}
	if total == 0 {
		return 100
	}
	return 100 * float64(met) / float64(total)
}

func maxHops(g *graph.Graph, names []string) int {
	pairs := make([][2]string, 0, len(names)*(len(names)-1)/2)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pairs = append(pairs, [2]string{names[i], names[j]})
		}
	}
	return g.Diameter(pairs)
}

// resilienceScore reduces a failure-simulation sweep to a single
// [0,100] figure (100 - average worst-case connectivity loss across the
// generated test scenarios), feeding the overall_score's 0.25 weight
func resilienceScore(t topology.Topology) float64 {
	sim := simulate.New()
	scenarios, err := sim.GenerateTestScenarios(t)
	if err != nil || len(scenarios) == 0 {
		return 100
	}
	total := 0.0
	for _, sc := range scenarios {
		res, err := sim.Run(t, sc)
		if err != nil {
			continue
		}
		total += res.ConnectivityLoss
	}
	avgLoss := total / float64(len(scenarios))
	return math.Max(0, 100-avgLoss)
}

// checkPattern runs the pattern-specific structural check. An
// unset pattern (the caller asked the recommender to choose) always
// matches.
func checkPattern(t topology.Topology, g *graph.Graph, pattern intent.Pattern) (bool, []string) {
	switch pattern {
	case intent.PatternUnset:
		return true, nil
	case intent.PatternLeafSpine:
		return checkLeafSpine(t, g)
	case intent.PatternFullMesh:
		return checkFullMesh(g)
	case intent.PatternRing:
		return checkRing(g)
	default:
		// hub-spoke, tree, and hybrid have no single rigid shape the
		// validator enforces beyond the invariants already checked
		// elsewhere (connectivity, redundancy); they are considered
		// matched by construction.
		return true, nil
	}
}

// checkLeafSpine verifies the bipartite, fully-adjacent structure a
// leaf-spine fabric requires: every device is either all-router (spine) or all-switch
// (leaf), and every leaf connects to every spine.
func checkLeafSpine(t topology.Topology, g *graph.Graph) (bool, []string) {
	var spines, leaves []string
	for _, d := range t.Devices {
		if d.IsRouter() {
			spines = append(spines, d.Name)
		} else {
			leaves = append(leaves, d.Name)
		}
	}
	if len(spines) == 0 || len(leaves) == 0 {
		return false, []string{"leaf-spine pattern requires both router (spine) and switch (leaf) devices"}
	}
	for _, l := range leaves {
		for _, sp := range spines {
			found := false
			for _, e := range g.EdgesFrom(l) {
				if e.To == sp {
					found = true
					break
				}
			}
			if !found {
				return false, []string{fmt.Sprintf("leaf %s is not adjacent to spine %s", l, sp)}
			}
		}
	}
	for _, sp1 := range spines {
		for _, sp2 := range spines {
			if sp1 == sp2 {
				continue
			}
			for _, e := range g.EdgesFrom(sp1) {
				if e.To == sp2 {
					return false, []string{"leaf-spine pattern forbids direct spine-to-spine links"}
				}
			}
		}
	}
	return true, nil
}

func checkFullMesh(g *graph.Graph) (bool, []string) {
	names := g.Nodes()
	n := len(names)
	want := n - 1
	for _, name := range names {
		if g.Degree(name) != want {
			return false, []string{fmt.Sprintf("%s has degree %d, expected %d in a full mesh", name, g.Degree(name), want)}
		}
	}
	return true, nil
}

func checkRing(g *graph.Graph) (bool, []string) {
	names := g.Nodes()
	for _, name := range names {
		if g.Degree(name) < 2 {
			return false, []string{fmt.Sprintf("%s has degree %d, expected at least 2 on a ring", name, g.Degree(name))}
		}
	}
	return true, nil
}
