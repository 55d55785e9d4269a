// Package analysis implements graph-theoretic
// health checks over a synthesized topology.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/netforge-labs/topoforge/internal/domain/analysis"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	"github.com/netforge-labs/topoforge/internal/graph"
)

// largeGraphThreshold is the |V| above which pairwise computations
// (unbalanced-path detection, diameter) sample instead of enumerating
// every pair.
const largeGraphThreshold = 100

// samplePairs bounds how many pairs are examined once a graph exceeds
// largeGraphThreshold.
const samplePairs = 500

// Analyzer computes an analysis.Result for a topology. It is stateless and
// safe for concurrent use.
type Analyzer struct{}

// New returns a ready-to-use Analyzer.
func New() *Analyzer { return &Analyzer{} }

// Analyze runs every health check against t and returns the combined
// result. A topology with fewer than 2 devices is trivially healthy: no
// findings, health score 100.
func (a *Analyzer) Analyze(t topology.Topology) analysis.Result {
	if len(t.Devices) < 2 {
		return analysis.Result{HealthScore: 100, Summary: "fewer than 2 devices: nothing to analyze"}
	}

	g := graph.NewFromTopology(t)
	names := g.Nodes()
	sampled := len(names) > largeGraphThreshold

	result := analysis.Result{
		DeviceCount: len(t.Devices),
		LinkCount:   len(t.Links),
		Sampled:     sampled,
	}

	result.SPOFs = findSPOFs(g)
	result.UnbalancedPaths = findUnbalancedPaths(g, names, sampled)
	result.OverloadedNodes = findOverloadedNodes(g)
	result.Diameter = g.Diameter(pairsFor(names, sampled))
	result.ConnectivityCoef = connectivityCoefficient(g)
	result.RedundancyFactor = redundancyFactor(g, names, sampled)
	result.HealthScore = healthScore(result)
	result.Summary = summarize(result)
	return result
}

// findSPOFs reports every articulation point, annotated with the
// percentage of all devices that become unreachable from a surviving
// non-articulation anchor when the point is removed. Removing the hub of
// a 6-device star leaves 5 mutually unreachable devices: from any
// anchor's vantage the other 4 survivors plus the hub are gone, 5/6.
func findSPOFs(g *graph.Graph) []analysis.SPOF {
	points := g.ArticulationPoints()
	isCut := make(map[string]bool, len(points))
	for _, p := range points {
		isCut[p] = true
	}
	total := g.NodeCount()
	spofs := make([]analysis.SPOF, 0, len(points))

	for _, p := range points {
		without := g.Copy()
		without.RemoveNode(p)
		comps := without.ConnectedComponents()
		if len(comps) < 2 || total == 0 {
			continue
		}

		// Anchor in the largest surviving component, preferring a
		// non-articulation node, lexicographically smallest for
		// determinism.
		largest := comps[0]
		for _, c := range comps {
			if len(c) > len(largest) {
				largest = c
			}
		}
		anchor := ""
		for _, name := range largest {
			if isCut[name] {
				continue
			}
			if anchor == "" || name < anchor {
				anchor = name
			}
		}
		if anchor == "" {
			anchor = largest[0]
			for _, name := range largest {
				if name < anchor {
					anchor = name
				}
			}
		}

		unreachable := total - len(largest)
		pct := 100 * float64(unreachable) / float64(total)

		spofs = append(spofs, analysis.SPOF{
			Device:           p,
			ImpactPercent:    pct,
			Tier:             analysis.TierForImpact(pct),
			IsolatedFromName: anchor,
		})
	}

	sort.Slice(spofs, func(i, j int) bool {
		if spofs[i].ImpactPercent != spofs[j].ImpactPercent {
			return spofs[i].ImpactPercent > spofs[j].ImpactPercent
		}
		return spofs[i].Device < spofs[j].Device
	})
	return spofs
}

// findUnbalancedPaths flags device pairs whose edge-disjoint paths diverge
// sharply in hop count: balance = shortest/longest among up to 3
// edge-disjoint paths, flagged when balance < 0.5.
func findUnbalancedPaths(g *graph.Graph, names []string, sampled bool) []analysis.UnbalancedPath {
	var out []analysis.UnbalancedPath
	for _, p := range pairsFor(names, sampled) {
		hops := disjointPathHops(g, p[0], p[1], 3)
		if len(hops) < 2 {
			continue
		}
		min, max := hops[0], hops[0]
		for _, h := range hops {
			if h < min {
				min = h
			}
			if h > max {
				max = h
			}
		}
		if max == 0 {
			continue
		}
		balance := float64(min) / float64(max)
		if balance < 0.5 {
			out = append(out, analysis.UnbalancedPath{
				DeviceA: p[0], DeviceB: p[1], MinHops: min, MaxHops: max, Balance: balance,
			})
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

// disjointPathHops greedily extracts up to k edge-disjoint paths between
// src and dst from a residual copy of g, returning each path's hop count.
// It is a simplified, hop-count-only relative of graph.EdgeDisjointPaths
// that also needs the path lengths, not just the count.
func disjointPathHops(g *graph.Graph, src, dst string, k int) []int {
	working := g.Copy()
	var hops []int
	for i := 0; i < k; i++ {
		path, ok := working.ShortestPath(src, dst)
		if !ok {
			break
		}
		hops = append(hops, len(path)-1)
		for j := 0; j < len(path)-1; j++ {
			working.RemoveEdge(path[j], path[j+1], -1)
		}
	}
	return hops
}

// findOverloadedNodes flags devices whose degree exceeds 1.5x the mean
// degree.
func findOverloadedNodes(g *graph.Graph) []analysis.OverloadedNode {
	names := g.Nodes()
	if len(names) == 0 {
		return nil
	}
	total := 0
	for _, n := range names {
		total += g.Degree(n)
	}
	mean := float64(total) / float64(len(names))
	if mean == 0 {
		return nil
	}

	var out []analysis.OverloadedNode
	for _, n := range names {
		deg := g.Degree(n)
		ratio := float64(deg) / mean
		if ratio > 1.5 {
			out = append(out, analysis.OverloadedNode{Device: n, Degree: deg, MeanRatio: ratio})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanRatio != out[j].MeanRatio {
			return out[i].MeanRatio > out[j].MeanRatio
		}
		return out[i].Device < out[j].Device
	})
	return out
}

// connectivityCoefficient is the graph density 2|E|/(|V|(|V|-1)).
func connectivityCoefficient(g *graph.Graph) float64 {
	n := g.NodeCount()
	if n < 2 {
		return 0
	}
	return 2 * float64(g.EdgeCount()) / float64(n*(n-1))
}

// redundancyFactor is the mean edge-disjoint-path count across sampled/all
// pairs.
func redundancyFactor(g *graph.Graph, names []string, sampled bool) float64 {
	pairs := pairsFor(names, sampled)
	if len(pairs) == 0 {
		return 0
	}
	total := 0
	for _, p := range pairs {
		total += g.EdgeDisjointPaths(p[0], p[1])
	}
	return float64(total) / float64(len(pairs))
}

// pairsFor returns every pair when sampled is false, or a deterministic
// strided subset otherwise. No seed is involved: analysis is read-only
// and the stride over sorted names is already reproducible.
func pairsFor(names []string, sampled bool) [][2]string {
	n := len(names)
	all := make([][2]string, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			all = append(all, [2]string{names[i], names[j]})
		}
	}
	if !sampled || len(all) <= samplePairs {
		return all
	}
	stride := len(all) / samplePairs
	if stride < 1 {
		stride = 1
	}
	out := make([][2]string, 0, samplePairs)
	for i := 0; i < len(all); i += stride {
		out = append(out, all[i])
	}
	return out
}

// healthScore applies a fixed penalty/bonus schedule:
// start at 100, subtract per finding by tier, add back for strong
// connectivity and redundancy, clamp to [0, 100].
func healthScore(r analysis.Result) int {
	score := 100.0
	for _, s := range r.SPOFs {
		score -= tierPenalty(s.Tier)
	}
	for range r.UnbalancedPaths {
		score -= 5
	}
	if r.ConnectivityCoef >= 0.6 {
		score += 10
	}
	if r.RedundancyFactor >= 2.0 {
		score += 10
	}
	return int(math.Max(0, math.Min(100, score)))
}

func tierPenalty(t analysis.RiskTier) float64 {
	switch t {
	case analysis.RiskCritical:
		return 30
	case analysis.RiskHigh:
		return 20
	case analysis.RiskMedium:
		return 10
	default:
		return 5
	}
}

func summarize(r analysis.Result) string {
	if len(r.SPOFs) == 0 && len(r.UnbalancedPaths) == 0 && len(r.OverloadedNodes) == 0 {
		return fmt.Sprintf("healthy: %d devices, %d links, no single points of failure", r.DeviceCount, r.LinkCount)
	}
	return fmt.Sprintf("%d device(s), %d link(s): %d SPOF(s), %d unbalanced path(s), %d overloaded node(s), health %d/100",
		r.DeviceCount, r.LinkCount, len(r.SPOFs), len(r.UnbalancedPaths), len(r.OverloadedNodes), r.HealthScore)
}
