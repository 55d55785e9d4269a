package recommend

import (
	"fmt"

	domintent "github.com/netforge-labs/topoforge/internal/domain/intent"
)

// suitabilityFactor scores how structurally appropriate pattern is for in's
// site count and design goal, independent of any historical performance
// data. It multiplies the composite score so an objectively poor fit (e.g.
// full-mesh at 200 sites) can never win on history alone.
func suitabilityFactor(pattern domintent.Pattern, in domintent.Intent) (float64, []string, []string) {
	n := in.SiteCount
	var pros, cons []string

	switch pattern {
	case domintent.PatternFullMesh:
		if n <= 6 {
			pros = append(pros, "every site directly reachable, minimal hop count")
			return 1.0, pros, cons
		}
		cons = append(cons, fmt.Sprintf("link count grows O(n^2); impractical past ~6 sites (have %d)", n))
		return 0.3, pros, cons

	case domintent.PatternLeafSpine:
		if n >= 8 {
			pros = append(pros, "data-center-like fabric, scales cleanly with uniform leaf/spine fanout")
			return 1.0, pros, cons
		}
		cons = append(cons, "leaf-spine overhead isn't justified below 8 sites")
		return 0.6, pros, cons

	case domintent.PatternHubSpoke:
		pros = append(pros, "lowest link count for a given site count, cost-optimized")
		if in.DesignGoal == domintent.DesignGoalCost {
			pros = append(pros, "matches the stated cost design goal")
			return 1.0, pros, cons
		}
		if in.MinimizeSPOF && in.Redundancy == domintent.RedundancyMinimum {
			cons = append(cons, "single hub is a structural SPOF unless redundancy is raised")
			return 0.4, pros, cons
		}
		return 0.8, pros, cons

	case domintent.PatternTree:
		if n >= 20 {
			pros = append(pros, "hierarchical aggregation scales to large site counts with standard redundancy")
			return 1.0, pros, cons
		}
		return 0.7, pros, cons

	case domintent.PatternRing:
		if n >= 4 && n <= 12 {
			pros = append(pros, "moderate redundancy with linear link growth, fits mid-size deployments")
			return 1.0, pros, cons
		}
		if n < 4 {
			cons = append(cons, "too few sites for a ring to offer meaningful path diversity")
			return 0.5, pros, cons
		}
		cons = append(cons, "ring diameter grows with site count; hop budgets get tight past ~12 sites")
		return 0.6, pros, cons

	case domintent.PatternHybrid:
		if n >= 20 {
			pros = append(pros, "core/branch split isolates failure domains at scale")
			return 0.9, pros, cons
		}
		cons = append(cons, "hybrid's region overhead isn't worth it below ~20 sites")
		return 0.5, pros, cons

	default:
		return 0.5, pros, cons
	}
}

// heuristicProfile returns a pattern's static 0-100 quality estimate for use
// before any history has accumulated. It is deliberately coarse: it exists
// only to break ties among patterns with zero track record, not to predict
// validator scores.
func heuristicProfile(pattern domintent.Pattern, in domintent.Intent) (float64, []string, []string) {
	var pros, cons []string
	switch pattern {
	case domintent.PatternFullMesh:
		return 85, pros, cons
	case domintent.PatternLeafSpine:
		return 82, pros, cons
	case domintent.PatternHybrid:
		return 78, pros, cons
	case domintent.PatternTree:
		return 75, pros, cons
	case domintent.PatternRing:
		return 70, pros, cons
	case domintent.PatternHubSpoke:
		if in.MinimizeSPOF {
			cons = append(cons, "hub-spoke without a secondary hub leaves a SPOF at the hub")
			return 55, pros, cons
		}
		return 68, pros, cons
	default:
		return 50, pros, cons
	}
}
