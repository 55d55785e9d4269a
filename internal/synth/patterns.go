package synth

import (
	"fmt"
	"math"

	"github.com/netforge-labs/topoforge/internal/addressing"
	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
)

func siteName(i int) string { return fmt.Sprintf("site-%03d", i+1) }

// buildFullMesh connects every pair of devices directly. A complete graph on
// n nodes already has n-1 edge-disjoint paths between any pair, so the
// redundancy budget for this pattern is zero: if the
// intent's target exceeds what n-1 provides, the pattern is unsatisfiable
// rather than patched with parallel links.
func (b *buildCtx) buildFullMesh() (topology.Topology, error) {
	n := b.intent.SiteCount
	t := topology.Topology{Name: b.intent.Name, Protocol: string(b.intent.Protocol)}

	for i := 0; i < n; i++ {
		name := siteName(i)
		d := b.newRouter(name, i)
		d.Role = "mesh"
		t.Devices = append(t.Devices, d)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if err := b.link(&t, siteName(i), siteName(j), 1); err != nil {
				return topology.Topology{}, err
			}
		}
	}

	target := b.intent.Redundancy.Target()
	if n-1 < target {
		return topology.Topology{}, &domerrors.UnsatisfiableError{
			Pattern:    string(intent.PatternFullMesh),
			Redundancy: string(b.intent.Redundancy),
			Reason:     fmt.Sprintf("a %d-device full mesh has only %d edge-disjoint paths between any pair; cannot reach target %d without parallel links, which this pattern does not add", n, n-1, target),
		}
	}
	return t, nil
}

// buildHubSpoke builds a single hub with one spoke per remaining site
// When minimize_spof is set the hub is unavoidably a SPOF at
// minimum redundancy (Unsatisfiable), and is eliminated at standard or
// above by introducing a secondary hub and dual-homing every spoke.
func (b *buildCtx) buildHubSpoke() (topology.Topology, error) {
	n := b.intent.SiteCount
	t := topology.Topology{Name: b.intent.Name, Protocol: string(b.intent.Protocol)}

	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = siteName(i)
		d := b.newRouter(names[i], i)
		if i == 0 {
			d.Role = "hub"
		} else {
			d.Role = "spoke"
		}
		t.Devices = append(t.Devices, d)
	}

	hub := names[0]
	spokes := names[1:]

	if b.intent.MinimizeSPOF && b.intent.Redundancy == intent.RedundancyMinimum {
		return topology.Topology{}, &domerrors.UnsatisfiableError{
			Pattern:    string(intent.PatternHubSpoke),
			Redundancy: string(b.intent.Redundancy),
			Reason:     "minimize_spof requires eliminating the hub as a single point of failure, which needs a second hub; minimum redundancy forbids the extra device/links this pattern would need",
		}
	}

	if b.intent.MinimizeSPOF && b.intent.Redundancy != intent.RedundancyMinimum {
		secondary := names[1]
		t.Devices[1].Role = "hub-secondary"
		spokes = names[2:]

		if err := b.link(&t, hub, secondary, 1); err != nil {
			return topology.Topology{}, err
		}
		for _, s := range spokes {
			if err := b.link(&t, hub, s, 1); err != nil {
				return topology.Topology{}, err
			}
			if err := b.link(&t, secondary, s, 1); err != nil {
				return topology.Topology{}, err
			}
		}
	} else {
		for _, s := range spokes {
			if err := b.link(&t, hub, s, 1); err != nil {
				return topology.Topology{}, err
			}
		}
	}

	if err := b.ensureRedundancy(&t, linkBudget(intent.PatternHubSpoke, n)); err != nil {
		return topology.Topology{}, err
	}
	return t, nil
}

// buildRing connects device i to device i+1 (mod n). At high or critical
// redundancy, chords between diametrically opposite devices are added
// before the generic redundancy loop runs, since a bare ring gives every
// pair exactly 2 edge-disjoint paths and chords are the idiomatic way to
// exceed that without densifying into a mesh.
func (b *buildCtx) buildRing() (topology.Topology, error) {
	n := b.intent.SiteCount
	t := topology.Topology{Name: b.intent.Name, Protocol: string(b.intent.Protocol)}

	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = siteName(i)
		d := b.newRouter(names[i], i)
		d.Role = "ring"
		t.Devices = append(t.Devices, d)
	}
	for i := 0; i < n; i++ {
		if err := b.link(&t, names[i], names[(i+1)%n], 1); err != nil {
			return topology.Topology{}, err
		}
	}

	if (b.intent.Redundancy == intent.RedundancyHigh || b.intent.Redundancy == intent.RedundancyCritical) && n >= 4 {
		for i := 0; i < n/2; i++ {
			opposite := (i + n/2) % n
			if opposite == i {
				continue
			}
			if err := b.link(&t, names[i], names[opposite], 1); err != nil {
				return topology.Topology{}, err
			}
		}
	}

	if err := b.ensureRedundancy(&t, linkBudget(intent.PatternRing, n)); err != nil {
		return topology.Topology{}, err
	}
	return t, nil
}

// buildTree lays out one core device, a layer of aggregation devices, and
// an access layer of switches beneath them. At standard
// redundancy or above, access devices dual-home to two aggregation devices
// instead of one.
func (b *buildCtx) buildTree() (topology.Topology, error) {
	n := b.intent.SiteCount
	t := topology.Topology{Name: b.intent.Name, Protocol: string(b.intent.Protocol)}

	numAgg := int(math.Ceil(math.Sqrt(float64(n - 1))))
	if numAgg < 1 {
		numAgg = 1
	}
	numAccess := n - 1 - numAgg
	for numAccess < 0 {
		numAgg--
		numAccess = n - 1 - numAgg
	}

	core := siteName(0)
	cd := b.newRouter(core, 0)
	cd.Role = "core"
	t.Devices = append(t.Devices, cd)

	aggNames := make([]string, numAgg)
	for i := 0; i < numAgg; i++ {
		name := siteName(1 + i)
		aggNames[i] = name
		d := b.newRouter(name, 1+i)
		d.Role = "aggregation"
		t.Devices = append(t.Devices, d)
		if err := b.link(&t, core, name, 1); err != nil {
			return topology.Topology{}, err
		}
	}

	dualHome := b.intent.Redundancy != intent.RedundancyMinimum && numAgg >= 2

	for i := 0; i < numAccess; i++ {
		name := siteName(1 + numAgg + i)
		d := b.newSwitch(name)
		d.Role = "access"
		t.Devices = append(t.Devices, d)

		primary := aggNames[i%numAgg]
		if err := b.link(&t, primary, name, 1); err != nil {
			return topology.Topology{}, err
		}
		if dualHome {
			secondary := aggNames[(i+1)%numAgg]
			if secondary != primary {
				if err := b.link(&t, secondary, name, 1); err != nil {
					return topology.Topology{}, err
				}
			}
		}
	}

	if err := b.ensureRedundancy(&t, linkBudget(intent.PatternTree, n)); err != nil {
		return topology.Topology{}, err
	}
	return t, nil
}

// buildLeafSpine splits the site count into a spine layer (routers) and a
// leaf layer (switches), fully cross-connecting every leaf to every spine
// leaf-spine pairs are fully adjacent and bipartite. The
// spine count follows ceil(sqrt(2*leaves)) clamped to [2, leaves]; since
// leaves and spines are mutually dependent, the split is resolved in a
// single pass using site_count as the initial leaf estimate.
func (b *buildCtx) buildLeafSpine() (topology.Topology, error) {
	n := b.intent.SiteCount
	if n < 4 {
		return topology.Topology{}, &domerrors.UnsatisfiableError{
			Pattern:    string(intent.PatternLeafSpine),
			Redundancy: string(b.intent.Redundancy),
			Reason:     fmt.Sprintf("leaf-spine needs at least 2 spines and 2 leaves (4 devices); site_count is %d", n),
		}
	}

	spines := clampInt(int(math.Ceil(math.Sqrt(2*float64(n)))), 2, n-2)
	leaves := n - spines

	t := topology.Topology{Name: b.intent.Name, Protocol: string(b.intent.Protocol)}

	spineNames := make([]string, spines)
	for i := 0; i < spines; i++ {
		name := siteName(i)
		spineNames[i] = name
		d := b.newRouter(name, i)
		d.Role = "spine"
		t.Devices = append(t.Devices, d)
	}

	leafNames := make([]string, leaves)
	for i := 0; i < leaves; i++ {
		name := siteName(spines + i)
		leafNames[i] = name
		d := b.newSwitch(name)
		d.Role = "leaf"
		t.Devices = append(t.Devices, d)
	}

	for _, leaf := range leafNames {
		for _, spine := range spineNames {
			if err := b.link(&t, spine, leaf, 1); err != nil {
				return topology.Topology{}, err
			}
		}
	}

	if err := b.ensureRedundancy(&t, linkBudget(intent.PatternLeafSpine, n)); err != nil {
		return topology.Topology{}, err
	}
	return t, nil
}

// buildHybrid partitions the sites into one leaf-spine core region and a
// handful of tree-shaped branch regions, then links each branch's root to
// the core. It delegates to the
// single-pattern builders for each region's internal shape so the same
// interface-numbering and addressing rules apply everywhere.
func (b *buildCtx) buildHybrid() (topology.Topology, error) {
	n := b.intent.SiteCount

	coreSize := int(math.Max(4, math.Round(float64(n)*0.4)))
	if coreSize > n-2 {
		coreSize = n - 2
	}
	remaining := n - coreSize

	numBranches := int(math.Max(1, math.Round(float64(remaining)/10)))
	if remaining/2 < numBranches {
		numBranches = remaining / 2
	}
	if numBranches < 1 {
		numBranches = 1
	}
	branchSizes := splitEvenly(remaining, numBranches)

	t := topology.Topology{Name: b.intent.Name, Protocol: string(b.intent.Protocol)}

	coreIn := b.intent
	coreIn.SiteCount = coreSize
	coreIn.Pattern = intent.PatternLeafSpine
	core, err := b.buildSubTopology(coreIn)
	if err != nil {
		return topology.Topology{}, err
	}
	mergeInto(&t, core, "core")
	for _, d := range core.Devices {
		b.ifaceCounter["core:"+d.Name] = b.ifaceCounter[d.Name]
	}

	branchRoots := make([]string, 0, numBranches)
	for bi, size := range branchSizes {
		if size < 2 {
			continue
		}
		branchIn := b.intent
		branchIn.SiteCount = size
		branchIn.Pattern = intent.PatternTree
		branch, err := b.buildSubTopology(branchIn)
		if err != nil {
			return topology.Topology{}, err
		}
		label := fmt.Sprintf("branch%d", bi+1)

		var rootName string
		for _, d := range branch.Devices {
			if d.Role == "core" {
				rootName = label + ":" + d.Name
				break
			}
		}
		mergeInto(&t, branch, label)
		for _, d := range branch.Devices {
			b.ifaceCounter[label+":"+d.Name] = b.ifaceCounter[d.Name]
		}
		if rootName != "" {
			branchRoots = append(branchRoots, rootName)
		}
	}

	routerIndex := 0
	for i := range t.Devices {
		if t.Devices[i].IsRouter() {
			t.Devices[i].RouterID = addressing.RouterID(routerIndex)
			routerIndex++
		}
	}

	linksPerBranch := b.intent.Redundancy.Target()
	for bi, root := range branchRoots {
		anchors := pickAnchors(core.Devices, linksPerBranch, bi)
		for _, anchor := range anchors {
			if err := b.link(&t, "core:"+anchor, root, 1); err != nil {
				return topology.Topology{}, err
			}
		}
	}

	if err := b.ensureRedundancy(&t, linkBudget(intent.PatternHybrid, n)); err != nil {
		return topology.Topology{}, err
	}
	return t, nil
}

// buildSubTopology runs a fresh single-pattern builder over a sub-intent,
// sharing this buildCtx's allocator and interface counters so that device
// names, IPs, and interface labels remain unique across the whole hybrid
// topology.
func (b *buildCtx) buildSubTopology(sub intent.Intent) (topology.Topology, error) {
	inner := &buildCtx{intent: sub, alloc: b.alloc, rng: b.rng, ifaceCounter: b.ifaceCounter}
	switch sub.Pattern {
	case intent.PatternLeafSpine:
		return inner.buildLeafSpine()
	case intent.PatternTree:
		return inner.buildTree()
	default:
		return topology.Topology{}, fmt.Errorf("synth: unsupported hybrid sub-pattern %q", sub.Pattern)
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func splitEvenly(total, parts int) []int {
	if parts <= 0 {
		return nil
	}
	base := total / parts
	rem := total % parts
	out := make([]int, parts)
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

func mergeInto(t *topology.Topology, part topology.Topology, prefix string) {
	for _, d := range part.Devices {
		d.Name = prefix + ":" + d.Name
		t.Devices = append(t.Devices, d)
	}
	for _, l := range part.Links {
		l.DeviceA = prefix + ":" + l.DeviceA
		l.DeviceB = prefix + ":" + l.DeviceB
		t.Links = append(t.Links, l)
	}
}

func pickAnchors(coreDevices []topology.Device, count int, offset int) []string {
	var spines []string
	for _, d := range coreDevices {
		if d.Role == "spine" {
			spines = append(spines, d.Name)
		}
	}
	if len(spines) == 0 {
		return nil
	}
	if count < 1 {
		count = 1
	}
	if count > len(spines) {
		count = len(spines)
	}
	out := make([]string, count)
	for i := 0; i < count; i++ {
		out[i] = spines[(offset+i)%len(spines)]
	}
	return out
}
