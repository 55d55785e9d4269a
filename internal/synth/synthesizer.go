// Package synth implements the topology synthesizer: it turns
// an intent.Intent into a topology.Topology satisfying the domain
// invariants and, best-effort, the intent's pattern and
// redundancy target.
package synth

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/netforge-labs/topoforge/internal/addressing"
	domerrors "github.com/netforge-labs/topoforge/internal/domain/errors"
	"github.com/netforge-labs/topoforge/internal/domain/intent"
	"github.com/netforge-labs/topoforge/internal/domain/topology"
	"github.com/netforge-labs/topoforge/internal/graph"
)

// largeGraphThreshold is the |V| above which the redundancy-completion loop
// samples pairs instead of scanning all of them.
const largeGraphThreshold = 100

// sampleSize bounds how many pairs are examined per iteration once a graph
// exceeds largeGraphThreshold.
const sampleSize = 200

// Synthesizer builds topologies from intents. It carries no state between
// calls; construct once and reuse.
type Synthesizer struct{}

// New returns a ready-to-use Synthesizer.
func New() *Synthesizer { return &Synthesizer{} }

// Synthesize builds a Topology for in. If seed is non-nil, every
// nondeterministic choice the synthesizer makes (redundancy-edge sampling
// when |V| is large) is derived from it, so that repeated calls with the
// same (intent, seed) pair produce an identical device list, link list, and
// IP assignment. If seed is nil an unseeded source is
// used; invariants still hold, but replay is not guaranteed.
func (s *Synthesizer) Synthesize(in intent.Intent, seed *int64) (topology.Topology, error) {
	if err := in.Validate(); err != nil {
		return topology.Topology{}, err
	}
	if !in.HasPattern() {
		return topology.Topology{}, &domerrors.InvalidIntentError{
			Field: "pattern",
			Hint:  "pattern must be resolved (directly or via the recommender) before synthesis",
		}
	}

	alloc, err := addressing.New(addressing.DefaultLinkRange)
	if err != nil {
		return topology.Topology{}, err
	}

	b := &buildCtx{
		intent:       in,
		alloc:        alloc,
		rng:          newRNG(seed),
		ifaceCounter: make(map[string]int),
	}

	var t topology.Topology
	switch in.Pattern {
	case intent.PatternFullMesh:
		t, err = b.buildFullMesh()
	case intent.PatternHubSpoke:
		t, err = b.buildHubSpoke()
	case intent.PatternRing:
		t, err = b.buildRing()
	case intent.PatternTree:
		t, err = b.buildTree()
	case intent.PatternLeafSpine:
		t, err = b.buildLeafSpine()
	case intent.PatternHybrid:
		t, err = b.buildHybrid()
	default:
		return topology.Topology{}, &domerrors.InvalidIntentError{Field: "pattern", Value: in.Pattern}
	}
	if err != nil {
		return topology.Topology{}, err
	}

	if err := t.Validate(false); err != nil {
		return topology.Topology{}, err
	}
	return t, nil
}

func newRNG(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(uint64(*seed), uint64(*seed)>>1|1))
	}
	now := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(now, now>>1|1))
}

// buildCtx carries the per-synthesis-call mutable state: the address
// allocator, the interface-label counters, and the RNG used only for
// sampling decisions in ensureRedundancy.
type buildCtx struct {
	intent       intent.Intent
	alloc        *addressing.Allocator
	rng          *rand.Rand
	ifaceCounter map[string]int
}

func (b *buildCtx) newRouter(name string, index int) topology.Device {
	return topology.Device{
		Name:     name,
		Kind:     topology.DeviceRouter,
		RouterID: addressing.RouterID(index),
		ASN:      64512 + index,
	}
}

func (b *buildCtx) newSwitch(name string) topology.Device {
	return topology.Device{Name: name, Kind: topology.DeviceSwitch}
}

func (b *buildCtx) nextInterface(device string) string {
	idx := b.ifaceCounter[device]
	b.ifaceCounter[device]++
	return fmt.Sprintf("eth%d", idx)
}

// link appends a single link between devices a and b with the given OSPF
// cost, allocating addressing and interface labels deterministically.
func (b *buildCtx) link(t *topology.Topology, a, bDev string, cost int) error {
	subnet, err := b.alloc.NextLinkSubnet()
	if err != nil {
		return err
	}
	l := topology.Link{
		DeviceA:    a,
		InterfaceA: b.nextInterface(a),
		IPAddressA: subnet.IPA.String(),
		DeviceB:    bDev,
		InterfaceB: b.nextInterface(bDev),
		IPAddressB: subnet.IPB.String(),
		SubnetMask: subnet.Mask.String(),
		Cost:       cost,
	}
	t.Links = append(t.Links, l)
	return nil
}

// ensureRedundancy repeatedly strengthens the weakest device pair (by
// edge-disjoint-path count) until every pair meets the intent's redundancy
// target, or the pattern's link budget is exhausted. For graphs
// larger than largeGraphThreshold it samples pairs instead of enumerating
// all of them, using the seeded RNG so the sampling is reproducible.
func (b *buildCtx) ensureRedundancy(t *topology.Topology, budget int) error {
	target := b.intent.Redundancy.Target()
	added := 0

	for {
		names := t.DeviceNames()
		sort.Strings(names)

		pairs := candidatePairs(names, b.rng)

		g := graph.NewFromTopology(*t)
		worstA, worstB, worstVal := "", "", -1
		for _, p := range pairs {
			v := g.EdgeDisjointPaths(p[0], p[1])
			if v >= target {
				continue
			}
			if worstVal == -1 || v < worstVal || (v == worstVal && lexLess(p[0], p[1], worstA, worstB)) {
				worstVal, worstA, worstB = v, p[0], p[1]
			}
		}

		if worstVal == -1 {
			return nil
		}
		if added >= budget {
			return &domerrors.UnsatisfiableError{
				Pattern:    string(b.intent.Pattern),
				Redundancy: string(b.intent.Redundancy),
				Reason:     fmt.Sprintf("pair %s<->%s still has only %d edge-disjoint path(s) after exhausting the link budget (%d extra links)", worstA, worstB, worstVal, budget),
			}
		}
		if err := b.link(t, worstA, worstB, 1); err != nil {
			return err
		}
		added++
	}
}

func lexLess(a1, b1, a2, b2 string) bool {
	if a1 != a2 {
		return a1 < a2
	}
	return b1 < b2
}

// candidatePairs returns every pair when names is small, or a deterministic
// sample of sampleSize pairs (seeded) once names grows past
// largeGraphThreshold.
func candidatePairs(names []string, rng *rand.Rand) [][2]string {
	n := len(names)
	if n <= largeGraphThreshold {
		pairs := make([][2]string, 0, n*(n-1)/2)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, [2]string{names[i], names[j]})
			}
		}
		return pairs
	}

	seen := make(map[[2]string]bool, sampleSize)
	pairs := make([][2]string, 0, sampleSize)
	for len(pairs) < sampleSize {
		i := rng.IntN(n)
		j := rng.IntN(n)
		if i == j {
			continue
		}
		a, c := names[i], names[j]
		if a > c {
			a, c = c, a
		}
		key := [2]string{a, c}
		if seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, key)
	}
	return pairs
}

// linkBudget returns the maximum number of additional (beyond the bare
// pattern) links ensureRedundancy may add, per the multipliers fixed in
// a fixed per-pattern table below.
func linkBudget(pattern intent.Pattern, siteCount int) int {
	switch pattern {
	case intent.PatternFullMesh:
		return 0
	case intent.PatternHubSpoke:
		return int(2.0 * float64(siteCount-1))
	case intent.PatternRing:
		return int(1.5 * float64(siteCount))
	case intent.PatternTree:
		return int(2.0 * float64(siteCount-1))
	case intent.PatternLeafSpine:
		return int(1.5 * float64(siteCount))
	case intent.PatternHybrid:
		return int(2.0 * float64(siteCount))
	default:
		return 0
	}
}
