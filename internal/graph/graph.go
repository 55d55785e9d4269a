// Package graph implements the topology's graph model: an undirected
// multigraph keyed by device name, copyable by value of its adjacency maps
// so the failure simulator can mutate a scratch copy without touching the
// Topology it was built from, so analysis never pins the original.
package graph

import (
	"sort"

	"github.com/netforge-labs/topoforge/internal/domain/topology"
)

// Edge is one directed half of an undirected link. Source is implicit (the
// adjacency map key); To is the neighbor. LinkIndex identifies which
// topology.Link this edge instance originated from, so simulators can
// remove a specific parallel link by index.
type Edge struct {
	To        string
	Weight    int
	LinkIndex int
}

// Graph is an undirected, weighted multigraph. The zero value is not
// usable; construct with New or NewFromTopology.
type Graph struct {
	order []string          // declared node insertion order, for deterministic iteration
	adj   map[string][]Edge // adjacency list; each undirected edge appears twice
	links []topology.Link   // original links, indexed by LinkIndex (for back-reference)
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[string][]Edge)}
}

// NewFromTopology builds a Graph whose nodes are t's devices and whose
// edges are t's links, weighted by Link.Cost.
func NewFromTopology(t topology.Topology) *Graph {
	g := New()
	for _, d := range t.Devices {
		g.AddNode(d.Name)
	}
	for i, l := range t.Links {
		g.addLinkEdge(l.DeviceA, l.DeviceB, l.Cost, i)
	}
	g.links = append([]topology.Link(nil), t.Links...)
	return g
}

// AddNode registers a node with no edges if it does not already exist.
func (g *Graph) AddNode(name string) {
	if _, ok := g.adj[name]; !ok {
		g.adj[name] = nil
		g.order = append(g.order, name)
	}
}

// AddEdge adds an undirected edge between a and b with the given weight.
// LinkIndex is set to -1 (no originating topology.Link).
func (g *Graph) AddEdge(a, b string, weight int) {
	g.addLinkEdge(a, b, weight, -1)
}

func (g *Graph) addLinkEdge(a, b string, weight, linkIndex int) {
	g.AddNode(a)
	g.AddNode(b)
	g.adj[a] = append(g.adj[a], Edge{To: b, Weight: weight, LinkIndex: linkIndex})
	g.adj[b] = append(g.adj[b], Edge{To: a, Weight: weight, LinkIndex: linkIndex})
}

// Nodes returns every node name in deterministic (sorted) order.
func (g *Graph) Nodes() []string {
	names := append([]string(nil), g.order...)
	sort.Strings(names)
	return names
}

// HasNode reports whether name is a node of g.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.adj[name]
	return ok
}

// Neighbors returns the names reachable in one hop from name, in
// deterministic (sorted) order. Parallel edges produce repeated entries.
func (g *Graph) Neighbors(name string) []string {
	edges := g.adj[name]
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	sort.Strings(out)
	return out
}

// EdgesFrom returns the raw Edge list for name, unsorted (insertion order).
func (g *Graph) EdgesFrom(name string) []Edge {
	return g.adj[name]
}

// Degree returns the number of edge endpoints incident to name (parallel
// edges count multiply).
func (g *Graph) Degree(name string) int {
	return len(g.adj[name])
}

// NodeCount returns |V|.
func (g *Graph) NodeCount() int { return len(g.adj) }

// EdgeCount returns |E| (each undirected edge counted once).
func (g *Graph) EdgeCount() int {
	total := 0
	for _, edges := range g.adj {
		total += len(edges)
	}
	return total / 2
}

// Copy returns a deep copy of g whose mutation cannot affect the original.
// The failure simulator always mutates a Copy, never the caller's graph
// so simulation stays pure and never mutates the input topology.
func (g *Graph) Copy() *Graph {
	cp := &Graph{
		order: append([]string(nil), g.order...),
		adj:   make(map[string][]Edge, len(g.adj)),
		links: g.links,
	}
	for k, v := range g.adj {
		cp.adj[k] = append([]Edge(nil), v...)
	}
	return cp
}

// RemoveNode deletes name and every edge incident to it.
func (g *Graph) RemoveNode(name string) {
	for _, e := range g.adj[name] {
		g.adj[e.To] = removeEdgeTo(g.adj[e.To], name)
	}
	delete(g.adj, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// RemoveEdge deletes one instance of the undirected edge {a,b}. If
// linkIndex >= 0, only an edge instance with that LinkIndex is removed
// (used to single out one of several parallel links); otherwise any
// instance between a and b is removed.
func (g *Graph) RemoveEdge(a, b string, linkIndex int) {
	g.adj[a] = removeOneEdge(g.adj[a], b, linkIndex)
	g.adj[b] = removeOneEdge(g.adj[b], a, linkIndex)
}

// LinkAt returns the originating topology.Link for a LinkIndex, and
// whether it was found (synthetic edges built via AddEdge have no link).
func (g *Graph) LinkAt(index int) (topology.Link, bool) {
	if index < 0 || index >= len(g.links) {
		return topology.Link{}, false
	}
	return g.links[index], true
}

func removeEdgeTo(edges []Edge, to string) []Edge {
	out := edges[:0:0]
	for _, e := range edges {
		if e.To != to {
			out = append(out, e)
		}
	}
	return out
}

func removeOneEdge(edges []Edge, to string, linkIndex int) []Edge {
	for i, e := range edges {
		if e.To == to && (linkIndex < 0 || e.LinkIndex == linkIndex) {
			out := append([]Edge(nil), edges[:i]...)
			out = append(out, edges[i+1:]...)
			return out
		}
	}
	return edges
}
