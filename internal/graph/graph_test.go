package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphBasics(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.HasNode("a"))
	assert.False(t, g.HasNode("z"))
	assert.Equal(t, []string{"a", "c"}, g.Neighbors("b"))
}

func TestGraphCopyIsIndependent(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)

	cp := g.Copy()
	cp.RemoveNode("b")

	assert.True(t, g.HasNode("b"), "original graph must be unaffected by mutating the copy")
	assert.False(t, cp.HasNode("b"))
}

func TestConnectedComponents(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)
	g.AddEdge("c", "d", 1)
	g.AddNode("e")

	comps := g.ConnectedComponents()
	require.Len(t, comps, 3)
	assert.Equal(t, []string{"a", "b"}, comps[0])
	assert.Equal(t, []string{"c", "d"}, comps[1])
	assert.Equal(t, []string{"e"}, comps[2])
	assert.False(t, g.IsConnected())
}

func TestIsConnectedSingleComponent(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)
	assert.True(t, g.IsConnected())
}

func TestArticulationPointsOnPathGraph(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)
	g.AddEdge("c", "d", 1)

	assert.Equal(t, []string{"b", "c"}, g.ArticulationPoints())
}

func TestArticulationPointsOnCycleHasNone(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)
	g.AddEdge("c", "a", 1)

	assert.Empty(t, g.ArticulationPoints())
}

func TestParallelEdgesAreNotArticulationPoints(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)
	g.AddEdge("a", "b", 1)

	assert.Empty(t, g.ArticulationPoints(), "a double link between two nodes should survive a single-link failure")
	assert.Equal(t, 2, g.EdgeDisjointPaths("a", "b"))
}

func TestShortestPath(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)
	g.AddEdge("a", "c", 1)

	path, ok := g.ShortestPath("a", "c")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, path)

	_, ok = g.ShortestPath("a", "nonexistent")
	assert.False(t, ok)
}

func TestShortestWeightedPathPrefersCheaperRoute(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 10)
	g.AddEdge("b", "c", 10)
	g.AddEdge("a", "c", 5)

	wp, ok := g.ShortestWeightedPath("a", "c")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, wp.Nodes)
	assert.Equal(t, 5, wp.Cost)
}

func TestEdgeDisjointPathsOnFullMesh(t *testing.T) {
	g := New()
	nodes := []string{"a", "b", "c", "d"}
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			g.AddEdge(nodes[i], nodes[j], 1)
		}
	}

	// each node has degree 3 in a 4-node full mesh
	assert.Equal(t, 3, g.EdgeDisjointPaths("a", "b"))
	assert.Equal(t, 3, g.MinEdgeDisjointPaths(nodes))
}

func TestEdgeDisjointPathsDisconnected(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	assert.Equal(t, 0, g.EdgeDisjointPaths("a", "b"))
}

func TestDiameter(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "c", 1)
	g.AddEdge("c", "d", 1)

	pairs := [][2]string{{"a", "d"}, {"a", "b"}, {"b", "c"}}
	assert.Equal(t, 3, g.Diameter(pairs))
}
