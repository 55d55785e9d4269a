package graph

import "sort"

// EdgeDisjointPaths returns the count of internally-edge-disjoint paths
// between src and dst, computed via Menger's theorem:
// the max-flow between src and dst in the network obtained by giving every
// undirected edge instance unit capacity in each direction. This mirrors
// the BFS-augmenting-path (Edmonds-Karp) construction used elsewhere in the
// graph-algorithm corpus, specialized to unit capacities.
func (g *Graph) EdgeDisjointPaths(src, dst string) int {
	if !g.HasNode(src) || !g.HasNode(dst) || src == dst {
		return 0
	}

	cap := make(map[string]map[string]int, g.NodeCount())
	ensure := func(u string) {
		if cap[u] == nil {
			cap[u] = make(map[string]int)
		}
	}
	for _, u := range g.Nodes() {
		ensure(u)
		for _, e := range g.adj[u] {
			ensure(e.To)
			cap[u][e.To]++
		}
	}

	flow := 0
	for {
		path := bfsAugmentingPath(cap, src, dst)
		if path == nil {
			break
		}
		for i := 0; i < len(path)-1; i++ {
			u, v := path[i], path[i+1]
			cap[u][v]--
			ensure(v)
			cap[v][u]++
		}
		flow++
	}
	return flow
}

// bfsAugmentingPath finds a shortest (by hop count) path from src to dst
// with strictly positive residual capacity on every arc, breaking ties by
// lexicographically smallest node name at each step for determinism.
func bfsAugmentingPath(cap map[string]map[string]int, src, dst string) []string {
	parent := map[string]string{src: ""}
	visited := map[string]bool{src: true}
	queue := []string{src}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		neighbors := make([]string, 0, len(cap[cur]))
		for v, c := range cap[cur] {
			if c > 0 {
				neighbors = append(neighbors, v)
			}
		}
		sort.Strings(neighbors)

		for _, v := range neighbors {
			if visited[v] {
				continue
			}
			visited[v] = true
			parent[v] = cur
			if v == dst {
				return reconstruct(parent, src, dst)
			}
			queue = append(queue, v)
		}
	}
	return nil
}

// MinEdgeDisjointPaths returns the minimum EdgeDisjointPaths value across
// every pair in nodes (used by the validator's observed-minimum
// computation). Returns 0 for fewer than 2 nodes.
func (g *Graph) MinEdgeDisjointPaths(nodes []string) int {
	if len(nodes) < 2 {
		return 0
	}
	min := -1
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			v := g.EdgeDisjointPaths(nodes[i], nodes[j])
			if min == -1 || v < min {
				min = v
			}
		}
	}
	if min == -1 {
		return 0
	}
	return min
}
