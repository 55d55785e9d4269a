package graph

import (
	"container/heap"
	"sort"
)

// ShortestPath returns the minimum-hop path from src to dst using
// breadth-first search. ok is false when src or dst is absent
// or the two nodes are disconnected.
func (g *Graph) ShortestPath(src, dst string) (path []string, ok bool) {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil, false
	}
	if src == dst {
		return []string{src}, true
	}

	parent := map[string]string{src: ""}
	visited := map[string]bool{src: true}
	queue := []string{src}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(cur) {
			if visited[n] {
				continue
			}
			visited[n] = true
			parent[n] = cur
			if n == dst {
				return reconstruct(parent, src, dst), true
			}
			queue = append(queue, n)
		}
	}
	return nil, false
}

// HopDistance returns the BFS hop count between src and dst, or -1 if
// disconnected.
func (g *Graph) HopDistance(src, dst string) int {
	path, ok := g.ShortestPath(src, dst)
	if !ok {
		return -1
	}
	return len(path) - 1
}

func reconstruct(parent map[string]string, src, dst string) []string {
	var rev []string
	for cur := dst; ; {
		rev = append(rev, cur)
		if cur == src {
			break
		}
		cur = parent[cur]
	}
	path := make([]string, len(rev))
	for i, n := range rev {
		path[len(rev)-1-i] = n
	}
	return path
}

// WeightedPath is the result of a Dijkstra shortest-path query.
type WeightedPath struct {
	Nodes []string
	Cost  int
}

type pqItem struct {
	node string
	dist int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].dist < pq[j].dist || (pq[i].dist == pq[j].dist && pq[i].node < pq[j].node)
}
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// ShortestWeightedPath runs Dijkstra from src to dst using edge weights
// for when weights matter. Ties in distance are broken
// by lexicographically smallest node name, for determinism.
func (g *Graph) ShortestWeightedPath(src, dst string) (WeightedPath, bool) {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return WeightedPath{}, false
	}

	const inf = 1 << 30
	dist := map[string]int{src: 0}
	parent := map[string]string{}
	visited := map[string]bool{}

	pq := &priorityQueue{{node: src, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == dst {
			break
		}

		edges := append([]Edge(nil), g.adj[cur.node]...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })

		for _, e := range edges {
			if visited[e.To] {
				continue
			}
			d, ok := dist[e.To]
			if !ok {
				d = inf
			}
			nd := dist[cur.node] + e.Weight
			if nd < d {
				dist[e.To] = nd
				parent[e.To] = cur.node
				heap.Push(pq, pqItem{node: e.To, dist: nd})
			}
		}
	}

	finalDist, ok := dist[dst]
	if !ok {
		return WeightedPath{}, false
	}
	nodes := reconstruct(parent, src, dst)
	return WeightedPath{Nodes: nodes, Cost: finalDist}, true
}

// Diameter returns the maximum, over the given node pairs, of the BFS hop count.
// Disconnected graphs report the maximum finite distance
// found; a graph with fewer than 2 nodes has diameter 0.
func (g *Graph) Diameter(pairs [][2]string) int {
	max := 0
	for _, p := range pairs {
		d := g.HopDistance(p[0], p[1])
		if d > max {
			max = d
		}
	}
	return max
}
