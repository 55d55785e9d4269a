package graph

import "sort"

// ConnectedComponents partitions g's nodes into connected components,
// each returned sorted, and the outer slice ordered by each component's
// smallest member; used after a simulated mutation to rank surviving islands.
func (g *Graph) ConnectedComponents() [][]string {
	visited := make(map[string]bool, g.NodeCount())
	var components [][]string

	for _, start := range g.Nodes() {
		if visited[start] {
			continue
		}
		var comp []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, n := range g.Neighbors(cur) {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		sort.Strings(comp)
		components = append(components, comp)
	}

	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })
	return components
}

// IsConnected reports whether g has exactly one connected component.
// An empty graph is trivially connected.
func (g *Graph) IsConnected() bool {
	if g.NodeCount() <= 1 {
		return true
	}
	return len(g.ConnectedComponents()) == 1
}
