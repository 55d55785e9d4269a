package graph

import "sort"

// ArticulationPoints returns every node whose removal increases the number
// of connected components, found in O(V+E) via the standard low-link DFS
// (Hopcroft-Tarjan). The result is sorted for determinism.
func (g *Graph) ArticulationPoints() []string {
	disc := make(map[string]int)
	low := make(map[string]int)
	visited := make(map[string]bool)
	isAP := make(map[string]bool)
	timer := 0

	nodes := g.Nodes()
	for _, root := range nodes {
		if visited[root] {
			continue
		}
		g.articulationDFSIterative(root, disc, low, visited, isAP, &timer)
	}

	var result []string
	for n, ok := range isAP {
		if ok {
			result = append(result, n)
		}
	}
	sort.Strings(result)
	return result
}

// apFrame captures one level of the iterative DFS stack, standing in for the
// recursive call frame of the textbook algorithm.
type apFrame struct {
	node       string
	parent     string
	childIdx   int
	children   int
	edges      []Edge
}

// articulationDFSIterative performs the low-link articulation-point DFS
// without recursion, so that pathological inputs (a path graph with 500
// nodes) cannot overflow the goroutine stack.
func (g *Graph) articulationDFSIterative(root string, disc, low map[string]int, visited map[string]bool, isAP map[string]bool, timer *int) {
	stack := []*apFrame{}

	visited[root] = true
	disc[root] = *timer
	low[root] = *timer
	*timer++

	edges := append([]Edge(nil), g.adj[root]...)
	sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
	stack = append(stack, &apFrame{node: root, parent: "", edges: edges})

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.childIdx < len(top.edges) {
			e := top.edges[top.childIdx]
			top.childIdx++
			child := e.To

			if child == top.parent && !hasParallelEdge(top.edges, child) {
				// skip the single tree edge straight back to parent, but not
				// when a parallel link makes the "back edge" meaningfully
				// distinct: parallel links are allowed on distinct interfaces.
				continue
			}

			if !visited[child] {
				top.children++
				visited[child] = true
				disc[child] = *timer
				low[child] = *timer
				*timer++

				childEdges := append([]Edge(nil), g.adj[child]...)
				sort.Slice(childEdges, func(i, j int) bool { return childEdges[i].To < childEdges[j].To })
				stack = append(stack, &apFrame{node: child, parent: top.node, edges: childEdges})
			} else if disc[child] < disc[top.node] {
				if low[top.node] > disc[child] {
					low[top.node] = disc[child]
				}
			}
			continue
		}

		// Done with top.node's children: pop and propagate low-link to parent.
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			continue
		}
		parentFrame := stack[len(stack)-1]
		if low[top.node] < low[parentFrame.node] {
			low[parentFrame.node] = low[top.node]
		}

		isRootParent := parentFrame.parent == ""
		if isRootParent {
			if parentFrame.children > 1 {
				isAP[parentFrame.node] = true
			}
		} else if low[top.node] >= disc[parentFrame.node] {
			isAP[parentFrame.node] = true
		}
	}
}

func hasParallelEdge(edges []Edge, to string) bool {
	count := 0
	for _, e := range edges {
		if e.To == to {
			count++
		}
	}
	return count > 1
}
