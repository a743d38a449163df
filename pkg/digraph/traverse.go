package digraph

import "slices"

// =============================================================================
// Depth-first search
// =============================================================================

// DFS visits every node reachable from start in depth-first preorder, calling
// visit once per node. Neighbors are explored in insertion order. Returning
// false from visit stops the whole traversal.
//
// visited is consulted and updated in place, which lets callers share one
// visited set across several searches (see [Graph.ConnectedComponents]). Pass
// nil to use a fresh set. A start node already in visited is not visited.
//
// The search uses an explicit stack, so its depth is bounded by memory rather
// than the goroutine stack. Unknown start nodes are visited once with no
// neighbors.
func (g *Graph[N]) DFS(start N, visited map[N]bool, visit func(N) bool) {
	if visited == nil {
		visited = make(map[N]bool)
	}
	stack := []N{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		if !visit(n) {
			return
		}
		nbrs := g.adj[n]
		for i := len(nbrs) - 1; i >= 0; i-- {
			if !visited[nbrs[i]] {
				stack = append(stack, nbrs[i])
			}
		}
	}
}

// Reachable returns every node reachable from start, start included, in DFS
// preorder.
func (g *Graph[N]) Reachable(start N) []N {
	var out []N
	g.DFS(start, nil, func(n N) bool {
		out = append(out, n)
		return true
	})
	return out
}

// =============================================================================
// Simple path enumeration
// =============================================================================

// AllPaths enumerates every simple path (no repeated node) that starts at
// start and ends at a node satisfying end. Matching nodes do not stop the
// search: a path through one matching node to another yields both paths, and
// a matching start yields [start] before any longer path.
//
// Paths are produced in DFS order with neighbors in insertion order. Duplicate
// edges produce duplicate paths.
//
// Cost is proportional to the number of simple paths, which is exponential in
// the worst case: a node is re-explored once for every distinct prefix that
// reaches it. Use a visited-set search such as [Graph.Reachable] when only the
// set of endpoints is needed.
func (g *Graph[N]) AllPaths(start N, end func(N) bool) [][]N {
	type frame struct {
		node N
		next int
	}

	var paths [][]N
	path := []N{start}
	if end(start) {
		paths = append(paths, []N{start})
	}
	onPath := map[N]bool{start: true}
	frames := []frame{{node: start}}

	for len(frames) > 0 {
		top := &frames[len(frames)-1]
		nbrs := g.adj[top.node]
		if top.next >= len(nbrs) {
			delete(onPath, top.node)
			path = path[:len(path)-1]
			frames = frames[:len(frames)-1]
			continue
		}
		v := nbrs[top.next]
		top.next++

		if onPath[v] {
			continue
		}
		onPath[v] = true
		path = append(path, v)
		frames = append(frames, frame{node: v})
		if end(v) {
			paths = append(paths, slices.Clone(path))
		}
	}
	return paths
}

// =============================================================================
// Connected components
// =============================================================================

// ConnectedComponents returns the maximal weakly connected node sets. Searches
// start from unvisited nodes in insertion order, and each component lists its
// nodes in DFS preorder over the undirected closure.
func (g *Graph[N]) ConnectedComponents() [][]N {
	u := g.ToUndirected()
	visited := make(map[N]bool, len(u.order))
	var comps [][]N
	for _, start := range u.order {
		if visited[start] {
			continue
		}
		var comp []N
		u.DFS(start, visited, func(n N) bool {
			comp = append(comp, n)
			return true
		})
		comps = append(comps, comp)
	}
	return comps
}

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph[N]) Sources() []N {
	in := make(map[N]int, len(g.order))
	g.Edges(func(_, v N) bool {
		in[v]++
		return true
	})
	return slices.DeleteFunc(g.Nodes(), func(n N) bool { return in[n] > 0 })
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (g *Graph[N]) Sinks() []N {
	return slices.DeleteFunc(g.Nodes(), func(n N) bool { return len(g.adj[n]) > 0 })
}
