package digraph

import "slices"

// Graph is a directed graph over comparable node values, stored as adjacency
// lists. Cycles and self-loops are allowed.
//
// Node order is the order in which nodes were first seen (by [Graph.AddNode]
// or as an edge endpoint). Every method that iterates nodes uses that order,
// so results are deterministic for a given construction sequence.
//
// The zero value is not usable - use [New] to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph[N comparable] struct {
	order []N
	adj   map[N][]N
	edges int
}

// New creates an empty graph.
func New[N comparable]() *Graph[N] {
	return &Graph[N]{adj: make(map[N][]N)}
}

// AddNode ensures n is a node of the graph. Adding an existing node is a no-op.
func (g *Graph[N]) AddNode(n N) {
	if _, ok := g.adj[n]; ok {
		return
	}
	g.adj[n] = nil
	g.order = append(g.order, n)
}

// AddEdge adds the directed edge u -> v, creating either endpoint if needed.
//
// Duplicate edges are kept. Callers that do not want multi-edges must avoid
// inserting the same edge twice.
func (g *Graph[N]) AddEdge(u, v N) {
	g.AddNode(u)
	g.AddNode(v)
	g.adj[u] = append(g.adj[u], v)
	g.edges++
}

// Has reports whether n is a node of the graph.
func (g *Graph[N]) Has(n N) bool {
	_, ok := g.adj[n]
	return ok
}

// Neighbors returns the targets of n's outgoing edges in insertion order.
// Unknown nodes have no neighbors; this never fails. The returned slice is
// shared with the graph and must not be modified.
func (g *Graph[N]) Neighbors(n N) []N { return g.adj[n] }

// OutDegree returns the number of outgoing edges of n, counting duplicates.
func (g *Graph[N]) OutDegree(n N) int { return len(g.adj[n]) }

// Nodes returns all nodes in insertion order. The slice is a copy.
func (g *Graph[N]) Nodes() []N { return slices.Clone(g.order) }

// NodeCount returns the number of nodes.
func (g *Graph[N]) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges, counting duplicates.
func (g *Graph[N]) EdgeCount() int { return g.edges }

// Edges calls fn for every edge in node insertion order, then neighbor order.
// Iteration stops early if fn returns false.
func (g *Graph[N]) Edges(fn func(u, v N) bool) {
	for _, u := range g.order {
		for _, v := range g.adj[u] {
			if !fn(u, v) {
				return
			}
		}
	}
}

// Clone returns an independent copy with the same node and edge order.
func (g *Graph[N]) Clone() *Graph[N] {
	out := &Graph[N]{
		order: slices.Clone(g.order),
		adj:   make(map[N][]N, len(g.adj)),
		edges: g.edges,
	}
	for n, nbrs := range g.adj {
		out.adj[n] = slices.Clone(nbrs)
	}
	return out
}

// Transpose returns a new graph with every edge u -> v reversed to v -> u.
// The node order is preserved, including isolated nodes.
func (g *Graph[N]) Transpose() *Graph[N] {
	t := New[N]()
	for _, n := range g.order {
		t.AddNode(n)
	}
	g.Edges(func(u, v N) bool {
		t.AddEdge(v, u)
		return true
	})
	return t
}

// ToUndirected returns the symmetric closure of g: for every edge u -> v the
// result holds both u -> v and v -> u exactly once.
func (g *Graph[N]) ToUndirected() *Graph[N] {
	type pair struct{ a, b N }
	u := New[N]()
	for _, n := range g.order {
		u.AddNode(n)
	}
	seen := make(map[pair]struct{}, g.edges*2)
	add := func(a, b N) {
		if _, ok := seen[pair{a, b}]; ok {
			return
		}
		seen[pair{a, b}] = struct{}{}
		u.AddEdge(a, b)
	}
	g.Edges(func(a, b N) bool {
		add(a, b)
		add(b, a)
		return true
	})
	return u
}
