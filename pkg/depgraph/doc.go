// Package depgraph provides the immutable asset dependency graph.
//
// # Overview
//
// A [Graph] wraps a [digraph.Graph] over [asset.ID] values. An edge a -> b
// records that asset a references asset b. The reverse adjacency (the
// transpose) is computed once when the graph is built and is never
// recomputed, because a Graph offers no mutators.
//
// Build a graph with a [Builder]:
//
//	g := depgraph.NewBuilder().
//	    AddEdge(scene, prefab).
//	    AddEdge(prefab, texture).
//	    Build()
//
// # Sources and Sinks
//
// A source has no incoming edges: nothing references it, so it is an entry
// point such as a scene. A sink has no outgoing edges: a leaf asset such as a
// texture. [Graph.IsSource] and [Graph.IsSink] answer in constant time.
//
// # Cycles
//
// References may be cyclic. [Graph.Cycles] lists strongly connected
// components with a cycle using gonum's Tarjan implementation. The grouping
// stages handle cycles without it; it is used for diagnostics.
package depgraph
