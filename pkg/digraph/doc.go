// Package digraph provides a generic directed graph and the traversals the
// grouping engine is built on.
//
// # Overview
//
// [Graph] stores adjacency lists keyed by any comparable node type. Nodes are
// created implicitly when an edge references them, so every edge endpoint is
// always a node. Cycles and self-loops are permitted and every traversal
// terminates on them.
//
// # Determinism
//
// The graph remembers the order in which nodes were first seen. Node listings,
// DFS start order, component order and path order all follow it. Two graphs
// built by the same sequence of calls produce identical results.
//
// # Traversals
//
//   - [Graph.DFS]: iterative depth-first preorder with a caller-visible visited set
//   - [Graph.Reachable]: the set of nodes reachable from a start node
//   - [Graph.AllPaths]: every simple path to a node matching a predicate
//   - [Graph.ConnectedComponents]: weakly connected components
//
// None of the traversals recurse, so graphs with tens of thousands of nodes
// and long chains are safe.
//
// # Scalability of AllPaths
//
// Simple-path enumeration revisits nodes reached through different prefixes.
// On graphs with many diamonds the number of paths grows exponentially. It is
// kept because some callers need the paths themselves; callers that only need
// endpoints should use [Graph.Reachable].
package digraph
