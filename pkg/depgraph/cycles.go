package depgraph

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
)

// Cycles returns the strongly connected components that contain a cycle:
// components with more than one node, plus single nodes with a self-loop.
//
// Each cycle lists its members sorted by ID, and cycles are ordered by their
// first member, so the result is deterministic.
func (g *Graph) Cycles() [][]asset.ID {
	ids := g.fwd.Nodes()
	index := make(map[asset.ID]int64, len(ids))
	sg := simple.NewDirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		sg.AddNode(simple.Node(int64(i)))
	}

	selfLoop := make(map[asset.ID]bool)
	g.fwd.Edges(func(from, to asset.ID) bool {
		if from == to {
			selfLoop[from] = true
			return true
		}
		// simple graphs hold one edge per ordered pair.
		sg.SetEdge(simple.Edge{F: simple.Node(index[from]), T: simple.Node(index[to])})
		return true
	})

	var cycles [][]asset.ID
	for _, comp := range topo.TarjanSCC(sg) {
		if len(comp) == 1 && !selfLoop[ids[comp[0].ID()]] {
			continue
		}
		members := make([]asset.ID, len(comp))
		for i, n := range comp {
			members[i] = ids[n.ID()]
		}
		asset.SortIDs(members)
		cycles = append(cycles, members)
	}
	slices.SortFunc(cycles, func(a, b []asset.ID) int { return a[0].Compare(b[0]) })
	return cycles
}

// InCycle returns the set of nodes that sit on some cycle.
func (g *Graph) InCycle() map[asset.ID]bool {
	out := make(map[asset.ID]bool)
	for _, c := range g.Cycles() {
		for _, id := range c {
			out[id] = true
		}
	}
	return out
}
