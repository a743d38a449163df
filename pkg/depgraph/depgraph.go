package depgraph

import (
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/digraph"
)

// Graph is an immutable dependency graph over asset IDs. An edge a -> b means
// "a references b".
//
// The transpose is built once at construction. Because a Graph cannot be
// mutated afterwards, the forward and reverse adjacency can never disagree.
//
// The zero value is not usable - use [New] or a [Builder].
// Graph is safe for concurrent reads.
type Graph struct {
	fwd *digraph.Graph[asset.ID]
	rev *digraph.Graph[asset.ID]
}

// New snapshots g into an immutable dependency graph. Later changes to g do
// not affect the result.
func New(g *digraph.Graph[asset.ID]) *Graph {
	fwd := g.Clone()
	return &Graph{fwd: fwd, rev: fwd.Transpose()}
}

// Builder accumulates nodes and edges for a [Graph].
type Builder struct {
	g *digraph.Graph[asset.ID]
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{g: digraph.New[asset.ID]()}
}

// AddNode ensures id is a node.
func (b *Builder) AddNode(id asset.ID) *Builder {
	b.g.AddNode(id)
	return b
}

// AddEdge records that from references to.
func (b *Builder) AddEdge(from, to asset.ID) *Builder {
	b.g.AddEdge(from, to)
	return b
}

// Build returns the immutable graph. The builder may keep being used; later
// additions do not affect graphs already built.
func (b *Builder) Build() *Graph { return New(b.g) }

// Has reports whether id is a node.
func (g *Graph) Has(id asset.ID) bool { return g.fwd.Has(id) }

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []asset.ID { return g.fwd.Nodes() }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.fwd.NodeCount() }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.fwd.EdgeCount() }

// Dependencies returns the assets id references. Must not be modified.
func (g *Graph) Dependencies(id asset.ID) []asset.ID { return g.fwd.Neighbors(id) }

// Dependents returns the assets that reference id. Must not be modified.
func (g *Graph) Dependents(id asset.ID) []asset.ID { return g.rev.Neighbors(id) }

// OutDegree returns the number of references id makes.
func (g *Graph) OutDegree(id asset.ID) int { return g.fwd.OutDegree(id) }

// InDegree returns the number of references made to id.
func (g *Graph) InDegree(id asset.ID) int { return g.rev.OutDegree(id) }

// IsSource reports whether nothing references id.
func (g *Graph) IsSource(id asset.ID) bool { return g.rev.OutDegree(id) == 0 }

// IsSink reports whether id references nothing.
func (g *Graph) IsSink(id asset.ID) bool { return g.fwd.OutDegree(id) == 0 }

// Sources returns all source nodes in insertion order.
func (g *Graph) Sources() []asset.ID {
	var out []asset.ID
	for _, id := range g.fwd.Nodes() {
		if g.IsSource(id) {
			out = append(out, id)
		}
	}
	return out
}

// Sinks returns all sink nodes in insertion order.
func (g *Graph) Sinks() []asset.ID { return g.fwd.Sinks() }

// Forward returns the underlying adjacency. Callers must treat it as read-only.
func (g *Graph) Forward() *digraph.Graph[asset.ID] { return g.fwd }

// Transpose returns the cached reverse adjacency. Callers must treat it as
// read-only.
func (g *Graph) Transpose() *digraph.Graph[asset.ID] { return g.rev }

// Edges calls fn for each edge in insertion order until fn returns false.
func (g *Graph) Edges(fn func(from, to asset.ID) bool) { g.fwd.Edges(fn) }
