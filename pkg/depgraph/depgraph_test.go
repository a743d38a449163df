package depgraph

import (
	"slices"
	"testing"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/digraph"
)

var (
	a = asset.FromPath("a")
	b = asset.FromPath("b")
	c = asset.FromPath("c")
	d = asset.FromPath("d")
)

func TestDegreesAndRoles(t *testing.T) {
	g := NewBuilder().AddEdge(a, b).AddEdge(a, c).AddEdge(b, c).AddNode(d).Build()

	tests := []struct {
		id        asset.ID
		in, out   int
		src, sink bool
	}{
		{a, 0, 2, true, false},
		{b, 1, 1, false, false},
		{c, 2, 0, false, true},
		{d, 0, 0, true, true},
	}
	for _, tt := range tests {
		if got := g.InDegree(tt.id); got != tt.in {
			t.Errorf("InDegree(%v) = %d, want %d", tt.id, got, tt.in)
		}
		if got := g.OutDegree(tt.id); got != tt.out {
			t.Errorf("OutDegree(%v) = %d, want %d", tt.id, got, tt.out)
		}
		if got := g.IsSource(tt.id); got != tt.src {
			t.Errorf("IsSource(%v) = %v, want %v", tt.id, got, tt.src)
		}
		if got := g.IsSink(tt.id); got != tt.sink {
			t.Errorf("IsSink(%v) = %v, want %v", tt.id, got, tt.sink)
		}
	}

	if got := g.Sources(); !slices.Equal(got, []asset.ID{a, d}) {
		t.Errorf("Sources() = %v, want [a d]", got)
	}
	if got := g.Sinks(); !slices.Equal(got, []asset.ID{c, d}) {
		t.Errorf("Sinks() = %v, want [c d]", got)
	}
	if got := g.Dependents(c); !slices.Equal(got, []asset.ID{a, b}) {
		t.Errorf("Dependents(c) = %v, want [a b]", got)
	}
}

func TestNewSnapshotsInput(t *testing.T) {
	src := digraph.New[asset.ID]()
	src.AddEdge(a, b)
	g := New(src)

	src.AddEdge(c, a)
	if !g.IsSource(a) {
		t.Error("mutating the input after New must not change the graph")
	}
	if g.Has(c) {
		t.Error("graph should not see nodes added after New")
	}
}

func TestBuilderReuse(t *testing.T) {
	bld := NewBuilder().AddEdge(a, b)
	first := bld.Build()
	bld.AddEdge(b, c)
	second := bld.Build()

	if first.NodeCount() != 2 || second.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, %d, want 2, 3", first.NodeCount(), second.NodeCount())
	}
	if first.IsSource(c) || !first.IsSink(b) {
		t.Error("first graph changed after builder reuse")
	}
}

func TestUnknownNodesNeverFail(t *testing.T) {
	g := NewBuilder().AddEdge(a, b).Build()
	ghost := asset.FromPath("ghost")
	if len(g.Dependencies(ghost)) != 0 || len(g.Dependents(ghost)) != 0 {
		t.Error("unknown node should have no neighbors")
	}
}

func TestCycles(t *testing.T) {
	g := NewBuilder().
		AddEdge(a, b).
		AddEdge(b, c).
		AddEdge(c, b).
		AddEdge(d, d).
		Build()

	cycles := g.Cycles()
	if len(cycles) != 2 {
		t.Fatalf("len(Cycles()) = %d, want 2: %v", len(cycles), cycles)
	}

	want := map[int]asset.Set{2: asset.NewSet(b, c), 1: asset.NewSet(d)}
	for _, cyc := range cycles {
		exp, ok := want[len(cyc)]
		if !ok || !asset.NewSet(cyc...).Equal(exp) {
			t.Errorf("unexpected cycle %v", cyc)
		}
	}

	in := g.InCycle()
	if in[a] || !in[b] || !in[c] || !in[d] {
		t.Errorf("InCycle() = %v", in)
	}
}

func TestAcyclicHasNoCycles(t *testing.T) {
	g := NewBuilder().AddEdge(a, b).AddEdge(a, c).AddEdge(b, c).Build()
	if got := g.Cycles(); len(got) != 0 {
		t.Errorf("Cycles() = %v, want none", got)
	}
}
