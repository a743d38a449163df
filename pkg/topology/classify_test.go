package topology

import (
	"testing"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/depgraph"
)

func id(name string) asset.ID { return asset.FromPath(name) }

func TestClassify(t *testing.T) {
	a, b, c, x, z := id("A"), id("B"), id("C"), id("X"), id("Z")
	m, s1, s2 := id("M"), id("S1"), id("S2")
	p, q := id("P"), id("Q")

	g := depgraph.NewBuilder().
		// A -> B, A -> C: hierarchy rooted at A
		AddEdge(a, b).
		AddEdge(a, c).
		// S1 -> X, S2 -> X and S1 -> M, S2 -> M, M -> X: shared nodes
		AddEdge(s1, x).
		AddEdge(s2, x).
		AddEdge(s1, m).
		AddEdge(s2, m).
		AddEdge(m, x).
		// A -> P <-> Q: P and Q single-sourced but not containing A
		AddEdge(a, p).
		AddEdge(p, q).
		AddEdge(q, p).
		AddNode(z).
		Build()

	tests := []struct {
		name      string
		nodes     asset.Set
		sources   asset.Set
		want      Category
		ambiguous bool
	}{
		{"isolated", asset.NewSet(z), asset.NewSet(z), SingleAssets, false},
		{"hierarchy", asset.NewSet(a, b, c), asset.NewSet(a), Hierarchies, false},
		{"shared sink", asset.NewSet(x), asset.NewSet(s1, s2), SharedSingleSinks, false},
		{"shared single with deps", asset.NewSet(m), asset.NewSet(s1, s2), SharedSingles, false},
		{"shared many", asset.NewSet(m, x), asset.NewSet(s1, s2), SharedAssets, false},
		{"single source", asset.NewSet(s1), asset.NewSet(s1), SingleSources, false},
		{"exclusive cycle", asset.NewSet(p, q), asset.NewSet(a), ExclusiveToSingleSource, false},
		{"exclusive single", asset.NewSet(b), asset.NewSet(a), ExclusiveToSingleSource, false},
		{"ambiguous hierarchy", asset.NewSet(s1, s2, m), asset.NewSet(s1, s2), Hierarchies, true},
		{"empty", asset.Set{}, asset.NewSet(a), Unclassified, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.nodes, tt.sources, g)
			if got.Category != tt.want {
				t.Errorf("Classify() = %v (%s), want %v", got.Category, got.Rule, tt.want)
			}
			if got.AmbiguousHierarchy != tt.ambiguous {
				t.Errorf("AmbiguousHierarchy = %v, want %v", got.AmbiguousHierarchy, tt.ambiguous)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	a, b := id("A"), id("B")
	g := depgraph.NewBuilder().AddEdge(a, b).Build()
	first := Classify(asset.NewSet(a, b), asset.NewSet(a), g)
	for i := 0; i < 10; i++ {
		if got := Classify(asset.NewSet(b, a), asset.NewSet(a), g); got != first {
			t.Fatalf("Classify() = %+v, want %+v", got, first)
		}
	}
}

func TestCategoryNames(t *testing.T) {
	for _, c := range All() {
		got, err := Parse(c.String())
		if err != nil || got != c {
			t.Errorf("Parse(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := Parse("Unclassified"); err == nil {
		t.Error("Parse(Unclassified) should fail")
	}
	if _, err := Parse("Bogus"); err == nil {
		t.Error("Parse(Bogus) should fail")
	}
	if len(All()) != 7 {
		t.Errorf("len(All()) = %d, want 7", len(All()))
	}
}
