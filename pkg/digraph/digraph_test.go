package digraph

import (
	"fmt"
	"slices"
	"strings"
	"testing"
)

func build(edges ...[2]string) *Graph[string] {
	g := New[string]()
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

func TestAddEdgeCreatesEndpoints(t *testing.T) {
	g := New[string]()
	g.AddEdge("a", "b")
	g.AddNode("a")
	g.AddNode("c")

	if got := g.Nodes(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Nodes() = %v, want [a b c]", got)
	}
	if !g.Has("b") {
		t.Error("edge target should be a node")
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestDuplicateEdgesKept(t *testing.T) {
	g := build([2]string{"a", "b"}, [2]string{"a", "b"})
	if got := g.Neighbors("a"); !slices.Equal(got, []string{"b", "b"}) {
		t.Errorf("Neighbors(a) = %v, want [b b]", got)
	}
	if g.OutDegree("a") != 2 {
		t.Errorf("OutDegree(a) = %d, want 2", g.OutDegree("a"))
	}
}

func TestNeighborsUnknownNode(t *testing.T) {
	g := New[string]()
	if got := g.Neighbors("ghost"); len(got) != 0 {
		t.Errorf("Neighbors(ghost) = %v, want empty", got)
	}
	if g.Has("ghost") {
		t.Error("lookup must not create nodes")
	}
}

func TestTranspose(t *testing.T) {
	g := build([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "c"})
	g.AddNode("lonely")
	tr := g.Transpose()

	tests := []struct {
		node string
		want []string
	}{
		{"a", nil},
		{"b", []string{"a"}},
		{"c", []string{"a", "b"}},
		{"lonely", nil},
	}
	for _, tt := range tests {
		if got := tr.Neighbors(tt.node); !slices.Equal(got, tt.want) {
			t.Errorf("Transpose().Neighbors(%s) = %v, want %v", tt.node, got, tt.want)
		}
	}
	if !slices.Equal(tr.Nodes(), g.Nodes()) {
		t.Errorf("Transpose() node order = %v, want %v", tr.Nodes(), g.Nodes())
	}
	if tr.EdgeCount() != g.EdgeCount() {
		t.Errorf("Transpose().EdgeCount() = %d, want %d", tr.EdgeCount(), g.EdgeCount())
	}
}

func TestDFSPreorderAndCycles(t *testing.T) {
	g := build(
		[2]string{"a", "b"},
		[2]string{"b", "c"},
		[2]string{"c", "a"},
		[2]string{"a", "d"},
	)
	var got []string
	g.DFS("a", nil, func(n string) bool {
		got = append(got, n)
		return true
	})
	want := []string{"a", "b", "c", "d"}
	if !slices.Equal(got, want) {
		t.Errorf("DFS(a) = %v, want %v", got, want)
	}
}

func TestDFSStop(t *testing.T) {
	g := build([2]string{"a", "b"}, [2]string{"b", "c"})
	var got []string
	g.DFS("a", nil, func(n string) bool {
		got = append(got, n)
		return n != "b"
	})
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("DFS with stop = %v, want [a b]", got)
	}
}

func TestDFSDeepChain(t *testing.T) {
	const n = 100000
	g := New[int]()
	for i := 0; i < n-1; i++ {
		g.AddEdge(i, i+1)
	}
	if got := len(g.Reachable(0)); got != n {
		t.Errorf("len(Reachable(0)) = %d, want %d", got, n)
	}
}

func TestAllPaths(t *testing.T) {
	isSink := func(g *Graph[string]) func(string) bool {
		return func(n string) bool { return g.OutDegree(n) == 0 }
	}

	tests := []struct {
		name  string
		g     *Graph[string]
		start string
		want  []string
	}{
		{
			name:  "diamond",
			g:     build([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"}),
			start: "a",
			want:  []string{"a>b>d", "a>c>d"},
		},
		{
			name:  "start matches",
			g:     build([2]string{"a", "b"}),
			start: "b",
			want:  []string{"b"},
		},
		{
			name:  "cycle terminates",
			g:     build([2]string{"a", "b"}, [2]string{"b", "a"}, [2]string{"b", "c"}),
			start: "a",
			want:  []string{"a>b>c"},
		},
		{
			name:  "pure cycle has no paths",
			g:     build([2]string{"a", "b"}, [2]string{"b", "a"}),
			start: "a",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range tt.g.AllPaths(tt.start, isSink(tt.g)) {
				s := p[0]
				for _, n := range p[1:] {
					s += ">" + n
				}
				got = append(got, s)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("AllPaths(%s) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestAllPathsContinuesPastMatches(t *testing.T) {
	g := build([2]string{"a", "b"}, [2]string{"b", "c"})
	end := func(n string) bool { return n == "b" || n == "c" }

	tests := []struct {
		start string
		want  []string
	}{
		{"a", []string{"a>b", "a>b>c"}},
		{"b", []string{"b", "b>c"}},
		{"c", []string{"c"}},
	}
	for _, tt := range tests {
		var got []string
		for _, p := range g.AllPaths(tt.start, end) {
			got = append(got, strings.Join(p, ">"))
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("AllPaths(%s) = %v, want %v", tt.start, got, tt.want)
		}
	}
}

func TestAllPathsRevisitsThroughDifferentPrefixes(t *testing.T) {
	// Two diamonds in series give 2*2 paths; d is re-explored per prefix.
	g := build(
		[2]string{"a", "b"}, [2]string{"a", "c"},
		[2]string{"b", "d"}, [2]string{"c", "d"},
		[2]string{"d", "e"}, [2]string{"d", "f"},
		[2]string{"e", "g"}, [2]string{"f", "g"},
	)
	paths := g.AllPaths("a", func(n string) bool { return n == "g" })
	if len(paths) != 4 {
		t.Errorf("len(AllPaths) = %d, want 4", len(paths))
	}
}

func TestConnectedComponents(t *testing.T) {
	g := build([2]string{"a", "b"}, [2]string{"c", "b"}, [2]string{"x", "y"})
	g.AddNode("z")

	comps := g.ConnectedComponents()
	want := [][]string{{"a", "b", "c"}, {"x", "y"}, {"z"}}
	if len(comps) != len(want) {
		t.Fatalf("len(ConnectedComponents()) = %d, want %d", len(comps), len(want))
	}
	for i := range want {
		if !slices.Equal(comps[i], want[i]) {
			t.Errorf("component %d = %v, want %v", i, comps[i], want[i])
		}
	}
}

func TestToUndirectedDedupes(t *testing.T) {
	g := build([2]string{"a", "b"}, [2]string{"b", "a"}, [2]string{"a", "b"})
	u := g.ToUndirected()
	if u.EdgeCount() != 2 {
		t.Errorf("ToUndirected().EdgeCount() = %d, want 2", u.EdgeCount())
	}
}

func TestSourcesAndSinks(t *testing.T) {
	g := build([2]string{"app", "lib"}, [2]string{"cli", "lib"}, [2]string{"lib", "core"})
	g.AddNode("island")

	if got := g.Sources(); !slices.Equal(got, []string{"app", "cli", "island"}) {
		t.Errorf("Sources() = %v", got)
	}
	if got := g.Sinks(); !slices.Equal(got, []string{"core", "island"}) {
		t.Errorf("Sinks() = %v", got)
	}
}

func ExampleGraph_AllPaths() {
	g := New[string]()
	g.AddEdge("scene", "prefab")
	g.AddEdge("scene", "material")
	g.AddEdge("prefab", "material")
	g.AddEdge("material", "texture")

	for _, p := range g.AllPaths("scene", func(n string) bool { return n == "texture" }) {
		fmt.Println(p)
	}
	// Output:
	// [scene prefab material texture]
	// [scene material texture]
}
