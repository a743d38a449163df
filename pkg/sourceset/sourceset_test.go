package sourceset

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/depgraph"
)

func id(name string) asset.ID { return asset.FromPath(name) }

func TestKeyOrderInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(20)
		ids := make([]asset.ID, n)
		for i := range ids {
			ids[i] = asset.NewID()
		}
		want := KeyOfIDs(ids)

		shuffled := make([]asset.ID, n)
		copy(shuffled, ids)
		rng.Shuffle(n, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		if got := KeyOfIDs(shuffled); got != want {
			t.Fatalf("trial %d: KeyOfIDs(shuffled) = %v, want %v", trial, got, want)
		}
		if got := KeyOf(asset.NewSet(shuffled...)); got != want {
			t.Fatalf("trial %d: KeyOf(set) = %v, want %v", trial, got, want)
		}
	}
}

func TestKeyFold(t *testing.T) {
	one := asset.MustParse("00000000-0000-0000-0000-000000000001")
	two := asset.MustParse("00000000-0000-0000-0000-000000000002")

	// 17*31 + 1 = 528, then 528*31 + 2 = 16370
	if got := KeyOfIDs([]asset.ID{two, one}); got != 16370 {
		t.Errorf("KeyOfIDs() = %d, want 16370", got)
	}
	if got := KeyOfIDs(nil); got != 17 {
		t.Errorf("KeyOfIDs(nil) = %d, want 17", got)
	}
}

func TestKeyText(t *testing.T) {
	k := Key(0xabc)
	if k.String() != "0000000000000abc" {
		t.Errorf("String() = %q", k.String())
	}
	data, err := json.Marshal(map[Key]int{k: 1})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `{"0000000000000abc":1}` {
		t.Errorf("Marshal() = %s", data)
	}
	var back map[Key]int
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back[k] != 1 {
		t.Errorf("round trip lost key %v", k)
	}
	if _, err := ParseKey("zz"); err == nil {
		t.Error("ParseKey(zz) should fail")
	}
}

func TestResolvePolicy(t *testing.T) {
	// A -> Y, A -> S, B -> S, C (cycle) <-> D
	a, b, y, s, c, d := id("A"), id("B"), id("Y"), id("S"), id("C"), id("D")
	g := depgraph.NewBuilder().
		AddEdge(a, y).
		AddEdge(a, s).
		AddEdge(b, s).
		AddEdge(c, d).
		AddEdge(d, c).
		Build()
	ignore := asset.NewSet(a)

	tests := []struct {
		name       string
		node       asset.ID
		wantStatus Status
		want       asset.Set
	}{
		{"ignored node", a, Ignored, nil},
		{"only ignored roots", y, OwnedByIgnored, nil},
		{"shared with kept root", s, Resolved, asset.NewSet(b)},
		{"source is own root", b, Resolved, asset.NewSet(b)},
		{"cycle without entry", c, Unrooted, nil},
	}

	for _, strategy := range []Strategy{StrategyReachability, StrategyPaths} {
		r := NewResolver(g, ignore, strategy)
		for _, tt := range tests {
			t.Run(strategy.String()+"/"+tt.name, func(t *testing.T) {
				got, status := r.Resolve(tt.node)
				if status != tt.wantStatus {
					t.Errorf("Resolve() status = %v, want %v", status, tt.wantStatus)
				}
				if !got.Equal(tt.want) {
					t.Errorf("Resolve() = %v, want %v", got.Sorted(), tt.want.Sorted())
				}
			})
		}
	}
}

func TestStrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := depgraph.NewBuilder()
	nodes := make([]asset.ID, 30)
	for i := range nodes {
		nodes[i] = asset.NewID()
		b.AddNode(nodes[i])
	}
	for i := 0; i < 36; i++ {
		u, v := nodes[rng.Intn(len(nodes))], nodes[rng.Intn(len(nodes))]
		b.AddEdge(u, v)
	}
	g := b.Build()

	fast := NewResolver(g, nil, StrategyReachability)
	slow := NewResolver(g, nil, StrategyPaths)
	for _, n := range nodes {
		if f, s := fast.Raw(n), slow.Raw(n); !f.Equal(s) {
			t.Fatalf("Raw(%v): reachability %v != paths %v", n, f.Sorted(), s.Sorted())
		}
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyReachability, false},
		{"reachability", StrategyReachability, false},
		{"paths", StrategyPaths, false},
		{"bfs", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
