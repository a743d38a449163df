package pipeline

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/cache"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/observability"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/rules"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
)

const sceneGraph = `{
	"nodes": [
		{"path": "Assets/Main.unity"},
		{"path": "Assets/Menu.unity"},
		{"path": "Assets/Door.prefab", "size": 1048576},
		{"path": "Assets/Wall.mat", "size": 2097152},
		{"path": "Assets/Button.prefab", "size": 1048576},
		{"path": "Assets/Font.ttf", "size": 3145728}
	],
	"edges": [
		{"from": "Assets/Main.unity", "to": "Assets/Door.prefab"},
		{"from": "Assets/Main.unity", "to": "Assets/Wall.mat"},
		{"from": "Assets/Main.unity", "to": "Assets/Font.ttf"},
		{"from": "Assets/Menu.unity", "to": "Assets/Button.prefab"},
		{"from": "Assets/Menu.unity", "to": "Assets/Font.ttf"}
	]
}`

func loadScene(t *testing.T) *snapshot.Input {
	t.Helper()
	in, err := snapshot.ReadGraph(strings.NewReader(sceneGraph))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	return in
}

func groupSizes(r *Result) map[string]int {
	out := make(map[string]int)
	for name, g := range r.Layout.Groups {
		out[name] = len(g.Nodes)
	}
	return out
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"defaults", Options{}, ""},
		{"paths strategy", Options{Strategy: "paths"}, ""},
		{"bad strategy", Options{Strategy: "bfs"}, errs.ErrCodeConfig},
		{"negative size", Options{DefaultMaxSizeMB: -1}, errs.ErrCodeConfig},
		{"missing template", Options{Rules: &rules.File{Output: []rules.OutputSpec{{Category: "Hierarchies"}}}}, errs.ErrCodeMissingTemplate},
		{"bad predicate", Options{Rules: &rules.File{Merge: []rules.MergeSpec{{Origin: "SharedSingles", Destination: "SharedAssets", OriginWhen: "1"}}}}, errs.ErrCodeInvalidPredicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("ValidateAndSetDefaults() code = %q, want %q (%v)", got, tt.code, err)
			}
			if err == nil {
				if tt.opts.Rules == nil || tt.opts.TTL != DefaultCheckpointTTL || tt.opts.Logger == nil {
					t.Error("defaults not applied")
				}
				if err := tt.opts.ValidateAndSetDefaults(); err != nil {
					t.Errorf("second call: %v", err)
				}
			}
		})
	}
}

func TestExecute(t *testing.T) {
	in := loadScene(t)
	r := NewRunner(nil, nil, nil)

	result, err := r.Execute(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := map[string]int{"Main": 3, "Menu": 2, "Shared_Font": 1}
	got := groupSizes(result)
	if len(got) != len(want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
	for name, n := range want {
		if got[name] != n {
			t.Errorf("group %s has %d nodes, want %d", name, got[name], n)
		}
	}
	if result.Stats.Nodes != 6 || result.Stats.Edges != 5 || result.Stats.Subgraphs != 3 || result.Stats.Groups != 3 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if result.InputHash == "" {
		t.Error("InputHash not set")
	}
	if result.CacheInfo != (CacheInfo{}) {
		t.Errorf("null cache produced hits: %+v", result.CacheInfo)
	}
}

func TestExecuteStrategiesAgree(t *testing.T) {
	in := loadScene(t)
	r := NewRunner(nil, nil, nil)

	a, err := r.Execute(context.Background(), in, Options{Strategy: "reachability"})
	if err != nil {
		t.Fatalf("reachability: %v", err)
	}
	b, err := r.Execute(context.Background(), in, Options{Strategy: "paths"})
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if !slices.Equal(a.Layout.Order, b.Layout.Order) {
		t.Errorf("Order differs: %v vs %v", a.Layout.Order, b.Layout.Order)
	}
}

func TestExecuteWithMergeRule(t *testing.T) {
	in := loadScene(t)
	file := rules.Default()
	// The shared font joins the first hierarchy whose sources cover it.
	// Neither Main nor Menu covers {Main, Menu}, so nothing moves.
	file.Merge = []rules.MergeSpec{{Name: "font", Origin: "SharedSingleSinks", Destination: "Hierarchies"}}

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), in, Options{Rules: file})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Reports) != 1 {
		t.Fatalf("Reports = %d, want 1", len(result.Reports))
	}
	rep := result.Reports[0]
	if rep.Moved() != 0 || rep.Origins != 1 || rep.Destinations != 2 {
		t.Errorf("report = %+v, want 1 origin, 2 destinations, 0 moves", rep)
	}
	if result.Stats.Moves != 0 {
		t.Errorf("Stats.Moves = %d, want 0", result.Stats.Moves)
	}
}

func TestExecuteCache(t *testing.T) {
	in := loadScene(t)
	mem, err := cache.NewMemoryCache(0)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, in, Options{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if mem.Len() != 4 {
		t.Errorf("cached checkpoints = %d, want 4", mem.Len())
	}

	second, err := r.Execute(ctx, in, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	want := CacheInfo{PartitionHit: true, ClassifyHit: true, MergeHit: true, LayoutHit: true}
	if second.CacheInfo != want {
		t.Errorf("CacheInfo = %+v, want all hits", second.CacheInfo)
	}
	if !slices.Equal(first.Layout.Order, second.Layout.Order) {
		t.Errorf("cached Order = %v, want %v", second.Layout.Order, first.Layout.Order)
	}

	refreshed, err := r.Execute(ctx, in, Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	if refreshed.CacheInfo != (CacheInfo{}) {
		t.Errorf("Refresh CacheInfo = %+v, want no hits", refreshed.CacheInfo)
	}

	other := rules.Default()
	other.MaxSizeMB = 3
	changed, err := r.Execute(ctx, in, Options{Rules: other})
	if err != nil {
		t.Fatalf("changed rules run: %v", err)
	}
	if !changed.CacheInfo.PartitionHit || changed.CacheInfo.ClassifyHit || changed.CacheInfo.LayoutHit {
		t.Errorf("changed rules CacheInfo = %+v, want only partition hit", changed.CacheInfo)
	}
}

func TestExecuteCanceled(t *testing.T) {
	in := loadScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := Options{
		Progress: func(stage snapshot.Stage, done, total int) {
			if stage == snapshot.StagePartition && done == 2 {
				cancel()
			}
		},
	}
	result, err := NewRunner(nil, nil, nil).Execute(ctx, in, opts)
	if !errs.Is(err, errs.ErrCodeCanceled) {
		t.Fatalf("err = %v, want CANCELED", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("error should wrap context.Canceled")
	}
	if result == nil || result.Partition == nil {
		t.Fatal("partial partition should be returned")
	}
	if got := result.Partition.NodeCount(); got != 2 {
		t.Errorf("partial NodeCount() = %d, want 2", got)
	}
	if result.Table != nil || result.Layout != nil {
		t.Error("later stages should not run")
	}
}

func TestStagesIndividually(t *testing.T) {
	in := loadScene(t)
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	opts := Options{}

	part, _, err := r.Partition(ctx, in, opts)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	table, _, err := r.Classify(ctx, in, part, opts)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	table, _, _, err = r.Merge(ctx, in, table, opts)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	layout, _, err := r.Layout(ctx, in, table, opts)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	full, err := r.Execute(ctx, in, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !slices.Equal(layout.Order, full.Layout.Order) {
		t.Errorf("stage-by-stage Order = %v, want %v", layout.Order, full.Layout.Order)
	}
}

func TestProgressReportsEveryStage(t *testing.T) {
	in := loadScene(t)
	var mu sync.Mutex
	seen := map[snapshot.Stage]int{}
	opts := Options{
		Progress: func(stage snapshot.Stage, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if done > total {
				t.Errorf("%s progress %d/%d", stage, done, total)
			}
			seen[stage] = done
		},
	}
	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), in, opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, stage := range []snapshot.Stage{snapshot.StagePartition, snapshot.StageClassify, snapshot.StageLayout} {
		if seen[stage] == 0 {
			t.Errorf("no progress for %s", stage)
		}
	}
	if seen[snapshot.StagePartition] != 6 {
		t.Errorf("partition progress = %d, want 6", seen[snapshot.StagePartition])
	}
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (s *stageRecorder) OnStageStart(ctx context.Context, stage string, _ int) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "start:"+stage)
	return ctx
}

func (s *stageRecorder) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "end:"+stage)
}

func TestHooks(t *testing.T) {
	rec := &stageRecorder{}
	observability.SetPipelineHooks(rec)
	defer observability.Reset()

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), loadScene(t), Options{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{
		"start:partition", "end:partition",
		"start:classify", "end:classify",
		"start:merge", "end:merge",
		"start:layout", "end:layout",
	}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestExampleRuleFilesMerge(t *testing.T) {
	in, err := snapshot.ReadGraphFile("../../examples/scene.json")
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	for _, name := range []string{"rules.toml", "rules.yaml"} {
		t.Run(name, func(t *testing.T) {
			file, err := rules.Load("../../examples/" + name)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			result, err := NewRunner(nil, nil, nil).Execute(context.Background(), in, Options{Rules: file})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if len(result.Reports) != 1 {
				t.Fatalf("len(Reports) = %d, want 1", len(result.Reports))
			}
			if got := result.Reports[0].Moved(); got != 1 {
				t.Errorf("%s moved %d subgraph(s), want 1 (Credits into the shared assets)", result.Reports[0].Rule, got)
			}
			if result.Stats.Moves != 1 {
				t.Errorf("Stats.Moves = %d, want 1", result.Stats.Moves)
			}
		})
	}
}

func TestUnencodableRulesRejected(t *testing.T) {
	file := rules.Default()
	file.MaxSizeMB = math.NaN()
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), loadScene(t), Options{Rules: file})
	if !errs.IsConfig(err) {
		t.Errorf("Execute() error = %v, want a config error", err)
	}
}
