package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

const sceneDoc = `{
	"nodes": [
		{"path": "Assets/Main.unity"},
		{"path": "Assets/Menu.unity"},
		{"path": "Assets/Font.ttf", "size": 2048},
		{"id": "00000000-0000-0000-0000-00000000000a", "path": "Assets/Door.prefab"}
	],
	"edges": [
		{"from": "Assets/Main.unity", "to": "00000000-0000-0000-0000-00000000000a"},
		{"from": "Assets/Main.unity", "to": "Assets/Font.ttf"},
		{"from": "Assets/Menu.unity", "to": "Assets/Font.ttf"},
		{"from": "Assets/Menu.unity", "to": "Assets/Undeclared.mat"}
	],
	"ignore": ["Assets/Menu.unity"]
}`

func TestReadGraph(t *testing.T) {
	in, err := ReadGraph(strings.NewReader(sceneDoc))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	main := asset.FromPath("Assets/Main.unity")
	menu := asset.FromPath("Assets/Menu.unity")
	font := asset.FromPath("Assets/Font.ttf")
	door := asset.MustParse("00000000-0000-0000-0000-00000000000a")
	undeclared := asset.FromPath("Assets/Undeclared.mat")

	if got := in.Graph.NodeCount(); got != 5 {
		t.Errorf("NodeCount() = %d, want 5", got)
	}
	if got := in.Graph.Dependencies(main); !slices.Equal(got, []asset.ID{door, font}) {
		t.Errorf("Dependencies(Main) = %v, want [Door Font]", got)
	}
	if !in.Graph.Has(undeclared) {
		t.Error("undeclared edge target should become a node")
	}
	if !in.Ignore.Contains(menu) || in.Ignore.Len() != 1 {
		t.Errorf("Ignore = %v, want {Menu}", in.Ignore.Sorted())
	}
	if size, ok := in.Catalog.Size(font); !ok || size != 2048 {
		t.Errorf("Size(Font) = %d, %v; want 2048, true", size, ok)
	}
	if _, ok := in.Catalog.Size(main); ok {
		t.Error("Main has no recorded size")
	}
	if got := in.Catalog.Path(door); got != "Assets/Door.prefab" {
		t.Errorf("Path(Door) = %q", got)
	}
}

func TestReadGraphErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errs.Code
	}{
		{"malformed", `{"nodes": [`, errs.ErrCodeInvalidFormat},
		{"anonymous node", `{"nodes": [{}]}`, errs.ErrCodeInvalidInput},
		{"bad id", `{"nodes": [{"id": "not-a-guid"}]}`, errs.ErrCodeInvalidInput},
		{"duplicate", `{"nodes": [{"path": "a"}, {"path": "a"}]}`, errs.ErrCodeInvalidInput},
		{"negative size", `{"nodes": [{"path": "a", "size": -1}]}`, errs.ErrCodeInvalidInput},
		{"empty edge end", `{"edges": [{"from": "a", "to": ""}]}`, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("GetCode() = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestGraphRoundTrip(t *testing.T) {
	in, err := ReadGraph(strings.NewReader(sceneDoc))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	first, err := MarshalGraph(in)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	again, err := ReadGraph(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("ReadGraph(round trip): %v", err)
	}
	second, err := MarshalGraph(again)
	if err != nil {
		t.Fatalf("MarshalGraph(round trip): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip changed output:\n%s\n---\n%s", first, second)
	}
}

func TestGraphFile(t *testing.T) {
	in, err := ReadGraph(strings.NewReader(sceneDoc))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(in, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if got.Graph.EdgeCount() != in.Graph.EdgeCount() {
		t.Errorf("EdgeCount() = %d, want %d", got.Graph.EdgeCount(), in.Graph.EdgeCount())
	}

	_, err = ReadGraphFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("missing file error = %v, want NOT_FOUND", err)
	}
}

// pipelineOutputs runs the stages on the scene document.
func pipelineOutputs(t *testing.T) (*subgraph.Partition, *category.Table, *grouplayout.Layout) {
	t.Helper()
	ctx := context.Background()
	in, err := ReadGraph(strings.NewReader(sceneDoc))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	in.Ignore = asset.NewSet()

	part, err := subgraph.NewPartitioner(in.Graph, subgraph.Options{Catalog: in.Catalog}).Run(ctx)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	table, err := category.Classify(ctx, part, in.Graph, category.ClassifyOptions{})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var rules []grouplayout.OutputRule
	for _, c := range topology.All() {
		rules = append(rules, grouplayout.OutputRule{Category: c, Template: "Default"})
	}
	layout, err := grouplayout.Build(ctx, table, grouplayout.Options{Rules: rules, Catalog: in.Catalog})
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return part, table, layout
}

func TestCheckpointRoundTrip(t *testing.T) {
	part, table, layout := pipelineOutputs(t)

	tests := []struct {
		name  string
		cp    *Checkpoint
		check func(t *testing.T, got *Checkpoint)
	}{
		{
			name: "partition",
			cp:   PartitionCheckpoint("in", part),
			check: func(t *testing.T, got *Checkpoint) {
				if got.Partition.Len() != part.Len() {
					t.Errorf("Len() = %d, want %d", got.Partition.Len(), part.Len())
				}
				for _, k := range part.Keys() {
					if !got.Partition.Get(k).Nodes.Equal(part.Get(k).Nodes) {
						t.Errorf("subgraph %s nodes differ", k)
					}
				}
				main := asset.FromPath("Assets/Main.unity")
				if _, ok := got.Partition.Owner(main); !ok {
					t.Error("owner index not rebuilt")
				}
			},
		},
		{
			name: "classify",
			cp:   TableCheckpoint(StageClassify, "in", table, nil),
			check: func(t *testing.T, got *Checkpoint) {
				for id, n := range table.Counts() {
					if got.Table.Counts()[id] != n {
						t.Errorf("Counts()[%s] = %d, want %d", id, got.Table.Counts()[id], n)
					}
				}
			},
		},
		{
			name: "layout",
			cp:   LayoutCheckpoint("in", layout),
			check: func(t *testing.T, got *Checkpoint) {
				if !slices.Equal(got.Layout.Order, layout.Order) {
					t.Errorf("Order = %v, want %v", got.Layout.Order, layout.Order)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalCheckpoint(tt.cp)
			if err != nil {
				t.Fatalf("MarshalCheckpoint: %v", err)
			}
			got, err := UnmarshalCheckpoint(data)
			if err != nil {
				t.Fatalf("UnmarshalCheckpoint: %v", err)
			}
			if got.Stage != tt.cp.Stage || got.Input != "in" {
				t.Errorf("envelope = %s/%s, want %s/in", got.Stage, got.Input, tt.cp.Stage)
			}
			tt.check(t, got)

			again, err := MarshalCheckpoint(got)
			if err != nil {
				t.Fatalf("MarshalCheckpoint(again): %v", err)
			}
			if !bytes.Equal(data, again) {
				t.Error("checkpoint encoding is not deterministic")
			}
		})
	}
}

func TestCheckpointValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errs.Code
	}{
		{"version", `{"version": 2, "stage": "layout", "layout": {}}`, errs.ErrCodeInvalidFormat},
		{"stage", `{"version": 1, "stage": "bake"}`, errs.ErrCodeInvalidFormat},
		{"missing payload", `{"version": 1, "stage": "partition"}`, errs.ErrCodeInvalidFormat},
		{
			name: "key mismatch",
			input: `{"version": 1, "stage": "partition", "partition": {"subgraphs": {
				"0000000000000001": {"key": "0000000000000002", "nodes": [], "sources": ["00000000-0000-0000-0000-000000000001"], "category": "Unclassified"}
			}}}`,
			code: errs.ErrCodeInvariant,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCheckpoint([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("GetCode() = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestCheckpointExpect(t *testing.T) {
	cp := LayoutCheckpoint("", &grouplayout.Layout{})
	if err := cp.Expect(StageClassify, StageMerge); err == nil {
		t.Error("Expect(classify, merge) on layout should fail")
	}
	if err := cp.Expect(StageLayout); err != nil {
		t.Errorf("Expect(layout) = %v", err)
	}
}

func TestCheckpointFile(t *testing.T) {
	part, _, _ := pipelineOutputs(t)
	path := filepath.Join(t.TempDir(), "partition.json")
	if err := WriteCheckpointFile(PartitionCheckpoint("", part), path); err != nil {
		t.Fatalf("WriteCheckpointFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
	got, err := ReadCheckpointFile(path)
	if err != nil {
		t.Fatalf("ReadCheckpointFile: %v", err)
	}
	if got.Partition.NodeCount() != part.NodeCount() {
		t.Errorf("NodeCount() = %d, want %d", got.Partition.NodeCount(), part.NodeCount())
	}
}
