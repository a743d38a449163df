package category

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/depgraph"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/topology"
)

// ClassifyOptions configures the classification stage.
type ClassifyOptions struct {
	// Policies overrides the policy of individual categories.
	Policies map[topology.Category]Policy
	// Logger receives the summary and soft warnings. Nil discards.
	Logger *log.Logger
	// Progress is called after each subgraph. Optional.
	Progress subgraph.ProgressFunc
}

// Classify files every non-empty subgraph of part into its topology category.
// Subgraphs are visited in ascending key order and cancellation is checked
// between them; on cancellation the partially filled table is returned with
// a CANCELED error.
//
// A Hierarchies subgraph with several internal sources is kept in
// Hierarchies and reported as a warning.
func Classify(ctx context.Context, part *subgraph.Partition, g *depgraph.Graph, opts ClassifyOptions) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	start := time.Now()
	t := NewTable(part, opts.Policies)
	keys := part.Keys()
	var inCycle map[asset.ID]bool

	for i, k := range keys {
		if err := ctx.Err(); err != nil {
			return t, errs.Canceled("classify", err)
		}
		info := part.Get(k)
		if info.Empty() {
			continue
		}

		res := topology.Classify(info.Nodes, info.Sources, g)
		if !res.Category.Valid() {
			return t, errs.New(errs.ErrCodeInvariant, "subgraph %s could not be classified", k)
		}
		t.File(k, res.Category)
		t.Rules[k] = res.Rule

		if res.AmbiguousHierarchy {
			if inCycle == nil {
				inCycle = g.InCycle()
			}
			cyclic := 0
			for n := range info.Nodes {
				if inCycle[n] {
					cyclic++
				}
			}
			w := errs.Warnf(errs.WarnHierarchySources, k.String(),
				"hierarchy contains %d of its own sources (%d node(s) on reference cycles)", info.SourceCount(), cyclic)
			t.Warnings = append(t.Warnings, w)
			logger.Warn("hierarchy with multiple sources", "subgraph", k, "sources", info.SourceCount(),
				"nodes", info.NodeCount(), "on_cycles", cyclic)
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(keys))
		}
	}

	kv := []any{"subgraphs", len(keys), "duration", time.Since(start)}
	for _, id := range topology.All() {
		kv = append(kv, id.String(), t.Categories[id].Len())
	}
	logger.Info("classified subgraphs", kv...)
	return t, nil
}
