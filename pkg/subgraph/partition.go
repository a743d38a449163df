package subgraph

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/depgraph"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/sourceset"
)

// ProgressFunc is called between items with the number of items completed
// and the total.
type ProgressFunc func(done, total int)

// Options configures a partitioning run.
type Options struct {
	// Ignore holds nodes excluded from grouping. Nil ignores nothing.
	Ignore asset.IgnoreSet
	// Strategy selects how source sets are computed.
	Strategy sourceset.Strategy
	// Catalog supplies paths for log output. Optional.
	Catalog asset.Catalog
	// Logger receives the summary and soft warnings. Nil discards.
	Logger *log.Logger
	// Progress is called after each node. Optional.
	Progress ProgressFunc
}

// Partitioner groups the nodes of one dependency graph by source set.
type Partitioner struct {
	graph *depgraph.Graph
	opts  Options
}

// NewPartitioner creates a partitioner over g.
func NewPartitioner(g *depgraph.Graph, opts Options) *Partitioner {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Partitioner{graph: g, opts: opts}
}

// Run visits every node in graph order, resolves its source set, and files
// it into the arena.
//
// Cancellation is checked between nodes. On cancellation Run returns the
// partition built so far together with a CANCELED error; every node already
// filed is complete. Consistency failures are returned as fatal errors.
func (p *Partitioner) Run(ctx context.Context) (*Partition, error) {
	start := time.Now()
	resolver := sourceset.NewResolver(p.graph, p.opts.Ignore, p.opts.Strategy)
	part := NewPartition()
	nodes := p.graph.Nodes()

	for i, n := range nodes {
		if err := ctx.Err(); err != nil {
			return part, errs.Canceled("partition", err)
		}

		sources, status := resolver.Resolve(n)
		switch status {
		case sourceset.Ignored:
			part.Ignored++
		case sourceset.OwnedByIgnored:
			part.OwnedByIgnored++
		case sourceset.Unrooted:
			part.Unrooted = append(part.Unrooted, n)
		case sourceset.Resolved:
			if _, err := part.Add(n, sources); err != nil {
				return part, err
			}
		}

		if p.opts.Progress != nil {
			p.opts.Progress(i+1, len(nodes))
		}
	}

	if len(part.Unrooted) > 0 {
		asset.SortIDs(part.Unrooted)
		inCycle := p.graph.InCycle()
		onCycle := 0
		for _, n := range part.Unrooted {
			if inCycle[n] {
				onCycle++
			}
		}
		w := errs.Warnf(errs.WarnUnrooted, "",
			"%d node(s) are reachable from no source and were left out (%d on reference cycles, %d downstream of them)",
			len(part.Unrooted), onCycle, len(part.Unrooted)-onCycle)
		part.Warnings = append(part.Warnings, w)
		p.opts.Logger.Warn("unrooted nodes skipped", "count", len(part.Unrooted), "on_cycles", onCycle,
			"first", p.opts.Catalog.Path(part.Unrooted[0]))
	}

	p.opts.Logger.Info("partitioned graph",
		"nodes", len(nodes),
		"subgraphs", part.Len(),
		"ignored", part.Ignored,
		"owned_by_ignored", part.OwnedByIgnored,
		"duration", time.Since(start))
	return part, nil
}
