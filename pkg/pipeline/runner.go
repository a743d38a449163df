package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/cache"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/observability"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/rules"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
)

// Runner encapsulates pipeline execution with checkpoint caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can use the same Runner with
// different inputs and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// InputHash returns the content hash of a decoded input.
func InputHash(in *snapshot.Input) (string, error) {
	data, err := snapshot.MarshalGraph(in)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "hash input")
	}
	return cache.Hash(data), nil
}

// Execute runs all four stages.
//
// On failure the returned Result holds every completed stage and, for a
// canceled stage, its partial output.
func (r *Runner) Execute(ctx context.Context, in *snapshot.Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hash, err := InputHash(in)
	if err != nil {
		return nil, err
	}
	result := &Result{InputHash: hash}
	result.Stats.Nodes = in.Graph.NodeCount()
	result.Stats.Edges = in.Graph.EdgeCount()

	start := time.Now()
	part, hit, err := r.partition(ctx, in, result.InputHash, opts)
	result.Partition, result.CacheInfo.PartitionHit = part, hit
	result.Stats.PartitionTime = time.Since(start)
	if err != nil {
		return result, err
	}
	result.Stats.Subgraphs = part.Len()
	result.Warnings = append(result.Warnings, part.Warnings...)

	start = time.Now()
	table, hit, err := r.classify(ctx, in, part, result.InputHash, opts)
	result.Table, result.CacheInfo.ClassifyHit = table, hit
	result.Stats.ClassifyTime = time.Since(start)
	if err != nil {
		return result, err
	}
	result.Warnings = append(result.Warnings, table.Warnings...)

	start = time.Now()
	table, reports, hit, err := r.merge(ctx, in, table, result.InputHash, opts)
	result.Table, result.Reports, result.CacheInfo.MergeHit = table, reports, hit
	result.Stats.MergeTime = time.Since(start)
	for _, rep := range reports {
		result.Stats.Moves += rep.Moved()
	}
	if err != nil {
		return result, err
	}

	start = time.Now()
	layout, hit, err := r.layout(ctx, in, table, result.InputHash, opts)
	result.Layout, result.CacheInfo.LayoutHit = layout, hit
	result.Stats.LayoutTime = time.Since(start)
	if err != nil {
		return result, err
	}
	result.Stats.Groups = len(layout.Groups)
	result.Warnings = append(result.Warnings, layout.Warnings...)

	r.Logger.Info("grouping complete",
		"nodes", result.Stats.Nodes,
		"subgraphs", result.Stats.Subgraphs,
		"moves", result.Stats.Moves,
		"groups", result.Stats.Groups,
		"warnings", len(result.Warnings))
	return result, nil
}

// Partition runs the partition stage with caching.
func (r *Runner) Partition(ctx context.Context, in *snapshot.Input, opts Options) (*subgraph.Partition, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash, err := InputHash(in)
	if err != nil {
		return nil, false, err
	}
	return r.partition(ctx, in, hash, opts)
}

// Classify runs the classify stage on part with caching.
func (r *Runner) Classify(ctx context.Context, in *snapshot.Input, part *subgraph.Partition, opts Options) (*category.Table, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash, err := InputHash(in)
	if err != nil {
		return nil, false, err
	}
	return r.classify(ctx, in, part, hash, opts)
}

// Merge applies the merge rules to table with caching. The table is
// modified in place on a cache miss.
func (r *Runner) Merge(ctx context.Context, in *snapshot.Input, table *category.Table, opts Options) (*category.Table, []category.RuleReport, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}
	hash, err := InputHash(in)
	if err != nil {
		return nil, nil, false, err
	}
	return r.merge(ctx, in, table, hash, opts)
}

// Layout builds the output groups for table with caching.
func (r *Runner) Layout(ctx context.Context, in *snapshot.Input, table *category.Table, opts Options) (*grouplayout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash, err := InputHash(in)
	if err != nil {
		return nil, false, err
	}
	return r.layout(ctx, in, table, hash, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Stages
// =============================================================================

func (r *Runner) partition(ctx context.Context, in *snapshot.Input, hash string, opts Options) (*subgraph.Partition, bool, error) {
	const stage = snapshot.StagePartition
	key := r.Keyer.StageKey(string(stage), hash, opts.keyOpts(stage))
	if cp := r.lookup(ctx, key, stage, hash, opts); cp != nil {
		return cp.Partition, true, nil
	}

	hooks := observability.Pipeline()
	sctx := hooks.OnStageStart(ctx, string(stage), in.Graph.NodeCount())
	start := time.Now()
	part, err := subgraph.NewPartitioner(in.Graph, subgraph.Options{
		Ignore:   in.Ignore,
		Strategy: opts.strategy,
		Catalog:  in.Catalog,
		Logger:   opts.Logger,
		Progress: opts.progress(stage),
	}).Run(ctx)
	produced := 0
	if part != nil {
		produced = part.Len()
		reportWarnings(sctx, stage, part.Warnings)
	}
	hooks.OnStageComplete(sctx, string(stage), produced, time.Since(start), err)
	if err != nil {
		return part, false, err
	}

	r.store(ctx, key, snapshot.PartitionCheckpoint(hash, part), opts)
	return part, false, nil
}

func (r *Runner) classify(ctx context.Context, in *snapshot.Input, part *subgraph.Partition, hash string, opts Options) (*category.Table, bool, error) {
	const stage = snapshot.StageClassify
	key := r.Keyer.StageKey(string(stage), hash, opts.keyOpts(stage))
	if cp := r.lookup(ctx, key, stage, hash, opts); cp != nil {
		return cp.Table, true, nil
	}

	hooks := observability.Pipeline()
	sctx := hooks.OnStageStart(ctx, string(stage), part.Len())
	start := time.Now()
	table, err := category.Classify(ctx, part, in.Graph, category.ClassifyOptions{
		Policies: opts.compiled.Policies,
		Logger:   opts.Logger,
		Progress: opts.progress(stage),
	})
	produced := 0
	if table != nil {
		produced = len(table.Rules)
		reportWarnings(sctx, stage, table.Warnings)
	}
	hooks.OnStageComplete(sctx, string(stage), produced, time.Since(start), err)
	if err != nil {
		return table, false, err
	}

	r.store(ctx, key, snapshot.TableCheckpoint(stage, hash, table, nil), opts)
	return table, false, nil
}

func (r *Runner) merge(ctx context.Context, in *snapshot.Input, table *category.Table, hash string, opts Options) (*category.Table, []category.RuleReport, bool, error) {
	const stage = snapshot.StageMerge
	key := r.Keyer.StageKey(string(stage), hash, opts.keyOpts(stage))
	if cp := r.lookup(ctx, key, stage, hash, opts); cp != nil {
		return cp.Table, cp.Reports, true, nil
	}

	set, err := r.compile(opts, in)
	if err != nil {
		return table, nil, false, err
	}

	hooks := observability.Pipeline()
	sctx := hooks.OnStageStart(ctx, string(stage), len(set.Merge))
	start := time.Now()
	reports, err := table.Merge(ctx, set.Merge, category.MergeOptions{
		Logger:   opts.Logger,
		Progress: opts.progress(stage),
		OnMove: func(rule string, from, _ *subgraph.Info) {
			hooks.OnMerge(sctx, rule, from.NodeCount())
		},
	})
	moved := 0
	for _, rep := range reports {
		moved += rep.Moved()
	}
	hooks.OnStageComplete(sctx, string(stage), moved, time.Since(start), err)
	if err != nil {
		return table, reports, false, err
	}

	r.store(ctx, key, snapshot.TableCheckpoint(stage, hash, table, reports), opts)
	return table, reports, false, nil
}

func (r *Runner) layout(ctx context.Context, in *snapshot.Input, table *category.Table, hash string, opts Options) (*grouplayout.Layout, bool, error) {
	const stage = snapshot.StageLayout
	key := r.Keyer.StageKey(string(stage), hash, opts.keyOpts(stage))
	if cp := r.lookup(ctx, key, stage, hash, opts); cp != nil {
		return cp.Layout, true, nil
	}

	set, err := r.compile(opts, in)
	if err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	sctx := hooks.OnStageStart(ctx, string(stage), table.Nodes().Len())
	start := time.Now()
	layout, err := grouplayout.Build(ctx, table, grouplayout.Options{
		Rules:            set.Output,
		Catalog:          in.Catalog,
		DefaultMaxSizeMB: opts.maxSizeMB(),
		Logger:           opts.Logger,
		Progress:         opts.progress(stage),
	})
	produced := 0
	if layout != nil {
		produced = len(layout.Groups)
		reportWarnings(sctx, stage, layout.Warnings)
	}
	hooks.OnStageComplete(sctx, string(stage), produced, time.Since(start), err)
	if err != nil {
		return layout, false, err
	}

	r.store(ctx, key, snapshot.LayoutCheckpoint(hash, layout), opts)
	return layout, false, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// compile binds the rule predicates to the input's size data.
func (r *Runner) compile(opts Options, in *snapshot.Input) (*rules.Set, error) {
	if in.Catalog == nil {
		return opts.compiled, nil
	}
	return opts.Rules.Compile(in.Catalog.Size)
}

// lookup returns a cached checkpoint for stage, or nil. Unreadable or
// mismatched entries count as misses.
func (r *Runner) lookup(ctx context.Context, key string, stage snapshot.Stage, hash string, opts Options) *snapshot.Checkpoint {
	if opts.Refresh {
		return nil
	}
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache lookup failed", "stage", stage, "err", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, string(stage))
		return nil
	}
	cp, err := snapshot.UnmarshalCheckpoint(data)
	if err != nil || cp.Stage != stage || cp.Input != hash {
		opts.Logger.Debug("discarding cached checkpoint", "stage", stage, "err", err)
		hooks.OnCacheMiss(ctx, string(stage))
		return nil
	}
	hooks.OnCacheHit(ctx, string(stage))
	opts.Logger.Debug("checkpoint cache hit", "stage", stage)
	return cp
}

func (r *Runner) store(ctx context.Context, key string, cp *snapshot.Checkpoint, opts Options) {
	data, err := snapshot.MarshalCheckpoint(cp)
	if err != nil {
		opts.Logger.Warn("encode checkpoint", "stage", cp.Stage, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
		opts.Logger.Warn("cache write failed", "stage", cp.Stage, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, string(cp.Stage), len(data))
}

func reportWarnings(ctx context.Context, stage snapshot.Stage, warnings []errs.Warning) {
	hooks := observability.Pipeline()
	for _, w := range warnings {
		hooks.OnWarning(ctx, string(stage), string(w.Kind))
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
