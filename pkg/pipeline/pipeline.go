// Package pipeline runs the grouping stages end to end.
//
// This package implements the partition → classify → merge → layout pipeline
// shared by the CLI, the HTTP API and the file watcher. Centralizing it keeps
// caching, cancellation and progress reporting identical across entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Partition: group nodes by the set of sources that reach them
//  2. Classify: file every subgraph under its topology category
//  3. Merge: apply merge rules between categories
//  4. Layout: turn categories into named, size-bounded output groups
//
// Each stage result is a checkpoint ([snapshot.Checkpoint]) cached under a
// key derived from the input hash and the options that affect the stage.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{Rules: file})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, name := range result.Layout.Order {
//	    fmt.Println(name, len(result.Layout.Groups[name].Nodes))
//	}
//
// Run individual stages from checkpoints:
//
//	part, _, err := runner.Partition(ctx, input, opts)
//	table, _, err := runner.Classify(ctx, input, part, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/cache"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/rules"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/sourceset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/subgraph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Watcher
// =============================================================================

const (
	// DefaultStrategy computes source sets with a visited-set search.
	DefaultStrategy = "reachability"

	// DefaultCheckpointTTL is how long stage checkpoints stay cached.
	DefaultCheckpointTTL = 7 * 24 * time.Hour
)

// ProgressFunc receives progress between items of a stage.
type ProgressFunc func(stage snapshot.Stage, done, total int)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Strategy is "reachability" or "paths".
	Strategy string `json:"strategy,omitempty"`
	// Rules is the rule configuration. Nil uses [rules.Default].
	Rules *rules.File `json:"rules,omitempty"`
	// DefaultMaxSizeMB bounds pooled chunks whose rule sets no budget. Zero
	// uses the rules file value.
	DefaultMaxSizeMB float64 `json:"default_max_size_mb,omitempty"`
	// Refresh skips cache lookups; results are still written.
	Refresh bool `json:"refresh,omitempty"`
	// TTL for written checkpoints. Zero uses DefaultCheckpointTTL.
	TTL time.Duration `json:"-"`

	Logger   *log.Logger  `json:"-"`
	Progress ProgressFunc `json:"-"`

	strategy  sourceset.Strategy
	compiled  *rules.Set
	rulesHash string
	validated bool
}

// Result contains the outputs of a pipeline run. After a failed run the
// stages that completed are filled in, and the failing stage may hold a
// partial result.
type Result struct {
	InputHash string
	Partition *subgraph.Partition
	Table     *category.Table
	Reports   []category.RuleReport
	Layout    *grouplayout.Layout
	Warnings  []errs.Warning
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes         int
	Edges         int
	Subgraphs     int
	Moves         int
	Groups        int
	PartitionTime time.Duration
	ClassifyTime  time.Duration
	MergeTime     time.Duration
	LayoutTime    time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	PartitionHit bool `json:"partition"`
	ClassifyHit  bool `json:"classify"`
	MergeHit     bool `json:"merge"`
	LayoutHit    bool `json:"layout"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateStrategy checks that a strategy name is valid.
func ValidateStrategy(name string) error {
	_, err := sourceset.ParseStrategy(name)
	if err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "invalid strategy")
	}
	return nil
}

// ValidateAndSetDefaults checks the options and compiles the rules, so every
// configuration error surfaces before any stage runs. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	s, err := sourceset.ParseStrategy(o.Strategy)
	if err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "invalid strategy")
	}
	o.strategy = s
	if o.Rules == nil {
		o.Rules = rules.Default()
	}
	if o.DefaultMaxSizeMB < 0 {
		return errs.New(errs.ErrCodeConfig, "default_max_size_mb must not be negative")
	}
	compiled, err := o.Rules.Compile(nil)
	if err != nil {
		return err
	}
	o.compiled = compiled
	canonical, err := o.Rules.Canonical()
	if err != nil {
		return err
	}
	o.rulesHash = cache.Hash(canonical)
	if o.TTL == 0 {
		o.TTL = DefaultCheckpointTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// maxSizeMB resolves the pooled chunk budget.
func (o *Options) maxSizeMB() float64 {
	if o.DefaultMaxSizeMB > 0 {
		return o.DefaultMaxSizeMB
	}
	return o.compiled.MaxSizeMB
}

// keyOpts returns the cache key options for stage. Only options that change
// the stage result are included.
func (o *Options) keyOpts(stage snapshot.Stage) cache.StageKeyOpts {
	k := cache.StageKeyOpts{Strategy: o.strategy.String()}
	switch stage {
	case snapshot.StageClassify, snapshot.StageMerge:
		k.Rules = o.rulesHash
	case snapshot.StageLayout:
		k.Rules = o.rulesHash
		k.DefaultMaxSizeMB = o.maxSizeMB()
	}
	return k
}

func (o *Options) progress(stage snapshot.Stage) subgraph.ProgressFunc {
	if o.Progress == nil {
		return nil
	}
	return func(done, total int) { o.Progress(stage, done, total) }
}
