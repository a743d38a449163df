package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/pipeline"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
)

// stageFlags are shared by the single-stage commands.
type stageFlags struct {
	output  string
	noCache bool
	refresh bool
}

func (f *stageFlags) register(cmd *cobra.Command, stage snapshot.Stage) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", fmt.Sprintf("output file (default: <graph>.%s.json)", stage))
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite the cached result")
}

// stageRun is the state a single-stage command works with.
type stageRun struct {
	in     *snapshot.Input
	hash   string
	opts   pipeline.Options
	runner *pipeline.Runner
	prev   *snapshot.Checkpoint
}

// prepare loads the graph and, when checkpoint is non-empty, the previous
// stage's checkpoint, which must come from the same graph.
func (c *CLI) prepare(ctx context.Context, graphPath, checkpoint string, f *stageFlags, want ...snapshot.Stage) (*stageRun, error) {
	in, err := snapshot.ReadGraphFile(graphPath)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", graphPath, err)
	}
	hash, err := pipeline.InputHash(in)
	if err != nil {
		return nil, err
	}
	sr := &stageRun{in: in, hash: hash}

	if checkpoint != "" {
		cp, err := snapshot.ReadCheckpointFile(checkpoint)
		if err != nil {
			return nil, fmt.Errorf("load checkpoint %s: %w", checkpoint, err)
		}
		if err := cp.Expect(want...); err != nil {
			return nil, err
		}
		if cp.Input != "" && cp.Input != sr.hash {
			return nil, errs.New(errs.ErrCodeInvalidInput, "checkpoint %s was produced from a different graph", checkpoint)
		}
		sr.prev = cp
	}

	if sr.opts, err = c.pipelineOptions(f.refresh); err != nil {
		return nil, err
	}
	if sr.runner, err = c.newRunner(ctx, f.noCache); err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	return sr, nil
}

func (c *CLI) finishStage(cp *snapshot.Checkpoint, dest string, cached bool, stats pipeline.Stats) error {
	if err := snapshot.WriteCheckpointFile(cp, dest); err != nil {
		return fmt.Errorf("write output %s: %w", dest, err)
	}
	printSuccess("%s complete", stageVerb(cp.Stage))
	printFile(dest)
	printStats(stats, cached)
	return nil
}

// partitionCommand creates the partition command.
func (c *CLI) partitionCommand() *cobra.Command {
	var f stageFlags
	cmd := &cobra.Command{
		Use:   "partition [graph.json]",
		Short: "Split a graph into subgraphs sharing the same sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sr, err := c.prepare(ctx, args[0], "", &f)
			if err != nil {
				return err
			}
			defer sr.runner.Close()

			part, hit, err := sr.runner.Partition(ctx, sr.in, sr.opts)
			if err != nil {
				return err
			}
			printWarnings(part.Warnings)
			return c.finishStage(
				snapshot.PartitionCheckpoint(sr.hash, part),
				outputPath(f.output, args[0], snapshot.StagePartition),
				hit,
				pipeline.Stats{Nodes: sr.in.Graph.NodeCount(), Edges: sr.in.Graph.EdgeCount(), Subgraphs: len(part.Subgraphs)},
			)
		},
	}
	f.register(cmd, snapshot.StagePartition)
	return cmd
}

// classifyCommand creates the classify command.
func (c *CLI) classifyCommand() *cobra.Command {
	var f stageFlags
	cmd := &cobra.Command{
		Use:   "classify [graph.json] [partition.json]",
		Short: "Assign each subgraph a topology category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sr, err := c.prepare(ctx, args[0], args[1], &f, snapshot.StagePartition)
			if err != nil {
				return err
			}
			defer sr.runner.Close()

			table, hit, err := sr.runner.Classify(ctx, sr.in, sr.prev.Partition, sr.opts)
			if err != nil {
				return err
			}
			printWarnings(table.Warnings)
			return c.finishStage(
				snapshot.TableCheckpoint(snapshot.StageClassify, sr.hash, table, nil),
				outputPath(f.output, args[0], snapshot.StageClassify),
				hit,
				pipeline.Stats{Nodes: sr.in.Graph.NodeCount(), Edges: sr.in.Graph.EdgeCount(), Subgraphs: len(table.Partition.Subgraphs)},
			)
		},
	}
	f.register(cmd, snapshot.StageClassify)
	return cmd
}

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	var f stageFlags
	cmd := &cobra.Command{
		Use:   "merge [graph.json] [classify.json]",
		Short: "Apply the configured merge rules to a classification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sr, err := c.prepare(ctx, args[0], args[1], &f, snapshot.StageClassify)
			if err != nil {
				return err
			}
			defer sr.runner.Close()

			table, reports, hit, err := sr.runner.Merge(ctx, sr.in, sr.prev.Table, sr.opts)
			if err != nil {
				return err
			}
			moves := 0
			for _, r := range reports {
				moves += r.Moved()
			}
			if err := c.finishStage(
				snapshot.TableCheckpoint(snapshot.StageMerge, sr.hash, table, reports),
				outputPath(f.output, args[0], snapshot.StageMerge),
				hit,
				pipeline.Stats{Nodes: sr.in.Graph.NodeCount(), Edges: sr.in.Graph.EdgeCount(), Subgraphs: len(table.Partition.Subgraphs), Moves: moves},
			); err != nil {
				return err
			}
			printReports(reports)
			return nil
		},
	}
	f.register(cmd, snapshot.StageMerge)
	return cmd
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f stageFlags
	cmd := &cobra.Command{
		Use:   "layout [graph.json] [merge.json]",
		Short: "Build named output groups from a (merged) classification",
		Long: `Build named output groups from a classification checkpoint.

The checkpoint may come from either 'merge' or 'classify'; the latter lays
out the classification without applying any merge rule.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sr, err := c.prepare(ctx, args[0], args[1], &f, snapshot.StageMerge, snapshot.StageClassify)
			if err != nil {
				return err
			}
			defer sr.runner.Close()

			layout, hit, err := sr.runner.Layout(ctx, sr.in, sr.prev.Table, sr.opts)
			if err != nil {
				return err
			}
			printWarnings(layout.Warnings)
			if err := c.finishStage(
				snapshot.LayoutCheckpoint(sr.hash, layout),
				outputPath(f.output, args[0], snapshot.StageLayout),
				hit,
				pipeline.Stats{Nodes: sr.in.Graph.NodeCount(), Edges: sr.in.Graph.EdgeCount(), Groups: len(layout.Groups)},
			); err != nil {
				return err
			}
			printNextStep("Browse", appName+" browse "+outputPath(f.output, args[0], snapshot.StageLayout))
			return nil
		},
	}
	f.register(cmd, snapshot.StageLayout)
	return cmd
}
