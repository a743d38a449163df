package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/pipeline"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/watch"
)

// runCommand creates the run command, which executes every stage.
func (c *CLI) runCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		watchFS bool
	)

	cmd := &cobra.Command{
		Use:   "run [graph.json]",
		Short: "Run all stages and write the group layout",
		Long: `Run partition, classify, merge and layout on a dependency graph and write the
resulting layout checkpoint (default: <graph>.layout.json).

Stage results are cached, so unchanged stages are skipped on the next run.
With --watch the graph and rules files are watched and the run repeats on
every change until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			dest := outputPath(output, input, snapshot.StageLayout)
			if !watchFS {
				return c.runOnce(cmd.Context(), input, dest, noCache, refresh)
			}
			return c.runWatch(cmd.Context(), input, dest, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute every stage and overwrite cached results")
	cmd.Flags().BoolVarP(&watchFS, "watch", "w", false, "rerun when the graph or rules file changes")

	return cmd
}

// runOnce loads the graph, executes the pipeline and writes the layout.
func (c *CLI) runOnce(ctx context.Context, input, dest string, noCache, refresh bool) error {
	in, err := snapshot.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	opts, err := c.pipelineOptions(refresh)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Grouping assets...")
	opts.Progress = spinner.Progress()
	spinner.Start()

	result, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Run failed")
		if errs.Is(err, errs.ErrCodeCanceled) && result != nil {
			c.Logger.Warn("canceled", "completed_nodes", result.Stats.Nodes)
		}
		return err
	}
	spinner.Stop()

	if err := snapshot.WriteCheckpointFile(snapshot.LayoutCheckpoint(result.InputHash, result.Layout), dest); err != nil {
		return fmt.Errorf("write output %s: %w", dest, err)
	}

	printSuccess("Layout complete")
	printFile(dest)
	printStats(result.Stats, allCached(result.CacheInfo))
	printReports(result.Reports)
	printWarnings(result.Warnings)
	return nil
}

// runWatch runs once, then again after every change to the graph or rules.
// Failed runs are reported and watching continues.
func (c *CLI) runWatch(ctx context.Context, input, dest string, noCache, refresh bool) error {
	paths := []string{input}
	if r := c.config().Rules; r != "" {
		paths = append(paths, r)
	}
	w, err := watch.New(paths, watch.Options{Logger: c.Logger})
	if err != nil {
		return err
	}
	go w.Run(ctx)

	report := func() {
		if err := c.runOnce(ctx, input, dest, noCache, refresh); err != nil && ctx.Err() == nil {
			printError("%s", errs.UserMessage(err))
		}
	}
	report()
	printInfo("Watching %d file(s), press Ctrl+C to stop", len(paths))

	for ev := range w.Events() {
		printNewline()
		printInfo("Changed: %v", ev.Paths)
		report()
	}
	return ctx.Err()
}

func allCached(ci pipeline.CacheInfo) bool {
	return ci.PartitionHit && ci.ClassifyHit && ci.MergeHit && ci.LayoutHit
}
