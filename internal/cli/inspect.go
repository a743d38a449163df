package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
)

// maxListed bounds how many cycles or unrooted nodes inspect prints.
const maxListed = 10

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Show graph statistics, reference cycles and unrooted nodes",
		Long: `Show statistics for a dependency graph: node and edge counts, sources,
sinks, ignored and unsized assets, the total size, and every reference cycle.

Nodes that sit only on cycles no source can reach are listed as unrooted;
the partition stage leaves them out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := snapshot.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			opts, err := c.pipelineOptions(false)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()
			part, _, err := runner.Partition(cmd.Context(), in, opts)
			if err != nil {
				return err
			}

			limit := maxListed
			if all {
				limit = -1
			}
			report := inspectGraph(in, part.Unrooted)
			report.print(in.Catalog, limit)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every cycle and unrooted node")
	return cmd
}

type graphReport struct {
	nodes, edges   int
	sources, sinks int
	ignored        int
	unsized        int
	totalBytes     int64
	cycles         [][]asset.ID
	unrooted       []asset.ID
}

func inspectGraph(in *snapshot.Input, unrooted []asset.ID) graphReport {
	g := in.Graph
	r := graphReport{
		nodes:    g.NodeCount(),
		edges:    g.EdgeCount(),
		sources:  len(g.Sources()),
		sinks:    len(g.Sinks()),
		ignored:  in.Ignore.Len(),
		cycles:   g.Cycles(),
		unrooted: unrooted,
	}
	for _, id := range g.Nodes() {
		if n, ok := in.Catalog.Size(id); ok {
			r.totalBytes += n
		} else {
			r.unsized++
		}
	}
	return r
}

func (r graphReport) print(cat asset.Catalog, limit int) {
	fmt.Fprintln(out, StyleTitle.Render("Graph"))
	printKeyValue("Nodes", fmt.Sprint(r.nodes))
	printKeyValue("Edges", fmt.Sprint(r.edges))
	printKeyValue("Sources", fmt.Sprint(r.sources))
	printKeyValue("Sinks", fmt.Sprint(r.sinks))
	printKeyValue("Ignored", fmt.Sprint(r.ignored))
	printKeyValue("Total size", formatBytes(r.totalBytes))
	if r.unsized > 0 {
		printKeyValue("Unsized", fmt.Sprint(r.unsized))
	}
	printNewline()

	if len(r.cycles) == 0 {
		printSuccess("No reference cycles")
	} else {
		printWarning("%d reference cycle(s)", len(r.cycles))
		for i, cyc := range r.cycles {
			if limit >= 0 && i >= limit {
				printDetail("... %d more", len(r.cycles)-limit)
				break
			}
			printDetail("%s", strings.Join(snapshot.SortedPaths(cat, cyc), " ⇄ "))
		}
	}

	if len(r.unrooted) == 0 {
		return
	}
	printWarning("%d unrooted node(s)", len(r.unrooted))
	for i, path := range snapshot.SortedPaths(cat, r.unrooted) {
		if limit >= 0 && i >= limit {
			printDetail("... %d more", len(r.unrooted)-limit)
			break
		}
		printDetail("%s", path)
	}
}
