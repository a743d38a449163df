package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/asset"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var graphPath string
	cmd := &cobra.Command{
		Use:   "browse [layout.json]",
		Short: "Browse output groups interactively",
		Long: `Browse the groups of a layout checkpoint interactively.

Pass --graph to show asset paths and sizes instead of GUIDs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cp, err := snapshot.ReadCheckpointFile(args[0])
			if err != nil {
				return fmt.Errorf("load checkpoint %s: %w", args[0], err)
			}
			if err := cp.Expect(snapshot.StageLayout); err != nil {
				return err
			}

			var cat asset.Catalog
			if graphPath != "" {
				in, err := snapshot.ReadGraphFile(graphPath)
				if err != nil {
					return fmt.Errorf("load graph %s: %w", graphPath, err)
				}
				cat = in.Catalog
			}
			if len(cp.Layout.Order) == 0 {
				printInfo("Layout has no groups")
				return nil
			}

			p := tea.NewProgram(NewGroupListModel(cp.Layout, cat), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "graph file for asset paths and sizes")
	return cmd
}
