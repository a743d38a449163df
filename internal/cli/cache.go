package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/cache"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the checkpoint cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// fileCacheDir returns the directory of the file backend.
func (c *CLI) fileCacheDir() (string, error) {
	if dir := c.config().CacheDir; dir != "" {
		return dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}

// cacheClearCommand creates the "cache clear" subcommand. Only the file
// backend can be cleared in bulk; shared backends expire entries by TTL.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached checkpoints (file backend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if b := c.config().Cache; b != cache.BackendFile {
				return errs.New(errs.ErrCodeUnsupported, "cache clear supports the file backend only (configured: %s)", b)
			}
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return err
			}
			printSuccess("Cleared cached checkpoints")
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, dir)
			return nil
		},
	}
}
