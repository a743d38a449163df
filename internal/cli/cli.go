// Package cli implements the aagen command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/internal/config"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/buildinfo"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/cache"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/pipeline"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/rules"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "aagen"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Configuration is resolved before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "aagen groups asset dependency graphs into bundles",
		Long: `aagen partitions an asset dependency graph into subgraphs that share the same
source assets, classifies them by topology, applies configured merge rules and
lays the result out as named output groups.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			c.Config = cfg
			c.SetLogLevel(cfg.Level())
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.partitionCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, c.config().Keyer(), c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.config()
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := cfg.CacheOptions()
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	ch, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return ch, nil
}

// config returns the loaded configuration, or defaults when commands run
// without the root pre-run (as in tests).
func (c *CLI) config() *config.Config {
	if c.Config == nil {
		cfg, err := config.Load(nil)
		if err != nil {
			c.Logger.Warn("using built-in defaults", "err", err)
			cfg = &config.Config{Cache: cache.BackendNone, Strategy: pipeline.DefaultStrategy, MemoryEntries: cache.DefaultMemoryEntries}
		}
		c.Config = cfg
	}
	return c.Config
}

// pipelineOptions builds stage options from the configuration.
func (c *CLI) pipelineOptions(refresh bool) (pipeline.Options, error) {
	cfg := c.config()
	opts := pipeline.Options{
		Strategy:         cfg.Strategy,
		DefaultMaxSizeMB: cfg.DefaultMaxSizeMB,
		Refresh:          refresh,
		TTL:              cfg.CheckpointTTL,
		Logger:           c.Logger,
	}
	if cfg.Rules != "" {
		f, err := rules.Load(cfg.Rules)
		if err != nil {
			return opts, err
		}
		opts.Rules = f
	}
	return opts, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/aagen/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives "<input>.<stage>.json" when output is empty.
func outputPath(output, input string, stage snapshot.Stage) string {
	if output != "" {
		return output
	}
	ext := filepath.Ext(input)
	return input[:len(input)-len(ext)] + "." + string(stage) + ".json"
}
