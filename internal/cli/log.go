// Package cli implements the aagen command-line interface.
//
// The commands drive the grouping pipeline either end to end or one stage at
// a time, with each stage reading and writing JSON checkpoint files. The CLI
// is built using cobra, configured through koanf (see internal/config) and
// logs through charmbracelet/log.
//
// # Commands
//
//   - run: all stages, writing the layout; --watch reruns on change
//   - partition, classify, merge, layout: one stage from a checkpoint
//   - inspect: graph statistics, cycles and unrooted nodes
//   - render: Graphviz SVG of the graph, clustered by output group
//   - browse: interactive group browser
//   - serve: HTTP API
//   - cache: manage the checkpoint cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, or
// --log-level. Loggers are passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps, filtering below
// level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Partitioned 42 nodes (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
