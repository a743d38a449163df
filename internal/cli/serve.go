package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/api"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		noCache  bool
		noOTel   bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grouping pipeline over HTTP",
		Long: `Serve the grouping pipeline over HTTP.

Routes:
  GET  /healthz     liveness probe
  GET  /version     build information
  POST /v1/layout   run every stage on a posted graph

Requests share the configured checkpoint cache. Unless --no-otel is set,
stage spans are logged at debug level as they end and metrics are logged
every --metrics-interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.config().Addr
			}
			if !noOTel {
				tel, err := observability.NewTelemetry(ctx, c.Logger, interval)
				if err != nil {
					return err
				}
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := tel.Shutdown(sctx); err != nil {
						c.Logger.Warn("telemetry shutdown", "error", err)
					}
				}()
				otel.SetTracerProvider(tel.TracerProvider)
				otel.SetMeterProvider(tel.MeterProvider)

				hooks, err := tel.Hooks()
				if err != nil {
					return err
				}
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
				defer observability.Reset()
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Listening on %s", StyleHighlight.Render(addr))
			return api.NewServer(runner, c.Logger).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noOTel, "no-otel", false, "do not register OpenTelemetry hooks")
	cmd.Flags().DurationVar(&interval, "metrics-interval", observability.DefaultMetricInterval, "how often metrics are logged")
	return cmd
}
