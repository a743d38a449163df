package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultMetricInterval is how often metrics are collected and logged.
const DefaultMetricInterval = time.Minute

// Telemetry owns the SDK providers behind [OTelHooks]. Spans and metrics are
// exported to a charmbracelet logger: spans at debug level when they end,
// metrics at info level on every collection.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

// NewTelemetry builds tracer and meter providers that export through logger.
// A nil logger discards; interval <= 0 uses [DefaultMetricInterval].
func NewTelemetry(ctx context.Context, logger *log.Logger, interval time.Duration) (*Telemetry, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if interval <= 0 {
		interval = DefaultMetricInterval
	}

	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", "aagen")))
	if err != nil {
		logger.Warn("failed to create resource, using default", "error", err)
		res = resource.Default()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(NewLogSpanExporter(logger))),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(NewLogMetricExporter(logger), sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	return &Telemetry{TracerProvider: tp, MeterProvider: mp}, nil
}

// Hooks returns [OTelHooks] bound to the providers.
func (t *Telemetry) Hooks() (*OTelHooks, error) {
	return NewOTelHooks(t.TracerProvider, t.MeterProvider)
}

// ForceFlush exports everything recorded so far.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	return errors.Join(t.TracerProvider.ForceFlush(ctx), t.MeterProvider.ForceFlush(ctx))
}

// Shutdown flushes and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.TracerProvider.Shutdown(ctx), t.MeterProvider.Shutdown(ctx))
}

// =============================================================================
// Span exporter
// =============================================================================

// LogSpanExporter writes finished spans to a logger. Export never fails.
type LogSpanExporter struct {
	logger *log.Logger
}

// NewLogSpanExporter creates a span exporter writing to logger.
func NewLogSpanExporter(logger *log.Logger) *LogSpanExporter {
	return &LogSpanExporter{logger: logger}
}

// ExportSpans logs one line per span.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		kv := []any{
			"span", s.Name(),
			"trace", s.SpanContext().TraceID().String(),
			"duration", s.EndTime().Sub(s.StartTime()),
			"status", s.Status().Code.String(),
		}
		for _, a := range s.Attributes() {
			kv = append(kv, string(a.Key), a.Value.Emit())
		}
		if n := len(s.Events()); n > 0 {
			kv = append(kv, "events", n)
		}
		e.logger.Debug("span", kv...)
	}
	return nil
}

// Shutdown is a no-op; the logger outlives the exporter.
func (e *LogSpanExporter) Shutdown(ctx context.Context) error { return nil }

// =============================================================================
// Metric exporter
// =============================================================================

// LogMetricExporter writes collected metrics to a logger, one line per data
// point. Counters use cumulative temporality, so each line carries the total.
type LogMetricExporter struct {
	logger *log.Logger
}

// NewLogMetricExporter creates a metric exporter writing to logger.
func NewLogMetricExporter(logger *log.Logger) *LogMetricExporter {
	return &LogMetricExporter{logger: logger}
}

func (e *LogMetricExporter) Temporality(k sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(k)
}

func (e *LogMetricExporter) Aggregation(k sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(k)
}

// Export logs every data point in rm.
func (e *LogMetricExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					e.logger.Info("metric", "name", m.Name, "value", dp.Value, "attrs", encode(dp.Attributes))
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					e.logger.Info("metric", "name", m.Name, "value", dp.Value, "attrs", encode(dp.Attributes))
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					e.logger.Info("metric", "name", m.Name, "count", dp.Count,
						"sum", fmt.Sprintf("%.2f", dp.Sum), "attrs", encode(dp.Attributes))
				}
			default:
				e.logger.Debug("metric skipped", "name", m.Name, "type", fmt.Sprintf("%T", data))
			}
		}
	}
	return nil
}

func (e *LogMetricExporter) ForceFlush(ctx context.Context) error { return nil }

func (e *LogMetricExporter) Shutdown(ctx context.Context) error { return nil }

func encode(set attribute.Set) string {
	return set.Encoded(attribute.DefaultEncoder())
}

var (
	_ sdktrace.SpanExporter = (*LogSpanExporter)(nil)
	_ sdkmetric.Exporter    = (*LogMetricExporter)(nil)
)
