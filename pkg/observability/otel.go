package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/mehdihasheminiaU3d/AAGen-sub000"

// OTelHooks reports stage spans and counters to OpenTelemetry. It implements
// [PipelineHooks], [CacheHooks] and [HTTPHooks].
type OTelHooks struct {
	tracer trace.Tracer

	stageDuration metric.Float64Histogram
	stageItems    metric.Int64Counter
	merges        metric.Int64Counter
	mergedNodes   metric.Int64Counter
	warnings      metric.Int64Counter
	cacheLookups  metric.Int64Counter
	cacheBytes    metric.Int64Counter
	httpDuration  metric.Float64Histogram
}

// NewOTelHooks creates hooks bound to the given providers.
func NewOTelHooks(tp trace.TracerProvider, mp metric.MeterProvider) (*OTelHooks, error) {
	meter := mp.Meter(instrumentationName)
	h := &OTelHooks{tracer: tp.Tracer(instrumentationName)}

	var err error
	if h.stageDuration, err = meter.Float64Histogram("aagen.stage.duration",
		metric.WithDescription("Stage duration in milliseconds"), metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("create stage duration histogram: %w", err)
	}
	if h.stageItems, err = meter.Int64Counter("aagen.stage.items",
		metric.WithDescription("Items produced per stage"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create stage items counter: %w", err)
	}
	if h.merges, err = meter.Int64Counter("aagen.merge.moves",
		metric.WithDescription("Subgraphs moved by merge rules"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create merge counter: %w", err)
	}
	if h.mergedNodes, err = meter.Int64Counter("aagen.merge.nodes",
		metric.WithDescription("Nodes moved by merge rules"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create merged nodes counter: %w", err)
	}
	if h.warnings, err = meter.Int64Counter("aagen.warnings",
		metric.WithDescription("Soft warnings reported by stages"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create warning counter: %w", err)
	}
	if h.cacheLookups, err = meter.Int64Counter("aagen.cache.lookups",
		metric.WithDescription("Checkpoint cache lookups"), metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create cache lookup counter: %w", err)
	}
	if h.cacheBytes, err = meter.Int64Counter("aagen.cache.bytes_written",
		metric.WithDescription("Checkpoint bytes written to the cache"), metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("create cache bytes counter: %w", err)
	}
	if h.httpDuration, err = meter.Float64Histogram("aagen.http.duration",
		metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("create http duration histogram: %w", err)
	}
	return h, nil
}

// OnStageStart opens a span named "aagen.<stage>".
func (h *OTelHooks) OnStageStart(ctx context.Context, stage string, items int) context.Context {
	ctx, _ = h.tracer.Start(ctx, "aagen."+stage, trace.WithAttributes(
		attribute.String("aagen.stage", stage),
		attribute.Int("aagen.stage.input_items", items),
	))
	return ctx
}

// OnStageComplete ends the stage span and records its metrics.
func (h *OTelHooks) OnStageComplete(ctx context.Context, stage string, produced int, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("aagen.stage.output_items", produced))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	attrs := metric.WithAttributes(attribute.String("aagen.stage", stage), attribute.Bool("error", err != nil))
	h.stageDuration.Record(ctx, float64(duration)/float64(time.Millisecond), attrs)
	h.stageItems.Add(ctx, int64(produced), attrs)
}

// OnMerge counts one move and adds a span event.
func (h *OTelHooks) OnMerge(ctx context.Context, rule string, nodes int) {
	trace.SpanFromContext(ctx).AddEvent("merge", trace.WithAttributes(
		attribute.String("aagen.rule", rule),
		attribute.Int("aagen.nodes", nodes),
	))
	attrs := metric.WithAttributes(attribute.String("aagen.rule", rule))
	h.merges.Add(ctx, 1, attrs)
	h.mergedNodes.Add(ctx, int64(nodes), attrs)
}

// OnWarning counts one soft warning.
func (h *OTelHooks) OnWarning(ctx context.Context, stage, kind string) {
	trace.SpanFromContext(ctx).AddEvent("warning", trace.WithAttributes(attribute.String("aagen.warning", kind)))
	h.warnings.Add(ctx, 1, metric.WithAttributes(
		attribute.String("aagen.stage", stage),
		attribute.String("aagen.warning", kind),
	))
}

func (h *OTelHooks) OnCacheHit(ctx context.Context, stage string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("aagen.stage", stage), attribute.Bool("hit", true)))
}

func (h *OTelHooks) OnCacheMiss(ctx context.Context, stage string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("aagen.stage", stage), attribute.Bool("hit", false)))
}

func (h *OTelHooks) OnCacheSet(ctx context.Context, stage string, size int) {
	h.cacheBytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("aagen.stage", stage)))
}

func (h *OTelHooks) OnRequest(ctx context.Context, method, route string) {}

func (h *OTelHooks) OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	h.httpDuration.Record(ctx, float64(duration)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", statusCode),
	))
}

var (
	_ PipelineHooks = (*OTelHooks)(nil)
	_ CacheHooks    = (*OTelHooks)(nil)
	_ HTTPHooks     = (*OTelHooks)(nil)
)
