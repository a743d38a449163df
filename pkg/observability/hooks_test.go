package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	if got := p.OnStageStart(ctx, "partition", 10); got != ctx {
		t.Error("NoopPipelineHooks.OnStageStart should return ctx unchanged")
	}
	p.OnStageComplete(ctx, "partition", 3, time.Second, nil)
	p.OnMerge(ctx, "rule", 4)
	p.OnWarning(ctx, "partition", "unrooted_node")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "partition")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "merge", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/layout")
	h.OnResponse(ctx, "POST", "/v1/layout", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	custom := &recordingHooks{}
	SetPipelineHooks(custom)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset should restore NoopPipelineHooks")
	}
}

type recordingHooks struct {
	NoopPipelineHooks
	stages []string
}

func (r *recordingHooks) OnStageStart(ctx context.Context, stage string, _ int) context.Context {
	r.stages = append(r.stages, stage)
	return ctx
}

func newTestOTel(t *testing.T) (*OTelHooks, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	h, err := NewOTelHooks(tp, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewOTelHooks: %v", err)
	}
	return h, rec
}

func TestOTelHooksStageSpan(t *testing.T) {
	h, rec := newTestOTel(t)
	ctx := context.Background()

	sctx := h.OnStageStart(ctx, "merge", 12)
	h.OnMerge(sctx, "singles into shared", 3)
	h.OnWarning(sctx, "merge", "hierarchy_sources")
	h.OnStageComplete(sctx, "merge", 2, 5*time.Millisecond, nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "aagen.merge" {
		t.Errorf("span name = %q, want aagen.merge", span.Name())
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", span.Status().Code)
	}
	if got := len(span.Events()); got != 2 {
		t.Errorf("events = %d, want 2", got)
	}
	attrs := map[string]int64{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInt64()
	}
	if attrs["aagen.stage.input_items"] != 12 || attrs["aagen.stage.output_items"] != 2 {
		t.Errorf("attributes = %v", attrs)
	}
}

func TestOTelHooksStageError(t *testing.T) {
	h, rec := newTestOTel(t)

	sctx := h.OnStageStart(context.Background(), "layout", 1)
	h.OnStageComplete(sctx, "layout", 0, time.Millisecond, errors.New("no template"))

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status().Code)
	}
	if spans[0].Status().Description != "no template" {
		t.Errorf("description = %q", spans[0].Status().Description)
	}
}

func TestOTelHooksCacheAndHTTPDoNotPanic(t *testing.T) {
	h, _ := newTestOTel(t)
	ctx := context.Background()
	h.OnCacheHit(ctx, "partition")
	h.OnCacheMiss(ctx, "partition")
	h.OnCacheSet(ctx, "partition", 42)
	h.OnRequest(ctx, "POST", "/v1/layout")
	h.OnResponse(ctx, "POST", "/v1/layout", 200, time.Millisecond)
}
