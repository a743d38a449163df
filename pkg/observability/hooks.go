// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional. The grouping stages and the cache layer call
// hooks; main decides what receives the events. The default hooks do
// nothing, and [OTelHooks] reports to OpenTelemetry.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks, _ := observability.NewOTelHooks(tp, mp)
//	    observability.SetPipelineHooks(hooks)
//	    observability.SetCacheHooks(hooks)
//	    // ... run application
//	}
//
// Stages emit events around their work:
//
//	ctx = observability.Pipeline().OnStageStart(ctx, "partition", nodeCount)
//	// ... partition ...
//	observability.Pipeline().OnStageComplete(ctx, "partition", subgraphs, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the grouping stages.
type PipelineHooks interface {
	// OnStageStart is called before a stage runs with the number of items it
	// will process. The returned context is passed to OnStageComplete.
	OnStageStart(ctx context.Context, stage string, items int) context.Context
	OnStageComplete(ctx context.Context, stage string, produced int, duration time.Duration, err error)

	// OnMerge is called once per subgraph moved by a merge rule.
	OnMerge(ctx context.Context, rule string, nodes int)

	// OnWarning is called for every soft warning a stage reports.
	OnWarning(ctx context.Context, stage, kind string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from checkpoint cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, stage string)
	OnCacheMiss(ctx context.Context, stage string)
	OnCacheSet(ctx context.Context, stage string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(ctx context.Context, _ string, _ int) context.Context {
	return ctx
}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnMerge(context.Context, string, int)                               {}
func (NoopPipelineHooks) OnWarning(context.Context, string, string)                          {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any stage runs.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
