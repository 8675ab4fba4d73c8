// Package observability provides hooks for metrics and logging around the
// layout pipeline.
//
// The package uses a simple hooks pattern: hook interfaces per event
// category, no-op defaults, and a registry that main wires up at startup.
// This keeps the core library free of observability-framework dependencies;
// the serve command registers a Prometheus-backed implementation, while the
// CLI runs on the no-ops.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the layout pipeline stages.
type PipelineHooks interface {
	// OnValidateComplete records a validation pass over a raw document.
	OnValidateComplete(ctx context.Context, warnings int, duration time.Duration, err error)

	// OnTransformComplete records a graph build: node/edge counts of the
	// derived graph and how many document edges were dropped.
	OnTransformComplete(ctx context.Context, nodes, edges, dropped int, duration time.Duration, err error)

	// Layout events. Budget is the iteration budget the pass ran with.
	OnLayoutStart(ctx context.Context, nodes, budget int)
	OnLayoutComplete(ctx context.Context, nodes, budget int, duration time.Duration)
}

// StoreHooks receives events from view-state store operations.
type StoreHooks interface {
	OnLoad(ctx context.Context, backend string, found bool)
	OnSave(ctx context.Context, backend string, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnValidateComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnTransformComplete(context.Context, int, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int, int)                   {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, int, time.Duration) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, bool)  {}
func (NoopStoreHooks) OnSave(context.Context, string, error) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	storeHooks    StoreHooks    = NoopStoreHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks. Call once at startup,
// before any pipeline runs.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetStoreHooks registers custom store hooks. Call once at startup.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores the no-op defaults. Primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	storeHooks = NoopStoreHooks{}
}
