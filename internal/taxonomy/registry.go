package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Registry publishes the current Graph. Readers call Current without
// locking and always observe a complete snapshot; writers replace the whole
// graph at once.
type Registry struct {
	current atomic.Pointer[Graph]
	source  Source

	reloadMu sync.Mutex
	hooksMu  sync.RWMutex
	hooks    []func(old, next *Graph)
}

// NewRegistry performs the initial load from src. A structural problem in
// the artifact is returned as an error and must abort startup.
func NewRegistry(ctx context.Context, src Source) (*Registry, error) {
	if src == nil {
		return nil, errors.New("taxonomy source is required")
	}
	g, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial taxonomy load from %s: %w", src, err)
	}
	r := &Registry{source: src}
	r.current.Store(g)
	log.WithFields(log.Fields{
		"source":     src.String(),
		"version":    g.Version(),
		"categories": g.CategoryCount(),
		"edges":      g.EdgeCount(),
	}).Info("taxonomy loaded")
	return r, nil
}

// NewStaticRegistry wraps an already built graph. It cannot Reload.
func NewStaticRegistry(g *Graph) *Registry {
	r := &Registry{}
	r.current.Store(g)
	return r
}

// Current returns the graph snapshot in effect.
func (r *Registry) Current() *Graph {
	return r.current.Load()
}

// OnSwap registers fn to run after every successful swap.
func (r *Registry) OnSwap(fn func(old, next *Graph)) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// Swap installs next and returns the graph it replaced.
func (r *Registry) Swap(next *Graph) *Graph {
	if next == nil {
		return r.current.Load()
	}
	old := r.current.Swap(next)

	r.hooksMu.RLock()
	hooks := r.hooks
	r.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(old, next)
	}
	return old
}

// Reload rebuilds the graph from the registry's source and swaps it in.
// On failure the current graph keeps serving.
func (r *Registry) Reload(ctx context.Context) (*Graph, error) {
	if r.source == nil {
		return nil, errors.New("taxonomy registry has no source to reload from")
	}
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	next, err := r.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload taxonomy from %s: %w", r.source, err)
	}
	old := r.Swap(next)
	log.WithFields(log.Fields{
		"source":      r.source.String(),
		"old_version": old.Version(),
		"version":     next.Version(),
		"categories":  next.CategoryCount(),
		"edges":       next.EdgeCount(),
	}).Info("taxonomy swapped")
	return next, nil
}

// Source describes where reloads come from, or "" for static registries.
func (r *Registry) Source() string {
	if r.source == nil {
		return ""
	}
	return r.source.String()
}
