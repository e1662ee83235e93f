package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"mockup-renderer/internal/logging"
)

// Builtin is the path of the procedural mug.
const Builtin = "builtin:mug"

// Provider loads models by path and caches them. Concurrent loads of the
// same path share one parse. Cached models are never modified; callers
// Clone before changing materials.
type Provider struct {
	mu    sync.RWMutex
	items map[string]*Model
	group singleflight.Group
}

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{items: make(map[string]*Model)}
}

// Load returns the model at path, parsing it on first use.
func (p *Provider) Load(ctx context.Context, path string) (*Model, error) {
	// Fast path: read lock
	p.mu.RLock()
	if m, ok := p.items[path]; ok {
		p.mu.RUnlock()
		return m, nil
	}
	p.mu.RUnlock()

	ch := p.group.DoChan(path, func() (any, error) {
		m, err := loadPath(path)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.items[path] = m
		p.mu.Unlock()
		logging.Logger().Debug("model loaded", "path", path, "meshes", len(m.Meshes), "verts", m.VertexCount())
		return m, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Model), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result is the outcome of an asynchronous load.
type Result struct {
	Model *Model
	Err   error
}

// LoadAsync loads path in the background. The channel receives exactly one
// result and is then closed.
func (p *Provider) LoadAsync(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		m, err := p.Load(ctx, path)
		out <- Result{Model: m, Err: err}
	}()
	return out
}

// Invalidate drops path from the cache so the next Load re-reads it.
func (p *Provider) Invalidate(path string) {
	p.mu.Lock()
	delete(p.items, path)
	p.mu.Unlock()
	p.group.Forget(path)
}

// Cached reports whether path is in the cache.
func (p *Provider) Cached(path string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.items[path]
	return ok
}

func loadPath(path string) (*Model, error) {
	switch {
	case path == Builtin:
		return BuildMug(), nil
	case strings.HasSuffix(strings.ToLower(path), ".obj"):
		return ParseOBJ(path)
	default:
		return nil, fmt.Errorf("model: unsupported model %s", path)
	}
}
