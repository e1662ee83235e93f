package texture

import (
	"context"
	"errors"
	"sync"

	"mockup-renderer/internal/design"
	"mockup-renderer/internal/logging"
)

// ErrSuperseded is returned by Wait when a newer request replaced the one
// being waited on before it committed.
var ErrSuperseded = errors.New("texture: request superseded")

// ErrClosed is returned by Wait after the manager is closed.
var ErrClosed = errors.New("texture: manager closed")

// Manager owns the live texture of one preview. Every Request gets a new
// ID and only the completion carrying the latest ID is committed; older
// completions are released and dropped. Image decoding runs in its own
// goroutine; text and empty requests complete before Request returns.
type Manager struct {
	producer Producer

	// deliver serializes commits with their callbacks so callbacks
	// observe commits in ID order.
	deliver sync.Mutex

	mu       sync.Mutex
	latest   RequestID
	current  *Texture
	lastErr  error // synthesis error of the committed request
	closed   bool
	cancel   context.CancelFunc // cancels the pending image decode
	pending  map[RequestID]*result
	onCommit func(*Texture, error)
}

type result struct {
	done chan struct{}
	err  error
}

// NewManager creates a manager synthesizing with p.
func NewManager(p Producer) *Manager {
	return &Manager{
		producer: p,
		pending:  make(map[RequestID]*result),
	}
}

// OnCommit registers fn to receive every committed result. A nil texture
// with a nil error means the design is empty; a nil texture with an error
// means synthesis failed. fn must not call Request.
func (m *Manager) OnCommit(fn func(*Texture, error)) {
	m.mu.Lock()
	m.onCommit = fn
	m.mu.Unlock()
}

// Request starts synthesis of in and returns its ID.
func (m *Manager) Request(in design.Input) RequestID {
	m.mu.Lock()
	m.latest++
	id := m.latest
	res := &result{done: make(chan struct{})}
	if m.closed {
		res.err = ErrClosed
		close(res.done)
		m.pending[id] = res
		m.mu.Unlock()
		return id
	}
	m.pending[id] = res
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if in.Kind() != design.KindImage {
		m.mu.Unlock()
		tex, err := m.producer.Synthesize(context.Background(), in)
		m.complete(id, tex, err)
		return id
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.mu.Unlock()

	go func() {
		defer cancel()
		tex, err := m.producer.Synthesize(ctx, in)
		m.complete(id, tex, err)
	}()
	return id
}

func (m *Manager) complete(id RequestID, tex *Texture, err error) {
	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.Lock()
	res := m.pending[id]
	delete(m.pending, id)
	if m.closed || id != m.latest {
		m.mu.Unlock()
		tex.Release()
		if res != nil {
			res.err = ErrSuperseded
			close(res.done)
		}
		logging.Logger().Debug("stale texture dropped", "request", id)
		return
	}
	if tex != nil {
		tex.ID = id
		tex.onRelease = func(t *Texture) {
			logging.Logger().Debug("texture released", "request", t.ID)
		}
	}
	prev := m.current
	m.current = tex
	m.lastErr = err
	fn := m.onCommit
	m.mu.Unlock()

	if err != nil {
		logging.Logger().Warn("texture synthesis failed", "request", id, "err", err)
	}
	if fn != nil {
		fn(tex, err)
	}
	if prev != tex {
		prev.Release()
	}
	if res != nil {
		res.err = err
		close(res.done)
	}
}

// Current returns the committed texture, or nil.
func (m *Manager) Current() *Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Latest returns the ID of the most recent request.
func (m *Manager) Latest() RequestID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

// Wait blocks until request id has completed. It returns the synthesis
// error of a committed request, ErrSuperseded if a newer request won, or
// the context error.
func (m *Manager) Wait(ctx context.Context, id RequestID) error {
	m.mu.Lock()
	res, ok := m.pending[id]
	latest, lastErr := m.latest, m.lastErr
	m.mu.Unlock()
	if !ok {
		// Already completed; only the latest request can have committed.
		if latest != id {
			return ErrSuperseded
		}
		return lastErr
	}

	select {
	case <-res.done:
		return res.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the live texture. Completions arriving afterwards are
// released immediately.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	cur := m.current
	m.current = nil
	m.mu.Unlock()

	cur.Release()
}
