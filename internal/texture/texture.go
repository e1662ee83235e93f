// Package texture turns design content into square RGBA textures and
// tracks the one texture that is live for a preview.
package texture

import (
	"image"
	"sync"
	"sync/atomic"
)

// RequestID identifies a synthesis request. IDs increase monotonically per
// Manager, so a larger ID is always the newer request.
type RequestID uint64

// Texture is a synthesized, fixed-size square image. Its pixels are never
// modified after synthesis.
type Texture struct {
	ID    RequestID
	Image *image.NRGBA

	once      sync.Once
	released  atomic.Bool
	onRelease func(*Texture)
}

// New wraps img as a ready texture.
func New(img *image.NRGBA) *Texture {
	return &Texture{Image: img}
}

// Size returns the edge length in pixels.
func (t *Texture) Size() int {
	if t == nil || t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dx()
}

// Ready reports whether the texture can be sampled.
func (t *Texture) Ready() bool {
	return t != nil && t.Image != nil && !t.released.Load()
}

// Released reports whether Release has been called.
func (t *Texture) Released() bool {
	return t != nil && t.released.Load()
}

// Release marks the texture as disposed and runs the release hook. Only the
// first call has any effect.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		t.released.Store(true)
		if t.onRelease != nil {
			t.onRelease(t)
		}
	})
}
