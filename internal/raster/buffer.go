package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
		ZBuf:   make([]float64, w*h),
	}
	fb.Clear(color.NRGBA{})
	return fb
}

// Clear fills the color buffer with bg and resets depth, so one buffer can
// serve many frames.
func (fb *FrameBuffer) Clear(bg color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = bg.R
		fb.Color[i+1] = bg.G
		fb.Color[i+2] = bg.B
		fb.Color[i+3] = bg.A
	}
	for i := range fb.ZBuf {
		fb.ZBuf[i] = math.Inf(-1)
	}
}

// Image copies the color buffer into a new NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
