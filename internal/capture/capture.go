// Package capture exports still frames of a rendered preview.
package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"mockup-renderer/internal/logging"
)

// ErrRendererNotReady is returned when a capture is requested before the
// renderer is mounted, or after the handle was invalidated.
var ErrRendererNotReady = errors.New("capture: renderer not ready")

// Source is a live preview that can render on demand.
type Source interface {
	// Ready reports whether a model is mounted and rendering is possible.
	Ready() bool
	// RenderNow renders the current state synchronously and returns the
	// frame.
	RenderNow() (*image.NRGBA, error)
}

// Handle captures frames from one renderer lifecycle. It stops working
// once invalidated; a new lifecycle issues a new handle.
type Handle struct {
	src    Source
	enc    Encoder
	valid  atomic.Bool
	serial uint64
}

var handleSerial atomic.Uint64

// NewHandle issues a handle capturing src with enc.
func NewHandle(src Source, enc Encoder) *Handle {
	h := &Handle{src: src, enc: enc, serial: handleSerial.Add(1)}
	h.valid.Store(true)
	return h
}

// Serial distinguishes handles of different lifecycles.
func (h *Handle) Serial() uint64 { return h.serial }

// Valid reports whether the handle can still capture.
func (h *Handle) Valid() bool { return h != nil && h.valid.Load() }

// Invalidate ends the handle's lifecycle.
func (h *Handle) Invalidate() {
	if h != nil {
		h.valid.Store(false)
	}
}

// Capture forces a render of the current state and encodes it. The
// returned image is a fresh copy owned by the caller.
func (h *Handle) Capture() (EncodedImage, error) {
	if !h.Valid() || h.src == nil || !h.src.Ready() {
		return EncodedImage{}, ErrRendererNotReady
	}
	start := time.Now()
	frame, err := h.src.RenderNow()
	if err != nil {
		return EncodedImage{}, fmt.Errorf("capture: render: %w", err)
	}
	if frame == nil {
		return EncodedImage{}, ErrRendererNotReady
	}
	out, err := h.enc.Encode(frame)
	if err != nil {
		return EncodedImage{}, err
	}
	logging.Logger().Debug("frame captured",
		"format", out.Format, "bytes", len(out.Data), "elapsed", time.Since(start))
	return out, nil
}

// EncodedImage is an exported frame.
type EncodedImage struct {
	Format string
	MIME   string
	Data   []byte
}

// Base64 returns the image bytes in standard base64.
func (e EncodedImage) Base64() string {
	return base64.StdEncoding.EncodeToString(e.Data)
}

// DataURL returns the image as a data: URL.
func (e EncodedImage) DataURL() string {
	return "data:" + e.MIME + ";base64," + e.Base64()
}

// Ext returns the file extension for the format, with the dot.
func (e EncodedImage) Ext() string {
	return "." + e.Format
}

// Filename returns the export name mockup_<product>_<YYYY-MM-DD>.<ext>.
func Filename(product string, t time.Time, format string) string {
	if product == "" {
		product = "mockup"
	}
	return fmt.Sprintf("mockup_%s_%s.%s", product, t.Format("2006-01-02"), format)
}
