package capture

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

type fakeSource struct {
	ready   bool
	renders int
	err     error
}

func (s *fakeSource) Ready() bool { return s.ready }

func (s *fakeSource) RenderNow() (*image.NRGBA, error) {
	s.renders++
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Pix[3] = 255
	return img, nil
}

func TestCaptureNotReady(t *testing.T) {
	src := &fakeSource{}
	h := NewHandle(src, PNG{})
	_, err := h.Capture()
	assert.ErrorIs(t, err, ErrRendererNotReady)
	assert.Zero(t, src.renders)

	var nilHandle *Handle
	_, err = nilHandle.Capture()
	assert.ErrorIs(t, err, ErrRendererNotReady)

	_, err = NewHandle(nil, PNG{}).Capture()
	assert.ErrorIs(t, err, ErrRendererNotReady)
}

func TestCaptureForcesRender(t *testing.T) {
	src := &fakeSource{ready: true}
	h := NewHandle(src, PNG{})

	a, err := h.Capture()
	require.NoError(t, err)
	b, err := h.Capture()
	require.NoError(t, err)
	assert.Equal(t, 2, src.renders)
	assert.Equal(t, a.Data, b.Data)

	a.Data[0] ^= 0xff
	assert.NotEqual(t, a.Data[0], b.Data[0], "captures do not share buffers")

	img, err := png.Decode(bytes.NewReader(b.Data))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.True(t, strings.HasPrefix(b.DataURL(), "data:image/png;base64,"))
}

func TestCaptureInvalidated(t *testing.T) {
	src := &fakeSource{ready: true}
	h := NewHandle(src, PNG{})
	h.Invalidate()
	_, err := h.Capture()
	assert.ErrorIs(t, err, ErrRendererNotReady)
	assert.False(t, h.Valid())
	assert.NotEqual(t, h.Serial(), NewHandle(src, PNG{}).Serial())
}

func TestCaptureRenderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewHandle(&fakeSource{ready: true, err: boom}, PNG{}).Capture()
	assert.ErrorIs(t, err, boom)
}

func TestWebPEncoder(t *testing.T) {
	out, err := EncoderFor("webp").Encode(image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", out.MIME)
	img, err := webp.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	assert.IsType(t, PNG{}, EncoderFor("gif"))
}

func TestFilename(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "mockup_caneca_2024-03-09.png", Filename("caneca", day, "png"))
	assert.Equal(t, "mockup_mockup_2024-03-09.webp", Filename("", day, "webp"))
}
