package texture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockup-renderer/internal/design"
)

func newTestSynth(t *testing.T) *Synthesizer {
	t.Helper()
	fonts, err := NewFontBook(nil)
	require.NoError(t, err)
	return NewSynthesizer(DefaultSize, fonts)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestSynthesizeEmpty(t *testing.T) {
	tex, err := newTestSynth(t).Synthesize(context.Background(), design.Empty())
	assert.NoError(t, err)
	assert.Nil(t, tex)
}

func TestSynthesizeImageFitCenter(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	data := encodePNG(t, solid(400, 200, red))

	tex, err := newTestSynth(t).Synthesize(context.Background(), design.Image(data, "image/png"))
	require.NoError(t, err)
	require.NotNil(t, tex)
	assert.Equal(t, 512, tex.Size())

	img := tex.Image
	// Scale 1.28: drawn 512×256 at (0,128)
	assert.Equal(t, uint8(0), img.NRGBAAt(256, 127).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(256, 384).A)
	assert.Equal(t, red, img.NRGBAAt(256, 128))
	assert.Equal(t, red, img.NRGBAAt(0, 200))
	assert.Equal(t, red, img.NRGBAAt(511, 383))
}

// encodeGIF writes m with an exact two-color palette so no dithering
// shifts the pixels.
func encodeGIF(w io.Writer, m image.Image) error {
	p := image.NewPaletted(m.Bounds(), color.Palette{color.NRGBA{A: 255}, color.NRGBA{R: 255, A: 255}})
	for y := m.Bounds().Min.Y; y < m.Bounds().Max.Y; y++ {
		for x := m.Bounds().Min.X; x < m.Bounds().Max.X; x++ {
			p.Set(x, y, m.At(x, y))
		}
	}
	return gif.Encode(w, p, nil)
}

func TestDecodeFormats(t *testing.T) {
	src := solid(6, 4, color.NRGBA{R: 255, A: 255})
	tests := []struct {
		name   string
		encode func(io.Writer, image.Image) error
		mime   string
	}{
		{"png", png.Encode, "image/png"},
		{"jpeg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }, "image/jpeg"},
		{"gif", encodeGIF, "image/gif"},
		{"tga", tga.Encode, "image/x-tga"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf, src))

			mime, err := design.SniffImage(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, tt.mime, mime)

			for _, m := range []string{mime, ""} {
				img, err := Decode(buf.Bytes(), m)
				require.NoError(t, err, "mime %q", m)
				assert.Equal(t, image.Rect(0, 0, 6, 4), img.Bounds())
				c := img.NRGBAAt(3, 2)
				assert.InDelta(t, 255, int(c.R), 8)
				assert.InDelta(t, 0, int(c.G), 8)
				assert.Equal(t, uint8(255), c.A)
			}
		})
	}
}

func TestSynthesizeDecodeFailure(t *testing.T) {
	tex, err := newTestSynth(t).Synthesize(context.Background(), design.Image([]byte("not an image"), "image/png"))
	assert.Nil(t, tex)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestSynthesizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestSynth(t).Synthesize(ctx, design.Text("x", design.DefaultTextStyle()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSynthesizeText(t *testing.T) {
	style := design.TextStyle{Color: color.NRGBA{B: 255, A: 255}, FontFamily: "Poppins", SizePx: 48}
	tex, err := newTestSynth(t).Synthesize(context.Background(), design.Text("HELLO", style))
	require.NoError(t, err)
	require.NotNil(t, tex)

	var minY, maxY, painted = 512, 0, 0
	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			if tex.Image.NRGBAAt(x, y).A > 0 {
				painted++
				minY = min(minY, y)
				maxY = max(maxY, y)
			}
		}
	}
	require.Positive(t, painted)
	assert.Equal(t, uint8(0), tex.Image.NRGBAAt(0, 0).A)
	// One line centered on the midpoint
	assert.Less(t, minY, 256)
	assert.Greater(t, maxY, 256)
}

func TestWrapTextHelloWorld(t *testing.T) {
	// 45 px per rune: "HELLO WORLD " is 540 px wide, over the 512 canvas
	measure := func(s string) float64 { return float64(len([]rune(s))) * 45 }
	l := WrapText("HELLO WORLD", 512, 48, measure)

	assert.Equal(t, []string{"HELLO ", "WORLD "}, l.Lines)
	assert.InDelta(t, 57.6, l.LineHeight, 1e-9)
	assert.InDelta(t, 256, l.StartY, 1e-9)
	assert.InDelta(t, 313.6, l.Y(1), 1e-9)
}

func TestWrapTextFirstWordNeverWraps(t *testing.T) {
	measure := func(s string) float64 { return float64(len(s)) * 100 }
	l := WrapText("SUPERCALIFRAGILISTIC", 512, 24, measure)
	assert.Equal(t, []string{"SUPERCALIFRAGILISTIC "}, l.Lines)
}

func TestWrapTextHardBreaks(t *testing.T) {
	measure := func(s string) float64 { return float64(len(s)) }
	l := WrapText("one\ntwo\nthree", 512, 10, measure)
	// Hard breaks shift the start up but are drawn as spaces
	assert.Equal(t, []string{"one two three "}, l.Lines)
	assert.InDelta(t, 256-12, l.StartY, 1e-9)
}

func TestFontIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"PlayfairDisplay-Regular.otf", "PlayfairDisplay-Regular.ttf", "Lato.otf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	idx := BuildFontIndex(dir)
	assert.Equal(t, 2, idx.Len())

	p, ok := idx.ResolvePath("Playfair Display")
	require.True(t, ok)
	assert.Equal(t, ".ttf", filepath.Ext(p))

	_, ok = idx.ResolvePath("lato")
	assert.True(t, ok)
	_, ok = idx.ResolvePath("Comic Sans")
	assert.False(t, ok)
}

func TestFontBookFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken.ttf"), []byte("garbage"), 0o644))
	book, err := NewFontBook(BuildFontIndex(dir))
	require.NoError(t, err)

	assert.Same(t, book.fallback, book.Font("Broken"))
	assert.Same(t, book.fallback, book.Font("Unknown"))

	face, err := book.Face("Broken", 32)
	require.NoError(t, err)
	defer face.Close()
	assert.Positive(t, face.Metrics().Height)
}

func TestTextureReleaseOnce(t *testing.T) {
	var calls int
	tex := New(solid(2, 2, color.NRGBA{A: 255}))
	tex.onRelease = func(*Texture) { calls++ }
	assert.True(t, tex.Ready())

	tex.Release()
	tex.Release()
	assert.Equal(t, 1, calls)
	assert.False(t, tex.Ready())
	assert.True(t, tex.Released())

	var nilTex *Texture
	nilTex.Release()
	assert.False(t, nilTex.Ready())
}

// gatedProducer blocks image requests until their gate is opened.
type gatedProducer struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	made  []*Texture
}

func (p *gatedProducer) gate(name string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gates == nil {
		p.gates = map[string]chan struct{}{}
	}
	if g, ok := p.gates[name]; ok {
		return g
	}
	g := make(chan struct{})
	p.gates[name] = g
	return g
}

func (p *gatedProducer) Synthesize(ctx context.Context, in design.Input) (*Texture, error) {
	if in.Kind() == design.KindEmpty {
		return nil, nil
	}
	if in.Kind() == design.KindImage {
		data, _ := in.ImageData()
		<-p.gate(string(data))
	}
	tex := New(solid(4, 4, color.NRGBA{A: 255}))
	p.mu.Lock()
	p.made = append(p.made, tex)
	p.mu.Unlock()
	return tex, nil
}

func TestManagerSupersession(t *testing.T) {
	p := &gatedProducer{}
	m := NewManager(p)
	defer m.Close()

	var commits atomic.Int32
	var committed atomic.Pointer[Texture]
	m.OnCommit(func(tex *Texture, err error) {
		commits.Add(1)
		committed.Store(tex)
	})

	a := m.Request(design.Image([]byte("A"), "image/png"))
	b := m.Request(design.Image([]byte("B"), "image/png"))
	require.Greater(t, b, a)

	// B finishes first, then the slow A
	close(p.gate("B"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx, b))
	close(p.gate("A"))
	assert.ErrorIs(t, m.Wait(ctx, a), ErrSuperseded)

	assert.Equal(t, int32(1), commits.Load())
	cur := m.Current()
	require.NotNil(t, cur)
	assert.Equal(t, b, cur.ID)
	assert.Same(t, cur, committed.Load())

	p.mu.Lock()
	made := append([]*Texture(nil), p.made...)
	p.mu.Unlock()
	require.Len(t, made, 2)
	for _, tex := range made {
		if tex != cur {
			assert.True(t, tex.Released(), "stale texture must be released")
		}
	}
}

func TestManagerReleasesPrevious(t *testing.T) {
	m := NewManager(&gatedProducer{})

	m.Request(design.Text("one", design.DefaultTextStyle()))
	first := m.Current()
	require.NotNil(t, first)

	m.Request(design.Text("two", design.DefaultTextStyle()))
	second := m.Current()
	assert.NotSame(t, first, second)
	assert.True(t, first.Released())
	assert.True(t, second.Ready())

	m.Request(design.Empty())
	assert.Nil(t, m.Current())
	assert.True(t, second.Released())

	m.Request(design.Text("three", design.DefaultTextStyle()))
	third := m.Current()
	m.Close()
	assert.True(t, third.Released())
	assert.Nil(t, m.Current())
	assert.ErrorIs(t, m.Wait(context.Background(), m.Request(design.Text("late", design.DefaultTextStyle()))), ErrClosed)
}

func TestManagerDecodeErrorCommitsNil(t *testing.T) {
	m := NewManager(newTestSynth(t))
	defer m.Close()

	var gotErr error
	m.OnCommit(func(_ *Texture, err error) { gotErr = err })

	m.Request(design.Text("hi", design.DefaultTextStyle()))
	require.NotNil(t, m.Current())

	id := m.Request(design.Image([]byte("junk"), "image/png"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx, id), ErrDecode)
	assert.ErrorIs(t, gotErr, ErrDecode)
	assert.Nil(t, m.Current())
}
