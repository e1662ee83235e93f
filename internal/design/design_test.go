package design

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEditorMutualExclusion(t *testing.T) {
	e := NewEditor()
	assert.Equal(t, KindEmpty, e.Kind())

	e.SetImage([]byte{1, 2, 3}, "image/png")
	assert.Equal(t, KindImage, e.Kind())

	e.SetText("HELLO")
	assert.Equal(t, KindText, e.Kind())
	data, _ := e.Input().ImageData()
	assert.Nil(t, data, "text must clear the image")

	e.SetImage([]byte{4}, "image/png")
	assert.Equal(t, KindImage, e.Kind())
	text, _ := e.Input().TextContent()
	assert.Empty(t, text, "image must clear the text")

	e.Clear()
	e.SetText("x")
	e.SetText("")
	assert.Equal(t, KindEmpty, e.Kind())
}

func TestEditorPlacementPerKind(t *testing.T) {
	e := NewEditor()
	e.SetImage([]byte{1}, "image/png")
	e.SetPlacement(Placement{PositionX: 10, PositionY: 20, ScalePercent: 100, RotationDegrees: 45})

	e.SetText("hi")
	assert.Equal(t, DefaultTextPlacement(), e.Placement())
	e.SetPlacement(Placement{PositionX: 500, PositionY: -3, ScalePercent: 5, RotationDegrees: 720})
	assert.Equal(t, Placement{PositionX: 100, PositionY: 0, ScalePercent: 20, RotationDegrees: 180}, e.Placement())

	e.SetImage([]byte{1}, "image/png")
	assert.Equal(t, Placement{PositionX: 10, PositionY: 20, ScalePercent: 100, RotationDegrees: 45}, e.Placement())
}

func TestEditorReset(t *testing.T) {
	e := NewEditor()
	e.SetText("hello")
	e.SetTextStyle(TextStyle{FontFamily: "Lato", SizePx: 60})
	e.SetPlacement(Placement{PositionX: 1, PositionY: 1, ScalePercent: 30})
	e.Reset()

	assert.Equal(t, KindEmpty, e.Kind())
	assert.Equal(t, DefaultTextStyle(), e.TextStyle())
	assert.Equal(t, DefaultImagePlacement(), e.Placement())
}

func TestPlacementClampNaN(t *testing.T) {
	p := Placement{PositionX: math.NaN(), PositionY: 30, ScalePercent: math.NaN(), RotationDegrees: math.NaN()}.Clamp()
	assert.Equal(t, Placement{PositionX: 50, PositionY: 30, ScalePercent: 70}, p)
}

func TestInputConstructors(t *testing.T) {
	assert.True(t, Image(nil, "image/png").IsEmpty())
	assert.True(t, Text("", DefaultTextStyle()).IsEmpty())
	assert.Equal(t, "text", Text("a", TextStyle{}).Kind().String())
}

func TestTextStyleNormalized(t *testing.T) {
	s := TextStyle{}.Normalized()
	assert.Equal(t, float64(DefaultSizePx), s.SizePx)
	assert.Equal(t, uint8(0xff), s.Color.A)
	assert.NotEmpty(t, s.FontFamily)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		{in: "#000", want: color.NRGBA{A: 0xff}},
		{in: "#4A00E0", want: color.NRGBA{R: 0x4a, G: 0x00, B: 0xe0, A: 0xff}},
		{in: "ef444480", want: color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 0x80}},
		{in: "#12", err: true},
		{in: "#zzzzzz", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "#4a00e0", HexColor(color.NRGBA{R: 0x4a, B: 0xe0, A: 0xff}))
	for _, sw := range BrandColors {
		_, err := ParseHexColor(sw.Value)
		assert.NoError(t, err, sw.Name)
	}
}

func TestCheckUploadAcceptsPNG(t *testing.T) {
	data := pngBytes(t, 4, 4)
	got, mime, err := CheckUpload(bytes.NewReader(data), int64(len(data)), DefaultMaxUploadBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, data, got)
}

type countingReader struct{ n int }

func (r *countingReader) Read(p []byte) (int, error) {
	r.n += len(p)
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestCheckUploadOversizedDeclared(t *testing.T) {
	r := &countingReader{}
	_, _, err := CheckUpload(r, 11*1024*1024, DefaultMaxUploadBytes)
	assert.True(t, errors.Is(err, ErrOversizedInput))
	assert.Zero(t, r.n, "declared oversize must not be read")
}

func TestCheckUploadOversizedStream(t *testing.T) {
	data := append(pngBytes(t, 2, 2), make([]byte, 11*1024*1024)...)
	_, _, err := CheckUpload(bytes.NewReader(data), -1, DefaultMaxUploadBytes)
	assert.ErrorIs(t, err, ErrOversizedInput)
}

func TestCheckUploadRejectsNonImage(t *testing.T) {
	_, _, err := CheckUpload(strings.NewReader("%PDF-1.4 not an image at all"), -1, 0)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, _, err = CheckUpload(strings.NewReader("plain text"), -1, 0)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
