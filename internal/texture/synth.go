package texture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"mockup-renderer/internal/design"
	"mockup-renderer/internal/logging"
)

// DefaultSize is the edge length of synthesized textures.
const DefaultSize = 512

// Producer synthesizes a texture from design content.
type Producer interface {
	Synthesize(ctx context.Context, in design.Input) (*Texture, error)
}

// Synthesizer draws design content into fixed-size square textures.
type Synthesizer struct {
	size  int
	fonts *FontBook
}

// NewSynthesizer creates a synthesizer producing size×size textures.
func NewSynthesizer(size int, fonts *FontBook) *Synthesizer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Synthesizer{size: size, fonts: fonts}
}

// Size returns the texture edge length.
func (s *Synthesizer) Size() int { return s.size }

// Synthesize converts in into a texture. Empty input yields (nil, nil).
// Undecodable images yield an error wrapping ErrDecode and no texture.
func (s *Synthesizer) Synthesize(ctx context.Context, in design.Input) (*Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch in.Kind() {
	case design.KindImage:
		data, mime := in.ImageData()
		src, err := Decode(data, mime)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return New(s.FitImage(src)), nil

	case design.KindText:
		content, style := in.TextContent()
		img, err := s.DrawText(content, style)
		if err != nil {
			return nil, err
		}
		return New(img), nil

	default:
		return nil, nil
	}
}

// FitImage scales src uniformly to fit the canvas and centers it. The
// remaining area stays transparent.
func (s *Synthesizer) FitImage(src image.Image) *image.NRGBA {
	b := src.Bounds()
	scale := math.Min(float64(s.size)/float64(b.Dx()), float64(s.size)/float64(b.Dy()))
	dw := max(1, int(math.Round(float64(b.Dx())*scale)))
	dh := max(1, int(math.Round(float64(b.Dy())*scale)))

	resized := imaging.Resize(src, dw, dh, imaging.Lanczos)
	canvas := imaging.New(s.size, s.size, color.NRGBA{})
	return imaging.Paste(canvas, resized, image.Pt((s.size-dw)/2, (s.size-dh)/2))
}

// DrawText renders content onto a transparent canvas, wrapped and
// centered, in the given style.
func (s *Synthesizer) DrawText(content string, style design.TextStyle) (*image.NRGBA, error) {
	if s.fonts == nil {
		return nil, errors.New("texture: no font book")
	}
	style = style.Normalized()
	face, err := s.fonts.Face(style.FontFamily, style.SizePx)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	measure := func(str string) float64 {
		return fixedToFloat(font.MeasureString(face, str))
	}
	layout := WrapText(content, s.size, style.SizePx, measure)

	canvas := imaging.New(s.size, s.size, color.NRGBA{})
	m := face.Metrics()
	// Baseline offset that puts the middle of the em box on the line's y
	middle := fixedToFloat(m.Ascent-m.Descent) / 2

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(style.Color),
		Face: face,
	}
	for i, line := range layout.Lines {
		x := float64(s.size)/2 - measure(line)/2
		y := layout.Y(i) + middle
		d.Dot = fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)}
		d.DrawString(line)
	}

	logging.Logger().Debug("text synthesized",
		"lines", len(layout.Lines), "font", style.FontFamily, "size", style.SizePx)
	return canvas, nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
