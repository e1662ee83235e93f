package design

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Swatch is a named color offered by the editor.
type Swatch struct {
	Name  string
	Value string
}

// BrandColors are the preset text colors.
var BrandColors = []Swatch{
	{Name: "Preto", Value: "#000000"},
	{Name: "Primário", Value: "#4A00E0"},
	{Name: "Branco", Value: "#FFFFFF"},
	{Name: "Accent", Value: "#8E2DE2"},
	{Name: "Vermelho", Value: "#EF4444"},
}

// Fonts are the font families offered by the editor. Families without a
// matching font file fall back to the built-in face.
var Fonts = []string{
	"Poppins",
	"Inter",
	"Montserrat",
	"Lato",
	"Roboto",
	"Oswald",
	"Playfair Display",
}

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("design: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("design: invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// HexColor formats c as #rrggbb, appending alpha only when not opaque.
func HexColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
