// Package design models what the user places on the product: the design
// content (image or text), its text style and its placement.
package design

import "image/color"

// Kind tags the active variant of an Input.
type Kind int

const (
	KindEmpty Kind = iota
	KindImage
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// Input is the design content. Exactly one variant is active; values are
// replaced wholesale and never mutated after construction.
type Input struct {
	kind Kind

	data []byte
	mime string

	text  string
	style TextStyle
}

// Empty returns the input with no design content.
func Empty() Input {
	return Input{}
}

// Image returns an image input. The byte slice is owned by the Input from
// here on and must not be modified by the caller.
func Image(data []byte, mime string) Input {
	if len(data) == 0 {
		return Empty()
	}
	return Input{kind: KindImage, data: data, mime: mime}
}

// Text returns a text input. Empty content yields Empty.
func Text(content string, style TextStyle) Input {
	if content == "" {
		return Empty()
	}
	return Input{kind: KindText, text: content, style: style}
}

func (in Input) Kind() Kind { return in.kind }

func (in Input) IsEmpty() bool { return in.kind == KindEmpty }

// ImageData returns the encoded image bytes and declared MIME type.
func (in Input) ImageData() ([]byte, string) {
	return in.data, in.mime
}

// TextContent returns the text and its style.
func (in Input) TextContent() (string, TextStyle) {
	return in.text, in.style
}

// TextStyle controls how text content is drawn into the texture.
type TextStyle struct {
	Color      color.NRGBA `json:"color"`
	FontFamily string      `json:"font_family"`
	SizePx     float64     `json:"size_px"`
}

// DefaultSizePx is used when a style carries no positive size.
const DefaultSizePx = 48

// DefaultTextStyle matches the editor defaults: black, Poppins, 24 px.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		Color:      color.NRGBA{A: 0xff},
		FontFamily: "Poppins",
		SizePx:     24,
	}
}

// Normalized fills zero fields with synthesis defaults.
func (s TextStyle) Normalized() TextStyle {
	if s.SizePx <= 0 {
		s.SizePx = DefaultSizePx
	}
	if s.FontFamily == "" {
		s.FontFamily = "sans-serif"
	}
	if s.Color == (color.NRGBA{}) {
		s.Color = color.NRGBA{A: 0xff}
	}
	return s
}
