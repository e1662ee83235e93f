package design

// Editor holds the design state of one preview: the active content and a
// separate placement for each content kind. Setting one kind of content
// clears the other, so at most one is active at a time.
//
// An Editor is plain data and is not safe for concurrent use; the owning
// viewer serializes access.
type Editor struct {
	image     []byte
	imageMIME string
	text      string
	style     TextStyle

	imagePlacement Placement
	textPlacement  Placement
}

// NewEditor returns an editor with default placements and text style.
func NewEditor() *Editor {
	e := &Editor{}
	e.Reset()
	return e
}

// SetImage makes an uploaded image the active design and clears any text.
func (e *Editor) SetImage(data []byte, mime string) {
	e.image = data
	e.imageMIME = mime
	if len(data) > 0 {
		e.text = ""
	}
}

// SetText makes text the active design and clears any image. Empty text
// leaves the editor empty.
func (e *Editor) SetText(content string) {
	e.text = content
	if content != "" {
		e.image = nil
		e.imageMIME = ""
	}
}

// SetTextStyle replaces the text style. It does not change the active kind.
func (e *Editor) SetTextStyle(s TextStyle) {
	e.style = s
}

// TextStyle returns the current text style.
func (e *Editor) TextStyle() TextStyle {
	return e.style
}

// Clear removes all content. Placements are kept.
func (e *Editor) Clear() {
	e.image = nil
	e.imageMIME = ""
	e.text = ""
}

// Input returns the active content as an immutable Input.
func (e *Editor) Input() Input {
	switch {
	case len(e.image) > 0:
		return Image(e.image, e.imageMIME)
	case e.text != "":
		return Text(e.text, e.style)
	default:
		return Empty()
	}
}

// Kind returns the active content kind.
func (e *Editor) Kind() Kind {
	return e.Input().Kind()
}

// SetPlacement stores p, clamped, for the active kind. With no content the
// image placement is updated.
func (e *Editor) SetPlacement(p Placement) {
	if e.Kind() == KindText {
		e.textPlacement = p.Clamp()
		return
	}
	e.imagePlacement = p.Clamp()
}

// SetPlacementFor stores p, clamped, for the given kind.
func (e *Editor) SetPlacementFor(k Kind, p Placement) {
	if k == KindText {
		e.textPlacement = p.Clamp()
		return
	}
	e.imagePlacement = p.Clamp()
}

// Placement returns the placement of the active kind.
func (e *Editor) Placement() Placement {
	if e.Kind() == KindText {
		return e.textPlacement
	}
	return e.imagePlacement
}

// Reset restores default placements and text style and clears the text.
// An uploaded image is kept.
func (e *Editor) Reset() {
	e.imagePlacement = DefaultImagePlacement()
	e.textPlacement = DefaultTextPlacement()
	e.style = DefaultTextStyle()
	e.text = ""
}
