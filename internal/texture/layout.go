package texture

import "strings"

// lineSpacing is the line height as a multiple of the font size.
const lineSpacing = 1.2

// TextLayout is the result of wrapping text onto a square canvas.
type TextLayout struct {
	Lines      []string
	LineHeight float64
	// StartY is the vertical middle of the first line.
	StartY float64
}

// Y returns the vertical middle of line i.
func (l TextLayout) Y(i int) float64 {
	return l.StartY + float64(i)*l.LineHeight
}

// WrapText breaks text into lines no wider than canvas, measuring with
// measure. Words are split on single spaces and each keeps its trailing
// space. A word moves to a new line when the candidate line would exceed
// the canvas width, unless it is the first word.
//
// Vertical centering counts only hard line breaks, so soft-wrapped text
// starts at the middle and grows downward. Hard breaks are drawn as spaces.
func WrapText(text string, canvas int, sizePx float64, measure func(string) float64) TextLayout {
	words := strings.Split(text, " ")
	var (
		lines []string
		line  string
	)
	for n, word := range words {
		candidate := line + word + " "
		if measure(flatten(candidate)) > float64(canvas) && n > 0 {
			lines = append(lines, flatten(line))
			line = word + " "
		} else {
			line = candidate
		}
	}
	lines = append(lines, flatten(line))

	lh := sizePx * lineSpacing
	hard := strings.Count(text, "\n") + 1
	return TextLayout{
		Lines:      lines,
		LineHeight: lh,
		StartY:     float64(canvas)/2 - float64(hard-1)*lh/2,
	}
}

func flatten(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
