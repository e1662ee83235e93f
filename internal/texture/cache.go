package texture

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"mockup-renderer/internal/logging"
)

// FontBook resolves font families to parsed fonts. Parsed fonts are cached
// and shared; faces are created per use since a face is not safe for
// concurrent use.
type FontBook struct {
	mu       sync.RWMutex
	items    map[string]*opentype.Font // path → parsed font, nil if unusable
	index    *FontIndex
	fallback *opentype.Font
}

// NewFontBook creates a font book backed by the given index. The built-in
// Go Regular face is used for families the index does not know.
func NewFontBook(index *FontIndex) (*FontBook, error) {
	fallback, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("texture: parse fallback font: %w", err)
	}
	if index == nil {
		index = BuildFontIndex("")
	}
	return &FontBook{
		items:    make(map[string]*opentype.Font),
		index:    index,
		fallback: fallback,
	}, nil
}

// Font returns the parsed font for family, or the fallback.
func (b *FontBook) Font(family string) *opentype.Font {
	path, ok := b.index.ResolvePath(family)
	if !ok {
		return b.fallback
	}

	// Fast path: read lock
	b.mu.RLock()
	if f, exists := b.items[path]; exists {
		b.mu.RUnlock()
		if f == nil {
			return b.fallback
		}
		return f
	}
	b.mu.RUnlock()

	// Slow path: load from disk
	f, err := loadFont(path)
	if err != nil {
		logging.Logger().Warn("font unusable, using fallback", "family", family, "err", err)
	}

	// Write lock with double-check
	b.mu.Lock()
	if cached, exists := b.items[path]; exists {
		f = cached
	} else {
		b.items[path] = f
	}
	b.mu.Unlock()

	if f == nil {
		return b.fallback
	}
	return f
}

// Face returns a new face for family at sizePx pixels (72 DPI, so points
// equal pixels). The caller must Close it.
func (b *FontBook) Face(family string, sizePx float64) (font.Face, error) {
	face, err := opentype.NewFace(b.Font(family), &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("texture: face %s@%.1f: %w", family, sizePx, err)
	}
	return face, nil
}

func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("texture: parse %s: %w", path, err)
	}
	return f, nil
}
