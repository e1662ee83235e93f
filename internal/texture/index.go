package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// FontIndex maps normalized font family names to font files.
// TTF files take priority over OTF for the same family.
type FontIndex struct {
	entries map[string]string // normalized family → full path
}

// BuildFontIndex scans dir and its subdirectories for TTF/OTF files. An
// empty or missing dir yields an empty index.
func BuildFontIndex(dir string) *FontIndex {
	idx := &FontIndex{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".ttf" && ext != ".otf" {
			return nil
		}
		key := familyKey(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[key]
		if !exists {
			idx.entries[key] = path
		} else if ext == ".ttf" && strings.ToLower(filepath.Ext(existing)) == ".otf" {
			idx.entries[key] = path
		}
		return nil
	})

	return idx
}

// familyKey lowercases a family or file stem and drops separators and a
// trailing "regular" style, so "Playfair Display" matches
// "PlayfairDisplay-Regular.ttf".
func familyKey(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(name)
	return strings.TrimSuffix(name, "regular")
}

// ResolvePath returns the font file for a family, or ("", false).
func (idx *FontIndex) ResolvePath(family string) (string, bool) {
	path, ok := idx.entries[familyKey(family)]
	return path, ok
}

// Len returns the number of indexed families.
func (idx *FontIndex) Len() int {
	return len(idx.entries)
}
