package markit

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sunshineplan/utils/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultFamily is the family of the fonts built into every FontBook.
const DefaultFamily = "Go"

// DefaultStyle is the style used when a TextMark leaves Style empty.
const DefaultStyle = "Regular"

type fontKey struct {
	family, style string
}

func newFontKey(family, style string) fontKey {
	if strings.TrimSpace(family) == "" {
		family = DefaultFamily
	}
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	return fontKey{strings.ToLower(strings.TrimSpace(family)), strings.ToLower(strings.TrimSpace(style))}
}

type fontEntry struct {
	family, style string
	path          string
	font          *sfnt.Font
}

// FontBook resolves a font family and style to a parsed font.
// It is not safe for concurrent registration.
type FontBook struct {
	fonts map[fontKey]*fontEntry
}

// NewFontBook returns a FontBook holding the built-in Go fonts.
func NewFontBook() *FontBook {
	b := &FontBook{fonts: make(map[fontKey]*fontEntry)}
	for _, i := range []struct {
		style string
		ttf   []byte
	}{
		{"Regular", goregular.TTF},
		{"Bold", gobold.TTF},
		{"Italic", goitalic.TTF},
		{"Bold Italic", gobolditalic.TTF},
	} {
		if err := b.add(DefaultFamily, i.style, "", i.ttf); err != nil {
			panic(err)
		}
	}
	if err := b.add(DefaultFamily+" Mono", DefaultStyle, "", gomono.TTF); err != nil {
		panic(err)
	}
	return b
}

func (b *FontBook) add(family, style, path string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return err
	}
	b.fonts[newFontKey(family, style)] = &fontEntry{family: family, style: style, path: path, font: f}
	return nil
}

// AddFile registers every font in a TrueType/OpenType file or collection
// under the family and style names stored in the file.
func (b *FontBook) AddFile(path string) (n int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	c, err := opentype.ParseCollection(data)
	if err != nil {
		return 0, fmt.Errorf("parse font %s: %w", path, err)
	}
	var buf sfnt.Buffer
	for i := range c.NumFonts() {
		f, err := c.Font(i)
		if err != nil {
			return n, fmt.Errorf("parse font %s #%d: %w", path, i, err)
		}
		family, err := f.Name(&buf, sfnt.NameIDFamily)
		if err != nil {
			return n, fmt.Errorf("read family of %s: %w", path, err)
		}
		style, err := f.Name(&buf, sfnt.NameIDSubfamily)
		if err != nil || style == "" {
			style = DefaultStyle
		}
		b.fonts[newFontKey(family, style)] = &fontEntry{family: family, style: style, path: path, font: f}
		n++
	}
	return
}

// AddDir registers all font files below dir. Files that cannot be parsed
// are skipped.
func (b *FontBook) AddDir(dir string) (int, error) {
	var total int
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf", ".ttc", ".otc":
		default:
			return nil
		}
		n, err := b.AddFile(path)
		if err != nil {
			log.Debug("Skip font file", "path", path, "error", err)
		}
		total += n
		return nil
	})
	return total, err
}

// Families returns the sorted list of registered family names.
func (b *FontBook) Families() []string {
	seen := make(map[string]bool)
	var families []string
	for _, e := range b.fonts {
		if !seen[e.family] {
			seen[e.family] = true
			families = append(families, e.family)
		}
	}
	sort.Strings(families)
	return families
}

// Styles returns the sorted styles registered for family.
func (b *FontBook) Styles(family string) []string {
	want := newFontKey(family, "").family
	var styles []string
	for k, e := range b.fonts {
		if k.family == want {
			styles = append(styles, e.style)
		}
	}
	sort.Strings(styles)
	return styles
}

// Lookup returns the font registered for family and style. There is no
// fallback: an unknown combination returns ErrFontNotFound.
func (b *FontBook) Lookup(family, style string) (*sfnt.Font, error) {
	e, ok := b.fonts[newFontKey(family, style)]
	if !ok {
		return nil, fmt.Errorf("%w: %q %q", ErrFontNotFound, family, style)
	}
	return e.font, nil
}

// Face returns a face of the requested family and style at size points.
// Points are converted to pixels at 96 DPI. An empty family or style
// selects the built-in default.
func (b *FontBook) Face(family, style string, size float64) (font.Face, error) {
	f, err := b.Lookup(family, style)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    PointsToPixels(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// PointsToPixels converts a font size in points to pixels at 96 DPI.
func PointsToPixels(pt float64) float64 {
	return pt / 0.75
}
