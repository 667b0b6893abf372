package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sunshineplan/markit"
	"github.com/sunshineplan/utils/log"
)

var supported = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|tiff?|bmp|webp)$`)

var errSkip = errors.New("skip")

func loadImages(root string) (imgs []string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error("Failed to walk directory", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() && supported.MatchString(d.Name()) {
			imgs = append(imgs, path)
		}
		return nil
	})
	return
}

func parseColor(s string) (color.NRGBA, error) {
	str := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(str) {
	case 3:
		str = fmt.Sprintf("%c%c%c%c%c%c", str[0], str[0], str[1], str[1], str[2], str[2])
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color format: %q", s)
	}
	c := color.NRGBA{A: 0xff}
	if _, err := fmt.Sscanf(str[:6], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(str) == 8 {
		if _, err := fmt.Sscanf(str[6:], "%02x", &c.A); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
	}
	return c, nil
}

type task struct {
	cfg    markit.Config
	spec   markit.Spec
	grid   markit.Grid
	shift  image.Point
	snap   bool
	at     *image.Point
	format *markit.FormatOption
}

func newTask() (*task, error) {
	fonts := markit.NewFontBook()
	if *fontDir != "" {
		n, err := fonts.AddDir(*fontDir)
		if err != nil {
			return nil, err
		}
		log.Debug("Fonts loaded", "dir", *fontDir, "count", n)
	}

	var source markit.Source
	switch {
	case *mark != "":
		source = markit.ImageMark{Path: *mark}
	case *text != "":
		fg, err := parseColor(*textColor)
		if err != nil {
			return nil, err
		}
		t := markit.TextMark{
			Content:      *text,
			Family:       *family,
			Style:        *style,
			Size:         *size,
			BorderWidth:  *borderW,
			BorderHeight: *borderH,
			OffsetX:      *textX,
			OffsetY:      *textY,
			Color:        fg,
		}
		if *bgColor != "" {
			if t.BackgroundColor, err = parseColor(*bgColor); err != nil {
				return nil, err
			}
			t.Background = true
		}
		source = t
	default:
		return nil, errors.New("no watermark: set --mark or --text")
	}

	spec := markit.NewSpec(source)
	spec.SetRotation(*rotate).SetScale(*scale).SetOpacity(*opacity)
	// Fail once up front instead of once per image.
	if _, err := markit.NewPipeline(fonts).Render(spec); err != nil {
		return nil, err
	}

	t := &task{
		cfg: markit.Config{
			Box:           image.Pt(*boxW, *boxH),
			Margin:        image.Pt(*margin, *margin),
			Fonts:         fonts,
			DecodeOptions: []markit.DecodeOption{markit.MaxPixels(*limit)},
		},
		spec:  spec,
		grid:  markit.Grid{Enabled: *grid, Spacing: *spacing},
		shift: image.Pt(*shiftH, *shiftV),
		snap:  *snap,
		at:    at,
	}
	if format != -1 {
		t.format = &markit.FormatOption{
			Format:       format,
			EncodeOption: []markit.EncodeOption{markit.Quality(*quality), markit.TIFFCompressionType(compression)},
		}
	}
	return t, nil
}

func (t *task) formatFor(input string) *markit.FormatOption {
	if t.format != nil {
		return t.format
	}
	f, err := markit.FormatFromFilename(input)
	if err != nil {
		f = markit.JPEG
	}
	return &markit.FormatOption{
		Format:       f,
		EncodeOption: []markit.EncodeOption{markit.Quality(*quality), markit.TIFFCompressionType(compression)},
	}
}

func (t *task) run(input, output string, force bool) (err error) {
	opt := t.formatFor(input)
	output = strings.TrimSuffix(output, filepath.Ext(output)) + opt.Format.Ext()
	if _, err = os.Stat(output); err == nil {
		if !force {
			return errSkip
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Error("Failed to get FileInfo", "name", output, "error", err)
		return
	}
	path := filepath.Dir(output)
	if err = os.MkdirAll(path, 0755); err != nil {
		log.Error("Failed to create directory", "path", path, "error", err)
		return
	}

	s := markit.NewSession(t.cfg)
	if err = s.LoadImage(input); err != nil {
		log.Error("Failed to open image", "image", input, "error", err)
		return
	}
	if _, err = s.SetMark(t.spec); err != nil {
		log.Error("Failed to render watermark", "image", input, "error", err)
		return
	}
	s.SetSnap(t.snap)
	s.SetShift(t.shift.X, t.shift.Y)
	if err = s.SetGrid(t.grid); err != nil {
		log.Error("Invalid grid", "image", input, "error", err)
		return
	}
	if t.at != nil {
		if _, err = s.Click(*t.at); err != nil {
			log.Error("Failed to place watermark", "image", input, "at", *t.at, "error", err)
			return
		}
	}

	f, err := os.CreateTemp(path, "*.tmp")
	if err != nil {
		log.Error("Failed to create temporary file", "path", path, "error", err)
		return
	}
	f.Close()
	if *preview {
		var img *image.RGBA
		if img, err = s.Preview(nil); err == nil {
			err = markit.Save(f.Name(), img, opt)
		}
	} else {
		err = s.Export(f.Name(), opt)
	}
	if err != nil {
		os.Remove(f.Name())
		log.Error("Failed to export image", "image", input, "error", err)
		return
	}
	if err = os.Rename(f.Name(), output); err != nil {
		log.Error("Failed to move file", "from", f.Name(), "to", output, "error", err)
	}
	return
}
