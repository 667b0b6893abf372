package markit

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/sunshineplan/utils/log"
)

// Config configures a Session.
type Config struct {
	// Box is the size of the preview canvas.
	Box image.Point
	// Margin is kept free around the image on each side of the canvas.
	Margin image.Point
	// Fonts resolves text watermark fonts. Nil means built-in fonts only.
	Fonts *FontBook
	// DecodeOptions are used for both the source image and image watermarks.
	DecodeOptions []DecodeOption
	// Background fills the canvas around the image in previews.
	Background color.Color
}

// DefaultConfig is the configuration used by NewSession when cfg is zero.
var DefaultConfig = Config{
	Box:        image.Pt(800, 500),
	Margin:     image.Pt(10, 10),
	Background: color.White,
}

type markState struct {
	raster    *Raster
	preview   *image.NRGBA
	placement *Placement
}

// Session owns one editing session: the source image, one watermark and one
// remembered placement per kind, the grid and the snapping switch.
// A Session must only be used from one goroutine at a time.
type Session struct {
	cfg      Config
	pipeline *Pipeline

	source   image.Image
	display  *image.NRGBA
	viewport *Viewport

	mode  Kind
	marks [2]markState

	snap  bool
	grid  Grid
	shift image.Point
}

// NewSession returns an empty session. Zero fields of cfg take their value
// from DefaultConfig.
func NewSession(cfg Config) *Session {
	if cfg.Box == (image.Point{}) {
		cfg.Box = DefaultConfig.Box
	}
	if cfg.Margin == (image.Point{}) {
		cfg.Margin = DefaultConfig.Margin
	}
	if cfg.Background == nil {
		cfg.Background = DefaultConfig.Background
	}
	p := NewPipeline(cfg.Fonts)
	p.DecodeOptions = cfg.DecodeOptions
	return &Session{cfg: cfg, pipeline: p}
}

// LoadImage opens the image at path and makes it the session's source.
// On failure the session is left unchanged.
func (s *Session) LoadImage(path string) error {
	img, err := Open(path, s.cfg.DecodeOptions...)
	if err != nil {
		return err
	}
	return s.SetImage(img)
}

// SetImage makes img the session's source image. Remembered placements are
// dropped since they belong to the previous image.
func (s *Session) SetImage(img image.Image) error {
	vp, err := NewViewport(img.Bounds().Size(), s.cfg.Box, s.cfg.Margin)
	if err != nil {
		return err
	}
	s.source = img
	s.viewport = vp
	s.display = imaging.Resize(img, vp.Display.X, vp.Display.Y, imaging.Lanczos)
	for i := range s.marks {
		s.marks[i].placement = nil
		if r := s.marks[i].raster; r != nil {
			s.marks[i].preview = r.Preview(vp.Scale)
		}
	}
	log.Debug("Source image loaded", "size", vp.Source, "display", vp.Display, "datum", vp.Datum)
	return nil
}

// Source returns the source image or nil.
func (s *Session) Source() image.Image { return s.source }

// Display returns the downscaled source image or nil.
func (s *Session) Display() *image.NRGBA { return s.display }

// Viewport returns the current viewport or nil when no image is loaded.
func (s *Session) Viewport() *Viewport { return s.viewport }

// SetMark renders spec and makes it the watermark of its kind; the session
// switches to that kind. When rendering fails the previous raster stays.
func (s *Session) SetMark(spec Spec) (*Raster, error) {
	r, err := s.pipeline.Render(spec)
	if err != nil {
		var dse *DegenerateSizeError
		if errors.As(err, &dse) {
			log.Warn("Watermark update rejected", "error", err)
		}
		return nil, err
	}
	k := spec.Source.Kind()
	m := &s.marks[k]
	m.raster = r
	m.preview = nil
	if s.viewport != nil {
		m.preview = r.Preview(s.viewport.Scale)
	}
	s.mode = k
	log.Debug("Watermark rendered", "kind", k, "size", r.Size())
	return r, nil
}

// Mark returns the raster of kind k or nil.
func (s *Session) Mark(k Kind) *Raster { return s.marks[k].raster }

// Mode returns the active watermark kind.
func (s *Session) Mode() Kind { return s.mode }

// SetMode switches the active watermark kind. Each kind keeps its own placement.
func (s *Session) SetMode(k Kind) error {
	if k != ImageKind && k != TextKind {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidWatermark, k)
	}
	s.mode = k
	return nil
}

// Snap reports whether snapping is enabled for new clicks.
func (s *Session) Snap() bool { return s.snap }

// SetSnap enables or disables snapping for new clicks.
func (s *Session) SetSnap(enabled bool) { s.snap = enabled }

// Grid returns the grid settings.
func (s *Session) Grid() Grid { return s.grid }

// SetGrid replaces the grid settings. An enabled grid is checked against the
// active watermark so that the lattice step stays positive.
func (s *Session) SetGrid(g Grid) error {
	if g.Enabled {
		if r := s.marks[s.mode].raster; r != nil {
			if _, err := g.Step(r.Size()); err != nil {
				return err
			}
		}
	}
	s.grid = g
	return nil
}

// Shift returns the source-space nudge applied to unsnapped placements.
func (s *Session) Shift() image.Point { return s.shift }

// SetShift sets the source-space nudge applied to unsnapped placements.
func (s *Session) SetShift(h, v int) { s.shift = image.Pt(h, v) }

func (s *Session) active() (*markState, error) {
	if s.viewport == nil {
		return nil, ErrNoImage
	}
	m := &s.marks[s.mode]
	if m.raster == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMark, s.mode)
	}
	return m, nil
}

// Hover calibrates pointer for the active watermark without remembering it.
func (s *Session) Hover(pointer image.Point) (Calibration, error) {
	m, err := s.active()
	if err != nil {
		return Calibration{}, err
	}
	return s.viewport.Calibrate(pointer, m.preview.Bounds().Size(), s.snap)
}

// Click calibrates pointer and remembers the result for the active watermark.
func (s *Session) Click(pointer image.Point) (Placement, error) {
	c, err := s.Hover(pointer)
	if err != nil {
		return Placement{}, err
	}
	p := Placement{Anchor: c.Anchor, Snap: c.Snap, Clamp: s.snap}
	s.marks[s.mode].placement = &p
	return p, nil
}

// Placement returns the remembered placement of the active watermark.
func (s *Session) Placement() (Placement, bool) {
	if p := s.marks[s.mode].placement; p != nil {
		return *p, true
	}
	return Placement{}, false
}

// Offset resolves the source-space top-left corner of the active watermark.
// Without a click the watermark is centered.
func (s *Session) Offset() (image.Point, error) {
	m, err := s.active()
	if err != nil {
		return image.Point{}, err
	}
	size := m.raster.Mark().Bounds().Size()
	if m.placement == nil {
		return s.viewport.Source.Sub(size).Div(2), nil
	}
	return m.placement.Offset(s.viewport, size, s.shift), nil
}

// Render composites the active watermark onto a copy of the source image.
func (s *Session) Render() (*image.RGBA, error) {
	offset, err := s.Offset()
	if err != nil {
		return nil, err
	}
	return Composite(s.source, s.marks[s.mode].raster.Mark(), offset, s.grid)
}

// Export renders the result and saves it to output. A nil option picks the
// format from the output's extension.
func (s *Session) Export(output string, option *FormatOption) error {
	offset, err := s.Offset()
	if err != nil {
		return err
	}
	if err := Export(output, s.source, s.marks[s.mode].raster.Mark(), offset, s.grid, option); err != nil {
		return err
	}
	log.Debug("Exported", "output", output, "offset", offset, "grid", s.grid.Enabled)
	return nil
}

// Preview renders the preview canvas with the active watermark following
// pointer. A nil pointer shows the remembered placement instead. The cached
// display raster is reused; nothing is re-rendered.
func (s *Session) Preview(pointer *image.Point) (*image.RGBA, error) {
	m, err := s.active()
	if err != nil {
		return nil, err
	}
	var anchor image.Point
	switch {
	case pointer != nil:
		c, err := s.Hover(*pointer)
		if err != nil {
			return nil, err
		}
		anchor = c.Anchor
	case m.placement != nil && m.placement.Snap != nil:
		anchor = s.viewport.ToCanvas(m.placement.Snap.Offset(s.viewport.Source, m.raster.Size()))
	case m.placement != nil:
		anchor = m.placement.Anchor
	default:
		anchor = s.viewport.Datum.Add(s.viewport.Display.Sub(m.preview.Bounds().Size()).Div(2))
	}

	canvas := image.NewRGBA(image.Rectangle{Max: s.cfg.Box})
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(s.cfg.Background), image.Point{}, draw.Src)
	draw.Draw(canvas, s.viewport.Rect(), s.display, image.Point{}, draw.Src)
	if !s.grid.Enabled {
		return canvas, alphaComposite(canvas, toRGBA(m.preview), anchor)
	}
	// The display step follows the source step so that every spacing
	// accepted for export also previews.
	step, err := s.grid.Step(m.raster.Size())
	if err != nil {
		return nil, err
	}
	size := m.preview.Bounds().Size()
	grid := Grid{Enabled: true, Spacing: max(1, round(float64(step)/s.viewport.Scale.X)) - max(size.X, size.Y)}
	layer, _, err := markLayer(s.viewport.Display, m.preview, anchor.Sub(s.viewport.Datum), grid)
	if err != nil {
		return nil, err
	}
	return canvas, alphaComposite(canvas, layer, s.viewport.Datum)
}
