package markit

import (
	"fmt"
	"image/color"
)

// Kind identifies which source a watermark is built from.
type Kind int

// Watermark kinds.
const (
	ImageKind Kind = iota
	TextKind
)

func (k Kind) String() string {
	switch k {
	case ImageKind:
		return "image"
	case TextKind:
		return "text"
	default:
		return "unknown"
	}
}

// Source is the content of a watermark: an ImageMark or a TextMark.
type Source interface {
	Kind() Kind
	isSource()
}

// ImageMark is a watermark loaded from an image file.
type ImageMark struct {
	Path string
}

// Kind implements Source.
func (ImageMark) Kind() Kind { return ImageKind }
func (ImageMark) isSource() {}

// TextMark is a watermark rendered from text.
type TextMark struct {
	Content string
	Family  string
	Style   string
	// Size is the font size in points.
	Size float64

	// BorderWidth and BorderHeight grow (or, when negative, crop) the
	// measured text box.
	BorderWidth  int
	BorderHeight int
	// OffsetX and OffsetY move the text inside its canvas.
	OffsetX int
	OffsetY int

	Background      bool
	BackgroundColor color.NRGBA
	Color           color.NRGBA
}

// Kind implements Source.
func (TextMark) Kind() Kind { return TextKind }
func (TextMark) isSource() {}

// Spec fully describes a watermark raster. Rendering the same Spec twice
// yields identical pixels.
type Spec struct {
	Source Source
	// Rotation is counter-clockwise, in degrees.
	Rotation float64
	// Scale multiplies the rotated raster's size; 1 keeps it.
	Scale float64
	// Opacity is a percentage in [0, 100].
	Opacity int
}

// NewSpec returns a Spec for source with no rotation, unit scale and full opacity.
func NewSpec(source Source) Spec {
	return Spec{Source: source, Scale: 1, Opacity: 100}
}

// SetRotation sets the rotation in degrees.
func (s *Spec) SetRotation(degrees float64) *Spec {
	s.Rotation = degrees
	return s
}

// SetScale sets the scale factor.
func (s *Spec) SetScale(scale float64) *Spec {
	s.Scale = scale
	return s
}

// SetOpacity sets the opacity percentage.
func (s *Spec) SetOpacity(opacity int) *Spec {
	s.Opacity = opacity
	return s
}

// Alpha returns the alpha byte for s.Opacity.
func (s Spec) Alpha() uint8 {
	return uint8(round(255 * float64(s.Opacity) / 100))
}

func (s Spec) validate() error {
	if s.Source == nil {
		return fmt.Errorf("%w: missing source", ErrInvalidWatermark)
	}
	if s.Opacity < 0 || s.Opacity > 100 {
		return fmt.Errorf("%w: %d not in [0, 100]", ErrInvalidOpacity, s.Opacity)
	}
	if s.Scale <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidScale, s.Scale)
	}
	if t, ok := s.Source.(TextMark); ok && t.Size <= 0 {
		return fmt.Errorf("%w: font size %g", ErrInvalidWatermark, t.Size)
	}
	return nil
}
