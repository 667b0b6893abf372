package markit

import (
	"errors"
	"fmt"
	"image"
)

// Errors returned by markit. Wrapped errors can be tested with errors.Is.
var (
	ErrInvalidDimension  = errors.New("invalid dimension")
	ErrDegenerateSize    = errors.New("degenerate watermark size")
	ErrUnreadableImage   = errors.New("unreadable image")
	ErrInvalidWatermark  = errors.New("invalid watermark")
	ErrMismatchedLayout  = errors.New("mismatched image mode")
	ErrInternalInvariant = errors.New("internal invariant violated")
	ErrFontNotFound      = errors.New("font not found")
	ErrInvalidSpacing    = errors.New("invalid grid spacing")
	ErrInvalidScale      = errors.New("invalid scale factor")
	ErrInvalidOpacity    = errors.New("invalid opacity")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrNoImage           = errors.New("no source image loaded")
	ErrNoMark            = errors.New("no watermark loaded")
)

// DegenerateSizeError reports a text watermark whose canvas would collapse
// after the border deltas are applied.
type DegenerateSizeError struct {
	// Measured is the tight text box before the border deltas.
	Measured image.Point
	// Size is the rejected canvas size.
	Size image.Point
}

func (e *DegenerateSizeError) Error() string {
	var msg string
	if e.Size.X <= 0 {
		msg = fmt.Sprintf("border width delta must be > %d", -e.Measured.X)
	}
	if e.Size.Y <= 0 {
		if msg != "" {
			msg += ", "
		}
		msg += fmt.Sprintf("border height delta must be > %d", -e.Measured.Y)
	}
	return fmt.Sprintf("%s %dx%d: %s", ErrDegenerateSize, e.Size.X, e.Size.Y, msg)
}

func (e *DegenerateSizeError) Is(target error) bool { return target == ErrDegenerateSize }

// MinWidthDelta returns the smallest border width delta that keeps the canvas non-empty.
func (e *DegenerateSizeError) MinWidthDelta() int { return -e.Measured.X + 1 }

// MinHeightDelta returns the smallest border height delta that keeps the canvas non-empty.
func (e *DegenerateSizeError) MinHeightDelta() int { return -e.Measured.Y + 1 }

// InvariantError is a geometry bug: a state the algorithm should never reach.
type InvariantError struct {
	Op      string
	Pointer image.Point
	Bounds  image.Rectangle
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: pointer %v outside all regions of %v", ErrInternalInvariant, e.Op, e.Pointer, e.Bounds)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInternalInvariant }
