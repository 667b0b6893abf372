package markit

import (
	"fmt"
	"image"
	"math"
)

// epsilon absorbs float error when a ratio times its own denominator should be exact.
const epsilon = 1e-9

// FitToBox returns the largest size with the aspect ratio of native that fits
// inside box after subtracting margin on every side.
func FitToBox(native, box, margin image.Point) (image.Point, error) {
	if native.X <= 0 || native.Y <= 0 {
		return image.Point{}, fmt.Errorf("%w: native size %v", ErrInvalidDimension, native)
	}
	inner := box.Sub(margin.Mul(2))
	if inner.X <= 0 || inner.Y <= 0 {
		return image.Point{}, fmt.Errorf("%w: box %v with margin %v", ErrInvalidDimension, box, margin)
	}
	ratio := math.Min(float64(inner.X)/float64(native.X), float64(inner.Y)/float64(native.Y))
	size := image.Pt(
		int(math.Floor(float64(native.X)*ratio+epsilon)),
		int(math.Floor(float64(native.Y)*ratio+epsilon)),
	)
	if size.X <= 0 || size.Y <= 0 {
		return image.Point{}, fmt.Errorf("%w: %v does not fit into %v", ErrInvalidDimension, native, inner)
	}
	return size, nil
}

// Datum returns the top-left offset that centers content inside box.
func Datum(box, content image.Point) image.Point {
	return image.Pt(floorDiv(box.X-content.X, 2), floorDiv(box.Y-content.Y, 2))
}

// Scale is the per-axis ratio between source space and display space.
// Both axes are kept separately so a one-pixel rounding difference in one
// dimension never leaks into the other.
type Scale struct {
	X, Y float64
}

// NewScale returns the ratio source/display for each axis.
func NewScale(source, display image.Point) (Scale, error) {
	if source.X <= 0 || source.Y <= 0 || display.X <= 0 || display.Y <= 0 {
		return Scale{}, fmt.Errorf("%w: source %v, display %v", ErrInvalidDimension, source, display)
	}
	return Scale{
		X: float64(source.X) / float64(display.X),
		Y: float64(source.Y) / float64(display.Y),
	}, nil
}

// ToSource converts a display-space point or length to source space.
func ToSource(p image.Point, s Scale) image.Point {
	return image.Pt(round(float64(p.X)*s.X), round(float64(p.Y)*s.Y))
}

// ToDisplay converts a source-space point to display space.
func ToDisplay(p image.Point, s Scale) image.Point {
	return image.Pt(round(float64(p.X)/s.X), round(float64(p.Y)/s.Y))
}

// ToDisplaySize converts a source-space footprint to display space.
// A non-empty footprint never shrinks below one pixel.
//
// Converting the result back with ToSource recovers the footprint within
// one pixel only while the scale is at most 2 on that axis. For a larger
// scale the error grows to scale/2 + 0.5 pixels, and a footprint smaller
// than half the scale comes back as one display pixel's worth.
func ToDisplaySize(size image.Point, s Scale) image.Point {
	d := ToDisplay(size, s)
	if size.X > 0 && d.X < 1 {
		d.X = 1
	}
	if size.Y > 0 && d.Y < 1 {
		d.Y = 1
	}
	return d
}

// Viewport describes how a source image is shown inside the preview canvas.
type Viewport struct {
	// Box is the size of the preview canvas.
	Box image.Point
	// Source is the native size of the image.
	Source image.Point
	// Display is the size of the downscaled image on the canvas.
	Display image.Point
	// Datum is where the downscaled image's top-left corner sits on the canvas.
	Datum image.Point
	Scale Scale
}

// NewViewport fits an image of the given size into box, leaving margin on each side.
func NewViewport(source, box, margin image.Point) (*Viewport, error) {
	display, err := FitToBox(source, box, margin)
	if err != nil {
		return nil, err
	}
	scale, err := NewScale(source, display)
	if err != nil {
		return nil, err
	}
	return &Viewport{
		Box:     box,
		Source:  source,
		Display: display,
		Datum:   Datum(box, display),
		Scale:   scale,
	}, nil
}

// Rect returns the canvas rectangle covered by the image.
func (v *Viewport) Rect() image.Rectangle {
	return image.Rectangle{v.Datum, v.Datum.Add(v.Display)}
}

// ToSource converts a canvas point to a source-space point.
func (v *Viewport) ToSource(p image.Point) image.Point {
	return ToSource(p.Sub(v.Datum), v.Scale)
}

// ToCanvas converts a source-space point to a canvas point.
func (v *Viewport) ToCanvas(p image.Point) image.Point {
	return ToDisplay(p, v.Scale).Add(v.Datum)
}

// DisplaySize converts a source-space footprint to the canvas.
func (v *Viewport) DisplaySize(size image.Point) image.Point {
	return ToDisplaySize(size, v.Scale)
}

func round(f float64) int {
	return int(math.Round(f))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
