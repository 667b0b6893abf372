package markit

import "image"

// Region is where a pointer falls relative to the placement area of a mark.
type Region int

// Regions of the placement area. Inside means the mark fits around the
// pointer; the rest name the image border or corner the pointer is past.
const (
	Inside Region = iota
	TopLeft
	Top
	TopRight
	Left
	Right
	BottomLeft
	Bottom
	BottomRight
)

var regionNames = [...]string{"inside", "top-left", "top", "top-right", "left", "right", "bottom-left", "bottom", "bottom-right"}

func (r Region) String() string {
	if r < 0 || int(r) >= len(regionNames) {
		return "unknown"
	}
	return regionNames[r]
}

// Snap pins a mark to the image border. Point is in source space and holds
// either 0 or the image's full width/height on the snapped axis, so it does
// not depend on the mark's own size.
type Snap struct {
	Region Region
	Point  image.Point
}

// Offset returns the top-left source-space offset for a mark of the given
// source-space size. A coordinate on the far edge is pulled back by the
// mark's size; a coordinate carried along an edge is kept within
// [0, source-mark] so the mark never leaves the image.
func (s Snap) Offset(source, mark image.Point) image.Point {
	return image.Pt(snapAxis(s.Point.X, source.X, mark.X), snapAxis(s.Point.Y, source.Y, mark.Y))
}

func snapAxis(v, size, mark int) int {
	if v >= size {
		return size - mark
	}
	return max(0, min(v, size-mark))
}

// Calibration is the result of mapping a pointer to a mark position.
type Calibration struct {
	// Center is the point the mark is centered on after clamping.
	Center image.Point
	// Anchor is the canvas position of the mark's top-left corner.
	Anchor image.Point
	Region Region
	// Snap is set when snapping is enabled and the pointer is past the border.
	Snap *Snap
}

// Calibrate maps a canvas pointer to the anchor of a mark with the given
// display-space footprint so that the mark's center follows the pointer.
// With snapping enabled, positions that would push the mark out of the image
// are clamped to the border and reported as a Snap in source space.
func (v *Viewport) Calibrate(pointer, mark image.Point, snap bool) (Calibration, error) {
	lo := image.Pt(mark.X/2, mark.Y/2)
	hi := mark.Sub(lo)
	c := Calibration{Center: pointer}
	if !snap {
		c.Anchor = pointer.Sub(lo)
		return c, nil
	}

	minX, maxX := v.Datum.X+lo.X, v.Datum.X+v.Display.X-hi.X
	minY, maxY := v.Datum.Y+lo.Y, v.Datum.Y+v.Display.Y-hi.Y
	x, y := pointer.X, pointer.Y
	inX := x >= minX && x <= maxX
	inY := y >= minY && y <= maxY

	var target image.Point
	switch {
	case inX && inY:
		c.Region = Inside
	case x < minX && y < minY:
		c.Region, c.Center = TopLeft, image.Pt(minX, minY)
		target = image.Pt(0, 0)
	case x > maxX && y < minY:
		c.Region, c.Center = TopRight, image.Pt(maxX, minY)
		target = image.Pt(v.Source.X, 0)
	case x < minX && y > maxY:
		c.Region, c.Center = BottomLeft, image.Pt(minX, maxY)
		target = image.Pt(0, v.Source.Y)
	case x > maxX && y > maxY:
		c.Region, c.Center = BottomRight, image.Pt(maxX, maxY)
		target = v.Source
	case x < minX && inY:
		c.Region, c.Center = Left, image.Pt(minX, y)
		target = image.Pt(0, v.ToSource(c.Center.Sub(lo)).Y)
	case x > maxX && inY:
		c.Region, c.Center = Right, image.Pt(maxX, y)
		target = image.Pt(v.Source.X, v.ToSource(c.Center.Sub(lo)).Y)
	case y < minY && inX:
		c.Region, c.Center = Top, image.Pt(x, minY)
		target = image.Pt(v.ToSource(c.Center.Sub(lo)).X, 0)
	case y > maxY && inX:
		c.Region, c.Center = Bottom, image.Pt(x, maxY)
		target = image.Pt(v.ToSource(c.Center.Sub(lo)).X, v.Source.Y)
	default:
		return Calibration{}, &InvariantError{
			Op:      "calibrate",
			Pointer: pointer,
			Bounds:  image.Rect(minX, minY, maxX, maxY),
		}
	}
	if c.Region != Inside {
		c.Snap = &Snap{Region: c.Region, Point: target}
	}
	c.Anchor = c.Center.Sub(lo)
	return c, nil
}

// Placement is a remembered click. The snap captured at click time wins over
// the anchor when the offset is resolved, regardless of later snap toggles.
type Placement struct {
	// Anchor is the canvas position of the mark's top-left corner.
	Anchor image.Point
	Snap   *Snap
	// Clamp is set when snapping was enabled at click time: the resolved
	// offset is then kept inside the image like a snapped one.
	Clamp bool
}

// Offset resolves the top-left source-space offset of a mark with the given
// source-space size. shift is applied to unsnapped placements only.
func (p Placement) Offset(v *Viewport, mark, shift image.Point) image.Point {
	if p.Snap != nil {
		return p.Snap.Offset(v.Source, mark)
	}
	o := v.ToSource(p.Anchor)
	if p.Clamp {
		o = image.Pt(max(0, min(o.X, v.Source.X-mark.X)), max(0, min(o.Y, v.Source.Y-mark.Y)))
	}
	return o.Add(shift)
}
