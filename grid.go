package markit

import (
	"fmt"
	"image"
)

// Grid repeats a watermark on a lattice. Spacing is the gap between
// neighbouring marks in source pixels; a negative gap makes them overlap.
type Grid struct {
	Enabled bool
	Spacing int
}

// Step returns the lattice step for a mark of the given footprint.
func (g Grid) Step(mark image.Point) (int, error) {
	step := max(mark.X, mark.Y) + g.Spacing
	if step <= 0 {
		return 0, fmt.Errorf("%w: spacing %d with mark %v gives step %d", ErrInvalidSpacing, g.Spacing, mark, step)
	}
	return step, nil
}

// Tile returns the lattice through anchor that covers extent plus one step
// beyond the mark on every side. anchor, spacing, mark and extent must all
// be in the same space. anchor is always one of the returned points.
func Tile(anchor image.Point, spacing int, mark, extent image.Point) ([]image.Point, error) {
	step, err := Grid{Enabled: true, Spacing: spacing}.Step(mark)
	if err != nil {
		return nil, err
	}
	xs := lattice(anchor.X, step, extent.X+mark.X+step)
	ys := lattice(anchor.Y, step, extent.Y+mark.Y+step)
	tiles := make([]image.Point, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			tiles = append(tiles, image.Pt(x, y))
		}
	}
	return tiles, nil
}

// lattice walks back from v by whole steps to the first point left of the
// origin, then forward until limit or v, whichever is further.
func lattice(v, step, limit int) []int {
	limit = max(limit, v+1)
	var start int
	if v != 0 {
		start = min(v, v-(floorDiv(v, step)+1)*step)
	}
	var locs []int
	for i := start; i < limit; i += step {
		locs = append(locs, i)
	}
	return locs
}
