package markit

import (
	"fmt"
	"image"
	"image/draw"
)

// Composite blends mark over a copy of base with its top-left corner at
// offset. With grid enabled the mark is repeated over the whole image on a
// lattice through offset. base is never modified.
func Composite(base, mark image.Image, offset image.Point, grid Grid) (*image.RGBA, error) {
	dst := toRGBA(base)
	layer, at, err := markLayer(dst.Bounds().Size(), mark, offset, grid)
	if err != nil {
		return nil, err
	}
	if err := alphaComposite(dst, layer, at); err != nil {
		return nil, err
	}
	return dst, nil
}

// markLayer returns the layer to blend and where to blend it.
func markLayer(size image.Point, mark image.Image, offset image.Point, grid Grid) (*image.RGBA, image.Point, error) {
	m := toRGBA(mark)
	if !grid.Enabled {
		return m, offset, nil
	}
	tiles, err := Tile(offset, grid.Spacing, m.Bounds().Size(), size)
	if err != nil {
		return nil, image.Point{}, err
	}
	layer := image.NewRGBA(image.Rectangle{Max: size})
	for _, p := range tiles {
		draw.Draw(layer, m.Bounds().Add(p), m, image.Point{}, draw.Over)
	}
	return layer, image.Point{}, nil
}

// alphaComposite blends src over dst at the given offset. Both images must
// use the same premultiplied RGBA layout.
func alphaComposite(dst, src image.Image, at image.Point) error {
	d, ok := dst.(*image.RGBA)
	if !ok {
		return fmt.Errorf("%w: destination is %T", ErrMismatchedLayout, dst)
	}
	s, ok := src.(*image.RGBA)
	if !ok {
		return fmt.Errorf("%w: mark layer is %T", ErrMismatchedLayout, src)
	}
	r := s.Bounds().Sub(s.Bounds().Min).Add(at)
	draw.Draw(d, r, s, s.Bounds().Min, draw.Over)
	return nil
}

// toRGBA returns a copy of img in RGBA layout with its origin at (0, 0).
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Export composites mark onto base and saves the result to output. The
// format is taken from option, or from the output's extension when option
// is nil.
func Export(output string, base, mark image.Image, offset image.Point, grid Grid, option *FormatOption) error {
	if option == nil {
		f, err := FormatFromFilename(output)
		if err != nil {
			return err
		}
		option = &FormatOption{Format: f}
	}
	img, err := Composite(base, mark, offset, grid)
	if err != nil {
		return err
	}
	return Save(output, img, option)
}
