package markit

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// drawText draws text with its ascender line at at.Y and its origin at at.X.
func drawText(dst draw.Image, face font.Face, at image.Point, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(at.X),
			Y: fixed.I(at.Y) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}

// measureText draws text at the origin of a scratch canvas and returns the
// extent of the inked pixels measured from the origin.
func measureText(face font.Face, text string) image.Point {
	if text == "" {
		return image.Point{}
	}
	bounds, advance := font.BoundString(face, text)
	m := face.Metrics()
	w := max(bounds.Max.X.Ceil(), advance.Ceil()) + 2
	h := max((m.Ascent+bounds.Max.Y).Ceil(), (m.Ascent+m.Descent).Ceil()) + 2
	if w <= 2 || h <= 2 {
		return image.Point{}
	}
	scratch := image.NewAlpha(image.Rect(0, 0, w, h))
	drawText(scratch, face, image.Point{}, text, color.Opaque)
	return inkExtent(scratch)
}

// inkExtent returns one past the right-most and bottom-most non-transparent
// pixel, or the zero point when nothing is inked.
func inkExtent(img *image.Alpha) image.Point {
	var ext image.Point
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride : (y-b.Min.Y)*img.Stride+b.Dx()]
		for x, a := range row {
			if a == 0 {
				continue
			}
			ext.X = max(ext.X, x+1)
			ext.Y = max(ext.Y, y-b.Min.Y+1)
		}
	}
	return ext
}

// renderText renders t onto a canvas sized to the measured text plus the
// border deltas. It fails with *DegenerateSizeError when that size is empty.
func renderText(face font.Face, t TextMark) (*image.NRGBA, error) {
	measured := measureText(face, t.Content)
	size := measured.Add(image.Pt(t.BorderWidth, t.BorderHeight))
	if size.X <= 0 || size.Y <= 0 {
		return nil, &DegenerateSizeError{Measured: measured, Size: size}
	}
	canvas := image.NewNRGBA(image.Rectangle{Max: size})
	if t.Background {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(t.BackgroundColor), image.Point{}, draw.Src)
	}
	if t.Content != "" {
		drawText(canvas, face, image.Pt(t.OffsetX, t.OffsetY), t.Content, t.Color)
	}
	return canvas, nil
}
