package markit

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Raster is a rendered watermark: opacity applied, rotated with the canvas
// grown to fit, then scaled. Image is in source space.
type Raster struct {
	Spec  Spec
	Image *image.NRGBA

	rotated *image.NRGBA
}

// Size returns the source-space footprint of the raster.
func (r *Raster) Size() image.Point {
	return r.Image.Bounds().Size()
}

// Mark returns the raster at its spec's scale, resampling the rotated
// raster again if Image was replaced by something of a different size.
func (r *Raster) Mark() *image.NRGBA {
	want := scaledSize(r.rotated.Bounds().Size(), r.Spec.Scale)
	if r.Image.Bounds().Size() != want {
		r.Image = scale(r.rotated, r.Spec.Scale)
	}
	return r.Image
}

// Preview returns the raster resampled to display space.
func (r *Raster) Preview(s Scale) *image.NRGBA {
	size := ToDisplaySize(r.Size(), s)
	return imaging.Resize(r.Image, size.X, size.Y, imaging.Lanczos)
}

// Pipeline turns a Spec into a Raster.
type Pipeline struct {
	Fonts *FontBook
	// DecodeOptions are used when opening image watermarks.
	DecodeOptions []DecodeOption
}

// NewPipeline returns a Pipeline resolving text fonts from fonts.
// A nil fonts uses a FontBook with only the built-in fonts.
func NewPipeline(fonts *FontBook) *Pipeline {
	if fonts == nil {
		fonts = NewFontBook()
	}
	return &Pipeline{Fonts: fonts}
}

// Render builds the raster described by spec from scratch.
func (p *Pipeline) Render(spec Spec) (*Raster, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	var base *image.NRGBA
	switch src := spec.Source.(type) {
	case ImageMark:
		img, err := Open(src.Path, p.DecodeOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidWatermark, src.Path, err)
		}
		base = imaging.Clone(img)
	case TextMark:
		face, err := p.Fonts.Face(src.Family, src.Style, src.Size)
		if err != nil {
			return nil, err
		}
		defer face.Close()
		if base, err = renderText(face, src); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown source %T", ErrInvalidWatermark, spec.Source)
	}

	setOpacity(base, spec.Alpha())
	rotated := imaging.Rotate(base, spec.Rotation, color.Transparent)
	if rotated.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty raster", ErrDegenerateSize)
	}
	return &Raster{Spec: spec, Image: scale(rotated, spec.Scale), rotated: rotated}, nil
}

// setOpacity multiplies every pixel's alpha by alpha/255 in place.
func setOpacity(img *image.NRGBA, alpha uint8) {
	if alpha == 0xff {
		return
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8((uint32(img.Pix[i])*uint32(alpha) + 127) / 255)
	}
}

func scaledSize(size image.Point, factor float64) image.Point {
	if factor == 1 {
		return size
	}
	return image.Pt(
		max(1, round(float64(size.X)*factor)),
		max(1, round(float64(size.Y)*factor)),
	)
}

func scale(img *image.NRGBA, factor float64) *image.NRGBA {
	size := scaledSize(img.Bounds().Size(), factor)
	if size == img.Bounds().Size() {
		return img
	}
	return imaging.Resize(img, size.X, size.Y, imaging.Lanczos)
}
