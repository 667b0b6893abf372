package markit

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // decode gif format
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "github.com/sunshineplan/tiff" // decode tiff format
	_ "golang.org/x/image/bmp"       // decode bmp format
	_ "golang.org/x/image/webp"      // decode webp format
)

type decodeOptions struct {
	orient    bool
	maxPixels int
}

// DecodeOption tunes how source images and image watermarks are read.
type DecodeOption func(*decodeOptions)

// AutoOrientation turns EXIF orientation handling on or off. When on, which
// is the default, the decoded image is rotated or flipped so that it shows
// upright.
func AutoOrientation(enabled bool) DecodeOption {
	return func(o *decodeOptions) { o.orient = enabled }
}

// MaxPixels rejects images with more than n pixels before their pixel data
// is decoded. Zero or less means no limit.
func MaxPixels(n int) DecodeOption {
	return func(o *decodeOptions) { o.maxPixels = n }
}

// Decode reads an image in any registered format from r.
func Decode(r io.Reader, opts ...DecodeOption) (image.Image, error) {
	o := decodeOptions{orient: true}
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxPixels > 0 {
		var head bytes.Buffer
		cfg, _, err := DecodeConfig(io.TeeReader(r, &head))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadableImage, err)
		}
		if cfg.Width*cfg.Height > o.maxPixels {
			return nil, fmt.Errorf("%w: %dx%d is more than %d pixels", ErrInvalidDimension, cfg.Width, cfg.Height, o.maxPixels)
		}
		r = io.MultiReader(&head, r)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(o.orient))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	return img, nil
}

// DecodeConfig reads only the header of an image: its size, color model and
// the name its format was registered under.
func DecodeConfig(r io.Reader) (image.Config, string, error) {
	return image.DecodeConfig(r)
}

// Open reads the image stored in file.
func Open(file string, opts ...DecodeOption) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableImage, err)
	}
	defer f.Close()

	return Decode(f, opts...)
}

// Write encodes img to w as described by option.
func Write(w io.Writer, img image.Image, option *FormatOption) error {
	return option.Encode(w, img)
}

// Save writes img to output as described by option. A partially written
// file is removed when encoding fails.
func Save(output string, img image.Image, option *FormatOption) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(output)
		}
	}()

	return Write(f, img, option)
}
