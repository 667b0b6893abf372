package markit

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sunshineplan/pdf"
	"github.com/sunshineplan/tiff"
)

// Format is an image file format.
type Format int

// Image file formats.
const (
	JPEG Format = iota
	PNG
	GIF
	TIFF
	BMP
	PDF
)

var formatExts = map[Format]string{
	JPEG: "jpg",
	PNG:  "png",
	GIF:  "gif",
	TIFF: "tif",
	BMP:  "bmp",
	PDF:  "pdf",
}

var formatAliases = map[string]Format{
	"jpg":  JPEG,
	"jpeg": JPEG,
	"png":  PNG,
	"gif":  GIF,
	"tif":  TIFF,
	"tiff": TIFF,
	"bmp":  BMP,
	"pdf":  PDF,
}

func (f Format) String() string {
	if ext, ok := formatExts[f]; ok {
		return ext
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the preferred file extension of f, including the dot.
func (f Format) Ext() string {
	return "." + formatExts[f]
}

// FormatFromExtension parses image format from filename extension:
// "jpg" (or "jpeg"), "png", "gif", "tif" (or "tiff"), "bmp" and "pdf" are supported.
func FormatFromExtension(ext string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return f, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// FormatFromFilename parses image format from filename.
func FormatFromFilename(filename string) (Format, error) {
	return FormatFromExtension(filepath.Ext(filename))
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if _, ok := formatExts[f]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	format, err := FormatFromExtension(string(text))
	if err != nil {
		return err
	}
	*f = format
	return nil
}

// TIFFCompression describes the type of compression used in TIFF output.
type TIFFCompression int

// Supported TIFF compression types.
const (
	TIFFUncompressed TIFFCompression = iota
	TIFFDeflate
	TIFFLZW
)

func (c TIFFCompression) value() tiff.CompressionType {
	switch c {
	case TIFFDeflate:
		return tiff.Deflate
	case TIFFLZW:
		return tiff.LZW
	}
	return tiff.Uncompressed
}

// MarshalText implements encoding.TextMarshaler.
func (c TIFFCompression) MarshalText() ([]byte, error) {
	switch c {
	case TIFFUncompressed:
		return []byte("none"), nil
	case TIFFDeflate:
		return []byte("deflate"), nil
	case TIFFLZW:
		return []byte("lzw"), nil
	}
	return nil, fmt.Errorf("unknown tiff compression type: %d", int(c))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *TIFFCompression) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "none":
		*c = TIFFUncompressed
	case "deflate":
		*c = TIFFDeflate
	case "lzw":
		*c = TIFFLZW
	default:
		return fmt.Errorf("unknown tiff compression type: %q", text)
	}
	return nil
}

type encodeConfig struct {
	Quality             int
	GIFNumColors        int
	PNGCompressionLevel png.CompressionLevel
	TIFFCompression     TIFFCompression
}

var defaultEncodeConfig = encodeConfig{
	Quality:             95,
	GIFNumColors:        256,
	PNGCompressionLevel: png.DefaultCompression,
	TIFFCompression:     TIFFLZW,
}

// EncodeOption sets an optional parameter for the Encode and Save functions.
type EncodeOption func(*encodeConfig)

// Quality returns an EncodeOption that sets the output JPEG or PDF quality.
// Quality ranges from 1 to 100 inclusive, higher is better.
func Quality(quality int) EncodeOption {
	return func(c *encodeConfig) {
		c.Quality = quality
	}
}

// GIFNumColors returns an EncodeOption that sets the maximum number of colors
// used in the GIF-encoded image. It ranges from 1 to 256. Default is 256.
func GIFNumColors(numColors int) EncodeOption {
	return func(c *encodeConfig) {
		c.GIFNumColors = numColors
	}
}

// PNGCompressionLevel returns an EncodeOption that sets the compression level
// of the PNG-encoded image. Default is png.DefaultCompression.
func PNGCompressionLevel(level png.CompressionLevel) EncodeOption {
	return func(c *encodeConfig) {
		c.PNGCompressionLevel = level
	}
}

// TIFFCompressionType returns an EncodeOption that sets the compression type
// of the TIFF-encoded image. Default is TIFFLZW.
func TIFFCompressionType(compression TIFFCompression) EncodeOption {
	return func(c *encodeConfig) {
		c.TIFFCompression = compression
	}
}

// FormatOption is format option
type FormatOption struct {
	Format       Format
	EncodeOption []EncodeOption
}

// Encode writes the image img to w in the specified format (JPEG, PNG, GIF, TIFF, BMP or PDF).
func (f *FormatOption) Encode(w io.Writer, img image.Image) error {
	cfg := defaultEncodeConfig
	for _, option := range f.EncodeOption {
		option(&cfg)
	}

	switch f.Format {
	case JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(cfg.Quality))
	case PNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(cfg.PNGCompressionLevel))
	case GIF:
		return imaging.Encode(w, img, imaging.GIF, imaging.GIFNumColors(cfg.GIFNumColors))
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: cfg.TIFFCompression.value(), Predictor: true})
	case BMP:
		return imaging.Encode(w, img, imaging.BMP)
	case PDF:
		return pdf.Encode(w, []image.Image{img}, &pdf.Options{Quality: cfg.Quality})
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Format)
}
