package markit

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func writeMark(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mark.png")
	if err := Save(path, img, &FormatOption{Format: PNG}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderImage(t *testing.T) {
	path := writeMark(t, solid(40, 20, red))
	p := NewPipeline(nil)

	testCase := []struct {
		rotation, scale float64
		want            image.Point
	}{
		{0, 1, image.Pt(40, 20)},
		{90, 1, image.Pt(20, 40)},
		{-90, 1, image.Pt(20, 40)},
		{180, 1, image.Pt(40, 20)},
		{0, 0.5, image.Pt(20, 10)},
		{0, 1.3, image.Pt(52, 26)},
		{90, 2, image.Pt(40, 80)},
		{0, 0.001, image.Pt(1, 1)},
	}

	for _, tc := range testCase {
		spec := NewSpec(ImageMark{Path: path})
		spec.SetRotation(tc.rotation).SetScale(tc.scale)
		r, err := p.Render(spec)
		if err != nil {
			t.Fatal(err)
		}
		if got := r.Size(); got != tc.want {
			t.Errorf("rotation %g scale %g: want %v, got %v", tc.rotation, tc.scale, tc.want, got)
		}
	}
}

func TestRenderRotationGrowsCanvas(t *testing.T) {
	path := writeMark(t, solid(40, 20, red))
	spec := NewSpec(ImageMark{Path: path})
	spec.SetRotation(45)
	r, err := NewPipeline(nil).Render(spec)
	if err != nil {
		t.Fatal(err)
	}
	if size := r.Size(); size.X <= 40 || size.Y <= 20 {
		t.Errorf("rotated canvas %v does not contain the 40x20 mark", size)
	}
	if c := r.Image.NRGBAAt(0, 0); c.A != 0 {
		t.Errorf("corner should be transparent fill, got %v", c)
	}
}

func TestRenderIdempotent(t *testing.T) {
	path := writeMark(t, solid(33, 17, red))
	p := NewPipeline(nil)
	for _, source := range []Source{
		ImageMark{Path: path},
		TextMark{Content: "markit", Size: 18, Color: red, Background: true, BackgroundColor: white, BorderWidth: 6, BorderHeight: 4, OffsetX: 3, OffsetY: 2},
	} {
		spec := NewSpec(source)
		spec.SetRotation(30).SetScale(0.8).SetOpacity(60)
		a, err := p.Render(spec)
		if err != nil {
			t.Fatal(err)
		}
		b, err := p.Render(spec)
		if err != nil {
			t.Fatal(err)
		}
		if a.Image.Rect != b.Image.Rect || !bytes.Equal(a.Image.Pix, b.Image.Pix) {
			t.Errorf("%s: rendering the same spec twice differs", source.Kind())
		}
	}
}

func TestRenderOpacity(t *testing.T) {
	path := writeMark(t, solid(4, 4, red))
	p := NewPipeline(nil)
	for _, tc := range []struct {
		opacity int
		alpha   uint8
	}{
		{100, 255},
		{50, 128},
		{0, 0},
		{20, 51},
	} {
		spec := NewSpec(ImageMark{Path: path})
		spec.SetOpacity(tc.opacity)
		r, err := p.Render(spec)
		if err != nil {
			t.Fatal(err)
		}
		if c := r.Image.NRGBAAt(1, 1); c.A != tc.alpha || c.R != 255 {
			t.Errorf("opacity %d: want alpha %d, got %v", tc.opacity, tc.alpha, c)
		}
	}
}

func TestRenderText(t *testing.T) {
	p := NewPipeline(nil)
	r, err := p.Render(NewSpec(TextMark{Content: "Hello", Size: 24, Color: red}))
	if err != nil {
		t.Fatal(err)
	}
	size := r.Size()
	if size.X <= 0 || size.Y <= 0 {
		t.Fatalf("empty text raster %v", size)
	}
	var inked bool
	for i := 3; i < len(r.Image.Pix); i += 4 {
		if r.Image.Pix[i] != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Error("text raster has no visible pixels")
	}

	grown, err := p.Render(NewSpec(TextMark{Content: "Hello", Size: 24, Color: red, BorderWidth: 10, BorderHeight: 6}))
	if err != nil {
		t.Fatal(err)
	}
	if got := grown.Size(); got != size.Add(image.Pt(10, 6)) {
		t.Errorf("border deltas: want %v, got %v", size.Add(image.Pt(10, 6)), got)
	}

	empty, err := p.Render(NewSpec(TextMark{Size: 24, BorderWidth: 12, BorderHeight: 7}))
	if err != nil {
		t.Fatal(err)
	}
	if got := empty.Size(); got != image.Pt(12, 7) {
		t.Errorf("empty text: want 12x7, got %v", got)
	}
}

func TestRenderTextDegenerate(t *testing.T) {
	p := NewPipeline(nil)
	_, err := p.Render(NewSpec(TextMark{Content: "Hello", Size: 24, BorderWidth: -10000}))
	var dse *DegenerateSizeError
	if !errors.As(err, &dse) {
		t.Fatalf("want *DegenerateSizeError, got %v", err)
	}
	if !errors.Is(err, ErrDegenerateSize) {
		t.Error("DegenerateSizeError must match ErrDegenerateSize")
	}
	if dse.MinWidthDelta() != -dse.Measured.X+1 || dse.Measured.X <= 0 {
		t.Fatalf("unexpected error %+v", dse)
	}

	r, err := p.Render(NewSpec(TextMark{Content: "Hello", Size: 24, BorderWidth: dse.MinWidthDelta()}))
	if err != nil {
		t.Fatalf("minimum delta %d rejected: %v", dse.MinWidthDelta(), err)
	}
	if r.Size().X != 1 {
		t.Errorf("want width 1, got %d", r.Size().X)
	}
	if _, err := p.Render(NewSpec(TextMark{Content: "Hello", Size: 24, BorderWidth: dse.MinWidthDelta() - 1})); !errors.Is(err, ErrDegenerateSize) {
		t.Errorf("delta %d must be rejected, got %v", dse.MinWidthDelta()-1, err)
	}
}

func TestRenderInvalid(t *testing.T) {
	p := NewPipeline(nil)
	garbage := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	text := TextMark{Content: "a", Size: 12}

	testCase := []struct {
		spec Spec
		err  error
	}{
		{Spec{Scale: 1, Opacity: 100}, ErrInvalidWatermark},
		{NewSpec(ImageMark{Path: garbage}), ErrInvalidWatermark},
		{NewSpec(ImageMark{Path: garbage}), ErrUnreadableImage},
		{NewSpec(ImageMark{Path: filepath.Join(t.TempDir(), "missing.png")}), ErrUnreadableImage},
		{Spec{Source: text, Scale: 1, Opacity: 101}, ErrInvalidOpacity},
		{Spec{Source: text, Scale: 1, Opacity: -1}, ErrInvalidOpacity},
		{Spec{Source: text, Opacity: 100}, ErrInvalidScale},
		{Spec{Source: text, Scale: -2, Opacity: 100}, ErrInvalidScale},
		{NewSpec(TextMark{Content: "a"}), ErrInvalidWatermark},
		{NewSpec(TextMark{Content: "a", Size: 12, Family: "Comic Sans"}), ErrFontNotFound},
		{NewSpec(TextMark{Content: "a", Size: 12, Style: "Black"}), ErrFontNotFound},
	}

	for i, tc := range testCase {
		if _, err := p.Render(tc.spec); !errors.Is(err, tc.err) {
			t.Errorf("#%d: want %v, got %v", i, tc.err, err)
		}
	}
}

func TestRasterMark(t *testing.T) {
	path := writeMark(t, solid(40, 20, red))
	spec := NewSpec(ImageMark{Path: path})
	spec.SetScale(0.5)
	r, err := NewPipeline(nil).Render(spec)
	if err != nil {
		t.Fatal(err)
	}
	r.Image = r.rotated
	if got := r.Mark().Bounds().Size(); got != image.Pt(20, 10) {
		t.Errorf("want 20x10, got %v", got)
	}
	if got := r.Preview(Scale{X: 2, Y: 2}).Bounds().Size(); got != image.Pt(10, 5) {
		t.Errorf("want 10x5 preview, got %v", got)
	}
}
