package markit

import (
	"errors"
	"image"
	"testing"
)

func TestFitToBox(t *testing.T) {
	testCase := []struct {
		native, box, margin image.Point
		want                image.Point
	}{
		{image.Pt(200, 200), image.Pt(800, 500), image.Pt(10, 10), image.Pt(480, 480)},
		{image.Pt(4000, 3000), image.Pt(800, 500), image.Pt(10, 10), image.Pt(640, 480)},
		{image.Pt(3000, 1000), image.Pt(800, 500), image.Pt(10, 10), image.Pt(780, 260)},
		{image.Pt(300, 200), image.Pt(400, 300), image.Pt(10, 10), image.Pt(380, 253)},
		{image.Pt(100, 100), image.Pt(100, 100), image.Pt(0, 0), image.Pt(100, 100)},
	}

	for i, tc := range testCase {
		got, err := FitToBox(tc.native, tc.box, tc.margin)
		if err != nil {
			t.Fatalf("#%d: %v", i, err)
		}
		if got != tc.want {
			t.Errorf("#%d: want %v, got %v", i, tc.want, got)
		}
	}
}

func TestFitToBoxInvalid(t *testing.T) {
	for i, tc := range []struct {
		native, box, margin image.Point
	}{
		{image.Pt(0, 100), image.Pt(800, 500), image.Pt(10, 10)},
		{image.Pt(100, -1), image.Pt(800, 500), image.Pt(10, 10)},
		{image.Pt(100, 100), image.Pt(20, 500), image.Pt(10, 10)},
		{image.Pt(100000, 1), image.Pt(800, 500), image.Pt(10, 10)},
	} {
		if _, err := FitToBox(tc.native, tc.box, tc.margin); !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("#%d: want ErrInvalidDimension, got %v", i, err)
		}
	}
}

func TestDatum(t *testing.T) {
	testCase := []struct {
		box, content, want image.Point
	}{
		{image.Pt(800, 500), image.Pt(480, 480), image.Pt(160, 10)},
		{image.Pt(400, 300), image.Pt(380, 253), image.Pt(10, 23)},
		{image.Pt(100, 100), image.Pt(103, 100), image.Pt(-2, 0)},
	}

	for i, tc := range testCase {
		if got := Datum(tc.box, tc.content); got != tc.want {
			t.Errorf("#%d: want %v, got %v", i, tc.want, got)
		}
	}
}

func TestScaleAxesIndependent(t *testing.T) {
	s, err := NewScale(image.Pt(300, 200), image.Pt(380, 253))
	if err != nil {
		t.Fatal(err)
	}
	if s.X == s.Y {
		t.Fatalf("expected different axis scales, got %v", s)
	}
	if _, err := NewScale(image.Pt(300, 200), image.Pt(0, 253)); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("want ErrInvalidDimension, got %v", err)
	}
}

func TestSizeRoundTrip(t *testing.T) {
	for _, native := range []image.Point{
		image.Pt(200, 200),
		image.Pt(700, 450),
		image.Pt(1500, 900),
		image.Pt(1201, 959),
	} {
		vp, err := NewViewport(native, image.Pt(800, 500), image.Pt(10, 10))
		if err != nil {
			t.Fatal(err)
		}
		for w := 1; w <= 400; w += 3 {
			for h := 1; h <= 400; h += 7 {
				got := ToSource(ToDisplaySize(image.Pt(w, h), vp.Scale), vp.Scale)
				if d := got.Sub(image.Pt(w, h)); abs(d.X) > 1 || abs(d.Y) > 1 {
					t.Fatalf("native %v: %dx%d came back as %v (scale %v)", native, w, h, got, vp.Scale)
				}
			}
		}
	}
}

func TestSizeRoundTripLargeScale(t *testing.T) {
	vp, err := NewViewport(image.Pt(4000, 2000), image.Pt(800, 500), image.Pt(10, 10))
	if err != nil {
		t.Fatal(err)
	}
	// 780x390 on the canvas, about 5.13 source pixels per display pixel
	bound := vp.Scale.X/2 + 0.5
	for w := 6; w <= 1200; w += 11 {
		got := ToSource(ToDisplaySize(image.Pt(w, w), vp.Scale), vp.Scale)
		if d := float64(abs(got.X - w)); d > bound {
			t.Fatalf("%d came back as %d, off by more than %.2f", w, got.X, bound)
		}
	}
}

func TestViewport(t *testing.T) {
	vp, err := NewViewport(image.Pt(200, 200), image.Pt(800, 500), image.Pt(10, 10))
	if err != nil {
		t.Fatal(err)
	}
	if vp.Display != image.Pt(480, 480) || vp.Datum != image.Pt(160, 10) {
		t.Fatalf("unexpected viewport %+v", vp)
	}
	if r := vp.Rect(); r != image.Rect(160, 10, 640, 490) {
		t.Errorf("unexpected rect %v", r)
	}
	if p := vp.ToSource(image.Pt(400, 250)); p != image.Pt(100, 100) {
		t.Errorf("want (100,100), got %v", p)
	}
	if p := vp.ToCanvas(image.Pt(100, 100)); p != image.Pt(400, 250) {
		t.Errorf("want (400,250), got %v", p)
	}
	if s := vp.DisplaySize(image.Pt(50, 50)); s != image.Pt(120, 120) {
		t.Errorf("want 120x120, got %v", s)
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
