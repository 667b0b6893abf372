package markit_test

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"

	"github.com/sunshineplan/markit"
)

func Example() {
	// A 200x200 source image shown inside the default 800x500 preview canvas.
	src := image.NewNRGBA(image.Rect(0, 0, 200, 200))

	s := markit.NewSession(markit.DefaultConfig)
	if err := s.SetImage(src); err != nil {
		log.Fatalf("failed to set image: %v", err)
	}
	fmt.Println("display:", s.Viewport().Rect())

	// Text watermark, drawn at half opacity.
	spec := markit.NewSpec(markit.TextMark{
		Content: "markit",
		Size:    12,
		Color:   color.NRGBA{255, 255, 255, 255},
	})
	spec.SetOpacity(50)
	if _, err := s.SetMark(spec); err != nil {
		log.Fatalf("failed to render watermark: %v", err)
	}

	// Click beyond the bottom-left corner of the displayed image with snapping on.
	s.SetSnap(true)
	p, err := s.Click(image.Pt(100, 495))
	if err != nil {
		log.Fatalf("failed to place watermark: %v", err)
	}
	fmt.Println("snap:", p.Snap.Region, p.Snap.Point)

	// Write the resulting image as TIFF.
	dst, err := s.Render()
	if err != nil {
		log.Fatalf("failed to render: %v", err)
	}
	if err := markit.Write(io.Discard, dst, &markit.FormatOption{Format: markit.TIFF}); err != nil {
		log.Fatalf("failed to write image: %v", err)
	}
	// Output:
	// display: (160,10)-(640,490)
	// snap: bottom-left (0,200)
}
