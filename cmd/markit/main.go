package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sunshineplan/markit"
	"github.com/sunshineplan/progressbar"
	"github.com/sunshineplan/utils/log"
	"github.com/vharitonsky/iniflags"
	"golang.org/x/sync/errgroup"
)

var (
	src     = flag.String("src", "", "")
	dst     = flag.String("dst", "output", "")
	force   = flag.Bool("force", false, "")
	quality = flag.Int("quality", 95, "")
	worker  = flag.Int("worker", 5, "")
	preview = flag.Bool("preview", false, "")
	debug   = flag.Bool("debug", false, "")
	limit   = flag.Int("max-pixels", 0, "")

	mark      = flag.String("mark", "", "")
	text      = flag.String("text", "", "")
	fontDir   = flag.String("font-dir", "", "")
	family    = flag.String("family", markit.DefaultFamily, "")
	style     = flag.String("style", markit.DefaultStyle, "")
	size      = flag.Float64("size", 24, "")
	textColor = flag.String("color", "#ffffff", "")
	bgColor   = flag.String("background", "", "")
	borderW   = flag.Int("border-w", 0, "")
	borderH   = flag.Int("border-h", 0, "")
	textX     = flag.Int("text-x", 0, "")
	textY     = flag.Int("text-y", 0, "")

	rotate  = flag.Float64("rotate", 0, "")
	scale   = flag.Float64("scale", 1, "")
	opacity = flag.Int("opacity", 100, "")

	boxW    = flag.Int("box-w", markit.DefaultConfig.Box.X, "")
	boxH    = flag.Int("box-h", markit.DefaultConfig.Box.Y, "")
	margin  = flag.Int("margin", markit.DefaultConfig.Margin.X, "")
	snap    = flag.Bool("snap", false, "")
	grid    = flag.Bool("grid", false, "")
	spacing = flag.Int("spacing", 0, "")
	shiftH  = flag.Int("shift-h", 0, "")
	shiftV  = flag.Int("shift-v", 0, "")

	format      = markit.Format(-1)
	compression = markit.TIFFLZW
	at          *image.Point
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	fmt.Println(`
  --src
		source file or directory
  --dst
		destination directory (default: output)
  --force
		force overwrite (default: false)
  --format
		output format (jpg, jpeg, png, gif, tif, tiff, bmp and pdf are supported, default: same as source)
  --quality
		set jpeg or pdf quality (range 1-100, default: 95)
  --compression
		set tiff compression type (none, lzw, deflate, default: lzw)
  --mark
		watermark image path
  --text
		watermark text, used when --mark is empty
  --font-dir
		directory searched for font files besides the built-in Go fonts
  --family, --style, --size
		text font family, style and size in points (default: Go Regular 24)
  --color, --background
		text color and optional background color (#rrggbb or #rrggbbaa)
  --border-w, --border-h
		grow (or crop when negative) the text box
  --text-x, --text-y
		text offset inside its box
  --rotate
		rotation in degrees, counter-clockwise
  --scale
		watermark scale factor (default: 1)
  --opacity
		watermark opacity (range 0-100, default: 100)
  --at
		pointer position "x,y" on the preview canvas, the watermark is centered on it (default: image center)
  --box-w, --box-h, --margin
		preview canvas size and margin (default: 800x500, 10)
  --snap
		snap to the image border when --at falls outside of it
  --grid, --spacing
		repeat the watermark on a grid with the given spacing (may be negative)
  --shift-h, --shift-v
		nudge the watermark by a fixed number of source pixels
  --max-pixels
		skip images with more pixels than this (default: 0, no limit)
  --preview
		write the preview canvas instead of the full resolution result
  --worker
		number of images processed at the same time (default: 5)`)
}

func main() {
	var code int
	defer func() { os.Exit(code) }()

	self, err := os.Executable()
	if err != nil {
		log.Error("Failed to get self path", "error", err)
		code = 1
		return
	}

	flag.Usage = usage
	flag.TextVar(&format, "format", markit.Format(-1), "")
	flag.TextVar(&compression, "compression", markit.TIFFLZW, "")
	flag.Func("at", "", func(s string) error {
		var p image.Point
		if _, err := fmt.Sscanf(s, "%d,%d", &p.X, &p.Y); err != nil {
			return fmt.Errorf("invalid position %q: %w", s, err)
		}
		at = &p
		return nil
	})
	iniflags.SetConfigFile(filepath.Join(filepath.Dir(self), "config.ini"))
	iniflags.SetAllowMissingConfigFile(true)
	iniflags.Parse()

	t, err := newTask()
	if err != nil {
		log.Error("Invalid options", "error", err)
		code = 1
		return
	}

	srcInfo, err := os.Stat(*src)
	if err != nil {
		log.Error("Failed to get FileInfo", "name", *src, "error", err)
		code = 1
		return
	}
	if err := os.MkdirAll(*dst, 0755); err != nil {
		log.Error("Failed to create directory", "path", *dst, "error", err)
		code = 1
		return
	}

	switch mode := srcInfo.Mode(); {
	case mode.IsDir():
		images := loadImages(*src)
		log.Info("Found images", "total", len(images))
		pb := progressbar.New(len(images))
		pb.Start()
		var g errgroup.Group
		g.SetLimit(*worker)
		var failed int
		results := make([]error, len(images))
		for i, path := range images {
			g.Go(func() error {
				defer pb.Add(1)
				rel, err := filepath.Rel(*src, path)
				if err != nil {
					results[i] = err
					return nil
				}
				results[i] = t.run(path, filepath.Join(*dst, rel), *force)
				return nil
			})
		}
		g.Wait()
		pb.Done()
		for i, err := range results {
			switch {
			case err == nil:
				if *debug {
					log.Debug("Converted", "image", images[i])
				}
			case errors.Is(err, errSkip):
				log.Info("Skip", "image", images[i])
			default:
				failed++
			}
		}
		if failed > 0 {
			log.Error("Some images failed", "failed", failed, "total", len(images))
			code = 1
		}
	case mode.IsRegular():
		if err := t.run(*src, filepath.Join(*dst, filepath.Base(*src)), *force); err != nil {
			if errors.Is(err, errSkip) {
				log.Error("Destination already exist", "image", *src)
			}
			code = 1
			return
		}
	default:
		log.Error("Unknown source", "name", *src, "mode", mode&fs.ModeType)
		code = 1
		return
	}
	log.Info("Done")
}
