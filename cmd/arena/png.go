package main

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/internal/pixel"
)

// readPNG decodes path into a premultiplied float host image with comps.
// The PNG's top row lands at the top of the image.
func readPNG(path string, comps effect.PixelComponents) (*effect.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := png.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return toHost(src, comps)
}

func toHost(src image.Image, comps effect.PixelComponents) (*effect.Image, error) {
	buf := pixel.FromImage(src)
	buf.Premultiply()
	img, err := effect.NewImage(effect.RectI{X2: buf.W, Y2: buf.H}, effect.BitDepthFloat, comps)
	if err != nil {
		return nil, err
	}
	if err := pixel.ToHost(buf, img, img.Bounds); err != nil {
		return nil, err
	}
	return img, nil
}

// writePNG stores img as a straight 16-bit PNG.
func writePNG(path string, img *effect.Image) error {
	buf, err := pixel.FromHost(img, img.Bounds)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := png.Encode(w, buf.ToNRGBA64()); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
