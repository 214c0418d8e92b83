package pixel

import (
	"errors"
	"fmt"
	"math"

	"github.com/ajroetker/go-highway/hwy/contrib/vec"

	"github.com/fxarena/arena/effect"
)

var (
	// ErrWindowOutside is returned when a window is not inside the image bounds.
	ErrWindowOutside = errors.New("pixel: window outside image bounds")

	// ErrSizeMismatch is returned when a buffer and a window differ in size.
	ErrSizeMismatch = errors.New("pixel: size mismatch")
)

// FromHost reads window of img into a top-down buffer. RGB pixels get
// alpha 1 and Alpha pixels become (0,0,0,a). Integer depths are
// normalized to [0,1].
func FromHost(img *effect.Image, window effect.RectI) (*Buffer, error) {
	if !img.Bounds.Contains(window) || window.Empty() {
		return nil, fmt.Errorf("%w: %v not in %v", ErrWindowOutside, window, img.Bounds)
	}
	if img.Depth == effect.BitDepthHalf || img.Depth == effect.BitDepthNone {
		return nil, fmt.Errorf("%w: depth %s", effect.ErrImageFormat, img.Depth)
	}
	w, h := window.Width(), window.Height()
	b := &Buffer{
		W:             w,
		H:             h,
		Pix:           make([]float32, w*h*4),
		Premultiplied: img.Premult != effect.PreMultUnPreMultiplied,
	}
	nc := img.Components.Count()
	for y := 0; y < h; y++ {
		hostY := window.Y2 - 1 - y
		src := img.PixelOffset(window.X1, hostY)
		dst := b.Pix[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			s := src + x*nc
			d := dst[x*4 : x*4+4]
			switch img.Components {
			case effect.PixelComponentRGBA:
				d[0], d[1], d[2], d[3] = sample(img, s), sample(img, s+1), sample(img, s+2), sample(img, s+3)
			case effect.PixelComponentRGB:
				d[0], d[1], d[2], d[3] = sample(img, s), sample(img, s+1), sample(img, s+2), img.Depth.MaxValue()
			case effect.PixelComponentAlpha:
				d[3] = sample(img, s)
			}
		}
	}
	if full := img.Depth.MaxValue(); full != 1 {
		vec.BaseScale(1/full, b.Pix)
	}
	return b, nil
}

func sample(img *effect.Image, i int) float32 {
	switch img.Depth {
	case effect.BitDepthFloat:
		return img.Float[i]
	case effect.BitDepthUShort:
		return float32(img.Short[i])
	default:
		return float32(img.Byte[i])
	}
}

// ToHost writes buf into window of dst, flipping it back to bottom-up
// rows and converting to the destination depth and components.
func ToHost(buf *Buffer, dst *effect.Image, window effect.RectI) error {
	if !dst.Bounds.Contains(window) || window.Empty() {
		return fmt.Errorf("%w: %v not in %v", ErrWindowOutside, window, dst.Bounds)
	}
	if buf.W != window.Width() || buf.H != window.Height() {
		return fmt.Errorf("%w: buffer %dx%d, window %dx%d", ErrSizeMismatch, buf.W, buf.H, window.Width(), window.Height())
	}
	nc := dst.Components.Count()
	full := dst.Depth.MaxValue()
	for y := 0; y < buf.H; y++ {
		off := dst.PixelOffset(window.X1, window.Y2-1-y)
		row := buf.Pix[y*buf.W*4 : (y+1)*buf.W*4]
		for x := 0; x < buf.W; x++ {
			p := row[x*4 : x*4+4]
			o := off + x*nc
			switch dst.Components {
			case effect.PixelComponentRGBA:
				store(dst, o, p[0], full)
				store(dst, o+1, p[1], full)
				store(dst, o+2, p[2], full)
				store(dst, o+3, p[3], full)
			case effect.PixelComponentRGB:
				store(dst, o, p[0], full)
				store(dst, o+1, p[1], full)
				store(dst, o+2, p[2], full)
			case effect.PixelComponentAlpha:
				store(dst, o, p[3], full)
			default:
				return fmt.Errorf("%w: components %s", effect.ErrImageFormat, dst.Components)
			}
		}
	}
	return nil
}

func store(img *effect.Image, i int, v, full float32) {
	switch img.Depth {
	case effect.BitDepthFloat:
		img.Float[i] = v
	case effect.BitDepthUShort:
		img.Short[i] = uint16(math.Round(float64(clamp01(v) * full)))
	case effect.BitDepthUByte:
		img.Byte[i] = uint8(math.Round(float64(clamp01(v) * full)))
	}
}
