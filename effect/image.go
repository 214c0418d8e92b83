package effect

import (
	"errors"
	"fmt"
)

// ErrImageFormat is returned when an image's depth or layout is unusable.
var ErrImageFormat = errors.New("effect: unsupported image format")

// Image is a host-owned pixel buffer. Exactly one of Float, Short or Byte
// backs it, matching Depth. Rows run bottom-up: row 0 is Bounds.Y1.
type Image struct {
	Bounds      RectI
	RoD         RectI
	RenderScale Scale
	Field       Field
	Depth       BitDepth
	Components  PixelComponents
	Premult     PreMultiplication
	PixelAspect float64

	Float []float32
	Short []uint16
	Byte  []uint8
}

// NewImage allocates a zeroed image covering bounds.
func NewImage(bounds RectI, depth BitDepth, comps PixelComponents) (*Image, error) {
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrImageFormat, bounds)
	}
	n := bounds.Width() * bounds.Height() * comps.Count()
	if n == 0 {
		return nil, fmt.Errorf("%w: components %s", ErrImageFormat, comps)
	}
	img := &Image{
		Bounds:      bounds,
		RoD:         bounds,
		RenderScale: UnitScale,
		Depth:       depth,
		Components:  comps,
		Premult:     PreMultPreMultiplied,
		PixelAspect: 1,
	}
	switch depth {
	case BitDepthFloat:
		img.Float = make([]float32, n)
	case BitDepthUShort:
		img.Short = make([]uint16, n)
	case BitDepthUByte:
		img.Byte = make([]uint8, n)
	default:
		return nil, fmt.Errorf("%w: depth %s", ErrImageFormat, depth)
	}
	return img, nil
}

// RowElems returns the number of samples per row.
func (im *Image) RowElems() int { return im.Bounds.Width() * im.Components.Count() }

// RowBytes returns the byte stride of a row.
func (im *Image) RowBytes() int {
	switch im.Depth {
	case BitDepthFloat:
		return im.RowElems() * 4
	case BitDepthUShort:
		return im.RowElems() * 2
	default:
		return im.RowElems()
	}
}

// Contains reports whether (x, y) lies inside the image bounds.
func (im *Image) Contains(x, y int) bool {
	return x >= im.Bounds.X1 && x < im.Bounds.X2 && y >= im.Bounds.Y1 && y < im.Bounds.Y2
}

// PixelOffset returns the sample index of pixel (x, y), or -1 if the
// pixel is outside the bounds.
func (im *Image) PixelOffset(x, y int) int {
	if !im.Contains(x, y) {
		return -1
	}
	return ((y-im.Bounds.Y1)*im.Bounds.Width() + (x - im.Bounds.X1)) * im.Components.Count()
}

// FloatPixel returns the samples of a pixel of a Float image, or nil.
func (im *Image) FloatPixel(x, y int) []float32 {
	off := im.PixelOffset(x, y)
	if off < 0 || im.Float == nil {
		return nil
	}
	return im.Float[off : off+im.Components.Count()]
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	out := *im
	out.Float = append([]float32(nil), im.Float...)
	out.Short = append([]uint16(nil), im.Short...)
	out.Byte = append([]uint8(nil), im.Byte...)
	return &out
}

// CopyFrom copies the overlapping area of src into im. Both images must
// share depth and components.
func (im *Image) CopyFrom(src *Image) error {
	if src.Depth != im.Depth || src.Components != im.Components {
		return fmt.Errorf("%w: copy %s/%s into %s/%s", ErrImageFormat, src.Depth, src.Components, im.Depth, im.Components)
	}
	area := im.Bounds.Intersect(src.Bounds)
	if area.Empty() {
		return nil
	}
	n := area.Width() * im.Components.Count()
	for y := area.Y1; y < area.Y2; y++ {
		d, s := im.PixelOffset(area.X1, y), src.PixelOffset(area.X1, y)
		switch im.Depth {
		case BitDepthFloat:
			copy(im.Float[d:d+n], src.Float[s:s+n])
		case BitDepthUShort:
			copy(im.Short[d:d+n], src.Short[s:s+n])
		default:
			copy(im.Byte[d:d+n], src.Byte[s:s+n])
		}
	}
	return nil
}
