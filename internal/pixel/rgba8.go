package pixel

import (
	"image"

	"github.com/ajroetker/go-highway/hwy/contrib/vec"
)

// ChannelOrder is the byte order of an 8-bit pixel.
type ChannelOrder uint8

const (
	// OrderRGBA is the image.RGBA layout used by gg pixmaps.
	OrderRGBA ChannelOrder = iota
	// OrderBGRA is the little-endian ARGB32 layout.
	OrderBGRA
)

// FromRGBA8 converts premultiplied 8-bit pixels to a buffer.
func FromRGBA8(pix []uint8, stride, w, h int, order ChannelOrder) *Buffer {
	b := New(w, h)
	for y := 0; y < h; y++ {
		src := pix[y*stride : y*stride+w*4]
		dst := b.Pix[y*w*4 : (y+1)*w*4]
		for i := 0; i < w*4; i += 4 {
			if order == OrderBGRA {
				dst[i], dst[i+1], dst[i+2] = float32(src[i+2]), float32(src[i+1]), float32(src[i])
			} else {
				dst[i], dst[i+1], dst[i+2] = float32(src[i]), float32(src[i+1]), float32(src[i+2])
			}
			dst[i+3] = float32(src[i+3])
		}
	}
	vec.BaseScale(1.0/255, b.Pix)
	return b
}

// FromRGBA wraps FromRGBA8 for an *image.RGBA.
func FromRGBA(img *image.RGBA) *Buffer {
	r := img.Bounds()
	return FromRGBA8(img.Pix[img.PixOffset(r.Min.X, r.Min.Y):], img.Stride, r.Dx(), r.Dy(), OrderRGBA)
}

// ToRGBA converts to a premultiplied 8-bit image.
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			p := b.Pixel(x, y)
			r, g, bl, a := p[0], p[1], p[2], p[3]
			if !b.Premultiplied {
				r, g, bl = r*a, g*a, bl*a
			}
			o := img.PixOffset(x, y)
			img.Pix[o] = to8(r)
			img.Pix[o+1] = to8(g)
			img.Pix[o+2] = to8(bl)
			img.Pix[o+3] = to8(a)
		}
	}
	return img
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
