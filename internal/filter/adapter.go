package filter

import (
	"image"
	"image/draw"

	"github.com/disintegration/gift"

	"github.com/fxarena/arena/internal/pixel"
)

// bufferFilter lifts a buffer operation into a gift.Filter. When gift
// hands over pixel buffers no conversion happens.
type bufferFilter struct {
	bounds func(image.Rectangle) image.Rectangle
	apply  func(*pixel.Buffer) *pixel.Buffer
}

var _ gift.Filter = bufferFilter{}

func (f bufferFilter) Bounds(src image.Rectangle) image.Rectangle {
	if f.bounds == nil {
		return image.Rect(0, 0, src.Dx(), src.Dy())
	}
	return f.bounds(src)
}

func (f bufferFilter) Draw(dst draw.Image, src image.Image, _ *gift.Options) {
	in, ok := src.(*pixel.Buffer)
	if !ok {
		in = pixel.FromImage(src)
	}
	out := f.apply(in)
	if d, ok := dst.(*pixel.Buffer); ok && d.W == out.W && d.H == out.H {
		copy(d.Pix, out.Pix)
		d.Premultiplied = out.Premultiplied
		return
	}
	r := dst.Bounds()
	for y := 0; y < min(r.Dy(), out.H); y++ {
		for x := 0; x < min(r.Dx(), out.W); x++ {
			dst.Set(r.Min.X+x, r.Min.Y+y, out.At(x, y))
		}
	}
}

// Apply runs filters over src with gift and returns a new buffer.
func Apply(src *pixel.Buffer, filters ...gift.Filter) *pixel.Buffer {
	g := gift.New(filters...)
	b := g.Bounds(src.Bounds())
	dst := pixel.New(b.Dx(), b.Dy())
	dst.Premultiplied = src.Premultiplied
	g.Draw(dst, src)
	return dst
}
