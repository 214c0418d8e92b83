// Package pixel converts between host images and the top-down float RGBA
// buffers the filters and rasterizers work on.
package pixel

import (
	"image"
	"image/color"
	"math"
)

// Buffer is a top-down RGBA float32 plane. Samples are nominally in
// [0,1]; Premultiplied tells whether color is scaled by alpha.
type Buffer struct {
	W, H          int
	Pix           []float32
	Premultiplied bool
}

// New allocates a transparent buffer.
func New(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]float32, w*h*4), Premultiplied: true}
}

// Stride returns the number of samples per row.
func (b *Buffer) Stride() int { return b.W * 4 }

// Offset returns the sample index of (x, y).
func (b *Buffer) Offset(x, y int) int { return (y*b.W + x) * 4 }

// Pixel returns the four samples at (x, y).
func (b *Buffer) Pixel(x, y int) []float32 {
	o := b.Offset(x, y)
	return b.Pix[o : o+4 : o+4]
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = append([]float32(nil), b.Pix...)
	return &c
}

// Crop copies the pixels of r, which must lie inside the buffer.
func (b *Buffer) Crop(r image.Rectangle) *Buffer {
	r = r.Intersect(image.Rect(0, 0, b.W, b.H))
	c := &Buffer{W: r.Dx(), H: r.Dy(), Pix: make([]float32, r.Dx()*r.Dy()*4), Premultiplied: b.Premultiplied}
	for y := 0; y < c.H; y++ {
		o := b.Offset(r.Min.X, r.Min.Y+y)
		copy(c.Pix[y*c.Stride():(y+1)*c.Stride()], b.Pix[o:o+c.Stride()])
	}
	return c
}

// Paste copies src into b with its top-left corner at (dx, dy). Pixels
// falling outside b are dropped.
func (b *Buffer) Paste(src *Buffer, dx, dy int) {
	r := image.Rect(dx, dy, dx+src.W, dy+src.H).Intersect(image.Rect(0, 0, b.W, b.H))
	if r.Empty() {
		return
	}
	n := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		o := b.Offset(r.Min.X, y)
		copy(b.Pix[o:o+n], src.Pix[src.Offset(r.Min.X-dx, y-dy):])
	}
}

// Fill sets every pixel to (r, g, b, a).
func (b *Buffer) Fill(r, g, bl, a float32) {
	for i := 0; i < len(b.Pix); i += 4 {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
	}
}

// FlipV mirrors the buffer vertically in place.
func (b *Buffer) FlipV() {
	s := b.Stride()
	tmp := make([]float32, s)
	for y := 0; y < b.H/2; y++ {
		top := b.Pix[y*s : (y+1)*s]
		bot := b.Pix[(b.H-1-y)*s : (b.H-y)*s]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
}

// Premultiply scales color by alpha. It is a no-op on premultiplied buffers.
func (b *Buffer) Premultiply() {
	if b.Premultiplied {
		return
	}
	for i := 0; i < len(b.Pix); i += 4 {
		a := b.Pix[i+3]
		b.Pix[i] *= a
		b.Pix[i+1] *= a
		b.Pix[i+2] *= a
	}
	b.Premultiplied = true
}

// Unpremultiply divides color by alpha. Fully transparent pixels become
// transparent black.
func (b *Buffer) Unpremultiply() {
	if !b.Premultiplied {
		return
	}
	for i := 0; i < len(b.Pix); i += 4 {
		a := b.Pix[i+3]
		if a <= 0 {
			b.Pix[i], b.Pix[i+1], b.Pix[i+2] = 0, 0, 0
			continue
		}
		b.Pix[i] /= a
		b.Pix[i+1] /= a
		b.Pix[i+2] /= a
	}
	b.Premultiplied = false
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.NRGBA64Model }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.W, b.H) }

// At implements image.Image. Values are clamped to [0,1].
func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return color.NRGBA64{}
	}
	p := b.Pixel(x, y)
	r, g, bl, a := p[0], p[1], p[2], p[3]
	if b.Premultiplied && a > 0 {
		r, g, bl = r/a, g/a, bl/a
	}
	return color.NRGBA64{R: to16(r), G: to16(g), B: to16(bl), A: to16(a)}
}

// Set implements draw.Image.
func (b *Buffer) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	p := b.Pixel(x, y)
	if b.Premultiplied {
		r, g, bl, a := c.RGBA()
		p[0], p[1], p[2], p[3] = float32(r)/0xffff, float32(g)/0xffff, float32(bl)/0xffff, float32(a)/0xffff
		return
	}
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	p[0], p[1], p[2], p[3] = float32(n.R)/0xffff, float32(n.G)/0xffff, float32(n.B)/0xffff, float32(n.A)/0xffff
}

// ToNRGBA64 converts to a straight 16-bit image, the fastest input gift
// accepts.
func (b *Buffer) ToNRGBA64() *image.NRGBA64 {
	img := image.NewNRGBA64(b.Bounds())
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			p := b.Pixel(x, y)
			r, g, bl, a := p[0], p[1], p[2], p[3]
			if b.Premultiplied && a > 0 {
				r, g, bl = r/a, g/a, bl/a
			}
			o := img.PixOffset(x, y)
			put16(img.Pix[o:], r)
			put16(img.Pix[o+2:], g)
			put16(img.Pix[o+4:], bl)
			put16(img.Pix[o+6:], a)
		}
	}
	return img
}

// FromImage converts any image to a straight buffer.
func FromImage(img image.Image) *Buffer {
	r := img.Bounds()
	b := &Buffer{W: r.Dx(), H: r.Dy(), Pix: make([]float32, r.Dx()*r.Dy()*4)}
	if n, ok := img.(*image.NRGBA64); ok {
		for y := 0; y < b.H; y++ {
			for x := 0; x < b.W; x++ {
				o := n.PixOffset(r.Min.X+x, r.Min.Y+y)
				p := b.Pixel(x, y)
				for c := range 4 {
					p[c] = float32(uint16(n.Pix[o+2*c])<<8|uint16(n.Pix[o+2*c+1])) / 0xffff
				}
			}
		}
		return b
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			c := color.NRGBA64Model.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA64)
			p := b.Pixel(x, y)
			p[0], p[1], p[2], p[3] = float32(c.R)/0xffff, float32(c.G)/0xffff, float32(c.B)/0xffff, float32(c.A)/0xffff
		}
	}
	return b
}

func to16(v float32) uint16 {
	return uint16(math.Round(float64(clamp01(v)) * 0xffff))
}

func put16(b []uint8, v float32) {
	u := to16(v)
	b[0], b[1] = uint8(u>>8), uint8(u)
}

func clamp01(v float32) float32 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	}
	return v
}
