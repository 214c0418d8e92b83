package filter

import (
	"image"
	"math"

	"github.com/disintegration/gift"
	"golang.org/x/image/math/f64"

	"github.com/fxarena/arena/internal/pixel"
	"github.com/fxarena/arena/internal/threads"
)

// PolarRadius returns the largest radius, measured from the image
// center, that stays inside a w by h image.
func PolarRadius(w, h int) float64 {
	return math.Min(float64(w), float64(h)) / 2
}

// polarSide is the side of the square best-fit Polar output. The
// circle of radius r is padded by one pixel on each side.
func polarSide(r float64) int {
	return int(math.Ceil(2*r)) + 2
}

// Polar returns a filter that wraps the image around its center, the
// top row becoming the center and the bottom row the rim. The output is
// a square fitting the circle.
func Polar(method VirtualPixel) gift.Filter {
	return bufferFilter{
		bounds: func(r image.Rectangle) image.Rectangle {
			s := polarSide(PolarRadius(r.Dx(), r.Dy()))
			return image.Rect(0, 0, s, s)
		},
		apply: func(src *pixel.Buffer) *pixel.Buffer { return PolarBuffer(src, method) },
	}
}

// DePolar returns the inverse of Polar. The output keeps the input size.
func DePolar(method VirtualPixel) gift.Filter {
	return bufferFilter{apply: func(src *pixel.Buffer) *pixel.Buffer {
		return DePolarBuffer(src, method)
	}}
}

// PolarBuffer maps cartesian rows and columns to radius and angle. Angle
// zero points down and angles run the full circle.
func PolarBuffer(src *pixel.Buffer, method VirtualPixel) *pixel.Buffer {
	s := &Sampler{Buf: src, Method: method}
	cx := float64(src.W) / 2
	cy := float64(src.H) / 2
	r := PolarRadius(src.W, src.H)
	side := polarSide(r)
	dst := pixel.New(side, side)
	dst.Premultiplied = src.Premultiplied
	if r < epsilon {
		return dst
	}
	x0 := math.Floor(cx - r - 0.5)
	y0 := math.Floor(cy - r - 0.5)
	c6 := float64(src.W) / (2 * math.Pi)
	c7 := float64(src.H) / r

	threads.ParallelRows(side, func(ya, yb int) {
		for j := ya; j < yb; j++ {
			dy := y0 + float64(j) + 0.5 - cy
			for i := 0; i < side; i++ {
				dx := x0 + float64(i) + 0.5 - cx
				sx := math.Atan2(dx, dy)*c6 + float64(src.W)/2
				sy := math.Hypot(dx, dy) * c7
				p := s.Sample(sx, sy)
				copy(dst.Pixel(i, j), p[:])
			}
		}
	})
	return dst
}

// DePolarBuffer unwraps a polar image back to rows and columns.
func DePolarBuffer(src *pixel.Buffer, method VirtualPixel) *pixel.Buffer {
	s := &Sampler{Buf: src, Method: method}
	cx := float64(src.W) / 2
	cy := float64(src.H) / 2
	r := PolarRadius(src.W, src.H)
	dst := pixel.New(src.W, src.H)
	dst.Premultiplied = src.Premultiplied
	if src.W == 0 || src.H == 0 {
		return dst
	}
	c6 := 2 * math.Pi / float64(src.W)
	c7 := r / float64(src.H)

	threads.ParallelRows(src.H, func(ya, yb int) {
		for j := ya; j < yb; j++ {
			rad := (float64(j) + 0.5) * c7
			for i := 0; i < src.W; i++ {
				a := (float64(i)+0.5)*c6 - math.Pi
				p := s.Sample(rad*math.Sin(a)+cx, rad*math.Cos(a)+cy)
				copy(dst.Pixel(i, j), p[:])
			}
		}
	})
	return dst
}

// RotateMatrix returns the affine map from output to source coordinates
// for a clockwise rotation of angle degrees about (cx, cy) in top-down
// coordinates.
func RotateMatrix(angle, cx, cy float64) f64.Aff3 {
	a := angle * math.Pi / 180
	c, s := math.Cos(a), math.Sin(a)
	return f64.Aff3{
		c, s, cx - cx*c - cy*s,
		-s, c, cy + cx*s - cy*c,
	}
}

// RotateAbout returns a filter that rotates the image about (cx, cy)
// without changing its size.
func RotateAbout(angle, cx, cy float64, method VirtualPixel) gift.Filter {
	return bufferFilter{apply: func(src *pixel.Buffer) *pixel.Buffer {
		return RotateAboutBuffer(src, angle, cx, cy, method)
	}}
}

// RotateAboutBuffer is the buffer form of RotateAbout.
func RotateAboutBuffer(src *pixel.Buffer, angle, cx, cy float64, method VirtualPixel) *pixel.Buffer {
	return Affine(src, RotateMatrix(angle, cx, cy), method)
}

// Affine resamples src through m, which maps output pixel positions to
// source positions. The output has the size of src.
func Affine(src *pixel.Buffer, m f64.Aff3, method VirtualPixel) *pixel.Buffer {
	s := &Sampler{Buf: src, Method: method}
	dst := pixel.New(src.W, src.H)
	dst.Premultiplied = src.Premultiplied
	threads.ParallelRows(src.H, func(ya, yb int) {
		for j := ya; j < yb; j++ {
			y := float64(j) + 0.5
			for i := 0; i < src.W; i++ {
				x := float64(i) + 0.5
				p := s.Sample(m[0]*x+m[1]*y+m[2], m[3]*x+m[4]*y+m[5])
				copy(dst.Pixel(i, j), p[:])
			}
		}
	})
	return dst
}

// ScaleToHeight box-scales src to height h, keeping the aspect ratio.
func ScaleToHeight(src *pixel.Buffer, h int) *pixel.Buffer {
	if h <= 0 || src.H == h {
		return src.Clone()
	}
	return Apply(src, gift.Resize(0, h, gift.BoxResampling))
}

// Extent places src centered on a transparent w by h canvas, cropping
// whatever does not fit.
func Extent(src *pixel.Buffer, w, h int) *pixel.Buffer {
	dst := pixel.New(w, h)
	dst.Premultiplied = src.Premultiplied
	ox := (w - src.W) / 2
	oy := (h - src.H) / 2
	for y := 0; y < h; y++ {
		sy := y - oy
		if sy < 0 || sy >= src.H {
			continue
		}
		for x := 0; x < w; x++ {
			sx := x - ox
			if sx < 0 || sx >= src.W {
				continue
			}
			copy(dst.Pixel(x, y), src.Pixel(sx, sy))
		}
	}
	return dst
}
