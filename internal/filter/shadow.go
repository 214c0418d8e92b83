package filter

import (
	"math"

	"github.com/disintegration/gift"

	"github.com/fxarena/arena/internal/pixel"
	"github.com/fxarena/arena/internal/threads"
)

// DropShadow builds the shadow of src the way ImageMagick's shadow
// operator does:
//  1. Expand the canvas by border = round(2*sigma) on each side
//  2. Take the source alpha scaled by opacity percent
//  3. Blur the alpha with a Gaussian of sigma
//  4. Tint with the shadow color
//
// The result is premultiplied and (2*border) pixels larger than src in
// each dimension.
func DropShadow(src *pixel.Buffer, opacity, sigma float64, color [3]float32) (shadow *pixel.Buffer, border int) {
	border = int(math.Floor(2*sigma + 0.5))
	if border < 0 {
		border = 0
	}
	width := src.W + 2*border
	height := src.H + 2*border

	alpha := make([]float32, width*height)
	extractAlpha(src, alpha, width, border, float32(opacity/100))

	if sigma > 0 {
		blurred := make([]float32, width*height)
		blurAlphaChannel(alpha, blurred, width, height, sigma)
		alpha = blurred
	}

	shadow = pixel.New(width, height)
	for i, a := range alpha {
		a = clamp01(a)
		p := shadow.Pix[i*4 : i*4+4]
		p[0] = color[0] * a
		p[1] = color[1] * a
		p[2] = color[2] * a
		p[3] = a
	}
	return shadow, border
}

// extractAlpha copies the alpha of src, scaled by k, into the center of
// an alpha plane of the given width.
func extractAlpha(src *pixel.Buffer, alpha []float32, width, border int, k float32) {
	for y := 0; y < src.H; y++ {
		row := (y + border) * width
		for x := 0; x < src.W; x++ {
			alpha[row+x+border] = src.Pixel(x, y)[3] * k
		}
	}
}

// blurAlphaChannel applies a separable Gaussian blur to a single-channel
// plane. Samples outside the plane are transparent.
func blurAlphaChannel(src, dst []float32, width, height int, sigma float64) {
	kernel := CachedGaussianKernel(sigma)
	half := KernelCenter(len(kernel))
	temp := make([]float32, width*height)

	threads.ParallelRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				var sum float32
				for k, w := range kernel {
					kx := x + k - half
					if kx < 0 || kx >= width {
						continue
					}
					sum += src[y*width+kx] * w
				}
				temp[y*width+x] = sum
			}
		}
	})

	threads.ParallelRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				var sum float32
				for k, w := range kernel {
					ky := y + k - half
					if ky < 0 || ky >= height {
						continue
					}
					sum += temp[ky*width+x] * w
				}
				dst[y*width+x] = sum
			}
		}
	})
}

// Blur returns a Gaussian blur over all channels.
func Blur(sigma float64) gift.Filter {
	return gift.GaussianBlur(float32(sigma))
}

// Composite draws src over dst with its top-left corner at (dx, dy).
// Both buffers are brought to premultiplied form first; dst stays
// premultiplied afterwards.
func Composite(dst, src *pixel.Buffer, dx, dy int) {
	if !dst.Premultiplied {
		dst.Premultiply()
	}
	if !src.Premultiplied {
		src = src.Clone()
		src.Premultiply()
	}
	for y := 0; y < src.H; y++ {
		ty := y + dy
		if ty < 0 || ty >= dst.H {
			continue
		}
		for x := 0; x < src.W; x++ {
			tx := x + dx
			if tx < 0 || tx >= dst.W {
				continue
			}
			s := src.Pixel(x, y)
			d := dst.Pixel(tx, ty)
			inv := 1 - s[3]
			d[0] = s[0] + d[0]*inv
			d[1] = s[1] + d[1]*inv
			d[2] = s[2] + d[2]*inv
			d[3] = s[3] + d[3]*inv
		}
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
