package filter

import (
	"image"
	"math"

	hwyimage "github.com/ajroetker/go-highway/hwy/contrib/image"
	"github.com/disintegration/gift"

	"github.com/fxarena/arena/internal/pixel"
	"github.com/fxarena/arena/internal/threads"
)

// MotionKernel returns the one-sided Gaussian weights and the pixel
// offsets ImageMagick uses for a motion blur. Tap i samples the pixel
// at (x+offsets[i].X, y+offsets[i].Y); angle 0 blurs towards +x and
// angles grow clockwise in top-down coordinates.
func MotionKernel(radius, sigma, angle float64) (weights []float32, offsets []image.Point) {
	width := OptimalKernelWidth(radius, sigma)
	s := math.Max(math.Abs(sigma), epsilon)
	w := make([]float64, width)
	sum := 0.0
	for i := range w {
		w[i] = math.Exp(-float64(i*i)/(2*s*s)) / (math.Sqrt(2*math.Pi) * s)
		sum += w[i]
	}
	weights = make([]float32, width)
	for i := range w {
		weights[i] = float32(w[i] / sum)
	}

	a := angle * math.Pi / 180
	px := float64(width) * math.Sin(a)
	py := float64(width) * math.Cos(a)
	h := math.Hypot(px, py)
	offsets = make([]image.Point, width)
	for i := range offsets {
		offsets[i] = image.Point{
			X: int(math.Ceil(float64(i)*py/h - 0.5)),
			Y: int(math.Ceil(float64(i)*px/h - 0.5)),
		}
	}
	return weights, offsets
}

// MotionBlur returns a filter that smears pixels along angle degrees.
func MotionBlur(radius, sigma, angle float64) gift.Filter {
	return bufferFilter{apply: func(src *pixel.Buffer) *pixel.Buffer {
		return MotionBlurBuffer(src, radius, sigma, angle)
	}}
}

// MotionBlurBuffer blurs src. Colors are weighted by alpha while
// accumulating, so transparent pixels do not darken their neighbours;
// for premultiplied buffers that weighting is already in the samples.
// Samples outside the buffer repeat the nearest edge pixel.
func MotionBlurBuffer(src *pixel.Buffer, radius, sigma, angle float64) *pixel.Buffer {
	weights, offsets := MotionKernel(radius, sigma, angle)
	dst := pixel.New(src.W, src.H)
	dst.Premultiplied = src.Premultiplied

	threads.ParallelRows(src.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < src.W; x++ {
				var r, g, b, a, gamma float32
				for i, k := range weights {
					sx := hwyimage.Clamp(x+offsets[i].X, src.W)
					sy := hwyimage.Clamp(y+offsets[i].Y, src.H)
					p := src.Pixel(sx, sy)
					a += k * p[3]
					if src.Premultiplied {
						r += k * p[0]
						g += k * p[1]
						b += k * p[2]
						continue
					}
					ka := k * p[3]
					r += ka * p[0]
					g += ka * p[1]
					b += ka * p[2]
					gamma += ka
				}
				switch {
				case src.Premultiplied:
				case gamma > epsilon:
					inv := 1 / gamma
					r, g, b = r*inv, g*inv, b*inv
				default:
					r, g, b = 0, 0, 0
				}
				out := dst.Pixel(x, y)
				out[0], out[1], out[2], out[3] = r, g, b, a
			}
		}
	})
	return dst
}
