package filter

import (
	"math"

	"github.com/fxarena/arena/internal/pixel"
)

// Test helper functions shared across filter tests.

// solid returns a premultiplied buffer filled with one straight color.
func solid(w, h int, r, g, b, a float32) *pixel.Buffer {
	buf := pixel.New(w, h)
	buf.Fill(r*a, g*a, b*a, a)
	return buf
}

// quad returns the 2x2 buffer
//
//	red   green
//	blue  white
func quad() *pixel.Buffer {
	buf := pixel.New(2, 2)
	copy(buf.Pixel(0, 0), []float32{1, 0, 0, 1})
	copy(buf.Pixel(1, 0), []float32{0, 1, 0, 1})
	copy(buf.Pixel(0, 1), []float32{0, 0, 1, 1})
	copy(buf.Pixel(1, 1), []float32{1, 1, 1, 1})
	return buf
}

// near reports whether a and b differ by at most tol.
func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// nearPixel compares four samples with tolerance.
func nearPixel(got []float32, want [4]float32, tol float64) bool {
	for i := range want {
		if !near(float64(got[i]), float64(want[i]), tol) {
			return false
		}
	}
	return true
}

// step returns a w x 1 premultiplied buffer that is transparent left of
// edge and opaque white from edge on.
func step(w, edge int) *pixel.Buffer {
	buf := pixel.New(w, 1)
	for x := edge; x < w; x++ {
		copy(buf.Pixel(x, 0), []float32{1, 1, 1, 1})
	}
	return buf
}
