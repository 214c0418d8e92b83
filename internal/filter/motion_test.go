package filter

import (
	"image"
	"math"
	"testing"
)

func TestMotionKernelOffsets(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		step  image.Point
	}{
		{"right", 0, image.Pt(1, 0)},
		{"down", 90, image.Pt(0, 1)},
		{"left", 180, image.Pt(-1, 0)},
		{"up", -90, image.Pt(0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, offsets := MotionKernel(3, 1, tt.angle)
			if len(offsets) != 7 {
				t.Fatalf("len(offsets) = %d, want 7", len(offsets))
			}
			for i, o := range offsets {
				want := tt.step.Mul(i)
				if o != want {
					t.Errorf("offsets[%d] = %v, want %v", i, o, want)
				}
			}
		})
	}
}

func TestMotionKernelDiagonal(t *testing.T) {
	_, offsets := MotionKernel(2, 1, 45)
	for i, o := range offsets {
		if o.X != o.Y {
			t.Errorf("offsets[%d] = %v, want equal components", i, o)
		}
	}
	if last := offsets[len(offsets)-1]; last.X != 3 {
		t.Errorf("last offset = %v, want (3,3)", last)
	}
}

func TestMotionKernelWeights(t *testing.T) {
	weights, _ := MotionKernel(0, 2, 0)
	var sum float64
	for i, w := range weights {
		sum += float64(w)
		if i > 0 && w > weights[i-1] {
			t.Errorf("weights[%d] = %v grows past weights[%d] = %v", i, w, i-1, weights[i-1])
		}
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Errorf("sum of weights = %v, want 1", sum)
	}
}

func TestMotionBlurBufferIdentity(t *testing.T) {
	src := quad()
	out := MotionBlurBuffer(src, 0, 0, 30)

	for i := range src.Pix {
		if !near(float64(out.Pix[i]), float64(src.Pix[i]), 1e-6) {
			t.Fatalf("Pix[%d] = %v, want %v", i, out.Pix[i], src.Pix[i])
		}
	}
}

func TestMotionBlurBufferStep(t *testing.T) {
	src := step(10, 5)
	weights, _ := MotionKernel(2, 1, 0)
	out := MotionBlurBuffer(src, 2, 1, 0)

	tests := []struct {
		x     int
		alpha float64
	}{
		{0, 0},
		{4, 1 - float64(weights[0])},
		{5, 1},
		{9, 1},
	}
	for _, tt := range tests {
		if got := out.Pixel(tt.x, 0)[3]; !near(float64(got), tt.alpha, 1e-5) {
			t.Errorf("alpha at x=%d = %v, want %v", tt.x, got, tt.alpha)
		}
	}
}

func TestMotionBlurBufferStraightIgnoresTransparent(t *testing.T) {
	src := step(6, 3)
	// Transparent pixels carry a color that must not bleed in.
	for x := 0; x < 3; x++ {
		copy(src.Pixel(x, 0), []float32{1, 0, 0, 0})
	}
	src.Premultiplied = false

	out := MotionBlurBuffer(src, 2, 1, 180)
	p := out.Pixel(3, 0)
	if !near(float64(p[0]), 1, 1e-5) || !near(float64(p[1]), 1, 1e-5) {
		t.Errorf("straight color at x=3 = %v, want white", p)
	}
	if p[3] >= 1 {
		t.Errorf("alpha at x=3 = %v, want partial coverage", p[3])
	}
}
