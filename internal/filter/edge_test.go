package filter

import "testing"

func TestEdgeKernel(t *testing.T) {
	tests := []struct {
		radius float64
		width  int
	}{
		{0, 5},
		{1, 3},
		{2, 5},
	}

	for _, tt := range tests {
		k, w := EdgeKernel(tt.radius)
		if w != tt.width || len(k) != w*w {
			t.Errorf("EdgeKernel(%v) width = %d len = %d, want width %d", tt.radius, w, len(k), tt.width)
			continue
		}
		var sum float32
		for _, v := range k {
			sum += v
		}
		if sum != 0 {
			t.Errorf("EdgeKernel(%v) sum = %v, want 0", tt.radius, sum)
		}
		if c := k[len(k)/2]; c != float32(w*w-1) {
			t.Errorf("EdgeKernel(%v) center = %v, want %d", tt.radius, c, w*w-1)
		}
	}
}

func TestEdgeBufferFlat(t *testing.T) {
	src := solid(6, 6, 0.5, 0.5, 0.5, 1)
	out := EdgeBuffer(src, 1)

	if out.W != 6 || out.H != 6 {
		t.Fatalf("EdgeBuffer size = %dx%d, want 6x6", out.W, out.H)
	}
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			if p := out.Pixel(x, y); !nearPixel(p, [4]float32{0, 0, 0, 1}, 1e-3) {
				t.Errorf("EdgeBuffer flat (%d,%d) = %v, want black opaque", x, y, p)
			}
		}
	}
}

func TestEdgeBufferHighlightsDot(t *testing.T) {
	src := solid(5, 5, 0, 0, 0, 1)
	copy(src.Pixel(2, 2), []float32{1, 1, 1, 1})
	out := EdgeBuffer(src, 1)

	if p := out.Pixel(2, 2); !nearPixel(p, [4]float32{1, 1, 1, 1}, 1e-3) {
		t.Errorf("EdgeBuffer dot center = %v, want white", p)
	}
	// Neighbours see -1 times the dot and clamp to zero.
	if p := out.Pixel(1, 2); !nearPixel(p, [4]float32{0, 0, 0, 1}, 1e-3) {
		t.Errorf("EdgeBuffer dot neighbour = %v, want black", p)
	}
	if !out.Premultiplied {
		t.Error("EdgeBuffer lost the premultiplied flag")
	}
}
