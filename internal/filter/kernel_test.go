package filter

import (
	"math"
	"testing"
)

func TestGaussianKernelIdentity(t *testing.T) {
	for _, w := range []int{0, 1, -3} {
		kernel := GaussianKernel(w, 1)
		if len(kernel) != 1 || kernel[0] != 1.0 {
			t.Errorf("GaussianKernel(%d, 1) = %v, want [1]", w, kernel)
		}
	}
}

func TestGaussianKernelNormalized(t *testing.T) {
	tests := []struct {
		width int
		sigma float64
	}{
		{3, 0.5}, {5, 1}, {9, 1}, {15, 3}, {31, 10},
	}

	for _, tt := range tests {
		kernel := GaussianKernel(tt.width, tt.sigma)
		if len(kernel) != tt.width {
			t.Errorf("GaussianKernel(%d, %v) len = %d, want %d", tt.width, tt.sigma, len(kernel), tt.width)
		}

		var sum float32
		for _, v := range kernel {
			sum += v
		}
		if math.Abs(float64(sum)-1.0) > 0.001 {
			t.Errorf("GaussianKernel(%d, %v) sum = %v, want ~1.0", tt.width, tt.sigma, sum)
		}
	}
}

func TestGaussianKernelSymmetric(t *testing.T) {
	kernel := GaussianKernel(11, 2)
	n := len(kernel)

	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if math.Abs(float64(kernel[i]-kernel[j])) > 0.0001 {
			t.Errorf("kernel[%d] = %v != kernel[%d] = %v (asymmetric)", i, kernel[i], j, kernel[j])
		}
	}
}

func TestGaussianKernelPeakAtCenter(t *testing.T) {
	kernel := GaussianKernel(11, 2)
	center := KernelCenter(len(kernel))

	maxIdx := 0
	for i, v := range kernel {
		if v > kernel[maxIdx] {
			maxIdx = i
		}
	}
	if maxIdx != center {
		t.Errorf("kernel peak at %d, want %d (center)", maxIdx, center)
	}
}

func TestBoxKernel(t *testing.T) {
	if k := BoxKernel(0); len(k) != 1 || k[0] != 1 {
		t.Errorf("BoxKernel(0) = %v, want [1]", k)
	}

	kernel := BoxKernel(3)
	if len(kernel) != 7 {
		t.Fatalf("BoxKernel(3) len = %d, want 7", len(kernel))
	}
	for i, v := range kernel {
		if math.Abs(float64(v)-1.0/7.0) > 0.0001 {
			t.Errorf("BoxKernel(3)[%d] = %v, want %v", i, v, 1.0/7.0)
		}
	}
}

func TestOptimalKernelWidth(t *testing.T) {
	tests := []struct {
		radius, sigma float64
		want          int
	}{
		{1, 0.5, 3},
		{2.5, 1, 7},
		{10, 0, 21},
		{0, 0, 3},
		{0, 0.5, 5},
		{0, 1, 9},
		{0, -1, 9},
	}

	for _, tt := range tests {
		got := OptimalKernelWidth(tt.radius, tt.sigma)
		if got != tt.want {
			t.Errorf("OptimalKernelWidth(%v, %v) = %d, want %d", tt.radius, tt.sigma, got, tt.want)
		}
	}
}

func TestOptimalKernelWidthGrowsWithSigma(t *testing.T) {
	prev := 0
	for _, s := range []float64{0.5, 1, 2, 5, 10, 30} {
		w := OptimalKernelWidth(0, s)
		if w%2 != 1 {
			t.Errorf("OptimalKernelWidth(0, %v) = %d, want odd", s, w)
		}
		if w < prev {
			t.Errorf("OptimalKernelWidth(0, %v) = %d, shrank from %d", s, w, prev)
		}
		prev = w
	}
}

func TestCachedGaussianKernel(t *testing.T) {
	k1 := CachedGaussianKernel(2.0)
	k2 := CachedGaussianKernel(2.0)

	if len(k1) != OptimalKernelWidth(0, 2) {
		t.Errorf("CachedGaussianKernel(2) len = %d, want %d", len(k1), OptimalKernelWidth(0, 2))
	}
	if len(k1) != len(k2) {
		t.Fatalf("cached kernel len mismatch: %d != %d", len(k1), len(k2))
	}
	for i := range k1 {
		if k1[i] != k2[i] {
			t.Errorf("cached kernel[%d] mismatch: %v != %v", i, k1[i], k2[i])
		}
	}

	if k3 := CachedGaussianKernel(10.0); len(k3) <= len(k1) {
		t.Errorf("sigma 10 kernel len = %d, want more than %d", len(k3), len(k1))
	}
}

func TestKernelCenter(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{1, 0},
		{3, 1},
		{5, 2},
		{31, 15},
	}

	for _, tt := range tests {
		if got := KernelCenter(tt.size); got != tt.want {
			t.Errorf("KernelCenter(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func BenchmarkCachedGaussianKernel(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = CachedGaussianKernel(5)
	}
}
