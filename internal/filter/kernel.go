package filter

import (
	"math"
	"sync"
)

// quantumScale is the smallest perceptible step of a 16-bit quantum.
const quantumScale = 1.0 / 65535

const epsilon = 1.0e-12

// GaussianKernel generates a normalized 1D Gaussian kernel of the given
// width and sigma, centered on the middle tap.
//
// For width <= 1 it returns the identity kernel [1.0].
func GaussianKernel(width int, sigma float64) []float32 {
	if width <= 1 {
		return []float32{1.0}
	}
	sigma = math.Max(math.Abs(sigma), epsilon)
	half := width / 2
	kernel := make([]float32, width)

	twoSigmaSq := 2 * sigma * sigma
	sum := float64(0)
	vals := make([]float64, width)
	for i := range vals {
		x := float64(i - half)
		vals[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += vals[i]
	}
	for i, v := range vals {
		kernel[i] = float32(v / sum)
	}
	return kernel
}

// BoxKernel generates a 1D box (uniform) kernel for the given radius.
// All values are equal: 1/(2*radius+1).
func BoxKernel(radius int) []float32 {
	if radius <= 0 {
		return []float32{1.0}
	}

	size := radius*2 + 1
	kernel := make([]float32, size)
	val := float32(1.0) / float32(size)

	for i := range kernel {
		kernel[i] = val
	}

	return kernel
}

// OptimalKernelWidth returns the kernel width ImageMagick picks for a
// blur with the given radius and sigma. A positive radius wins; otherwise
// the width grows from 5 until the Gaussian tail is imperceptible.
func OptimalKernelWidth(radius, sigma float64) int {
	if radius > epsilon {
		return int(2*math.Ceil(radius) + 1)
	}
	gamma := math.Abs(sigma)
	if gamma <= epsilon {
		return 3
	}
	alpha := 1 / (2 * gamma * gamma)
	beta := 1 / (math.Sqrt(2*math.Pi) * gamma)
	width := 5
	for {
		normalize := 0.0
		j := (width - 1) / 2
		for i := -j; i <= j; i++ {
			normalize += math.Exp(-float64(i*i)*alpha) * beta
		}
		value := math.Exp(-float64(j*j)*alpha) * beta / normalize
		if value < quantumScale || value < epsilon {
			break
		}
		width += 2
	}
	return width - 2
}

// kernelKey quantizes width and sigma so that nearby requests share a
// cached kernel.
type kernelKey struct {
	width int
	sigma int
}

// kernelCache caches computed Gaussian kernels to avoid recomputation.
type kernelCache struct {
	mu     sync.RWMutex
	cache  map[kernelKey][]float32
	maxLen int
}

var defaultKernelCache = newKernelCache(64)

func newKernelCache(maxLen int) *kernelCache {
	return &kernelCache{
		cache:  make(map[kernelKey][]float32),
		maxLen: maxLen,
	}
}

// get retrieves a kernel from cache or generates and caches it.
func (c *kernelCache) get(width int, sigma float64) []float32 {
	key := kernelKey{width, int(sigma * 1000)}

	c.mu.RLock()
	if kernel, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return kernel
	}
	c.mu.RUnlock()

	kernel := GaussianKernel(width, sigma)

	c.mu.Lock()
	if len(c.cache) >= c.maxLen {
		// Simple eviction: clear half the cache.
		count := 0
		for k := range c.cache {
			delete(c.cache, k)
			count++
			if count >= c.maxLen/2 {
				break
			}
		}
	}
	c.cache[key] = kernel
	c.mu.Unlock()

	return kernel
}

// CachedGaussianKernel returns a shared kernel for sigma sized with
// OptimalKernelWidth(0, sigma). Callers must not modify it.
func CachedGaussianKernel(sigma float64) []float32 {
	return defaultKernelCache.get(OptimalKernelWidth(0, sigma), sigma)
}

// KernelCenter returns the center index of a kernel of the given size.
func KernelCenter(kernelSize int) int {
	return kernelSize / 2
}
