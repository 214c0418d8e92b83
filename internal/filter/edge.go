package filter

import (
	"github.com/disintegration/gift"

	"github.com/fxarena/arena/internal/pixel"
)

// EdgeKernel returns the square edge-detection kernel for radius: every
// tap is -1 except the center, which is width*width-1, so flat areas sum
// to zero. The width is OptimalKernelWidth(radius, 0.5).
func EdgeKernel(radius float64) (kernel []float32, width int) {
	width = OptimalKernelWidth(radius, 0.5)
	kernel = make([]float32, width*width)
	for i := range kernel {
		kernel[i] = -1
	}
	kernel[len(kernel)/2] = float32(width*width - 1)
	return kernel, width
}

// Edge returns a filter that highlights edges. Alpha is left untouched
// and results are clamped to [0,1].
func Edge(radius float64) gift.Filter {
	k, _ := EdgeKernel(radius)
	return gift.Convolution(k, false, false, false, 0)
}

// EdgeBuffer applies Edge to the raw channels of src. The samples are
// convolved as stored, premultiplied or not.
func EdgeBuffer(src *pixel.Buffer, radius float64) *pixel.Buffer {
	raw := *src
	raw.Premultiplied = false
	out := Apply(&raw, Edge(radius))
	out.Premultiplied = src.Premultiplied
	return out
}
