// Package filter implements the image operations behind the Magick
// effects: convolution kernels, edge detection, motion blur, virtual
// pixel addressing, polar distortion and drop shadows.
//
// Operations work on top-down float buffers from the pixel package.
// The ones that fit the gift pipeline model are also exposed as
// gift.Filter values, so they can be chained with gift's own filters:
//
//	g := gift.New(filter.MotionBlur(2, 3, 45), gift.Crop(r))
//	g.Draw(dst, src)
//
// Results follow ImageMagick's definitions (kernel widths, sample
// offsets, virtual pixel rules) so that renders match the Magick++
// based plugins they replace.
package filter
