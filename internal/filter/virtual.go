package filter

import (
	"math"

	hwyimage "github.com/ajroetker/go-highway/hwy/contrib/image"

	"github.com/fxarena/arena/internal/pixel"
)

// VirtualPixel selects how pixels outside the image are synthesized
// when a distortion samples beyond the edges.
type VirtualPixel int

// Virtual pixel methods, in ImageMagick order.
const (
	VirtualUndefined VirtualPixel = iota
	VirtualBackground
	VirtualBlack
	VirtualCheckerTile
	VirtualDither
	VirtualEdge
	VirtualGray
	VirtualHorizontalTile
	VirtualHorizontalTileEdge
	VirtualMirror
	VirtualRandom
	VirtualTile
	VirtualTransparent
	VirtualVerticalTile
	VirtualVerticalTileEdge
	VirtualWhite
)

var virtualNames = [...]string{
	"Undefined", "Background", "Black", "CheckerTile", "Dither", "Edge",
	"Gray", "HorizontalTile", "HorizontalTileEdge", "Mirror", "Random",
	"Tile", "Transparent", "VerticalTile", "VerticalTileEdge", "White",
}

// VirtualPixelNames lists the method names in enum order.
func VirtualPixelNames() []string {
	return append([]string(nil), virtualNames[:]...)
}

func (v VirtualPixel) String() string {
	if v < 0 || int(v) >= len(virtualNames) {
		return "Undefined"
	}
	return virtualNames[v]
}

// ditherMatrix is the ordered 8x8 matrix used for Dither offsets.
var ditherMatrix = [64]int{
	0, 48, 12, 60, 3, 51, 15, 63,
	32, 16, 44, 28, 35, 19, 47, 31,
	8, 56, 4, 52, 11, 59, 7, 55,
	40, 24, 36, 20, 43, 27, 39, 23,
	2, 50, 14, 62, 1, 49, 13, 61,
	34, 18, 46, 30, 33, 17, 45, 29,
	10, 58, 6, 54, 9, 57, 5, 53,
	42, 26, 38, 22, 41, 25, 37, 21,
}

// Sampler reads pixels from Buf, resolving coordinates outside the
// buffer with Method. Background is used by VirtualBackground and
// defaults to transparent black.
type Sampler struct {
	Buf        *pixel.Buffer
	Method     VirtualPixel
	Background [4]float32
}

// At returns the pixel at integer coordinates.
func (s *Sampler) At(x, y int) [4]float32 {
	b := s.Buf
	if b.W == 0 || b.H == 0 {
		return [4]float32{}
	}
	if x >= 0 && x < b.W && y >= 0 && y < b.H {
		return s.get(x, y)
	}
	switch s.Method {
	case VirtualUndefined, VirtualEdge:
		return s.get(hwyimage.Clamp(x, b.W), hwyimage.Clamp(y, b.H))
	case VirtualBackground:
		return s.Background
	case VirtualBlack:
		return s.opaque(0)
	case VirtualGray:
		return s.opaque(0.5)
	case VirtualWhite:
		return s.opaque(1)
	case VirtualTransparent:
		return [4]float32{}
	case VirtualMirror:
		return s.get(hwyimage.Mirror(x, b.W), hwyimage.Mirror(y, b.H))
	case VirtualTile:
		return s.get(hwyimage.Wrap(x, b.W), hwyimage.Wrap(y, b.H))
	case VirtualCheckerTile:
		if (floorDiv(x, b.W)+floorDiv(y, b.H))&1 != 0 {
			return s.Background
		}
		return s.get(hwyimage.Wrap(x, b.W), hwyimage.Wrap(y, b.H))
	case VirtualHorizontalTile:
		if y < 0 || y >= b.H {
			return s.Background
		}
		return s.get(hwyimage.Wrap(x, b.W), y)
	case VirtualVerticalTile:
		if x < 0 || x >= b.W {
			return s.Background
		}
		return s.get(x, hwyimage.Wrap(y, b.H))
	case VirtualHorizontalTileEdge:
		return s.get(hwyimage.Wrap(x, b.W), hwyimage.Clamp(y, b.H))
	case VirtualVerticalTileEdge:
		return s.get(hwyimage.Clamp(x, b.W), hwyimage.Wrap(y, b.H))
	case VirtualDither:
		d := ditherMatrix[(y&7)*8+(x&7)]*64/63 - 32
		return s.get(hwyimage.Clamp(x+d, b.W), hwyimage.Clamp(y+d, b.H))
	case VirtualRandom:
		h := hash2(x, y)
		return s.get(int(h%uint32(b.W)), int((h>>16)%uint32(b.H)))
	}
	return [4]float32{}
}

// Sample interpolates bilinearly at continuous coordinates, where pixel
// (x, y) covers [x, x+1) and its center is at x+0.5.
func (s *Sampler) Sample(fx, fy float64) [4]float32 {
	fx -= 0.5
	fy -= 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := float32(fx - x0)
	ty := float32(fy - y0)
	ix, iy := int(x0), int(y0)

	p00 := s.At(ix, iy)
	p10 := s.At(ix+1, iy)
	p01 := s.At(ix, iy+1)
	p11 := s.At(ix+1, iy+1)
	var out [4]float32
	for c := range out {
		top := p00[c] + (p10[c]-p00[c])*tx
		bot := p01[c] + (p11[c]-p01[c])*tx
		out[c] = top + (bot-top)*ty
	}
	return out
}

func (s *Sampler) get(x, y int) [4]float32 {
	p := s.Buf.Pixel(x, y)
	return [4]float32{p[0], p[1], p[2], p[3]}
}

// opaque returns a gray level with full alpha, which is the same in
// straight and premultiplied form.
func (s *Sampler) opaque(v float32) [4]float32 {
	return [4]float32{v, v, v, 1}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// hash2 mixes a coordinate pair into a well distributed 32-bit value.
func hash2(x, y int) uint32 {
	h := uint32(x)*0x9e3779b1 ^ uint32(y)*0x85ebca77
	h ^= h >> 15
	h *= 0x2c1b3c6d
	h ^= h >> 12
	h *= 0x297a2d39
	h ^= h >> 15
	return h
}
