package effect

import "math"

// Infinite bounds used by effects whose output has no natural extent.
const (
	InfiniteMin = math.MinInt32
	InfiniteMax = math.MaxInt32
)

// RectI is an integer pixel rectangle, [X1,X2) x [Y1,Y2), y up.
type RectI struct {
	X1, Y1, X2, Y2 int
}

// Width returns X2-X1.
func (r RectI) Width() int { return r.X2 - r.X1 }

// Height returns Y2-Y1.
func (r RectI) Height() int { return r.Y2 - r.Y1 }

// Empty reports whether r has no area.
func (r RectI) Empty() bool { return r.X1 >= r.X2 || r.Y1 >= r.Y2 }

// Contains reports whether o lies completely inside r.
func (r RectI) Contains(o RectI) bool {
	return o.X1 >= r.X1 && o.X2 <= r.X2 && o.Y1 >= r.Y1 && o.Y2 <= r.Y2
}

// Intersect returns the intersection of r and o (possibly empty).
func (r RectI) Intersect(o RectI) RectI {
	out := RectI{
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
		X2: min(r.X2, o.X2),
		Y2: min(r.Y2, o.Y2),
	}
	if out.Empty() {
		return RectI{}
	}
	return out
}

// RectD is a rectangle in canonical coordinates.
type RectD struct {
	X1, Y1, X2, Y2 float64
}

// Width returns X2-X1.
func (r RectD) Width() float64 { return r.X2 - r.X1 }

// Height returns Y2-Y1.
func (r RectD) Height() float64 { return r.Y2 - r.Y1 }

// IsInfinite reports whether any edge of r is at an infinite bound.
func (r RectD) IsInfinite() bool {
	return r.X1 <= InfiniteMin || r.Y1 <= InfiniteMin || r.X2 >= InfiniteMax || r.Y2 >= InfiniteMax
}

// InfiniteRect returns the infinite region of definition.
func InfiniteRect() RectD {
	return RectD{X1: InfiniteMin, Y1: InfiniteMin, X2: InfiniteMax, Y2: InfiniteMax}
}

// ToPixel converts canonical coordinates to pixel coordinates at the
// given render scale and pixel aspect ratio, rounding outwards.
func (r RectD) ToPixel(s Scale, par float64) RectI {
	if par <= 0 {
		par = 1
	}
	return RectI{
		X1: int(math.Floor(r.X1 * s.X / par)),
		Y1: int(math.Floor(r.Y1 * s.Y)),
		X2: int(math.Ceil(r.X2 * s.X / par)),
		Y2: int(math.Ceil(r.Y2 * s.Y)),
	}
}

// ToCanonical converts pixel coordinates to canonical coordinates.
func (r RectI) ToCanonical(s Scale, par float64) RectD {
	if par <= 0 {
		par = 1
	}
	return RectD{
		X1: float64(r.X1) * par / s.X,
		Y1: float64(r.Y1) / s.Y,
		X2: float64(r.X2) * par / s.X,
		Y2: float64(r.Y2) / s.Y,
	}
}

// Scale is a render scale (proxy factor) per axis.
type Scale struct {
	X, Y float64
}

// UnitScale is the full-resolution render scale.
var UnitScale = Scale{X: 1, Y: 1}

// IsUnit reports whether s is 1 on both axes.
func (s Scale) IsUnit() bool { return s.X == 1 && s.Y == 1 }
