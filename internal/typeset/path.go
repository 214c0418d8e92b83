package typeset

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/fxarena/arena/effect"
)

// SegmentOp is the kind of a path segment.
type SegmentOp uint8

const (
	OpMoveTo SegmentOp = iota
	OpLineTo
	OpQuadTo
	OpCubicTo
	OpClose
)

// Segment is one path element. MoveTo and LineTo use Pts[0], QuadTo
// uses Pts[0..1] and CubicTo Pts[0..2]; the last used point is the end
// point.
type Segment struct {
	Op  SegmentOp
	Pts [3]gg.Point
}

// Path is a glyph path in user space.
type Path []Segment

// AppendTo adds p to the current path of dc.
func (p Path) AppendTo(dc *gg.Context) {
	for _, s := range p {
		switch s.Op {
		case OpMoveTo:
			dc.MoveTo(s.Pts[0].X, s.Pts[0].Y)
		case OpLineTo:
			dc.LineTo(s.Pts[0].X, s.Pts[0].Y)
		case OpQuadTo:
			dc.QuadraticTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y)
		case OpCubicTo:
			dc.CubicTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y, s.Pts[2].X, s.Pts[2].Y)
		case OpClose:
			dc.ClosePath()
		}
	}
}

// Map returns p with every point passed through fn. Control points are
// mapped like end points.
func (p Path) Map(fn func(gg.Point) gg.Point) Path {
	out := make(Path, len(p))
	for i, s := range p {
		out[i].Op = s.Op
		for j, pt := range s.Pts {
			out[i].Pts[j] = fn(pt)
		}
	}
	return out
}

type outlineKey struct {
	src  *text.FontSource
	gid  text.GlyphID
	size float64
}

func (l *Layout) outline(src *text.FontSource, gid text.GlyphID, size float64) *text.GlyphOutline {
	k := outlineKey{src, gid, size}
	l.mu.Lock()
	defer l.mu.Unlock()
	if o, ok := l.outlines[k]; ok {
		return o
	}
	o, err := l.extractor.ExtractOutline(src.Parsed(), gid, size)
	if err != nil {
		effect.Logger().Debug("typeset: no outline", "glyph", gid, "err", err)
		o = nil
	}
	l.outlines[k] = o
	return o
}

// appendGlyph adds the outline of g, with its origin at (x, y), to p.
// Every contour is closed.
func (l *Layout) appendGlyph(p Path, r *Run, g Glyph, x, y float64) Path {
	o := l.outline(r.Source, g.ID, r.Size)
	if o == nil || len(o.Segments) == 0 {
		return p
	}
	ox, oy := x+g.X, y+g.Y
	pt := func(q text.OutlinePoint) gg.Point { return gg.Pt(ox+float64(q.X), oy+float64(q.Y)) }
	open := false
	for _, s := range o.Segments {
		var seg Segment
		switch s.Op {
		case text.OutlineOpMoveTo:
			if open {
				p = append(p, Segment{Op: OpClose})
			}
			open = true
			seg = Segment{Op: OpMoveTo, Pts: [3]gg.Point{pt(s.Points[0])}}
		case text.OutlineOpLineTo:
			seg = Segment{Op: OpLineTo, Pts: [3]gg.Point{pt(s.Points[0])}}
		case text.OutlineOpQuadTo:
			seg = Segment{Op: OpQuadTo, Pts: [3]gg.Point{pt(s.Points[0]), pt(s.Points[1])}}
		case text.OutlineOpCubicTo:
			seg = Segment{Op: OpCubicTo, Pts: [3]gg.Point{pt(s.Points[0]), pt(s.Points[1]), pt(s.Points[2])}}
		default:
			continue
		}
		p = append(p, seg)
	}
	if open {
		p = append(p, Segment{Op: OpClose})
	}
	return p
}

// LinePath returns the outlines of line i with the left end of its
// baseline at (x, y). Alignment is not applied.
func (l *Layout) LinePath(i int, x, y float64) Path {
	if i < 0 || i >= len(l.lines) {
		return nil
	}
	var p Path
	ln := &l.lines[i]
	for ri := range ln.Runs {
		r := &ln.Runs[ri]
		for _, g := range r.Glyphs {
			p = l.appendGlyph(p, r, g, x, y)
		}
	}
	return p
}

// Path returns the outlines of every line with the top-left corner of
// the layout at (x, y).
func (l *Layout) Path(x, y float64) Path {
	var p Path
	for i := range l.lines {
		ln := &l.lines[i]
		p = append(p, l.LinePath(i, x+ln.X, y+ln.Baseline())...)
	}
	return p
}

// AppendPath adds the outlines of the whole layout to the current path.
func (l *Layout) AppendPath(dc *gg.Context, x, y float64) {
	l.Path(x, y).AppendTo(dc)
}

// AppendLinePath adds the outlines of one line to the current path.
func (l *Layout) AppendLinePath(dc *gg.Context, line int, x, y float64) {
	l.LinePath(line, x, y).AppendTo(dc)
}

// Polyline is a flattened path.
type Polyline []gg.Point

// ArcPolyline flattens the arc of radius r around (cx, cy) from angle a1
// to a2 (radians, clockwise in y-down space) into chords no longer than
// tolerance away from the true arc.
func ArcPolyline(cx, cy, r, a1, a2, tolerance float64) Polyline {
	for a2 < a1 {
		a2 += 2 * math.Pi
	}
	if r <= 0 {
		return Polyline{gg.Pt(cx, cy)}
	}
	if tolerance <= 0 {
		tolerance = 0.1
	}
	step := math.Pi / 4
	if tolerance < r {
		step = 2 * math.Acos(1-tolerance/r)
	}
	n := max(1, int(math.Ceil((a2-a1)/step)))
	out := make(Polyline, 0, n+1)
	for i := 0; i <= n; i++ {
		a := a1 + (a2-a1)*float64(i)/float64(n)
		out = append(out, gg.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a)))
	}
	return out
}

// Length returns the total length of the polyline.
func (pl Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(pl); i++ {
		total += math.Hypot(pl[i].X-pl[i-1].X, pl[i].Y-pl[i-1].Y)
	}
	return total
}

// PointAt maps a point of a straight text path onto pl: the x
// coordinate becomes the distance along pl and y the offset along the
// segment normal. Distances beyond the end extend the last segment.
func (pl Polyline) PointAt(p gg.Point) gg.Point {
	if len(pl) < 2 {
		if len(pl) == 1 {
			return gg.Pt(pl[0].X+p.X, pl[0].Y+p.Y)
		}
		return p
	}
	d := p.X
	i := 1
	for ; i < len(pl)-1; i++ {
		seg := math.Hypot(pl[i].X-pl[i-1].X, pl[i].Y-pl[i-1].Y)
		if d <= seg {
			break
		}
		d -= seg
	}
	a, b := pl[i-1], pl[i]
	dx, dy := b.X-a.X, b.Y-a.Y
	seg := math.Hypot(dx, dy)
	if seg == 0 {
		return gg.Pt(a.X, a.Y+p.Y)
	}
	t := d / seg
	x := a.X + dx*t
	y := a.Y + dy*t
	k := p.Y / seg
	return gg.Pt(x-dy*k, y+dx*k)
}

// MapPathOnto warps p along pl and appends the result to dc.
func MapPathOnto(dc *gg.Context, pl Polyline, p Path) {
	p.Map(pl.PointAt).AppendTo(dc)
}
