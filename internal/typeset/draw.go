package typeset

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/fxarena/arena/internal/markup"
)

// decoration geometry as fractions of the font size
const (
	lineThickness = 1.0 / 14
	underlineDrop = 0.12
	strikeRise    = 0.28
	minDecoration = 1.0
)

// Show fills the layout with its top-left corner at (x, y). Spans without
// a foreground color use fg. Backgrounds are painted before the glyphs,
// underlines and strikethroughs after them.
func (l *Layout) Show(dc *gg.Context, x, y float64, fg markup.Color) error {
	for i := range l.lines {
		ln := &l.lines[i]
		lx := x + ln.X
		for ri := range ln.Runs {
			r := &ln.Runs[ri]
			if !r.Attrs.HasBackground {
				continue
			}
			setColor(dc, r.Attrs.Background)
			dc.DrawRectangle(lx+r.X, y+ln.Top, r.Width, ln.Height())
			if err := dc.Fill(); err != nil {
				return err
			}
		}
	}

	for i := range l.lines {
		ln := &l.lines[i]
		lx := x + ln.X
		base := y + ln.Baseline()
		for ri := range ln.Runs {
			r := &ln.Runs[ri]
			c := fg
			if r.Attrs.HasForeground {
				c = r.Attrs.Foreground
			}
			var p Path
			for _, g := range r.Glyphs {
				p = l.appendGlyph(p, r, g, lx, base)
			}
			p.AppendTo(dc)

			t := math.Max(minDecoration, r.Size*lineThickness)
			if r.Attrs.Underline {
				dc.DrawRectangle(lx+r.X, base+r.Size*underlineDrop-r.Attrs.Rise, r.Width, t)
			}
			if r.Attrs.Strikethrough {
				dc.DrawRectangle(lx+r.X, base-r.Size*strikeRise-r.Attrs.Rise-t/2, r.Width, t)
			}
			setColor(dc, c)
			if err := dc.Fill(); err != nil {
				return err
			}
		}
	}
	return nil
}

func setColor(dc *gg.Context, c markup.Color) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}
