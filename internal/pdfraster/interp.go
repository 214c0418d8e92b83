package pdfraster

import (
	"context"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/wudi/pdfkit/ir/raw"
	"github.com/wudi/pdfkit/ir/semantic"

	"github.com/fxarena/arena/effect"
)

// maxFormDepth bounds nested form XObjects.
const maxFormDepth = 12

// gstate is the PDF graphics state, text state included.
type gstate struct {
	ctm gg.Matrix

	fillCS, strokeCS *colorSpace
	fill, stroke     gg.RGBA
	fillAlpha        float64
	strokeAlpha      float64

	lineWidth  float64
	cap        gg.LineCap
	join       gg.LineJoin
	miterLimit float64
	dash       []float64
	dashPhase  float64

	font       *font
	fontSize   float64
	charSpace  float64
	wordSpace  float64
	hscale     float64
	leading    float64
	rise       float64
	renderMode int
}

func newGState(ctm gg.Matrix) gstate {
	return gstate{
		ctm:         ctm,
		fillCS:      deviceGray,
		strokeCS:    deviceGray,
		fill:        gg.RGBA{A: 1},
		stroke:      gg.RGBA{A: 1},
		fillAlpha:   1,
		strokeAlpha: 1,
		lineWidth:   1,
		miterLimit:  10,
		hscale:      1,
	}
}

// clip rules pending until the next painting operator
const (
	clipNone = iota
	clipNonZero
	clipEvenOdd
)

type interp struct {
	ctx  context.Context
	doc  *Document
	dc   *gg.Context
	base gg.Matrix

	gs    gstate
	saved []gstate
	res   *raw.DictObj
	depth int

	clip     int
	cur      gg.Point
	start    gg.Point
	tm, tlm  gg.Matrix
	fallback *font
}

func (in *interp) save() {
	in.saved = append(in.saved, in.gs)
	in.dc.Push()
}

func (in *interp) restore() {
	if len(in.saved) == 0 {
		return
	}
	in.gs = in.saved[len(in.saved)-1]
	in.saved = in.saved[:len(in.saved)-1]
	in.dc.Pop()
	in.syncMatrix()
}

// syncMatrix makes the context draw in the current user space.
func (in *interp) syncMatrix() {
	in.dc.SetTransform(in.base.Multiply(in.gs.ctm))
}

func (in *interp) run(ops []semantic.Operation) error {
	for i, op := range ops {
		if i%64 == 0 {
			if err := in.ctx.Err(); err != nil {
				return err
			}
		}
		if err := in.exec(op); err != nil {
			return err
		}
	}
	return nil
}

func matrixOf(v []float64) gg.Matrix {
	return gg.Matrix{A: v[0], B: v[2], C: v[4], D: v[1], E: v[3], F: v[5]}
}

func (in *interp) exec(op semantic.Operation) error {
	a := op.Operands
	n := nums(a)
	need := func(k int) bool { return len(n) >= k }

	switch op.Operator {
	// graphics state
	case "q":
		in.save()
	case "Q":
		in.restore()
	case "cm":
		if need(6) {
			in.gs.ctm = in.gs.ctm.Multiply(matrixOf(n))
			in.syncMatrix()
		}
	case "w":
		if need(1) {
			in.gs.lineWidth = n[0]
		}
	case "J":
		if need(1) {
			in.gs.cap = gg.LineCap(max(0, min(2, int(n[0]))))
		}
	case "j":
		if need(1) {
			in.gs.join = gg.LineJoin(max(0, min(2, int(n[0]))))
		}
	case "M":
		if need(1) {
			in.gs.miterLimit = n[0]
		}
	case "d":
		if len(a) >= 2 {
			if arr, ok := a[0].(semantic.ArrayOperand); ok {
				in.gs.dash = nums(arr.Values)
			}
			in.gs.dashPhase = num(a[1])
		}
	case "gs":
		if len(a) >= 1 {
			in.extGState(nameArg(a[0]))
		}
	case "ri", "i":

	// paths
	case "m":
		if need(2) {
			in.cur = gg.Pt(n[0], n[1])
			in.start = in.cur
			in.dc.MoveTo(n[0], n[1])
		}
	case "l":
		if need(2) {
			in.cur = gg.Pt(n[0], n[1])
			in.dc.LineTo(n[0], n[1])
		}
	case "c":
		if need(6) {
			in.dc.CubicTo(n[0], n[1], n[2], n[3], n[4], n[5])
			in.cur = gg.Pt(n[4], n[5])
		}
	case "v":
		if need(4) {
			in.dc.CubicTo(in.cur.X, in.cur.Y, n[0], n[1], n[2], n[3])
			in.cur = gg.Pt(n[2], n[3])
		}
	case "y":
		if need(4) {
			in.dc.CubicTo(n[0], n[1], n[2], n[3], n[2], n[3])
			in.cur = gg.Pt(n[2], n[3])
		}
	case "h":
		in.dc.ClosePath()
		in.cur = in.start
	case "re":
		if need(4) {
			x, y, w, h := n[0], n[1], n[2], n[3]
			in.dc.MoveTo(x, y)
			in.dc.LineTo(x+w, y)
			in.dc.LineTo(x+w, y+h)
			in.dc.LineTo(x, y+h)
			in.dc.ClosePath()
			in.cur, in.start = gg.Pt(x, y), gg.Pt(x, y)
		}

	// painting
	case "S":
		return in.paint(false, true, false)
	case "s":
		in.dc.ClosePath()
		return in.paint(false, true, false)
	case "f", "F":
		return in.paint(true, false, false)
	case "f*":
		return in.paint(true, false, true)
	case "B":
		return in.paint(true, true, false)
	case "B*":
		return in.paint(true, true, true)
	case "b":
		in.dc.ClosePath()
		return in.paint(true, true, false)
	case "b*":
		in.dc.ClosePath()
		return in.paint(true, true, true)
	case "n":
		return in.paint(false, false, false)
	case "W":
		in.clip = clipNonZero
	case "W*":
		in.clip = clipEvenOdd

	// color
	case "g":
		in.gs.fillCS = deviceGray
		in.gs.fill = deviceGray.rgb(n)
	case "G":
		in.gs.strokeCS = deviceGray
		in.gs.stroke = deviceGray.rgb(n)
	case "rg":
		in.gs.fillCS = deviceRGB
		in.gs.fill = deviceRGB.rgb(n)
	case "RG":
		in.gs.strokeCS = deviceRGB
		in.gs.stroke = deviceRGB.rgb(n)
	case "k":
		in.gs.fillCS = deviceCMYK
		in.gs.fill = deviceCMYK.rgb(n)
	case "K":
		in.gs.strokeCS = deviceCMYK
		in.gs.stroke = deviceCMYK.rgb(n)
	case "cs":
		if len(a) >= 1 {
			in.gs.fillCS = in.doc.colorSpace(raw.NameLiteral(nameArg(a[0])), in.res)
			in.gs.fill = in.gs.fillCS.initial()
		}
	case "CS":
		if len(a) >= 1 {
			in.gs.strokeCS = in.doc.colorSpace(raw.NameLiteral(nameArg(a[0])), in.res)
			in.gs.stroke = in.gs.strokeCS.initial()
		}
	case "sc", "scn":
		if len(n) > 0 {
			in.gs.fill = componentSpace(in.gs.fillCS, len(n)).rgb(n)
		}
	case "SC", "SCN":
		if len(n) > 0 {
			in.gs.stroke = componentSpace(in.gs.strokeCS, len(n)).rgb(n)
		}

	// text
	case "BT":
		in.tm, in.tlm = gg.Identity(), gg.Identity()
	case "ET":
	case "Tf":
		if len(a) >= 2 {
			in.gs.font = in.fontNamed(nameArg(a[0]))
			in.gs.fontSize = num(a[1])
		}
	case "Tc":
		if need(1) {
			in.gs.charSpace = n[0]
		}
	case "Tw":
		if need(1) {
			in.gs.wordSpace = n[0]
		}
	case "Tz":
		if need(1) {
			in.gs.hscale = n[0] / 100
		}
	case "TL":
		if need(1) {
			in.gs.leading = n[0]
		}
	case "Ts":
		if need(1) {
			in.gs.rise = n[0]
		}
	case "Tr":
		if need(1) {
			in.gs.renderMode = int(n[0])
		}
	case "Td":
		if need(2) {
			in.moveText(n[0], n[1])
		}
	case "TD":
		if need(2) {
			in.gs.leading = -n[1]
			in.moveText(n[0], n[1])
		}
	case "Tm":
		if need(6) {
			in.tm = matrixOf(n)
			in.tlm = in.tm
		}
	case "T*":
		in.moveText(0, -in.gs.leading)
	case "Tj":
		if len(a) >= 1 {
			return in.showText(a[:1])
		}
	case "'":
		in.moveText(0, -in.gs.leading)
		if len(a) >= 1 {
			return in.showText(a[len(a)-1:])
		}
	case "\"":
		if len(a) >= 3 {
			in.gs.wordSpace = num(a[0])
			in.gs.charSpace = num(a[1])
			in.moveText(0, -in.gs.leading)
			return in.showText(a[2:3])
		}
	case "TJ":
		if len(a) >= 1 {
			if arr, ok := a[0].(semantic.ArrayOperand); ok {
				return in.showText(arr.Values)
			}
		}

	// XObjects and inline images
	case "Do":
		if len(a) >= 1 {
			return in.xobject(nameArg(a[0]))
		}
	case "BI":
		if len(a) >= 1 {
			if ii, ok := a[0].(semantic.InlineImageOperand); ok {
				img, err := in.doc.inlineImage(in.ctx, ii, in.res)
				if err != nil {
					effect.Logger().Warn("pdfraster: inline image skipped", "err", err)
					return nil
				}
				return in.drawImage(img)
			}
		}

	// marked content and compatibility sections carry no drawing
	case "BMC", "BDC", "EMC", "MP", "DP", "BX", "EX", "d0", "d1":

	default:
		effect.Logger().Debug("pdfraster: operator skipped", "op", op.Operator)
	}
	return nil
}

// componentSpace returns cs, or a device space matching n components when
// cs cannot take them.
func componentSpace(cs *colorSpace, n int) *colorSpace {
	if cs.base != nil || cs.comps == n {
		return cs
	}
	return bySize(n)
}

func (in *interp) extGState(name string) {
	egs := in.doc.dictOf(in.resource("ExtGState", name))
	if egs == nil {
		return
	}
	d := in.doc
	if v, ok := d.number(egs.KV["LW"]); ok {
		in.gs.lineWidth = v
	}
	if v, ok := d.number(egs.KV["LC"]); ok {
		in.gs.cap = gg.LineCap(max(0, min(2, int(v))))
	}
	if v, ok := d.number(egs.KV["LJ"]); ok {
		in.gs.join = gg.LineJoin(max(0, min(2, int(v))))
	}
	if v, ok := d.number(egs.KV["ML"]); ok {
		in.gs.miterLimit = v
	}
	if v, ok := d.number(egs.KV["CA"]); ok {
		in.gs.strokeAlpha = clamp01(v)
	}
	if v, ok := d.number(egs.KV["ca"]); ok {
		in.gs.fillAlpha = clamp01(v)
	}
	if da := d.arrayOf(egs.KV["D"]); da != nil && len(da.Items) == 2 {
		in.gs.dash = d.numbers(da.Items[0])
		in.gs.dashPhase, _ = d.number(da.Items[1])
	}
}

// resource looks up a named entry of a resource category.
func (in *interp) resource(category, name string) raw.Object {
	if in.res == nil {
		return nil
	}
	cat := in.doc.dictOf(in.res.KV[category])
	if cat == nil {
		return nil
	}
	return in.doc.resolve(cat.KV[name])
}

func (in *interp) applyStroke() {
	dc, gs := in.dc, &in.gs
	lw := gs.lineWidth
	if lw <= 0 {
		// zero width means the thinnest visible line
		if s := in.base.Multiply(gs.ctm).ScaleFactor(); s > 0 {
			lw = 1 / s
		}
	}
	dc.SetLineWidth(lw)
	dc.SetLineCap(gs.cap)
	dc.SetLineJoin(gs.join)
	dc.SetMiterLimit(gs.miterLimit)
	if len(gs.dash) > 0 {
		dc.SetDash(gs.dash...)
		dc.SetDashOffset(gs.dashPhase)
	} else {
		dc.ClearDash()
	}
	c := gs.stroke
	dc.SetRGBA(c.R, c.G, c.B, c.A*gs.strokeAlpha)
}

func (in *interp) applyFill(evenOdd bool) {
	if evenOdd {
		in.dc.SetFillRule(gg.FillRuleEvenOdd)
	} else {
		in.dc.SetFillRule(gg.FillRuleNonZero)
	}
	c := in.gs.fill
	in.dc.SetRGBA(c.R, c.G, c.B, c.A*in.gs.fillAlpha)
}

// paint ends the current path, filling and stroking it as asked, then
// applies a pending clip.
func (in *interp) paint(fill, stroke, evenOdd bool) error {
	dc := in.dc
	keep := in.clip != clipNone
	if fill {
		in.applyFill(evenOdd)
		var err error
		if stroke || keep {
			err = dc.FillPreserve()
		} else {
			err = dc.Fill()
		}
		if err != nil {
			return err
		}
	}
	if stroke {
		in.applyStroke()
		var err error
		if keep {
			err = dc.StrokePreserve()
		} else {
			err = dc.Stroke()
		}
		if err != nil {
			return err
		}
	}
	if keep {
		dc.SetFillRule(gg.FillRuleNonZero)
		if in.clip == clipEvenOdd {
			dc.SetFillRule(gg.FillRuleEvenOdd)
		}
		dc.Clip()
		in.clip = clipNone
		return nil
	}
	dc.ClearPath()
	return nil
}

func (in *interp) moveText(tx, ty float64) {
	in.tlm = in.tlm.Multiply(gg.Translate(tx, ty))
	in.tm = in.tlm
}

func (in *interp) fontNamed(name string) *font {
	dict := in.doc.dictOf(in.resource("Font", name))
	if dict == nil {
		effect.Logger().Debug("pdfraster: font resource missing", "font", name)
		return in.defaultFont()
	}
	return in.doc.font(in.ctx, dict)
}

func (in *interp) defaultFont() *font {
	if in.fallback == nil {
		in.fallback = in.doc.font(in.ctx, &raw.DictObj{KV: map[string]raw.Object{
			"Subtype":  raw.NameLiteral("Type1"),
			"BaseFont": raw.NameLiteral("Helvetica"),
		}})
	}
	return in.fallback
}

// showText draws strings and applies TJ position adjustments.
func (in *interp) showText(items []semantic.Operand) error {
	gs := &in.gs
	f := gs.font
	if f == nil {
		f = in.defaultFont()
		gs.font = f
	}
	mode := gs.renderMode % 4
	visible := mode != 3 && !f.type3 && f.src != nil
	th := gs.hscale
	drawn := false

	for _, it := range items {
		switch v := it.(type) {
		case semantic.NumberOperand:
			tx := -v.Value / 1000 * gs.fontSize * th
			in.tm = in.tm.Multiply(gg.Translate(tx, 0))
		case semantic.StringOperand:
			for _, code := range f.codes(v.Value) {
				if visible {
					if g := f.glyph(code); g != 0 {
						in.appendGlyph(f, g)
						drawn = true
					}
				}
				w := f.width(code) / 1000
				tx := w*gs.fontSize + gs.charSpace
				if code == ' ' && !f.composite {
					tx += gs.wordSpace
				}
				in.tm = in.tm.Multiply(gg.Translate(tx*th, 0))
			}
		}
	}
	if !drawn {
		return nil
	}
	switch mode {
	case 0:
		return in.paint(true, false, false)
	case 1:
		return in.paint(false, true, false)
	default:
		return in.paint(true, true, false)
	}
}

// appendGlyph adds glyph g at the current text position to the path.
func (in *interp) appendGlyph(f *font, g text.GlyphID) {
	o := f.outline(g)
	if o == nil {
		return
	}
	gs := &in.gs
	k := gs.fontSize / unitsPerEm
	tm := in.tm
	pt := func(x, y float32) gg.Point {
		return tm.TransformPoint(gg.Pt(float64(x)*k*gs.hscale, -float64(y)*k+gs.rise))
	}
	for _, s := range o.Segments {
		switch s.Op {
		case text.OutlineOpMoveTo:
			p := pt(s.Points[0].X, s.Points[0].Y)
			in.dc.MoveTo(p.X, p.Y)
		case text.OutlineOpLineTo:
			p := pt(s.Points[0].X, s.Points[0].Y)
			in.dc.LineTo(p.X, p.Y)
		case text.OutlineOpQuadTo:
			c := pt(s.Points[0].X, s.Points[0].Y)
			p := pt(s.Points[1].X, s.Points[1].Y)
			in.dc.QuadraticTo(c.X, c.Y, p.X, p.Y)
		case text.OutlineOpCubicTo:
			c1 := pt(s.Points[0].X, s.Points[0].Y)
			c2 := pt(s.Points[1].X, s.Points[1].Y)
			p := pt(s.Points[2].X, s.Points[2].Y)
			in.dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
		}
	}
	in.dc.ClosePath()
}

func (in *interp) xobject(name string) error {
	s, ok := in.resource("XObject", name).(*raw.StreamObj)
	if !ok || s.Dict == nil {
		effect.Logger().Debug("pdfraster: XObject missing", "name", name)
		return nil
	}
	sub, _ := in.doc.name(s.Dict.KV["Subtype"])
	switch sub {
	case "Image":
		img, err := in.doc.xobjectImage(in.ctx, s, in.res)
		if err != nil {
			effect.Logger().Warn("pdfraster: image skipped", "name", name, "err", err)
			return nil
		}
		return in.drawImage(img)
	case "Form":
		return in.form(s)
	}
	effect.Logger().Debug("pdfraster: XObject subtype skipped", "name", name, "subtype", sub)
	return nil
}

// form runs a form XObject in a saved graphics state.
func (in *interp) form(s *raw.StreamObj) error {
	if in.depth >= maxFormDepth {
		effect.Logger().Debug("pdfraster: form nesting too deep")
		return nil
	}
	data, rest, err := in.doc.streamData(in.ctx, s)
	if err != nil || len(rest) > 0 {
		effect.Logger().Warn("pdfraster: form content unreadable", "err", err)
		return nil
	}
	ops, err := lex(data)
	if err != nil {
		effect.Logger().Debug("pdfraster: form content truncated", "err", err)
	}

	saved, savedRes, savedDepth := len(in.saved), in.res, in.depth
	savedTm, savedTlm := in.tm, in.tlm
	in.save()
	if m := in.doc.numbers(s.Dict.KV["Matrix"]); len(m) == 6 {
		in.gs.ctm = in.gs.ctm.Multiply(matrixOf(m))
		in.syncMatrix()
	}
	if b, ok := in.doc.box(s.Dict.KV["BBox"]); ok {
		in.dc.DrawRectangle(b.LLX, b.LLY, b.Width(), b.Height())
		in.dc.Clip()
	}
	if r := in.doc.dictOf(s.Dict.KV["Resources"]); r != nil {
		in.res = r
	}
	in.depth++
	err = in.run(ops)

	for len(in.saved) > saved {
		in.restore()
	}
	in.res, in.depth = savedRes, savedDepth
	in.tm, in.tlm = savedTm, savedTlm
	return err
}

// drawImage paints img over the unit square of user space.
func (in *interp) drawImage(img *rasterImage) error {
	m := in.base.Multiply(in.gs.ctm)
	if det := m.A*m.E - m.B*m.D; math.Abs(det) < 1e-12 {
		return nil
	}
	pat := &imagePattern{
		img:     img.img,
		inv:     m.Invert(),
		alpha:   in.gs.fillAlpha,
		stencil: in.gs.fill,
		isMask:  img.stencil,
	}
	dc := in.dc
	dc.ClearPath()
	dc.MoveTo(0, 0)
	dc.LineTo(1, 0)
	dc.LineTo(1, 1)
	dc.LineTo(0, 1)
	dc.ClosePath()
	dc.SetFillRule(gg.FillRuleNonZero)
	dc.SetFillPattern(pat)
	return dc.Fill()
}
