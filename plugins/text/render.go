package text

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/gogpu/gg"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/internal/fonts"
	"github.com/fxarena/arena/internal/markup"
	"github.com/fxarena/arena/internal/pixel"
	"github.com/fxarena/arena/internal/typeset"
)

// arcTolerance is the flattening tolerance of arc text in pixels.
const arcTolerance = 0.1

// settings are the parameter values of one render.
type settings struct {
	text   string
	markup bool

	font                   string
	size                   int
	style, weight, stretch int
	letterSpace            int
	antialias              int

	color, strokeColor markup.Color
	strokeWidth        float64
	strokeDash         int
	dashPattern        [3]float64

	move, autoSize, centerInteract bool
	wrap, align, valign            int
	justify                        bool

	circleRadius float64
	circleWords  int
	arcRadius    float64
	arcAngle     float64

	rotate         float64
	scaleX, scaleY float64
	skewX, skewY   float64
	x, y           float64
}

func (p *plugin) read(t float64) settings {
	h := p.h
	s := settings{
		text:           h.StringParam(ParamText).ValueAtTime(t),
		markup:         h.BooleanParam(ParamMarkup).ValueAtTime(t),
		font:           h.StringParam(ParamFont).ValueAtTime(t),
		size:           h.IntParam(ParamFontSize).ValueAtTime(t),
		style:          h.ChoiceParam(ParamStyle).ValueAtTime(t),
		weight:         h.ChoiceParam(ParamWeight).ValueAtTime(t),
		stretch:        h.ChoiceParam(ParamStretch).ValueAtTime(t),
		letterSpace:    h.IntParam(ParamLetterSpace).ValueAtTime(t),
		antialias:      h.ChoiceParam(ParamAntialias).ValueAtTime(t),
		strokeWidth:    h.DoubleParam(ParamStrokeWidth).ValueAtTime(t),
		strokeDash:     h.IntParam(ParamStrokeDash).ValueAtTime(t),
		move:           h.BooleanParam(ParamMove).ValueAtTime(t),
		autoSize:       h.BooleanParam(ParamAutoSize).ValueAtTime(t),
		centerInteract: h.BooleanParam(ParamCenterInteract).ValueAtTime(t),
		wrap:           h.ChoiceParam(ParamWrap).ValueAtTime(t),
		align:          h.ChoiceParam(ParamAlign).ValueAtTime(t),
		valign:         h.ChoiceParam(ParamVAlign).ValueAtTime(t),
		justify:        h.BooleanParam(ParamJustify).ValueAtTime(t),
		circleRadius:   h.DoubleParam(ParamCircleRadius).ValueAtTime(t),
		circleWords:    h.IntParam(ParamCircleWords).ValueAtTime(t),
		arcRadius:      h.DoubleParam(ParamArcRadius).ValueAtTime(t),
		arcAngle:       h.DoubleParam(ParamArcAngle).ValueAtTime(t),
		rotate:         h.DoubleParam(ParamRotate).ValueAtTime(t),
		skewX:          h.DoubleParam(ParamSkewX).ValueAtTime(t),
		skewY:          h.DoubleParam(ParamSkewY).ValueAtTime(t),
	}
	s.color = rgba(h.RGBAParam(ParamTextColor).ValueAtTime(t))
	s.strokeColor = rgba(h.RGBAParam(ParamStrokeColor).ValueAtTime(t))
	s.dashPattern[0], s.dashPattern[1], s.dashPattern[2] = h.Double3DParam(ParamStrokeDashPattern).ValueAtTime(t)
	s.scaleX, s.scaleY = h.Double2DParam(ParamScale).ValueAtTime(t)
	if h.BooleanParam(ParamUniform).ValueAtTime(t) {
		s.scaleY = s.scaleX
	}
	s.x, s.y = h.Double2DParam(ParamCenter).ValueAtTime(t)

	if file := h.StringParam(ParamFile).ValueAtTime(t); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			effect.Logger().Warn("text: text file not read", "file", file, "err", err)
		} else {
			s.text = string(data)
		}
	}
	if h.Host().IsNatron {
		s.font = fonts.StripMenuPrefix(s.font)
	}
	return s
}

func rgba(r, g, b, a float64) markup.Color { return markup.Color{R: r, G: g, B: b, A: a} }

// description is the font at scale. The weight menu wins over the bold
// style unless it is left at Normal.
func (s settings) description(scale float64) fonts.Description {
	d := fonts.Description{
		Family:  s.font,
		Weight:  fonts.MenuWeight(s.weight),
		Stretch: fonts.MenuStretch(s.stretch),
		Size:    math.Floor(float64(s.size)*scale + 0.5),
	}
	switch s.style {
	case 1:
		if d.Weight == fonts.WeightNormal {
			d.Weight = fonts.WeightBold
		}
	case 2:
		d.Style = fonts.StyleItalic
	}
	return d
}

func (p *plugin) Render(ctx context.Context, args effect.RenderArgs) error {
	if err := effect.CheckRenderScale(p.h.Descriptor().SupportsRenderScale(), args.RenderScale); err != nil {
		return err
	}
	dst, err := p.h.Clip(effect.ClipOutput).FetchImage(ctx, args.Time)
	if err != nil {
		return err
	}
	if dst == nil {
		return effect.NewStatusError(effect.StatFailed, fmt.Errorf("text: no output image"))
	}
	if err := p.h.CheckImageProperties(dst, args); err != nil {
		return err
	}
	if err := effect.CheckDepth(dst, effect.BitDepthFloat); err != nil {
		return err
	}
	if err := effect.CheckComponents(dst, effect.PixelComponentRGBA); err != nil {
		return p.h.Failf(effect.StatErrFormat, err, "Wrong pixel components")
	}
	if err := effect.CheckRenderWindow(args.RenderWindow, dst.Bounds); err != nil {
		return err
	}

	s := p.read(args.Time)
	if s.font == "" {
		return p.h.Fail(effect.StatFailed, msgNoFont)
	}
	canvas := dst.RoD
	if canvas.Empty() {
		return effect.NewStatusError(effect.StatErrValue, fmt.Errorf("text: empty canvas %v", canvas))
	}
	// the canvas is drawn top-down with its origin at the top-left corner
	// of the region of definition
	xtext := s.x*args.RenderScale.X - float64(canvas.X1)
	ytext := float64(canvas.Y2-1) - s.y*args.RenderScale.Y

	img, err := p.draw(s, args.RenderScale.X, canvas.Width(), canvas.Height(), xtext, ytext)
	if err != nil {
		return p.h.Failf(effect.StatErrFormat, err, "Render failed")
	}
	w := args.RenderWindow
	sub := img.SubImage(image.Rect(w.X1-canvas.X1, canvas.Y2-w.Y2, w.X2-canvas.X1, canvas.Y2-w.Y1)).(*image.RGBA)
	return pixel.ToHost(pixel.FromRGBA(sub), dst, w)
}

// draw renders the text on a transparent w x h canvas. (xtext, ytext)
// is the position in canvas pixels.
func (p *plugin) draw(s settings, scale float64, w, h int, xtext, ytext float64) (*image.RGBA, error) {
	lay, err := p.layout(s, scale, float64(w))
	if err != nil {
		return nil, err
	}
	tw, th := lay.PixelSize()

	dc := gg.NewContext(w, h)
	defer dc.Close()

	// start point in device space, placed before any transform
	var start gg.Point
	hasStart := false
	if !s.move && s.valign != 0 {
		hasStart = true
		if s.valign == 1 {
			start.Y = float64((h - th) / 2)
		} else {
			start.Y = float64(h - th)
		}
	}
	movePoint := gg.Pt(math.Trunc(xtext), math.Trunc(ytext))
	if s.centerInteract {
		movePoint = gg.Pt(math.Trunc(xtext-float64(tw/2)), math.Trunc(ytext-float64(th/2)))
	}
	mid := gg.Pt(float64(w)/2, float64(h)/2)
	pivot := mid
	if s.move {
		pivot = gg.Pt(xtext, ytext)
	}

	m := gg.Identity()
	about := func(c gg.Point, t gg.Matrix) {
		m = m.Multiply(gg.Translate(c.X, c.Y)).Multiply(t).Multiply(gg.Translate(-c.X, -c.Y))
	}
	at := gg.Pt(xtext, ytext)
	if (s.scaleX != 1 || s.scaleY != 1) && !s.autoSize && s.move {
		about(at, gg.Scale(s.scaleX, s.scaleY))
	}
	if s.skewX != 0 && !s.autoSize {
		about(at, gg.Matrix{A: 1, B: -s.skewX, E: 1})
	}
	if s.skewY != 0 && !s.autoSize {
		about(at, gg.Matrix{A: 1, D: -s.skewY, E: 1})
	}
	if s.rotate != 0 && !s.autoSize {
		about(pivot, gg.Rotate(-s.rotate*math.Pi/180))
	}
	dc.SetTransform(m)
	inv := m.Invert()

	setColor := func(c markup.Color) { dc.SetRGBA(c.R, c.G, c.B, c.A) }

	switch {
	case s.strokeWidth > 0 && s.circleRadius == 0:
		if s.strokeDash > 0 {
			dash := []float64{
				max(0.1, s.dashPattern[0]),
				max(0, s.dashPattern[1]),
				max(0, s.dashPattern[2]),
			}
			dc.SetDash(dash[:min(s.strokeDash, len(dash))]...)
		}
		var o gg.Point
		switch {
		case s.autoSize:
			o = gg.Pt(math.Floor(s.strokeWidth/2*scale+0.5), 0)
		case s.move:
			o = movePoint
		}
		lay.AppendPath(dc, o.X, o.Y)
		dc.SetLineWidth(math.Floor(s.strokeWidth*scale + 0.5))
		setColor(s.strokeColor)
		if err := dc.StrokePreserve(); err != nil {
			return nil, err
		}
		setColor(s.color)
		if err := dc.Fill(); err != nil {
			return nil, err
		}

	case s.circleRadius == 0 && s.arcAngle > 0:
		c := mid
		if s.move {
			c = at
		}
		arc := typeset.ArcPolyline(c.X, c.Y, math.Floor(s.arcRadius*scale+0.5), 0, s.arcAngle*math.Pi/180, arcTolerance)
		if hasStart {
			arc = append(typeset.Polyline{inv.TransformPoint(start)}, arc...)
		}
		typeset.MapPathOnto(dc, arc, lay.LinePath(0, 0, 0))
		setColor(s.color)
		if err := dc.Fill(); err != nil {
			return nil, err
		}

	case s.circleRadius == 0:
		o := inv.TransformPoint(start)
		if !s.autoSize && s.move {
			o = movePoint
		}
		if err := lay.Show(dc, o.X, o.Y, s.color); err != nil {
			return nil, err
		}
	}

	if s.circleRadius > 0 && !s.autoSize {
		c := mid
		if s.move {
			c = at
		}
		lw, _ := lay.Size()
		r := math.Floor(s.circleRadius*scale + 0.5)
		base := m.Multiply(gg.Translate(c.X, c.Y))
		setColor(s.color)
		for i := range s.circleWords {
			angle := 2 * math.Pi * float64(i) / float64(s.circleWords)
			dc.SetTransform(base.Multiply(gg.Rotate(angle)))
			lay.AppendPath(dc, -lw/2, -r)
			if err := dc.Fill(); err != nil {
				return nil, err
			}
		}
	}

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("text: unexpected image type %T", dc.Image())
	}
	if s.antialias == 1 {
		alias(img)
	}
	return img, nil
}

// alias snaps coverage to on or off at half the strongest alpha of img,
// which removes the smoothed glyph edges.
func alias(img *image.RGBA) {
	var peak uint8
	for i := 3; i < len(img.Pix); i += 4 {
		peak = max(peak, img.Pix[i])
	}
	if peak == 0 {
		return
	}
	cut := peak / 2
	for i := 0; i+3 < len(img.Pix); i += 4 {
		px := img.Pix[i : i+4 : i+4]
		a := px[3]
		switch {
		case a == 0 || a == peak:
		case a <= cut:
			px[0], px[1], px[2], px[3] = 0, 0, 0, 0
		default:
			k := float64(peak) / float64(a)
			px[0] = uint8(min(255, math.Round(float64(px[0])*k)))
			px[1] = uint8(min(255, math.Round(float64(px[1])*k)))
			px[2] = uint8(min(255, math.Round(float64(px[2])*k)))
			px[3] = peak
		}
	}
}
