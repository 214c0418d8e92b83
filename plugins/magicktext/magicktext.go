// Package magicktext is the previous generation of the Text generator. It
// draws a single block of text at a position, with an optional stroke
// and drop shadow, over an optional background clip.
//
// The plugin is deprecated in favor of package text and is kept so old
// projects still load.
package magicktext

import (
	"context"
	"fmt"
	"image"
	"math"
	"slices"
	"sync"

	"github.com/gogpu/gg"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/internal/filter"
	"github.com/fxarena/arena/internal/fonts"
	"github.com/fxarena/arena/internal/pixel"
	"github.com/fxarena/arena/internal/threads"
	"github.com/fxarena/arena/internal/typeset"
)

const (
	PluginID           = "net.fxarena.openfx.Text"
	PluginVersionMajor = 5
	PluginVersionMinor = 7

	pluginName     = "TextOFX"
	pluginGrouping = "Draw"
)

// Parameter names.
const (
	ParamPosition      = "position"
	ParamInteractive   = "interactive"
	ParamText          = "text"
	ParamFontSize      = "size"
	ParamFontName      = "name"
	ParamFont          = "font"
	ParamTextColor     = "textColor"
	ParamStrokeColor   = "strokeColor"
	ParamStroke        = "stroke"
	ParamCustomFont    = "custom"
	ParamShadowOpacity = "shadowOpacity"
	ParamShadowSigma   = "shadowSigma"
	ParamShadowColor   = "shadowColor"
	ParamShadowX       = "shadowX"
	ParamShadowY       = "shadowY"
	ParamShadowSoften  = "shadowSoften"
	ParamLineSpacing   = "lineSpacing"
	ParamWordSpacing   = "wordSpacing"
	ParamLetterSpacing = "letterSpacing"
	ParamWidth         = "width"
	ParamHeight        = "height"
	ParamGravity       = "gravity"
	ParamOpenMP        = "openmp"
)

// Gravity choices.
const (
	gravityNone = iota
	gravityCenter
	gravityCenterForced
)

const (
	defaultFont    = "Arial"
	defaultFontAlt = "DejaVu Sans"

	msgNoFont = "No fonts found, please check installation"
)

// Factory creates instances of the deprecated Text generator.
type Factory struct {
	SystemFonts bool
}

var (
	builtinCatalog = sync.OnceValue(func() *fonts.Catalog { return fonts.New() })
	systemCatalog  = sync.OnceValue(func() *fonts.Catalog { return fonts.New(fonts.WithSystemFonts(true)) })
)

func (f Factory) catalog() *fonts.Catalog {
	if f.SystemFonts {
		return systemCatalog()
	}
	return builtinCatalog()
}

func (Factory) Identifier() string          { return PluginID }
func (Factory) Version() (major, minor int) { return PluginVersionMajor, PluginVersionMinor }
func (Factory) Load() error                 { return nil }

func (Factory) Describe(d *effect.Descriptor) {
	d.SetLabel(pluginName)
	d.SetGrouping(pluginGrouping)
	d.SetDescription("Text generator node.")
	d.AddSupportedContext(effect.ContextGeneral)
	d.AddSupportedContext(effect.ContextGenerator)
	d.AddSupportedBitDepth(effect.BitDepthFloat)
	d.SetSupportsTiles(false)
	d.SetSupportsMultiResolution(false)
	d.SetSupportsRenderScale(true)
	d.SetRenderThreadSafety(effect.ThreadSafetyFully)
	d.SetHostFrameThreading(false)
	d.SetIsDeprecated(true)
}

func (f Factory) DescribeInContext(d *effect.Descriptor, ctx effect.Context, host effect.HostDescription) error {
	src := d.DefineClip(effect.ClipSource)
	src.AddSupportedComponent(effect.PixelComponentRGB)
	src.SetSupportsTiles(false)
	src.SetOptional(true)

	out := d.DefineClip(effect.ClipOutput)
	out.AddSupportedComponent(effect.PixelComponentRGBA)
	out.SetSupportsTiles(false)

	page := d.DefinePageParam(pluginName)
	canvas := d.DefineGroupParam("Canvas")
	canvas.SetOpen(false)
	page.AddChild(canvas)

	pos := d.DefineDouble2DParam(ParamPosition)
	pos.SetLabel("Position")
	pos.SetHint("The position of the first character on the first line.")
	pos.SetDoubleType(effect.DoubleXYAbsolute)
	pos.SetDefaultCoordinateSystem(effect.CoordinatesNormalised)
	pos.SetDefault(0.5, 0.5)
	pos.SetAnimates(true)
	page.AddChild(pos)

	omp := d.DefineBooleanParam(ParamOpenMP)
	omp.SetLabel("OpenMP")
	omp.SetHint("Use as many threads as the host allows.")
	omp.SetDefault(false)
	omp.SetAnimates(false)
	page.AddChild(omp)

	inter := d.DefineBooleanParam(ParamInteractive)
	inter.SetLabel("Interactive")
	inter.SetHint("Render while the position is dragged instead of on release.")
	inter.SetAnimates(false)
	page.AddChild(inter)

	grav := d.DefineChoiceParam(ParamGravity)
	grav.SetLabel("Gravity")
	grav.SetHint("Select text gravity")
	grav.AppendOption("None")
	grav.AppendOption("Center")
	grav.AppendOption("Center forced")
	grav.SetAnimates(true)
	page.AddChild(grav)

	txt := d.DefineStringParam(ParamText)
	txt.SetLabel("Text")
	txt.SetHint("The text that will be drawn")
	txt.SetStringType(effect.StringMultiLine)
	txt.SetDefault("Enter text")
	txt.SetAnimates(true)
	page.AddChild(txt)

	cat := f.catalog()
	name := d.DefineChoiceParam(ParamFontName)
	name.SetLabel("Font family")
	name.SetHint("The name of the font to be used")
	for _, o := range cat.Menu(host.IsNatron) {
		name.AppendOption(o)
	}
	name.SetDefault(cat.DefaultIndex(defaultFont, defaultFontAlt))
	name.SetAnimates(true)
	page.AddChild(name)

	custom := d.DefineStringParam(ParamCustomFont)
	custom.SetLabel("Custom font")
	custom.SetHint("Override font family")
	custom.SetStringType(effect.StringFilePath)
	custom.SetAnimates(true)
	page.AddChild(custom)

	font := d.DefineStringParam(ParamFont)
	font.SetLabel("Font")
	font.SetHint("Selected font")
	font.SetAnimates(true)
	font.SetIsSecret(true)
	page.AddChild(font)

	size := d.DefineIntParam(ParamFontSize)
	size.SetLabel("Font size")
	size.SetHint("The height of the characters to render in pixels")
	size.SetRange(0, 10000)
	size.SetDisplayRange(0, 500)
	size.SetDefault(64)
	size.SetAnimates(true)
	page.AddChild(size)

	color := d.DefineRGBAParam(ParamTextColor)
	color.SetLabel("Font color")
	color.SetHint("The fill color of the text to render")
	color.SetDefault(1, 1, 1, 1)
	color.SetAnimates(true)
	page.AddChild(color)

	stroke := d.DefineGroupParam("Stroke")
	page.AddChild(stroke)
	double := func(g *effect.GroupParamDescriptor, name, label, hint string, lo, hi, dlo, dhi, def float64) {
		p := d.DefineDoubleParam(name)
		p.SetLabel(label)
		p.SetHint(hint)
		p.SetRange(lo, hi)
		p.SetDisplayRange(dlo, dhi)
		p.SetDefault(def)
		effect.SetParent(p, g)
	}
	integer := func(g *effect.GroupParamDescriptor, name, label, hint string, lo, hi, dlo, dhi int) {
		p := d.DefineIntParam(name)
		p.SetLabel(label)
		p.SetHint(hint)
		p.SetRange(lo, hi)
		p.SetDisplayRange(dlo, dhi)
		p.SetDefault(0)
		p.SetAnimates(true)
		effect.SetParent(p, g)
	}

	double(stroke, ParamStroke, "Width", "Adjust stroke width", 0, 1000, 0, 100, 0)
	sc := d.DefineRGBAParam(ParamStrokeColor)
	sc.SetLabel("Color")
	sc.SetHint("The stroke color of the text to render")
	sc.SetDefault(1, 1, 1, 1)
	sc.SetAnimates(true)
	effect.SetParent(sc, stroke)

	spacing := d.DefineGroupParam("Spacing")
	page.AddChild(spacing)
	double(spacing, ParamLetterSpacing, "Letter", "Spacing between letters", -10000, 10000, -500, 500, 0)
	double(spacing, ParamWordSpacing, "Word", "Spacing between words", -10000, 10000, -500, 500, 0)
	double(spacing, ParamLineSpacing, "Line", "Spacing between lines", -10000, 10000, -500, 500, 0)

	shadow := d.DefineGroupParam("Shadow")
	page.AddChild(shadow)
	double(shadow, ParamShadowOpacity, "Opacity", "Adjust shadow opacity", 0, 100, 0, 100, 0)
	double(shadow, ParamShadowSigma, "Sigma", "Adjust shadow sigma", 0, 100, 0, 10, 0.5)
	double(shadow, ParamShadowSoften, "Soften", "Soften shadow", 0, 100, 0, 10, 0)
	integer(shadow, ParamShadowX, "Offset X", "Shadow offset X", -10000, 10000, -500, 500)
	integer(shadow, ParamShadowY, "Offset Y", "Shadow offset Y", -10000, 10000, -500, 500)
	shc := d.DefineRGBParam(ParamShadowColor)
	shc.SetLabel("Color")
	shc.SetHint("The shadow color to render")
	shc.SetDefault(0, 0, 0)
	shc.SetAnimates(true)
	effect.SetParent(shc, shadow)

	integer(canvas, ParamWidth, "Width", "Set canvas width, default (0) is project format", 0, 10000, 0, 4000)
	integer(canvas, ParamHeight, "Height", "Set canvas height, default (0) is project format", 0, 10000, 0, 4000)
	return nil
}

type plugin struct {
	h      *effect.Handle
	system bool

	mu         sync.Mutex
	customPath string
	customCat  *fonts.Catalog
	customName string
	base       *fonts.Catalog
}

func (f Factory) CreateInstance(h *effect.Handle, ctx effect.Context) (effect.Instance, error) {
	p := &plugin{h: h, system: f.SystemFonts, base: f.catalog()}
	font := h.StringParam(ParamFont)
	name := h.ChoiceParam(ParamFontName)
	if name.NumOptions() > 0 {
		opt := name.Option(name.Value())
		switch cur := font.Value(); {
		case cur == "" && opt != "":
			font.SetValue(opt)
		case cur != opt:
			if i := name.Index(cur); i >= 0 {
				name.SetValue(i)
			}
		}
	}
	return p, nil
}

func (p *plugin) ChangedParam(args effect.InstanceChangedArgs, paramName string) error {
	if paramName == ParamFontName {
		name := p.h.ChoiceParam(ParamFontName)
		if name.NumOptions() > 0 {
			p.h.StringParam(ParamFont).SetValueAtTime(args.Time, name.Option(name.ValueAtTime(args.Time)))
		}
	}
	p.h.ClearPersistentMessage()
	return nil
}

// RegionOfDefinition is the canvas size, or infinite when unset.
func (p *plugin) RegionOfDefinition(args effect.RegionOfDefinitionArgs) (effect.RectD, bool, error) {
	w := p.h.IntParam(ParamWidth).ValueAtTime(args.Time)
	h := p.h.IntParam(ParamHeight).ValueAtTime(args.Time)
	if w > 0 && h > 0 {
		return effect.RectD{X2: float64(w), Y2: float64(h)}, true, nil
	}
	return effect.InfiniteRect(), true, nil
}

// fontFor resolves the family to draw with and the catalog holding it.
// A custom font file wins over the menu.
func (p *plugin) fontFor(t float64) (*fonts.Catalog, string) {
	family := p.h.StringParam(ParamFont).ValueAtTime(t)
	if family == "" {
		name := p.h.ChoiceParam(ParamFontName)
		family = name.Option(name.ValueAtTime(t))
	}
	if p.h.Host().IsNatron {
		family = fonts.StripMenuPrefix(family)
	}
	custom := p.h.StringParam(ParamCustomFont).ValueAtTime(t)
	if custom == "" {
		return p.base, family
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if custom != p.customPath {
		cat := fonts.New(fonts.WithSystemFonts(p.system))
		known := cat.Families()
		p.customPath, p.customCat, p.customName = custom, cat, ""
		if err := cat.AddPath(custom); err != nil {
			effect.Logger().Warn("magicktext: custom font not loaded", "path", custom, "err", err)
		}
		for _, f := range cat.Families() {
			if !slices.Contains(known, f) {
				p.customName = f
				break
			}
		}
	}
	if p.customName == "" {
		return p.customCat, family
	}
	return p.customCat, p.customName
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
		return effect.NewStatusError(effect.StatFailed, fmt.Errorf("magicktext: no output image"))
	}
	if err := p.h.CheckImageProperties(dst, args); err != nil {
		return err
	}
	if err := effect.CheckDepth(dst, effect.BitDepthFloat); err != nil {
		return err
	}
	if err := effect.CheckComponents(dst, effect.PixelComponentRGBA); err != nil {
		return err
	}
	if err := effect.CheckRenderWindow(args.RenderWindow, dst.Bounds); err != nil {
		return err
	}

	t := args.Time
	h := p.h
	if h.BooleanParam(ParamOpenMP).ValueAtTime(t) {
		threads.Limit(h.Host().NumCPUs)
	} else {
		threads.Limit(1)
	}

	cat, family := p.fontFor(t)
	if family == "" {
		return h.Fail(effect.StatFailed, msgNoFont)
	}
	canvas := dst.RoD
	if canvas.Empty() {
		return effect.NewStatusError(effect.StatErrValue, fmt.Errorf("magicktext: empty canvas %v", canvas))
	}
	w, ht := canvas.Width(), canvas.Height()
	scale := args.RenderScale.X

	x, y := h.Double2DParam(ParamPosition).ValueAtTime(t)
	xtext := x*args.RenderScale.X - float64(canvas.X1)
	ytext := float64(canvas.Y2-1) - y*args.RenderScale.Y

	lay, err := typeset.New(cat, typeset.Params{
		Text: h.StringParam(ParamText).ValueAtTime(t),
		Font: fonts.Description{
			Family:  family,
			Weight:  fonts.WeightNormal,
			Stretch: fonts.StretchNormal,
			Size:    math.Floor(float64(h.IntParam(ParamFontSize).ValueAtTime(t))*scale + 0.5),
		},
		LetterSpacing: h.DoubleParam(ParamLetterSpacing).ValueAtTime(t) * scale,
		WordSpacing:   h.DoubleParam(ParamWordSpacing).ValueAtTime(t) * scale,
		LineSpacing:   h.DoubleParam(ParamLineSpacing).ValueAtTime(t) * scale,
	})
	if err != nil {
		return h.Failf(effect.StatFailed, err, "Render failed")
	}

	// the position is the baseline origin of the first line
	tw, th := lay.Size()
	var ox, oy float64
	switch h.ChoiceParam(ParamGravity).ValueAtTime(t) {
	case gravityCenter:
		ox, oy = xtext-tw/2, ytext-th/2
	case gravityCenterForced:
		ox, oy = (float64(w)-tw)/2, (float64(ht)-th)/2
	default:
		ox, oy = xtext, ytext
		if lines := lay.Lines(); len(lines) > 0 {
			oy -= lines[0].Baseline()
		}
	}

	dc := gg.NewContext(w, ht)
	defer dc.Close()
	lay.AppendPath(dc, ox, oy)
	r, g, b, a := h.RGBAParam(ParamTextColor).ValueAtTime(t)
	dc.SetRGBA(clamp(r), clamp(g), clamp(b), clamp(a))
	if err := dc.FillPreserve(); err != nil {
		return h.Failf(effect.StatFailed, err, "Render failed")
	}
	if sw := h.DoubleParam(ParamStroke).ValueAtTime(t); sw > 0 {
		r, g, b, a := h.RGBAParam(ParamStrokeColor).ValueAtTime(t)
		dc.SetRGBA(clamp(r), clamp(g), clamp(b), clamp(a))
		dc.SetLineWidth(math.Floor(sw*scale + 0.5))
		if err := dc.StrokePreserve(); err != nil {
			return h.Failf(effect.StatFailed, err, "Render failed")
		}
	}
	dc.ClearPath()
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return fmt.Errorf("magicktext: unexpected image type %T", dc.Image())
	}
	text := pixel.FromRGBA(img)

	opacity := h.DoubleParam(ParamShadowOpacity).ValueAtTime(t)
	sigma := h.DoubleParam(ParamShadowSigma).ValueAtTime(t)
	if opacity > 0 && sigma > 0 {
		sr, sg, sb := h.RGBParam(ParamShadowColor).ValueAtTime(t)
		shadow, _ := filter.DropShadow(text, opacity, math.Floor(sigma*scale+0.5), [3]float32{
			float32(clamp(sr)), float32(clamp(sg)), float32(clamp(sb)),
		})
		if soften := h.DoubleParam(ParamShadowSoften).ValueAtTime(t); soften > 0 {
			shadow = filter.Apply(shadow, filter.Blur(math.Floor(soften*scale+0.5)))
		}
		sx := int(math.Floor(float64(h.IntParam(ParamShadowX).ValueAtTime(t))*scale + 0.5))
		sy := int(math.Floor(float64(h.IntParam(ParamShadowY).ValueAtTime(t))*scale + 0.5))
		layer := pixel.New(w, ht)
		filter.Composite(layer, shadow, sx, sy)
		filter.Composite(layer, text, 0, 0)
		text = layer
	}

	cw := h.IntParam(ParamWidth).ValueAtTime(t)
	chh := h.IntParam(ParamHeight).ValueAtTime(t)
	if src := h.Clip(effect.ClipSource); src.IsConnected() && cw == 0 && chh == 0 {
		bg, err := p.background(ctx, t, canvas)
		if err != nil {
			return err
		}
		if bg != nil {
			filter.Composite(bg, text, 0, 0)
			text = bg
		}
	}

	win := args.RenderWindow
	if !text.Premultiplied {
		text.Premultiply()
	}
	out := text.Crop(image.Rect(win.X1-canvas.X1, canvas.Y2-win.Y2, win.X2-canvas.X1, canvas.Y2-win.Y1))
	return pixel.ToHost(out, dst, win)
}

// background reads the source clip over the canvas as an opaque layer.
func (p *plugin) background(ctx context.Context, t float64, canvas effect.RectI) (*pixel.Buffer, error) {
	img, err := p.h.Clip(effect.ClipSource).FetchImage(ctx, t)
	if err != nil || img == nil {
		return nil, err
	}
	area := canvas.Intersect(img.Bounds)
	bg := pixel.New(canvas.Width(), canvas.Height())
	if area.Empty() {
		return bg, nil
	}
	src, err := pixel.FromHost(img, area)
	if err != nil {
		return nil, p.h.Failf(effect.StatErrImageFormat, err, "Wrong source image")
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 1
	}
	src.Premultiplied = true
	filter.Composite(bg, src, area.X1-canvas.X1, canvas.Y2-area.Y2)
	return bg, nil
}

func clamp(v float64) float64 { return min(1, max(0, v)) }
