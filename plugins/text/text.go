// Package text is a generator effect that draws a block of styled text.
// The text may carry pango markup, be stroked, follow an arc or be
// repeated around a circle, and is positioned by a 2D transform.
package text

import (
	"sync"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/internal/fonts"
)

const (
	PluginID           = "net.fxarena.openfx.Text"
	PluginVersionMajor = 6
	PluginVersionMinor = 9

	pluginName     = "TextOFX"
	pluginGrouping = "Draw"
)

// Transform parameters.
const (
	ParamRotate      = "rotate"
	ParamScale       = "scale"
	ParamUniform     = "uniform"
	ParamSkewX       = "skewX"
	ParamSkewY       = "skewY"
	ParamSkewOrder   = "skewOrder"
	ParamCenter      = "center"
	ParamResetCenter = "resetCenter"
)

// Text parameters.
const (
	ParamMove              = "transform"
	ParamAutoSize          = "autoSize"
	ParamCenterInteract    = "centerInteract"
	ParamCanvas            = "canvas"
	ParamMarkup            = "markup"
	ParamFile              = "file"
	ParamText              = "text"
	ParamJustify           = "justify"
	ParamWrap              = "wrap"
	ParamAlign             = "align"
	ParamVAlign            = "valign"
	ParamFontName          = "name"
	ParamCustomFont        = "custom"
	ParamFont              = "font"
	ParamFontSize          = "size"
	ParamTextColor         = "color"
	ParamLetterSpace       = "letterSpace"
	ParamHintStyle         = "hintStyle"
	ParamHintMetrics       = "hintMetrics"
	ParamAntialias         = "antialiasing"
	ParamSubpixel          = "subpixel"
	ParamStyle             = "style"
	ParamWeight            = "weight"
	ParamStretch           = "stretch"
	ParamStrokeWidth       = "strokeSize"
	ParamStrokeColor       = "strokeColor"
	ParamStrokeDash        = "strokeDash"
	ParamStrokeDashPattern = "strokeDashPattern"
	ParamCircleRadius      = "circleRadius"
	ParamCircleWords       = "circleWords"
	ParamArcRadius         = "arcRadius"
	ParamArcAngle          = "arcAngle"
)

const (
	defaultFont    = "Arial"
	defaultFontAlt = "DejaVu Sans"

	msgNoFont = "No fonts found/selected"
)

// Factory creates Text instances. With SystemFonts the font menu also
// lists the fonts installed on the machine, otherwise only the built-in
// Go fonts.
type Factory struct {
	SystemFonts bool
}

var (
	builtinCatalog = sync.OnceValue(func() *fonts.Catalog { return fonts.New() })
	systemCatalog  = sync.OnceValue(func() *fonts.Catalog { return fonts.New(fonts.WithSystemFonts(true)) })
)

// catalog returns the shared catalog. It must not be modified.
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
	d.SetDescription("Text generator.\n\n" +
		"Draws plain or marked-up text with a chosen font, color and stroke. " +
		"The text can be wrapped and aligned inside the canvas, bent along an arc " +
		"or repeated around a circle.")
	d.AddSupportedContext(effect.ContextGenerator)
	d.AddSupportedBitDepth(effect.BitDepthFloat)
	d.SetSupportsTiles(false)
	d.SetSupportsMultiResolution(false)
	d.SetSupportsRenderScale(true)
	d.SetRenderThreadSafety(effect.ThreadSafetyFully)
}

func (f Factory) DescribeInContext(d *effect.Descriptor, ctx effect.Context, host effect.HostDescription) error {
	src := d.DefineClip(effect.ClipSource)
	src.AddSupportedComponent(effect.PixelComponentRGBA)
	src.SetSupportsTiles(false)
	src.SetOptional(true)

	out := d.DefineClip(effect.ClipOutput)
	out.AddSupportedComponent(effect.PixelComponentRGBA)
	out.SetSupportsTiles(false)

	page := d.DefinePageParam(pluginName)
	describeTransform(d, page)

	toggle := func(name, label, hint string, def bool, hintLayout effect.LayoutHint) {
		p := d.DefineBooleanParam(name)
		p.SetLabel(label)
		p.SetHint(hint)
		p.SetDefault(def)
		p.SetAnimates(false)
		p.SetLayoutHint(hintLayout)
		page.AddChild(p)
	}
	choice := func(name, label, hint string, opts []string, def int, hintLayout effect.LayoutHint) {
		p := d.DefineChoiceParam(name)
		p.SetLabel(label)
		p.SetHint(hint)
		for _, o := range opts {
			p.AppendOption(o)
		}
		p.SetDefault(def)
		p.SetAnimates(false)
		p.SetLayoutHint(hintLayout)
		page.AddChild(p)
	}

	toggle(ParamMove, "Transform", "Enable the position and transform parameters. Disables wrap and alignment.", true, effect.LayoutHintNoNewLine)
	toggle(ParamAutoSize, "Auto size", "Set the canvas size to the size of the text. Disables most transforms.", false, effect.LayoutHintNoNewLine)
	toggle(ParamCenterInteract, "Centered", "Center the text on the position.", false, effect.LayoutHintNormal)

	canvas := d.DefineInt2DParam(ParamCanvas)
	canvas.SetLabel("Canvas size")
	canvas.SetHint("Width and height of the canvas. The project size is used when either is 0.")
	canvas.SetRange(0, 0, 10000, 10000)
	canvas.SetDisplayRange(0, 0, 4000, 4000)
	canvas.SetDefault(0, 0)
	canvas.SetAnimates(false)
	canvas.SetLayoutHint(effect.LayoutHintDivider)
	page.AddChild(canvas)

	toggle(ParamMarkup, "Markup", "Interpret the text as pango markup.", false, effect.LayoutHintNormal)

	file := d.DefineStringParam(ParamFile)
	file.SetLabel("Text file")
	file.SetHint("Read the text from a file instead of the text parameter.")
	file.SetStringType(effect.StringFilePath)
	file.SetFilePathExists(true)
	file.SetAnimates(false)
	page.AddChild(file)

	txt := d.DefineStringParam(ParamText)
	txt.SetLabel("Text")
	txt.SetHint("The text to draw.")
	txt.SetStringType(effect.StringMultiLine)
	txt.SetDefault("Enter text")
	txt.SetAnimates(true)
	page.AddChild(txt)

	toggle(ParamJustify, "Justify", "Justify wrapped lines.", false, effect.LayoutHintNoNewLine)
	choice(ParamWrap, "Wrap", "Where lines may break. Needs a fixed canvas and Transform off.",
		[]string{"None", "Word", "Char", "Word-Char"}, 0, effect.LayoutHintNoNewLine)
	choice(ParamAlign, "Align", "Horizontal alignment. Needs Transform off.",
		[]string{"Left", "Right", "Center"}, 0, effect.LayoutHintNoNewLine)
	choice(ParamVAlign, "Vertical align", "Vertical alignment. Needs Transform off.",
		[]string{"Top", "Center", "Bottom"}, 0, effect.LayoutHintDivider)

	cat := f.catalog()
	name := d.DefineChoiceParam(ParamFontName)
	name.SetLabel("Font family")
	name.SetHint("The font family.")
	menu := cat.Menu(host.IsNatron)
	if len(menu) == 0 {
		name.AppendOption("N/A")
	}
	for _, o := range menu {
		name.AppendOption(o)
	}
	name.SetDefault(cat.DefaultIndex(defaultFont, defaultFontAlt))
	name.SetAnimates(false)
	name.SetLayoutHint(effect.LayoutHintNoNewLine)
	page.AddChild(name)

	custom := d.DefineStringParam(ParamCustomFont)
	custom.SetLabel("Custom font")
	custom.SetHint("Add a font file or a directory of fonts to the family menu.")
	custom.SetStringType(effect.StringFilePath)
	custom.SetFilePathExists(true)
	custom.SetAnimates(false)
	page.AddChild(custom)

	font := d.DefineStringParam(ParamFont)
	font.SetLabel("Font")
	font.SetHint("The selected font family.")
	font.SetIsSecret(true)
	font.SetAnimates(false)
	page.AddChild(font)

	size := d.DefineIntParam(ParamFontSize)
	size.SetLabel("Font size")
	size.SetHint("Font size in pixels.")
	size.SetRange(1, 10000)
	size.SetDisplayRange(1, 500)
	size.SetDefault(64)
	size.SetAnimates(true)
	page.AddChild(size)

	color := d.DefineRGBAParam(ParamTextColor)
	color.SetLabel("Font color")
	color.SetHint("The fill color of the text.")
	color.SetDefault(1, 1, 1, 1)
	color.SetAnimates(true)
	page.AddChild(color)

	ls := d.DefineIntParam(ParamLetterSpace)
	ls.SetLabel("Letter spacing")
	ls.SetHint("Extra space between letters in pixels. Ignored with markup.")
	ls.SetRange(0, 10000)
	ls.SetDisplayRange(0, 500)
	ls.SetDefault(0)
	ls.SetAnimates(true)
	ls.SetLayoutHint(effect.LayoutHintDivider)
	page.AddChild(ls)

	choice(ParamHintStyle, "Hint style", "Outline hinting. Outlines are always drawn unhinted.",
		[]string{"Default", "None", "Slight", "Medium", "Full"}, 0, effect.LayoutHintNormal)
	choice(ParamHintMetrics, "Hint metrics", "Rounding of font metrics.",
		[]string{"Default", "Off", "On"}, 0, effect.LayoutHintNormal)
	choice(ParamAntialias, "Antialiasing", "Antialiasing of the glyph edges.",
		[]string{"Default", "None", "Gray", "Subpixel"}, 0, effect.LayoutHintNormal)
	choice(ParamSubpixel, "Subpixel", "Subpixel order.",
		[]string{"Default", "RGB", "BGR", "VRGB", "VBGR"}, 0, effect.LayoutHintNormal)
	choice(ParamStyle, "Style", "Font style.",
		[]string{"Normal", "Bold", "Italic"}, 0, effect.LayoutHintNormal)
	choice(ParamWeight, "Weight", "Font weight.", fonts.WeightLabels, 5, effect.LayoutHintNormal)
	choice(ParamStretch, "Stretch", "Font stretch.", fonts.StretchLabels, int(fonts.StretchNormal), effect.LayoutHintDivider)

	sw := d.DefineDoubleParam(ParamStrokeWidth)
	sw.SetLabel("Stroke width")
	sw.SetHint("Outline width in pixels. 0 disables the stroke.")
	sw.SetRange(0, 500)
	sw.SetDisplayRange(0, 100)
	sw.SetDefault(0)
	sw.SetAnimates(true)
	page.AddChild(sw)

	sc := d.DefineRGBAParam(ParamStrokeColor)
	sc.SetLabel("Stroke color")
	sc.SetHint("The outline color.")
	sc.SetDefault(1, 0, 0, 1)
	sc.SetAnimates(true)
	page.AddChild(sc)

	dash := d.DefineIntParam(ParamStrokeDash)
	dash.SetLabel("Stroke dash")
	dash.SetHint("Number of dash pattern entries to use. 0 draws a solid outline.")
	dash.SetRange(0, 100)
	dash.SetDisplayRange(0, 10)
	dash.SetDefault(0)
	dash.SetAnimates(true)
	page.AddChild(dash)

	pattern := d.DefineDouble3DParam(ParamStrokeDashPattern)
	pattern.SetLabel("Stroke dash pattern")
	pattern.SetHint("Dash and gap lengths.")
	pattern.SetDefault(1, 0, 0)
	pattern.SetAnimates(true)
	pattern.SetLayoutHint(effect.LayoutHintDivider)
	page.AddChild(pattern)

	cr := d.DefineDoubleParam(ParamCircleRadius)
	cr.SetLabel("Circle radius")
	cr.SetHint("Repeat the text around a circle of this radius. 0 disables it.")
	cr.SetRange(0, 10000)
	cr.SetDisplayRange(0, 1000)
	cr.SetDefault(0)
	cr.SetAnimates(true)
	page.AddChild(cr)

	cw := d.DefineIntParam(ParamCircleWords)
	cw.SetLabel("Circle words")
	cw.SetHint("Number of copies around the circle.")
	cw.SetRange(1, 1000)
	cw.SetDisplayRange(1, 100)
	cw.SetDefault(10)
	cw.SetAnimates(true)
	cw.SetLayoutHint(effect.LayoutHintDivider)
	page.AddChild(cw)

	ar := d.DefineDoubleParam(ParamArcRadius)
	ar.SetLabel("Arc radius")
	ar.SetHint("Radius of the arc the first line follows.")
	ar.SetRange(0, 10000)
	ar.SetDisplayRange(0, 1000)
	ar.SetDefault(100)
	ar.SetAnimates(true)
	page.AddChild(ar)

	aa := d.DefineDoubleParam(ParamArcAngle)
	aa.SetLabel("Arc angle")
	aa.SetHint("Sweep of the arc in degrees. 0 disables it.")
	aa.SetRange(0, 360)
	aa.SetDisplayRange(0, 360)
	aa.SetDefault(0)
	aa.SetAnimates(true)
	aa.SetLayoutHint(effect.LayoutHintDivider)
	page.AddChild(aa)
	return nil
}

// describeTransform defines the position and transform parameters.
func describeTransform(d *effect.Descriptor, page *effect.PageParamDescriptor) {
	rotate := d.DefineDoubleParam(ParamRotate)
	rotate.SetLabel("Rotate")
	rotate.SetHint("Rotation angle in degrees.")
	rotate.SetDoubleType(effect.DoubleAngle)
	rotate.SetRange(-360, 360)
	rotate.SetDisplayRange(-180, 180)
	rotate.SetDefault(0)
	rotate.SetAnimates(true)
	page.AddChild(rotate)

	scale := d.DefineDouble2DParam(ParamScale)
	scale.SetLabel("Scale")
	scale.SetHint("Scale factor around the position.")
	scale.SetDoubleType(effect.DoubleScale)
	scale.SetRange(-10000, -10000, 10000, 10000)
	scale.SetDisplayRange(0.1, 0.1, 10, 10)
	scale.SetDefault(1, 1)
	scale.SetAnimates(true)
	scale.SetLayoutHint(effect.LayoutHintNoNewLine)
	page.AddChild(scale)

	uniform := d.DefineBooleanParam(ParamUniform)
	uniform.SetLabel("Uniform")
	uniform.SetHint("Use the X scale for both directions.")
	uniform.SetDefault(false)
	uniform.SetAnimates(true)
	page.AddChild(uniform)

	skewX := d.DefineDoubleParam(ParamSkewX)
	skewX.SetLabel("Skew X")
	skewX.SetHint("Skew along the X axis.")
	skewX.SetRange(-10000, 10000)
	skewX.SetDisplayRange(-1, 1)
	skewX.SetDefault(0)
	skewX.SetAnimates(true)
	page.AddChild(skewX)

	skewY := d.DefineDoubleParam(ParamSkewY)
	skewY.SetLabel("Skew Y")
	skewY.SetHint("Skew along the Y axis.")
	skewY.SetRange(-10000, 10000)
	skewY.SetDisplayRange(-1, 1)
	skewY.SetDefault(0)
	skewY.SetAnimates(true)
	page.AddChild(skewY)

	order := d.DefineChoiceParam(ParamSkewOrder)
	order.SetLabel("Skew order")
	order.SetHint("The order in which skews are applied.")
	order.AppendOption("XY")
	order.AppendOption("YX")
	order.SetDefault(0)
	order.SetAnimates(true)
	page.AddChild(order)

	center := d.DefineDouble2DParam(ParamCenter)
	center.SetLabel("Position")
	center.SetHint("Position of the text and center of the transforms.")
	center.SetDoubleType(effect.DoubleXYAbsolute)
	center.SetDefaultCoordinateSystem(effect.CoordinatesNormalised)
	center.SetDefault(0.5, 0.5)
	center.SetAnimates(true)
	page.AddChild(center)

	reset := d.DefinePushButtonParam(ParamResetCenter)
	reset.SetLabel("Reset position")
	reset.SetHint("Move the position to the center of the output.")
	page.AddChild(reset)
}
