// Package polar wraps an image around its center, or unwraps a wrapped
// one back to rows and columns.
package polar

import (
	"context"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/processor"
	"github.com/fxarena/arena/internal/filter"
	"github.com/fxarena/arena/internal/pixel"
	"github.com/fxarena/arena/internal/threads"
)

const (
	PluginID           = "net.fxarena.openfx.Polar"
	PluginVersionMajor = 4
	PluginVersionMinor = 2

	pluginName     = "PolarOFX"
	pluginGrouping = "Extra/Distort"
)

// Parameter names.
const (
	ParamVirtualPixel = "pixel"
	ParamDePolar      = "dePolar"
	ParamFlip         = "flip"
	ParamRotate       = "rotate"
	ParamMatte        = "matte"
)

// Factory creates Polar instances.
type Factory struct{}

func (Factory) Identifier() string          { return PluginID }
func (Factory) Version() (major, minor int) { return PluginVersionMajor, PluginVersionMinor }
func (Factory) Load() error                 { return nil }

func (Factory) Describe(d *effect.Descriptor) {
	d.SetLabel(pluginName)
	d.SetGrouping(pluginGrouping)
	d.SetDescription("Polar Distort transform node.")
	d.AddSupportedContext(effect.ContextGeneral)
	d.AddSupportedContext(effect.ContextFilter)
	d.AddSupportedBitDepth(effect.BitDepthFloat)
	d.SetSupportsTiles(false)
	d.SetSupportsMultiResolution(true)
	d.SetSupportsRenderScale(true)
	d.SetRenderThreadSafety(effect.ThreadSafetyFully)
	d.SetHostFrameThreading(false)
}

func (Factory) DescribeInContext(d *effect.Descriptor, ctx effect.Context, host effect.HostDescription) error {
	page := processor.DescribeInContext(d, pluginName, effect.PixelComponentRGBA)

	rot := d.DefineDoubleParam(ParamRotate)
	rot.SetLabel("Rotate")
	rot.SetHint("Polar rotate")
	rot.SetRange(-360, 360)
	rot.SetDisplayRange(-360, 360)
	rot.SetDefault(0)
	page.AddChild(rot)

	for _, b := range []struct{ name, label, hint string }{
		{ParamDePolar, "DePolar", "DePolar"},
		{ParamFlip, "Flip", "Polar Flip"},
		{ParamMatte, "Matte", "Merge Alpha before applying effect"},
	} {
		p := d.DefineBooleanParam(b.name)
		p.SetLabel(b.label)
		p.SetHint(b.hint)
		p.SetDefault(false)
		p.SetAnimates(true)
		page.AddChild(p)
	}

	vp := d.DefineChoiceParam(ParamVirtualPixel)
	vp.SetLabel("Virtual Pixel")
	vp.SetHint("Virtual Pixel Method")
	for _, name := range filter.VirtualPixelNames() {
		vp.AppendOption(name)
	}
	vp.SetDefault(int(filter.VirtualTransparent))
	vp.SetAnimates(true)
	page.AddChild(vp)
	return nil
}

func (Factory) CreateInstance(h *effect.Handle, ctx effect.Context) (effect.Instance, error) {
	return processor.New(h, func(ctx context.Context, t float64, src *pixel.Buffer) (*pixel.Buffer, error) {
		threads.Limit(h.Host().NumCPUs)
		return distort(src, settings{
			method:  filter.VirtualPixel(h.ChoiceParam(ParamVirtualPixel).ValueAtTime(t)),
			dePolar: h.BooleanParam(ParamDePolar).ValueAtTime(t),
			flip:    h.BooleanParam(ParamFlip).ValueAtTime(t),
			matte:   h.BooleanParam(ParamMatte).ValueAtTime(t),
			rotate:  h.DoubleParam(ParamRotate).ValueAtTime(t),
		}), nil
	}, effect.PixelComponentRGBA), nil
}

type settings struct {
	method               filter.VirtualPixel
	dePolar, flip, matte bool
	rotate               float64
}

// distort runs the polar pipeline on a top-down buffer. The result has
// the size of src and is premultiplied.
func distort(src *pixel.Buffer, s settings) *pixel.Buffer {
	w, h := src.W, src.H
	img := src.Clone()
	img.Premultiply()
	if s.matte {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 1
		}
	}
	if s.flip {
		img.FlipV()
	}
	if s.dePolar {
		img = filter.DePolarBuffer(img, s.method)
	} else {
		img = filter.PolarBuffer(img, s.method)
		if s.rotate != 0 {
			img = filter.RotateAboutBuffer(img, s.rotate, float64(img.W/2), float64(img.H/2), s.method)
		}
	}
	if img.H > h {
		img = filter.ScaleToHeight(img, h)
	}
	return filter.Extent(img, w, h)
}
