// Package edge highlights the edges of the Source clip.
package edge

import (
	"context"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/processor"
	"github.com/fxarena/arena/internal/filter"
	"github.com/fxarena/arena/internal/pixel"
)

const (
	PluginID           = "net.fxarena.openfx.MagickEdge"
	PluginVersionMajor = 1
	PluginVersionMinor = 0

	pluginName = "MagickEdge"
)

// ParamRadius is the edge radius in pixels.
const ParamRadius = "radius"

// Factory creates MagickEdge instances.
type Factory struct{}

func (Factory) Identifier() string          { return PluginID }
func (Factory) Version() (major, minor int) { return PluginVersionMajor, PluginVersionMinor }
func (Factory) Load() error                 { return nil }

func (Factory) Describe(d *effect.Descriptor) {
	d.SetLabel(pluginName)
	d.SetGrouping("Filter")
	d.SetDescription("Edge effect on image.")
	d.AddSupportedContext(effect.ContextGeneral)
	d.AddSupportedContext(effect.ContextFilter)
	d.AddSupportedContext(effect.ContextGenerator)
	d.AddSupportedBitDepth(effect.BitDepthFloat)
	d.SetSupportsTiles(false)
	d.SetSupportsMultiResolution(true)
	d.SetSupportsRenderScale(true)
	d.SetRenderThreadSafety(effect.ThreadSafetyInstance)
}

func (Factory) DescribeInContext(d *effect.Descriptor, ctx effect.Context, host effect.HostDescription) error {
	page := processor.DescribeInContext(d, "Edge", effect.PixelComponentRGBA, effect.PixelComponentRGB)
	r := d.DefineDoubleParam(ParamRadius)
	r.SetLabel("Radius")
	r.SetHint("Apply edge effect based on radius")
	r.SetRange(0, 10)
	r.SetDisplayRange(0, 10)
	r.SetDefault(1)
	page.AddChild(r)
	return nil
}

func (Factory) CreateInstance(h *effect.Handle, ctx effect.Context) (effect.Instance, error) {
	return processor.New(h, func(ctx context.Context, t float64, src *pixel.Buffer) (*pixel.Buffer, error) {
		return filter.EdgeBuffer(src, h.DoubleParam(ParamRadius).ValueAtTime(t)), nil
	}, effect.PixelComponentRGBA, effect.PixelComponentRGB), nil
}
