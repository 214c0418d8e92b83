// Package motionblur smears the Source clip along a direction.
package motionblur

import (
	"context"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/processor"
	"github.com/fxarena/arena/internal/filter"
	"github.com/fxarena/arena/internal/pixel"
)

const (
	PluginID           = "net.fxarena.openfx.MagickMotionBlur"
	PluginVersionMajor = 1
	PluginVersionMinor = 0

	pluginName = "MagickMotionBlur"
)

// Parameter names.
const (
	ParamRadius = "radius"
	ParamSigma  = "sigma"
	ParamAngle  = "angle"
)

// Factory creates MagickMotionBlur instances.
type Factory struct{}

func (Factory) Identifier() string          { return PluginID }
func (Factory) Version() (major, minor int) { return PluginVersionMajor, PluginVersionMinor }
func (Factory) Load() error                 { return nil }

func (Factory) Describe(d *effect.Descriptor) {
	d.SetLabel(pluginName)
	d.SetGrouping("Filter")
	d.SetDescription("MotionBlur effect on image.")
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
	page := processor.DescribeInContext(d, "Blur", effect.PixelComponentRGBA, effect.PixelComponentRGB)
	for _, p := range []struct {
		name, label, hint string
		lo, hi, def       float64
	}{
		{ParamRadius, "Radius", "Apply MotionBlur based on radius", 0, 10, 0},
		{ParamSigma, "Sigma", "Apply MotionBlur based on sigma", 0, 100, 30},
		{ParamAngle, "Angle", "Apply MotionBlur based on angle", -180, 180, 90},
	} {
		dp := d.DefineDoubleParam(p.name)
		dp.SetLabel(p.label)
		dp.SetHint(p.hint)
		dp.SetRange(p.lo, p.hi)
		dp.SetDisplayRange(p.lo, p.hi)
		dp.SetDefault(p.def)
		page.AddChild(dp)
	}
	return nil
}

func (Factory) CreateInstance(h *effect.Handle, ctx effect.Context) (effect.Instance, error) {
	p := processor.New(h, func(ctx context.Context, t float64, src *pixel.Buffer) (*pixel.Buffer, error) {
		radius, sigma, angle := values(h, t)
		return filter.MotionBlurBuffer(src, radius, sigma, angle), nil
	}, effect.PixelComponentRGBA, effect.PixelComponentRGB)
	// a zero radius and sigma is a single-tap kernel
	p.Identity = func(t float64) bool {
		radius, sigma, _ := values(h, t)
		return radius == 0 && sigma == 0
	}
	return p, nil
}

func values(h *effect.Handle, t float64) (radius, sigma, angle float64) {
	return h.DoubleParam(ParamRadius).ValueAtTime(t),
		h.DoubleParam(ParamSigma).ValueAtTime(t),
		h.DoubleParam(ParamAngle).ValueAtTime(t)
}
