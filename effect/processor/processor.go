// Package processor is the shared scaffolding of effects that transform
// their Source clip: the Source/Output clip pair, the render guards and
// the trip between host images and pixel buffers. A plugin supplies the
// Func that does the actual work.
package processor

import (
	"context"
	"fmt"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/internal/pixel"
)

// DescribeInContext defines Source and Output clips accepting comps and
// returns a page named page for the plugin's parameters.
func DescribeInContext(d *effect.Descriptor, page string, comps ...effect.PixelComponents) *effect.PageParamDescriptor {
	src := d.DefineClip(effect.ClipSource)
	out := d.DefineClip(effect.ClipOutput)
	for _, c := range comps {
		src.AddSupportedComponent(c)
		out.AddSupportedComponent(c)
	}
	src.SetTemporalClipAccess(false)
	src.SetSupportsTiles(false)
	src.SetIsMask(false)
	out.SetSupportsTiles(false)
	return d.DefinePageParam(page)
}

// Func transforms the source pixels at t. src covers the source region
// of definition, top-down. The result is placed at the same origin and
// may differ in size; whatever falls outside the region is dropped.
type Func func(ctx context.Context, t float64, src *pixel.Buffer) (*pixel.Buffer, error)

// Plugin adapts a Func to effect.Instance.
type Plugin struct {
	h     *effect.Handle
	apply Func
	comps []effect.PixelComponents

	// Identity, when set, reports the times at which the source passes
	// through unchanged.
	Identity func(t float64) bool
}

// New binds apply to h. The output must have one of comps.
func New(h *effect.Handle, apply Func, comps ...effect.PixelComponents) *Plugin {
	return &Plugin{h: h, apply: apply, comps: comps}
}

// Handle returns the instance handle.
func (p *Plugin) Handle() *effect.Handle { return p.h }

func (p *Plugin) Render(ctx context.Context, args effect.RenderArgs) error {
	h := p.h
	if err := effect.CheckRenderScale(h.Descriptor().SupportsRenderScale(), args.RenderScale); err != nil {
		return err
	}
	src, err := h.Clip(effect.ClipSource).FetchImage(ctx, args.Time)
	if err != nil {
		return err
	}
	if src == nil {
		return effect.NewStatusError(effect.StatFailed, fmt.Errorf("processor: no source image"))
	}
	if err := h.CheckImageProperties(src, args); err != nil {
		return err
	}
	dst, err := h.Clip(effect.ClipOutput).FetchImage(ctx, args.Time)
	if err != nil {
		return err
	}
	if dst == nil {
		return effect.NewStatusError(effect.StatFailed, fmt.Errorf("processor: no output image"))
	}
	if err := h.CheckImageProperties(dst, args); err != nil {
		return err
	}
	if err := effect.CheckDepth(dst, effect.BitDepthFloat); err != nil {
		return err
	}
	if err := effect.CheckComponents(dst, p.comps...); err != nil {
		return err
	}
	if err := effect.CheckSameFormat(src, dst); err != nil {
		return err
	}
	win := args.RenderWindow
	if err := effect.CheckRenderWindow(win, dst.Bounds); err != nil {
		return err
	}

	out := pixel.New(win.Width(), win.Height())
	area := src.Bounds.Intersect(src.RoD)
	if !area.Empty() {
		buf, err := pixel.FromHost(src, area)
		if err != nil {
			return h.Failf(effect.StatErrImageFormat, err, "Wrong source image")
		}
		res, err := p.apply(ctx, args.Time, buf)
		if err != nil {
			return err
		}
		out.Premultiplied = res.Premultiplied
		// both buffers are top-down, so rows count from the top edges
		out.Paste(res, area.X1-win.X1, win.Y2-area.Y2)
	}
	return pixel.ToHost(out, dst, win)
}

// RegionOfDefinition is the source region, or infinite when the source
// is not connected.
func (p *Plugin) RegionOfDefinition(args effect.RegionOfDefinitionArgs) (effect.RectD, bool, error) {
	if c := p.h.Clip(effect.ClipSource); c.IsConnected() {
		return c.RegionOfDefinition(args.Time), true, nil
	}
	return effect.InfiniteRect(), true, nil
}

// IsIdentity passes the source through when it is not connected or when
// Identity says so.
func (p *Plugin) IsIdentity(args effect.IsIdentityArgs) (effect.IdentityResult, error) {
	if err := effect.CheckRenderScale(p.h.Descriptor().SupportsRenderScale(), args.RenderScale); err != nil {
		return effect.IdentityResult{}, err
	}
	if !p.h.Clip(effect.ClipSource).IsConnected() || (p.Identity != nil && p.Identity(args.Time)) {
		return effect.IdentityResult{Identity: true, Clip: effect.ClipSource, Time: args.Time}, nil
	}
	return effect.IdentityResult{}, nil
}

func (p *Plugin) ChangedParam(args effect.InstanceChangedArgs, name string) error {
	p.h.ClearPersistentMessage()
	return nil
}

// ClipPreferences matches the output layout to the connected source.
func (p *Plugin) ClipPreferences(cp *effect.ClipPreferences) {
	if c := p.h.Clip(effect.ClipSource); c.IsConnected() {
		cp.OutputComponents = c.PixelComponents()
		cp.OutputPremult = c.PreMultiplication()
	}
}
