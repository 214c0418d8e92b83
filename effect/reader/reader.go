// Package reader is the shared scaffolding of file reader effects: the
// common descriptor, the filename parameter and an Instance that turns a
// small Decoder into a full effect.
package reader

import (
	"context"
	"fmt"

	"github.com/fxarena/arena/effect"
)

// Parameter names shared by every reader.
const (
	ParamFilename = "filename"
	PageControls  = "Controls"
)

// Describe sets the properties every reader has.
func Describe(d *effect.Descriptor, extensions []string, evaluation float64) {
	d.SetGrouping("Image/Readers")
	d.AddSupportedContext(effect.ContextReader)
	d.AddSupportedContext(effect.ContextGeneral)
	d.AddSupportedBitDepth(effect.BitDepthFloat)
	d.SetSupportsTiles(false)
	d.SetSupportsMultiResolution(false)
	d.SetSupportsRenderScale(false)
	d.SetRenderThreadSafety(effect.ThreadSafetyInstance)
	d.SetExtensions(extensions...)
	d.SetEvaluation(evaluation)
}

// DescribeInContext defines the output clip and the filename parameter,
// and returns the Controls page for the reader's own parameters.
func DescribeInContext(d *effect.Descriptor) *effect.PageParamDescriptor {
	out := d.DefineClip(effect.ClipOutput)
	out.AddSupportedComponent(effect.PixelComponentRGBA)
	out.SetSupportsTiles(false)

	page := d.DefinePageParam(PageControls)
	fn := d.DefineStringParam(ParamFilename)
	fn.SetLabel("File")
	fn.SetHint("The input image file.")
	fn.SetStringType(effect.StringFilePath)
	fn.SetFilePathExists(true)
	fn.SetAnimates(false)
	page.AddChild(fn)
	return page
}

// Decoder is the format-specific half of a reader.
type Decoder interface {
	// Decode fills window of dst with the frame at t. dst is Float RGBA.
	Decode(ctx context.Context, filename string, t float64, window effect.RectI, dst *effect.Image) error

	// FrameBounds returns the pixel bounds and pixel aspect of the frame.
	FrameBounds(filename string, t float64) (bounds effect.RectI, par float64, err error)

	// InputFileChanged is called when the filename changes and reports
	// the layout of the decoded images.
	InputFileChanged(filename string) (effect.PreMultiplication, effect.PixelComponents, error)

	// RestoreState rebuilds state that depends on the file after an
	// instance is created with a filename already set.
	RestoreState(filename string) error
}

// Plugin adapts a Decoder to effect.Instance.
type Plugin struct {
	h   *effect.Handle
	dec Decoder

	premult effect.PreMultiplication
	comps   effect.PixelComponents
	par     float64
}

// New binds dec to h. When the filename is already set the decoder is
// given a chance to restore its state; failures are reported through
// the persistent message and do not prevent creation.
func New(h *effect.Handle, dec Decoder) *Plugin {
	p := &Plugin{
		h:       h,
		dec:     dec,
		premult: effect.PreMultUnPreMultiplied,
		comps:   effect.PixelComponentRGBA,
		par:     1,
	}
	if fn := p.filename(0); fn != "" {
		if err := dec.RestoreState(fn); err != nil {
			effect.Logger().Warn("reader: restore state", "file", fn, "err", err)
		}
	}
	return p
}

func (p *Plugin) filename(t float64) string {
	return p.h.StringParam(ParamFilename).ValueAtTime(t)
}

// Render decodes the requested window into the output clip.
func (p *Plugin) Render(ctx context.Context, args effect.RenderArgs) error {
	if err := effect.CheckRenderScale(p.h.Descriptor().SupportsRenderScale(), args.RenderScale); err != nil {
		return err
	}
	dst, err := p.h.Clip(effect.ClipOutput).FetchImage(ctx, args.Time)
	if err != nil {
		return err
	}
	if dst == nil {
		return effect.NewStatusError(effect.StatFailed, fmt.Errorf("reader: no output image"))
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
	fn := p.filename(args.Time)
	if fn == "" {
		return p.h.Fail(effect.StatFailed, "No filename")
	}
	return p.dec.Decode(ctx, fn, args.Time, args.RenderWindow, dst)
}

// RegionOfDefinition is the frame bounds of the current file.
func (p *Plugin) RegionOfDefinition(args effect.RegionOfDefinitionArgs) (effect.RectD, bool, error) {
	fn := p.filename(args.Time)
	if fn == "" {
		return effect.RectD{}, false, nil
	}
	b, par, err := p.dec.FrameBounds(fn, args.Time)
	if err != nil {
		return effect.RectD{}, false, err
	}
	if par > 0 {
		p.par = par
	}
	return b.ToCanonical(effect.UnitScale, p.par), true, nil
}

// ChangedParam forwards filename changes to the decoder.
func (p *Plugin) ChangedParam(args effect.InstanceChangedArgs, name string) error {
	if name != ParamFilename {
		return nil
	}
	p.h.ClearPersistentMessage()
	fn := p.filename(args.Time)
	if fn == "" {
		return nil
	}
	premult, comps, err := p.dec.InputFileChanged(fn)
	if err != nil {
		return err
	}
	p.premult, p.comps = premult, comps
	return nil
}

// ClipPreferences reports the layout the decoder announced.
func (p *Plugin) ClipPreferences(cp *effect.ClipPreferences) {
	cp.OutputComponents = p.comps
	cp.OutputPremult = p.premult
	cp.PixelAspect = p.par
}
