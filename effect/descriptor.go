package effect

import (
	"fmt"
	"slices"
)

// Standard clip names.
const (
	ClipSource = "Source"
	ClipOutput = "Output"
)

// ClipDescriptor defines an input or output of an effect.
type ClipDescriptor struct {
	name           string
	components     []PixelComponents
	optional       bool
	temporalAccess bool
	supportsTiles  bool
	isMask         bool
}

func (c *ClipDescriptor) Name() string { return c.name }

// AddSupportedComponent declares a channel layout the clip accepts.
func (c *ClipDescriptor) AddSupportedComponent(p PixelComponents) {
	if !slices.Contains(c.components, p) {
		c.components = append(c.components, p)
	}
}

func (c *ClipDescriptor) SupportedComponents() []PixelComponents {
	return append([]PixelComponents(nil), c.components...)
}

// Supports reports whether the clip accepts p.
func (c *ClipDescriptor) Supports(p PixelComponents) bool { return slices.Contains(c.components, p) }

func (c *ClipDescriptor) SetOptional(v bool)              { c.optional = v }
func (c *ClipDescriptor) Optional() bool                  { return c.optional }
func (c *ClipDescriptor) SetTemporalClipAccess(v bool)    { c.temporalAccess = v }
func (c *ClipDescriptor) TemporalClipAccess() bool        { return c.temporalAccess }
func (c *ClipDescriptor) SetSupportsTiles(v bool)         { c.supportsTiles = v }
func (c *ClipDescriptor) SupportsTiles() bool             { return c.supportsTiles }
func (c *ClipDescriptor) SetIsMask(v bool)                { c.isMask = v }
func (c *ClipDescriptor) IsMask() bool                    { return c.isMask }

// Descriptor collects everything a plugin declares about itself during
// Describe and DescribeInContext.
type Descriptor struct {
	id           string
	major, minor int

	label       string
	grouping    string
	description string

	contexts []Context
	depths   []BitDepth

	supportsTiles      bool
	supportsMultiRes   bool
	temporalAccess     bool
	threadSafety       ThreadSafety
	hostFrameThreading bool
	deprecated         bool
	renderScale        bool

	extensions []string
	evaluation float64

	clips  []*ClipDescriptor
	params []ParamDescriptor
	byName map[string]ParamDescriptor
}

// NewDescriptor returns an empty descriptor for the given plugin.
func NewDescriptor(id string, major, minor int) *Descriptor {
	return &Descriptor{
		id:            id,
		major:         major,
		minor:         minor,
		supportsTiles: true,
		renderScale:   true,
		byName:        make(map[string]ParamDescriptor),
	}
}

func (d *Descriptor) Identifier() string            { return d.id }
func (d *Descriptor) Version() (major, minor int)   { return d.major, d.minor }
func (d *Descriptor) SetLabel(label string)         { d.label = label }
func (d *Descriptor) Label() string                 { return d.label }
func (d *Descriptor) SetGrouping(g string)          { d.grouping = g }
func (d *Descriptor) Grouping() string              { return d.grouping }
func (d *Descriptor) SetDescription(s string)       { d.description = s }
func (d *Descriptor) Description() string           { return d.description }
func (d *Descriptor) SetSupportsTiles(v bool)       { d.supportsTiles = v }
func (d *Descriptor) SupportsTiles() bool           { return d.supportsTiles }
func (d *Descriptor) SetSupportsMultiResolution(v bool) {
	d.supportsMultiRes = v
}
func (d *Descriptor) SupportsMultiResolution() bool { return d.supportsMultiRes }
func (d *Descriptor) SetTemporalClipAccess(v bool)  { d.temporalAccess = v }
func (d *Descriptor) SetRenderThreadSafety(t ThreadSafety) {
	d.threadSafety = t
}
func (d *Descriptor) RenderThreadSafety() ThreadSafety { return d.threadSafety }
func (d *Descriptor) SetHostFrameThreading(v bool)     { d.hostFrameThreading = v }
func (d *Descriptor) HostFrameThreading() bool         { return d.hostFrameThreading }
func (d *Descriptor) SetIsDeprecated(v bool)           { d.deprecated = v }
func (d *Descriptor) IsDeprecated() bool               { return d.deprecated }

// SetSupportsRenderScale declares whether the plugin renders at proxy scales.
func (d *Descriptor) SetSupportsRenderScale(v bool) { d.renderScale = v }
func (d *Descriptor) SupportsRenderScale() bool     { return d.renderScale }

// SetExtensions sets the file extensions a reader handles.
func (d *Descriptor) SetExtensions(ext ...string) { d.extensions = append([]string(nil), ext...) }
func (d *Descriptor) Extensions() []string        { return append([]string(nil), d.extensions...) }

// SetEvaluation sets how well a reader handles its formats, 0..100.
func (d *Descriptor) SetEvaluation(v float64) { d.evaluation = v }
func (d *Descriptor) Evaluation() float64     { return d.evaluation }

func (d *Descriptor) AddSupportedContext(c Context) {
	if !slices.Contains(d.contexts, c) {
		d.contexts = append(d.contexts, c)
	}
}

func (d *Descriptor) SupportedContexts() []Context { return append([]Context(nil), d.contexts...) }

func (d *Descriptor) SupportsContext(c Context) bool { return slices.Contains(d.contexts, c) }

func (d *Descriptor) AddSupportedBitDepth(b BitDepth) {
	if !slices.Contains(d.depths, b) {
		d.depths = append(d.depths, b)
	}
}

func (d *Descriptor) SupportedBitDepths() []BitDepth { return append([]BitDepth(nil), d.depths...) }

func (d *Descriptor) SupportsBitDepth(b BitDepth) bool { return slices.Contains(d.depths, b) }

// DefineClip adds a clip. Defining the same name twice panics.
func (d *Descriptor) DefineClip(name string) *ClipDescriptor {
	for _, c := range d.clips {
		if c.name == name {
			panic(fmt.Sprintf("effect: clip %q defined twice", name))
		}
	}
	c := &ClipDescriptor{name: name, supportsTiles: true}
	d.clips = append(d.clips, c)
	return c
}

// Clip returns the clip descriptor named name, or nil.
func (d *Descriptor) Clip(name string) *ClipDescriptor {
	for _, c := range d.clips {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Clips returns the clip descriptors in definition order.
func (d *Descriptor) Clips() []*ClipDescriptor { return append([]*ClipDescriptor(nil), d.clips...) }

// Param returns the parameter descriptor named name, or nil.
func (d *Descriptor) Param(name string) ParamDescriptor { return d.byName[name] }

// Params returns the parameter descriptors in definition order.
func (d *Descriptor) Params() []ParamDescriptor { return append([]ParamDescriptor(nil), d.params...) }

func (d *Descriptor) define(p ParamDescriptor) {
	if _, dup := d.byName[p.Name()]; dup {
		panic(fmt.Sprintf("effect: parameter %q defined twice", p.Name()))
	}
	d.byName[p.Name()] = p
	d.params = append(d.params, p)
}

func (d *Descriptor) DefineDoubleParam(name string) *DoubleParamDescriptor {
	p := &DoubleParamDescriptor{paramBase: newParamBase(name, KindDouble)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineDouble2DParam(name string) *Double2DParamDescriptor {
	p := &Double2DParamDescriptor{paramBase: newParamBase(name, KindDouble2D)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineDouble3DParam(name string) *Double3DParamDescriptor {
	p := &Double3DParamDescriptor{paramBase: newParamBase(name, KindDouble3D)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineIntParam(name string) *IntParamDescriptor {
	p := &IntParamDescriptor{paramBase: newParamBase(name, KindInt)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineInt2DParam(name string) *Int2DParamDescriptor {
	p := &Int2DParamDescriptor{paramBase: newParamBase(name, KindInt2D)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineBooleanParam(name string) *BooleanParamDescriptor {
	p := &BooleanParamDescriptor{paramBase: newParamBase(name, KindBoolean)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineChoiceParam(name string) *ChoiceParamDescriptor {
	p := &ChoiceParamDescriptor{paramBase: newParamBase(name, KindChoice)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineStringParam(name string) *StringParamDescriptor {
	p := &StringParamDescriptor{paramBase: newParamBase(name, KindString)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineRGBAParam(name string) *RGBAParamDescriptor {
	p := &RGBAParamDescriptor{paramBase: newParamBase(name, KindRGBA)}
	d.define(p)
	return p
}

func (d *Descriptor) DefineRGBParam(name string) *RGBParamDescriptor {
	p := &RGBParamDescriptor{paramBase: newParamBase(name, KindRGB)}
	d.define(p)
	return p
}

func (d *Descriptor) DefinePushButtonParam(name string) *PushButtonParamDescriptor {
	p := &PushButtonParamDescriptor{paramBase: newParamBase(name, KindPushButton)}
	p.animates = false
	d.define(p)
	return p
}

func (d *Descriptor) DefinePageParam(name string) *PageParamDescriptor {
	p := &PageParamDescriptor{paramBase: newParamBase(name, KindPage)}
	p.animates = false
	d.define(p)
	return p
}

func (d *Descriptor) DefineGroupParam(name string) *GroupParamDescriptor {
	p := &GroupParamDescriptor{paramBase: newParamBase(name, KindGroup)}
	p.animates = false
	d.define(p)
	return p
}

// Validate checks the descriptor for mistakes a host would reject when
// instantiating it in ctx.
func (d *Descriptor) Validate(ctx Context) error {
	if !d.SupportsContext(ctx) {
		return fmt.Errorf("%w: %s does not support %s", ErrUnsupportedContext, d.id, ctx)
	}
	if d.Clip(ClipOutput) == nil {
		return fmt.Errorf("%w: %s has no %s clip", ErrInvalidDescriptor, d.id, ClipOutput)
	}
	if (ctx == ContextFilter || ctx == ContextGeneral) && d.Clip(ClipSource) == nil && !slices.Contains(d.contexts, ContextReader) {
		return fmt.Errorf("%w: %s in %s context has no %s clip", ErrInvalidDescriptor, d.id, ctx, ClipSource)
	}
	if ctx == ContextReader {
		if p, ok := d.byName["filename"].(*StringParamDescriptor); !ok || p.stringType != StringFilePath {
			return fmt.Errorf("%w: reader %s has no filename parameter", ErrInvalidDescriptor, d.id)
		}
	}
	for _, p := range d.params {
		if c, ok := p.(*ChoiceParamDescriptor); ok && len(c.options) > 0 && (c.def < 0 || c.def >= len(c.options)) {
			return fmt.Errorf("%w: choice %q default %d out of range", ErrInvalidDescriptor, c.name, c.def)
		}
	}
	return nil
}
