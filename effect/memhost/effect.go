package memhost

import (
	"context"
	"fmt"
	"sync"

	"github.com/fxarena/arena/effect"
)

// Effect is a loaded plugin instance.
type Effect struct {
	host    *Host
	factory effect.Factory
	desc    *effect.Descriptor
	ctx     effect.Context
	params  *effect.ParamSet
	handle  *effect.Handle
	inst    effect.Instance

	clips   map[string]*effect.Clip
	sources map[string]*imageSource
	output  *outputSource
	prefs   effect.ClipPreferences

	mu sync.Mutex
}

// Load runs the describe sequence for factory in ctx and creates an
// instance.
func (h *Host) Load(factory effect.Factory, ctx effect.Context) (*Effect, error) {
	log := effect.Logger().With("plugin", factory.Identifier(), "context", ctx.String())

	if err := factory.Load(); err != nil {
		return nil, fmt.Errorf("memhost: load %s: %w", factory.Identifier(), err)
	}
	major, minor := factory.Version()
	desc := effect.NewDescriptor(factory.Identifier(), major, minor)
	factory.Describe(desc)
	if !desc.SupportsContext(ctx) {
		return nil, fmt.Errorf("memhost: %w: %s does not support %s", effect.ErrUnsupportedContext, factory.Identifier(), ctx)
	}
	if err := factory.DescribeInContext(desc, ctx, h.desc); err != nil {
		return nil, fmt.Errorf("memhost: describe %s in %s: %w", factory.Identifier(), ctx, err)
	}
	if err := desc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("memhost: %w", err)
	}

	e := &Effect{
		host:    h,
		factory: factory,
		desc:    desc,
		ctx:     ctx,
		params:  effect.NewParamSet(desc, h.project),
		clips:   make(map[string]*effect.Clip),
		sources: make(map[string]*imageSource),
		prefs: effect.ClipPreferences{
			OutputComponents: effect.PixelComponentRGBA,
			OutputPremult:    effect.PreMultPreMultiplied,
			OutputDepth:      effect.BitDepthFloat,
			PixelAspect:      1,
		},
	}
	var clips []*effect.Clip
	for _, cd := range desc.Clips() {
		c := effect.NewClip(cd, nil)
		if cd.Name() == effect.ClipOutput {
			e.output = &outputSource{e: e}
			c.Connect(e.output)
		}
		e.clips[cd.Name()] = c
		clips = append(clips, c)
	}
	e.handle = effect.NewHandle(desc, ctx, h.desc, e.params, clips)

	inst, err := guard(func() (effect.Instance, error) { return factory.CreateInstance(e.handle, ctx) })
	if err != nil {
		return nil, fmt.Errorf("memhost: create %s: %w", factory.Identifier(), err)
	}
	e.inst = inst
	e.refreshPreferences()
	log.Debug("instance created", "params", len(desc.Params()), "clips", len(clips))
	return e, nil
}

// Descriptor returns the descriptor built for the instance's context.
func (e *Effect) Descriptor() *effect.Descriptor { return e.desc }

// Params returns the live parameter set.
func (e *Effect) Params() *effect.ParamSet { return e.params }

// Handle returns the plugin's view of the host.
func (e *Effect) Handle() *effect.Handle { return e.handle }

// Instance returns the plugin instance.
func (e *Effect) Instance() effect.Instance { return e.inst }

// Preferences returns the output preferences after the last
// ClipPreferences call.
func (e *Effect) Preferences() effect.ClipPreferences { return e.prefs }

// Connect attaches img to the named input clip. A nil img disconnects.
func (e *Effect) Connect(name string, img *effect.Image) error {
	c, ok := e.clips[name]
	if !ok {
		return fmt.Errorf("memhost: %s has no clip %q", e.desc.Identifier(), name)
	}
	if name == effect.ClipOutput {
		return fmt.Errorf("memhost: cannot connect the %s clip", effect.ClipOutput)
	}
	if img == nil {
		e.Disconnect(name)
		return nil
	}
	if !c.Descriptor().Supports(img.Components) {
		return fmt.Errorf("memhost: clip %q does not accept %s images", name, img.Components)
	}
	src := &imageSource{e: e, img: img}
	e.sources[name] = src
	c.Connect(src)
	e.refreshPreferences()
	return nil
}

// Disconnect detaches the named input clip.
func (e *Effect) Disconnect(name string) {
	if c, ok := e.clips[name]; ok && name != effect.ClipOutput {
		c.Connect(nil)
		delete(e.sources, name)
		e.refreshPreferences()
	}
}

// SetParam parses value into the named parameter and notifies the
// instance as a user edit at the current time.
func (e *Effect) SetParam(name, value string) error {
	if err := e.params.SetFromString(name, value); err != nil {
		return err
	}
	return e.ChangeParam(name, e.params.Time())
}

// ChangeParam tells the instance that name was edited at time t.
func (e *Effect) ChangeParam(name string, t float64) error {
	h, ok := e.inst.(effect.ParamChangeHandler)
	if !ok {
		return nil
	}
	e.params.SetTime(t)
	_, err := guard(func() (struct{}, error) {
		return struct{}{}, h.ChangedParam(effect.InstanceChangedArgs{
			Reason:      effect.ChangeUserEdit,
			Time:        t,
			RenderScale: e.host.scale,
		}, name)
	})
	e.refreshPreferences()
	return err
}

// RegionOfDefinition returns the output extent at t in canonical
// coordinates. Infinite edges are clamped to the project.
func (e *Effect) RegionOfDefinition(t float64) (effect.RectD, error) {
	e.params.SetTime(t)
	type result struct {
		rod effect.RectD
		ok  bool
	}
	r, err := guard(func() (result, error) {
		rod, ok, err := e.inst.RegionOfDefinition(effect.RegionOfDefinitionArgs{Time: t, RenderScale: e.host.scale})
		return result{rod, ok}, err
	})
	if err != nil {
		return effect.RectD{}, err
	}
	rod := r.rod
	if !r.ok {
		rod = e.defaultRoD(t)
	}
	p := e.host.project
	if rod.X1 <= effect.InfiniteMin {
		rod.X1 = p.X1
	}
	if rod.Y1 <= effect.InfiniteMin {
		rod.Y1 = p.Y1
	}
	if rod.X2 >= effect.InfiniteMax {
		rod.X2 = p.X2
	}
	if rod.Y2 >= effect.InfiniteMax {
		rod.Y2 = p.Y2
	}
	return rod, nil
}

func (e *Effect) defaultRoD(t float64) effect.RectD {
	if c, ok := e.clips[effect.ClipSource]; ok && c.IsConnected() {
		return c.RegionOfDefinition(t)
	}
	return e.host.project
}

// IsIdentity asks the instance whether rendering window at t can be
// replaced by a copy of one of its inputs.
func (e *Effect) IsIdentity(t float64, window effect.RectI) (effect.IdentityResult, error) {
	ic, ok := e.inst.(effect.IdentityChecker)
	if !ok {
		return effect.IdentityResult{}, nil
	}
	e.params.SetTime(t)
	return guard(func() (effect.IdentityResult, error) {
		return ic.IsIdentity(effect.IsIdentityArgs{
			Time:         t,
			RenderWindow: window,
			RenderScale:  e.host.scale,
		})
	})
}

// Render renders window at t. An empty window renders the whole region
// of definition. The returned image is Float and covers the window
// clipped to the region of definition.
func (e *Effect) Render(ctx context.Context, t float64, window effect.RectI) (*effect.Image, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rod, err := e.RegionOfDefinition(t)
	if err != nil {
		return nil, err
	}
	rodPix := rod.ToPixel(e.host.scale, e.prefs.PixelAspect)
	if window.Empty() {
		window = rodPix
	} else {
		window = window.Intersect(rodPix)
	}
	if window.Empty() {
		return nil, effect.NewStatusError(effect.StatErrValue, fmt.Errorf("memhost: empty render window for region %v", rod))
	}
	log := effect.Logger().With("plugin", e.desc.Identifier())

	out, err := effect.NewImage(window, effect.BitDepthFloat, e.prefs.OutputComponents)
	if err != nil {
		return nil, err
	}
	out.RoD = rodPix
	out.RenderScale = e.host.scale
	out.Premult = e.prefs.OutputPremult
	out.PixelAspect = e.prefs.PixelAspect

	id, err := e.IsIdentity(t, window)
	if err != nil {
		return nil, err
	}
	if id.Identity {
		log.Debug("identity", "clip", id.Clip, "time", id.Time)
		if c, ok := e.clips[id.Clip]; ok {
			src, err := c.FetchImage(ctx, id.Time)
			if err != nil {
				return nil, err
			}
			if src != nil {
				if err := out.CopyFrom(src); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	}

	e.output.img = out
	defer func() { e.output.img = nil }()
	args := effect.RenderArgs{
		Time:         t,
		RenderWindow: window,
		RenderScale:  e.host.scale,
		Field:        effect.FieldNone,
	}
	_, err = guard(func() (struct{}, error) { return struct{}{}, e.inst.Render(ctx, args) })
	if err != nil {
		log.Debug("render failed", "status", effect.StatusOf(err).String(), "err", err)
		return nil, err
	}
	return out, nil
}

// Message returns the instance's persistent message.
func (e *Effect) Message() (effect.Message, bool) { return e.handle.PersistentMessage() }

// Close releases the instance.
func (e *Effect) Close() error {
	if c, ok := e.inst.(effect.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *Effect) refreshPreferences() {
	if cp, ok := e.inst.(effect.ClipPreferencer); ok {
		p := e.prefs
		cp.ClipPreferences(&p)
		if p.OutputComponents.Count() == 0 {
			p.OutputComponents = effect.PixelComponentRGBA
		}
		if p.PixelAspect <= 0 {
			p.PixelAspect = 1
		}
		e.prefs = p
	}
}

// guard runs fn and turns a panic into StatErrFatal.
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			effect.Logger().Error("plugin panic", "panic", r)
			err = effect.NewStatusError(effect.StatErrFatal, fmt.Errorf("panic: %v", r))
		}
	}()
	return fn()
}
