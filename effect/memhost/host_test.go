package memhost

import (
	"context"
	"errors"
	"testing"

	"github.com/fxarena/arena/effect"
)

// fillFactory is a generator that paints a constant color, optionally
// passing its Source through when "bypass" is on.
type fillFactory struct {
	panicOnRender bool
}

func (fillFactory) Identifier() string          { return "net.fxarena.test.Fill" }
func (fillFactory) Version() (major, minor int) { return 1, 0 }
func (fillFactory) Load() error                 { return nil }

func (fillFactory) Describe(d *effect.Descriptor) {
	d.SetLabel("Fill")
	d.AddSupportedContext(effect.ContextGenerator)
	d.AddSupportedContext(effect.ContextFilter)
	d.AddSupportedBitDepth(effect.BitDepthFloat)
}

func (fillFactory) DescribeInContext(d *effect.Descriptor, ctx effect.Context, host effect.HostDescription) error {
	src := d.DefineClip(effect.ClipSource)
	src.AddSupportedComponent(effect.PixelComponentRGBA)
	src.SetOptional(ctx == effect.ContextGenerator)
	d.DefineClip(effect.ClipOutput).AddSupportedComponent(effect.PixelComponentRGBA)
	d.DefineRGBAParam("color").SetDefault(1, 0.5, 0, 1)
	d.DefineBooleanParam("bypass")
	pos := d.DefineDouble2DParam("center")
	pos.SetDefault(0.5, 0.5)
	pos.SetDefaultCoordinateSystem(effect.CoordinatesNormalised)
	return nil
}

func (f fillFactory) CreateInstance(h *effect.Handle, ctx effect.Context) (effect.Instance, error) {
	return &fillInstance{h: h, panicOnRender: f.panicOnRender}, nil
}

type fillInstance struct {
	h             *effect.Handle
	panicOnRender bool
	changed       []string
}

func (f *fillInstance) Render(ctx context.Context, args effect.RenderArgs) error {
	if f.panicOnRender {
		panic("boom")
	}
	dst, err := f.h.Clip(effect.ClipOutput).FetchImage(ctx, args.Time)
	if err != nil {
		return err
	}
	r, g, b, a := f.h.RGBAParam("color").ValueAtTime(args.Time)
	for y := args.RenderWindow.Y1; y < args.RenderWindow.Y2; y++ {
		for x := args.RenderWindow.X1; x < args.RenderWindow.X2; x++ {
			p := dst.FloatPixel(x, y)
			p[0], p[1], p[2], p[3] = float32(r), float32(g), float32(b), float32(a)
		}
	}
	return nil
}

func (f *fillInstance) RegionOfDefinition(args effect.RegionOfDefinitionArgs) (effect.RectD, bool, error) {
	return effect.RectD{}, false, nil
}

func (f *fillInstance) IsIdentity(args effect.IsIdentityArgs) (effect.IdentityResult, error) {
	if f.h.BooleanParam("bypass").ValueAtTime(args.Time) {
		return effect.IdentityResult{Identity: true, Clip: effect.ClipSource, Time: args.Time}, nil
	}
	return effect.IdentityResult{}, nil
}

func (f *fillInstance) ChangedParam(args effect.InstanceChangedArgs, name string) error {
	f.changed = append(f.changed, name)
	return nil
}

func TestLoadAndRender(t *testing.T) {
	h := New(WithProjectSize(8, 4))
	e, err := h.Load(fillFactory{}, effect.ContextGenerator)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if x, y := e.Params().Double2DParam("center").Value(); x != 4 || y != 2 {
		t.Errorf("normalised default = (%v, %v), want (4, 2)", x, y)
	}

	img, err := e.Render(context.Background(), 0, effect.RectI{})
	if err != nil {
		t.Fatal(err)
	}
	if want := (effect.RectI{X2: 8, Y2: 4}); img.Bounds != want {
		t.Errorf("Bounds = %v, want %v", img.Bounds, want)
	}
	if p := img.FloatPixel(7, 3); p[0] != 1 || p[1] != 0.5 || p[3] != 1 {
		t.Errorf("pixel = %v", p)
	}

	img, err = e.Render(context.Background(), 0, effect.RectI{X1: 2, Y1: 1, X2: 20, Y2: 3})
	if err != nil {
		t.Fatal(err)
	}
	if want := (effect.RectI{X1: 2, Y1: 1, X2: 8, Y2: 3}); img.Bounds != want {
		t.Errorf("clipped Bounds = %v, want %v", img.Bounds, want)
	}
}

func TestUnsupportedContext(t *testing.T) {
	_, err := New().Load(fillFactory{}, effect.ContextReader)
	if !errors.Is(err, effect.ErrUnsupportedContext) {
		t.Errorf("Load(Reader) err = %v, want ErrUnsupportedContext", err)
	}
}

func TestRenderPanicIsFatal(t *testing.T) {
	e, err := New(WithProjectSize(2, 2)).Load(fillFactory{panicOnRender: true}, effect.ContextGenerator)
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.Render(context.Background(), 0, effect.RectI{})
	if got := effect.StatusOf(err); got != effect.StatErrFatal {
		t.Errorf("status = %s, want ErrFatal", got)
	}
}

func TestIdentityCopiesSource(t *testing.T) {
	e, err := New(WithProjectSize(4, 4)).Load(fillFactory{}, effect.ContextFilter)
	if err != nil {
		t.Fatal(err)
	}
	src, _ := effect.NewImage(effect.RectI{X2: 2, Y2: 2}, effect.BitDepthFloat, effect.PixelComponentRGBA)
	for i := range src.Float {
		src.Float[i] = 0.25
	}
	if err := e.Connect(effect.ClipSource, src); err != nil {
		t.Fatal(err)
	}
	if err := e.SetParam("bypass", "true"); err != nil {
		t.Fatal(err)
	}
	if got := e.Instance().(*fillInstance).changed; len(got) != 1 || got[0] != "bypass" {
		t.Errorf("ChangedParam calls = %v", got)
	}

	// The region of definition follows the connected source.
	rod, err := e.RegionOfDefinition(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := (effect.RectD{X2: 2, Y2: 2}); rod != want {
		t.Errorf("RoD = %v, want %v", rod, want)
	}

	img, err := e.Render(context.Background(), 0, effect.RectI{})
	if err != nil {
		t.Fatal(err)
	}
	if p := img.FloatPixel(1, 1); p[0] != 0.25 {
		t.Errorf("identity pixel = %v, want source value", p)
	}
}

func TestConnectErrors(t *testing.T) {
	e, err := New().Load(fillFactory{}, effect.ContextFilter)
	if err != nil {
		t.Fatal(err)
	}
	img, _ := effect.NewImage(effect.RectI{X2: 1, Y2: 1}, effect.BitDepthFloat, effect.PixelComponentRGB)
	if err := e.Connect(effect.ClipSource, img); err == nil {
		t.Error("RGB image accepted by an RGBA-only clip")
	}
	if err := e.Connect("Mask", img); err == nil {
		t.Error("unknown clip accepted")
	}
	if err := e.Connect(effect.ClipOutput, img); err == nil {
		t.Error("output clip accepted a connection")
	}
}

func TestOptions(t *testing.T) {
	h := New(WithCPUs(3), WithNatron(true), WithRenderScale(effect.Scale{X: 0.5, Y: 0.5}))
	d := h.Description()
	if d.NumCPUs != 3 || !d.IsNatron || !d.SupportsCascadingChoices {
		t.Errorf("Description = %+v", d)
	}
	if h.RenderScale() != (effect.Scale{X: 0.5, Y: 0.5}) {
		t.Errorf("RenderScale = %v", h.RenderScale())
	}
}
