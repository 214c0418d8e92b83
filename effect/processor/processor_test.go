package processor

import (
	"context"
	"testing"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/memhost"
	"github.com/fxarena/arena/internal/pixel"
)

// invert flips the color channels and can be made an identity with the
// "off" parameter.
type invertFactory struct{}

func (invertFactory) Identifier() string          { return "net.fxarena.test.Invert" }
func (invertFactory) Version() (major, minor int) { return 1, 0 }
func (invertFactory) Load() error                 { return nil }
func (invertFactory) Describe(d *effect.Descriptor) {
	d.AddSupportedContext(effect.ContextFilter)
	d.AddSupportedBitDepth(effect.BitDepthFloat)
	d.SetSupportsRenderScale(true)
}
func (invertFactory) DescribeInContext(d *effect.Descriptor, ctx effect.Context, host effect.HostDescription) error {
	page := DescribeInContext(d, "Invert", effect.PixelComponentRGBA, effect.PixelComponentRGB)
	off := d.DefineBooleanParam("off")
	page.AddChild(off)
	return nil
}
func (invertFactory) CreateInstance(h *effect.Handle, ctx effect.Context) (effect.Instance, error) {
	p := New(h, func(ctx context.Context, t float64, src *pixel.Buffer) (*pixel.Buffer, error) {
		out := src.Clone()
		for i := 0; i < len(out.Pix); i += 4 {
			out.Pix[i] = 1 - out.Pix[i]
		}
		return out, nil
	}, effect.PixelComponentRGBA, effect.PixelComponentRGB)
	p.Identity = func(t float64) bool { return h.BooleanParam("off").ValueAtTime(t) }
	return p, nil
}

func source(t *testing.T, comps effect.PixelComponents) *effect.Image {
	t.Helper()
	img, err := effect.NewImage(effect.RectI{X1: 10, Y1: 20, X2: 14, Y2: 23}, effect.BitDepthFloat, comps)
	if err != nil {
		t.Fatal(err)
	}
	for y := img.Bounds.Y1; y < img.Bounds.Y2; y++ {
		for x := img.Bounds.X1; x < img.Bounds.X2; x++ {
			p := img.FloatPixel(x, y)
			p[0] = float32(x-10) / 4
			if comps == effect.PixelComponentRGBA {
				p[3] = 1
			}
		}
	}
	return img
}

func load(t *testing.T, src *effect.Image) *memhost.Effect {
	t.Helper()
	e, err := memhost.New().Load(invertFactory{}, effect.ContextFilter)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src != nil {
		if err := e.Connect(effect.ClipSource, src); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func TestRender(t *testing.T) {
	for _, comps := range []effect.PixelComponents{effect.PixelComponentRGBA, effect.PixelComponentRGB} {
		t.Run(comps.String(), func(t *testing.T) {
			src := source(t, comps)
			e := load(t, src)
			out, err := e.Render(context.Background(), 0, effect.RectI{})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if out.Bounds != src.Bounds {
				t.Fatalf("Bounds = %v, want %v", out.Bounds, src.Bounds)
			}
			for y := out.Bounds.Y1; y < out.Bounds.Y2; y++ {
				for x := out.Bounds.X1; x < out.Bounds.X2; x++ {
					want := 1 - src.FloatPixel(x, y)[0]
					if got := out.FloatPixel(x, y)[0]; got != want {
						t.Errorf("red(%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestRenderWindow(t *testing.T) {
	src := source(t, effect.PixelComponentRGBA)
	e := load(t, src)
	win := effect.RectI{X1: 12, Y1: 21, X2: 14, Y2: 22}
	out, err := e.Render(context.Background(), 0, win)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Bounds != win {
		t.Fatalf("Bounds = %v, want %v", out.Bounds, win)
	}
	if got, want := out.FloatPixel(12, 21)[0], float32(0.5); got != want {
		t.Errorf("red(12,21) = %v, want %v", got, want)
	}
}

func TestRegionOfDefinition(t *testing.T) {
	e := load(t, source(t, effect.PixelComponentRGBA))
	got, err := e.RegionOfDefinition(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := (effect.RectD{X1: 10, Y1: 20, X2: 14, Y2: 23}); got != want {
		t.Errorf("RoD = %v, want %v", got, want)
	}

	// unconnected is infinite, which the host clamps to the project
	e = load(t, nil)
	if got, _ = e.RegionOfDefinition(0); got != (effect.RectD{X2: 1920, Y2: 1080}) {
		t.Errorf("unconnected RoD = %v, want the project", got)
	}
}

func TestIsIdentity(t *testing.T) {
	e := load(t, nil)
	id, err := e.IsIdentity(0, effect.RectI{X2: 4, Y2: 4})
	if err != nil || !id.Identity || id.Clip != effect.ClipSource {
		t.Errorf("unconnected IsIdentity = %+v, %v", id, err)
	}

	e = load(t, source(t, effect.PixelComponentRGBA))
	if id, _ = e.IsIdentity(0, effect.RectI{X2: 4, Y2: 4}); id.Identity {
		t.Error("connected source reported as identity")
	}
	if err := e.SetParam("off", "true"); err != nil {
		t.Fatal(err)
	}
	if id, _ = e.IsIdentity(0, effect.RectI{X2: 4, Y2: 4}); !id.Identity {
		t.Error("Identity callback ignored")
	}
}
