package edge

import (
	"context"
	"testing"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/memhost"
)

func source(t *testing.T, comps effect.PixelComponents, fn func(x, y int, p []float32)) *effect.Image {
	t.Helper()
	img, err := effect.NewImage(effect.RectI{X2: 16, Y2: 16}, effect.BitDepthFloat, comps)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			fn(x, y, img.FloatPixel(x, y))
		}
	}
	return img
}

func load(t *testing.T, src *effect.Image) *memhost.Effect {
	t.Helper()
	e, err := memhost.New().Load(Factory{}, effect.ContextFilter)
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

func TestDescribe(t *testing.T) {
	e := load(t, nil)
	d := e.Descriptor()
	if d.Label() != "MagickEdge" || d.RenderThreadSafety() != effect.ThreadSafetyInstance {
		t.Errorf("label %q thread safety %s", d.Label(), d.RenderThreadSafety())
	}
	if got := e.Params().DoubleParam(ParamRadius).Value(); got != 1 {
		t.Errorf("radius = %v, want 1", got)
	}
	for _, ctx := range []effect.Context{effect.ContextGeneral, effect.ContextFilter, effect.ContextGenerator} {
		if !d.SupportsContext(ctx) {
			t.Errorf("context %s not supported", ctx)
		}
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		comps effect.PixelComponents
		fill  func(x, y int, p []float32)
		check func(x, y int, p []float32) bool
	}{
		{
			name:  "flat",
			comps: effect.PixelComponentRGBA,
			fill:  func(x, y int, p []float32) { p[0], p[1], p[2], p[3] = 0.5, 0.5, 0.5, 1 },
			check: func(x, y int, p []float32) bool { return p[0] == 0 && p[3] == 1 },
		},
		{
			name:  "dot",
			comps: effect.PixelComponentRGB,
			fill: func(x, y int, p []float32) {
				if x == 8 && y == 8 {
					p[0] = 1
				}
			},
			check: func(x, y int, p []float32) bool {
				if x == 8 && y == 8 {
					return p[0] == 1
				}
				return p[0] == 0
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := load(t, source(t, tt.comps, tt.fill))
			out, err := e.Render(context.Background(), 0, effect.RectI{})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if out.Components != tt.comps {
				t.Fatalf("output components %s, want %s", out.Components, tt.comps)
			}
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					if p := out.FloatPixel(x, y); !tt.check(x, y, p) {
						t.Fatalf("Pixel(%d,%d) = %v", x, y, p)
					}
				}
			}
		})
	}
}

func TestChangedParamClearsMessage(t *testing.T) {
	e := load(t, nil)
	e.Handle().SetPersistentMessage(effect.MessageError, "stale")
	if err := e.SetParam(ParamRadius, "2"); err != nil {
		t.Fatal(err)
	}
	if msg, ok := e.Message(); ok {
		t.Errorf("message %q survived a parameter change", msg.Text)
	}
}
