package text

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/memhost"
	"github.com/fxarena/arena/internal/fonts"
)

func load(t *testing.T) *memhost.Effect {
	t.Helper()
	e, err := memhost.New().Load(Factory{}, effect.ContextGenerator)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return e
}

func set(t *testing.T, e *memhost.Effect, kv ...string) {
	t.Helper()
	for i := 0; i+1 < len(kv); i += 2 {
		if err := e.SetParam(kv[i], kv[i+1]); err != nil {
			t.Fatalf("SetParam(%s, %s): %v", kv[i], kv[i+1], err)
		}
	}
}

func render(t *testing.T, e *memhost.Effect) *effect.Image {
	t.Helper()
	img, err := e.Render(context.Background(), 0, effect.RectI{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return img
}

// covered counts the pixels that are more than half opaque and
// satisfying keep.
func covered(img *effect.Image, keep func(x, y int, p []float32) bool) int {
	n := 0
	for y := img.Bounds.Y1; y < img.Bounds.Y2; y++ {
		for x := img.Bounds.X1; x < img.Bounds.X2; x++ {
			p := img.FloatPixel(x, y)
			if p[3] > 0.5 && (keep == nil || keep(x, y, p)) {
				n++
			}
		}
	}
	return n
}

func TestDescribe(t *testing.T) {
	e := load(t)
	d := e.Descriptor()
	if d.Label() != "TextOFX" || d.Grouping() != "Draw" {
		t.Errorf("label %q grouping %q", d.Label(), d.Grouping())
	}
	if !d.SupportsRenderScale() || d.RenderThreadSafety() != effect.ThreadSafetyFully {
		t.Errorf("render scale %v, thread safety %s", d.SupportsRenderScale(), d.RenderThreadSafety())
	}
	if c := d.Clip(effect.ClipSource); c == nil || !c.Optional() {
		t.Error("Source clip missing or not optional")
	}

	ps := e.Params()
	if got := ps.IntParam(ParamFontSize).Value(); got != 64 {
		t.Errorf("size = %d, want 64", got)
	}
	if got := ps.StringParam(ParamText).Value(); got != "Enter text" {
		t.Errorf("text = %q, want Enter text", got)
	}
	if !ps.BooleanParam(ParamMove).Value() {
		t.Error("transform defaults to off")
	}
	if got := ps.ChoiceParam(ParamWeight).Value(); fonts.MenuWeight(got) != fonts.WeightNormal {
		t.Errorf("weight = %d, want Normal", got)
	}
	// neither preferred family exists, so the first family is used
	if got := ps.StringParam(ParamFont).Value(); got != fonts.DefaultFamily {
		t.Errorf("font = %q, want %q", got, fonts.DefaultFamily)
	}
	if x, y := ps.Double2DParam(ParamCenter).Value(); x != 960 || y != 540 {
		t.Errorf("center = %v,%v, want 960,540", x, y)
	}
}

func TestChangedParam(t *testing.T) {
	t.Run("name", func(t *testing.T) {
		e := load(t)
		set(t, e, ParamFontName, "Go Mono")
		if got := e.Params().StringParam(ParamFont).Value(); got != "Go Mono" {
			t.Errorf("font = %q, want Go Mono", got)
		}
	})
	t.Run("custom cleared", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "copy.ttf")
		if err := os.WriteFile(path, gomono.TTF, 0o644); err != nil {
			t.Fatal(err)
		}
		e := load(t)
		p := e.Instance().(*plugin)
		shared := p.catalog()
		set(t, e, ParamCustomFont, path)
		if p.catalog() == shared {
			t.Fatal("custom font kept the shared catalog")
		}
		set(t, e, ParamCustomFont, "")
		if p.catalog() != shared {
			t.Error("clearing the custom font kept the custom catalog")
		}
		if got := e.Params().StringParam(ParamFont).Value(); !shared.HasFamily(got) {
			t.Errorf("font = %q, not in the shared catalog", got)
		}
		render(t, e)
	})
	t.Run("resetCenter", func(t *testing.T) {
		e := load(t)
		set(t, e, ParamCenter, "10,20")
		if err := e.ChangeParam(ParamResetCenter, 0); err != nil {
			t.Fatal(err)
		}
		if x, y := e.Params().Double2DParam(ParamCenter).Value(); x != 960 || y != 540 {
			t.Errorf("center = %v,%v, want 960,540", x, y)
		}
	})
	t.Run("clears message", func(t *testing.T) {
		e := load(t)
		set(t, e, ParamFont, "")
		if _, err := e.Render(context.Background(), 0, effect.RectI{}); err == nil {
			t.Fatal("Render without a font succeeded")
		}
		set(t, e, ParamFontSize, "20")
		if msg, ok := e.Message(); ok {
			t.Errorf("message %q survived a parameter change", msg.Text)
		}
	})
}

func TestRegionOfDefinition(t *testing.T) {
	e := load(t)
	got, err := e.RegionOfDefinition(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := (effect.RectD{X2: 1920, Y2: 1080}); got != want {
		t.Errorf("default RoD = %v, want %v", got, want)
	}

	set(t, e, ParamCanvas, "200,100")
	if got, _ = e.RegionOfDefinition(0); got != (effect.RectD{X2: 200, Y2: 100}) {
		t.Errorf("canvas RoD = %v, want 200x100", got)
	}

	set(t, e, ParamAutoSize, "true", ParamText, "Hello")
	auto, err := e.RegionOfDefinition(0)
	if err != nil {
		t.Fatal(err)
	}
	if auto.X1 != 0 || auto.Y1 != 0 || auto.X2 <= 0 || auto.Y2 <= 0 || auto.X2 > 1000 {
		t.Fatalf("auto size RoD = %v", auto)
	}
	if auto.X2 <= auto.Y2 {
		t.Errorf("auto size RoD %v is not wider than tall for a word", auto)
	}

	set(t, e, ParamStrokeWidth, "4")
	stroked, _ := e.RegionOfDefinition(0)
	if stroked.X2 != auto.X2+8 || stroked.Y2 != auto.Y2+2 {
		t.Errorf("stroked RoD = %v, want %v padded by 8x2", stroked, auto)
	}
}

func TestRender(t *testing.T) {
	e := load(t)
	set(t, e, ParamCanvas, "200,100", ParamMove, "false", ParamText, "Hi")
	img := render(t, e)
	if want := (effect.RectI{X2: 200, Y2: 100}); img.Bounds != want {
		t.Fatalf("Bounds = %v, want %v", img.Bounds, want)
	}
	if n := covered(img, nil); n == 0 {
		t.Fatal("no text drawn")
	}
	// white text, premultiplied
	off := covered(img, func(x, y int, p []float32) bool { return p[0] != p[3] || p[1] != p[3] || p[2] != p[3] })
	if off != 0 {
		t.Errorf("%d pixels are not premultiplied white", off)
	}
	// the text hangs from the top edge, which is the last host row
	if n := covered(img, func(x, y int, p []float32) bool { return y < 20 }); n != 0 {
		t.Errorf("%d pixels drawn near the bottom edge", n)
	}
}

func TestRenderVAlign(t *testing.T) {
	e := load(t)
	set(t, e, ParamCanvas, "200,200", ParamMove, "false", ParamText, "Hi", ParamVAlign, "Bottom")
	img := render(t, e)
	if n := covered(img, func(x, y int, p []float32) bool { return y > 120 }); n != 0 {
		t.Errorf("%d pixels drawn in the upper part of a bottom aligned text", n)
	}
	if n := covered(img, nil); n == 0 {
		t.Error("no text drawn")
	}
}

func TestRenderMove(t *testing.T) {
	e := load(t)
	set(t, e, ParamCanvas, "200,100", ParamText, "X", ParamCenter, "100,50")
	img := render(t, e)
	if n := covered(img, nil); n == 0 {
		t.Fatal("no text drawn")
	}
	// the top-left corner of the text sits on the position
	if n := covered(img, func(x, y int, p []float32) bool { return x < 95 || y > 52 }); n != 0 {
		t.Errorf("%d pixels drawn above or left of the position", n)
	}
}

func TestRenderStroke(t *testing.T) {
	e := load(t)
	set(t, e, ParamCanvas, "300,120", ParamMove, "false", ParamText, "O",
		ParamStrokeWidth, "6", ParamTextColor, "0,0,1,1")
	img := render(t, e)
	red := covered(img, func(x, y int, p []float32) bool { return p[0] > 0.9 && p[2] < 0.1 })
	blue := covered(img, func(x, y int, p []float32) bool { return p[2] > 0.9 && p[0] < 0.1 })
	if red == 0 || blue == 0 {
		t.Errorf("stroke pixels %d, fill pixels %d, want both", red, blue)
	}
}

func TestRenderShapes(t *testing.T) {
	tests := []struct {
		name string
		kv   []string
	}{
		{"arc", []string{ParamArcAngle, "180", ParamArcRadius, "60"}},
		{"circle", []string{ParamCircleRadius, "60", ParamCircleWords, "6", ParamFontSize, "20"}},
		{"rotated", []string{ParamRotate, "45"}},
		{"skewed", []string{ParamSkewX, "0.3", ParamScale, "0.5,2"}},
		{"markup", []string{ParamMarkup, "true", ParamText, `<span foreground="red">R</span>`}},
		{"aliased", []string{ParamAntialias, "None"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := load(t)
			set(t, e, ParamCanvas, "256,256", ParamText, "Abc", ParamCenter, "128,128")
			set(t, e, tt.kv...)
			img := render(t, e)
			if n := covered(img, nil); n == 0 {
				t.Error("nothing drawn")
			}
		})
	}
}

func TestRenderNoFont(t *testing.T) {
	e := load(t)
	set(t, e, ParamCanvas, "64,64", ParamFont, "")
	_, err := e.Render(context.Background(), 0, effect.RectI{})
	if effect.StatusOf(err) != effect.StatFailed {
		t.Errorf("status = %s, want Failed", effect.StatusOf(err))
	}
	if msg, _ := e.Message(); msg.Text != msgNoFont {
		t.Errorf("message = %q, want %q", msg.Text, msgNoFont)
	}
}

func TestDescription(t *testing.T) {
	tests := []struct {
		style, weight int
		want          fonts.Description
	}{
		{0, 5, fonts.Description{Family: "Go", Weight: fonts.WeightNormal, Stretch: fonts.StretchNormal, Size: 33}},
		{1, 5, fonts.Description{Family: "Go", Weight: fonts.WeightBold, Stretch: fonts.StretchNormal, Size: 33}},
		{1, 2, fonts.Description{Family: "Go", Weight: fonts.WeightLight, Stretch: fonts.StretchNormal, Size: 33}},
		{2, 5, fonts.Description{Family: "Go", Style: fonts.StyleItalic, Weight: fonts.WeightNormal, Stretch: fonts.StretchNormal, Size: 33}},
	}
	for _, tt := range tests {
		s := settings{font: "Go", size: 65, style: tt.style, weight: tt.weight, stretch: int(fonts.StretchNormal)}
		if got := s.description(0.5); got != tt.want {
			t.Errorf("description(style %d, weight %d) = %+v, want %+v", tt.style, tt.weight, got, tt.want)
		}
	}
}

func TestAlias(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	copy(img.Pix, []uint8{
		200, 200, 200, 200,
		60, 60, 60, 60,
		150, 150, 150, 150,
	})
	alias(img)
	want := []uint8{
		200, 200, 200, 200,
		0, 0, 0, 0,
		200, 200, 200, 200,
	}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("alias = %v, want %v", img.Pix, want)
		}
	}
}
