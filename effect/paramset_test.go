package effect

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
)

func testDescriptor() *Descriptor {
	d := NewDescriptor("net.fxarena.openfx.Test", 1, 0)
	d.AddSupportedContext(ContextFilter)
	d.DefineClip(ClipSource).AddSupportedComponent(PixelComponentRGBA)
	d.DefineClip(ClipOutput).AddSupportedComponent(PixelComponentRGBA)

	r := d.DefineDoubleParam("radius")
	r.SetDefault(1)
	r.SetRange(0, 10)

	d.DefineIntParam("count").SetDefault(3)

	pos := d.DefineDouble2DParam("position")
	pos.SetDefault(0.5, 0.25)
	pos.SetDefaultCoordinateSystem(CoordinatesNormalised)

	c := d.DefineChoiceParam("mode")
	c.AppendOption("Off")
	c.AppendOption("On")
	c.AppendOption("Auto")
	c.SetDefault(1)

	s := d.DefineStringParam("text")
	s.SetDefault("hello")

	b := d.DefineBooleanParam("flip")
	b.SetAnimates(false)

	d.DefineRGBAParam("color").SetDefault(1, 0, 0, 1)
	return d
}

func TestParamSetDefaults(t *testing.T) {
	ps := NewParamSet(testDescriptor(), RectD{X2: 200, Y2: 100})

	if got := ps.DoubleParam("radius").Value(); got != 1 {
		t.Errorf("radius = %v, want 1", got)
	}
	if got := ps.IntParam("count").Value(); got != 3 {
		t.Errorf("count = %v, want 3", got)
	}
	if x, y := ps.Double2DParam("position").Value(); x != 100 || y != 25 {
		t.Errorf("position = (%v, %v), want (100, 25)", x, y)
	}
	if got := ps.ChoiceParam("mode").Value(); got != 1 {
		t.Errorf("mode = %v, want 1", got)
	}
	if got := ps.StringParam("text").Value(); got != "hello" {
		t.Errorf("text = %q, want hello", got)
	}
	if r, g, b, a := ps.RGBAParam("color").Value(); r != 1 || g != 0 || b != 0 || a != 1 {
		t.Errorf("color = (%v, %v, %v, %v), want (1, 0, 0, 1)", r, g, b, a)
	}
}

func TestParamSetClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 4.5, 4.5},
		{"below", -3, 0},
		{"above", 42, 10},
	}
	ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps.DoubleParam("radius").SetValue(tt.in)
			if got := ps.DoubleParam("radius").Value(); got != tt.want {
				t.Errorf("SetValue(%v) then Value() = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParamSetChoiceClamp(t *testing.T) {
	ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
	mode := ps.ChoiceParam("mode")
	mode.SetValue(7)
	if got := mode.Value(); got != 2 {
		t.Errorf("mode = %d, want 2", got)
	}
	mode.SetValue(-1)
	if got := mode.Value(); got != 0 {
		t.Errorf("mode = %d, want 0", got)
	}
}

func TestParamSetKeyframes(t *testing.T) {
	ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
	r := ps.DoubleParam("radius")
	if err := r.SetValueAtTime(0, 2); err != nil {
		t.Fatal(err)
	}
	if err := r.SetValueAtTime(10, 6); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		t    float64
		want float64
	}{
		{-5, 2},
		{0, 2},
		{5, 4},
		{10, 6},
		{20, 6},
	}
	for _, tt := range tests {
		if got := r.ValueAtTime(tt.t); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ValueAtTime(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if n := ps.NumKeys("radius"); n != 2 {
		t.Errorf("NumKeys = %d, want 2", n)
	}

	// Choice values step instead of interpolating.
	mode := ps.ChoiceParam("mode")
	_ = mode.SetValueAtTime(0, 0)
	_ = mode.SetValueAtTime(10, 2)
	if got := mode.ValueAtTime(9); got != 0 {
		t.Errorf("choice ValueAtTime(9) = %d, want 0", got)
	}

	// SetValue drops keys.
	r.SetValue(1)
	if n := ps.NumKeys("radius"); n != 0 {
		t.Errorf("NumKeys after SetValue = %d, want 0", n)
	}
}

func TestParamSetNotAnimatable(t *testing.T) {
	ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
	err := ps.BooleanParam("flip").SetValueAtTime(1, true)
	if !errors.Is(err, ErrNotAnimatable) {
		t.Errorf("SetValueAtTime on static param: err = %v, want ErrNotAnimatable", err)
	}
}

func TestParamSetTime(t *testing.T) {
	ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
	s := ps.StringParam("text")
	_ = s.SetValueAtTime(0, "a")
	_ = s.SetValueAtTime(5, "b")
	ps.SetTime(6)
	if got := s.Value(); got != "b" {
		t.Errorf("Value at t=6 = %q, want b", got)
	}
	ps.SetTime(1)
	if got := s.Value(); got != "a" {
		t.Errorf("Value at t=1 = %q, want a", got)
	}
}

func TestParamSetWrongKindPanics(t *testing.T) {
	ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrParamKind) {
			t.Errorf("recover() = %v, want ErrParamKind", r)
		}
	}()
	ps.IntParam("radius")
}

func TestParamSetFromString(t *testing.T) {
	tests := []struct {
		name, param, value, want string
		wantErr                  bool
	}{
		{"double", "radius", "2.5", "2.5", false},
		{"double clamped", "radius", "99", "10", false},
		{"int rounds", "count", "4.6", "5", false},
		{"2d", "position", "3, 4", "3,4", false},
		{"choice label", "mode", "Auto", "Auto", false},
		{"choice index", "mode", "0", "Off", false},
		{"bool", "flip", "true", "true", false},
		{"string", "text", "a,b", "a,b", false},
		{"rgba", "color", "0,0.5,1,1", "0,0.5,1,1", false},
		{"bad arity", "position", "1", "", true},
		{"bad number", "radius", "x", "", true},
		{"bad choice", "mode", "Maybe", "", true},
		{"unknown", "nope", "1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
			err := ps.SetFromString(tt.param, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetFromString(%q, %q) err = %v, wantErr %v", tt.param, tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := ps.FormatValue(tt.param); got != tt.want {
				t.Errorf("FormatValue(%q) = %q, want %q", tt.param, got, tt.want)
			}
		})
	}
}

func TestChoiceParamOptions(t *testing.T) {
	ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
	c := ps.ChoiceParam("mode")
	c.ResetOptions()
	for _, o := range []string{"Page 0", "Page 1"} {
		c.AppendOption(o)
	}
	if n := c.NumOptions(); n != 2 {
		t.Fatalf("NumOptions = %d, want 2", n)
	}
	if got := c.Option(1); got != "Page 1" {
		t.Errorf("Option(1) = %q", got)
	}
	if got := c.Option(5); got != "" {
		t.Errorf("Option(5) = %q, want empty", got)
	}
	if got := c.Index("Page 0"); got != 0 {
		t.Errorf("Index(Page 0) = %d", got)
	}
	c.SetDefault(1)
	if got := c.Default(); got != 1 {
		t.Errorf("Default = %d, want 1", got)
	}
}

// Options regenerated by the instance race with host edits; the clamp must
// see a consistent option list. Run with -race.
func TestChoiceOptionsConcurrentSet(t *testing.T) {
	ps := NewParamSet(testDescriptor(), RectD{X2: 100, Y2: 100})
	c := ps.ChoiceParam("mode")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			c.ResetOptions()
			for j := 0; j <= i%4; j++ {
				c.AppendOption(fmt.Sprint("Page ", j))
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			c.SetValue(i % 6)
			if err := c.SetValueAtTime(float64(i), i%6); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	c.SetValue(9)
	if got, want := c.Value(), c.NumOptions()-1; got != want {
		t.Errorf("mode = %d, want %d", got, want)
	}
}
