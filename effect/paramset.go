package effect

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type keyframe struct {
	t   float64
	v   []float64
	str string
}

// paramState is the host-side storage of one parameter instance.
// Every numeric kind is held as float64 components.
type paramState struct {
	desc    ParamDescriptor
	v       []float64
	str     string
	keys    []keyframe
	options []string
	def     []float64
	defStr  string
}

// ParamSet holds the live values of an instance's parameters.
// It is safe for concurrent use.
type ParamSet struct {
	mu     sync.RWMutex
	order  []string
	states map[string]*paramState
	time   float64
}

// NewParamSet creates instance storage for every parameter in d.
// Normalised 2D defaults are resolved against project.
func NewParamSet(d *Descriptor, project RectD) *ParamSet {
	s := &ParamSet{states: make(map[string]*paramState)}
	for _, p := range d.params {
		st := &paramState{desc: p}
		switch pd := p.(type) {
		case *StringParamDescriptor:
			st.str, st.defStr = pd.def, pd.def
		case *ChoiceParamDescriptor:
			st.options = pd.Options()
		case *Double2DParamDescriptor:
			if pd.coords == CoordinatesNormalised {
				st.def = []float64{
					project.X1 + pd.def[0]*project.Width(),
					project.Y1 + pd.def[1]*project.Height(),
				}
			}
		}
		if st.def == nil {
			st.def = slices.Clone(numericDefault(p))
		}
		st.v = slices.Clone(st.def)
		s.states[p.Name()] = st
		s.order = append(s.order, p.Name())
	}
	return s
}

// SetTime sets the time used by the Value accessors.
func (s *ParamSet) SetTime(t float64) {
	s.mu.Lock()
	s.time = t
	s.mu.Unlock()
}

// Time returns the current time.
func (s *ParamSet) Time() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}

// Names returns parameter names in definition order.
func (s *ParamSet) Names() []string { return append([]string(nil), s.order...) }

// Descriptor returns the descriptor of the named parameter, or nil.
func (s *ParamSet) Descriptor(name string) ParamDescriptor {
	if st, ok := s.states[name]; ok {
		return st.desc
	}
	return nil
}

func (s *ParamSet) lookup(name string, kind ParamKind) (*paramState, error) {
	st, ok := s.states[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if st.desc.Kind() != kind {
		return nil, fmt.Errorf("%w: %q is %s, not %s", ErrParamKind, name, st.desc.Kind(), kind)
	}
	return st, nil
}

// must panics on lookup errors: fetching an undefined parameter is a
// programming error in the plugin, not a runtime condition.
func (s *ParamSet) must(name string, kind ParamKind) *paramState {
	st, err := s.lookup(name, kind)
	if err != nil {
		panic(err)
	}
	return st
}

// valueAt evaluates the numeric components at time t.
func (s *ParamSet) valueAt(st *paramState, t float64) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(st.keys) == 0 {
		return slices.Clone(st.v)
	}
	i := sort.Search(len(st.keys), func(i int) bool { return st.keys[i].t > t })
	switch {
	case i == 0:
		return slices.Clone(st.keys[0].v)
	case i == len(st.keys) || !st.desc.Kind().interpolates():
		return slices.Clone(st.keys[i-1].v)
	}
	k0, k1 := st.keys[i-1], st.keys[i]
	f := (t - k0.t) / (k1.t - k0.t)
	out := make([]float64, len(k0.v))
	for c := range out {
		out[c] = k0.v[c] + (k1.v[c]-k0.v[c])*f
	}
	return out
}

func (s *ParamSet) stringAt(st *paramState, t float64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(st.keys) == 0 {
		return st.str
	}
	i := sort.Search(len(st.keys), func(i int) bool { return st.keys[i].t > t })
	if i == 0 {
		return st.keys[0].str
	}
	return st.keys[i-1].str
}

// clamp applies the descriptor's range and integer rounding to v. s.mu
// must be held.
func (s *ParamSet) clamp(st *paramState, v []float64) []float64 {
	v = slices.Clone(v)
	if lo, hi, ok := numericRange(st.desc); ok {
		for i := range v {
			if i < len(lo) && v[i] < lo[i] {
				v[i] = lo[i]
			}
			if i < len(hi) && v[i] > hi[i] {
				v[i] = hi[i]
			}
		}
	}
	switch st.desc.Kind() {
	case KindInt, KindInt2D:
		for i := range v {
			v[i] = math.Round(v[i])
		}
	case KindBoolean:
		if v[0] != 0 {
			v[0] = 1
		}
	case KindChoice:
		v[0] = math.Round(v[0])
		if n := len(st.options); n > 0 {
			v[0] = math.Max(0, math.Min(v[0], float64(n-1)))
		}
	}
	return v
}

func (s *ParamSet) set(st *paramState, v []float64) {
	s.mu.Lock()
	st.v = s.clamp(st, v)
	st.keys = nil
	s.mu.Unlock()
}

func (s *ParamSet) setAt(st *paramState, t float64, v []float64, str string) error {
	if !st.desc.Animates() {
		return fmt.Errorf("%w: %q", ErrNotAnimatable, st.desc.Name())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v != nil {
		v = s.clamp(st, v)
	}
	k := keyframe{t: t, v: v, str: str}
	i := sort.Search(len(st.keys), func(i int) bool { return st.keys[i].t >= t })
	if i < len(st.keys) && st.keys[i].t == t {
		st.keys[i] = k
		return nil
	}
	st.keys = slices.Insert(st.keys, i, k)
	return nil
}

// NumKeys returns the number of keyframes of the named parameter.
func (s *ParamSet) NumKeys(name string) int {
	st, ok := s.states[name]
	if !ok {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(st.keys)
}

// DoubleParam is a live Double parameter.
type DoubleParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) DoubleParam(name string) *DoubleParam {
	return &DoubleParam{s, s.must(name, KindDouble)}
}

func (p *DoubleParam) Name() string                { return p.st.desc.Name() }
func (p *DoubleParam) Value() float64              { return p.ValueAtTime(p.set.Time()) }
func (p *DoubleParam) ValueAtTime(t float64) float64 { return p.set.valueAt(p.st, t)[0] }
func (p *DoubleParam) SetValue(v float64)          { p.set.set(p.st, []float64{v}) }
func (p *DoubleParam) SetValueAtTime(t, v float64) error {
	return p.set.setAt(p.st, t, []float64{v}, "")
}
func (p *DoubleParam) Default() float64 { return p.st.def[0] }

// Double2DParam is a live Double2D parameter.
type Double2DParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) Double2DParam(name string) *Double2DParam {
	return &Double2DParam{s, s.must(name, KindDouble2D)}
}

func (p *Double2DParam) Name() string          { return p.st.desc.Name() }
func (p *Double2DParam) Value() (x, y float64) { return p.ValueAtTime(p.set.Time()) }
func (p *Double2DParam) ValueAtTime(t float64) (x, y float64) {
	v := p.set.valueAt(p.st, t)
	return v[0], v[1]
}
func (p *Double2DParam) SetValue(x, y float64) { p.set.set(p.st, []float64{x, y}) }
func (p *Double2DParam) SetValueAtTime(t, x, y float64) error {
	return p.set.setAt(p.st, t, []float64{x, y}, "")
}
func (p *Double2DParam) Default() (x, y float64) { return p.st.def[0], p.st.def[1] }

// Double3DParam is a live Double3D parameter.
type Double3DParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) Double3DParam(name string) *Double3DParam {
	return &Double3DParam{s, s.must(name, KindDouble3D)}
}

func (p *Double3DParam) Name() string             { return p.st.desc.Name() }
func (p *Double3DParam) Value() (x, y, z float64) { return p.ValueAtTime(p.set.Time()) }
func (p *Double3DParam) ValueAtTime(t float64) (x, y, z float64) {
	v := p.set.valueAt(p.st, t)
	return v[0], v[1], v[2]
}
func (p *Double3DParam) SetValue(x, y, z float64) { p.set.set(p.st, []float64{x, y, z}) }
func (p *Double3DParam) SetValueAtTime(t, x, y, z float64) error {
	return p.set.setAt(p.st, t, []float64{x, y, z}, "")
}

// IntParam is a live Int parameter.
type IntParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) IntParam(name string) *IntParam { return &IntParam{s, s.must(name, KindInt)} }

func (p *IntParam) Name() string              { return p.st.desc.Name() }
func (p *IntParam) Value() int                { return p.ValueAtTime(p.set.Time()) }
func (p *IntParam) ValueAtTime(t float64) int { return int(p.set.valueAt(p.st, t)[0]) }
func (p *IntParam) SetValue(v int)            { p.set.set(p.st, []float64{float64(v)}) }
func (p *IntParam) SetValueAtTime(t float64, v int) error {
	return p.set.setAt(p.st, t, []float64{float64(v)}, "")
}
func (p *IntParam) Default() int { return int(p.st.def[0]) }

// Int2DParam is a live Int2D parameter.
type Int2DParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) Int2DParam(name string) *Int2DParam { return &Int2DParam{s, s.must(name, KindInt2D)} }

func (p *Int2DParam) Name() string      { return p.st.desc.Name() }
func (p *Int2DParam) Value() (x, y int) { return p.ValueAtTime(p.set.Time()) }
func (p *Int2DParam) ValueAtTime(t float64) (x, y int) {
	v := p.set.valueAt(p.st, t)
	return int(v[0]), int(v[1])
}
func (p *Int2DParam) SetValue(x, y int) { p.set.set(p.st, []float64{float64(x), float64(y)}) }
func (p *Int2DParam) SetValueAtTime(t float64, x, y int) error {
	return p.set.setAt(p.st, t, []float64{float64(x), float64(y)}, "")
}

// BooleanParam is a live Boolean parameter.
type BooleanParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) BooleanParam(name string) *BooleanParam {
	return &BooleanParam{s, s.must(name, KindBoolean)}
}

func (p *BooleanParam) Name() string               { return p.st.desc.Name() }
func (p *BooleanParam) Value() bool                { return p.ValueAtTime(p.set.Time()) }
func (p *BooleanParam) ValueAtTime(t float64) bool { return p.set.valueAt(p.st, t)[0] != 0 }
func (p *BooleanParam) SetValue(v bool)            { p.set.set(p.st, []float64{boolToFloat(v)}) }
func (p *BooleanParam) SetValueAtTime(t float64, v bool) error {
	return p.set.setAt(p.st, t, []float64{boolToFloat(v)}, "")
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// ChoiceParam is a live Choice parameter. Its options belong to the
// instance and may be regenerated at any time.
type ChoiceParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) ChoiceParam(name string) *ChoiceParam { return &ChoiceParam{s, s.must(name, KindChoice)} }

func (p *ChoiceParam) Name() string              { return p.st.desc.Name() }
func (p *ChoiceParam) Value() int                { return p.ValueAtTime(p.set.Time()) }
func (p *ChoiceParam) ValueAtTime(t float64) int { return int(p.set.valueAt(p.st, t)[0]) }
func (p *ChoiceParam) SetValue(i int)            { p.set.set(p.st, []float64{float64(i)}) }
func (p *ChoiceParam) SetValueAtTime(t float64, i int) error {
	return p.set.setAt(p.st, t, []float64{float64(i)}, "")
}
func (p *ChoiceParam) Default() int {
	p.set.mu.RLock()
	defer p.set.mu.RUnlock()
	return int(p.st.def[0])
}

// SetDefault changes the instance default. The current value is left alone.
func (p *ChoiceParam) SetDefault(i int) {
	p.set.mu.Lock()
	p.st.def = []float64{float64(i)}
	p.set.mu.Unlock()
}

func (p *ChoiceParam) NumOptions() int {
	p.set.mu.RLock()
	defer p.set.mu.RUnlock()
	return len(p.st.options)
}

// Option returns the label of option i, or "" when out of range.
func (p *ChoiceParam) Option(i int) string {
	p.set.mu.RLock()
	defer p.set.mu.RUnlock()
	if i < 0 || i >= len(p.st.options) {
		return ""
	}
	return p.st.options[i]
}

func (p *ChoiceParam) Options() []string {
	p.set.mu.RLock()
	defer p.set.mu.RUnlock()
	return append([]string(nil), p.st.options...)
}

func (p *ChoiceParam) ResetOptions() {
	p.set.mu.Lock()
	p.st.options = nil
	p.set.mu.Unlock()
}

func (p *ChoiceParam) AppendOption(label string) {
	p.set.mu.Lock()
	p.st.options = append(p.st.options, label)
	p.set.mu.Unlock()
}

// Index returns the index of the option labelled label, or -1.
func (p *ChoiceParam) Index(label string) int {
	p.set.mu.RLock()
	defer p.set.mu.RUnlock()
	return slices.Index(p.st.options, label)
}

// StringParam is a live String parameter.
type StringParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) StringParam(name string) *StringParam { return &StringParam{s, s.must(name, KindString)} }

func (p *StringParam) Name() string                 { return p.st.desc.Name() }
func (p *StringParam) Value() string                { return p.ValueAtTime(p.set.Time()) }
func (p *StringParam) ValueAtTime(t float64) string { return p.set.stringAt(p.st, t) }
func (p *StringParam) SetValue(v string) {
	p.set.mu.Lock()
	p.st.str = v
	p.st.keys = nil
	p.set.mu.Unlock()
}
func (p *StringParam) SetValueAtTime(t float64, v string) error {
	return p.set.setAt(p.st, t, nil, v)
}
func (p *StringParam) Default() string { return p.st.defStr }

// RGBAParam is a live RGBA color.
type RGBAParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) RGBAParam(name string) *RGBAParam { return &RGBAParam{s, s.must(name, KindRGBA)} }

func (p *RGBAParam) Name() string                { return p.st.desc.Name() }
func (p *RGBAParam) Value() (r, g, b, a float64) { return p.ValueAtTime(p.set.Time()) }
func (p *RGBAParam) ValueAtTime(t float64) (r, g, b, a float64) {
	v := p.set.valueAt(p.st, t)
	return v[0], v[1], v[2], v[3]
}
func (p *RGBAParam) SetValue(r, g, b, a float64) { p.set.set(p.st, []float64{r, g, b, a}) }
func (p *RGBAParam) SetValueAtTime(t, r, g, b, a float64) error {
	return p.set.setAt(p.st, t, []float64{r, g, b, a}, "")
}

// RGBParam is a live RGB color.
type RGBParam struct {
	set *ParamSet
	st  *paramState
}

func (s *ParamSet) RGBParam(name string) *RGBParam { return &RGBParam{s, s.must(name, KindRGB)} }

func (p *RGBParam) Name() string             { return p.st.desc.Name() }
func (p *RGBParam) Value() (r, g, b float64) { return p.ValueAtTime(p.set.Time()) }
func (p *RGBParam) ValueAtTime(t float64) (r, g, b float64) {
	v := p.set.valueAt(p.st, t)
	return v[0], v[1], v[2]
}
func (p *RGBParam) SetValue(r, g, b float64) { p.set.set(p.st, []float64{r, g, b}) }
func (p *RGBParam) SetValueAtTime(t, r, g, b float64) error {
	return p.set.setAt(p.st, t, []float64{r, g, b}, "")
}

// PushButtonParam is a live button.
type PushButtonParam struct {
	st *paramState
}

func (s *ParamSet) PushButtonParam(name string) *PushButtonParam {
	return &PushButtonParam{s.must(name, KindPushButton)}
}

func (p *PushButtonParam) Name() string { return p.st.desc.Name() }

// SetFromString parses value according to the parameter's kind and sets
// it. Components are comma separated; booleans accept strconv.ParseBool
// forms; choices accept an index or an option label.
func (s *ParamSet) SetFromString(name, value string) error {
	st, ok := s.states[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	kind := st.desc.Kind()
	switch kind {
	case KindString:
		s.StringParam(name).SetValue(value)
		return nil
	case KindBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("param %q: %w", name, err)
		}
		s.set(st, []float64{boolToFloat(b)})
		return nil
	case KindChoice:
		c := s.ChoiceParam(name)
		if i := c.Index(value); i >= 0 {
			c.SetValue(i)
			return nil
		}
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("param %q: no option %q", name, value)
		}
		c.SetValue(i)
		return nil
	case KindPushButton, KindPage, KindGroup:
		return fmt.Errorf("%w: %q holds no value", ErrParamKind, name)
	}
	parts := strings.Split(value, ",")
	if len(parts) != kind.dimension() {
		return fmt.Errorf("param %q: want %d components, got %d", name, kind.dimension(), len(parts))
	}
	v := make([]float64, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("param %q: %w", name, err)
		}
		v[i] = f
	}
	s.set(st, v)
	return nil
}

// FormatValue renders the current value of a parameter the way
// SetFromString accepts it.
func (s *ParamSet) FormatValue(name string) string {
	st, ok := s.states[name]
	if !ok {
		return ""
	}
	t := s.Time()
	switch st.desc.Kind() {
	case KindString:
		return s.stringAt(st, t)
	case KindBoolean:
		return strconv.FormatBool(s.valueAt(st, t)[0] != 0)
	case KindChoice:
		i := int(s.valueAt(st, t)[0])
		if label := s.ChoiceParam(name).Option(i); label != "" {
			return label
		}
		return strconv.Itoa(i)
	case KindPushButton, KindPage, KindGroup:
		return ""
	}
	v := s.valueAt(st, t)
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
