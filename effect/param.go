package effect

// ParamKind identifies the type of a parameter.
type ParamKind uint8

const (
	KindDouble ParamKind = iota
	KindDouble2D
	KindDouble3D
	KindInt
	KindInt2D
	KindBoolean
	KindChoice
	KindString
	KindRGBA
	KindRGB
	KindPushButton
	KindPage
	KindGroup
)

var kindNames = [...]string{
	KindDouble:     "Double",
	KindDouble2D:   "Double2D",
	KindDouble3D:   "Double3D",
	KindInt:        "Int",
	KindInt2D:      "Int2D",
	KindBoolean:    "Boolean",
	KindChoice:     "Choice",
	KindString:     "String",
	KindRGBA:       "RGBA",
	KindRGB:        "RGB",
	KindPushButton: "PushButton",
	KindPage:       "Page",
	KindGroup:      "Group",
}

func (k ParamKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// dimension returns the number of numeric components a value of this
// kind holds. Strings, pages, groups and buttons hold none.
func (k ParamKind) dimension() int {
	switch k {
	case KindDouble, KindInt, KindBoolean, KindChoice:
		return 1
	case KindDouble2D, KindInt2D:
		return 2
	case KindDouble3D, KindRGB:
		return 3
	case KindRGBA:
		return 4
	default:
		return 0
	}
}

// interpolates reports whether keyframes of this kind blend linearly.
func (k ParamKind) interpolates() bool {
	switch k {
	case KindDouble, KindDouble2D, KindDouble3D, KindRGBA, KindRGB:
		return true
	default:
		return false
	}
}

// ParamDescriptor is the describe-time definition of a parameter.
type ParamDescriptor interface {
	Name() string
	Kind() ParamKind
	Label() string
	Hint() string
	Animates() bool
	IsSecret() bool
	Parent() string
	common() *paramBase
}

// paramBase holds the properties shared by every parameter kind.
type paramBase struct {
	name       string
	kind       ParamKind
	label      string
	hint       string
	animates   bool
	secret     bool
	disabled   bool
	layoutHint LayoutHint
	parent     string
}

func newParamBase(name string, kind ParamKind) paramBase {
	return paramBase{name: name, kind: kind, label: name, animates: true}
}

func (p *paramBase) Name() string              { return p.name }
func (p *paramBase) Kind() ParamKind           { return p.kind }
func (p *paramBase) Label() string             { return p.label }
func (p *paramBase) Hint() string              { return p.hint }
func (p *paramBase) Animates() bool            { return p.animates }
func (p *paramBase) IsSecret() bool            { return p.secret }
func (p *paramBase) Enabled() bool             { return !p.disabled }
func (p *paramBase) LayoutHint() LayoutHint    { return p.layoutHint }
func (p *paramBase) Parent() string            { return p.parent }
func (p *paramBase) common() *paramBase        { return p }
func (p *paramBase) SetLabel(label string)     { p.label = label }
func (p *paramBase) SetHint(hint string)       { p.hint = hint }
func (p *paramBase) SetAnimates(v bool)        { p.animates = v }
func (p *paramBase) SetIsSecret(v bool)        { p.secret = v }
func (p *paramBase) SetEnabled(v bool)         { p.disabled = !v }
func (p *paramBase) SetLayoutHint(h LayoutHint) { p.layoutHint = h }

// DoubleParamDescriptor defines a floating point parameter.
type DoubleParamDescriptor struct {
	paramBase
	def              float64
	min, max         float64
	dispMin, dispMax float64
	doubleType       DoubleType
}

func (p *DoubleParamDescriptor) SetDefault(v float64) { p.def = v }
func (p *DoubleParamDescriptor) Default() float64     { return p.def }
func (p *DoubleParamDescriptor) SetRange(lo, hi float64) {
	p.min, p.max = lo, hi
}
func (p *DoubleParamDescriptor) Range() (lo, hi float64) { return p.min, p.max }
func (p *DoubleParamDescriptor) SetDisplayRange(lo, hi float64) {
	p.dispMin, p.dispMax = lo, hi
}
func (p *DoubleParamDescriptor) DisplayRange() (lo, hi float64) { return p.dispMin, p.dispMax }
func (p *DoubleParamDescriptor) SetDoubleType(t DoubleType)     { p.doubleType = t }
func (p *DoubleParamDescriptor) DoubleType() DoubleType         { return p.doubleType }

// Double2DParamDescriptor defines a 2D point or size.
type Double2DParamDescriptor struct {
	paramBase
	def              [2]float64
	min, max         [2]float64
	dispMin, dispMax [2]float64
	doubleType       DoubleType
	coords           CoordinateSystem
}

func (p *Double2DParamDescriptor) SetDefault(x, y float64) { p.def = [2]float64{x, y} }
func (p *Double2DParamDescriptor) Default() (x, y float64) { return p.def[0], p.def[1] }
func (p *Double2DParamDescriptor) SetRange(xmin, ymin, xmax, ymax float64) {
	p.min, p.max = [2]float64{xmin, ymin}, [2]float64{xmax, ymax}
}
func (p *Double2DParamDescriptor) SetDisplayRange(xmin, ymin, xmax, ymax float64) {
	p.dispMin, p.dispMax = [2]float64{xmin, ymin}, [2]float64{xmax, ymax}
}
func (p *Double2DParamDescriptor) SetDoubleType(t DoubleType) { p.doubleType = t }
func (p *Double2DParamDescriptor) DoubleType() DoubleType     { return p.doubleType }
func (p *Double2DParamDescriptor) SetDefaultCoordinateSystem(c CoordinateSystem) {
	p.coords = c
}
func (p *Double2DParamDescriptor) DefaultCoordinateSystem() CoordinateSystem { return p.coords }

// Double3DParamDescriptor defines a triple of doubles.
type Double3DParamDescriptor struct {
	paramBase
	def              [3]float64
	min, max         [3]float64
	dispMin, dispMax [3]float64
}

func (p *Double3DParamDescriptor) SetDefault(x, y, z float64) { p.def = [3]float64{x, y, z} }
func (p *Double3DParamDescriptor) Default() (x, y, z float64) {
	return p.def[0], p.def[1], p.def[2]
}
func (p *Double3DParamDescriptor) SetRange(xmin, ymin, zmin, xmax, ymax, zmax float64) {
	p.min, p.max = [3]float64{xmin, ymin, zmin}, [3]float64{xmax, ymax, zmax}
}
func (p *Double3DParamDescriptor) SetDisplayRange(xmin, ymin, zmin, xmax, ymax, zmax float64) {
	p.dispMin, p.dispMax = [3]float64{xmin, ymin, zmin}, [3]float64{xmax, ymax, zmax}
}

// IntParamDescriptor defines an integer parameter.
type IntParamDescriptor struct {
	paramBase
	def              int
	min, max         int
	dispMin, dispMax int
}

func (p *IntParamDescriptor) SetDefault(v int)              { p.def = v }
func (p *IntParamDescriptor) Default() int                  { return p.def }
func (p *IntParamDescriptor) SetRange(lo, hi int)           { p.min, p.max = lo, hi }
func (p *IntParamDescriptor) Range() (lo, hi int)           { return p.min, p.max }
func (p *IntParamDescriptor) SetDisplayRange(lo, hi int)    { p.dispMin, p.dispMax = lo, hi }
func (p *IntParamDescriptor) DisplayRange() (lo, hi int)    { return p.dispMin, p.dispMax }

// Int2DParamDescriptor defines a pair of integers.
type Int2DParamDescriptor struct {
	paramBase
	def              [2]int
	min, max         [2]int
	dispMin, dispMax [2]int
}

func (p *Int2DParamDescriptor) SetDefault(x, y int)     { p.def = [2]int{x, y} }
func (p *Int2DParamDescriptor) Default() (x, y int)     { return p.def[0], p.def[1] }
func (p *Int2DParamDescriptor) SetRange(xmin, ymin, xmax, ymax int) {
	p.min, p.max = [2]int{xmin, ymin}, [2]int{xmax, ymax}
}
func (p *Int2DParamDescriptor) SetDisplayRange(xmin, ymin, xmax, ymax int) {
	p.dispMin, p.dispMax = [2]int{xmin, ymin}, [2]int{xmax, ymax}
}

// BooleanParamDescriptor defines a checkbox.
type BooleanParamDescriptor struct {
	paramBase
	def bool
}

func (p *BooleanParamDescriptor) SetDefault(v bool) { p.def = v }
func (p *BooleanParamDescriptor) Default() bool     { return p.def }

// ChoiceParamDescriptor defines a menu. Instances copy the options and may
// regenerate them.
type ChoiceParamDescriptor struct {
	paramBase
	options []string
	def     int
}

func (p *ChoiceParamDescriptor) AppendOption(label string) { p.options = append(p.options, label) }
func (p *ChoiceParamDescriptor) ResetOptions()             { p.options = nil }
func (p *ChoiceParamDescriptor) Options() []string         { return append([]string(nil), p.options...) }
func (p *ChoiceParamDescriptor) SetDefault(i int)          { p.def = i }
func (p *ChoiceParamDescriptor) Default() int              { return p.def }

// StringParamDescriptor defines a text or path parameter.
type StringParamDescriptor struct {
	paramBase
	def        string
	stringType StringType
	mustExist  bool
}

func (p *StringParamDescriptor) SetDefault(v string)          { p.def = v }
func (p *StringParamDescriptor) Default() string              { return p.def }
func (p *StringParamDescriptor) SetStringType(t StringType)   { p.stringType = t }
func (p *StringParamDescriptor) StringType() StringType       { return p.stringType }
func (p *StringParamDescriptor) SetFilePathExists(v bool)     { p.mustExist = v }
func (p *StringParamDescriptor) FilePathExists() bool         { return p.mustExist }

// RGBAParamDescriptor defines a color with alpha.
type RGBAParamDescriptor struct {
	paramBase
	def [4]float64
}

func (p *RGBAParamDescriptor) SetDefault(r, g, b, a float64) { p.def = [4]float64{r, g, b, a} }
func (p *RGBAParamDescriptor) Default() (r, g, b, a float64) {
	return p.def[0], p.def[1], p.def[2], p.def[3]
}

// RGBParamDescriptor defines a color without alpha.
type RGBParamDescriptor struct {
	paramBase
	def [3]float64
}

func (p *RGBParamDescriptor) SetDefault(r, g, b float64) { p.def = [3]float64{r, g, b} }
func (p *RGBParamDescriptor) Default() (r, g, b float64) { return p.def[0], p.def[1], p.def[2] }

// PushButtonParamDescriptor defines a button. It holds no value.
type PushButtonParamDescriptor struct {
	paramBase
}

// PageParamDescriptor groups parameters onto a tab.
type PageParamDescriptor struct {
	paramBase
	children []string
}

// AddChild places p on the page.
func (p *PageParamDescriptor) AddChild(c ParamDescriptor) {
	p.children = append(p.children, c.Name())
}

// Children returns the names of the parameters on the page, in order.
func (p *PageParamDescriptor) Children() []string { return append([]string(nil), p.children...) }

// GroupParamDescriptor is a collapsible group of parameters.
type GroupParamDescriptor struct {
	paramBase
	open bool
}

func (p *GroupParamDescriptor) SetOpen(v bool) { p.open = v }
func (p *GroupParamDescriptor) Open() bool     { return p.open }

// SetParent places c inside group g.
func SetParent(c ParamDescriptor, g *GroupParamDescriptor) {
	c.common().parent = g.Name()
}

// numericDefault returns the default of a numeric parameter as float64s.
func numericDefault(d ParamDescriptor) []float64 {
	switch p := d.(type) {
	case *DoubleParamDescriptor:
		return []float64{p.def}
	case *Double2DParamDescriptor:
		return []float64{p.def[0], p.def[1]}
	case *Double3DParamDescriptor:
		return []float64{p.def[0], p.def[1], p.def[2]}
	case *IntParamDescriptor:
		return []float64{float64(p.def)}
	case *Int2DParamDescriptor:
		return []float64{float64(p.def[0]), float64(p.def[1])}
	case *BooleanParamDescriptor:
		if p.def {
			return []float64{1}
		}
		return []float64{0}
	case *ChoiceParamDescriptor:
		return []float64{float64(p.def)}
	case *RGBAParamDescriptor:
		return p.def[:]
	case *RGBParamDescriptor:
		return p.def[:]
	default:
		return nil
	}
}

// numericRange returns per-component bounds. ok is false when the
// parameter is unbounded (a zero range means "not set").
func numericRange(d ParamDescriptor) (lo, hi []float64, ok bool) {
	switch p := d.(type) {
	case *DoubleParamDescriptor:
		if p.min == 0 && p.max == 0 {
			return nil, nil, false
		}
		return []float64{p.min}, []float64{p.max}, true
	case *Double2DParamDescriptor:
		if p.min == p.max {
			return nil, nil, false
		}
		return p.min[:], p.max[:], true
	case *Double3DParamDescriptor:
		if p.min == p.max {
			return nil, nil, false
		}
		return p.min[:], p.max[:], true
	case *IntParamDescriptor:
		if p.min == 0 && p.max == 0 {
			return nil, nil, false
		}
		return []float64{float64(p.min)}, []float64{float64(p.max)}, true
	case *Int2DParamDescriptor:
		if p.min == p.max {
			return nil, nil, false
		}
		return []float64{float64(p.min[0]), float64(p.min[1])}, []float64{float64(p.max[0]), float64(p.max[1])}, true
	default:
		return nil, nil, false
	}
}
