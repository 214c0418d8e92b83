package text

import (
	"math"
	"slices"
	"sync"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/internal/fonts"
	"github.com/fxarena/arena/internal/typeset"
)

type plugin struct {
	h      *effect.Handle
	system bool

	// shared is the factory catalog, cat the one in use. They differ
	// while a custom font is loaded.
	shared *fonts.Catalog
	mu     sync.RWMutex
	cat    *fonts.Catalog
}

func (f Factory) CreateInstance(h *effect.Handle, ctx effect.Context) (effect.Instance, error) {
	cat := f.catalog()
	p := &plugin{h: h, system: f.SystemFonts, shared: cat, cat: cat}
	def := ""
	if custom := h.StringParam(ParamCustomFont).Value(); custom != "" {
		def = p.loadCustom(custom)
	}
	p.updateMenu(def)
	p.syncFont()
	return p, nil
}

func (p *plugin) catalog() *fonts.Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cat
}

// loadCustom replaces the catalog with one that also holds the fonts at
// path. It returns the first family the path added, if any.
func (p *plugin) loadCustom(path string) string {
	cat := fonts.New(fonts.WithSystemFonts(p.system))
	known := cat.Families()
	if err := cat.AddPath(path); err != nil {
		effect.Logger().Warn("text: custom font not loaded", "path", path, "err", err)
		return ""
	}
	p.mu.Lock()
	p.cat = cat
	p.mu.Unlock()
	for _, f := range cat.Families() {
		if !slices.Contains(known, f) {
			return f
		}
	}
	return ""
}

// dropCustom goes back to the shared catalog. A selected family that only
// the custom font provided falls back to the menu default.
func (p *plugin) dropCustom() {
	p.mu.Lock()
	changed := p.cat != p.shared
	p.cat = p.shared
	p.mu.Unlock()
	if !changed {
		return
	}
	p.updateMenu("")
	font := p.h.StringParam(ParamFont)
	if !p.shared.HasFamily(fonts.StripMenuPrefix(font.Value())) {
		name := p.h.ChoiceParam(ParamFontName)
		font.SetValue(name.Option(name.Value()))
	}
}

// updateMenu refills the family menu from the catalog. The default entry
// is def when present, else the usual fallbacks. The current selection is
// kept when it is still listed.
func (p *plugin) updateMenu(def string) {
	cat := p.catalog()
	name := p.h.ChoiceParam(ParamFontName)
	cur := name.Option(name.Value())

	name.ResetOptions()
	menu := cat.Menu(p.h.Host().IsNatron)
	if len(menu) == 0 {
		name.AppendOption("N/A")
	}
	for _, o := range menu {
		name.AppendOption(o)
	}
	if def == "" {
		def = defaultFont
	}
	name.SetDefault(cat.DefaultIndex(def, defaultFontAlt))
	if i := name.Index(cur); i >= 0 {
		name.SetValue(i)
	} else {
		name.SetValue(name.Default())
	}
}

// syncFont reconciles the font string with the family menu: an empty
// string takes the menu selection, a known one selects its menu entry.
func (p *plugin) syncFont() {
	font := p.h.StringParam(ParamFont)
	name := p.h.ChoiceParam(ParamFontName)
	opt := name.Option(name.Value())
	cur := font.Value()
	switch {
	case cur == "":
		font.SetValue(opt)
	case cur != opt:
		if i := name.Index(cur); i >= 0 {
			name.SetValue(i)
		}
	}
}

func (p *plugin) ChangedParam(args effect.InstanceChangedArgs, paramName string) error {
	switch paramName {
	case ParamResetCenter:
		rod := p.h.Clip(effect.ClipOutput).RegionOfDefinition(args.Time)
		if !rod.IsInfinite() {
			p.h.Double2DParam(ParamCenter).SetValue((rod.X1+rod.X2)/2, (rod.Y1+rod.Y2)/2)
		}
	case ParamFontName:
		name := p.h.ChoiceParam(ParamFontName)
		p.h.StringParam(ParamFont).SetValue(name.Option(name.ValueAtTime(args.Time)))
	case ParamCustomFont:
		custom := p.h.StringParam(ParamCustomFont).ValueAtTime(args.Time)
		if custom == "" {
			p.dropCustom()
			break
		}
		family := p.loadCustom(custom)
		if family == "" {
			break
		}
		p.updateMenu(family)
		name := p.h.ChoiceParam(ParamFontName)
		name.SetValue(name.Default())
		p.h.StringParam(ParamFont).SetValue(name.Option(name.Value()))
	}
	p.h.ClearPersistentMessage()
	return nil
}

// RegionOfDefinition is the canvas when set. With auto size it is the
// size of the text at full resolution, padded for the stroke.
func (p *plugin) RegionOfDefinition(args effect.RegionOfDefinitionArgs) (effect.RectD, bool, error) {
	t := args.Time
	w, h := p.h.Int2DParam(ParamCanvas).ValueAtTime(t)
	if p.h.BooleanParam(ParamAutoSize).ValueAtTime(t) {
		s := p.read(t)
		if s.font != "" {
			lay, err := p.layout(s, 1, 0)
			if err != nil {
				effect.Logger().Debug("text: no size for auto size", "err", err)
				return effect.RectD{}, false, nil
			}
			w, h = lay.PixelSize()
			if s.strokeWidth > 0 {
				w = int(float64(w) + s.strokeWidth*2)
				h = int(float64(h) + s.strokeWidth/2)
			}
		}
	}
	if w > 0 && h > 0 {
		return effect.RectD{X2: float64(w), Y2: float64(h)}, true, nil
	}
	return effect.RectD{}, false, nil
}

// layout shapes the text at scale. width is the wrapping width of the
// canvas in pixels.
func (p *plugin) layout(s settings, scale, width float64) (*typeset.Layout, error) {
	tp := typeset.Params{
		Text:   s.text,
		Markup: s.markup,
		Font:   s.description(scale),
	}
	if !s.markup && s.letterSpace != 0 {
		tp.LetterSpacing = math.Floor(float64(s.letterSpace)*scale + 0.5)
	}
	if !s.autoSize && !s.move {
		tp.Wrap = typeset.Wrap(s.wrap)
		tp.Width = width
	}
	if !s.move {
		tp.Align = typeset.Align(s.align)
		tp.Justify = s.justify
	}
	return typeset.New(p.catalog(), tp)
}
