package fonts

import (
	"strconv"
	"strings"
)

// Style is the slant of a face.
type Style int

const (
	StyleNormal Style = iota
	StyleOblique
	StyleItalic
)

func (s Style) String() string {
	switch s {
	case StyleOblique:
		return "Oblique"
	case StyleItalic:
		return "Italic"
	}
	return "Normal"
}

// Weight is a face weight on the 100..1000 scale.
type Weight int

const (
	WeightThin       Weight = 100
	WeightUltraLight Weight = 200
	WeightLight      Weight = 300
	WeightSemiLight  Weight = 350
	WeightBook       Weight = 380
	WeightNormal     Weight = 400
	WeightMedium     Weight = 500
	WeightSemiBold   Weight = 600
	WeightBold       Weight = 700
	WeightUltraBold  Weight = 800
	WeightHeavy      Weight = 900
	WeightUltraHeavy Weight = 1000
)

// Stretch is the width of a face relative to its family.
type Stretch int

const (
	StretchUltraCondensed Stretch = iota
	StretchExtraCondensed
	StretchCondensed
	StretchSemiCondensed
	StretchNormal
	StretchSemiExpanded
	StretchExpanded
	StretchExtraExpanded
	StretchUltraExpanded
)

// WeightMenu lists the weights in the order of the Text weight menu.
var WeightMenu = []Weight{
	WeightThin, WeightUltraLight, WeightLight, WeightSemiLight, WeightBook, WeightNormal,
	WeightMedium, WeightSemiBold, WeightBold, WeightUltraBold, WeightHeavy, WeightUltraHeavy,
}

// WeightLabels are the menu labels matching WeightMenu.
var WeightLabels = []string{
	"Thin", "Ultra light", "Light", "Semi light", "Book", "Normal",
	"Medium", "Semi bold", "Bold", "Ultra bold", "Heavy", "Ultra heavy",
}

// StretchLabels are the menu labels, indexed by Stretch.
var StretchLabels = []string{
	"Ultra condensed", "Extra condensed", "Condensed", "Semi condensed", "Normal",
	"Semi expanded", "Expanded", "Extra expanded", "Ultra expanded",
}

// MenuWeight maps a weight menu index to a weight. Out of range indexes
// give WeightNormal.
func MenuWeight(i int) Weight {
	if i < 0 || i >= len(WeightMenu) {
		return WeightNormal
	}
	return WeightMenu[i]
}

// MenuStretch maps a stretch menu index to a stretch.
func MenuStretch(i int) Stretch {
	if i < 0 || i > int(StretchUltraExpanded) {
		return StretchNormal
	}
	return Stretch(i)
}

// Description selects a face and a size, like a pango font description.
type Description struct {
	Family  string
	Style   Style
	Weight  Weight
	Stretch Stretch
	Size    float64
}

// keywords maps normalized description words to their effect.
var keywords = map[string]func(*Description){
	"normal":         func(d *Description) { d.Style = StyleNormal },
	"roman":          func(d *Description) { d.Style = StyleNormal },
	"italic":         func(d *Description) { d.Style = StyleItalic },
	"oblique":        func(d *Description) { d.Style = StyleOblique },
	"smallcaps":      func(*Description) {},
	"thin":           func(d *Description) { d.Weight = WeightThin },
	"ultralight":     func(d *Description) { d.Weight = WeightUltraLight },
	"extralight":     func(d *Description) { d.Weight = WeightUltraLight },
	"light":          func(d *Description) { d.Weight = WeightLight },
	"semilight":      func(d *Description) { d.Weight = WeightSemiLight },
	"demilight":      func(d *Description) { d.Weight = WeightSemiLight },
	"book":           func(d *Description) { d.Weight = WeightBook },
	"regular":        func(d *Description) { d.Weight = WeightNormal },
	"medium":         func(d *Description) { d.Weight = WeightMedium },
	"semibold":       func(d *Description) { d.Weight = WeightSemiBold },
	"demibold":       func(d *Description) { d.Weight = WeightSemiBold },
	"bold":           func(d *Description) { d.Weight = WeightBold },
	"ultrabold":      func(d *Description) { d.Weight = WeightUltraBold },
	"extrabold":      func(d *Description) { d.Weight = WeightUltraBold },
	"heavy":          func(d *Description) { d.Weight = WeightHeavy },
	"black":          func(d *Description) { d.Weight = WeightHeavy },
	"ultraheavy":     func(d *Description) { d.Weight = WeightUltraHeavy },
	"extrablack":     func(d *Description) { d.Weight = WeightUltraHeavy },
	"ultrablack":     func(d *Description) { d.Weight = WeightUltraHeavy },
	"ultracondensed": func(d *Description) { d.Stretch = StretchUltraCondensed },
	"extracondensed": func(d *Description) { d.Stretch = StretchExtraCondensed },
	"condensed":      func(d *Description) { d.Stretch = StretchCondensed },
	"semicondensed":  func(d *Description) { d.Stretch = StretchSemiCondensed },
	"semiexpanded":   func(d *Description) { d.Stretch = StretchSemiExpanded },
	"expanded":       func(d *Description) { d.Stretch = StretchExpanded },
	"extraexpanded":  func(d *Description) { d.Stretch = StretchExtraExpanded },
	"ultraexpanded":  func(d *Description) { d.Stretch = StretchUltraExpanded },
}

func normalizeWord(w string) string {
	w = strings.ToLower(w)
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(w)
}

// ParseDescription reads the "[FAMILY-LIST] [STYLE-OPTIONS] [SIZE]" form,
// for example "DejaVu Sans bold italic 64". Words are consumed from the
// end; everything before the first unknown word is the family. Only the
// first family of a comma separated list is kept.
func ParseDescription(s string) Description {
	return MergeDescription(Description{Weight: WeightNormal, Stretch: StretchNormal}, s)
}

// MergeDescription parses s like ParseDescription and overrides the
// fields of base that s sets. An empty family or a missing size keep
// the values of base.
func MergeDescription(base Description, s string) Description {
	d := base
	words := strings.Fields(s)
	if n := len(words); n > 0 {
		size := strings.TrimSuffix(words[n-1], "px")
		if v, err := strconv.ParseFloat(size, 64); err == nil && v >= 0 {
			d.Size = v
			words = words[:n-1]
		}
	}
	for len(words) > 0 {
		if !d.Apply(words[len(words)-1]) {
			break
		}
		words = words[:len(words)-1]
	}
	family := strings.Join(words, " ")
	if i := strings.IndexByte(family, ','); i >= 0 {
		family = family[:i]
	}
	if family = strings.TrimSpace(family); family != "" {
		d.Family = family
	}
	return d
}

// Apply sets the style, weight or stretch named by word ("bold",
// "Semi-Condensed", "italic") and reports whether word was one.
func (d *Description) Apply(word string) bool {
	apply, ok := keywords[normalizeWord(word)]
	if ok {
		apply(d)
	}
	return ok
}

// String formats d in the form ParseDescription reads.
func (d Description) String() string {
	var b strings.Builder
	b.WriteString(d.Family)
	add := func(w string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	switch d.Style {
	case StyleItalic:
		add("Italic")
	case StyleOblique:
		add("Oblique")
	}
	if d.Weight != 0 && d.Weight != WeightNormal {
		add(weightWord(d.Weight))
	}
	if d.Stretch != StretchNormal {
		add(strings.ReplaceAll(StretchLabels[MenuStretch(int(d.Stretch))], " ", "-"))
	}
	if d.Size > 0 {
		add(strconv.FormatFloat(d.Size, 'f', -1, 64))
	}
	return b.String()
}

func weightWord(w Weight) string {
	for i, mw := range WeightMenu {
		if mw == w {
			return strings.ReplaceAll(WeightLabels[i], " ", "-")
		}
	}
	return strconv.Itoa(int(w))
}
