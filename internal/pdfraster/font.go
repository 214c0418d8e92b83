package pdfraster

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"github.com/wudi/pdfkit/ir/raw"
	"github.com/wudi/pdfkit/ir/semantic"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/internal/fonts"
)

// unitsPerEm is the size glyphs are shaped and extracted at; PDF widths
// use the same scale.
const unitsPerEm = 1000

var substitutes = sync.OnceValue(func() *fonts.Catalog { return fonts.New() })

// font is a loaded PDF font resource.
type font struct {
	name      string
	src       *text.FontSource
	face      text.Face
	composite bool
	// identity maps character codes directly to glyph ids.
	identity bool
	cidToGID map[int]text.GlyphID
	type3    bool

	toUnicode    map[int][]rune
	encoding     [256]rune
	widths       map[int]float64
	defaultWidth float64

	mu        sync.Mutex
	gids      map[int]text.GlyphID
	advances  map[int]float64
	outlines  map[text.GlyphID]*text.GlyphOutline
	extractor *text.OutlineExtractor
}

// font returns the font resource dict, loading it on first use.
func (d *Document) font(ctx context.Context, dict *raw.DictObj) *font {
	d.mu.Lock()
	f, ok := d.fonts[dict]
	d.mu.Unlock()
	if ok {
		return f
	}
	f = d.loadFont(ctx, dict)
	d.mu.Lock()
	d.fonts[dict] = f
	d.mu.Unlock()
	return f
}

func newFont(name string) *font {
	f := &font{
		name:      name,
		widths:    make(map[int]float64),
		gids:      make(map[int]text.GlyphID),
		advances:  make(map[int]float64),
		outlines:  make(map[text.GlyphID]*text.GlyphOutline),
		extractor: text.NewOutlineExtractor(),
	}
	for i := range f.encoding {
		f.encoding[i] = rune(i)
	}
	return f
}

func (d *Document) loadFont(ctx context.Context, dict *raw.DictObj) *font {
	subtype, _ := d.name(dict.KV["Subtype"])
	base, _ := d.name(dict.KV["BaseFont"])
	f := newFont(base)
	log := effect.Logger()

	descDict := dict
	switch subtype {
	case "Type0":
		f.composite = true
		f.defaultWidth = 1000
		if a := d.arrayOf(dict.KV["DescendantFonts"]); a != nil && len(a.Items) > 0 {
			if cid := d.dictOf(a.Items[0]); cid != nil {
				descDict = cid
				d.cidWidths(f, cid)
				d.cidToGIDMap(ctx, f, cid)
			}
		}
	case "Type3":
		f.type3 = true
		d.simpleWidths(f, dict)
		if m := d.numbers(dict.KV["FontMatrix"]); len(m) == 6 {
			for k, w := range f.widths {
				f.widths[k] = w * m[0] * unitsPerEm
			}
		}
		log.Debug("pdfraster: type 3 glyphs are not drawn", "font", base)
		return f
	default:
		d.simpleWidths(f, dict)
		d.simpleEncoding(f, dict)
	}

	if s := d.streamOf(dict.KV["ToUnicode"]); s != nil {
		if data, rest, err := d.streamData(ctx, s); err == nil && len(rest) == 0 {
			f.toUnicode = parseCMap(data)
		}
	}

	desc := d.dictOf(descDict.KV["FontDescriptor"])
	if desc != nil {
		for _, key := range []string{"FontFile2", "FontFile3"} {
			s := d.streamOf(desc.KV[key])
			if s == nil {
				continue
			}
			data, rest, err := d.streamData(ctx, s)
			if err != nil || len(rest) > 0 {
				log.Debug("pdfraster: font program unreadable", "font", base, "err", err)
				break
			}
			src, err := text.NewFontSource(data)
			if err != nil {
				log.Debug("pdfraster: embedded font rejected", "font", base, "err", err)
				break
			}
			f.src = src
			break
		}
	}
	if f.src == nil {
		f.identity = false
		f.cidToGID = nil
		src, err := substitutes().Resolve(substitute(base, d.flags(desc)))
		if err != nil {
			log.Warn("pdfraster: no substitute font", "font", base, "err", err)
			return f
		}
		f.src = src
	}
	f.face = f.src.Face(unitsPerEm)
	return f
}

func (d *Document) flags(desc *raw.DictObj) int {
	if desc == nil {
		return 0
	}
	n, _ := d.number(desc.KV["Flags"])
	return int(n)
}

// substitute picks a built-in face for a font that is not embedded.
func substitute(base string, flags int) fonts.Description {
	if i := strings.IndexByte(base, '+'); i == 6 {
		base = base[i+1:]
	}
	lower := strings.ToLower(base)
	desc := fonts.Description{Family: fonts.DefaultFamily, Weight: fonts.WeightNormal, Stretch: fonts.StretchNormal}
	if flags&1 != 0 || strings.Contains(lower, "courier") || strings.Contains(lower, "mono") {
		desc.Family = "Go Mono"
	}
	for _, w := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(lower, w) {
			desc.Weight = fonts.WeightBold
			break
		}
	}
	if flags&(1<<6) != 0 || strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		desc.Style = fonts.StyleItalic
	}
	return desc
}

func (d *Document) simpleWidths(f *font, dict *raw.DictObj) {
	first, _ := d.number(dict.KV["FirstChar"])
	for i, w := range d.numbers(dict.KV["Widths"]) {
		f.widths[int(first)+i] = w
	}
	if desc := d.dictOf(dict.KV["FontDescriptor"]); desc != nil {
		if w, ok := d.number(desc.KV["MissingWidth"]); ok {
			f.defaultWidth = w
		}
	}
}

// cidWidths reads the W array of a CID font: "c [w1 w2 ...]" and
// "cfirst clast w" entries.
func (d *Document) cidWidths(f *font, cid *raw.DictObj) {
	if dw, ok := d.number(cid.KV["DW"]); ok {
		f.defaultWidth = dw
	}
	a := d.arrayOf(cid.KV["W"])
	if a == nil {
		return
	}
	for i := 0; i < len(a.Items); {
		c, ok := d.number(a.Items[i])
		if !ok || i+1 >= len(a.Items) {
			return
		}
		if ws := d.arrayOf(a.Items[i+1]); ws != nil {
			for j, w := range d.numbers(ws) {
				f.widths[int(c)+j] = w
			}
			i += 2
			continue
		}
		if i+2 >= len(a.Items) {
			return
		}
		last, _ := d.number(a.Items[i+1])
		w, _ := d.number(a.Items[i+2])
		for k := int(c); k <= int(last) && k-int(c) < 1<<16; k++ {
			f.widths[k] = w
		}
		i += 3
	}
}

func (d *Document) cidToGIDMap(ctx context.Context, f *font, cid *raw.DictObj) {
	sub, _ := d.name(cid.KV["Subtype"])
	if sub != "CIDFontType2" {
		return
	}
	o := d.resolve(cid.KV["CIDToGIDMap"])
	s, ok := o.(*raw.StreamObj)
	if !ok {
		f.identity = true
		return
	}
	data, rest, err := d.streamData(ctx, s)
	if err != nil || len(rest) > 0 {
		f.identity = true
		return
	}
	f.cidToGID = make(map[int]text.GlyphID, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		f.cidToGID[i/2] = text.GlyphID(int(data[i])<<8 | int(data[i+1]))
	}
}

func (d *Document) simpleEncoding(f *font, dict *raw.DictObj) {
	enc := d.resolve(dict.KV["Encoding"])
	switch v := enc.(type) {
	case raw.Name:
		setBaseEncoding(f, v.Value())
	case *raw.DictObj:
		if b, ok := d.name(v.KV["BaseEncoding"]); ok {
			setBaseEncoding(f, b)
		}
		diff := d.arrayOf(v.KV["Differences"])
		if diff == nil {
			return
		}
		code := 0
		for _, it := range diff.Items {
			if n, ok := d.number(it); ok {
				code = int(n)
				continue
			}
			if name, ok := d.name(it); ok {
				if code >= 0 && code < 256 {
					if r, ok := glyphRune(name); ok {
						f.encoding[code] = r
					}
				}
				code++
			}
		}
	}
}

func setBaseEncoding(f *font, name string) {
	var cm *charmap.Charmap
	switch name {
	case "WinAnsiEncoding":
		cm = charmap.Windows1252
	case "MacRomanEncoding":
		cm = charmap.Macintosh
	default:
		return
	}
	for i := range f.encoding {
		f.encoding[i] = cm.DecodeByte(byte(i))
	}
}

// glyphNames covers the common Adobe glyph names that are not a single
// character or a uniXXXX form.
var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "asciicircum": '^',
	"underscore": '_', "grave": '`', "braceleft": '{', "bar": '|',
	"braceright": '}', "asciitilde": '~', "quoteleft": '‘',
	"quoteright": '’', "quotedblleft": '“', "quotedblright": '”',
	"endash": '–', "emdash": '—', "bullet": '•',
	"ellipsis": '…', "fi": 'ﬁ', "fl": 'ﬂ', "Euro": '€',
	"copyright": '©', "registered": '®', "trademark": '™',
	"degree": '°', "eacute": 'é', "egrave": 'è',
	"agrave": 'à', "ccedilla": 'ç', "udieresis": 'ü',
	"odieresis": 'ö', "adieresis": 'ä', "germandbls": 'ß',
	"nbspace": '\u00a0', "section": '§', "dagger": '†',
}

func glyphRune(name string) (rune, bool) {
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if len(name) == 1 {
		return rune(name[0]), true
	}
	if strings.HasPrefix(name, "uni") && len(name) == 7 {
		if v, err := strconv.ParseUint(name[3:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	return 0, false
}

// codes splits a shown string into character codes.
func (f *font) codes(s []byte) []int {
	if !f.composite {
		out := make([]int, len(s))
		for i, b := range s {
			out[i] = int(b)
		}
		return out
	}
	out := make([]int, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		out = append(out, int(s[i])<<8|int(s[i+1]))
	}
	return out
}

// runeOf returns the Unicode value of a code.
func (f *font) runeOf(code int) rune {
	if rs, ok := f.toUnicode[code]; ok && len(rs) > 0 {
		return rs[0]
	}
	if !f.composite && code < 256 {
		return f.encoding[code]
	}
	return rune(code)
}

// glyph returns the glyph id for code, zero when the font has none.
func (f *font) glyph(code int) text.GlyphID {
	if f.face == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.gids[code]; ok {
		return g
	}
	var g text.GlyphID
	switch {
	case f.identity:
		g = text.GlyphID(code)
	case f.cidToGID != nil:
		g = f.cidToGID[code]
	default:
		g = f.shapeRune(code, f.runeOf(code))
		if g == 0 && !f.composite {
			// symbolic TrueType fonts map codes into the F0xx range
			g = f.shapeRune(code, rune(0xF000|code))
		}
	}
	f.gids[code] = g
	return g
}

func (f *font) shapeRune(code int, r rune) text.GlyphID {
	glyphs := text.Shape(string(r), f.face)
	if len(glyphs) == 0 {
		return 0
	}
	if _, ok := f.advances[code]; !ok {
		f.advances[code] = glyphs[0].XAdvance
	}
	return glyphs[0].GID
}

// width returns the advance of code in thousandths of the font size.
func (f *font) width(code int) float64 {
	if w, ok := f.widths[code]; ok {
		return w
	}
	f.glyph(code)
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.advances[code]; ok && w > 0 {
		return w
	}
	return f.defaultWidth
}

// outline returns the outline of g at unitsPerEm, y-down.
func (f *font) outline(g text.GlyphID) *text.GlyphOutline {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.outlines[g]; ok {
		return o
	}
	o, err := f.extractor.ExtractOutline(f.src.Parsed(), g, unitsPerEm)
	if err != nil {
		effect.Logger().Debug("pdfraster: no outline", "font", f.name, "glyph", g, "err", err)
		o = nil
	}
	f.outlines[g] = o
	return o
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// parseCMap reads the bfchar and bfrange sections of a ToUnicode CMap.
func parseCMap(data []byte) map[int][]rune {
	ops, _ := lex(data)
	m := make(map[int][]rune)
	for _, op := range ops {
		switch op.Operator {
		case "endbfchar":
			for i := 0; i+1 < len(op.Operands); i += 2 {
				src, ok1 := op.Operands[i].(semantic.StringOperand)
				dst, ok2 := op.Operands[i+1].(semantic.StringOperand)
				if ok1 && ok2 {
					m[codeOf(src.Value)] = decodeUTF16(dst.Value)
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(op.Operands); i += 3 {
				lo, ok1 := op.Operands[i].(semantic.StringOperand)
				hi, ok2 := op.Operands[i+1].(semantic.StringOperand)
				if !ok1 || !ok2 {
					continue
				}
				a, b := codeOf(lo.Value), codeOf(hi.Value)
				if b < a || b-a > 1<<16 {
					continue
				}
				switch dst := op.Operands[i+2].(type) {
				case semantic.StringOperand:
					base := decodeUTF16(dst.Value)
					if len(base) == 0 {
						continue
					}
					for c := a; c <= b; c++ {
						rs := append([]rune(nil), base...)
						rs[len(rs)-1] += rune(c - a)
						m[c] = rs
					}
				case semantic.ArrayOperand:
					for j, v := range dst.Values {
						if s, ok := v.(semantic.StringOperand); ok && a+j <= b {
							m[a+j] = decodeUTF16(s.Value)
						}
					}
				}
			}
		}
	}
	return m
}

func codeOf(b []byte) int {
	c := 0
	for _, x := range b {
		c = c<<8 | int(x)
	}
	return c
}

func decodeUTF16(b []byte) []rune {
	out, err := utf16be.NewDecoder().Bytes(b)
	if err != nil {
		return nil
	}
	return []rune(string(out))
}
