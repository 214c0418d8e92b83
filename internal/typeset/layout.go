package typeset

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gogpu/gg/text"

	"github.com/fxarena/arena/internal/fonts"
	"github.com/fxarena/arena/internal/markup"
)

func init() {
	text.SetShaper(text.NewGoTextShaper())
}

// DefaultSize is used when a description carries no size.
const DefaultSize = 12

// ErrNoCatalog is returned by New when no catalog is given.
var ErrNoCatalog = errors.New("typeset: nil font catalog")

// Wrap selects where lines may break.
type Wrap uint8

const (
	WrapNone Wrap = iota
	WrapWord
	WrapChar
	WrapWordChar
)

func (w Wrap) mode() text.WrapMode {
	switch w {
	case WrapWord:
		return text.WrapWord
	case WrapChar:
		return text.WrapChar
	case WrapWordChar:
		return text.WrapWordChar
	default:
		return text.WrapNone
	}
}

// Align positions lines horizontally inside the layout.
type Align uint8

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Params describe a layout.
type Params struct {
	// Text is plain text, or pango markup when Markup is set.
	Text   string
	Markup bool

	Font fonts.Description

	// Wrap applies only when Width is positive.
	Wrap  Wrap
	Width float64

	Align   Align
	Justify bool

	// Extra spacing in pixels.
	LetterSpacing float64
	WordSpacing   float64
	LineSpacing   float64
}

// Glyph is a positioned glyph. X and Y are relative to the start of the
// line's baseline.
type Glyph struct {
	ID      text.GlyphID
	X, Y    float64
	Advance float64
	Space   bool
}

// Run is a piece of a line shaped with a single face.
type Run struct {
	Attrs  markup.Attrs
	Source *text.FontSource
	Size   float64
	X      float64
	Width  float64
	Glyphs []Glyph
}

// Line is one laid out line. Start and End are byte offsets into the
// plain text.
type Line struct {
	Text       string
	Start, End int
	Runs       []Run

	// X is the alignment offset and Top the distance from the top of the
	// layout to the top of the line box.
	X, Top  float64
	Width   float64
	Ascent  float64
	Descent float64

	last bool
}

// Baseline returns the distance from the top of the layout to the line's
// baseline.
func (l *Line) Baseline() float64 { return l.Top + l.Ascent }

// Height is the logical height of the line box.
func (l *Line) Height() float64 { return l.Ascent + l.Descent }

// Layout is a shaped, wrapped and positioned block of text. Drawing
// methods may be called concurrently.
type Layout struct {
	params Params
	plain  string
	lines  []Line
	width  float64
	height float64

	mu        sync.Mutex
	extractor *text.OutlineExtractor
	outlines  map[outlineKey]*text.GlyphOutline
}

type shaper struct {
	cat   *fonts.Catalog
	faces map[fonts.Description]text.Face
}

func (s *shaper) face(d fonts.Description) (text.Face, error) {
	if d.Size <= 0 {
		d.Size = DefaultSize
	}
	if f, ok := s.faces[d]; ok {
		return f, nil
	}
	src, err := s.cat.Resolve(d)
	if err != nil {
		return nil, err
	}
	f := src.Face(d.Size)
	s.faces[d] = f
	return f, nil
}

// New shapes and lays out p with fonts from cat.
func New(cat *fonts.Catalog, p Params) (*Layout, error) {
	if cat == nil {
		return nil, ErrNoCatalog
	}
	src := strings.ReplaceAll(p.Text, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")

	base := markup.Attrs{Font: p.Font, LetterSpacing: p.LetterSpacing}
	if base.Font.Size <= 0 {
		base.Font.Size = DefaultSize
	}
	var spans []markup.Span
	plain := src
	if p.Markup {
		var err error
		spans, plain, err = markup.Parse(src, base)
		if err != nil {
			return nil, fmt.Errorf("typeset: %w", err)
		}
	}
	if len(spans) == 0 {
		spans = []markup.Span{{Text: plain, Start: 0, End: len(plain), Attrs: base}}
	}

	s := &shaper{cat: cat, faces: make(map[fonts.Description]text.Face)}
	baseFace, err := s.face(base.Font)
	if err != nil {
		return nil, fmt.Errorf("typeset: %w", err)
	}

	l := &Layout{
		params:    p,
		plain:     plain,
		extractor: text.NewOutlineExtractor(),
		outlines:  make(map[outlineKey]*text.GlyphOutline),
	}
	wrap := p.Wrap != WrapNone && p.Width > 0

	off := 0
	for _, para := range strings.Split(plain, "\n") {
		var lines []Line
		if wrap && para != "" {
			lines, err = s.wrap(spans, plain, off, off+len(para), baseFace, p)
		} else {
			var line Line
			line, err = s.line(spans, plain, off, off+len(para), baseFace, p.WordSpacing)
			lines = []Line{line}
		}
		if err != nil {
			return nil, err
		}
		lines[len(lines)-1].last = true
		l.lines = append(l.lines, lines...)
		off += len(para) + 1
	}

	l.arrange(wrap)
	return l, nil
}

// wrap breaks the paragraph plain[start:end] into lines no wider than
// p.Width. text.WrapText measures with the base face only, so each line
// is shaped with its span faces and spacing, and the budget shrinks by
// the overflow until the line fits or cannot be broken further.
func (s *shaper) wrap(spans []markup.Span, plain string, start, end int, baseFace text.Face, p Params) ([]Line, error) {
	const minBudget = 1e-3
	var lines []Line
	pos := start
	for pos < end {
		rest := plain[pos:end]
		budget := p.Width
		var line Line
		for {
			r := text.WrapText(rest, baseFace, budget, p.Wrap.mode())[0]
			var err error
			line, err = s.line(spans, plain, pos+r.Start, pos+r.End, baseFace, p.WordSpacing)
			if err != nil {
				return nil, err
			}
			if line.Width <= p.Width || budget == minBudget {
				break
			}
			budget = max(budget-(line.Width-p.Width), minBudget)
		}
		lines = append(lines, line)
		pos = line.End
		for pos < end {
			r, size := utf8.DecodeRuneInString(plain[pos:end])
			if !unicode.IsSpace(r) {
				break
			}
			pos += size
		}
	}
	return lines, nil
}

// line shapes plain[start:end], splitting it where spans change.
func (s *shaper) line(spans []markup.Span, plain string, start, end int, baseFace text.Face, wordSpacing float64) (Line, error) {
	line := Line{Text: plain[start:end], Start: start, End: end}
	m := baseFace.Metrics()
	line.Ascent, line.Descent = m.Ascent, m.Descent

	pen := 0.0
	for _, sp := range spans {
		a, b := max(start, sp.Start), min(end, sp.End)
		if a >= b {
			continue
		}
		face, err := s.face(sp.Attrs.Font)
		if err != nil {
			return Line{}, fmt.Errorf("typeset: %w", err)
		}
		run := shapeRun(plain[a:b], face, sp.Attrs, wordSpacing)
		run.X = pen
		for i := range run.Glyphs {
			run.Glyphs[i].X += pen
		}
		pen += run.Width

		fm := face.Metrics()
		line.Ascent = math.Max(line.Ascent, fm.Ascent+sp.Attrs.Rise)
		line.Descent = math.Max(line.Descent, fm.Descent-sp.Attrs.Rise)
		line.Runs = append(line.Runs, run)
	}
	line.Width = pen
	return line, nil
}

func shapeRun(s string, face text.Face, attrs markup.Attrs, wordSpacing float64) Run {
	run := Run{Attrs: attrs, Source: face.Source(), Size: face.Size()}
	runes := []rune(s)
	extra := 0.0
	end := 0.0
	for _, g := range text.Shape(s, face) {
		space := g.Cluster >= 0 && g.Cluster < len(runes) && runes[g.Cluster] == ' '
		run.Glyphs = append(run.Glyphs, Glyph{
			ID:      g.GID,
			X:       g.X + extra,
			Y:       g.Y - attrs.Rise,
			Advance: g.XAdvance,
			Space:   space,
		})
		extra += attrs.LetterSpacing
		if space {
			extra += wordSpacing
		}
		end = math.Max(end, g.X+g.XAdvance+extra)
	}
	run.Width = end
	return run
}

// arrange stacks the lines and applies alignment and justification.
func (l *Layout) arrange(wrapped bool) {
	widest := 0.0
	for _, ln := range l.lines {
		widest = math.Max(widest, ln.Width)
	}
	box := widest
	if wrapped {
		box = l.params.Width
	}
	top := 0.0
	for i := range l.lines {
		ln := &l.lines[i]
		if l.params.Justify && wrapped && !ln.last {
			justify(ln, box)
		}
		switch l.params.Align {
		case AlignRight:
			ln.X = box - ln.Width
		case AlignCenter:
			ln.X = (box - ln.Width) / 2
		}
		ln.Top = top
		top += ln.Height()
		if i < len(l.lines)-1 {
			top += l.params.LineSpacing
		}
	}
	l.width = widest
	if wrapped && l.params.Justify {
		l.width = math.Max(widest, box)
	}
	l.height = top
}

// justify spreads the slack of ln over its inner spaces.
func justify(ln *Line, box float64) {
	slack := box - ln.Width
	if slack <= 0 {
		return
	}
	gaps := 0
	for _, r := range ln.Runs {
		for _, g := range r.Glyphs {
			if g.Space {
				gaps++
			}
		}
	}
	if gaps == 0 {
		return
	}
	step := slack / float64(gaps)
	shift := 0.0
	for ri := range ln.Runs {
		r := &ln.Runs[ri]
		r.X += shift
		for gi := range r.Glyphs {
			g := &r.Glyphs[gi]
			g.X += shift
			if g.Space {
				shift += step
			}
		}
		r.Width += step * float64(countSpaces(r.Glyphs))
	}
	ln.Width = box
}

func countSpaces(gs []Glyph) int {
	n := 0
	for _, g := range gs {
		if g.Space {
			n++
		}
	}
	return n
}

// Text returns the plain text that was laid out.
func (l *Layout) Text() string { return l.plain }

// Lines returns the laid out lines.
func (l *Layout) Lines() []Line { return l.lines }

// Size returns the logical extents in pixels.
func (l *Layout) Size() (w, h float64) { return l.width, l.height }

// PixelSize returns the logical extents rounded up to whole pixels.
func (l *Layout) PixelSize() (w, h int) {
	return int(math.Ceil(l.width)), int(math.Ceil(l.height))
}
