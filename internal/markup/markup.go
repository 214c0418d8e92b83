// Package markup parses the pango markup subset accepted by the text
// effects into attributed spans.
package markup

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/net/html"

	"github.com/fxarena/arena/internal/fonts"
)

var (
	// ErrMismatchedTag reports a closing tag that does not match the
	// innermost open tag, or a tag left open.
	ErrMismatchedTag = errors.New("markup: mismatched tag")

	// ErrUnknownTag reports a tag or attribute outside the supported set.
	ErrUnknownTag = errors.New("markup: unknown tag or attribute")

	// ErrBadValue reports an attribute value that cannot be parsed.
	ErrBadValue = errors.New("markup: bad attribute value")
)

// Color is a straight RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// Attrs are the text attributes in effect for a span.
type Attrs struct {
	Font fonts.Description

	Foreground    Color
	HasForeground bool
	Background    Color
	HasBackground bool

	Underline     bool
	Strikethrough bool
	Monospace     bool

	// LetterSpacing is extra space between glyphs, in pixels.
	LetterSpacing float64
	// Rise moves the baseline up, in pixels.
	Rise float64
}

// Span is a run of text sharing attributes. Start and End are byte
// offsets into the plain text returned by Parse.
type Span struct {
	Text       string
	Start, End int
	Attrs      Attrs
}

// scaleStep is the size ratio between adjacent named sizes.
const scaleStep = 1.2

// pangoScale converts pango units to points.
const pangoScale = 1024

var namedSizes = map[string]int{
	"xx-small": -3, "x-small": -2, "small": -1, "medium": 0,
	"large": 1, "x-large": 2, "xx-large": 3,
}

// Parse returns the spans of s and its plain text. Attributes start
// from base; nested tags refine the attributes of their parent.
func Parse(s string, base Attrs) ([]Span, string, error) {
	z := html.NewTokenizer(strings.NewReader(s))
	type frame struct {
		tag   string
		attrs Attrs
	}
	stack := []frame{{attrs: base}}
	var (
		spans []Span
		plain strings.Builder
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, "", fmt.Errorf("markup: %w", err)
			}
			if len(stack) > 1 {
				return nil, "", fmt.Errorf("%w: <%s> not closed", ErrMismatchedTag, stack[len(stack)-1].tag)
			}
			return spans, plain.String(), nil

		case html.TextToken:
			text := string(z.Text())
			if text == "" {
				continue
			}
			start := plain.Len()
			plain.WriteString(text)
			spans = append(spans, Span{Text: text, Start: start, End: plain.Len(), Attrs: stack[len(stack)-1].attrs})

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			attrs, err := applyTag(stack[len(stack)-1].attrs, base, tag)
			if err != nil {
				return nil, "", err
			}
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				if tag != "span" && tag != "markup" {
					return nil, "", fmt.Errorf("%w: <%s %s>", ErrUnknownTag, tag, k)
				}
				if err := applyAttr(&attrs, base, string(k), string(v)); err != nil {
					return nil, "", err
				}
			}
			if tt == html.StartTagToken {
				stack = append(stack, frame{tag: tag, attrs: attrs})
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if len(stack) < 2 || stack[len(stack)-1].tag != tag {
				return nil, "", fmt.Errorf("%w: </%s>", ErrMismatchedTag, tag)
			}
			stack = stack[:len(stack)-1]
		}
	}
}

func applyTag(a, base Attrs, tag string) (Attrs, error) {
	switch tag {
	case "markup", "span":
	case "b":
		a.Font.Weight = fonts.WeightBold
	case "i":
		a.Font.Style = fonts.StyleItalic
	case "u":
		a.Underline = true
	case "s":
		a.Strikethrough = true
	case "tt":
		a.Monospace = true
		a.Font.Family = "Go Mono"
	case "big":
		a.Font.Size *= scaleStep
	case "small":
		a.Font.Size /= scaleStep
	case "sub":
		a.Rise -= a.Font.Size / 3
		a.Font.Size /= scaleStep
	case "sup":
		a.Rise += a.Font.Size / 3
		a.Font.Size /= scaleStep
	default:
		return a, fmt.Errorf("%w: <%s>", ErrUnknownTag, tag)
	}
	return a, nil
}

func applyAttr(a *Attrs, base Attrs, key, val string) error {
	bad := func() error { return fmt.Errorf("%w: %s=%q", ErrBadValue, key, val) }
	switch key {
	case "font", "font_desc":
		a.Font = fonts.MergeDescription(a.Font, val)
	case "face", "font_family":
		a.Font.Family = val
	case "size", "font_size":
		size, ok := parseSize(val, a.Font.Size, base.Font.Size)
		if !ok {
			return bad()
		}
		a.Font.Size = size
	case "weight", "font_weight":
		if n, err := strconv.Atoi(val); err == nil {
			a.Font.Weight = fonts.Weight(n)
		} else if !a.Font.Apply(val) {
			return bad()
		}
	case "style", "font_style", "stretch", "font_stretch":
		if !a.Font.Apply(val) {
			return bad()
		}
	case "foreground", "fgcolor", "color":
		c, err := ParseColor(val)
		if err != nil {
			return bad()
		}
		a.Foreground, a.HasForeground = c, true
	case "background", "bgcolor":
		c, err := ParseColor(val)
		if err != nil {
			return bad()
		}
		a.Background, a.HasBackground = c, true
	case "alpha", "fgalpha":
		v, ok := parseAlpha(val)
		if !ok {
			return bad()
		}
		if !a.HasForeground {
			a.Foreground, a.HasForeground = base.Foreground, true
		}
		a.Foreground.A = v
	case "bgalpha":
		v, ok := parseAlpha(val)
		if !ok {
			return bad()
		}
		a.Background.A = v
	case "letter_spacing":
		n, err := strconv.Atoi(val)
		if err != nil {
			return bad()
		}
		a.LetterSpacing = float64(n) / pangoScale
	case "underline":
		a.Underline = val != "none" && val != "false"
	case "strikethrough":
		v, err := strconv.ParseBool(val)
		if err != nil {
			return bad()
		}
		a.Strikethrough = v
	case "rise":
		n, err := strconv.Atoi(val)
		if err != nil {
			return bad()
		}
		a.Rise = float64(n) / pangoScale
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTag, key)
	}
	return nil
}

// parseSize reads pango units, "NNpt" or a named size.
func parseSize(v string, cur, base float64) (float64, bool) {
	switch v {
	case "larger":
		return cur * scaleStep, true
	case "smaller":
		return cur / scaleStep, true
	}
	if n, ok := namedSizes[v]; ok {
		s := base
		for ; n > 0; n-- {
			s *= scaleStep
		}
		for ; n < 0; n++ {
			s /= scaleStep
		}
		return s, true
	}
	if p, ok := strings.CutSuffix(v, "pt"); ok {
		f, err := strconv.ParseFloat(p, 64)
		return f, err == nil && f > 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return float64(n) / pangoScale, true
}

// parseAlpha reads "50%" or a value in 1..65535.
func parseAlpha(v string) (float64, bool) {
	if p, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 || f > 100 {
			return 0, false
		}
		return f / 100, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 65535 {
		return 0, false
	}
	return float64(n) / 65535, true
}

// ParseColor reads "#rgb", "#rrggbb", "#rrggbbaa", "#rrrrggggbbbb" or an
// SVG color name.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		var digits, n int
		switch len(hex) {
		case 3:
			digits, n = 1, 3
		case 6:
			digits, n = 2, 3
		case 8:
			digits, n = 2, 4
		case 12:
			digits, n = 4, 3
		default:
			return Color{}, fmt.Errorf("%w: color %q", ErrBadValue, s)
		}
		ch := [4]float64{1, 1, 1, 1}
		for i := 0; i < n; i++ {
			v, err := strconv.ParseUint(hex[i*digits:(i+1)*digits], 16, 32)
			if err != nil {
				return Color{}, fmt.Errorf("%w: color %q", ErrBadValue, s)
			}
			full := uint64(1)<<(4*digits) - 1
			ch[i] = float64(v) / float64(full)
		}
		return Color{ch[0], ch[1], ch[2], ch[3]}, nil
	}
	c, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return Color{}, fmt.Errorf("%w: color %q", ErrBadValue, s)
	}
	return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}, nil
}
