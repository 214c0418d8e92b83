package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/fontscan"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"

	"github.com/fxarena/arena/effect"
)

// ErrNoFonts is returned when a catalog has no face to offer.
var ErrNoFonts = errors.New("fonts: no fonts available")

// DefaultFamily is the built-in family used when a requested family is
// unknown.
const DefaultFamily = "Go"

// Face is one entry of the catalog.
type Face struct {
	Family  string
	Style   Style
	Weight  Weight
	Stretch Stretch

	// Path is the font file, empty for built-in faces.
	Path string
	// Index selects the face inside a font collection.
	Index int

	file    string
	builtin []byte
}

func (f Face) key() string {
	return f.file + "#" + strconv.Itoa(f.Index)
}

func (f Face) data() ([]byte, error) {
	if f.builtin != nil {
		return f.builtin, nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	return data, nil
}

var builtinTTFs = [][]byte{
	goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF,
	gomedium.TTF, gomediumitalic.TTF,
	gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF,
	gosmallcaps.TTF, gosmallcapsitalic.TTF,
}

var fontExtensions = map[string]bool{".ttf": true, ".otf": true, ".ttc": true, ".otc": true}

// Option configures a Catalog.
type Option func(*config)

type config struct {
	system bool
	dirs   []string
	files  []string
}

// WithSystemFonts also scans the platform font directories.
func WithSystemFonts(enabled bool) Option {
	return func(c *config) { c.system = enabled }
}

// WithDirs adds font directories, scanned recursively.
func WithDirs(dirs ...string) Option {
	return func(c *config) { c.dirs = append(c.dirs, dirs...) }
}

// WithFiles adds individual font files.
func WithFiles(files ...string) Option {
	return func(c *config) { c.files = append(c.files, files...) }
}

// Catalog lists the available font faces grouped by family and loads
// them on demand. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	faces   []Face
	seen    map[string]bool
	sources map[string]*text.FontSource

	// fontscan.FontMap is not safe for concurrent use; mapMu guards it
	// and the files registered with it.
	mapMu  sync.Mutex
	fm     *fontscan.FontMap
	mapped map[string]bool
	byLoc  map[fontscan.Location]Face
}

// New builds a catalog. Built-in Go fonts are always present.
func New(opts ...Option) *Catalog {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Catalog{
		seen:    make(map[string]bool),
		sources: make(map[string]*text.FontSource),
		fm:      fontscan.NewFontMap(scanLogger{}),
		mapped:  make(map[string]bool),
		byLoc:   make(map[fontscan.Location]Face),
	}
	for i, ttf := range builtinTTFs {
		if err := c.addData("builtin:"+strconv.Itoa(i), ttf); err != nil {
			effect.Logger().Debug("fonts: built-in font skipped", "err", err)
		}
	}
	if cfg.system {
		dirs, err := fontscan.DefaultFontDirectories(scanLogger{})
		if err != nil {
			effect.Logger().Debug("fonts: no system font directories", "err", err)
		}
		for _, d := range dirs {
			_ = c.AddDir(d)
		}
	}
	for _, d := range cfg.dirs {
		_ = c.AddDir(d)
	}
	for _, f := range cfg.files {
		_ = c.AddFile(f)
	}
	effect.Logger().Info("fonts: catalog ready", "faces", c.Len())
	return c
}

// scanLogger routes fontscan diagnostics to the debug log.
type scanLogger struct{}

func (scanLogger) Printf(format string, args ...any) {
	effect.Logger().Debug("fonts: " + fmt.Sprintf(format, args...))
}

// AddFile adds the faces stored in a TrueType or OpenType file or
// collection.
func (c *Catalog) AddFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fonts: %w", err)
	}
	defer f.Close()

	faces, err := describe(f)
	if err != nil {
		effect.Logger().Debug("fonts: unparsable font skipped", "path", path, "err", err)
		return fmt.Errorf("fonts: parse %s: %w", path, err)
	}
	for _, face := range faces {
		face.Path = path
		face.file = path
		c.add(face)
	}
	return nil
}

// AddDir adds every font file below dir. Files that cannot be parsed
// are skipped.
func (c *Catalog) AddDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			effect.Logger().Debug("fonts: walk error", "path", path, "err", err)
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !fontExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		_ = c.AddFile(path)
		return nil
	})
}

// AddPath adds a file, or every font below a directory.
func (c *Catalog) AddPath(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("fonts: %w", err)
	}
	if st.IsDir() {
		return c.AddDir(path)
	}
	return c.AddFile(path)
}

func (c *Catalog) addData(file string, data []byte) error {
	faces, err := describe(bytes.NewReader(data))
	if err != nil {
		return err
	}
	for _, face := range faces {
		face.file = file
		face.builtin = data
		c.add(face)
	}
	return nil
}

func (c *Catalog) add(face Face) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := face.key()
	if c.seen[k] {
		return
	}
	c.seen[k] = true
	c.faces = append(c.faces, face)
}

// describe reads the family and aspect of every face of a font file.
// The aspect comes from the OS/2 table, falling back to the style name.
func describe(r font.Resource) ([]Face, error) {
	loaders, err := ot.NewLoaders(r)
	if err != nil {
		return nil, err
	}
	var (
		faces []Face
		buf   []byte
		desc  font.Description
	)
	for i, ld := range loaders {
		desc, buf = font.Describe(ld, buf)
		if desc.Family == "" {
			continue
		}
		style, weight, stretch := fromAspect(desc.Aspect)
		faces = append(faces, Face{Family: desc.Family, Style: style, Weight: weight, Stretch: stretch, Index: i})
	}
	if len(faces) == 0 {
		return nil, errors.New("no family name")
	}
	return faces, nil
}

// Len returns the number of faces.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.faces)
}

// Families returns the sorted, unique family names.
func (c *Catalog) Families() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.faces))
	for _, f := range c.faces {
		names = append(names, f.Family)
	}
	c.mu.RUnlock()
	slices.Sort(names)
	return slices.Compact(names)
}

// Faces returns the faces of a family, matched case-insensitively.
func (c *Catalog) Faces(family string) []Face {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Face
	for _, f := range c.faces {
		if strings.EqualFold(f.Family, family) {
			out = append(out, f)
		}
	}
	return out
}

// HasFamily reports whether the catalog knows family.
func (c *Catalog) HasFamily(family string) bool {
	return len(c.Faces(family)) > 0
}

// Menu returns the family menu entries. Hosts with cascading menus get
// entries grouped by their first letter ("A/Arial").
func (c *Catalog) Menu(properMenu bool) []string {
	families := c.Families()
	if !properMenu {
		return families
	}
	out := make([]string, len(families))
	for i, f := range families {
		r := []rune(f)
		out[i] = string(r[0]) + "/" + f
	}
	return out
}

// DefaultIndex returns the menu index of preferred, else of alternate,
// else 0.
func (c *Catalog) DefaultIndex(preferred, alternate string) int {
	families := c.Families()
	if i := slices.Index(families, preferred); i >= 0 {
		return i
	}
	if i := slices.Index(families, alternate); i >= 0 {
		return i
	}
	return 0
}

// StripMenuPrefix removes the "A/" grouping prefix of cascading menus.
func StripMenuPrefix(name string) string {
	if i := strings.IndexByte(name, '/'); i > 0 && i <= 4 {
		return name[i+1:]
	}
	return name
}

// Match picks the face of d.Family closest to d with the CSS font
// matching rules of fontscan. Unknown families fall back to
// DefaultFamily.
func (c *Catalog) Match(d Description) (Face, error) {
	faces := c.Faces(d.Family)
	if len(faces) == 0 {
		if d.Family != "" {
			effect.Logger().Warn("fonts: unknown family, using default", "family", d.Family, "default", DefaultFamily)
		}
		faces = c.Faces(DefaultFamily)
	}
	if len(faces) == 0 {
		c.mu.RLock()
		faces = slices.Clone(c.faces)
		c.mu.RUnlock()
	}
	if len(faces) == 0 {
		return Face{}, ErrNoFonts
	}
	family := faces[0].Family

	c.mapMu.Lock()
	defer c.mapMu.Unlock()
	for _, f := range faces {
		if err := c.register(f); err != nil {
			effect.Logger().Debug("fonts: face not indexed", "family", f.Family, "path", f.Path, "err", err)
		}
	}
	c.fm.SetQuery(fontscan.Query{Families: []string{family}, Aspect: toAspect(d)})
	resolved := c.fm.ResolveFace(' ')
	if resolved == nil {
		return faces[0], nil
	}
	best, ok := c.byLoc[c.fm.FontLocation(resolved.Font)]
	if !ok || !strings.EqualFold(best.Family, family) {
		return faces[0], nil
	}
	return best, nil
}

// register adds the file holding f to the font map once. c.mapMu must be
// held.
func (c *Catalog) register(f Face) error {
	if c.mapped[f.file] {
		return nil
	}
	c.mapped[f.file] = true
	data, err := f.data()
	if err != nil {
		return err
	}
	if err := c.fm.AddFont(bytes.NewReader(data), f.file, ""); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.faces {
		if g.file == f.file {
			c.byLoc[fontscan.Location{File: f.file, Index: uint16(g.Index)}] = g
		}
	}
	return nil
}

// toAspect converts the style, weight and stretch of d for fontscan.
// Oblique requests match italic faces.
func toAspect(d Description) font.Aspect {
	a := font.Aspect{Style: font.StyleNormal, Weight: font.Weight(d.Weight), Stretch: stretchFactors[MenuStretch(int(d.Stretch))]}
	if d.Style != StyleNormal {
		a.Style = font.StyleItalic
	}
	if d.Weight == 0 {
		a.Weight = font.WeightNormal
	}
	return a
}

func fromAspect(a font.Aspect) (Style, Weight, Stretch) {
	style := StyleNormal
	if a.Style == font.StyleItalic {
		style = StyleItalic
	}
	stretch := StretchNormal
	for i, f := range stretchFactors {
		if math.Abs(float64(f-a.Stretch)) < math.Abs(float64(stretchFactors[stretch]-a.Stretch)) {
			stretch = Stretch(i)
		}
	}
	return style, Weight(math.Round(float64(a.Weight))), stretch
}

// stretchFactors are the widths of the Stretch values relative to normal.
var stretchFactors = []font.Stretch{
	font.StretchUltraCondensed, font.StretchExtraCondensed, font.StretchCondensed,
	font.StretchSemiCondensed, font.StretchNormal, font.StretchSemiExpanded,
	font.StretchExpanded, font.StretchExtraExpanded, font.StretchUltraExpanded,
}

// Resolve returns a loaded font source for d. Sources are cached.
func (c *Catalog) Resolve(d Description) (*text.FontSource, error) {
	face, err := c.Match(d)
	if err != nil {
		return nil, err
	}
	return c.Source(face)
}

// Source loads face, reusing a cached source when possible.
func (c *Catalog) Source(face Face) (*text.FontSource, error) {
	k := face.key()
	c.mu.RLock()
	src, ok := c.sources[k]
	c.mu.RUnlock()
	if ok {
		return src, nil
	}

	data, err := face.data()
	if err != nil {
		return nil, err
	}
	src, err = text.NewFontSource(data, text.WithCollectionIndex(face.Index))
	if err != nil {
		return nil, fmt.Errorf("fonts: load %s: %w", face.Family, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.sources[k]; ok {
		return prev, nil
	}
	c.sources[k] = src
	return src, nil
}
