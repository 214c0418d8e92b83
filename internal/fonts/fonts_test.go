package fonts

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseDescription(t *testing.T) {
	tests := []struct {
		in   string
		want Description
	}{
		{"DejaVu Sans bold italic 64", Description{"DejaVu Sans", StyleItalic, WeightBold, StretchNormal, 64}},
		{"Go normal 12", Description{"Go", StyleNormal, WeightNormal, StretchNormal, 12}},
		{"Go Mono Semi-Condensed Light 9.5", Description{"Go Mono", StyleNormal, WeightLight, StretchSemiCondensed, 9.5}},
		{"Sans, Serif 20px", Description{"Sans", StyleNormal, WeightNormal, StretchNormal, 20}},
		{"Arial", Description{"Arial", StyleNormal, WeightNormal, StretchNormal, 0}},
		{"", Description{"", StyleNormal, WeightNormal, StretchNormal, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDescription(tt.in); got != tt.want {
				t.Errorf("ParseDescription(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDescriptionStringRoundTrip(t *testing.T) {
	d := Description{"Go Mono", StyleOblique, WeightSemiBold, StretchExpanded, 18}
	if got := ParseDescription(d.String()); got != d {
		t.Errorf("ParseDescription(%q) = %+v, want %+v", d.String(), got, d)
	}
}

func TestAspectFromOS2(t *testing.T) {
	c := New()
	tests := []struct {
		family string
		style  Style
		weight Weight
	}{
		{"Go Medium", StyleNormal, WeightMedium},
		{"Go Medium", StyleItalic, WeightMedium},
		{"Go", StyleNormal, WeightNormal},
		{"Go", StyleItalic, WeightBold},
		{"Go Mono", StyleNormal, WeightBold},
	}
	for _, tt := range tests {
		found := false
		for _, f := range c.Faces(tt.family) {
			if f.Style == tt.style && f.Weight == tt.weight && f.Stretch == StretchNormal {
				found = true
			}
		}
		if !found {
			t.Errorf("Faces(%q) = %+v, missing %v %v", tt.family, c.Faces(tt.family), tt.style, tt.weight)
		}
	}
	for _, f := range c.Faces("Go Medium") {
		if f.Weight != WeightMedium {
			t.Errorf("Go Medium face has weight %d, want %d", f.Weight, WeightMedium)
		}
	}

	f, err := c.Match(Description{Family: "Go Medium", Style: StyleOblique, Stretch: StretchNormal})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if f.Family != "Go Medium" || f.Style != StyleItalic || f.Weight != WeightMedium {
		t.Errorf("Match(Go Medium oblique) = %+v", f)
	}
}

// collection packs fonts into a TrueType collection, shifting the table
// offsets of each font by its position in the file.
func collection(fonts ...[]byte) []byte {
	header := 12 + 4*len(fonts)
	out := make([]byte, header)
	copy(out, "ttcf")
	binary.BigEndian.PutUint32(out[4:], 0x00010000)
	binary.BigEndian.PutUint32(out[8:], uint32(len(fonts)))
	for i, f := range fonts {
		for len(out)%4 != 0 {
			out = append(out, 0)
		}
		start := len(out)
		binary.BigEndian.PutUint32(out[12+4*i:], uint32(start))
		out = append(out, f...)
		numTables := int(binary.BigEndian.Uint16(f[4:]))
		for k := 0; k < numTables; k++ {
			at := start + 12 + 16*k + 8
			off := binary.BigEndian.Uint32(out[at:])
			binary.BigEndian.PutUint32(out[at:], off+uint32(start))
		}
	}
	return out
}

func TestCollection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mono.ttc")
	if err := os.WriteFile(path, collection(gomono.TTF, gomonobold.TTF), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	before := c.Len()
	if err := c.AddFile(path); err != nil {
		t.Fatalf("AddFile(ttc): %v", err)
	}
	if got := c.Len(); got != before+2 {
		t.Fatalf("Len() = %d, want %d", got, before+2)
	}

	var bold *Face
	for _, f := range c.Faces("Go Mono") {
		if f.Path != path {
			continue
		}
		switch f.Index {
		case 0:
			if f.Weight != WeightNormal {
				t.Errorf("face 0 weight = %d, want %d", f.Weight, WeightNormal)
			}
		case 1:
			if f.Weight != WeightBold {
				t.Errorf("face 1 weight = %d, want %d", f.Weight, WeightBold)
			}
			bold = &f
		}
	}
	if bold == nil {
		t.Fatal("collection face 1 missing")
	}
	if _, err := c.Source(*bold); err != nil {
		t.Errorf("Source(collection face 1): %v", err)
	}

	scanned := New(WithDirs(dir))
	if got := scanned.Len(); got != before+2 {
		t.Errorf("WithDirs Len() = %d, want %d", got, before+2)
	}
}

func TestMenuTables(t *testing.T) {
	if len(WeightMenu) != 12 || len(WeightLabels) != 12 || len(StretchLabels) != 9 {
		t.Fatal("menu tables have the wrong length")
	}
	if MenuWeight(5) != WeightNormal || MenuWeight(8) != WeightBold || MenuWeight(99) != WeightNormal {
		t.Error("MenuWeight does not follow the menu order")
	}
	if MenuStretch(4) != StretchNormal || MenuStretch(0) != StretchUltraCondensed || MenuStretch(-1) != StretchNormal {
		t.Error("MenuStretch does not follow the menu order")
	}
}

func TestStripMenuPrefix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"A/Arial", "Arial"},
		{"Arial", "Arial"},
		{"É/Écran", "Écran"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripMenuPrefix(tt.in); got != tt.want {
			t.Errorf("StripMenuPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuiltinCatalog(t *testing.T) {
	c := New()
	families := c.Families()
	for _, want := range []string{"Go", "Go Mono"} {
		if !slices.Contains(families, want) {
			t.Errorf("Families() = %v, missing %q", families, want)
		}
	}
	if !slices.IsSorted(families) {
		t.Errorf("Families() = %v, not sorted", families)
	}

	menu := c.Menu(true)
	if len(menu) != len(families) {
		t.Fatalf("Menu(true) has %d entries, want %d", len(menu), len(families))
	}
	i := slices.Index(families, "Go")
	if menu[i] != "G/Go" {
		t.Errorf("Menu(true)[%d] = %q, want G/Go", i, menu[i])
	}
	if got := c.Menu(false); !slices.Equal(got, families) {
		t.Errorf("Menu(false) = %v, want %v", got, families)
	}

	if got := c.DefaultIndex("Arial", "Go Mono"); families[got] != "Go Mono" {
		t.Errorf("DefaultIndex fell back to %q, want Go Mono", families[got])
	}
	if got := c.DefaultIndex("Nope", "Neither"); got != 0 {
		t.Errorf("DefaultIndex(unknown) = %d, want 0", got)
	}
}

func TestMatch(t *testing.T) {
	c := New()
	tests := []struct {
		desc   string
		family string
		style  Style
		weight Weight
	}{
		{"Go bold italic 12", "Go", StyleItalic, WeightBold},
		{"Go italic 12", "Go", StyleItalic, WeightNormal},
		{"Go Mono Heavy 12", "Go Mono", StyleNormal, WeightBold},
		{"Go Light 12", "Go", StyleNormal, WeightNormal},
		{"Nonexistent Family 12", DefaultFamily, StyleNormal, WeightNormal},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			f, err := c.Match(ParseDescription(tt.desc))
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if f.Family != tt.family || f.Style != tt.style || f.Weight != tt.weight {
				t.Errorf("Match(%q) = %+v", tt.desc, f)
			}
		})
	}
}

func TestResolveCachesSources(t *testing.T) {
	c := New()
	a, err := c.Resolve(ParseDescription("Go 20"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, err := c.Resolve(ParseDescription("Go 40"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a != b {
		t.Error("Resolve loaded the same face twice")
	}
}

func TestAddDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "copy.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.otf"), []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	before := c.Len()
	if err := c.AddPath(dir); err != nil {
		t.Fatalf("AddPath: %v", err)
	}
	if got := c.Len(); got != before+1 {
		t.Errorf("Len() = %d after scan, want %d", got, before+1)
	}
	if err := c.AddFile(filepath.Join(dir, "missing.ttf")); err == nil {
		t.Error("AddFile(missing) succeeded")
	}
}

func TestMergeDescription(t *testing.T) {
	base := Description{"Go", StyleNormal, WeightNormal, StretchNormal, 24}
	tests := []struct {
		in   string
		want Description
	}{
		{"bold", Description{"Go", StyleNormal, WeightBold, StretchNormal, 24}},
		{"Go Mono 10", Description{"Go Mono", StyleNormal, WeightNormal, StretchNormal, 10}},
		{"", base},
	}
	for _, tt := range tests {
		if got := MergeDescription(base, tt.in); got != tt.want {
			t.Errorf("MergeDescription(base, %q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
