package readpdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/memhost"
	"github.com/fxarena/arena/effect/reader"
)

// writePDF writes a two page document: a 200x100 page with a red square
// and a 100x50 blank page.
func writePDF(t *testing.T) string {
	t.Helper()
	content := "1 0 0 rg 10 10 50 50 re f"
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 100] /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 100 50] >>",
	}
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func load(t *testing.T) *memhost.Effect {
	t.Helper()
	e, err := memhost.New().Load(Factory{}, effect.ContextReader)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return e
}

func TestDescribe(t *testing.T) {
	e := load(t)
	d := e.Descriptor()
	if d.Label() != "ReadPDF" || d.Grouping() != "Image/Readers" {
		t.Errorf("label %q grouping %q", d.Label(), d.Grouping())
	}
	if d.Evaluation() != 50 {
		t.Errorf("Evaluation() = %v, want 50", d.Evaluation())
	}
	if got := e.Params().DoubleParam(ParamDPI).Value(); got != 150 {
		t.Errorf("dpi default = %v, want 150", got)
	}
	if got := e.Params().ChoiceParam(ParamPage).Options(); len(got) != 1 || got[0] != "Default" {
		t.Errorf("page options = %v, want [Default]", got)
	}
}

func TestPageMenu(t *testing.T) {
	e := load(t)
	if err := e.SetParam(reader.ParamFilename, writePDF(t)); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	got := e.Params().ChoiceParam(ParamPage).Options()
	if len(got) != 2 || got[0] != "Page 0" || got[1] != "Page 1" {
		t.Errorf("page options = %v, want [Page 0 Page 1]", got)
	}
	if p := e.Preferences(); p.OutputPremult != effect.PreMultUnPreMultiplied {
		t.Errorf("OutputPremult = %s, want UnPreMultiplied", p.OutputPremult)
	}
}

func TestRegionOfDefinition(t *testing.T) {
	tests := []struct {
		dpi  string
		page string
		want effect.RectD
	}{
		{"72", "0", effect.RectD{X2: 200, Y2: 100}},
		{"150", "0", effect.RectD{X2: 416, Y2: 208}},
		{"72", "1", effect.RectD{X2: 100, Y2: 50}},
		{"144", "Page 1", effect.RectD{X2: 200, Y2: 100}},
	}
	e := load(t)
	if err := e.SetParam(reader.ParamFilename, writePDF(t)); err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		if err := e.SetParam(ParamDPI, tt.dpi); err != nil {
			t.Fatal(err)
		}
		if err := e.SetParam(ParamPage, tt.page); err != nil {
			t.Fatal(err)
		}
		got, err := e.RegionOfDefinition(0)
		if err != nil {
			t.Fatalf("RegionOfDefinition: %v", err)
		}
		if got != tt.want {
			t.Errorf("RoD(dpi %s, page %s) = %v, want %v", tt.dpi, tt.page, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	e := load(t)
	if err := e.SetParam(reader.ParamFilename, writePDF(t)); err != nil {
		t.Fatal(err)
	}
	if err := e.SetParam(ParamDPI, "72"); err != nil {
		t.Fatal(err)
	}
	img, err := e.Render(context.Background(), 0, effect.RectI{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if want := (effect.RectI{X2: 200, Y2: 100}); img.Bounds != want {
		t.Fatalf("Bounds = %v, want %v", img.Bounds, want)
	}
	// host rows run bottom-up, like PDF user space
	p := img.FloatPixel(35, 35)
	if p[0] < 0.9 || p[1] > 0.1 || p[2] > 0.1 || p[3] != 1 {
		t.Errorf("inside pixel = %v, want opaque red", p)
	}
	p = img.FloatPixel(150, 80)
	if p[0] != 1 || p[1] != 1 || p[2] != 1 || p[3] != 1 {
		t.Errorf("background pixel = %v, want opaque white", p)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Run("no filename", func(t *testing.T) {
		e := load(t)
		if _, err := e.Render(context.Background(), 0, effect.RectI{X2: 4, Y2: 4}); err == nil {
			t.Fatal("Render succeeded")
		}
		if msg, _ := e.Message(); msg.Text != "No filename" {
			t.Errorf("message = %q, want No filename", msg.Text)
		}
	})
	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.pdf")
		if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatal(err)
		}
		e := load(t)
		if err := e.SetParam(reader.ParamFilename, path); err == nil {
			t.Fatal("SetParam of a broken file succeeded")
		}
		if msg, _ := e.Message(); msg.Text != msgReadPDF {
			t.Errorf("message = %q, want %q", msg.Text, msgReadPDF)
		}
	})
	t.Run("window mismatch", func(t *testing.T) {
		e := load(t)
		if err := e.SetParam(reader.ParamFilename, writePDF(t)); err != nil {
			t.Fatal(err)
		}
		if err := e.SetParam(ParamDPI, "72"); err != nil {
			t.Fatal(err)
		}
		_, err := e.Render(context.Background(), 0, effect.RectI{X2: 50, Y2: 50})
		if effect.StatusOf(err) != effect.StatErrFormat {
			t.Errorf("status = %s, want ErrFormat", effect.StatusOf(err))
		}
		if msg, _ := e.Message(); msg.Text != msgMismatch {
			t.Errorf("message = %q, want %q", msg.Text, msgMismatch)
		}
	})
}

func TestDocumentCache(t *testing.T) {
	path := writePDF(t)
	d := &decoder{}
	a, err := d.document(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := d.document(path)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("second open did not reuse the cached document")
	}
}
