// Package readpdf is a reader effect that rasterizes one page of a PDF
// document at a chosen resolution.
package readpdf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/reader"
	"github.com/fxarena/arena/internal/pdfraster"
	"github.com/fxarena/arena/internal/pixel"
)

const (
	PluginID           = "fr.inria.openfx.ReadPDF"
	PluginVersionMajor = 1
	PluginVersionMinor = 1

	pluginName = "ReadPDF"
	evaluation = 50

	// pointsPerInch is the PDF user space unit.
	pointsPerInch = 72.0
)

// Parameter names.
const (
	ParamDPI  = "dpi"
	ParamPage = "page"
)

// Messages shown on failure.
const (
	msgReadPDF  = "Failed to read PDF"
	msgReadPage = "Failed to read page"
	msgMismatch = "Image don't match RenderWindow"
	msgRender   = "Render failed"
)

// Factory creates ReadPDF instances.
type Factory struct{}

func (Factory) Identifier() string          { return PluginID }
func (Factory) Version() (major, minor int) { return PluginVersionMajor, PluginVersionMinor }
func (Factory) Load() error                 { return nil }

func (Factory) Describe(d *effect.Descriptor) {
	reader.Describe(d, []string{"pdf"}, evaluation)
	d.SetLabel(pluginName)
	d.SetDescription("Read PDF documents.")
}

func (Factory) DescribeInContext(d *effect.Descriptor, ctx effect.Context, host effect.HostDescription) error {
	page := reader.DescribeInContext(d)

	dpi := d.DefineDoubleParam(ParamDPI)
	dpi.SetLabel("DPI")
	dpi.SetHint("Dots-per-inch (150 is default)")
	dpi.SetRange(1, 10000)
	dpi.SetDisplayRange(1, 500)
	dpi.SetDefault(150)
	dpi.SetAnimates(false)
	page.AddChild(dpi)

	pg := d.DefineChoiceParam(ParamPage)
	pg.SetLabel("Page")
	pg.SetHint("Document page")
	pg.AppendOption("Default")
	pg.SetLayoutHint(effect.LayoutHintDivider)
	page.AddChild(pg)
	return nil
}

func (Factory) CreateInstance(h *effect.Handle, ctx effect.Context) (effect.Instance, error) {
	return reader.New(h, &decoder{h: h}), nil
}

// decoder keeps the last opened document, keyed by path and
// modification time.
type decoder struct {
	h *effect.Handle

	mu    sync.Mutex
	path  string
	mtime time.Time
	doc   *pdfraster.Document
}

func (d *decoder) document(filename string) (*pdfraster.Document, error) {
	st, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc != nil && d.path == filename && d.mtime.Equal(st.ModTime()) {
		return d.doc, nil
	}
	doc, err := pdfraster.OpenFile(context.Background(), filename)
	if err != nil {
		return nil, err
	}
	d.path, d.mtime, d.doc = filename, st.ModTime(), doc
	effect.Logger().Debug("readpdf: opened", "file", filename, "pages", doc.NumPages())
	return doc, nil
}

// pixelSize is the rendered size of page at dpi.
func pixelSize(doc *pdfraster.Document, page int, dpi float64) (w, h int, err error) {
	pw, ph, err := doc.PageSize(page)
	if err != nil {
		return 0, 0, err
	}
	return int(math.Floor(dpi * pw / pointsPerInch)), int(math.Floor(dpi * ph / pointsPerInch)), nil
}

func (d *decoder) Decode(ctx context.Context, filename string, t float64, window effect.RectI, dst *effect.Image) error {
	dpi := d.h.DoubleParam(ParamDPI).ValueAtTime(t)
	page := d.h.ChoiceParam(ParamPage).ValueAtTime(t)

	doc, err := d.document(filename)
	if err != nil {
		return d.h.Failf(effect.StatErrFormat, err, msgReadPDF)
	}
	w, h, err := pixelSize(doc, page, dpi)
	if err != nil {
		return d.h.Failf(effect.StatErrFormat, err, msgReadPage)
	}
	if w != window.Width() || h != window.Height() {
		return d.h.Fail(effect.StatErrFormat, msgMismatch)
	}
	img, err := pdfraster.Render(ctx, doc, page, dpi)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return d.h.Failf(effect.StatErrFormat, err, msgRender)
	}
	buf := pixel.FromRGBA(img)
	// the page is flattened on white, so every pixel is opaque
	buf.Premultiplied = false
	return pixel.ToHost(buf, dst, window)
}

func (d *decoder) FrameBounds(filename string, t float64) (effect.RectI, float64, error) {
	dpi := d.h.DoubleParam(ParamDPI).ValueAtTime(t)
	page := d.h.ChoiceParam(ParamPage).ValueAtTime(t)
	doc, err := d.document(filename)
	if err != nil {
		return effect.RectI{}, 0, d.h.Failf(effect.StatErrFormat, err, msgReadPDF)
	}
	w, h, err := pixelSize(doc, page, dpi)
	if err != nil {
		return effect.RectI{}, 0, d.h.Failf(effect.StatErrFormat, err, msgReadPage)
	}
	if w <= 0 || h <= 0 {
		return effect.RectI{}, 0, fmt.Errorf("readpdf: page %d is empty at %g dpi", page, dpi)
	}
	return effect.RectI{X2: w, Y2: h}, 1, nil
}

func (d *decoder) InputFileChanged(filename string) (effect.PreMultiplication, effect.PixelComponents, error) {
	if err := d.listPages(filename); err != nil {
		return 0, 0, err
	}
	return effect.PreMultUnPreMultiplied, effect.PixelComponentRGBA, nil
}

func (d *decoder) RestoreState(filename string) error {
	return d.listPages(filename)
}

// listPages regenerates the page menu as "Page 0" .. "Page n-1".
func (d *decoder) listPages(filename string) error {
	doc, err := d.document(filename)
	if err != nil {
		return d.h.Failf(effect.StatErrFormat, err, msgReadPDF)
	}
	p := d.h.ChoiceParam(ParamPage)
	p.ResetOptions()
	for i := range max(doc.NumPages(), 1) {
		p.AppendOption(fmt.Sprintf("Page %d", i))
	}
	if p.Value() >= p.NumOptions() {
		p.SetValue(0)
	}
	return nil
}
