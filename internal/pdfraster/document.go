package pdfraster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/wudi/pdfkit/filters"
	"github.com/wudi/pdfkit/ir/raw"
	"github.com/wudi/pdfkit/parser"
)

var (
	// ErrParse wraps every failure to read a document.
	ErrParse = errors.New("pdfraster: cannot parse document")

	// ErrPageRange is returned for page indices outside the document.
	ErrPageRange = errors.New("pdfraster: page out of range")
)

// maxDepth bounds reference chains and page tree nesting.
const maxDepth = 32

// Box is a rectangle in default user space.
type Box struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent of b.
func (b Box) Width() float64 { return b.URX - b.LLX }

// Height returns the vertical extent of b.
func (b Box) Height() float64 { return b.URY - b.LLY }

// Page is one page of a document.
type Page struct {
	Index    int
	MediaBox Box
	// Rotate is the display rotation in degrees, one of 0, 90, 180, 270.
	Rotate int

	dict      *raw.DictObj
	resources *raw.DictObj
}

// Size returns the displayed page size in points, with Rotate applied.
func (p *Page) Size() (w, h float64) {
	w, h = p.MediaBox.Width(), p.MediaBox.Height()
	if p.Rotate == 90 || p.Rotate == 270 {
		w, h = h, w
	}
	return w, h
}

// Document is a parsed PDF file.
type Document struct {
	raw      *raw.Document
	pages    []*Page
	pipeline *filters.Pipeline

	mu     sync.Mutex
	fonts  map[*raw.DictObj]*font
	images map[*raw.StreamObj]*rasterImage
}

// Open parses a PDF document from r.
func Open(ctx context.Context, r io.ReaderAt) (*Document, error) {
	rd, err := parser.NewDocumentParser(parser.Config{}).Parse(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	d := &Document{
		raw: rd,
		pipeline: filters.NewPipeline([]filters.Decoder{
			filters.NewFlateDecoder(),
			filters.NewLZWDecoder(),
			filters.NewASCII85Decoder(),
			filters.NewASCIIHexDecoder(),
		}, filters.Limits{MaxDecompressedSize: 256 << 20}),
		fonts:  make(map[*raw.DictObj]*font),
		images: make(map[*raw.StreamObj]*rasterImage),
	}
	if err := d.loadPages(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return d, nil
}

// OpenFile reads and parses the PDF file at path.
func OpenFile(ctx context.Context, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return Open(ctx, bytes.NewReader(data))
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int { return len(d.pages) }

// Page returns page i, counted from zero.
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, i, len(d.pages))
	}
	return d.pages[i], nil
}

// PageSize returns the displayed size of page i in points.
func (d *Document) PageSize(i int) (w, h float64, err error) {
	p, err := d.Page(i)
	if err != nil {
		return 0, 0, err
	}
	w, h = p.Size()
	return w, h, nil
}

// inherited holds the page attributes passed down the page tree.
type inherited struct {
	resources *raw.DictObj
	mediaBox  *Box
	rotate    int
}

func (d *Document) loadPages() error {
	if d.raw.Trailer == nil {
		return errors.New("no trailer")
	}
	root := d.dictOf(d.get(d.raw.Trailer, "Root"))
	if root == nil {
		return errors.New("no document catalog")
	}
	tree := d.dictOf(root.KV["Pages"])
	if tree == nil {
		return errors.New("no page tree")
	}
	seen := make(map[*raw.DictObj]bool)
	return d.walkPages(tree, inherited{}, seen, 0)
}

func (d *Document) walkPages(node *raw.DictObj, inh inherited, seen map[*raw.DictObj]bool, depth int) error {
	if depth > maxDepth || seen[node] {
		return errors.New("page tree cycle")
	}
	seen[node] = true

	if r := d.dictOf(node.KV["Resources"]); r != nil {
		inh.resources = r
	}
	if b, ok := d.box(node.KV["MediaBox"]); ok {
		inh.mediaBox = &b
	}
	if n, ok := d.number(node.KV["Rotate"]); ok {
		inh.rotate = normalizeRotation(int(n))
	}

	if name, _ := d.name(node.KV["Type"]); name == "Page" || node.KV["Kids"] == nil {
		p := &Page{
			Index:     len(d.pages),
			MediaBox:  Box{0, 0, 612, 792},
			Rotate:    inh.rotate,
			dict:      node,
			resources: inh.resources,
		}
		if inh.mediaBox != nil {
			p.MediaBox = *inh.mediaBox
		}
		d.pages = append(d.pages, p)
		return nil
	}

	kids := d.arrayOf(node.KV["Kids"])
	if kids == nil {
		return nil
	}
	for _, k := range kids.Items {
		kid := d.dictOf(k)
		if kid == nil {
			continue
		}
		if err := d.walkPages(kid, inh, seen, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func normalizeRotation(r int) int {
	r %= 360
	if r < 0 {
		r += 360
	}
	return r / 90 * 90
}

// resolve follows indirect references.
func (d *Document) resolve(o raw.Object) raw.Object {
	for i := 0; i < maxDepth; i++ {
		ref, ok := o.(raw.Reference)
		if !ok {
			return o
		}
		o = d.raw.Objects[ref.Ref()]
	}
	return nil
}

func (d *Document) get(dict raw.Dictionary, key string) raw.Object {
	if dict == nil {
		return nil
	}
	o, _ := dict.Get(raw.NameLiteral(key))
	return d.resolve(o)
}

func (d *Document) dictOf(o raw.Object) *raw.DictObj {
	switch v := d.resolve(o).(type) {
	case *raw.DictObj:
		return v
	case *raw.StreamObj:
		return v.Dict
	}
	return nil
}

func (d *Document) streamOf(o raw.Object) *raw.StreamObj {
	s, _ := d.resolve(o).(*raw.StreamObj)
	return s
}

func (d *Document) arrayOf(o raw.Object) *raw.ArrayObj {
	a, _ := d.resolve(o).(*raw.ArrayObj)
	return a
}

func (d *Document) number(o raw.Object) (float64, bool) {
	if n, ok := d.resolve(o).(raw.Number); ok {
		return n.Float(), true
	}
	return 0, false
}

func (d *Document) name(o raw.Object) (string, bool) {
	if n, ok := d.resolve(o).(raw.Name); ok {
		return n.Value(), true
	}
	return "", false
}

func (d *Document) numbers(o raw.Object) []float64 {
	a := d.arrayOf(o)
	if a == nil {
		return nil
	}
	out := make([]float64, 0, len(a.Items))
	for _, it := range a.Items {
		if n, ok := d.number(it); ok {
			out = append(out, n)
		}
	}
	return out
}

func (d *Document) box(o raw.Object) (Box, bool) {
	n := d.numbers(o)
	if len(n) < 4 {
		return Box{}, false
	}
	b := Box{min(n[0], n[2]), min(n[1], n[3]), max(n[0], n[2]), max(n[1], n[3])}
	return b, b.Width() > 0 && b.Height() > 0
}

// streamData decodes the filters of s that the pipeline knows. Image
// filters such as DCTDecode are returned in rest, undecoded.
func (d *Document) streamData(ctx context.Context, s *raw.StreamObj) (data []byte, rest []string, err error) {
	if s.Dict == nil {
		return s.Data, nil, nil
	}
	names, params := filters.ExtractFilters(s.Dict)
	return d.decode(ctx, s.Data, names, params)
}

func (d *Document) decode(ctx context.Context, data []byte, names []string, params []raw.Dictionary) ([]byte, []string, error) {
	n := 0
	for n < len(names) && !imageFilter(names[n]) {
		n++
	}
	if n == 0 {
		return data, names, nil
	}
	out, err := d.pipeline.Decode(ctx, data, names[:n], params)
	if err != nil {
		return nil, nil, err
	}
	return out, names[n:], nil
}

func imageFilter(name string) bool {
	switch name {
	case "DCTDecode", "JPXDecode", "CCITTFaxDecode", "JBIG2Decode":
		return true
	}
	return false
}

// pageContents returns the decoded content streams of p, concatenated.
func (d *Document) pageContents(ctx context.Context, p *Page) ([]byte, error) {
	var out []byte
	add := func(o raw.Object) error {
		s := d.streamOf(o)
		if s == nil {
			return nil
		}
		data, rest, err := d.streamData(ctx, s)
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			return fmt.Errorf("content stream filter %s", rest[0])
		}
		out = append(out, data...)
		out = append(out, '\n')
		return nil
	}
	c := d.resolve(p.dict.KV["Contents"])
	if a, ok := c.(*raw.ArrayObj); ok {
		for _, it := range a.Items {
			if err := add(it); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return out, add(c)
}
