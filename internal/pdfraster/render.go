package pdfraster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"github.com/fxarena/arena/effect"
)

// pageMatrix maps default user space of p to y-down device pixels at
// scale pixels per point, applying the page rotation.
func pageMatrix(p *Page, scale float64) gg.Matrix {
	b, s := p.MediaBox, scale
	switch p.Rotate {
	case 90:
		return gg.Matrix{A: 0, B: s, C: -s * b.LLY, D: s, E: 0, F: -s * b.LLX}
	case 180:
		return gg.Matrix{A: -s, B: 0, C: s * b.URX, D: 0, E: s, F: -s * b.LLY}
	case 270:
		return gg.Matrix{A: 0, B: -s, C: s * b.URY, D: -s, E: 0, F: s * b.URX}
	default:
		return gg.Matrix{A: s, B: 0, C: -s * b.LLX, D: 0, E: -s, F: s * b.URY}
	}
}

// RenderPage draws page i onto dc at scale device pixels per point. The
// page's top-left corner lands on the origin of the current transform of
// dc. Nothing is painted behind the page content.
func (d *Document) RenderPage(ctx context.Context, dc *gg.Context, i int, scale float64) error {
	p, err := d.Page(i)
	if err != nil {
		return err
	}
	data, err := d.pageContents(ctx, p)
	if err != nil {
		return fmt.Errorf("pdfraster: page %d: %w", i, err)
	}
	ops, err := lex(data)
	if err != nil {
		// draw what was read before the damage
		effect.Logger().Debug("pdfraster: content stream truncated", "page", i, "err", err)
	}

	dc.Push()
	defer dc.Pop()
	in := &interp{
		ctx:  ctx,
		doc:  d,
		dc:   dc,
		base: dc.GetTransform().Multiply(pageMatrix(p, scale)),
		gs:   newGState(gg.Identity()),
		res:  p.resources,
		tm:   gg.Identity(),
		tlm:  gg.Identity(),
	}
	in.syncMatrix()
	dc.ClearPath()
	err = in.run(ops)
	for len(in.saved) > 0 {
		in.restore()
	}
	return err
}

// Option configures Render.
type Option func(*renderOptions)

type renderOptions struct {
	background color.Color
}

// WithBackground sets the color composited under the page. nil keeps
// the page transparent where nothing is painted. The default is white.
func WithBackground(c color.Color) Option {
	return func(o *renderOptions) { o.background = c }
}

// Render rasterizes page i at dpi onto a white background. The image is
// floor(dpi*size/72) pixels on each side.
func Render(ctx context.Context, doc *Document, i int, dpi float64, opts ...Option) (*image.RGBA, error) {
	o := renderOptions{background: color.White}
	for _, opt := range opts {
		opt(&o)
	}
	pw, ph, err := doc.PageSize(i)
	if err != nil {
		return nil, err
	}
	w := int(math.Floor(dpi * pw / 72))
	h := int(math.Floor(dpi * ph / 72))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pdfraster: page %d renders to %dx%d pixels", i, w, h)
	}
	dc := gg.NewContext(w, h)
	defer dc.Close()
	if err := doc.RenderPage(ctx, dc, i, dpi/72); err != nil {
		return nil, err
	}
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("pdfraster: unexpected image type %T", dc.Image())
	}
	if o.background != nil {
		flatten(img, color.RGBAModel.Convert(o.background).(color.RGBA))
	}
	return img, nil
}

// flatten composites the premultiplied bg under the premultiplied
// pixels of img.
func flatten(img *image.RGBA, bg color.RGBA) {
	p := img.Pix
	for i := 0; i+3 < len(p); i += 4 {
		under := 255 - int(p[i+3])
		p[i] = uint8(min(255, int(p[i])+int(bg.R)*under/255))
		p[i+1] = uint8(min(255, int(p[i+1])+int(bg.G)*under/255))
		p[i+2] = uint8(min(255, int(p[i+2])+int(bg.B)*under/255))
		p[i+3] = uint8(min(255, int(p[i+3])+int(bg.A)*under/255))
	}
}
