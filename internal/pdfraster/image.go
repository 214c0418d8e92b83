package pdfraster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/gogpu/gg"
	"github.com/wudi/pdfkit/ir/raw"
	"github.com/wudi/pdfkit/ir/semantic"
	"golang.org/x/image/draw"
)

// ErrImageFilter reports an image compressed with a filter the renderer
// cannot decode.
var ErrImageFilter = errors.New("pdfraster: unsupported image filter")

// rasterImage is a decoded image XObject. Stencil masks keep coverage in
// the alpha channel and are painted with the fill color.
type rasterImage struct {
	img     *image.NRGBA
	stencil bool
}

// imageSpec describes encoded image samples.
type imageSpec struct {
	w, h    int
	bpc     int
	cs      *colorSpace
	stencil bool
	invert  bool
	data    []byte
	rest    []string
	smask   *rasterImage
}

// xobjectImage decodes an image XObject, caching the result.
func (d *Document) xobjectImage(ctx context.Context, s *raw.StreamObj, res *raw.DictObj) (*rasterImage, error) {
	d.mu.Lock()
	img, ok := d.images[s]
	d.mu.Unlock()
	if ok {
		return img, nil
	}
	if s.Dict == nil {
		return nil, errors.New("pdfraster: image without dictionary")
	}
	spec, err := d.imageSpec(ctx, s, res)
	if err != nil {
		return nil, err
	}
	img, err = spec.decode()
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.images[s] = img
	d.mu.Unlock()
	return img, nil
}

func (d *Document) imageSpec(ctx context.Context, s *raw.StreamObj, res *raw.DictObj) (imageSpec, error) {
	dict := s.Dict
	w, _ := d.number(dict.KV["Width"])
	h, _ := d.number(dict.KV["Height"])
	bpc, ok := d.number(dict.KV["BitsPerComponent"])
	if !ok {
		bpc = 8
	}
	spec := imageSpec{w: int(w), h: int(h), bpc: int(bpc)}
	if m, ok := d.resolve(dict.KV["ImageMask"]).(raw.Boolean); ok && m.Value() {
		spec.stencil, spec.bpc = true, 1
	} else {
		spec.cs = d.colorSpace(dict.KV["ColorSpace"], res)
	}
	if dec := d.numbers(dict.KV["Decode"]); len(dec) >= 2 && dec[0] > dec[1] {
		spec.invert = true
	}
	data, rest, err := d.streamData(ctx, s)
	if err != nil {
		return spec, err
	}
	spec.data, spec.rest = data, rest

	if sm := d.streamOf(dict.KV["SMask"]); sm != nil {
		mspec, err := d.imageSpec(ctx, sm, res)
		if err == nil {
			mspec.cs = deviceGray
			spec.smask, _ = mspec.decode()
		}
	}
	return spec, nil
}

// inlineImage decodes the payload of a BI operator.
func (d *Document) inlineImage(ctx context.Context, op semantic.InlineImageOperand, res *raw.DictObj) (*rasterImage, error) {
	v := op.Image.Values
	spec := imageSpec{w: int(num(v["Width"])), h: int(num(v["Height"])), bpc: 8}
	if b, ok := v["BitsPerComponent"]; ok {
		spec.bpc = int(num(b))
	}
	if nameArg(v["ImageMask"]) == "true" {
		spec.stencil, spec.bpc = true, 1
	} else {
		spec.cs = d.inlineColorSpace(v["ColorSpace"], res)
	}
	if dec, ok := v["Decode"].(semantic.ArrayOperand); ok {
		if n := nums(dec.Values); len(n) >= 2 && n[0] > n[1] {
			spec.invert = true
		}
	}
	var names []string
	switch f := v["Filter"].(type) {
	case semantic.NameOperand:
		names = []string{f.Value}
	case semantic.ArrayOperand:
		for _, it := range f.Values {
			names = append(names, nameArg(it))
		}
	}
	data, rest, err := d.decode(ctx, op.Data, names, nil)
	if err != nil {
		return nil, err
	}
	spec.data, spec.rest = data, rest
	return spec.decode()
}

func (s imageSpec) decode() (*rasterImage, error) {
	if s.w <= 0 || s.h <= 0 {
		return nil, fmt.Errorf("pdfraster: image size %dx%d", s.w, s.h)
	}
	var out *rasterImage
	switch {
	case len(s.rest) == 1 && s.rest[0] == "DCTDecode":
		src, err := jpeg.Decode(bytes.NewReader(s.data))
		if err != nil {
			return nil, fmt.Errorf("pdfraster: %w", err)
		}
		dst := image.NewNRGBA(src.Bounds().Sub(src.Bounds().Min))
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		out = &rasterImage{img: dst}
	case len(s.rest) > 0:
		return nil, fmt.Errorf("%w: %s", ErrImageFilter, s.rest[0])
	default:
		out = s.samples()
	}
	if s.smask != nil {
		applySoftMask(out.img, s.smask.img)
	}
	return out, nil
}

// samples unpacks raw component samples of 1 to 16 bits.
func (s imageSpec) samples() *rasterImage {
	comps := 1
	if s.cs != nil && s.cs.base == nil && s.cs.comps > 0 {
		comps = s.cs.comps
	}
	bpc := s.bpc
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		bpc = 8
	}
	maxv := float64(int(1)<<bpc - 1)
	stride := (s.w*comps*bpc + 7) / 8
	img := image.NewNRGBA(image.Rect(0, 0, s.w, s.h))
	vals := make([]float64, comps)
	for y := 0; y < s.h; y++ {
		row := s.data[min(len(s.data), y*stride):min(len(s.data), (y+1)*stride)]
		for x := 0; x < s.w; x++ {
			for c := 0; c < comps; c++ {
				vals[c] = float64(sample(row, (x*comps+c)*bpc, bpc))
			}
			o := img.PixOffset(x, y)
			if s.stencil {
				painted := vals[0] == 0
				if s.invert {
					painted = !painted
				}
				if painted {
					img.Pix[o+3] = 255
				}
				continue
			}
			var col gg.RGBA
			if s.cs.base != nil {
				col = s.cs.index(int(vals[0]))
			} else {
				for c := range vals {
					vals[c] /= maxv
					if s.invert {
						vals[c] = 1 - vals[c]
					}
				}
				col = s.cs.rgb(vals)
			}
			img.Pix[o] = uint8(col.R*255 + 0.5)
			img.Pix[o+1] = uint8(col.G*255 + 0.5)
			img.Pix[o+2] = uint8(col.B*255 + 0.5)
			img.Pix[o+3] = 255
		}
	}
	return &rasterImage{img: img, stencil: s.stencil}
}

// sample reads a bits-wide value starting at bit offset off.
func sample(row []byte, off, bits int) int {
	if bits == 16 {
		i := off / 8
		if i+1 >= len(row) {
			return 0
		}
		return int(row[i])<<8 | int(row[i+1])
	}
	i := off / 8
	if i >= len(row) {
		return 0
	}
	shift := 8 - bits - off%8
	return int(row[i]>>shift) & (1<<bits - 1)
}

// applySoftMask scales the alpha of img by the gray levels of mask,
// sampled nearest-neighbor when sizes differ.
func applySoftMask(img, mask *image.NRGBA) {
	b, mb := img.Bounds(), mask.Bounds()
	for y := 0; y < b.Dy(); y++ {
		my := y * mb.Dy() / b.Dy()
		for x := 0; x < b.Dx(); x++ {
			mx := x * mb.Dx() / b.Dx()
			o := img.PixOffset(x, y)
			a := mask.Pix[mask.PixOffset(mx, my)]
			img.Pix[o+3] = uint8(int(img.Pix[o+3]) * int(a) / 255)
		}
	}
}

// imagePattern samples an image placed on the unit square of user space.
// It maps device pixels back through the inverse transform.
type imagePattern struct {
	img     *image.NRGBA
	inv     gg.Matrix
	alpha   float64
	stencil gg.RGBA
	isMask  bool
}

func (p *imagePattern) ColorAt(x, y float64) gg.RGBA {
	u := p.inv.TransformPoint(gg.Pt(x, y))
	if u.X < 0 || u.X > 1 || u.Y < 0 || u.Y > 1 {
		return gg.Transparent
	}
	b := p.img.Bounds()
	ix := min(int(u.X*float64(b.Dx())), b.Dx()-1)
	iy := min(int((1-u.Y)*float64(b.Dy())), b.Dy()-1)
	o := p.img.PixOffset(ix, iy)
	a := float64(p.img.Pix[o+3]) / 255 * p.alpha
	if p.isMask {
		c := p.stencil
		c.A *= a
		return c
	}
	return gg.RGBA{
		R: float64(p.img.Pix[o]) / 255,
		G: float64(p.img.Pix[o+1]) / 255,
		B: float64(p.img.Pix[o+2]) / 255,
		A: a,
	}
}
