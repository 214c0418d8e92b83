package pdfraster

import (
	"context"

	"github.com/gogpu/gg"
	"github.com/wudi/pdfkit/ir/raw"
	"github.com/wudi/pdfkit/ir/semantic"
)

// colorSpace is the subset of a PDF color space the renderer needs.
type colorSpace struct {
	// comps is the number of components of a color value, zero for
	// patterns.
	comps int

	// Indexed spaces carry their base space and lookup table.
	base   *colorSpace
	lookup []byte
	hival  int
}

var (
	deviceGray = &colorSpace{comps: 1}
	deviceRGB  = &colorSpace{comps: 3}
	deviceCMYK = &colorSpace{comps: 4}
	patternCS  = &colorSpace{}
)

// bySize picks a device space from a component count.
func bySize(n int) *colorSpace {
	switch n {
	case 1:
		return deviceGray
	case 4:
		return deviceCMYK
	default:
		return deviceRGB
	}
}

// colorSpace resolves a color space name or array, looking names up
// in the ColorSpace resources.
func (d *Document) colorSpace(o raw.Object, res *raw.DictObj) *colorSpace {
	o = d.resolve(o)
	if n, ok := o.(raw.Name); ok {
		switch n.Value() {
		case "DeviceGray", "CalGray", "G":
			return deviceGray
		case "DeviceRGB", "CalRGB", "RGB":
			return deviceRGB
		case "DeviceCMYK", "CMYK":
			return deviceCMYK
		case "Pattern":
			return patternCS
		}
		if res != nil {
			if csd := d.dictOf(res.KV["ColorSpace"]); csd != nil {
				if v, ok := csd.KV[n.Value()]; ok {
					return d.colorSpace(v, nil)
				}
			}
		}
		return deviceRGB
	}
	a, ok := o.(*raw.ArrayObj)
	if !ok || len(a.Items) == 0 {
		return deviceRGB
	}
	kind, _ := d.name(a.Items[0])
	switch kind {
	case "ICCBased":
		if len(a.Items) > 1 {
			if s := d.dictOf(a.Items[1]); s != nil {
				if n, ok := d.number(s.KV["N"]); ok {
					return bySize(int(n))
				}
			}
		}
	case "CalGray", "DeviceGray":
		return deviceGray
	case "CalRGB", "Lab", "DeviceRGB":
		return deviceRGB
	case "DeviceCMYK":
		return deviceCMYK
	case "Separation", "DeviceN":
		return deviceGray
	case "Pattern":
		return patternCS
	case "Indexed", "I":
		if len(a.Items) < 4 {
			return deviceRGB
		}
		cs := &colorSpace{comps: 1, base: d.colorSpace(a.Items[1], res)}
		hival, _ := d.number(a.Items[2])
		cs.hival = int(hival)
		switch v := d.resolve(a.Items[3]).(type) {
		case raw.String:
			cs.lookup = v.Value()
		case *raw.StreamObj:
			cs.lookup, _, _ = d.streamData(context.Background(), v)
		}
		return cs
	}
	return deviceRGB
}

// inlineColorSpace resolves the ColorSpace entry of an inline image.
func (d *Document) inlineColorSpace(o semantic.Operand, res *raw.DictObj) *colorSpace {
	switch v := o.(type) {
	case semantic.NameOperand:
		return d.colorSpace(raw.NameLiteral(v.Value), res)
	case semantic.ArrayOperand:
		if len(v.Values) >= 4 && nameArg(v.Values[0]) == "Indexed" {
			cs := &colorSpace{comps: 1, base: d.inlineColorSpace(v.Values[1], res), hival: int(num(v.Values[2]))}
			if s, ok := v.Values[3].(semantic.StringOperand); ok {
				cs.lookup = s.Value
			}
			return cs
		}
	}
	return deviceGray
}

// rgb converts component values in 0..1 to a color.
func (cs *colorSpace) rgb(v []float64) gg.RGBA {
	at := func(i int) float64 {
		if i < len(v) {
			return clamp01(v[i])
		}
		return 0
	}
	if cs.base != nil {
		i := 0
		if len(v) > 0 {
			i = int(v[0] + 0.5)
		}
		return cs.index(i)
	}
	switch cs.comps {
	case 1:
		g := at(0)
		return gg.RGBA{R: g, G: g, B: g, A: 1}
	case 4:
		k := at(3)
		return gg.RGBA{R: (1 - at(0)) * (1 - k), G: (1 - at(1)) * (1 - k), B: (1 - at(2)) * (1 - k), A: 1}
	default:
		return gg.RGBA{R: at(0), G: at(1), B: at(2), A: 1}
	}
}

// index looks up entry i of an indexed space.
func (cs *colorSpace) index(i int) gg.RGBA {
	i = max(0, min(i, cs.hival))
	n := cs.base.comps
	if n == 0 {
		n = 3
	}
	v := make([]float64, n)
	for k := range v {
		if j := i*n + k; j < len(cs.lookup) {
			v[k] = float64(cs.lookup[j]) / 255
		}
	}
	return cs.base.rgb(v)
}

// initial is the color a space starts with after cs or CS.
func (cs *colorSpace) initial() gg.RGBA {
	if cs.comps == 4 {
		return cs.rgb([]float64{0, 0, 0, 1})
	}
	if cs.base != nil {
		return cs.index(0)
	}
	return gg.RGBA{A: 1}
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
