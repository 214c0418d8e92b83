package pdfraster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/wudi/pdfkit/ir/semantic"
	"github.com/wudi/pdfkit/scanner"
)

// inlineKeys expands the abbreviated keys of inline image dictionaries.
var inlineKeys = map[string]string{
	"BPC": "BitsPerComponent",
	"CS":  "ColorSpace",
	"D":   "Decode",
	"DP":  "DecodeParms",
	"F":   "Filter",
	"H":   "Height",
	"IM":  "ImageMask",
	"I":   "Interpolate",
	"W":   "Width",
}

// inlineNames expands abbreviated filter and color space names.
var inlineNames = map[string]string{
	"AHx":  "ASCIIHexDecode",
	"A85":  "ASCII85Decode",
	"LZW":  "LZWDecode",
	"Fl":   "FlateDecode",
	"RL":   "RunLengthDecode",
	"DCT":  "DCTDecode",
	"CCF":  "CCITTFaxDecode",
	"G":    "DeviceGray",
	"RGB":  "DeviceRGB",
	"CMYK": "DeviceCMYK",
	"I":    "Indexed",
}

type frame struct {
	dict bool
	vals []semantic.Operand
}

// lex splits a content stream into operations.
func lex(data []byte) ([]semantic.Operation, error) {
	sc := scanner.New(bytes.NewReader(data), scanner.Config{})
	var (
		ops     []semantic.Operation
		stack   []frame
		args    []semantic.Operand
		inline  = -1
		pending bool
	)
	push := func(o semantic.Operand) {
		if n := len(stack); n > 0 {
			stack[n-1].vals = append(stack[n-1].vals, o)
			return
		}
		args = append(args, o)
	}
	for {
		tok, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ops, fmt.Errorf("content stream at %d: %w", sc.Position(), err)
		}
		switch tok.Type {
		case scanner.TokenNumber:
			switch v := tok.Value().(type) {
			case int64:
				push(semantic.NumberOperand{Value: float64(v)})
			case float64:
				push(semantic.NumberOperand{Value: v})
			}
		case scanner.TokenRef:
			// Two numbers followed by an operator starting with R, as in
			// "0 1 0 RG", scan as a reference. Split it back.
			a, b := refNumbers(data, tok.Pos)
			push(semantic.NumberOperand{Value: a})
			push(semantic.NumberOperand{Value: b})
			pending = true
			continue
		case scanner.TokenName:
			push(semantic.NameOperand{Value: tok.Value().(string)})
		case scanner.TokenString:
			push(semantic.StringOperand{Value: append([]byte(nil), tok.Value().([]byte)...)})
		case scanner.TokenBoolean:
			v := "false"
			if tok.Value().(bool) {
				v = "true"
			}
			push(semantic.NameOperand{Value: v})
		case scanner.TokenArray:
			stack = append(stack, frame{})
		case scanner.TokenDict:
			stack = append(stack, frame{dict: true})
		case scanner.TokenInlineImage:
			if inline < 0 {
				continue
			}
			dict := pairs(args[inline:], true)
			ops = append(ops, semantic.Operation{
				Operator: "BI",
				Operands: []semantic.Operand{semantic.InlineImageOperand{Image: dict, Data: tok.Value().([]byte)}},
			})
			args, inline = args[:0], -1
		case scanner.TokenKeyword:
			kw, _ := tok.Value().(string)
			if pending {
				kw = "R" + kw
				pending = false
			}
			switch kw {
			case "]":
				if n := len(stack); n > 0 && !stack[n-1].dict {
					vals := stack[n-1].vals
					stack = stack[:n-1]
					push(semantic.ArrayOperand{Values: vals})
				}
				continue
			case ">>":
				if n := len(stack); n > 0 && stack[n-1].dict {
					vals := stack[n-1].vals
					stack = stack[:n-1]
					push(pairs(vals, false))
				}
				continue
			case "BI":
				inline = len(args)
				continue
			case "{", "}":
				continue
			}
			if inline >= 0 {
				continue
			}
			ops = append(ops, semantic.Operation{Operator: kw, Operands: args})
			args = nil
		}
		if pending {
			pending = false
		}
	}
	return ops, nil
}

// refNumbers re-reads the two numbers the scanner folded into a reference.
func refNumbers(data []byte, pos int64) (a, b float64) {
	fields := bytes.Fields(data[pos:min(int64(len(data)), pos+64)])
	if len(fields) > 0 {
		a, _ = strconv.ParseFloat(string(fields[0]), 64)
	}
	if len(fields) > 1 {
		b, _ = strconv.ParseFloat(string(fields[1]), 64)
	}
	return a, b
}

// pairs turns alternating names and values into a dictionary.
func pairs(vals []semantic.Operand, inline bool) semantic.DictOperand {
	d := semantic.DictOperand{Values: make(map[string]semantic.Operand, len(vals)/2)}
	for i := 0; i+1 < len(vals); i += 2 {
		k, ok := vals[i].(semantic.NameOperand)
		if !ok {
			continue
		}
		key, v := k.Value, vals[i+1]
		if inline {
			if full, ok := inlineKeys[key]; ok {
				key = full
			}
			v = expandInline(v)
		}
		d.Values[key] = v
	}
	return d
}

func expandInline(o semantic.Operand) semantic.Operand {
	switch v := o.(type) {
	case semantic.NameOperand:
		if full, ok := inlineNames[v.Value]; ok {
			return semantic.NameOperand{Value: full}
		}
	case semantic.ArrayOperand:
		out := make([]semantic.Operand, len(v.Values))
		for i, it := range v.Values {
			out[i] = expandInline(it)
		}
		return semantic.ArrayOperand{Values: out}
	}
	return o
}

// Operand helpers.

func num(o semantic.Operand) float64 {
	if n, ok := o.(semantic.NumberOperand); ok {
		return n.Value
	}
	return 0
}

func nums(args []semantic.Operand) []float64 {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		if n, ok := a.(semantic.NumberOperand); ok {
			out = append(out, n.Value)
		}
	}
	return out
}

func nameArg(o semantic.Operand) string {
	if n, ok := o.(semantic.NameOperand); ok {
		return n.Value
	}
	return ""
}
