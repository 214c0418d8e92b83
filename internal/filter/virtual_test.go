package filter

import "testing"

func TestVirtualPixelNames(t *testing.T) {
	names := VirtualPixelNames()
	if len(names) != 16 {
		t.Fatalf("len(VirtualPixelNames()) = %d, want 16", len(names))
	}
	if names[VirtualTransparent] != "Transparent" || VirtualTransparent != 12 {
		t.Errorf("Transparent at %d = %q", VirtualTransparent, names[VirtualTransparent])
	}
	if got := VirtualPixel(99).String(); got != "Undefined" {
		t.Errorf("VirtualPixel(99).String() = %q, want Undefined", got)
	}
}

func TestSamplerAt(t *testing.T) {
	red := [4]float32{1, 0, 0, 1}
	green := [4]float32{0, 1, 0, 1}
	blue := [4]float32{0, 0, 1, 1}
	white := [4]float32{1, 1, 1, 1}
	bg := [4]float32{0.2, 0.2, 0.2, 0.2}

	tests := []struct {
		name   string
		method VirtualPixel
		x, y   int
		want   [4]float32
	}{
		{"inside", VirtualTransparent, 1, 1, white},
		{"edge left", VirtualEdge, -1, 0, red},
		{"edge far", VirtualEdge, 3, 5, white},
		{"undefined is edge", VirtualUndefined, -4, 1, blue},
		{"background", VirtualBackground, -1, -1, bg},
		{"black", VirtualBlack, 2, 0, [4]float32{0, 0, 0, 1}},
		{"gray", VirtualGray, 2, 0, [4]float32{0.5, 0.5, 0.5, 1}},
		{"white", VirtualWhite, 2, 0, white},
		{"transparent", VirtualTransparent, 2, 0, [4]float32{}},
		{"tile right", VirtualTile, 2, 0, red},
		{"tile left", VirtualTile, -1, 0, green},
		{"mirror left", VirtualMirror, -1, 0, red},
		{"mirror right", VirtualMirror, 2, 0, green},
		{"checker odd", VirtualCheckerTile, 2, 0, bg},
		{"checker even", VirtualCheckerTile, 2, 2, red},
		{"htile inside band", VirtualHorizontalTile, 3, 1, white},
		{"htile outside band", VirtualHorizontalTile, 0, -1, bg},
		{"vtile inside band", VirtualVerticalTile, 0, 3, blue},
		{"vtile outside band", VirtualVerticalTile, -1, 0, bg},
		{"htile edge", VirtualHorizontalTileEdge, 2, 7, blue},
		{"vtile edge", VirtualVerticalTileEdge, -5, 2, red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sampler{Buf: quad(), Method: tt.method, Background: bg}
			if got := s.At(tt.x, tt.y); got != tt.want {
				t.Errorf("At(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestSamplerDeterministic(t *testing.T) {
	for _, m := range []VirtualPixel{VirtualRandom, VirtualDither} {
		s := &Sampler{Buf: quad(), Method: m}
		a := s.At(-3, -7)
		b := s.At(-3, -7)
		if a != b {
			t.Errorf("%v: At(-3,-7) = %v then %v", m, a, b)
		}
		if a[3] != 1 {
			t.Errorf("%v: At(-3,-7) = %v, want an image pixel", m, a)
		}
	}
}

func TestSamplerSample(t *testing.T) {
	s := &Sampler{Buf: quad(), Method: VirtualEdge}

	if got := s.Sample(0.5, 0.5); got != [4]float32{1, 0, 0, 1} {
		t.Errorf("Sample(0.5, 0.5) = %v, want red", got)
	}
	if got := s.Sample(1, 0.5); !nearPixel(got[:], [4]float32{0.5, 0.5, 0, 1}, 1e-6) {
		t.Errorf("Sample(1, 0.5) = %v, want red/green mix", got)
	}
	if got := s.Sample(1, 1); !nearPixel(got[:], [4]float32{0.5, 0.5, 0.5, 1}, 1e-6) {
		t.Errorf("Sample(1, 1) = %v, want average", got)
	}
}
