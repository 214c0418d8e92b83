package filter

import (
	"testing"

	"github.com/fxarena/arena/internal/pixel"
)

func TestDropShadowBorder(t *testing.T) {
	tests := []struct {
		sigma  float64
		border int
	}{
		{0, 0},
		{0.5, 1},
		{1, 2},
		{2.4, 5},
	}

	for _, tt := range tests {
		shadow, border := DropShadow(solid(4, 3, 1, 1, 1, 1), 100, tt.sigma, [3]float32{})
		if border != tt.border {
			t.Errorf("DropShadow(sigma=%v) border = %d, want %d", tt.sigma, border, tt.border)
		}
		if shadow.W != 4+2*tt.border || shadow.H != 3+2*tt.border {
			t.Errorf("DropShadow(sigma=%v) size = %dx%d", tt.sigma, shadow.W, shadow.H)
		}
	}
}

func TestDropShadowNoBlur(t *testing.T) {
	src := pixel.New(3, 3)
	copy(src.Pixel(1, 1), []float32{1, 1, 1, 1})

	shadow, _ := DropShadow(src, 50, 0, [3]float32{1, 0, 0})
	if p := shadow.Pixel(1, 1); !nearPixel(p, [4]float32{0.5, 0, 0, 0.5}, 1e-6) {
		t.Errorf("shadow center = %v, want half red", p)
	}
	if p := shadow.Pixel(0, 0); p[3] != 0 {
		t.Errorf("shadow corner = %v, want transparent", p)
	}
}

func TestDropShadowBlurKeepsMass(t *testing.T) {
	src := pixel.New(9, 9)
	copy(src.Pixel(4, 4), []float32{1, 1, 1, 1})

	shadow, border := DropShadow(src, 50, 1, [3]float32{})
	var sum float64
	for i := 3; i < len(shadow.Pix); i += 4 {
		sum += float64(shadow.Pix[i])
	}
	if !near(sum, 0.5, 1e-3) {
		t.Errorf("shadow alpha mass = %v, want 0.5", sum)
	}
	c := 4 + border
	if p := shadow.Pixel(c, c); p[3] >= 0.5 {
		t.Errorf("blurred center alpha = %v, want below 0.5", p[3])
	}
}

func TestComposite(t *testing.T) {
	dst := solid(3, 3, 1, 1, 1, 1)
	src := solid(2, 2, 0, 0, 0, 0.5)

	Composite(dst, src, 2, 2)
	if p := dst.Pixel(2, 2); !nearPixel(p, [4]float32{0.5, 0.5, 0.5, 1}, 1e-6) {
		t.Errorf("composited = %v, want mid gray", p)
	}
	if p := dst.Pixel(1, 1); !nearPixel(p, [4]float32{1, 1, 1, 1}, 0) {
		t.Errorf("untouched = %v, want white", p)
	}
}

func TestCompositeStraightSource(t *testing.T) {
	dst := pixel.New(1, 1)
	src := &pixel.Buffer{W: 1, H: 1, Pix: []float32{1, 0, 0, 0.5}}

	Composite(dst, src, 0, 0)
	if p := dst.Pixel(0, 0); !nearPixel(p, [4]float32{0.5, 0, 0, 0.5}, 1e-6) {
		t.Errorf("composited = %v, want premultiplied half red", p)
	}
	if src.Premultiplied || src.Pix[0] != 1 {
		t.Errorf("source was modified: %+v", src)
	}
}
