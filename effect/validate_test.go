package effect

import (
	"errors"
	"testing"
)

func TestCheckRenderScale(t *testing.T) {
	tests := []struct {
		supported bool
		s         Scale
		want      Status
	}{
		{false, UnitScale, StatOK},
		{false, Scale{0.5, 0.5}, StatFailed},
		{true, Scale{0.5, 0.5}, StatOK},
	}
	for _, tt := range tests {
		if got := StatusOf(CheckRenderScale(tt.supported, tt.s)); got != tt.want {
			t.Errorf("CheckRenderScale(%v, %v) = %s, want %s", tt.supported, tt.s, got, tt.want)
		}
	}
}

func TestCheckImageProperties(t *testing.T) {
	d := testDescriptor()
	h := NewHandle(d, ContextFilter, HostDescription{}, NewParamSet(d, RectD{X2: 10, Y2: 10}), nil)
	img, _ := NewImage(RectI{0, 0, 2, 2}, BitDepthFloat, PixelComponentRGBA)

	args := RenderArgs{RenderScale: UnitScale, Field: FieldNone}
	if err := h.CheckImageProperties(img, args); err != nil {
		t.Fatalf("matching image: %v", err)
	}
	if _, ok := h.PersistentMessage(); ok {
		t.Error("message set on success")
	}

	args.RenderScale = Scale{0.5, 0.5}
	err := h.CheckImageProperties(img, args)
	if StatusOf(err) != StatFailed {
		t.Fatalf("scale mismatch status = %s, want Failed", StatusOf(err))
	}
	msg, ok := h.PersistentMessage()
	if !ok || msg.Text != MsgWrongScaleOrField || msg.Type != MessageError {
		t.Errorf("message = %+v, %v", msg, ok)
	}

	img.Field = FieldLower
	args = RenderArgs{RenderScale: UnitScale, Field: FieldUpper}
	if StatusOf(h.CheckImageProperties(img, args)) != StatFailed {
		t.Error("field mismatch accepted")
	}
}

func TestCheckFormat(t *testing.T) {
	rgba, _ := NewImage(RectI{0, 0, 1, 1}, BitDepthFloat, PixelComponentRGBA)
	rgb, _ := NewImage(RectI{0, 0, 1, 1}, BitDepthFloat, PixelComponentRGB)
	bytes, _ := NewImage(RectI{0, 0, 1, 1}, BitDepthUByte, PixelComponentRGBA)

	if err := CheckDepth(rgba, BitDepthFloat); err != nil {
		t.Errorf("CheckDepth float: %v", err)
	}
	if got := StatusOf(CheckDepth(bytes, BitDepthFloat)); got != StatErrFormat {
		t.Errorf("CheckDepth byte = %s, want ErrFormat", got)
	}
	if err := CheckComponents(rgb, PixelComponentRGBA, PixelComponentRGB); err != nil {
		t.Errorf("CheckComponents rgb: %v", err)
	}
	if got := StatusOf(CheckComponents(rgb, PixelComponentRGBA)); got != StatErrFormat {
		t.Errorf("CheckComponents = %s, want ErrFormat", got)
	}
	if got := StatusOf(CheckSameFormat(rgba, rgb)); got != StatErrImageFormat {
		t.Errorf("CheckSameFormat = %s, want ErrImageFormat", got)
	}
}

func TestCheckRenderWindow(t *testing.T) {
	bounds := RectI{0, 0, 10, 10}
	if err := CheckRenderWindow(RectI{2, 2, 8, 8}, bounds); err != nil {
		t.Errorf("inside: %v", err)
	}
	err := CheckRenderWindow(RectI{2, 2, 12, 8}, bounds)
	if StatusOf(err) != StatErrValue {
		t.Errorf("outside status = %s, want ErrValue", StatusOf(err))
	}
}

func TestStatusOf(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  error
		want Status
	}{
		{nil, StatOK},
		{cause, StatFailed},
		{NewStatusError(StatErrMemory, cause), StatErrMemory},
	}
	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
	if !errors.Is(NewStatusError(StatFailed, cause), cause) {
		t.Error("StatusError does not unwrap its cause")
	}
	if got := Status(77).String(); got != "Status(77)" {
		t.Errorf("unknown status String = %q", got)
	}
}

func TestHandleFail(t *testing.T) {
	d := testDescriptor()
	h := NewHandle(d, ContextFilter, HostDescription{}, NewParamSet(d, RectD{X2: 10, Y2: 10}), nil)
	err := h.Fail(StatErrFormat, "Wrong pixel components")
	var se *StatusError
	if !errors.As(err, &se) || se.Status != StatErrFormat {
		t.Fatalf("Fail = %v", err)
	}
	if msg, _ := h.PersistentMessage(); msg.Text != "Wrong pixel components" {
		t.Errorf("message = %q", msg.Text)
	}
	h.ClearPersistentMessage()
	if _, ok := h.PersistentMessage(); ok {
		t.Error("message survived Clear")
	}
}
