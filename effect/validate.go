package effect

import (
	"fmt"
	"slices"
)

// MsgWrongScaleOrField is shown when a host hands over an image that does
// not match the render call.
const MsgWrongScaleOrField = "OFX Host gave image with wrong scale or field properties"

// CheckRenderScale fails with StatFailed when s is not 1 and the plugin
// cannot render at proxy scales.
func CheckRenderScale(supported bool, s Scale) error {
	if !supported && !s.IsUnit() {
		return NewStatusError(StatFailed, fmt.Errorf("render scale %gx%g not supported", s.X, s.Y))
	}
	return nil
}

// CheckImageProperties verifies that img was produced for this render.
func (h *Handle) CheckImageProperties(img *Image, args RenderArgs) error {
	if img.RenderScale != args.RenderScale || (img.Field != FieldNone && img.Field != args.Field) {
		return h.Fail(StatFailed, MsgWrongScaleOrField)
	}
	return nil
}

// CheckDepth fails with StatErrFormat unless img has one of want.
func CheckDepth(img *Image, want ...BitDepth) error {
	if !slices.Contains(want, img.Depth) {
		return NewStatusError(StatErrFormat, fmt.Errorf("bit depth %s not in %v", img.Depth, want))
	}
	return nil
}

// CheckComponents fails with StatErrFormat unless img has one of want.
func CheckComponents(img *Image, want ...PixelComponents) error {
	if !slices.Contains(want, img.Components) {
		return NewStatusError(StatErrFormat, fmt.Errorf("components %s not in %v", img.Components, want))
	}
	return nil
}

// CheckSameFormat fails with StatErrImageFormat when src and dst differ in
// depth or components.
func CheckSameFormat(src, dst *Image) error {
	if src.Depth != dst.Depth || src.Components != dst.Components {
		return NewStatusError(StatErrImageFormat, fmt.Errorf("source %s/%s differs from output %s/%s",
			src.Depth, src.Components, dst.Depth, dst.Components))
	}
	return nil
}

// CheckRenderWindow fails with StatErrValue when window is not inside bounds.
func CheckRenderWindow(window, bounds RectI) error {
	if !bounds.Contains(window) {
		return NewStatusError(StatErrValue, fmt.Errorf("render window %v outside image bounds %v", window, bounds))
	}
	return nil
}
