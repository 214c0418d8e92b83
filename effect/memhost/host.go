// Package memhost is an in-memory effect host. It drives the plugin
// lifecycle without an application around it and is what the CLI and
// the plugin tests render through.
//
// Images handed to Connect are expected at the host render scale; the
// host stamps fetched images with the scale and field of the current
// render but never resamples them.
package memhost

import (
	"runtime"

	"github.com/fxarena/arena/effect"
)

// Option configures a Host.
type Option func(*Host)

// WithProjectSize sets the project extent in canonical pixels. It is
// used for normalised parameter defaults and as the fallback region of
// definition.
func WithProjectSize(width, height float64) Option {
	return func(h *Host) {
		if width > 0 && height > 0 {
			h.project = effect.RectD{X2: width, Y2: height}
		}
	}
}

// WithCPUs sets the CPU count reported to plugins.
func WithCPUs(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.desc.NumCPUs = n
		}
	}
}

// WithNatron makes the host identify as Natron, which also enables
// cascading choice menus.
func WithNatron(v bool) Option {
	return func(h *Host) {
		h.desc.IsNatron = v
		h.desc.SupportsCascadingChoices = v
		if v {
			h.desc.Name = "fr.inria.Natron"
		}
	}
}

// WithHostName overrides the reported host name.
func WithHostName(name string) Option {
	return func(h *Host) { h.desc.Name = name }
}

// WithRenderScale sets the render scale used by Render.
func WithRenderScale(s effect.Scale) Option {
	return func(h *Host) {
		if s.X > 0 && s.Y > 0 {
			h.scale = s
		}
	}
}

// Host creates and drives effect instances.
type Host struct {
	desc    effect.HostDescription
	project effect.RectD
	scale   effect.Scale
}

// New returns a host with a 1920x1080 project at full resolution.
func New(opts ...Option) *Host {
	h := &Host{
		desc: effect.HostDescription{
			Name:                    "net.fxarena.memhost",
			NumCPUs:                 runtime.NumCPU(),
			SupportsMultiResolution: true,
			SupportsTiles:           true,
		},
		project: effect.RectD{X2: 1920, Y2: 1080},
		scale:   effect.UnitScale,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Description returns what plugins are told about the host.
func (h *Host) Description() effect.HostDescription { return h.desc }

// ProjectSize returns the project extent.
func (h *Host) ProjectSize() effect.RectD { return h.project }

// RenderScale returns the scale Render uses.
func (h *Host) RenderScale() effect.Scale { return h.scale }
