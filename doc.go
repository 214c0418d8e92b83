// Package arena is a bundle of image effects for OpenFX style hosts:
// text generators, a PDF reader, a polar distortion and two ImageMagick
// style filters.
//
// # Overview
//
// Every effect is an [effect.Factory]. [Bundle] returns a registry
// holding all of them, keyed by identifier and major version, so that
// two generations of the same plugin can live side by side:
//
//	reg := arena.Bundle()
//	f, err := reg.Lookup("net.fxarena.openfx.Text", 0) // newest Text
//
// # Rendering without a host
//
// Package effect/memhost is a small in-memory host. It loads a factory
// in a context, sets parameters from strings and renders into float
// images:
//
//	e, err := memhost.New().Load(f, effect.ContextGenerator)
//	e.SetParam("text", "Hello")
//	img, err := e.Render(ctx, 0, effect.RectI{})
//
// The arena command wraps the same calls for use from a shell.
//
// # Coordinate System
//
// Host images are bottom-up like OpenFX: y grows upwards and the first
// row in memory is the bottom one. Internally effects work on top-down
// buffers (package internal/pixel) and flip on the way in and out.
//
// # Logging
//
// Nothing is logged by default. [SetLogger] routes the framework, the
// plugins and the gg rasterizer to one [slog.Logger].
package arena
