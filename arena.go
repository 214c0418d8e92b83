package arena

import (
	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/plugins/edge"
	"github.com/fxarena/arena/plugins/magicktext"
	"github.com/fxarena/arena/plugins/motionblur"
	"github.com/fxarena/arena/plugins/polar"
	"github.com/fxarena/arena/plugins/readpdf"
	"github.com/fxarena/arena/plugins/text"
)

// Factories returns one factory per plugin in the bundle. The text
// generators scan the system fonts when systemFonts is set.
func Factories(systemFonts bool) []effect.Factory {
	return []effect.Factory{
		readpdf.Factory{},
		text.Factory{SystemFonts: systemFonts},
		magicktext.Factory{SystemFonts: systemFonts},
		polar.Factory{},
		edge.Factory{},
		motionblur.Factory{},
	}
}

// Bundle returns a registry of every plugin, with system fonts enabled.
func Bundle() *effect.Registry {
	return NewRegistry(true)
}

// NewRegistry registers Factories(systemFonts).
func NewRegistry(systemFonts bool) *effect.Registry {
	r := effect.NewRegistry()
	for _, f := range Factories(systemFonts) {
		if err := r.Register(f); err != nil {
			// identifiers are constants, so this is a programming error
			panic(err)
		}
	}
	return r
}
