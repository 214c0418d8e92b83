package arena

import (
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/fxarena/arena/effect"
)

// SetLogger configures the logger for the framework, every plugin and
// the gg rasterizer the text effects draw with. By default nothing is
// logged.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default.
//
// Example:
//
//	arena.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	effect.SetLogger(l)
	gg.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return effect.Logger()
}
