package arena

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/memhost"
	"github.com/fxarena/arena/plugins/edge"
)

func TestLoggerSilentByDefault(t *testing.T) {
	if Logger() == nil {
		t.Fatal("Logger() = nil")
	}
	if Logger().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("default logger enabled at Warn")
	}
}

func TestSetLoggerReachesPlugins(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(l)
	if Logger() != l || effect.Logger() != l {
		t.Fatal("SetLogger did not reach the effect package")
	}

	e, err := memhost.New().Load(edge.Factory{}, effect.ContextFilter)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if out := buf.String(); !strings.Contains(out, "instance created") || !strings.Contains(out, edge.PluginID) {
		t.Errorf("log output = %q, want the instance creation of %s", out, edge.PluginID)
	}
}

func TestSetLoggerNil(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) left logging enabled")
	}
}
