// Command arena lists, describes and renders the effects of the bundle
// without an OpenFX host.
//
// Usage:
//
//	arena list
//	arena describe -id ID [-version N] [-context NAME]
//	arena fonts [-system]
//	arena render -id ID -out out.png [-in in.png] [-p name=value ...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/fxarena/arena"
	"github.com/fxarena/arena/effect"
	"github.com/fxarena/arena/effect/memhost"
	"github.com/fxarena/arena/effect/reader"
	"github.com/fxarena/arena/internal/fonts"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

const usage = `usage: arena <command> [flags]

commands:
  list      print the plugins of the bundle
  describe  print the clips and parameters of a plugin
  fonts     print the font families the text effects can use
  render    render a plugin to a PNG file
`

// usageError marks errors caused by the command line.
type usageError struct{ error }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	var err error
	switch args[0] {
	case "list":
		err = cmdList(args[1:], stdout, stderr)
	case "describe":
		err = cmdDescribe(args[1:], stdout, stderr)
	case "fonts":
		err = cmdFonts(args[1:], stdout, stderr)
	case "render":
		err = cmdRender(ctx, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		err = usageError{fmt.Errorf("unknown command %q", args[0])}
	}

	var ue usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.As(err, &ue):
		fmt.Fprintf(stderr, "arena: %v\n", err)
		fmt.Fprint(stderr, usage)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "arena: %v\n", err)
		return exitFailed
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse wraps flag errors so they map to the usage exit code.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	if fs.NArg() > 0 {
		return usageError{fmt.Errorf("%s: unexpected arguments %v", fs.Name(), fs.Args())}
	}
	return nil
}

func cmdList(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("list", stderr)
	if err := parse(fs, args); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, f := range arena.NewRegistry(false).Factories() {
		d := describe(f)
		major, minor := f.Version()
		fmt.Fprintf(tw, "%s\tv%d.%d\t%s\t%s\n", f.Identifier(), major, minor, d.Label(), d.Grouping())
	}
	return tw.Flush()
}

func describe(f effect.Factory) *effect.Descriptor {
	major, minor := f.Version()
	d := effect.NewDescriptor(f.Identifier(), major, minor)
	f.Describe(d)
	return d
}

var allContexts = []effect.Context{effect.ContextGeneral, effect.ContextFilter, effect.ContextGenerator, effect.ContextReader}

// pickContext returns the named context, or the preferred supported one
// when name is empty.
func pickContext(d *effect.Descriptor, name string, prefer ...effect.Context) (effect.Context, error) {
	if name != "" {
		c, ok := effect.ParseContext(name)
		if !ok {
			return 0, usageError{fmt.Errorf("unknown context %q", name)}
		}
		return c, nil
	}
	for _, c := range append(prefer, allContexts...) {
		if d.SupportsContext(c) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%s supports no context", d.Identifier())
}

func lookup(reg *effect.Registry, id string, major int) (effect.Factory, error) {
	if id == "" {
		return nil, usageError{errors.New("missing -id")}
	}
	return reg.Lookup(id, major)
}

func cmdDescribe(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("describe", stderr)
	id := fs.String("id", "", "plugin identifier")
	version := fs.Int("version", 0, "major version, 0 for the newest")
	ctxName := fs.String("context", "", "context to describe in")
	system := fs.Bool("system", false, "scan the system fonts")
	if err := parse(fs, args); err != nil {
		return err
	}
	f, err := lookup(arena.NewRegistry(*system), *id, *version)
	if err != nil {
		return err
	}
	d := describe(f)
	c, err := pickContext(d, *ctxName)
	if err != nil {
		return err
	}
	e, err := memhost.New().Load(f, c)
	if err != nil {
		return err
	}
	defer e.Close()

	d = e.Descriptor()
	major, minor := f.Version()
	fmt.Fprintf(stdout, "%s v%d.%d %q (%s)\n", f.Identifier(), major, minor, d.Label(), d.Grouping())
	var ctxs []string
	for _, c := range allContexts {
		if d.SupportsContext(c) {
			ctxs = append(ctxs, c.String())
		}
	}
	fmt.Fprintf(stdout, "contexts: %s\n", strings.Join(ctxs, ", "))
	if d.IsDeprecated() {
		fmt.Fprintln(stdout, "deprecated")
	}

	fmt.Fprintln(stdout, "clips:")
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, cd := range d.Clips() {
		var comps []string
		for _, p := range cd.SupportedComponents() {
			comps = append(comps, p.String())
		}
		opt := ""
		if cd.Optional() {
			opt = "optional"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", cd.Name(), strings.Join(comps, ","), opt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "params:")
	ps := e.Params()
	for _, p := range d.Params() {
		switch p.Kind() {
		case effect.KindPage, effect.KindGroup:
			continue
		}
		if p.IsSecret() {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", p.Name(), p.Kind(), ps.FormatValue(p.Name()), p.Label())
	}
	return tw.Flush()
}

func cmdFonts(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("fonts", stderr)
	system := fs.Bool("system", false, "scan the system fonts")
	if err := parse(fs, args); err != nil {
		return err
	}
	for _, fam := range fonts.New(fonts.WithSystemFonts(*system)).Families() {
		fmt.Fprintln(stdout, fam)
	}
	return nil
}

// params collects repeated -p name=value flags.
type params [][2]string

func (p *params) String() string {
	var parts []string
	for _, kv := range *p {
		parts = append(parts, kv[0]+"="+kv[1])
	}
	return strings.Join(parts, " ")
}

func (p *params) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("want name=value, got %q", s)
	}
	*p = append(*p, [2]string{name, value})
	return nil
}

func cmdRender(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("render", stderr)
	id := fs.String("id", "", "plugin identifier")
	version := fs.Int("version", 0, "major version, 0 for the newest")
	ctxName := fs.String("context", "", "context to render in")
	in := fs.String("in", "", "PNG connected to the Source clip")
	out := fs.String("out", "", "output PNG")
	width := fs.Int("w", 1920, "project width")
	height := fs.Int("h", 1080, "project height")
	t := fs.Float64("t", 0, "time")
	scale := fs.Float64("scale", 1, "render scale")
	file := fs.String("file", "", "file for reader plugins")
	system := fs.Bool("system", false, "scan the system fonts")
	verbose := fs.Bool("v", false, "log to stderr")
	var ps params
	fs.Var(&ps, "p", "parameter as name=value, repeatable")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *out == "" {
		return usageError{errors.New("missing -out")}
	}
	if *width <= 0 || *height <= 0 || *scale <= 0 {
		return usageError{fmt.Errorf("bad size %dx%d at scale %g", *width, *height, *scale)}
	}
	if *verbose {
		arena.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer arena.SetLogger(nil)
	}

	f, err := lookup(arena.NewRegistry(*system), *id, *version)
	if err != nil {
		return err
	}
	prefer := []effect.Context{effect.ContextGenerator}
	switch {
	case *file != "":
		prefer = []effect.Context{effect.ContextReader}
	case *in != "":
		prefer = []effect.Context{effect.ContextFilter, effect.ContextGeneral}
	}
	c, err := pickContext(describe(f), *ctxName, prefer...)
	if err != nil {
		return err
	}

	host := memhost.New(
		memhost.WithProjectSize(float64(*width), float64(*height)),
		memhost.WithRenderScale(effect.Scale{X: *scale, Y: *scale}),
	)
	e, err := host.Load(f, c)
	if err != nil {
		return err
	}
	defer e.Close()

	if *in != "" {
		if err := connect(e, *in); err != nil {
			return err
		}
	}
	if *file != "" {
		ps = append(params{{reader.ParamFilename, *file}}, ps...)
	}
	for _, kv := range ps {
		if err := e.Params().SetFromString(kv[0], kv[1]); err != nil {
			return usageError{err}
		}
		if err := e.ChangeParam(kv[0], e.Params().Time()); err != nil {
			return failure(e, err)
		}
	}

	img, err := e.Render(ctx, *t, effect.RectI{})
	if err != nil {
		return failure(e, err)
	}
	if err := writePNG(*out, img); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %dx%d\n", *out, img.Bounds.Width(), img.Bounds.Height())
	return nil
}

// failure prefixes err with the plugin and its persistent message.
func failure(e *memhost.Effect, err error) error {
	id := e.Descriptor().Identifier()
	if msg, ok := e.Message(); ok {
		return fmt.Errorf("%s: %s (%w)", id, msg.Text, err)
	}
	return fmt.Errorf("%s: %w", id, err)
}

// connect reads path and attaches it to the Source clip in a layout the
// clip accepts.
func connect(e *memhost.Effect, path string) error {
	cd := e.Descriptor().Clip(effect.ClipSource)
	if cd == nil {
		return usageError{fmt.Errorf("%s has no %s clip", e.Descriptor().Identifier(), effect.ClipSource)}
	}
	comps := effect.PixelComponentRGBA
	if !cd.Supports(comps) {
		comps = effect.PixelComponentRGB
	}
	img, err := readPNG(path, comps)
	if err != nil {
		return err
	}
	return e.Connect(effect.ClipSource, img)
}
