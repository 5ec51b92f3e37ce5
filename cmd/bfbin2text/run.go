package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jessevdk/go-flags"
	"github.com/spf13/afero"

	"github.com/bjaus/bintext"
)

type options struct {
	Output  string   `short:"o" long:"output" value-name:"PATH" description:"Write to PATH instead of standard output"`
	Colsep  string   `short:"c" long:"colsep" value-name:"STRING" default:"," description:"Column separator; accepts \\t \\n \\r \\\\ \\' and \\\" escapes"`
	Include []string `short:"i" long:"include" value-name:"NAME" description:"Render only the named table (repeatable)"`
	Exclude []string `short:"e" long:"exclude" value-name:"NAME" description:"Do not render the named table (repeatable)"`
	List    bool     `short:"l" long:"list" description:"List table names without their contents"`
	Verbose bool     `short:"v" long:"verbose" description:"Log debug information to standard error"`
}

type app struct {
	fs      afero.Fs
	stdout  io.Writer
	stderr  io.Writer
	decoder bintext.Decoder
}

func (a *app) run(ctx context.Context, progname string, args []string) error {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = progname
	parser.Usage = "[OPTIONS] FILE"

	rest, err := parser.ParseArgs(args)
	if flags.WroteHelp(err) {
		if _, werr := fmt.Fprintln(a.stdout, err.Error()); werr != nil {
			return werr
		}
		return nil
	}
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	switch len(rest) {
	case 1:
	case 0:
		return &usageError{msg: "the name of an input file must be specified"}
	default:
		return &usageError{msg: "only a single input file is allowed to be specified"}
	}
	input := rest[0]

	renderOpts, err := bintext.Config{
		Separator: opts.Colsep,
		Include:   opts.Include,
		Exclude:   opts.Exclude,
		OnlyNames: opts.List,
	}.Options()
	if errors.Is(err, bintext.ErrConflictingFilters) {
		return &usageError{msg: "only one of --include (-i) and --exclude (-e) may be specified"}
	}
	if err != nil {
		return err
	}
	logger := newLogger(a.stderr, opts.Verbose)
	renderOpts = append(renderOpts, bintext.WithLogger(logger))

	r, err := a.openOutput(opts.Output, renderOpts)
	if err != nil {
		return err
	}
	logger.Debug("rendering", "input", input, "output", opts.Output, "list", opts.List)
	err = r.Render(a.decoder.Decode(ctx, input))
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) openOutput(path string, opts []bintext.Option) (*bintext.Renderer, error) {
	if path == "" {
		return bintext.NewRenderer(a.stdout, opts...), nil
	}
	return bintext.Create(a.fs, path, opts...)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
