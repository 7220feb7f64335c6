package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/Songmu/prompter"

	"github.com/cwbudde/algo-remix/sink"
)

const cmdName = "remix"

// Set with -ldflags at release time.
var (
	version  = "0.1.0"
	revision = "HEAD"
)

// app carries the streams and collaborators shared by all subcommands.
type app struct {
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger

	confirm func(msg string, def bool) bool
	detect  func() sink.Sink
}

func newApp(outStream, errStream io.Writer, verbose bool) *app {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return &app{
		out:     outStream,
		errOut:  errStream,
		logger:  slog.New(slog.NewTextHandler(errStream, &slog.HandlerOptions{Level: level})),
		confirm: prompter.YN,
		detect:  sink.Detect,
	}
}

func run(ctx context.Context, argv []string, outStream, errStream io.Writer) error {
	return runApp(ctx, argv, outStream, errStream, nil)
}

// runApp is run with an optional hook to replace collaborators in tests.
func runApp(ctx context.Context, argv []string, outStream, errStream io.Writer, setup func(*app)) error {
	nameAndVer := fmt.Sprintf("%s (v%s rev:%s)", cmdName, version, revision)
	fs := flag.NewFlagSet(nameAndVer, flag.ContinueOnError)
	fs.SetOutput(errStream)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage of %s:\n  %s [flags] <command> [command flags]\n\nFlags:\n", nameAndVer, cmdName)
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nCommands:\n")
		formatCommands(fs.Output())
	}
	ver := fs.Bool("version", false, "display version")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if *ver {
		return printVersion(outStream)
	}

	argv = fs.Args()
	if len(argv) < 1 {
		fs.Usage()
		return fmt.Errorf("no command specified")
	}

	cmd, ok := cmder.dispatch[argv[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", argv[0])
	}

	a := newApp(outStream, errStream, *verbose)
	if setup != nil {
		setup(a)
	}

	return cmd.Run(ctx, a, argv[1:])
}

func printVersion(out io.Writer) error {
	_, err := fmt.Fprintf(out, "%s v%s (rev:%s)\n", cmdName, version, revision)
	return err
}
