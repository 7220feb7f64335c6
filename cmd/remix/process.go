package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cwbudde/algo-remix/remix"
)

var cmdProcess = &command{
	Name:        "process",
	Description: "render a file with tempo, pitch and gain changes",
	Run: func(ctx context.Context, a *app, argv []string) error {
		fs := flag.NewFlagSet("remix process", flag.ContinueOnError)
		fs.SetOutput(a.errOut)
		in := fs.String("in", "", "input `file` (wav, mp3, flac)")
		out := fs.String("out", "", "output `file` (wav, mp3)")
		yes := fs.Bool("y", false, "overwrite without asking")
		parallel := fs.Bool("parallel", false, "process channels concurrently")
		effects := addEffectFlags(fs)
		encoding := addEncodeFlags(fs)
		if err := fs.Parse(argv); err != nil {
			return err
		}

		inPath, err := inputArg(*in, fs)
		if err != nil {
			return err
		}
		if *out == "" {
			return fmt.Errorf("no output file specified")
		}

		params, err := effects.params(fs)
		if err != nil {
			return err
		}
		format, opts, err := encoding.options(fs)
		if err != nil {
			return err
		}

		if !a.confirmOverwrite(*out, *yes) {
			fmt.Fprintln(a.out, "Not overwritten.")
			return nil
		}

		pl := remix.New(remix.WithLogger(a.logger), remix.WithParallelChannels(*parallel))
		s := remix.NewSession(pl, remix.WithSessionLogger(a.logger))
		if err := s.Load(inPath); err != nil {
			return err
		}

		report, err := s.Export(params, *out, format, opts...)
		if err != nil {
			return err
		}
		if report.ClippedSamples > 0 {
			a.logger.Warn("output clipped", "samples", report.ClippedSamples)
		}

		_, err = fmt.Fprintf(a.out, "%s: %.2f s -> %.2f s (%v)\n",
			*out, report.InputSeconds, report.OutputSeconds, report.Params)
		return err
	},
}
