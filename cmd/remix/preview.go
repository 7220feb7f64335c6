package main

import (
	"context"
	"flag"

	"github.com/cwbudde/algo-remix/remix"
	"github.com/cwbudde/algo-remix/sink"
)

var cmdPreview = &command{
	Name:        "preview",
	Description: "render a file and play it through an external player",
	Run: func(ctx context.Context, a *app, argv []string) error {
		fs := flag.NewFlagSet("remix preview", flag.ContinueOnError)
		fs.SetOutput(a.errOut)
		in := fs.String("in", "", "input `file` (wav, mp3, flac)")
		player := fs.String("player", "", "player `command` (default: first of ffplay, aplay, afplay, paplay)")
		effects := addEffectFlags(fs)
		if err := fs.Parse(argv); err != nil {
			return err
		}

		inPath, err := inputArg(*in, fs)
		if err != nil {
			return err
		}
		params, err := effects.params(fs)
		if err != nil {
			return err
		}

		var out sink.Sink
		if *player != "" {
			out = sink.NewCommand(*player).WithLogger(a.logger)
		} else {
			out = a.detect()
		}
		if out == sink.Discard {
			a.logger.Warn("no audio player found, rendering only")
		}

		s := remix.NewSession(remix.New(remix.WithLogger(a.logger)), remix.WithSessionLogger(a.logger))
		if err := s.Load(inPath); err != nil {
			return err
		}

		return s.Preview(ctx, params, out)
	},
}
