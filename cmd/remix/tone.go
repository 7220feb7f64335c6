package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cwbudde/algo-remix/codec"
	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/signal"
)

var cmdTone = &command{
	Name:        "tone",
	Description: "write a sine test tone",
	Run: func(ctx context.Context, a *app, argv []string) error {
		fs := flag.NewFlagSet("remix tone", flag.ContinueOnError)
		fs.SetOutput(a.errOut)
		out := fs.String("out", "", "output `file` (wav, mp3)")
		freq := fs.Float64("freq", 440, "frequency in Hz")
		seconds := fs.Float64("seconds", 1, "duration in seconds")
		rate := fs.Int("rate", 44100, "sample rate in Hz")
		channels := fs.Int("channels", 1, "channel count")
		amp := fs.Float64("amp", 0.5, "peak amplitude (1 = full scale)")
		fade := fs.Float64("fade", 5, "fade-in and fade-out in ms")
		yes := fs.Bool("y", false, "overwrite without asking")
		encoding := addEncodeFlags(fs)
		if err := fs.Parse(argv); err != nil {
			return err
		}
		if *out == "" {
			return fmt.Errorf("no output file specified")
		}
		if *channels < 1 {
			return fmt.Errorf("%w: channel count must be positive: %d", core.ErrInvalidParameter, *channels)
		}
		if *rate < 1 {
			return fmt.Errorf("%w: sample rate must be positive: %d", core.ErrInvalidParameter, *rate)
		}

		format, opts, err := encoding.options(fs)
		if err != nil {
			return err
		}

		gen := signal.NewGeneratorWithOptions(
			[]core.ProcessorOption{core.WithSampleRate(float64(*rate)), core.WithChannels(*channels)},
			signal.WithFade(*fade),
		)
		buf, err := gen.Tone(*freq, *amp, *seconds)
		if err != nil {
			return err
		}

		if !a.confirmOverwrite(*out, *yes) {
			fmt.Fprintln(a.out, "Not overwritten.")
			return nil
		}

		opts = append(opts, codec.WithLogger(a.logger))
		if err := codec.Encode(buf, *out, format, opts...); err != nil {
			return err
		}

		a.logger.Debug("tone written", "path", *out, "freq", *freq, "seconds", *seconds)
		_, err = fmt.Fprintf(a.out, "%s: %g Hz, %.2f s, %d Hz, %d ch\n",
			*out, *freq, buf.Seconds(), buf.SampleRate(), buf.Channels())
		return err
	},
}
