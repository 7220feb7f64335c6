package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/cwbudde/algo-remix/codec"
	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/spectrum"
	"github.com/cwbudde/algo-remix/measure/loudness"
	stats "github.com/cwbudde/algo-remix/stats/time"
)

var cmdInfo = &command{
	Name:        "info",
	Description: "print format, level and loudness of a file",
	Run: func(ctx context.Context, a *app, argv []string) error {
		fs := flag.NewFlagSet("remix info", flag.ContinueOnError)
		fs.SetOutput(a.errOut)
		tone := fs.Float64("tone", 0, "also report the level at this frequency in `Hz`")
		if err := fs.Parse(argv); err != nil {
			return err
		}
		if fs.NArg() < 1 {
			return fmt.Errorf("no input file specified")
		}
		path := fs.Arg(0)

		info, err := codec.Probe(path)
		if err != nil {
			return err
		}
		buf, err := codec.Decode(path)
		if err != nil {
			return err
		}

		channels := make([][]float64, buf.Channels())
		buf.View(func(ch int, samples []float64) { channels[ch] = samples })
		level := stats.Summarize(channels)

		lufs, err := loudness.Measure(buf)
		if err != nil {
			return err
		}

		mono := buf.Mono()
		dominant, err := spectrum.DominantFrequency(mono, float64(buf.SampleRate()))
		if err != nil {
			a.logger.Debug("no dominant frequency", "err", err)
		}

		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		row(tw, "File", info.Path)
		row(tw, "Format", info.Format)
		row(tw, "Sample rate", fmt.Sprintf("%d Hz", info.SampleRate))
		row(tw, "Channels", info.Channels)
		if info.BitDepth > 0 {
			row(tw, "Bit depth", info.BitDepth)
		}
		row(tw, "Frames", buf.Frames())
		row(tw, "Duration", fmt.Sprintf("%.3f s", buf.Seconds()))
		if info.Format == codec.FormatMP3 {
			row(tw, "MP3 frames", info.MP3Frames)
			for _, tag := range []struct{ name, value string }{
				{"Title", info.Tags.Title},
				{"Artist", info.Tags.Artist},
				{"Album", info.Tags.Album},
			} {
				if tag.value != "" {
					row(tw, tag.name, tag.value)
				}
			}
			if info.Tags.BPM > 0 {
				row(tw, "BPM", fmt.Sprintf("%g", info.Tags.BPM))
			}
		}
		row(tw, "Peak", fmt.Sprintf("%s dBFS", dB(level.Peak_dB)))
		row(tw, "RMS", fmt.Sprintf("%s dBFS", dB(level.RMS_dB)))
		row(tw, "Crest factor", fmt.Sprintf("%s dB", dB(level.CrestFactor_dB)))
		row(tw, "DC offset", fmt.Sprintf("%.6f", level.DC))
		row(tw, "Clipped samples", level.Clipped)
		row(tw, "Integrated loudness", fmt.Sprintf("%s LUFS", dB(lufs.Integrated)))
		row(tw, "Max short-term", fmt.Sprintf("%s LUFS", dB(lufs.MaxShortTerm)))
		if dominant > 0 {
			row(tw, "Dominant frequency", fmt.Sprintf("%.1f Hz", dominant))
		}
		if *tone > 0 {
			amp, err := spectrum.ToneAmplitude(mono, *tone, float64(buf.SampleRate()))
			if err != nil {
				return err
			}
			row(tw, fmt.Sprintf("Level at %g Hz", *tone), fmt.Sprintf("%s dBFS", dB(core.LinearToDB(amp))))
		}

		return tw.Flush()
	},
}

func row(w io.Writer, key string, value any) {
	fmt.Fprintf(w, "%s:\t%v\n", key, value)
}

func dB(v float64) string {
	if math.IsInf(v, -1) || v <= loudness.Floor {
		return "-inf"
	}
	return fmt.Sprintf("%.2f", v)
}
