package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-remix/codec"
	"github.com/cwbudde/algo-remix/dsp/dither"
	"github.com/cwbudde/algo-remix/remix"
)

// effectFlags are shared by the commands that render audio. Flags given
// explicitly override values from -preset.
type effectFlags struct {
	tempo    float64
	pitch    string
	gain     float64
	legacy   bool
	spectral bool
	preset   string
}

func addEffectFlags(fs *flag.FlagSet) *effectFlags {
	e := &effectFlags{}
	fs.Float64Var(&e.tempo, "tempo", 1, "tempo ratio (2 = twice as fast)")
	fs.StringVar(&e.pitch, "pitch", "0", "pitch shift in semitones, e.g. -3 or +2st")
	fs.Float64Var(&e.gain, "gain", 0, "gain in dB")
	fs.BoolVar(&e.legacy, "legacy", false, "couple pitch to duration like a tape speed change")
	fs.BoolVar(&e.spectral, "spectral", false, "shift pitch with the phase vocoder")
	fs.StringVar(&e.preset, "preset", "", "YAML preset `file` with base settings")
	return e
}

func (e *effectFlags) params(fs *flag.FlagSet) (remix.Params, error) {
	p := remix.DefaultParams()
	if e.preset != "" {
		var err error
		if p, err = remix.LoadPreset(e.preset); err != nil {
			return remix.Params{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tempo":
			p.TempoRatio = e.tempo
		case "pitch":
			p.PitchSemitones = remix.ParsePitch(e.pitch)
		case "gain":
			p.GainDB = e.gain
		case "legacy":
			p.LegacyCoupledPitch = e.legacy
		case "spectral":
			p.PitchMode = remix.PitchModeTimeDomain
			if e.spectral {
				p.PitchMode = remix.PitchModeSpectral
			}
		}
	})

	return p, nil
}

// encodeFlags select the export quantization.
type encodeFlags struct {
	bits    int
	format  string
	dither  string
	shaping string
	seed    uint64
}

func addEncodeFlags(fs *flag.FlagSet) *encodeFlags {
	e := &encodeFlags{}
	fs.IntVar(&e.bits, "bits", 0, "WAV bit depth: 8, 16, 24 or 32 (default: source depth)")
	fs.StringVar(&e.format, "format", "", "output format: wav or mp3 (default: from extension)")
	fs.StringVar(&e.dither, "dither", "tpdf", "dither: none, rpdf, tpdf, gaussian, fast-gaussian")
	fs.StringVar(&e.shaping, "shaping", "", "noise-shaping preset name (default: none)")
	fs.Uint64Var(&e.seed, "seed", 0, "dither seed for reproducible output")
	return e
}

func (e *encodeFlags) options(fs *flag.FlagSet) (codec.Format, []codec.EncodeOption, error) {
	f := codec.FormatUnknown
	if e.format != "" {
		var err error
		if f, err = codec.ParseFormat(e.format); err != nil {
			return 0, nil, err
		}
	}

	dt, err := dither.ParseDitherType(e.dither)
	if err != nil {
		return 0, nil, err
	}
	shaping, err := dither.ParsePreset(e.shaping)
	if err != nil {
		return 0, nil, err
	}

	opts := []codec.EncodeOption{
		codec.WithBitDepth(e.bits),
		codec.WithDither(dt),
		codec.WithNoiseShaping(shaping),
	}
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "seed" {
			opts = append(opts, codec.WithSeed(e.seed))
		}
	})

	return f, opts, nil
}

// confirmOverwrite reports whether path may be written.
func (a *app) confirmOverwrite(path string, yes bool) bool {
	if yes {
		return true
	}
	if _, err := os.Stat(path); err != nil {
		return true
	}
	return a.confirm(fmt.Sprintf("%s already exists. Overwrite?", path), false)
}

// inputArg returns the -in flag or the first positional argument.
func inputArg(in string, fs *flag.FlagSet) (string, error) {
	if in != "" {
		return in, nil
	}
	if fs.NArg() > 0 {
		return fs.Arg(0), nil
	}
	return "", fmt.Errorf("no input file specified")
}
