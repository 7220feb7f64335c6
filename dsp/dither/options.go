package dither

import (
	"fmt"
	"math"
)

const (
	minBitDepth = 1
	maxBitDepth = 32
)

type config struct {
	bitDepth  int
	ditherTyp DitherType
	amplitude float64
	limit     bool
	shaper    NoiseShaper
	seeded    bool
	seed      uint64
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the output word length, 1 to 32 bits. The default is 16.
func WithBitDepth(bits int) Option {
	return func(c *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth %d outside [%d, %d]", bits, minBitDepth, maxBitDepth)
		}
		c.bitDepth = bits
		return nil
	}
}

// WithDitherType picks the noise distribution. The default is TPDF.
func WithDitherType(dt DitherType) Option {
	return func(c *config) error {
		if !dt.Valid() {
			return fmt.Errorf("dither: invalid dither type %v", dt)
		}
		c.ditherTyp = dt
		return nil
	}
}

// WithDitherAmplitude scales the dither noise, in LSB. The default is 1.
func WithDitherAmplitude(amp float64) Option {
	return func(c *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude must be finite and >= 0: %v", amp)
		}
		c.amplitude = amp
		return nil
	}
}

// WithLimit toggles clamping to the integer range. It is on by default.
func WithLimit(on bool) Option {
	return func(c *config) error {
		c.limit = on
		return nil
	}
}

// WithNoiseShaper installs a custom shaper.
func WithNoiseShaper(ns NoiseShaper) Option {
	return func(c *config) error {
		c.shaper = ns
		return nil
	}
}

// WithFIRPreset installs an FIRShaper built from a preset.
func WithFIRPreset(p Preset) Option {
	return func(c *config) error {
		if !p.Valid() {
			return fmt.Errorf("dither: invalid preset %v", p)
		}
		c.shaper = NewFIRShaper(p.Coefficients())
		return nil
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seeded, c.seed = true, seed
		return nil
	}
}
