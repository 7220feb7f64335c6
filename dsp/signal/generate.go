// Package signal generates deterministic test material: sine tones and
// seeded noise, optionally packed into a pcm.Buffer.
package signal

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/pcm"
)

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg    core.ProcessorConfig
	seed   uint64
	fadeMs float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithFade applies a raised-cosine fade of ms milliseconds to both ends of
// generated tones.
func WithFade(ms float64) Option {
	return func(g *Generator) {
		if ms >= 0 {
			g.fadeMs = ms
		}
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("%w: sine samples must be > 0: %d", core.ErrInvalidParameter, samples)
	}
	if !core.IsFinite(freqHz) || freqHz < 0 || freqHz >= g.cfg.SampleRate/2 {
		return nil, fmt.Errorf("%w: sine frequency must be in [0, %g): %g",
			core.ErrInvalidParameter, g.cfg.SampleRate/2, freqHz)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("%w: noise samples must be > 0: %d", core.ErrInvalidParameter, samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("%w: noise amplitude must be >= 0: %f", core.ErrInvalidParameter, amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Tone returns a buffer of the configured channel count holding the same
// sine wave on every channel.
func (g *Generator) Tone(freqHz, amplitude, seconds float64) (*pcm.Buffer, error) {
	if !core.IsFinitePositive(seconds) {
		return nil, fmt.Errorf("%w: tone duration must be positive: %g", core.ErrInvalidParameter, seconds)
	}

	x, err := g.Sine(freqHz, amplitude, int(math.Round(seconds*g.cfg.SampleRate)))
	if err != nil {
		return nil, err
	}
	Fade(x, int(math.Round(g.fadeMs*0.001*g.cfg.SampleRate)))

	channels := make([][]float64, g.cfg.Channels)
	for ch := range channels {
		channels[ch] = x
	}

	return pcm.FromChannels(int(math.Round(g.cfg.SampleRate)), channels)
}

// Fade applies a raised-cosine fade-in and fade-out of n samples to data in
// place. n is limited to half the signal.
func Fade(data []float64, n int) {
	n = min(n, len(data)/2)
	for i := range n {
		w := 0.5 - 0.5*math.Cos(math.Pi*float64(i)/float64(n))
		data[i] *= w
		data[len(data)-1-i] *= w
	}
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("%w: normalize target peak must be >= 0: %f", core.ErrInvalidParameter, targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: normalize input must not be empty", core.ErrInvalidParameter)
	}

	maxAbs := 0.0
	for _, v := range data {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}
