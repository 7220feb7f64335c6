package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/dsp/core"
)

var (
	// ErrInvalidRatio reports a non-positive up or down factor.
	ErrInvalidRatio = fmt.Errorf("%w: resample ratio", core.ErrInvalidParameter)
	// ErrInvalidRate reports a sample rate that is not positive and finite.
	ErrInvalidRate = fmt.Errorf("%w: resample rate", core.ErrInvalidParameter)

	errZeroFilter = errors.New("resample: designed filter sums to zero")
)

// Quality trades filter length against stopband attenuation.
type Quality int

const (
	// QualityFast uses 16 taps per phase, about 55 dB of rejection.
	QualityFast Quality = iota
	// QualityBalanced uses 32 taps per phase, about 75 dB. It is the default.
	QualityBalanced
	// QualityBest uses 64 taps per phase, about 90 dB.
	QualityBest
)

type profile struct {
	taps   int
	cutoff float64 // fraction of the Nyquist limit of the lower rate
	beta   float64
}

func (q Quality) profile() profile {
	switch q {
	case QualityFast:
		return profile{taps: 16, cutoff: 0.88, beta: 5}
	case QualityBest:
		return profile{taps: 64, cutoff: 0.96, beta: 9}
	default:
		return profile{taps: 32, cutoff: 0.92, beta: 7.5}
	}
}

type config struct {
	quality Quality
	taps    int
	maxDen  int
}

// Option configures a Converter.
type Option func(*config)

// WithQuality selects the filter profile.
func WithQuality(q Quality) Option {
	return func(c *config) { c.quality = q }
}

// WithTapsPerPhase overrides the filter length of the quality profile.
func WithTapsPerPhase(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.taps = n
		}
	}
}

// WithMaxDenominator bounds the denominator used when a rate pair is turned
// into a fraction. The default is 4096.
func WithMaxDenominator(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDen = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	return cfg
}

// Converter changes the sample rate of whole signals by a rational factor
// up/down using a Kaiser-windowed sinc split into up polyphase branches.
// Its output is aligned with its input: the filter delay is compensated.
//
// A Converter holds only its filter and may be shared by goroutines.
type Converter struct {
	up, down int
	taps     int
	delay    int
	phases   [][]float64
}

// New returns a Converter for up/down. The ratio is reduced first.
func New(up, down int, opts ...Option) (*Converter, error) {
	if up <= 0 || down <= 0 {
		return nil, fmt.Errorf("%w: %d/%d", ErrInvalidRatio, up, down)
	}

	g := gcd(up, down)
	up, down = up/g, down/g

	cfg := newConfig(opts)
	p := cfg.quality.profile()
	if cfg.taps > 0 {
		p.taps = cfg.taps
	}

	h, err := lowpass(up, down, p)
	if err != nil {
		return nil, err
	}

	return &Converter{up: up, down: down, taps: p.taps, delay: (len(h) - 1) / 2, phases: polyphase(h, up)}, nil
}

// NewForRates returns a Converter from inRate to outRate, approximating
// the ratio by a fraction.
func NewForRates(inRate, outRate float64, opts ...Option) (*Converter, error) {
	if !core.IsFinitePositive(inRate) || !core.IsFinitePositive(outRate) {
		return nil, fmt.Errorf("%w: %v -> %v", ErrInvalidRate, inRate, outRate)
	}

	up, down := approximateRatio(outRate/inRate, newConfig(opts).maxDen)

	return New(up, down, opts...)
}

// Ratio returns the reduced conversion factors.
func (c *Converter) Ratio() (up, down int) { return c.up, c.down }

// TapsPerPhase returns the filter length per polyphase branch.
func (c *Converter) TapsPerPhase() int { return c.taps }

// OutputLen returns the number of samples Process produces for n inputs.
func (c *Converter) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}

	return max(1, int(math.Round(float64(n)*float64(c.up)/float64(c.down))))
}

// Process converts x into a new slice of OutputLen(len(x)) samples.
func (c *Converter) Process(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}

	out := make([]float64, c.OutputLen(len(x)))
	for m := range out {
		// Position on the zero-stuffed grid, shifted by the filter delay.
		j := m*c.down + c.delay
		base := j / c.up

		var y float64
		for i, h := range c.phases[j%c.up] {
			k := base - i
			if k < 0 {
				break
			}
			if k < len(x) {
				y += h * x[k]
			}
		}
		out[m] = y
	}

	return out
}

// Convert resamples x by up/down.
func Convert(x []float64, up, down int, opts ...Option) ([]float64, error) {
	c, err := New(up, down, opts...)
	if err != nil {
		return nil, err
	}

	return c.Process(x), nil
}

// ConvertRates resamples x recorded at inRate to outRate.
func ConvertRates(x []float64, inRate, outRate float64, opts ...Option) ([]float64, error) {
	c, err := NewForRates(inRate, outRate, opts...)
	if err != nil {
		return nil, err
	}

	return c.Process(x), nil
}
