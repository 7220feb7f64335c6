// Package window provides the analysis windows used for spectral
// processing: STFT framing in the phase-vocoder pitch shifter, leakage
// control in frequency estimation and the Kaiser prototype of the
// resampler.
package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris
	TypeKaiser
)

// Generalized cosine terms a0 - a1 cos(x) + a2 cos(2x) - ...
var cosineTerms = map[Type][]float64{
	TypeHann:           {0.5, 0.5},
	TypeHamming:        {0.54, 0.46},
	TypeBlackman:       {0.42, 0.5, 0.08},
	TypeBlackmanHarris: {0.35875, 0.48829, 0.14128, 0.01168},
}

var typeNames = map[Type]string{
	TypeRectangular:    "rectangular",
	TypeHann:           "hann",
	TypeHamming:        "hamming",
	TypeBlackman:       "blackman",
	TypeBlackmanHarris: "blackman-harris",
	TypeKaiser:         "kaiser",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a window name such as "hann" or "Blackman-Harris".
func ParseType(name string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == key {
			return t, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown window %q", core.ErrInvalidParameter, name)
}

type config struct {
	beta     float64
	periodic bool
}

// Option configures window generation.
type Option func(*config)

// WithBeta sets the Kaiser shape parameter. Negative values are ignored;
// the default is 8.6.
func WithBeta(beta float64) Option {
	return func(c *config) {
		if beta >= 0 {
			c.beta = beta
		}
	}
}

// WithPeriodic generates the periodic form used for FFT framing: the
// window of length n+1 with the last point dropped.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns n coefficients of window t. Unknown types give a
// rectangular window; n <= 0 gives nil.
func Generate(t Type, n int, opts ...Option) []float64 {
	if n <= 0 {
		return nil
	}

	cfg := config{beta: 8.6}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	span := float64(n - 1)
	if cfg.periodic {
		span = float64(n)
	}
	if span == 0 {
		span = 1
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = at(t, float64(i)/span, cfg.beta)
	}

	return out
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// Kaiser returns a symmetric Kaiser window.
func Kaiser(n int, beta float64) ([]float64, error) {
	if n <= 0 || !core.IsFinite(beta) || beta < 0 {
		return nil, fmt.Errorf("%w: kaiser window needs n > 0 and beta >= 0: n=%d beta=%v",
			core.ErrInvalidParameter, n, beta)
	}

	return Generate(TypeKaiser, n, WithBeta(beta)), nil
}

// CoherentGain returns the mean coefficient, the factor by which a windowed
// bin-centred sine loses amplitude.
func CoherentGain(w []float64) float64 {
	if len(w) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range w {
		sum += v
	}

	return sum / float64(len(w))
}

// at evaluates the window at normalized position x in [0, 1].
func at(t Type, x, beta float64) float64 {
	if t == TypeKaiser {
		r := 2*x - 1
		return besselI0(beta*math.Sqrt(math.Max(0, 1-r*r))) / besselI0(beta)
	}

	terms, ok := cosineTerms[t]
	if !ok {
		return 1
	}

	v, sign := 0.0, 1.0
	for k, a := range terms {
		v += sign * a * math.Cos(2*math.Pi*float64(k)*x)
		sign = -sign
	}

	return v
}

// besselI0 sums the power series of the zeroth-order modified Bessel
// function until the terms stop contributing.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	q := x * x / 4
	for k := 1; k < 500; k++ {
		term *= q / float64(k*k)
		sum += term
		if term < sum*1e-17 {
			break
		}
	}

	return sum
}
