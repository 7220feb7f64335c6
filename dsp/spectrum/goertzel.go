package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/dsp/core"
)

// Goertzel evaluates one DFT term over every sample fed to it since the last
// Reset. It is the cheap way to read the level of a known tone, such as a
// test sine before and after a remix.
//
// The frequency does not have to sit on a bin; off-bin tones leak as they
// would in a rectangular-window DFT of the same length.
type Goertzel struct {
	freq, rate float64
	coeff      float64
	s1, s2     float64
	n          int
}

// NewGoertzel returns a detector for freq Hz at rate Hz. freq must lie in
// [0, rate/2].
func NewGoertzel(freq, rate float64) (*Goertzel, error) {
	if !core.IsFinitePositive(rate) {
		return nil, fmt.Errorf("%w: goertzel sample rate %v", core.ErrInvalidParameter, rate)
	}
	if !core.IsFinite(freq) || freq < 0 || freq > rate/2 {
		return nil, fmt.Errorf("%w: goertzel frequency %v outside [0, %v]", core.ErrInvalidParameter, freq, rate/2)
	}

	return &Goertzel{freq: freq, rate: rate, coeff: 2 * math.Cos(2*math.Pi*freq/rate)}, nil
}

// Frequency returns the detector frequency in Hz.
func (g *Goertzel) Frequency() float64 { return g.freq }

// Count returns the number of samples seen since the last Reset.
func (g *Goertzel) Count() int { return g.n }

// Reset starts a new block.
func (g *Goertzel) Reset() { g.s1, g.s2, g.n = 0, 0, 0 }

// ProcessBlock feeds samples into the running recurrence.
func (g *Goertzel) ProcessBlock(x []float64) {
	s1, s2 := g.s1, g.s2
	for _, v := range x {
		s1, s2 = v+g.coeff*s1-s2, s1
	}
	g.s1, g.s2 = s1, s2
	g.n += len(x)
}

// Power returns |X(f)|^2 for the samples seen so far.
func (g *Goertzel) Power() float64 {
	return max(0, g.s1*g.s1+g.s2*g.s2-g.coeff*g.s1*g.s2)
}

// Amplitude converts Power to the peak amplitude of a sine at the detector
// frequency: a sine of amplitude A over N samples has power (A*N/2)^2.
func (g *Goertzel) Amplitude() float64 {
	if g.n == 0 {
		return 0
	}

	return 2 * math.Sqrt(g.Power()) / float64(g.n)
}

// AnalyzeBlock returns the Goertzel power of x at freq in one call.
func AnalyzeBlock(x []float64, freq, rate float64) (float64, error) {
	g, err := NewGoertzel(freq, rate)
	if err != nil {
		return 0, err
	}
	g.ProcessBlock(x)

	return g.Power(), nil
}

// ToneAmplitude estimates the peak amplitude of the freq component of x.
func ToneAmplitude(x []float64, freq, rate float64) (float64, error) {
	g, err := NewGoertzel(freq, rate)
	if err != nil {
		return 0, err
	}
	g.ProcessBlock(x)

	return g.Amplitude(), nil
}
