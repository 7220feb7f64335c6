package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/interp"
	"github.com/cwbudde/algo-remix/dsp/tempo"
)

const (
	defaultPitchRatio = 1.0

	// MaxSemitones bounds the shift supported by both shifters.
	MaxSemitones = 24.0

	minPitchRatio = 0.25
	maxPitchRatio = 4.0

	identityEps = 1e-9
)

// PitchShifter performs time-domain pitch shifting: the input is stretched
// by the pitch ratio with a WSOLA tempo.Stretcher and then interpolated back
// to its original length, which scales every frequency by the ratio.
//
// Pitch ratio:
//   - 1.0 = unchanged
//   - 2.0 = one octave up
//   - 0.5 = one octave down
//
// This processor is mono and block-based.
type PitchShifter struct {
	pitchRatio float64
	stretcher  *tempo.Stretcher
}

// NewPitchShifter constructs a time-domain pitch shifter with music-tuned
// WSOLA windows (82/10/28 ms).
func NewPitchShifter(sampleRate float64) (*PitchShifter, error) {
	s, err := tempo.NewStretcher(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("pitch shifter: %w", err)
	}

	return &PitchShifter{pitchRatio: defaultPitchRatio, stretcher: s}, nil
}

// SampleRate returns the current sample rate in Hz.
func (p *PitchShifter) SampleRate() float64 { return p.stretcher.SampleRate() }

// PitchRatio returns the pitch ratio.
func (p *PitchShifter) PitchRatio() float64 { return p.pitchRatio }

// PitchSemitones returns the current pitch shift in semitones.
func (p *PitchShifter) PitchSemitones() float64 { return core.RatioToSemitones(p.pitchRatio) }

// Sequence returns sequence length in milliseconds.
func (p *PitchShifter) Sequence() float64 { return p.stretcher.Sequence() }

// Overlap returns overlap length in milliseconds.
func (p *PitchShifter) Overlap() float64 { return p.stretcher.Overlap() }

// Search returns seek window radius in milliseconds.
func (p *PitchShifter) Search() float64 { return p.stretcher.Search() }

// SetSampleRate rebuilds the stretch windows for a new sample rate. The
// window lengths in milliseconds are kept.
func (p *PitchShifter) SetSampleRate(sampleRate float64) error {
	s, err := tempo.NewStretcher(sampleRate)
	if err != nil {
		return fmt.Errorf("pitch shifter: %w", err)
	}

	if err := s.Configure(p.Sequence(), p.Overlap(), p.Search()); err != nil {
		return err
	}

	p.stretcher = s

	return nil
}

// SetPitchRatio updates the pitch shift ratio.
func (p *PitchShifter) SetPitchRatio(ratio float64) error {
	if err := validateRatio(ratio); err != nil {
		return err
	}

	p.pitchRatio = ratio

	return nil
}

// SetPitchSemitones updates pitch shift in semitones.
func (p *PitchShifter) SetPitchSemitones(semitones float64) error {
	ratio, err := semitoneRatio(semitones)
	if err != nil {
		return err
	}

	return p.SetPitchRatio(ratio)
}

// SetSequence updates sequence length in milliseconds.
func (p *PitchShifter) SetSequence(ms float64) error { return p.stretcher.SetSequence(ms) }

// SetOverlap updates overlap length in milliseconds.
func (p *PitchShifter) SetOverlap(ms float64) error { return p.stretcher.SetOverlap(ms) }

// SetSearch updates seek window radius in milliseconds.
func (p *PitchShifter) SetSearch(ms float64) error { return p.stretcher.SetSearch(ms) }

// Configure sets all three WSOLA windows at once.
func (p *PitchShifter) Configure(sequenceMs, overlapMs, searchMs float64) error {
	return p.stretcher.Configure(sequenceMs, overlapMs, searchMs)
}

// Reset clears processor state.
//
// PitchShifter is stateless between calls, so Reset is a no-op.
func (p *PitchShifter) Reset() {}

// Process pitch-shifts input and returns a new output block with equal length.
func (p *PitchShifter) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	if math.Abs(p.pitchRatio-1) <= identityEps {
		return core.Clone(input)
	}

	stretched := p.stretcher.Stretch(input, p.pitchRatio)

	return interp.ResampleHermite(stretched, len(input))
}

// ProcessChannels pitch-shifts equal-length channels. The channels share
// splice points, so their relative timing survives the shift.
func (p *PitchShifter) ProcessChannels(channels [][]float64) ([][]float64, error) {
	if math.Abs(p.pitchRatio-1) <= identityEps {
		out := make([][]float64, len(channels))
		for i, ch := range channels {
			out[i] = core.Clone(ch)
		}
		return out, nil
	}

	stretched, err := p.stretcher.StretchChannels(channels, p.pitchRatio)
	if err != nil {
		return nil, fmt.Errorf("pitch shifter: %w", err)
	}

	for i, ch := range stretched {
		if len(channels[i]) == 0 {
			stretched[i] = nil
			continue
		}
		stretched[i] = interp.ResampleHermite(ch, len(channels[i]))
	}

	return stretched, nil
}

// ProcessInPlace applies pitch shifting to buf in place.
func (p *PitchShifter) ProcessInPlace(buf []float64) {
	if len(buf) == 0 {
		return
	}

	copy(buf, p.Process(buf))
}

func validateRatio(ratio float64) error {
	if !core.IsFinitePositive(ratio) || ratio < minPitchRatio || ratio > maxPitchRatio {
		return fmt.Errorf("%w: pitch ratio must be in [%g, %g]: %f",
			core.ErrInvalidParameter, minPitchRatio, maxPitchRatio, ratio)
	}

	return nil
}

func semitoneRatio(semitones float64) (float64, error) {
	if !core.IsFinite(semitones) {
		return 0, fmt.Errorf("%w: pitch semitones must be finite: %f", core.ErrInvalidParameter, semitones)
	}

	ratio := core.SemitonesToRatio(semitones)
	if err := validateRatio(ratio); err != nil {
		return 0, fmt.Errorf("pitch semitones out of range: %w", err)
	}

	return ratio, nil
}
