package pitch

import (
	"fmt"

	"github.com/cwbudde/algo-remix/dsp/core"
)

// PitchProcessor defines the shared API for interchangeable pitch shifters.
//
// Implementations include [PitchShifter] (time-domain WSOLA) and
// [SpectralPitchShifter] (frequency-domain phase-vocoder). Both keep the
// length of their input.
//
//nolint:revive
type PitchProcessor interface {
	SampleRate() float64
	SetSampleRate(sampleRate float64) error

	PitchRatio() float64
	PitchSemitones() float64
	SetPitchRatio(ratio float64) error
	SetPitchSemitones(semitones float64) error

	Reset()
	Process(input []float64) []float64
	ProcessInPlace(buf []float64)
}

var (
	_ PitchProcessor = (*PitchShifter)(nil)
	_ PitchProcessor = (*SpectralPitchShifter)(nil)
)

// Method selects a PitchProcessor implementation.
type Method int

const (
	// MethodTimeDomain selects PitchShifter.
	MethodTimeDomain Method = iota
	// MethodSpectral selects SpectralPitchShifter.
	MethodSpectral
)

// String returns the method name used in presets and flags.
func (m Method) String() string {
	switch m {
	case MethodTimeDomain:
		return "time-domain"
	case MethodSpectral:
		return "spectral"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod accepts the names returned by Method.String. An empty name
// selects MethodTimeDomain.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "", "time-domain", "wsola":
		return MethodTimeDomain, nil
	case "spectral", "phase-vocoder":
		return MethodSpectral, nil
	default:
		return 0, fmt.Errorf("%w: unknown pitch method %q", core.ErrInvalidParameter, name)
	}
}

// NewProcessor returns a processor of the given method shifting by
// semitones. Processors are not safe for concurrent use; create one per
// goroutine.
func NewProcessor(m Method, sampleRate, semitones float64) (PitchProcessor, error) {
	var (
		p   PitchProcessor
		err error
	)

	switch m {
	case MethodTimeDomain:
		p, err = NewPitchShifter(sampleRate)
	case MethodSpectral:
		p, err = NewSpectralPitchShifter(sampleRate)
	default:
		return nil, fmt.Errorf("%w: unknown pitch method %v", core.ErrInvalidParameter, m)
	}

	if err != nil {
		return nil, err
	}

	if err := p.SetPitchSemitones(semitones); err != nil {
		return nil, err
	}

	return p, nil
}
