package remix

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/effects/pitch"
	"github.com/cwbudde/algo-remix/dsp/gain"
	"github.com/cwbudde/algo-remix/dsp/tempo"
)

const (
	// MinTempoRatio is the smallest tempo ratio applied.
	MinTempoRatio = tempo.MinRatio
	// MaxPitchSemitones bounds the pitch shift in both directions.
	MaxPitchSemitones = pitch.MaxSemitones
	// MinGainDB and MaxGainDB bound the gain.
	MinGainDB = gain.MinDB
	MaxGainDB = gain.MaxDB
)

// PitchMode selects the pitch-shifting algorithm.
type PitchMode int

const (
	// PitchModeTimeDomain shifts with WSOLA followed by interpolation.
	PitchModeTimeDomain PitchMode = iota
	// PitchModeSpectral shifts with a phase vocoder.
	PitchModeSpectral
)

// String returns the mode name used in presets.
func (m PitchMode) String() string {
	return m.method().String()
}

func (m PitchMode) method() pitch.Method {
	if m == PitchModeSpectral {
		return pitch.MethodSpectral
	}
	return pitch.MethodTimeDomain
}

// ParsePitchMode accepts "time-domain" (or "wsola", or empty) and
// "spectral" (or "phase-vocoder").
func ParsePitchMode(name string) (PitchMode, error) {
	m, err := pitch.ParseMethod(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return 0, err
	}
	if m == pitch.MethodSpectral {
		return PitchModeSpectral, nil
	}
	return PitchModeTimeDomain, nil
}

// Params are the user-facing effect settings.
type Params struct {
	// TempoRatio scales playback speed: 1 keeps it, 2 plays twice as fast.
	TempoRatio float64
	// PitchSemitones shifts pitch; 12 is one octave up.
	PitchSemitones float64
	// GainDB changes volume in decibels.
	GainDB float64
	// LegacyCoupledPitch makes the pitch stage a plain rate change, so the
	// duration scales by 2^(-semitones/12) as well.
	LegacyCoupledPitch bool
	// PitchMode selects the pitch-shifting algorithm.
	PitchMode PitchMode
}

// DefaultParams returns the identity settings.
func DefaultParams() Params {
	return Params{TempoRatio: 1}
}

// IsIdentity reports whether p leaves audio unchanged.
func (p Params) IsIdentity() bool {
	return p.TempoRatio == 1 && p.PitchSemitones == 0 && p.GainDB == 0
}

// Normalize returns p with out-of-range values clamped:
//   - a tempo ratio in (0, MinTempoRatio) becomes MinTempoRatio; zero,
//     negative or NaN ratios are kept and rejected by the pipeline
//   - a non-finite pitch becomes 0, others are clamped to ±MaxPitchSemitones
//   - a NaN gain becomes 0, others are clamped to [MinGainDB, MaxGainDB]
func (p Params) Normalize() Params {
	if core.IsFinitePositive(p.TempoRatio) && p.TempoRatio < MinTempoRatio {
		p.TempoRatio = MinTempoRatio
	}

	p.PitchSemitones = core.Clamp(core.FiniteOr(p.PitchSemitones, 0), -MaxPitchSemitones, MaxPitchSemitones)

	if math.IsNaN(p.GainDB) {
		p.GainDB = 0
	}
	p.GainDB = core.Clamp(p.GainDB, MinGainDB, MaxGainDB)

	return p
}

// String formats p for logs.
func (p Params) String() string {
	s := fmt.Sprintf("tempo=%g pitch=%+g st gain=%+g dB mode=%v", p.TempoRatio, p.PitchSemitones, p.GainDB, p.PitchMode)
	if p.LegacyCoupledPitch {
		s += " legacy"
	}
	return s
}

// ParsePitch interprets free text as a semitone shift. Empty or unparsable
// text yields 0.
func ParsePitch(text string) float64 {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "st"))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || !core.IsFinite(v) {
		return 0
	}
	return v
}
