package tempo

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/interp"
	"github.com/cwbudde/algo-remix/dsp/resample"
)

// MinRatio is the smallest tempo ratio applied. Positive ratios below it are
// raised to it.
const MinRatio = 0.05

// Mode selects how a tempo change treats pitch.
type Mode int

const (
	// ModePreservePitch changes duration only.
	ModePreservePitch Mode = iota
	// ModeLegacyCoupled plays the samples back at a different rate, so
	// duration and pitch change together like a tape machine.
	ModeLegacyCoupled
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePreservePitch:
		return "preserve-pitch"
	case ModeLegacyCoupled:
		return "legacy-coupled"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// NormalizeRatio validates a tempo ratio. Ratios that are not positive and
// finite fail with core.ErrInvalidParameter; ratios in (0, MinRatio) are
// raised to MinRatio.
func NormalizeRatio(ratio float64) (float64, error) {
	if !core.IsFinitePositive(ratio) {
		return 0, fmt.Errorf("%w: tempo ratio must be positive and finite: %v",
			core.ErrInvalidParameter, ratio)
	}

	return math.Max(ratio, MinRatio), nil
}

// Change applies a tempo ratio to input recorded at sampleRate. A ratio of 2
// plays twice as fast, so the result holds about len(input)/2 samples.
func Change(input []float64, sampleRate, ratio float64, mode Mode) ([]float64, error) {
	s, err := NewStretcher(sampleRate)
	if err != nil {
		return nil, err
	}

	return s.Change(input, ratio, mode)
}

// Change applies a tempo ratio using the stretcher's sample rate and windows.
func (s *Stretcher) Change(input []float64, ratio float64, mode Mode) ([]float64, error) {
	out, err := s.ChangeChannels([][]float64{input}, ratio, mode)
	if err != nil {
		return nil, err
	}

	return out[0], nil
}

// ChangeChannels applies a tempo ratio to equal-length channels. In
// ModePreservePitch the channels share splice points.
func (s *Stretcher) ChangeChannels(channels [][]float64, ratio float64, mode Mode) ([][]float64, error) {
	ratio, err := NormalizeRatio(ratio)
	if err != nil {
		return nil, err
	}

	if math.Abs(ratio-1) <= identityEps {
		out := make([][]float64, len(channels))
		for i, ch := range channels {
			out[i] = core.Clone(ch)
		}
		return out, nil
	}

	switch mode {
	case ModePreservePitch:
		return s.StretchChannels(channels, 1/ratio)
	case ModeLegacyCoupled:
		out := make([][]float64, len(channels))
		for i, ch := range channels {
			res, err := s.playbackRate(ch, ratio)
			if err != nil {
				return nil, err
			}
			out[i] = res
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown tempo mode %v", core.ErrInvalidParameter, mode)
	}
}

// playbackRate treats input as recorded at sampleRate*ratio and converts it
// back to sampleRate.
func (s *Stretcher) playbackRate(input []float64, ratio float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, nil
	}

	targetLen := targetLength(len(input), 1/ratio)
	if len(input) < s.sequenceLen {
		return interp.ResampleLinear(input, targetLen), nil
	}

	out, err := resample.ConvertRates(input, s.sampleRate*ratio, s.sampleRate,
		resample.WithMaxDenominator(512))
	if err != nil {
		return nil, fmt.Errorf("tempo: playback rate: %w", err)
	}

	return core.FitLength(out, targetLen), nil
}
