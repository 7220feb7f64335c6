package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/window"
)

const (
	minAnalysisSize = 64
	maxAnalysisSize = 1 << 16
)

// ErrTooShort is returned when a signal has fewer samples than one analysis
// frame.
var ErrTooShort = errors.New("spectrum: signal too short")

// DominantFrequency estimates the strongest frequency in x. The analysis
// frame is the largest power of two that fits (up to 65536 samples), taken
// from the middle of x and Hann-windowed. The peak bin is refined by
// parabolic interpolation on log magnitudes. A silent signal yields 0.
func DominantFrequency(x []float64, sampleRate float64) (float64, error) {
	if !core.IsFinitePositive(sampleRate) {
		return 0, fmt.Errorf("%w: spectrum sample rate must be positive and finite: %v",
			core.ErrInvalidParameter, sampleRate)
	}

	mag, n, err := frameMagnitude(x)
	if err != nil {
		return 0, err
	}

	peak := 1
	for k := 2; k < len(mag)-1; k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}

	if mag[peak] <= 0 {
		return 0, nil
	}

	delta := 0.0
	if peak+1 < len(mag) {
		a := math.Log(mag[peak-1] + 1e-300)
		b := math.Log(mag[peak])
		c := math.Log(mag[peak+1] + 1e-300)

		if den := a - 2*b + c; den != 0 {
			delta = core.Clamp(0.5*(a-c)/den, -0.5, 0.5)
		}
	}

	return (float64(peak) + delta) * sampleRate / float64(n), nil
}

// MagnitudeSpectrum returns |X[k]| for k in [0, n/2] of a Hann-windowed
// frame taken from the middle of x, together with the frame size n.
func MagnitudeSpectrum(x []float64) ([]float64, int, error) {
	return frameMagnitude(x)
}

func frameMagnitude(x []float64) ([]float64, int, error) {
	if len(x) < minAnalysisSize {
		return nil, 0, fmt.Errorf("%w: %d samples, need %d", ErrTooShort, len(x), minAnalysisSize)
	}

	n := minAnalysisSize
	for n*2 <= len(x) && n*2 <= maxAnalysisSize {
		n *= 2
	}

	start := (len(x) - n) / 2
	frame := core.Clone(x[start : start+n])
	window.Apply(window.TypeHann, frame, window.WithPeriodic())

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, 0, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	src := make([]complex128, n)
	for i, v := range frame {
		src[i] = complex(v, 0)
	}

	bins := make([]complex128, n)
	if err := plan.Forward(bins, src); err != nil {
		return nil, 0, fmt.Errorf("spectrum: forward fft: %w", err)
	}

	return Magnitude(bins[:n/2+1]), n, nil
}
