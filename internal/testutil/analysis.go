package testutil

import (
	"math"
	"testing"
)

// ZeroCrossingFrequency estimates the fundamental of a tonal signal from the
// mean spacing of its rising zero crossings. Crossing positions are refined
// by linear interpolation. It returns 0 when fewer than two crossings exist.
func ZeroCrossingFrequency(x []float64, sampleRate float64) float64 {
	first, last := -1.0, -1.0
	count := 0
	for i := 1; i < len(x); i++ {
		if x[i-1] < 0 && x[i] >= 0 {
			pos := float64(i-1) + x[i-1]/(x[i-1]-x[i])
			if first < 0 {
				first = pos
			}
			last = pos
			count++
		}
	}
	if count < 2 || last <= first {
		return 0
	}
	return float64(count-1) * sampleRate / (last - first)
}

// PeakAbs returns the largest absolute sample value.
func PeakAbs(x []float64) float64 {
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// RequireWithin fails t if got differs from want by more than tol.
func RequireWithin(t testing.TB, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v ± %v", name, got, want, tol)
	}
}
