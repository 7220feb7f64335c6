package testutil

import (
	"math"
	"testing"
)

func TestZeroCrossingFrequency(t *testing.T) {
	tests := []struct {
		freq, rate float64
	}{
		{440, 44100},
		{880, 44100},
		{1000, 48000},
		{97.5, 8000},
	}
	for _, tc := range tests {
		x := DeterministicSine(tc.freq, tc.rate, 0.8, int(tc.rate))
		got := ZeroCrossingFrequency(x, tc.rate)
		if math.Abs(got-tc.freq) > 0.01*tc.freq {
			t.Fatalf("freq %v: got %v", tc.freq, got)
		}
	}
}

func TestZeroCrossingFrequencyDegenerate(t *testing.T) {
	if got := ZeroCrossingFrequency(DC(0.5, 100), 1000); got != 0 {
		t.Fatalf("DC frequency = %v, want 0", got)
	}
	if got := ZeroCrossingFrequency(nil, 1000); got != 0 {
		t.Fatalf("empty frequency = %v, want 0", got)
	}
}

func TestPeakAbs(t *testing.T) {
	if got := PeakAbs([]float64{0.1, -0.7, 0.3}); got != 0.7 {
		t.Fatalf("PeakAbs = %v, want 0.7", got)
	}
	if got := PeakAbs(nil); got != 0 {
		t.Fatalf("PeakAbs(nil) = %v, want 0", got)
	}
}
