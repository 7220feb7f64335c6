// Package time computes time-domain level statistics used to report on
// rendered audio.
package time

import (
	"math"

	"github.com/cwbudde/algo-remix/dsp/core"
)

// Stats holds time-domain level statistics of one signal.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64 // mean
	RMS            float64
	RMS_dB         float64
	Peak           float64 // max |x|
	PeakPos        int
	Peak_dB        float64
	CrestFactor    float64 // peak / RMS (linear)
	CrestFactor_dB float64
	ZeroCrossings  int
	Clipped        int // samples with |x| >= 1
}

func emptyStats() Stats {
	return Stats{
		RMS_dB:         math.Inf(-1),
		Peak_dB:        math.Inf(-1),
		CrestFactor_dB: math.Inf(-1),
	}
}

// Calculate computes all statistics in a single pass.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return emptyStats()
	}

	var (
		sum, c  float64
		sumSq   float64
		peak    float64
		peakPos int
		zc      int
		clipped int
	)

	for i, x := range signal {
		// Kahan summation for the mean.
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t

		sumSq += x * x

		a := math.Abs(x)
		if a > peak {
			peak = a
			peakPos = i
		}
		if a >= 1 {
			clipped++
		}

		if i > 0 && signal[i-1]*x < 0 {
			zc++
		}
	}

	nf := float64(n)
	rms := math.Sqrt(sumSq / nf)

	s := Stats{
		Length:         n,
		DC:             sum / nf,
		RMS:            rms,
		RMS_dB:         core.LinearToDB(rms),
		Peak:           peak,
		PeakPos:        peakPos,
		Peak_dB:        core.LinearToDB(peak),
		CrestFactor_dB: math.Inf(-1),
		ZeroCrossings:  zc,
		Clipped:        clipped,
	}
	if rms > 0 {
		s.CrestFactor = peak / rms
		s.CrestFactor_dB = core.LinearToDB(s.CrestFactor)
	}

	return s
}

// Summarize merges the statistics of equal-rate channels. RMS is the power
// mean across channels; Peak is the largest channel peak; PeakPos is its
// frame index.
func Summarize(channels [][]float64) Stats {
	if len(channels) == 0 {
		return emptyStats()
	}

	var (
		total   Stats
		power   float64
		samples int
	)

	total.PeakPos = -1
	for _, ch := range channels {
		s := Calculate(ch)
		if s.Length == 0 {
			continue
		}

		total.Length = max(total.Length, s.Length)
		total.DC += s.DC * float64(s.Length)
		power += s.RMS * s.RMS * float64(s.Length)
		samples += s.Length
		total.ZeroCrossings += s.ZeroCrossings
		total.Clipped += s.Clipped

		if total.PeakPos < 0 || s.Peak > total.Peak {
			total.Peak = s.Peak
			total.PeakPos = s.PeakPos
		}
	}

	if samples == 0 {
		return emptyStats()
	}

	total.DC /= float64(samples)
	total.RMS = math.Sqrt(power / float64(samples))
	total.RMS_dB = core.LinearToDB(total.RMS)
	total.Peak_dB = core.LinearToDB(total.Peak)
	total.CrestFactor_dB = math.Inf(-1)
	if total.RMS > 0 {
		total.CrestFactor = total.Peak / total.RMS
		total.CrestFactor_dB = core.LinearToDB(total.CrestFactor)
	}

	return total
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}

// CrestFactor returns peak / RMS, or 0 for a silent signal.
func CrestFactor(signal []float64) float64 {
	r := RMS(signal)
	if r == 0 {
		return 0
	}

	return Peak(signal) / r
}

// ZeroCrossings counts consecutive sample pairs with opposite signs.
func ZeroCrossings(signal []float64) int {
	count := 0
	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			count++
		}
	}

	return count
}
