package loudness

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/internal/testutil"
)

func TestLoudnessSine(t *testing.T) {
	sampleRate := 48000.0
	meter := NewMeter(WithSampleRate(sampleRate), WithChannels(1))

	// Mean square of a full-scale sine is 0.5. The shelf adds about 0.67 dB
	// at 1 kHz: -0.691 + 10*log10(0.5*1.1668) = -3.03 LUFS.
	sig := testutil.DeterministicSine(1000, sampleRate, 1.0, int(sampleRate*4))

	meter.StartIntegration()
	for _, s := range sig {
		meter.ProcessSample([]float64{s})
	}

	const expected, tolerance = -3.031, 0.2
	for name, got := range map[string]float64{
		"momentary":  meter.Momentary(),
		"short-term": meter.ShortTerm(),
		"integrated": meter.Integrated(),
	} {
		if math.Abs(got-expected) > tolerance {
			t.Errorf("%s loudness = %v, want %v", name, got, expected)
		}
	}
}

func TestLoudnessStereoSine(t *testing.T) {
	fs := 48000.0
	meter := NewMeter(WithSampleRate(fs), WithChannels(2))
	sig := testutil.DeterministicSine(1000, fs, 1.0, int(fs*4))

	meter.StartIntegration()
	for _, s := range sig {
		meter.ProcessSample([]float64{s, s})
	}

	// Channel powers add: 3.01 dB above mono.
	if got := meter.Integrated(); math.Abs(got-(-0.021)) > 0.2 {
		t.Errorf("stereo integrated loudness = %v, want -0.021", got)
	}
}

func TestLoudnessSilence(t *testing.T) {
	m := NewMeter(WithChannels(1))
	m.StartIntegration()
	m.ProcessBlock(make([]float64, 48000))

	if mom := m.Momentary(); mom > -100 {
		t.Errorf("silence momentary = %v, want floor", mom)
	}
	if !math.IsInf(m.Integrated(), -1) {
		t.Errorf("silence integrated = %v, want -Inf", m.Integrated())
	}
}

func TestLoudnessGating(t *testing.T) {
	sampleRate := 48000.0
	meter := NewMeter(WithSampleRate(sampleRate), WithChannels(1))

	high := testutil.DeterministicSine(1000, sampleRate, 1.0, int(sampleRate*10))
	low := testutil.DeterministicSine(1000, sampleRate, 0.0001, int(sampleRate*10)) // -80 dB

	meter.StartIntegration()
	meter.ProcessBlock(high)
	highLoudness := meter.Integrated()

	meter.ProcessBlock(low)
	if total := meter.Integrated(); math.Abs(highLoudness-total) > 0.1 {
		t.Errorf("gating failed: high %v, total %v", highLoudness, total)
	}
}

func TestMeasure(t *testing.T) {
	buf := testutil.SineBuffer(t, 1000, 48000, 2, 4, 0.5)

	got, err := Measure(buf)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	// Half amplitude is 6.02 dB below the stereo full-scale figure.
	testutil.RequireWithin(t, "integrated", got.Integrated, -0.021-6.02, 0.2)
	testutil.RequireWithin(t, "max momentary", got.MaxMomentary, got.Integrated, 0.2)
	testutil.RequireWithin(t, "max short-term", got.MaxShortTerm, got.Integrated, 0.2)
	testutil.RequireWithin(t, "peak", got.Peak, 0.5, 1e-3)

	short, err := Measure(testutil.SineBuffer(t, 1000, 48000, 1, 1, 0.5))
	if err != nil {
		t.Fatalf("Measure(short) error = %v", err)
	}
	if !math.IsInf(short.MaxShortTerm, -1) {
		t.Errorf("MaxShortTerm for 1 s = %v, want -Inf", short.MaxShortTerm)
	}

	if _, err := Measure(nil); !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("Measure(nil) error = %v", err)
	}
}

func TestMeterResetAndPeaks(t *testing.T) {
	m := NewMeter(WithSampleRate(8000), WithChannels(2))
	m.ProcessBlock([]float64{0.25, -0.75, 0.5, 0.1, 0.9})

	peaks := m.Peaks()
	if peaks[0] != 0.5 || peaks[1] != 0.75 {
		t.Fatalf("Peaks() = %v, want [0.5 0.75]", peaks)
	}

	m.Reset()
	if p := m.Peaks(); p[0] != 0 || p[1] != 0 {
		t.Fatalf("Peaks() after Reset = %v", p)
	}
	if !math.IsInf(m.MaxMomentary(), -1) {
		t.Fatalf("MaxMomentary() after Reset = %v", m.MaxMomentary())
	}
}
