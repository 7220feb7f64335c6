package pitch

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/spectrum"
	"github.com/cwbudde/algo-remix/internal/testutil"
	timestats "github.com/cwbudde/algo-remix/stats/time"
)

func TestNewSpectralPitchShifter(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewSpectralPitchShifter(sr); !errors.Is(err, core.ErrInvalidParameter) {
			t.Fatalf("NewSpectralPitchShifter(%v) error = %v", sr, err)
		}
	}

	s, err := NewSpectralPitchShifter(44100)
	if err != nil {
		t.Fatalf("NewSpectralPitchShifter() error = %v", err)
	}
	if s.PitchRatio() != 1 || s.FrameSize() != defaultFrameSize ||
		s.AnalysisHop() != defaultAnalysisHop || s.SynthesisHop() != defaultAnalysisHop ||
		s.EffectivePitchRatio() != 1 {
		t.Fatalf("unexpected defaults: ratio %v frame %d hops %d/%d",
			s.PitchRatio(), s.FrameSize(), s.AnalysisHop(), s.SynthesisHop())
	}
}

func TestSpectralPitchShifterSetters(t *testing.T) {
	s, err := NewSpectralPitchShifter(48000)
	if err != nil {
		t.Fatalf("NewSpectralPitchShifter() error = %v", err)
	}

	bad := []struct {
		name string
		err  error
	}{
		{"ratio 0", s.SetPitchRatio(0)},
		{"ratio 0.1", s.SetPitchRatio(0.1)},
		{"ratio 6", s.SetPitchRatio(6)},
		{"ratio NaN", s.SetPitchRatio(math.NaN())},
		{"semitones NaN", s.SetPitchSemitones(math.NaN())},
		{"sample rate 0", s.SetSampleRate(0)},
		{"frame 1000", s.SetFrameSize(1000)},
		{"frame 32", s.SetFrameSize(32)},
		{"hop 0", s.SetAnalysisHop(0)},
		{"hop 1024", s.SetAnalysisHop(1024)},
	}
	for _, tt := range bad {
		if !errors.Is(tt.err, core.ErrInvalidParameter) {
			t.Fatalf("%s: error = %v, want ErrInvalidParameter", tt.name, tt.err)
		}
	}

	if err := s.SetPitchSemitones(7); err != nil {
		t.Fatalf("SetPitchSemitones() error = %v", err)
	}
	if err := s.SetFrameSize(2048); err != nil {
		t.Fatalf("SetFrameSize() error = %v", err)
	}
	if err := s.SetAnalysisHop(512); err != nil {
		t.Fatalf("SetAnalysisHop() error = %v", err)
	}
	if got, want := s.SynthesisHop(), int(math.Round(512*core.SemitonesToRatio(7))); got != want {
		t.Fatalf("SynthesisHop() = %d, want %d", got, want)
	}

	// Shrinking the frame below the hop pulls the hop back to a quarter frame.
	if err := s.SetFrameSize(256); err != nil {
		t.Fatalf("SetFrameSize() error = %v", err)
	}
	if s.AnalysisHop() != 64 {
		t.Fatalf("AnalysisHop() = %d, want 64", s.AnalysisHop())
	}
}

func TestSpectralPitchShifterKeepsLength(t *testing.T) {
	s, _ := NewSpectralPitchShifter(48000)
	input := testutil.DeterministicNoise(5, 0.5, 3001)

	for _, ratio := range []float64{0.5, 0.9, 1.1, 1.25, 2} {
		if err := s.SetPitchRatio(ratio); err != nil {
			t.Fatalf("SetPitchRatio(%v) error = %v", ratio, err)
		}
		out := s.Process(input)
		if len(out) != len(input) {
			t.Fatalf("ratio %v: len = %d, want %d", ratio, len(out), len(input))
		}
		testutil.RequireFinite(t, out)

		buf := core.Clone(input)
		s.ProcessInPlace(buf)
		testutil.RequireSliceNearlyEqual(t, buf, out, 0)
	}

	if out := s.Process(nil); out != nil {
		t.Fatalf("Process(nil) = %v", out)
	}
}

func TestSpectralPitchShifterIdentity(t *testing.T) {
	s, _ := NewSpectralPitchShifter(48000)
	input := testutil.DeterministicSine(1000, 48000, 0.5, 4096)

	out := s.Process(input)
	testutil.RequireSliceNearlyEqual(t, out, input, 0)
}

func TestSpectralPitchShifterMovesFrequency(t *testing.T) {
	const sr = 44100.0
	input := testutil.DeterministicSine(440, sr, 0.5, int(sr))

	tests := []struct {
		name      string
		semitones float64
	}{
		{"bin shift up", 2},
		{"bin shift down", -2},
		{"stretch up", 12},
		{"stretch down", -7},
	}

	for _, tt := range tests {
		s, _ := NewSpectralPitchShifter(sr)
		if err := s.SetPitchSemitones(tt.semitones); err != nil {
			t.Fatalf("%s: SetPitchSemitones() error = %v", tt.name, err)
		}

		out := s.Process(input)
		got, err := spectrum.DominantFrequency(out, sr)
		if err != nil {
			t.Fatalf("%s: DominantFrequency() error = %v", tt.name, err)
		}

		want := 440 * s.EffectivePitchRatio()
		if math.Abs(got-want)/want > 0.03 {
			t.Fatalf("%s: frequency = %.1f Hz, want %.1f Hz", tt.name, got, want)
		}
	}
}

func TestSpectralPitchShifterKeepsLevel(t *testing.T) {
	const sr = 44100.0
	input := testutil.DeterministicSine(440, sr, 0.5, int(sr))
	inRMS := timestats.RMS(input)

	for _, semitones := range []float64{1, -1, 2, -2, 7, 12, -7} {
		s, _ := NewSpectralPitchShifter(sr)
		if err := s.SetPitchSemitones(semitones); err != nil {
			t.Fatalf("SetPitchSemitones(%v) error = %v", semitones, err)
		}

		out := s.Process(input)
		if rms := timestats.RMS(out); math.Abs(rms-inRMS)/inRMS > 0.1 {
			t.Errorf("%+v st: rms = %.3f, want %.3f", semitones, rms, inRMS)
		}
		if peak := testutil.PeakAbs(out); peak > 0.6 {
			t.Errorf("%+v st: peak = %.3f, input peak 0.5", semitones, peak)
		}
		if head := testutil.PeakAbs(out[:256]); head > 0.6 {
			t.Errorf("%+v st: first 256 samples peak = %.3f", semitones, head)
		}
		if tail := testutil.PeakAbs(out[len(out)-256:]); tail > 0.6 {
			t.Errorf("%+v st: last 256 samples peak = %.3f", semitones, tail)
		}
	}
}

func TestHannLobe(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 1},
		{1, 0.5},
		{-1, 0.5},
		{0.5, 4 / (3 * math.Pi) * 2},
		{2, 0},
	}
	for _, tt := range tests {
		if got := hannLobe(tt.x); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("hannLobe(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestSpectralPitchShifterCallsAreIndependent(t *testing.T) {
	s, _ := NewSpectralPitchShifter(48000)
	_ = s.SetPitchSemitones(5)
	input := testutil.DeterministicNoise(9, 0.4, 6000)

	first := s.Process(input)
	second := s.Process(input)
	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}
