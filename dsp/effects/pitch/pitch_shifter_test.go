package pitch

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/internal/testutil"
)

func newShifter(t *testing.T, sampleRate, semitones float64) *PitchShifter {
	t.Helper()

	p, err := NewPitchShifter(sampleRate)
	if err != nil {
		t.Fatalf("NewPitchShifter(%v): %v", sampleRate, err)
	}
	if err := p.SetPitchSemitones(semitones); err != nil {
		t.Fatalf("SetPitchSemitones(%v): %v", semitones, err)
	}

	return p
}

func TestNewPitchShifterRejectsBadRates(t *testing.T) {
	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		if _, err := NewPitchShifter(sr); !errors.Is(err, core.ErrInvalidParameter) {
			t.Errorf("NewPitchShifter(%v) error = %v", sr, err)
		}
	}
}

func TestPitchShifterRatioBounds(t *testing.T) {
	p := newShifter(t, 48000, 0)

	for _, r := range []float64{0.25, 0.5, 1, 2, 4} {
		if err := p.SetPitchRatio(r); err != nil || p.PitchRatio() != r {
			t.Errorf("SetPitchRatio(%v) = %v, ratio now %v", r, err, p.PitchRatio())
		}
	}

	for _, r := range []float64{0, 0.2, 4.5, math.NaN(), math.Inf(1)} {
		if err := p.SetPitchRatio(r); err == nil {
			t.Errorf("SetPitchRatio(%v) accepted", r)
		}
	}
}

func TestPitchShifterBadOverlapKeepsWindows(t *testing.T) {
	p := newShifter(t, 48000, 0)
	if err := p.SetSequence(20); err != nil {
		t.Fatal(err)
	}

	before := p.Overlap()
	if err := p.SetOverlap(30); err == nil {
		t.Fatal("overlap longer than the sequence was accepted")
	}
	if p.Overlap() != before {
		t.Fatalf("overlap = %v after rejected update, want %v", p.Overlap(), before)
	}
}

func TestPitchShifterUnisonCopies(t *testing.T) {
	p := newShifter(t, 48000, 0)
	in := testutil.DeterministicSine(440, 48000, 0.8, 4096)

	out := p.Process(in)
	testutil.RequireSliceNearlyEqual(t, out, in, 0)

	out[0] = 42
	if in[0] == 42 {
		t.Fatal("Process aliased its input")
	}
}

func TestPitchShifterInPlaceAndRepeatable(t *testing.T) {
	in := testutil.DeterministicSine(330, 48000, 0.7, 8192)

	p := newShifter(t, 48000, 7)
	want := p.Process(in)
	p.Reset()
	testutil.RequireSliceNearlyEqual(t, p.Process(in), want, 0)

	buf := append([]float64(nil), in...)
	newShifter(t, 48000, 7).ProcessInPlace(buf)
	testutil.RequireSliceNearlyEqual(t, buf, want, 1e-12)
}

func TestPitchShifterMovesFrequency(t *testing.T) {
	const sr = 48000.0
	in := testutil.DeterministicSine(220, sr, 0.8, 60000)

	tests := []struct {
		semitones float64
		want, tol float64
	}{
		{12, 440, 10},
		{-12, 110, 6},
		{7, 220 * math.Pow(2, 7.0/12), 10},
	}
	for _, tt := range tests {
		out := newShifter(t, sr, tt.semitones).Process(in)
		if len(out) != len(in) {
			t.Fatalf("%+v st: length %d, want %d", tt.semitones, len(out), len(in))
		}
		testutil.RequireFinite(t, out)

		got := testutil.ZeroCrossingFrequency(out[8000:52000], sr)
		testutil.RequireWithin(t, fmt.Sprintf("%+v st frequency", tt.semitones), got, tt.want, tt.tol)
	}
}

func TestPitchShifterTinyInput(t *testing.T) {
	p := newShifter(t, 48000, 0)
	if err := p.SetPitchRatio(1.7); err != nil {
		t.Fatal(err)
	}

	in := []float64{1, -0.25, 0.1, 0, -0.1, 0.2, -0.3, 0.4}
	out := p.Process(in)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	testutil.RequireFinite(t, out)

	if p.Process(nil) != nil {
		t.Fatal("empty input should give nil")
	}
}

func TestPitchShifterSemitoneRange(t *testing.T) {
	p, err := NewPitchShifter(48000)
	if err != nil {
		t.Fatalf("NewPitchShifter() error = %v", err)
	}

	for _, st := range []float64{-MaxSemitones, -7, 0, 7, MaxSemitones} {
		if err := p.SetPitchSemitones(st); err != nil {
			t.Fatalf("SetPitchSemitones(%v) error = %v", st, err)
		}
		if got := p.PitchSemitones(); math.Abs(got-st) > 1e-9 {
			t.Fatalf("PitchSemitones() = %v, want %v", got, st)
		}
	}

	for _, st := range []float64{-25, 25, math.NaN(), math.Inf(-1)} {
		if err := p.SetPitchSemitones(st); !errors.Is(err, core.ErrInvalidParameter) {
			t.Fatalf("SetPitchSemitones(%v) error = %v, want ErrInvalidParameter", st, err)
		}
	}
}

func TestPitchShifterSetSampleRateKeepsWindows(t *testing.T) {
	p, err := NewPitchShifter(44100)
	if err != nil {
		t.Fatalf("NewPitchShifter() error = %v", err)
	}

	if err := p.Configure(50, 12, 20); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if err := p.SetSampleRate(96000); err != nil {
		t.Fatalf("SetSampleRate() error = %v", err)
	}

	if p.SampleRate() != 96000 || p.Sequence() != 50 || p.Overlap() != 12 || p.Search() != 20 {
		t.Fatalf("state = %v Hz %v/%v/%v ms", p.SampleRate(), p.Sequence(), p.Overlap(), p.Search())
	}

	if err := p.SetSampleRate(0); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("SetSampleRate(0) error = %v, want ErrInvalidParameter", err)
	}

	if p.SampleRate() != 96000 {
		t.Fatalf("sample rate changed to %v after rejected update", p.SampleRate())
	}
}

func TestNewProcessor(t *testing.T) {
	tests := []struct {
		method Method
		want   string
	}{
		{MethodTimeDomain, "*pitch.PitchShifter"},
		{MethodSpectral, "*pitch.SpectralPitchShifter"},
	}

	for _, tt := range tests {
		p, err := NewProcessor(tt.method, 48000, 5)
		if err != nil {
			t.Fatalf("NewProcessor(%v) error = %v", tt.method, err)
		}

		if got := fmt.Sprintf("%T", p); got != tt.want {
			t.Fatalf("NewProcessor(%v) type = %s, want %s", tt.method, got, tt.want)
		}

		if math.Abs(p.PitchSemitones()-5) > 1e-9 {
			t.Fatalf("PitchSemitones() = %v, want 5", p.PitchSemitones())
		}
	}

	if _, err := NewProcessor(Method(9), 48000, 0); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("unknown method error = %v", err)
	}

	if _, err := NewProcessor(MethodSpectral, 48000, 30); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("out-of-range semitones error = %v", err)
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{in: "", want: MethodTimeDomain},
		{in: "time-domain", want: MethodTimeDomain},
		{in: "wsola", want: MethodTimeDomain},
		{in: "spectral", want: MethodSpectral},
		{in: "phase-vocoder", want: MethodSpectral},
		{in: "granular", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}

		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if MethodTimeDomain.String() != "time-domain" || MethodSpectral.String() != "spectral" {
		t.Fatal("unexpected method names")
	}
}

func TestPitchShifterProcessChannels(t *testing.T) {
	const sr = 44100.0

	p, err := NewPitchShifter(sr)
	if err != nil {
		t.Fatalf("NewPitchShifter() error = %v", err)
	}
	if err := p.SetPitchSemitones(12); err != nil {
		t.Fatalf("SetPitchSemitones() error = %v", err)
	}

	left := testutil.DeterministicSine(440, sr, 0.5, int(sr))
	right := make([]float64, len(left))
	for i, v := range left {
		right[i] = 0.5 * v
	}

	out, err := p.ProcessChannels([][]float64{left, right})
	if err != nil {
		t.Fatalf("ProcessChannels() error = %v", err)
	}
	if len(out) != 2 || len(out[0]) != len(left) || len(out[1]) != len(left) {
		t.Fatalf("ProcessChannels() lengths changed")
	}

	for i := range out[0] {
		if math.Abs(out[1][i]-0.5*out[0][i]) > 1e-9 {
			t.Fatalf("channels drifted at %d: %v vs %v", i, out[1][i], 0.5*out[0][i])
		}
	}

	f := testutil.ZeroCrossingFrequency(out[0][4410:len(out[0])-4410], sr)
	testutil.RequireWithin(t, "frequency", f, 880, 20)
}

func TestPitchShifterProcessChannelsRejectsRagged(t *testing.T) {
	p, _ := NewPitchShifter(44100)
	_ = p.SetPitchSemitones(3)

	_, err := p.ProcessChannels([][]float64{make([]float64, 8000), make([]float64, 7999)})
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("ProcessChannels(ragged) error = %v", err)
	}
}
