package dither

import (
	"math"
	"testing"
)

func mustQuantizer(t *testing.T, opts ...Option) *Quantizer {
	t.Helper()

	q, err := NewQuantizer(44100, opts...)
	if err != nil {
		t.Fatalf("NewQuantizer: %v", err)
	}

	return q
}

func TestNewQuantizerDefaults(t *testing.T) {
	q := mustQuantizer(t)
	if q.BitDepth() != 16 || q.DitherType() != DitherTriangular {
		t.Fatalf("defaults = %d bits %v, want 16 bits Triangular", q.BitDepth(), q.DitherType())
	}

	if lo, hi := q.Range(); lo != -32768 || hi != 32767 {
		t.Fatalf("Range() = %d, %d", lo, hi)
	}
}

func TestNewQuantizerRejects(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		opt  Option
	}{
		{"zero rate", 0, nil},
		{"nan rate", math.NaN(), nil},
		{"inf rate", math.Inf(1), nil},
		{"bits 0", 44100, WithBitDepth(0)},
		{"bits 33", 44100, WithBitDepth(33)},
		{"dither type", 44100, WithDitherType(DitherType(42))},
		{"negative amplitude", 44100, WithDitherAmplitude(-1)},
		{"nan amplitude", 44100, WithDitherAmplitude(math.NaN())},
		{"preset", 44100, WithFIRPreset(Preset(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewQuantizer(tt.rate, tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestQuantizerPlainRounding(t *testing.T) {
	tests := []struct {
		bits int
		in   float64
		want int
	}{
		{16, 0, 0},
		{16, 0.5, 16384},
		{16, -1, -32768},
		{16, 1, 32767},
		{16, 2, 32767},
		{8, -0.25, -32},
		{24, 1.0 / 8388608, 1},
		{1, 0.9, 0},
	}
	for _, tt := range tests {
		q := mustQuantizer(t, WithBitDepth(tt.bits), WithDitherType(DitherNone))
		if got := q.ProcessInteger(tt.in); got != tt.want {
			t.Errorf("%d bits: ProcessInteger(%v) = %d, want %d", tt.bits, tt.in, got, tt.want)
		}
	}
}

func TestQuantizerIntegerRoundTrip(t *testing.T) {
	q := mustQuantizer(t, WithDitherType(DitherNone))
	for k := -32768; k <= 32767; k += 97 {
		if got := q.ProcessInteger(float64(k) / 32768); got != k {
			t.Fatalf("round trip of %d gave %d", k, got)
		}
	}
}

func TestQuantizerLimitOff(t *testing.T) {
	q := mustQuantizer(t, WithDitherType(DitherNone), WithLimit(false))
	if got := q.ProcessInteger(1.5); got != 49152 {
		t.Fatalf("unlimited ProcessInteger(1.5) = %d, want 49152", got)
	}
}

func TestQuantizerDitherErrorBounded(t *testing.T) {
	for _, dt := range []DitherType{DitherRectangular, DitherTriangular} {
		q := mustQuantizer(t, WithDitherType(dt), WithSeed(7))

		var sum float64
		const n = 20000
		for i := range n {
			x := 0.3 * math.Sin(float64(i)*0.01)
			err := float64(q.ProcessInteger(x)) - x*32768
			if math.Abs(err) > 1.5 {
				t.Fatalf("%v: error %v exceeds 1.5 LSB", dt, err)
			}
			sum += err
		}

		if mean := sum / n; math.Abs(mean) > 0.05 {
			t.Errorf("%v: mean error %v, want about 0", dt, mean)
		}
	}
}

func TestQuantizerSilenceWithoutDither(t *testing.T) {
	q := mustQuantizer(t, WithDitherType(DitherNone), WithFIRPreset(Preset9FC))
	dst := make([]int, 256)
	if n := q.ProcessBlock(dst, make([]float64, 256)); n != 256 {
		t.Fatalf("ProcessBlock wrote %d", n)
	}

	for i, v := range dst {
		if v != 0 {
			t.Fatalf("dst[%d] = %d, want 0", i, v)
		}
	}
}

func TestQuantizerSeedReproducible(t *testing.T) {
	src := make([]float64, 512)
	for i := range src {
		src[i] = 0.1 * math.Cos(float64(i)*0.05)
	}

	run := func(seed uint64) []int {
		q := mustQuantizer(t, WithSeed(seed), WithFIRPreset(Preset9FC))
		out := make([]int, len(src))
		q.ProcessBlock(out, src)
		return out
	}

	a, b, c := run(1), run(1), run(2)
	same, differ := true, false
	for i := range a {
		same = same && a[i] == b[i]
		differ = differ || a[i] != c[i]
	}

	if !same {
		t.Error("equal seeds gave different output")
	}
	if !differ {
		t.Error("different seeds gave identical output")
	}
}

func TestQuantizerGaussianStaysFinite(t *testing.T) {
	for _, dt := range []DitherType{DitherGaussian, DitherFastGaussian} {
		q := mustQuantizer(t, WithDitherType(dt), WithSeed(3))
		for range 1000 {
			if v := q.ProcessSample(0); math.Abs(v) > 8.0/32768 {
				t.Fatalf("%v: silence dithered to %v", dt, v)
			}
		}
	}
}

func TestQuantizerProcessInPlace(t *testing.T) {
	q := mustQuantizer(t, WithBitDepth(8), WithDitherType(DitherNone))
	buf := []float64{0.25, 0.251, -0.5}
	q.ProcessInPlace(buf)

	want := []float64{0.25, 0.25, -0.5}
	for i := range buf {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestQuantizerShapingKeepsDC(t *testing.T) {
	// With error feedback the output sum telescopes to n*x plus one error.
	q := mustQuantizer(t, WithDitherType(DitherNone), WithFIRPreset(PresetEFB), WithLimit(false))
	const x = 0.3 / 32768

	var sum float64
	const n = 1000
	for range n {
		sum += float64(q.ProcessInteger(x))
	}

	if mean := sum / n; math.Abs(mean-0.3) > 0.01 {
		t.Fatalf("shaped DC mean = %v, want 0.3", mean)
	}

	q.Reset()
	if got := q.ProcessInteger(x); got != 0 {
		t.Fatalf("first sample after Reset = %d, want 0", got)
	}
}
