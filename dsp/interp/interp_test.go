package interp

import (
	"math"
	"testing"
)

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	xm1, x0, x1, x2 := -1.0, 0.0, 1.0, 2.0
	for _, tc := range []struct {
		t float64
		w float64
	}{
		{t: 0.0, w: 0.0},
		{t: 0.25, w: 0.25},
		{t: 0.5, w: 0.5},
		{t: 1.0, w: 1.0},
	} {
		got := Hermite4(tc.t, xm1, x0, x1, x2)
		if diff := got - tc.w; diff < -1e-12 || diff > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", tc.t, got, tc.w)
		}
	}
}

func TestLinear2(t *testing.T) {
	if got := Linear2(0.25, 2, 4); got != 2.5 {
		t.Fatalf("Linear2 = %v, want 2.5", got)
	}
}

func TestResampleLengthsAndEndpoints(t *testing.T) {
	in := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	for _, n := range []int{1, 3, 8, 15, 32} {
		for name, fn := range map[string]func([]float64, int) []float64{
			"linear":  ResampleLinear,
			"hermite": ResampleHermite,
		} {
			out := fn(in, n)
			if len(out) != n {
				t.Fatalf("%s(%d): len = %d", name, n, len(out))
			}
			if out[0] != 0 {
				t.Fatalf("%s(%d): first = %v, want 0", name, n, out[0])
			}
			if n > 1 && math.Abs(out[n-1]-7) > 1e-12 {
				t.Fatalf("%s(%d): last = %v, want 7", name, n, out[n-1])
			}
		}
	}
}

func TestResampleRampStaysLinear(t *testing.T) {
	in := []float64{0, 1, 2, 3, 4}
	out := ResampleLinear(in, 9)
	for i, v := range out {
		if want := float64(i) * 0.5; math.Abs(v-want) > 1e-12 {
			t.Fatalf("out[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestResampleDegenerateInputs(t *testing.T) {
	if out := ResampleLinear(nil, 4); out != nil {
		t.Fatalf("nil input: %v", out)
	}
	if out := ResampleLinear([]float64{1}, 0); out != nil {
		t.Fatalf("zero length: %v", out)
	}
	out := ResampleHermite([]float64{0.5}, 3)
	for i, v := range out {
		if v != 0.5 {
			t.Fatalf("out[%d] = %v, want 0.5", i, v)
		}
	}
}
