package core

import "testing"

func TestFitLength(t *testing.T) {
	in := []float64{1, 2, 3}

	short := FitLength(in, 2)
	if len(short) != 2 || short[1] != 2 {
		t.Fatalf("FitLength truncate = %v", short)
	}

	long := FitLength(in, 5)
	if len(long) != 5 || long[2] != 3 || long[4] != 0 {
		t.Fatalf("FitLength pad = %v", long)
	}

	long[0] = 9
	if in[0] != 1 {
		t.Fatal("FitLength aliased its input")
	}
}

func TestClone(t *testing.T) {
	if got := Clone(nil); got == nil || len(got) != 0 {
		t.Fatalf("Clone(nil) = %#v, want empty non-nil", got)
	}

	in := []float64{1, 2}
	out := Clone(in)
	out[0] = 5
	if in[0] != 1 {
		t.Fatal("Clone aliased its input")
	}
}
