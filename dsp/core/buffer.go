package core

// Clone returns a copy of src. A nil or empty input yields an empty, non-nil slice.
func Clone(src []float64) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// FitLength returns a new slice of exactly n samples: src truncated, or
// zero-padded at the end.
func FitLength(src []float64, n int) []float64 {
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	copy(out, src)
	return out
}
