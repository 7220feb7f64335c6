package interp

import "math"

// Linear2 interpolates between x0 and x1 at fraction t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// ResampleLinear maps input onto exactly outLen samples with linear
// interpolation. The first and last samples are preserved.
func ResampleLinear(input []float64, outLen int) []float64 {
	return resample(input, outLen, func(pos float64) float64 {
		idx := int(math.Floor(pos))
		return Linear2(pos-float64(idx), clampAt(input, idx), clampAt(input, idx+1))
	})
}

// ResampleHermite maps input onto exactly outLen samples with 4-point cubic
// Hermite interpolation. The first and last samples are preserved.
func ResampleHermite(input []float64, outLen int) []float64 {
	return resample(input, outLen, func(pos float64) float64 {
		idx := int(math.Floor(pos))
		return Hermite4(pos-float64(idx),
			clampAt(input, idx-1), clampAt(input, idx), clampAt(input, idx+1), clampAt(input, idx+2))
	})
}

func resample(input []float64, outLen int, at func(pos float64) float64) []float64 {
	if outLen <= 0 || len(input) == 0 {
		return nil
	}

	out := make([]float64, outLen)
	if len(input) == 1 {
		for i := range out {
			out[i] = input[0]
		}
		return out
	}
	if outLen == 1 {
		out[0] = input[0]
		return out
	}

	step := float64(len(input)-1) / float64(outLen-1)
	for i := range out {
		out[i] = at(float64(i) * step)
	}
	return out
}

func clampAt(x []float64, idx int) float64 {
	if idx < 0 {
		return x[0]
	}
	if idx >= len(x) {
		return x[len(x)-1]
	}
	return x[idx]
}
