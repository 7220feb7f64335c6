package resample

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/dsp/window"
)

// lowpass designs the prototype filter on the zero-stuffed grid. The length
// is odd so the delay is a whole number of samples. Its DC gain is up, which
// restores the level lost to zero stuffing.
func lowpass(up, down int, p profile) ([]float64, error) {
	n := p.taps*up + 1
	fc := 0.5 * p.cutoff / float64(max(up, down))

	h, err := window.Kaiser(n, p.beta)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	mid := 0.5 * float64(n-1)
	sum := 0.0
	for i := range h {
		h[i] *= 2 * fc * sinc(2*fc*(float64(i)-mid))
		sum += h[i]
	}
	if sum == 0 {
		return nil, errZeroFilter
	}

	g := float64(up) / sum
	for i := range h {
		h[i] *= g
	}

	return h, nil
}

// polyphase splits h into up branches; branch p holds h[p], h[p+up], ...
func polyphase(h []float64, up int) [][]float64 {
	branches := make([][]float64, up)
	for i, v := range h {
		branches[i%up] = append(branches[i%up], v)
	}

	return branches
}

// approximateRatio returns the best continued-fraction convergent of v whose
// denominator stays within maxDen.
func approximateRatio(v float64, maxDen int) (num, den int) {
	if !(v > 0) || math.IsInf(v, 0) {
		return 1, 1
	}

	pPrev, qPrev := 1.0, 0.0
	p, q := math.Floor(v), 1.0
	x := v
	for {
		f := x - math.Floor(x)
		if f < 1e-12 {
			break
		}
		x = 1 / f
		a := math.Floor(x)
		pn, qn := a*p+pPrev, a*q+qPrev
		if qn > float64(maxDen) {
			break
		}
		pPrev, qPrev, p, q = p, q, pn, qn
	}

	num, den = int(math.Round(p)), int(math.Round(q))
	if num <= 0 || den <= 0 {
		return 1, 1
	}
	g := gcd(num, den)

	return num / g, den / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}

	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	return math.Sin(math.Pi*x) / (math.Pi * x)
}
