package spectrum

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// parts holds split real and imaginary scratch for one Magnitude call.
type parts struct {
	buf []float64
}

var partsPool = sync.Pool{New: func() any { return new(parts) }}

func (p *parts) split(in []complex128) (re, im []float64) {
	n := len(in)
	if cap(p.buf) < 2*n {
		p.buf = make([]float64, 2*n)
	}
	re, im = p.buf[:n], p.buf[n:2*n]
	for i, c := range in {
		re[i], im[i] = real(c), imag(c)
	}
	return re, im
}

// Magnitude returns |X[k]| for each bin. Only the output slice is allocated
// once the scratch pool is warm.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	p := partsPool.Get().(*parts)
	defer partsPool.Put(p)

	re, im := p.split(in)
	out := make([]float64, len(in))
	vecmath.Magnitude(out, re, im)
	return out
}
