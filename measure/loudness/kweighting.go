package loudness

import "math"

// K-weighting stages from BS.1770: a +4 dB high shelf at 1.5 kHz followed
// by a 38 Hz high-pass, both Q = 1/sqrt(2).
const (
	shelfFreq   = 1500.0
	shelfGainDB = 4.0
	highpassHz  = 38.0
)

// section is a transposed direct form II biquad.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64
	d0, d1     float64
}

func (s *section) process(x float64) float64 {
	y := s.b0*x + s.d0
	s.d0 = s.b1*x - s.a1*y + s.d1
	s.d1 = s.b2*x - s.a2*y
	return y
}

func (s *section) reset() { s.d0, s.d1 = 0, 0 }

func normalized(b0, b1, b2, a0, a1, a2 float64) section {
	return section{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

// highShelf returns the RBJ high-shelf section.
func highShelf(freq, gainDB, q, sampleRate float64) section {
	w0 := 2 * math.Pi * freq / sampleRate
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	return normalized(
		a*((a+1)+(a-1)*cw+beta),
		-2*a*((a-1)+(a+1)*cw),
		a*((a+1)+(a-1)*cw-beta),
		(a+1)-(a-1)*cw+beta,
		2*((a-1)-(a+1)*cw),
		(a+1)-(a-1)*cw-beta,
	)
}

// highpass returns the RBJ second-order high-pass section.
func highpass(freq, q, sampleRate float64) section {
	w0 := 2 * math.Pi * freq / sampleRate
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)

	return normalized((1+cw)/2, -(1 + cw), (1+cw)/2, 1+alpha, -2*cw, 1-alpha)
}

// kFilter is the two-stage K-weighting filter of one channel.
type kFilter struct {
	shelf, hpf section
}

func newKFilter(sampleRate float64) kFilter {
	q := 1 / math.Sqrt2
	return kFilter{
		shelf: highShelf(shelfFreq, shelfGainDB, q, sampleRate),
		hpf:   highpass(highpassHz, q, sampleRate),
	}
}

func (k *kFilter) process(x float64) float64 { return k.hpf.process(k.shelf.process(x)) }

func (k *kFilter) reset() {
	k.shelf.reset()
	k.hpf.reset()
}
