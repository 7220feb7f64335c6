package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Quantizer turns normalized float samples into integers of a fixed bit
// depth, adding dither noise and optional noise shaping on the way.
//
// Scaling is mid-tread: full scale 1.0 maps to 2^(bits-1), so a sample
// decoded as k/2^(bits-1) quantizes back to k when dither and shaping are
// off. A Quantizer keeps shaper and RNG state and is not safe for
// concurrent use; use one per channel.
type Quantizer struct {
	bits      int
	ditherTyp DitherType
	amplitude float64
	limit     bool
	shaper    NoiseShaper
	rng       *rand.Rand

	scale  float64
	lo, hi int
}

// NewQuantizer builds a quantizer. Without options it produces 16-bit TPDF
// dithered output with limiting on and no noise shaping.
func NewQuantizer(sampleRate float64, opts ...Option) (*Quantizer, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("dither: sample rate must be positive and finite: %v", sampleRate)
	}

	cfg := config{bitDepth: 16, ditherTyp: DitherTriangular, amplitude: 1, limit: true}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	q := &Quantizer{
		bits:      cfg.bitDepth,
		ditherTyp: cfg.ditherTyp,
		amplitude: cfg.amplitude,
		limit:     cfg.limit,
		shaper:    cfg.shaper,
		scale:     math.Exp2(float64(cfg.bitDepth - 1)),
	}
	if q.shaper == nil {
		q.shaper = NewFIRShaper(nil)
	}
	q.lo, q.hi = -int(q.scale), int(q.scale)-1

	if cfg.seeded {
		q.rng = rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	} else {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return q, nil
}

// BitDepth returns the output word length.
func (q *Quantizer) BitDepth() int { return q.bits }

// DitherType returns the noise distribution in use.
func (q *Quantizer) DitherType() DitherType { return q.ditherTyp }

// Range returns the smallest and largest integer the quantizer emits when
// limiting is on.
func (q *Quantizer) Range() (lo, hi int) { return q.lo, q.hi }

// ProcessInteger quantizes one sample.
func (q *Quantizer) ProcessInteger(x float64) int {
	shaped := q.shaper.Shape(x * q.scale)

	v := int(math.Floor(shaped + q.noise() + 0.5))
	if q.limit {
		v = min(max(v, q.lo), q.hi)
	}

	q.shaper.RecordError(float64(v) - shaped)

	return v
}

// ProcessSample quantizes one sample and scales it back to [-1, 1).
func (q *Quantizer) ProcessSample(x float64) float64 {
	return float64(q.ProcessInteger(x)) / q.scale
}

// ProcessBlock quantizes src into dst and returns how many samples it wrote.
func (q *Quantizer) ProcessBlock(dst []int, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = q.ProcessInteger(src[i])
	}

	return n
}

// ProcessInPlace replaces every sample of buf with its quantized value.
func (q *Quantizer) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = q.ProcessSample(x)
	}
}

// Reset clears the shaper history. The noise sequence continues.
func (q *Quantizer) Reset() { q.shaper.Reset() }

func (q *Quantizer) noise() float64 {
	a := q.amplitude
	switch q.ditherTyp {
	case DitherRectangular:
		return a * (q.rng.Float64() - 0.5)
	case DitherTriangular:
		return a * (q.rng.Float64() - q.rng.Float64())
	case DitherGaussian:
		return a * 0.5 * q.rng.NormFloat64()
	case DitherFastGaussian:
		// Irwin-Hall sum of six uniforms, centred.
		s := -3.0
		for range 6 {
			s += q.rng.Float64()
		}
		return a * s
	default:
		return 0
	}
}
