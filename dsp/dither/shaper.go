package dither

// NoiseShaper feeds quantization error back into later samples so the error
// spectrum moves away from the frequencies the ear is most sensitive to.
//
// Per sample the quantizer calls Shape on the scaled input, rounds the
// result, then reports the rounding error with RecordError.
type NoiseShaper interface {
	Shape(input float64) float64
	RecordError(err float64)
	Reset()
}

// FIRShaper is an error-feedback shaper with an FIR weighting of past
// errors. A shaper without coefficients passes samples through.
type FIRShaper struct {
	coeffs []float64
	errs   []float64 // errs[0] is the most recent error
}

// NewFIRShaper copies coeffs into a new shaper.
func NewFIRShaper(coeffs []float64) *FIRShaper {
	return &FIRShaper{
		coeffs: append([]float64(nil), coeffs...),
		errs:   make([]float64, len(coeffs)),
	}
}

// Order returns the number of feedback taps.
func (s *FIRShaper) Order() int { return len(s.coeffs) }

// Shape subtracts the weighted error history from input.
func (s *FIRShaper) Shape(input float64) float64 {
	for i, c := range s.coeffs {
		input -= c * s.errs[i]
	}

	return input
}

// RecordError pushes the error of the sample just shaped.
func (s *FIRShaper) RecordError(err float64) {
	if len(s.errs) == 0 {
		return
	}

	copy(s.errs[1:], s.errs)
	s.errs[0] = err
}

// Reset forgets the error history.
func (s *FIRShaper) Reset() { clear(s.errs) }
