package tempo

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/interp"
)

const (
	// Music-tuned defaults: a long sequence keeps several beat cycles inside
	// the correlation window, which picks better splice points on polyphonic
	// material.
	DefaultSequenceMs = 82.0
	DefaultOverlapMs  = 10.0
	DefaultSearchMs   = 28.0

	minSequenceMs = 20.0
	maxSequenceMs = 120.0
	minOverlapMs  = 4.0
	maxOverlapMs  = 60.0
	minSearchMs   = 2.0
	maxSearchMs   = 40.0

	identityEps = 1e-9
	tiny        = 1e-12
)

// Stretcher changes the length of a signal without changing its pitch using
// WSOLA (waveform-similarity overlap-add). Segments of the input are copied
// to the output at a fixed hop and spliced with a raised-cosine crossfade;
// each splice point is chosen inside a seek window by normalized
// cross-correlation against the natural continuation of the previous segment.
//
// A Stretcher holds only configuration and may be shared by goroutines.
type Stretcher struct {
	sampleRate float64

	sequenceMs float64
	overlapMs  float64
	searchMs   float64

	sequenceLen int
	overlapLen  int
	searchLen   int
	stepOut     int

	fadeIn  []float64
	fadeOut []float64
}

// NewStretcher returns a Stretcher with the default 82/10/28 ms windows.
func NewStretcher(sampleRate float64) (*Stretcher, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("%w: tempo sample rate must be positive and finite: %f",
			core.ErrInvalidParameter, sampleRate)
	}

	s := &Stretcher{
		sampleRate: sampleRate,
		sequenceMs: DefaultSequenceMs,
		overlapMs:  DefaultOverlapMs,
		searchMs:   DefaultSearchMs,
	}
	if err := s.rebuild(); err != nil {
		return nil, err
	}

	return s, nil
}

// SampleRate returns the sample rate in Hz.
func (s *Stretcher) SampleRate() float64 { return s.sampleRate }

// Sequence returns the sequence length in milliseconds.
func (s *Stretcher) Sequence() float64 { return s.sequenceMs }

// Overlap returns the crossfade length in milliseconds.
func (s *Stretcher) Overlap() float64 { return s.overlapMs }

// Search returns the seek window radius in milliseconds.
func (s *Stretcher) Search() float64 { return s.searchMs }

// SequenceLen returns the analysis window length in samples. Inputs shorter
// than this are interpolated instead of stretched.
func (s *Stretcher) SequenceLen() int { return s.sequenceLen }

// SetSequence updates the sequence length in milliseconds.
func (s *Stretcher) SetSequence(ms float64) error {
	if err := checkRange("sequence", ms, minSequenceMs, maxSequenceMs); err != nil {
		return err
	}

	return s.update(&s.sequenceMs, ms)
}

// SetOverlap updates the crossfade length in milliseconds.
func (s *Stretcher) SetOverlap(ms float64) error {
	if err := checkRange("overlap", ms, minOverlapMs, maxOverlapMs); err != nil {
		return err
	}

	return s.update(&s.overlapMs, ms)
}

// SetSearch updates the seek window radius in milliseconds.
func (s *Stretcher) SetSearch(ms float64) error {
	if err := checkRange("search", ms, minSearchMs, maxSearchMs); err != nil {
		return err
	}

	return s.update(&s.searchMs, ms)
}

// Configure sets all three windows. On error the previous configuration is
// kept.
func (s *Stretcher) Configure(sequenceMs, overlapMs, searchMs float64) error {
	if err := checkRange("sequence", sequenceMs, minSequenceMs, maxSequenceMs); err != nil {
		return err
	}
	if err := checkRange("overlap", overlapMs, minOverlapMs, maxOverlapMs); err != nil {
		return err
	}
	if err := checkRange("search", searchMs, minSearchMs, maxSearchMs); err != nil {
		return err
	}

	old := *s
	s.sequenceMs, s.overlapMs, s.searchMs = sequenceMs, overlapMs, searchMs
	if err := s.rebuild(); err != nil {
		*s = old
		return err
	}

	return nil
}

// Stretch returns input scaled in time by factor: the result has exactly
// round(len(input)*factor) samples. factor must be positive and finite;
// anything else, or a factor of 1, yields a copy of input.
func (s *Stretcher) Stretch(input []float64, factor float64) []float64 {
	if len(input) == 0 {
		return nil
	}
	if !core.IsFinitePositive(factor) || math.Abs(factor-1) <= identityEps {
		return core.Clone(input)
	}

	targetLen := targetLength(len(input), factor)
	if len(input) < s.sequenceLen {
		return interp.ResampleLinear(input, targetLen)
	}

	return s.render(input, s.plan(input, targetLen, factor), targetLen)
}

// StretchChannels stretches every channel with the same splice points, chosen
// on the channel average, so inter-channel timing is kept. All channels must
// have equal length.
func (s *Stretcher) StretchChannels(channels [][]float64, factor float64) ([][]float64, error) {
	if len(channels) == 0 {
		return nil, nil
	}

	n := len(channels[0])
	for i, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d",
				core.ErrInvalidParameter, i, len(ch), n)
		}
	}

	out := make([][]float64, len(channels))
	if len(channels) == 1 {
		out[0] = s.Stretch(channels[0], factor)
		return out, nil
	}

	if n == 0 || n < s.sequenceLen || !core.IsFinitePositive(factor) || math.Abs(factor-1) <= identityEps {
		for i, ch := range channels {
			out[i] = s.Stretch(ch, factor)
		}
		return out, nil
	}

	guide := make([]float64, n)
	for _, ch := range channels {
		for i, v := range ch {
			guide[i] += v
		}
	}
	scale := 1 / float64(len(channels))
	for i := range guide {
		guide[i] *= scale
	}

	targetLen := targetLength(n, factor)
	starts := s.plan(guide, targetLen, factor)
	for i, ch := range channels {
		out[i] = s.render(ch, starts, targetLen)
	}

	return out, nil
}

// plan returns the input start of every segment after the first.
func (s *Stretcher) plan(guide []float64, targetLen int, factor float64) []int {
	nominalInStep := float64(s.stepOut) / factor
	if nominalInStep < 1 {
		nominalInStep = 1
	}

	starts := make([]int, 0, targetLen/s.stepOut+2)
	ref := make([]float64, s.overlapLen)
	outLen := s.sequenceLen
	prevStart := 0
	nextNominal := nominalInStep

	for outLen < targetLen+s.sequenceLen {
		refStart := prevStart + s.stepOut
		for i := range ref {
			ref[i] = sampleZero(guide, refStart+i)
		}

		cand := s.findBestOverlap(ref, guide, int(math.Round(nextNominal)))
		starts = append(starts, cand)

		outLen += s.stepOut
		prevStart = cand
		nextNominal += nominalInStep

		if prevStart > len(guide)+s.sequenceLen && outLen >= targetLen {
			break
		}
	}

	return starts
}

func (s *Stretcher) render(input []float64, starts []int, targetLen int) []float64 {
	out := make([]float64, s.sequenceLen+len(starts)*s.stepOut)
	for i := range s.sequenceLen {
		out[i] = sampleZero(input, i)
	}

	outLen := s.sequenceLen
	for _, cand := range starts {
		outStart := outLen - s.overlapLen
		for i := range s.overlapLen {
			out[outStart+i] = out[outStart+i]*s.fadeOut[i] + sampleZero(input, cand+i)*s.fadeIn[i]
		}
		for i := s.overlapLen; i < s.sequenceLen; i++ {
			out[outStart+i] = sampleZero(input, cand+i)
		}
		outLen = outStart + s.sequenceLen
	}

	return core.FitLength(out, targetLen)
}

func (s *Stretcher) findBestOverlap(ref, input []float64, predicted int) int {
	best := predicted
	bestScore := math.Inf(-1)

	refEnergy := tiny
	for _, v := range ref {
		refEnergy += v * v
	}

	for cand := predicted - s.searchLen; cand <= predicted+s.searchLen; cand++ {
		dot := 0.0
		candEnergy := tiny
		for i, rv := range ref {
			cv := sampleZero(input, cand+i)
			dot += rv * cv
			candEnergy += cv * cv
		}

		score := dot / math.Sqrt(refEnergy*candEnergy)
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}

	return best
}

func (s *Stretcher) update(field *float64, v float64) error {
	old := *field
	*field = v
	if err := s.rebuild(); err != nil {
		*field = old
		_ = s.rebuild()
		return err
	}

	return nil
}

func (s *Stretcher) rebuild() error {
	if s.overlapMs >= s.sequenceMs {
		return fmt.Errorf("%w: tempo overlap must be smaller than sequence: overlap=%f sequence=%f",
			core.ErrInvalidParameter, s.overlapMs, s.sequenceMs)
	}

	s.sequenceLen = max(32, int(math.Round(s.sequenceMs*0.001*s.sampleRate)))
	s.overlapLen = max(8, int(math.Round(s.overlapMs*0.001*s.sampleRate)))
	if s.overlapLen >= s.sequenceLen {
		return fmt.Errorf("%w: tempo overlap too large for sequence: overlap=%d sequence=%d",
			core.ErrInvalidParameter, s.overlapLen, s.sequenceLen)
	}

	s.stepOut = s.sequenceLen - s.overlapLen
	if s.stepOut < 4 {
		return fmt.Errorf("%w: tempo output hop too small: %d", core.ErrInvalidParameter, s.stepOut)
	}

	s.searchLen = max(1, int(math.Round(s.searchMs*0.001*s.sampleRate)))

	s.fadeIn = make([]float64, s.overlapLen)
	s.fadeOut = make([]float64, s.overlapLen)
	for i := range s.overlapLen {
		t := float64(i) / float64(s.overlapLen-1)
		in := 0.5 - 0.5*math.Cos(math.Pi*t)
		s.fadeIn[i] = in
		s.fadeOut[i] = 1 - in
	}

	return nil
}

func checkRange(name string, ms, lo, hi float64) error {
	if !core.IsFinite(ms) || ms < lo || ms > hi {
		return fmt.Errorf("%w: tempo %s must be in [%f, %f] ms: %f",
			core.ErrInvalidParameter, name, lo, hi, ms)
	}

	return nil
}

func targetLength(n int, factor float64) int {
	return max(1, int(math.Round(float64(n)*factor)))
}

func sampleZero(x []float64, idx int) float64 {
	if idx < 0 || idx >= len(x) {
		return 0
	}

	return x[idx]
}
