package pitch

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/resample"
	"github.com/cwbudde/algo-remix/dsp/window"
)

const (
	defaultFrameSize   = 1024
	defaultAnalysisHop = 256
	minFrameSize       = 64
	normFloor          = 1e-12
	normFloorRatio     = 0.1

	// Shifts with |ratio-1| up to this move bins directly; larger shifts
	// stretch by the ratio and resample back.
	binShiftThreshold = 0.15
)

// SpectralPitchShifter shifts pitch with a phase vocoder. Small shifts move
// each spectral peak with its surrounding bins; large shifts
// time-stretch with identity phase locking (Laroche & Dolson) and then
// resample to the input length.
//
// It keeps phase state and is not safe for concurrent use.
type SpectralPitchShifter struct {
	sampleRate   float64
	pitchRatio   float64
	frameSize    int
	analysisHop  int
	synthesisHop int

	stft *stft
}

// NewSpectralPitchShifter returns a shifter with 1024-sample Hann frames and
// a hop of 256.
func NewSpectralPitchShifter(sampleRate float64) (*SpectralPitchShifter, error) {
	s := &SpectralPitchShifter{pitchRatio: 1, frameSize: defaultFrameSize, analysisHop: defaultAnalysisHop}
	if err := s.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}
	s.updateSynthesisHop()

	st, err := newSTFT(s.frameSize)
	if err != nil {
		return nil, err
	}
	s.stft = st

	return s, nil
}

// SampleRate returns the sample rate in Hz.
func (s *SpectralPitchShifter) SampleRate() float64 { return s.sampleRate }

// PitchRatio returns the requested pitch ratio.
func (s *SpectralPitchShifter) PitchRatio() float64 { return s.pitchRatio }

// PitchSemitones returns the requested shift in semitones.
func (s *SpectralPitchShifter) PitchSemitones() float64 { return core.RatioToSemitones(s.pitchRatio) }

// EffectivePitchRatio returns the ratio actually realized. The stretch path
// quantizes it to SynthesisHop/AnalysisHop.
func (s *SpectralPitchShifter) EffectivePitchRatio() float64 {
	if s.binShifting() {
		return s.pitchRatio
	}
	return float64(s.synthesisHop) / float64(s.analysisHop)
}

// FrameSize returns the FFT size.
func (s *SpectralPitchShifter) FrameSize() int { return s.frameSize }

// AnalysisHop returns the analysis hop in samples.
func (s *SpectralPitchShifter) AnalysisHop() int { return s.analysisHop }

// SynthesisHop returns the synthesis hop in samples.
func (s *SpectralPitchShifter) SynthesisHop() int {
	if s.binShifting() {
		return s.analysisHop
	}
	return s.synthesisHop
}

// SetSampleRate updates the sample rate.
func (s *SpectralPitchShifter) SetSampleRate(sampleRate float64) error {
	if !core.IsFinitePositive(sampleRate) {
		return fmt.Errorf("%w: spectral pitch shifter sample rate must be positive and finite: %f",
			core.ErrInvalidParameter, sampleRate)
	}
	s.sampleRate = sampleRate
	return nil
}

// SetPitchRatio updates the pitch ratio.
func (s *SpectralPitchShifter) SetPitchRatio(ratio float64) error {
	if err := validateRatio(ratio); err != nil {
		return err
	}
	s.pitchRatio = ratio
	s.updateSynthesisHop()
	return nil
}

// SetPitchSemitones updates the shift in semitones.
func (s *SpectralPitchShifter) SetPitchSemitones(semitones float64) error {
	ratio, err := semitoneRatio(semitones)
	if err != nil {
		return err
	}
	return s.SetPitchRatio(ratio)
}

// SetFrameSize sets the FFT size, a power of two of at least 64. A hop that
// no longer fits becomes a quarter frame.
func (s *SpectralPitchShifter) SetFrameSize(size int) error {
	if size < minFrameSize || size&(size-1) != 0 {
		return fmt.Errorf("%w: spectral frame size must be a power of two >= %d: %d",
			core.ErrInvalidParameter, minFrameSize, size)
	}

	st, err := newSTFT(size)
	if err != nil {
		return err
	}

	s.frameSize, s.stft = size, st
	if s.analysisHop >= size {
		s.analysisHop = size / 4
	}
	s.updateSynthesisHop()

	return nil
}

// SetAnalysisHop sets the analysis hop in [1, FrameSize).
func (s *SpectralPitchShifter) SetAnalysisHop(hop int) error {
	if hop <= 0 || hop >= s.frameSize {
		return fmt.Errorf("%w: spectral analysis hop must be in [1, %d): %d",
			core.ErrInvalidParameter, s.frameSize, hop)
	}
	s.analysisHop = hop
	s.updateSynthesisHop()
	return nil
}

// Reset clears phase state. Process resets on entry, so calls are
// independent.
func (s *SpectralPitchShifter) Reset() { s.stft.reset() }

// Process returns input shifted in pitch with its length kept. On an
// internal FFT failure it returns a copy of input.
func (s *SpectralPitchShifter) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}
	if math.Abs(s.pitchRatio-1) <= identityEps {
		return core.Clone(input)
	}

	out, err := s.ProcessWithError(input)
	if err != nil {
		return core.Clone(input)
	}
	return out
}

// ProcessWithError is Process that reports FFT and resampling failures.
func (s *SpectralPitchShifter) ProcessWithError(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, nil
	}

	s.stft.reset()

	// One frame of silence on each side gives the edges full overlap.
	pad := s.frameSize
	padded := make([]float64, len(input)+2*pad)
	copy(padded[pad:], input)

	var (
		out   []float64
		start = pad
		err   error
	)
	if s.binShifting() {
		out, err = s.shiftBins(padded)
	} else {
		out, err = s.stretchAndResample(padded)
		// A frame centre moves by half a frame times (1 - analysis/synthesis)
		// once the stretched signal is resampled.
		shift := float64(s.frameSize) / 2 * (1 - float64(s.analysisHop)/float64(s.synthesisHop))
		start -= int(math.Round(shift))
	}
	if err != nil {
		return nil, err
	}

	start = min(max(start, 0), len(out))
	return core.FitLength(out[start:], len(input)), nil
}

// ProcessInPlace shifts buf in place.
func (s *SpectralPitchShifter) ProcessInPlace(buf []float64) {
	copy(buf, s.Process(buf))
}

func (s *SpectralPitchShifter) binShifting() bool {
	return math.Abs(s.pitchRatio-1) <= binShiftThreshold
}

func (s *SpectralPitchShifter) updateSynthesisHop() {
	s.synthesisHop = max(int(math.Round(float64(s.analysisHop)*s.pitchRatio)), 1)
}

func (s *SpectralPitchShifter) shiftBins(input []float64) ([]float64, error) {
	st := s.stft
	hop := s.analysisHop
	frames := 1 + (len(input)-1)/hop
	ola := newOverlapAdd((frames-1)*hop + s.frameSize)

	for f := range frames {
		pos := f * hop
		if err := st.analyze(input, pos, float64(hop)); err != nil {
			return nil, err
		}
		st.shiftPeaks(s.pitchRatio, float64(hop))
		if err := st.synthesize(ola, pos); err != nil {
			return nil, err
		}
	}

	return ola.result(), nil
}

func (s *SpectralPitchShifter) stretchAndResample(input []float64) ([]float64, error) {
	st := s.stft
	frames := 1 + (len(input)-1)/s.analysisHop
	ola := newOverlapAdd((frames-1)*s.synthesisHop + s.frameSize)
	synHop := float64(s.synthesisHop)

	for f := range frames {
		if err := st.analyze(input, f*s.analysisHop, float64(s.analysisHop)); err != nil {
			return nil, err
		}
		st.lockPhases(synHop)
		if err := st.synthesize(ola, f*s.synthesisHop); err != nil {
			return nil, err
		}
	}

	stretched := ola.result()
	if s.synthesisHop == s.analysisHop {
		return stretched, nil
	}

	shifted, err := resample.Convert(stretched, s.analysisHop, s.synthesisHop,
		resample.WithQuality(resample.QualityBalanced))
	if err != nil {
		return nil, fmt.Errorf("spectral pitch shifter: resample: %w", err)
	}

	return shifted, nil
}

// stft holds the FFT plan, window and per-bin phase state of one frame size.
type stft struct {
	size int
	plan *algofft.Plan[complex128]
	win  []float64

	omega     []float64 // bin centre, rad/sample
	prevPhase []float64
	sumPhase  []float64
	mag       []float64
	freq      []float64 // instantaneous, rad/sample
	peaks     []int
	wasPeak   []bool

	spec    []complex128
	frame   []complex128
	shifted []complex128
}

func newSTFT(size int) (*stft, error) {
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectral pitch shifter: fft plan: %w", err)
	}

	bins := size/2 + 1
	st := &stft{
		size:      size,
		plan:      plan,
		win:       window.Generate(window.TypeHann, size, window.WithPeriodic()),
		omega:     make([]float64, bins),
		prevPhase: make([]float64, bins),
		sumPhase:  make([]float64, bins),
		mag:       make([]float64, bins),
		freq:      make([]float64, bins),
		peaks:     make([]int, 0, bins),
		wasPeak:   make([]bool, bins),
		spec:      make([]complex128, size),
		frame:     make([]complex128, size),
		shifted:   make([]complex128, bins),
	}
	for k := range st.omega {
		st.omega[k] = 2 * math.Pi * float64(k) / float64(size)
	}

	return st, nil
}

func (st *stft) reset() {
	clear(st.prevPhase)
	clear(st.sumPhase)
	clear(st.wasPeak)
}

// analyze windows input[pos:pos+size] and updates magnitudes and
// instantaneous frequencies for an analysis hop of hop samples.
func (st *stft) analyze(input []float64, pos int, hop float64) error {
	for i := range st.size {
		x := 0.0
		if idx := pos + i; idx < len(input) {
			x = input[idx]
		}
		st.spec[i] = complex(x*st.win[i], 0)
	}

	if err := st.plan.Forward(st.spec, st.spec); err != nil {
		return fmt.Errorf("spectral pitch shifter: forward fft: %w", err)
	}

	for k := range st.mag {
		re, im := real(st.spec[k]), imag(st.spec[k])
		phase := math.Atan2(im, re)
		st.mag[k] = math.Hypot(re, im)
		st.freq[k] = st.omega[k] + wrapPhase(phase-st.prevPhase[k]-st.omega[k]*hop)/hop
		st.prevPhase[k] = phase
	}

	return nil
}

// lockPhases advances peak phases by hop and ties every other bin to its
// nearest peak.
func (st *stft) lockPhases(hop float64) {
	half := st.size / 2

	if len(st.findPeaks()) == 0 {
		for k := 0; k <= half; k++ {
			st.sumPhase[k] += st.freq[k] * hop
			st.setBin(k, st.mag[k], st.sumPhase[k])
		}
		return
	}

	for _, pk := range st.peaks {
		st.sumPhase[pk] += st.freq[pk] * hop
	}

	p := 0
	for k := 0; k <= half; k++ {
		for p+1 < len(st.peaks) && abs(st.peaks[p+1]-k) < abs(st.peaks[p]-k) {
			p++
		}
		if pk := st.peaks[p]; k != pk {
			st.sumPhase[k] = st.sumPhase[pk] + st.prevPhase[k] - st.prevPhase[pk]
		}
		st.setBin(k, st.mag[k], st.sumPhase[k])
	}
}

// findPeaks collects local magnitude maxima. Two peaks are never adjacent.
func (st *stft) findPeaks() []int {
	half := st.size / 2

	st.peaks = st.peaks[:0]
	for k := 1; k < half; k++ {
		if st.mag[k] >= st.mag[k-1] && st.mag[k] > st.mag[k+1] {
			st.peaks = append(st.peaks, k)
		}
	}
	return st.peaks
}

// shiftPeaks moves the region around each peak by the peak's fractional
// frequency shift. Main-lobe magnitudes follow the Hann lobe, phases follow
// a windowed sinusoid, and sumPhase[pk] holds the rotation that carries the
// peak from its analysis frequency to the shifted one.
func (st *stft) shiftPeaks(ratio, hop float64) {
	half := st.size / 2
	peaks := st.findPeaks()

	if len(peaks) == 0 {
		clear(st.wasPeak)
		return
	}

	clear(st.shifted)
	binsPerRad := float64(st.size) / (2 * math.Pi)

	for i, pk := range peaks {
		lo, hi := 0, half
		if i > 0 {
			lo = (peaks[i-1]+pk)/2 + 1
		}
		if i+1 < len(peaks) {
			hi = (pk + peaks[i+1]) / 2
		}

		// The largest bin of a Hann lobe is the one nearest its centre.
		b := float64(pk) + min(max(st.freq[pk]*binsPerRad-float64(pk), -0.5), 0.5)

		rot := st.sumPhase[pk]
		if !st.wasPeak[pk] {
			rot = st.neighbourRotation(pk)
		}
		rot = wrapPhase(rot + (ratio-1)*(b/binsPerRad)*hop)
		st.sumPhase[pk] = rot

		target := b * ratio
		delta := target - b
		peakMag := st.mag[pk] / hannLobe(float64(pk)-b)
		phase := cmplx.Phase(st.spec[pk]) + math.Pi*(float64(pk)-b) + rot

		kLo := max(int(math.Ceil(float64(lo)-0.5+delta)), 0)
		kHi := min(int(math.Ceil(float64(hi)+0.5+delta)), half+1)
		for k := kLo; k < kHi; k++ {
			x := float64(k) - target
			mag := st.magAt(float64(k) - delta)
			if math.Abs(x) < 2 {
				mag = peakMag * hannLobe(x)
			}
			st.shifted[k] += cmplx.Rect(mag, phase-math.Pi*x)
		}
	}

	copy(st.spec[:half+1], st.shifted)

	clear(st.wasPeak)
	for _, pk := range peaks {
		st.wasPeak[pk] = true
	}
}

// neighbourRotation lets a peak that drifted by one bin keep its rotation.
func (st *stft) neighbourRotation(pk int) float64 {
	switch {
	case pk > 0 && st.wasPeak[pk-1]:
		return st.sumPhase[pk-1]
	case pk+1 < len(st.wasPeak) && st.wasPeak[pk+1]:
		return st.sumPhase[pk+1]
	}
	return 0
}

// magAt interpolates the analysis magnitude at a fractional bin.
func (st *stft) magAt(pos float64) float64 {
	half := st.size / 2
	if pos < 0 || pos > float64(half) {
		return 0
	}

	lo := int(pos)
	hi := min(lo+1, half)
	frac := pos - float64(lo)
	return st.mag[lo]*(1-frac) + st.mag[hi]*frac
}

// hannLobe is the Hann window spectrum magnitude at x bins from its centre,
// normalized to 1 at x = 0.
func hannLobe(x float64) float64 {
	ax := math.Abs(x)
	switch {
	case ax < 1e-9:
		return 1
	case math.Abs(ax-1) < 1e-9:
		return 0.5
	}
	return math.Sin(math.Pi*x) / (math.Pi * x) / (1 - x*x)
}

func (st *stft) setBin(k int, mag, phase float64) {
	st.spec[k] = complex(mag*math.Cos(phase), mag*math.Sin(phase))
}

// synthesize mirrors the half spectrum, inverts it and overlap-adds the
// windowed frame at pos.
func (st *stft) synthesize(ola *overlapAdd, pos int) error {
	half := st.size / 2
	st.spec[0] = complex(real(st.spec[0]), 0)
	st.spec[half] = complex(real(st.spec[half]), 0)
	for k := 1; k < half; k++ {
		st.spec[st.size-k] = complex(real(st.spec[k]), -imag(st.spec[k]))
	}

	if err := st.plan.Inverse(st.frame, st.spec); err != nil {
		return fmt.Errorf("spectral pitch shifter: inverse fft: %w", err)
	}

	for i, w := range st.win {
		ola.out[pos+i] += real(st.frame[i]) * w
		ola.norm[pos+i] += w * w
	}

	return nil
}

type overlapAdd struct {
	out, norm []float64
}

func newOverlapAdd(n int) *overlapAdd {
	return &overlapAdd{out: make([]float64, n), norm: make([]float64, n)}
}

// result divides by the summed squared window. Where fewer frames overlap
// the divisor is held at a fraction of its peak.
func (o *overlapAdd) result() []float64 {
	peak := 0.0
	for _, n := range o.norm {
		peak = max(peak, n)
	}

	floor := max(peak*normFloorRatio, normFloor)
	for i, n := range o.norm {
		o.out[i] /= max(n, floor)
	}
	return o.out
}

func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
