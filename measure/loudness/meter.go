package loudness

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/pcm"
)

const (
	momentaryDuration = 0.4
	shortTermDuration = 3.0

	absThreshold = -70.0
	relThreshold = -10.0
	// Gating blocks overlap by 75%.
	blockStepFactor = 0.25

	// Floor returned for silence.
	Floor = -120.0
)

// Meter implements EBU R128 / ITU-R BS.1770 loudness metering on
// interleaved frames. All channels have unit weight.
type Meter struct {
	sampleRate float64
	channels   int

	filters []kFilter

	momWindow   int
	shortWindow int
	momHistory  [][]float64 // squared K-weighted samples
	shortHist   [][]float64
	momIdx      int
	shortIdx    int
	momSums     []float64
	shortSums   []float64
	blockStep   int
	sinceStep   int
	integrating bool

	// Mean-square blocks for integrated gating.
	blocks []float64

	peaks []float64

	maxMomentary float64
	maxShortTerm float64
	frames       int64
}

// NewMeter creates a loudness meter.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	m := &Meter{sampleRate: cfg.SampleRate, channels: cfg.Channels}
	m.filters = make([]kFilter, m.channels)
	for i := range m.filters {
		m.filters[i] = newKFilter(m.sampleRate)
	}

	m.momWindow = int(math.Round(momentaryDuration * m.sampleRate))
	m.shortWindow = int(math.Round(shortTermDuration * m.sampleRate))
	m.blockStep = max(int(math.Round(momentaryDuration*blockStepFactor*m.sampleRate)), 1)

	m.momHistory = make([][]float64, m.channels)
	m.shortHist = make([][]float64, m.channels)
	for i := range m.channels {
		m.momHistory[i] = make([]float64, m.momWindow)
		m.shortHist[i] = make([]float64, m.shortWindow)
	}
	m.momSums = make([]float64, m.channels)
	m.shortSums = make([]float64, m.channels)
	m.peaks = make([]float64, m.channels)

	m.Reset()

	return m
}

// Channels returns the channel count.
func (m *Meter) Channels() int { return m.channels }

// Reset clears all integration state and peaks.
func (m *Meter) Reset() {
	for i := range m.channels {
		m.filters[i].reset()
		clear(m.momHistory[i])
		clear(m.shortHist[i])
		m.momSums[i] = 0
		m.shortSums[i] = 0
		m.peaks[i] = 0
	}

	m.momIdx, m.shortIdx, m.sinceStep = 0, 0, 0
	m.blocks = nil
	m.maxMomentary, m.maxShortTerm = math.Inf(-1), math.Inf(-1)
	m.frames = 0
}

// StartIntegration starts collecting gating blocks.
func (m *Meter) StartIntegration() { m.integrating = true }

// StopIntegration stops collecting gating blocks.
func (m *Meter) StopIntegration() { m.integrating = false }

// ProcessSample processes one frame. Short frames are ignored.
func (m *Meter) ProcessSample(frame []float64) {
	if len(frame) < m.channels {
		return
	}

	for i := range m.channels {
		if a := math.Abs(frame[i]); a > m.peaks[i] {
			m.peaks[i] = a
		}

		v := m.filters[i].process(frame[i])
		sq := v * v

		m.momSums[i] = math.Max(0, m.momSums[i]+sq-m.momHistory[i][m.momIdx])
		m.momHistory[i][m.momIdx] = sq

		m.shortSums[i] = math.Max(0, m.shortSums[i]+sq-m.shortHist[i][m.shortIdx])
		m.shortHist[i][m.shortIdx] = sq
	}

	m.momIdx = (m.momIdx + 1) % m.momWindow
	m.shortIdx = (m.shortIdx + 1) % m.shortWindow
	m.frames++

	// Windows only count once they are full.
	if m.frames >= int64(m.momWindow) {
		m.maxMomentary = math.Max(m.maxMomentary, m.Momentary())
	}
	if m.frames >= int64(m.shortWindow) {
		m.maxShortTerm = math.Max(m.maxShortTerm, m.ShortTerm())
	}

	if !m.integrating {
		return
	}

	m.sinceStep++
	if m.sinceStep >= m.blockStep && m.frames >= int64(m.momWindow) {
		m.sinceStep = 0
		m.blocks = append(m.blocks, m.meanSquare(m.momSums, m.momWindow))
	}
}

// ProcessBlock processes interleaved frames. A trailing partial frame is
// ignored.
func (m *Meter) ProcessBlock(block []float64) {
	for i := 0; i+m.channels <= len(block); i += m.channels {
		m.ProcessSample(block[i : i+m.channels])
	}
}

// Momentary returns the loudness of the last 400 ms in LUFS.
func (m *Meter) Momentary() float64 { return toLUFS(m.meanSquare(m.momSums, m.momWindow)) }

// ShortTerm returns the loudness of the last 3 s in LUFS.
func (m *Meter) ShortTerm() float64 { return toLUFS(m.meanSquare(m.shortSums, m.shortWindow)) }

// MaxMomentary returns the highest momentary loudness seen since Reset, or
// -Inf before the first full window.
func (m *Meter) MaxMomentary() float64 { return m.maxMomentary }

// MaxShortTerm returns the highest short-term loudness seen since Reset, or
// -Inf before the first full window.
func (m *Meter) MaxShortTerm() float64 { return m.maxShortTerm }

// Integrated returns the gated loudness in LUFS since StartIntegration, or
// -Inf when every block is gated out.
func (m *Meter) Integrated() float64 {
	var (
		absSum   float64
		absCount int
	)
	for _, b := range m.blocks {
		if toLUFS(b) > absThreshold {
			absSum += b
			absCount++
		}
	}
	if absCount == 0 {
		return math.Inf(-1)
	}

	gate := toLUFS(absSum/float64(absCount)) + relThreshold

	var (
		relSum   float64
		relCount int
	)
	for _, b := range m.blocks {
		if l := toLUFS(b); l > absThreshold && l > gate {
			relSum += b
			relCount++
		}
	}
	if relCount == 0 {
		return math.Inf(-1)
	}

	return toLUFS(relSum / float64(relCount))
}

// Peaks returns the sample peak per channel since Reset.
func (m *Meter) Peaks() []float64 { return core.Clone(m.peaks) }

func (m *Meter) meanSquare(sums []float64, window int) float64 {
	total := 0.0
	for _, s := range sums {
		total += s / float64(window)
	}
	return total
}

// Summary is the loudness of a whole buffer.
type Summary struct {
	Integrated   float64 // LUFS
	MaxMomentary float64 // LUFS
	MaxShortTerm float64 // LUFS, -Inf for buffers shorter than 3 s
	Peak         float64 // sample peak over all channels
}

// Measure meters a whole buffer from a fresh state.
func Measure(buf *pcm.Buffer) (Summary, error) {
	if buf == nil || buf.Frames() == 0 {
		return Summary{}, fmt.Errorf("%w: loudness needs a non-empty buffer", core.ErrInvalidParameter)
	}

	m := NewMeter(WithSampleRate(float64(buf.SampleRate())), WithChannels(buf.Channels()))
	m.StartIntegration()
	m.ProcessBlock(buf.Interleaved())

	peak := 0.0
	for _, p := range m.Peaks() {
		peak = math.Max(peak, p)
	}

	return Summary{
		Integrated:   m.Integrated(),
		MaxMomentary: m.MaxMomentary(),
		MaxShortTerm: m.MaxShortTerm(),
		Peak:         peak,
	}, nil
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return Floor
	}
	return -0.691 + 10*math.Log10(meanSquare)
}
