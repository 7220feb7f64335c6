package remix

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/effects/pitch"
	"github.com/cwbudde/algo-remix/dsp/gain"
	"github.com/cwbudde/algo-remix/dsp/pcm"
	"github.com/cwbudde/algo-remix/dsp/tempo"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for stage diagnostics. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithParallelChannels processes channels on separate goroutines where a
// stage treats them independently.
func WithParallelChannels(enabled bool) Option {
	return func(p *Pipeline) {
		p.parallel = enabled
	}
}

// WithStretchConfig overrides the WSOLA windows in milliseconds used by the
// tempo stage and the time-domain pitch shifter.
func WithStretchConfig(sequenceMs, overlapMs, searchMs float64) Option {
	return func(p *Pipeline) {
		p.sequenceMs, p.overlapMs, p.searchMs = sequenceMs, overlapMs, searchMs
	}
}

// Pipeline applies tempo, pitch and gain to a buffer. It holds only
// configuration and is safe for concurrent use.
type Pipeline struct {
	logger   *slog.Logger
	parallel bool

	sequenceMs float64
	overlapMs  float64
	searchMs   float64
}

// New returns a pipeline with the default WSOLA windows.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:     slog.New(slog.DiscardHandler),
		sequenceMs: tempo.DefaultSequenceMs,
		overlapMs:  tempo.DefaultOverlapMs,
		searchMs:   tempo.DefaultSearchMs,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

var defaultPipeline = New()

// Process renders src with the default pipeline.
func Process(src *pcm.Buffer, p Params) (*pcm.Buffer, error) {
	return defaultPipeline.Process(src, p)
}

// Report summarizes one render.
type Report struct {
	Params         Params // after normalization
	ClippedSamples int
	InputSeconds   float64
	OutputSeconds  float64
	Elapsed        time.Duration
}

// Process returns a new buffer with p applied to src. src is not modified.
func (pl *Pipeline) Process(src *pcm.Buffer, p Params) (*pcm.Buffer, error) {
	out, _, err := pl.ProcessReport(src, p)
	return out, err
}

// ProcessValues is Process with the pitch given as free text, as typed into
// a text box. Unparsable pitch text means no shift.
func (pl *Pipeline) ProcessValues(src *pcm.Buffer, tempoRatio float64, pitchText string, gainDB float64) (*pcm.Buffer, error) {
	return pl.Process(src, Params{
		TempoRatio:     tempoRatio,
		PitchSemitones: ParsePitch(pitchText),
		GainDB:         gainDB,
	})
}

// ProcessReport is Process that also reports clipping and durations.
func (pl *Pipeline) ProcessReport(src *pcm.Buffer, p Params) (*pcm.Buffer, Report, error) {
	if src == nil {
		return nil, Report{}, ErrNoSource
	}

	start := time.Now()
	p = p.Normalize()
	if _, err := tempo.NormalizeRatio(p.TempoRatio); err != nil {
		return nil, Report{}, err
	}

	stretcher, err := tempo.NewStretcher(float64(src.SampleRate()))
	if err != nil {
		return nil, Report{}, err
	}
	if err := stretcher.Configure(pl.sequenceMs, pl.overlapMs, pl.searchMs); err != nil {
		return nil, Report{}, err
	}

	channels := make([][]float64, src.Channels())
	src.View(func(ch int, samples []float64) {
		channels[ch] = samples
	})

	// Stages return fresh slices, so the source's backing arrays are never
	// written.
	channels, err = stretcher.ChangeChannels(channels, p.TempoRatio, tempo.ModePreservePitch)
	if err != nil {
		return nil, Report{}, fmt.Errorf("remix: tempo: %w", err)
	}
	pl.logger.Debug("tempo stage done", "ratio", p.TempoRatio, "frames", len(channels[0]))

	channels, err = pl.shiftPitch(stretcher, channels, float64(src.SampleRate()), p)
	if err != nil {
		return nil, Report{}, fmt.Errorf("remix: pitch: %w", err)
	}
	pl.logger.Debug("pitch stage done", "semitones", p.PitchSemitones,
		"legacy", p.LegacyCoupledPitch, "frames", len(channels[0]))

	clipped, err := pl.applyGain(channels, p.GainDB)
	if err != nil {
		return nil, Report{}, fmt.Errorf("remix: gain: %w", err)
	}
	if clipped > 0 {
		pl.logger.Debug("gain stage clipped", "samples", clipped, "gain_db", p.GainDB)
	}

	out, err := src.Derive(channels)
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{
		Params:         p,
		ClippedSamples: clipped,
		InputSeconds:   src.Seconds(),
		OutputSeconds:  out.Seconds(),
		Elapsed:        time.Since(start),
	}
	pl.logger.Info("rendered", "params", p.String(),
		"in_seconds", report.InputSeconds, "out_seconds", report.OutputSeconds,
		"clipped", clipped, "elapsed", report.Elapsed)

	return out, report, nil
}

func (pl *Pipeline) shiftPitch(stretcher *tempo.Stretcher, channels [][]float64, sampleRate float64, p Params) ([][]float64, error) {
	if p.PitchSemitones == 0 {
		return channels, nil
	}

	ratio := core.SemitonesToRatio(p.PitchSemitones)

	if p.LegacyCoupledPitch {
		return stretcher.ChangeChannels(channels, ratio, tempo.ModeLegacyCoupled)
	}

	if p.PitchMode == PitchModeTimeDomain {
		shifter, err := pitch.NewPitchShifter(sampleRate)
		if err != nil {
			return nil, err
		}
		if err := shifter.Configure(pl.sequenceMs, pl.overlapMs, pl.searchMs); err != nil {
			return nil, err
		}
		if err := shifter.SetPitchRatio(ratio); err != nil {
			return nil, err
		}
		return shifter.ProcessChannels(channels)
	}

	// The phase vocoder keeps per-instance state: one processor per channel.
	out := make([][]float64, len(channels))
	err := pl.eachChannel(len(channels), func(ch int) error {
		proc, err := pitch.NewProcessor(p.PitchMode.method(), sampleRate, p.PitchSemitones)
		if err != nil {
			return err
		}
		out[ch] = proc.Process(channels[ch])
		return nil
	})

	return out, err
}

func (pl *Pipeline) applyGain(channels [][]float64, db float64) (int, error) {
	stage, err := gain.NewStage(db)
	if err != nil {
		return 0, err
	}

	counts := make([]int, len(channels))
	err = pl.eachChannel(len(channels), func(ch int) error {
		counts[ch] = stage.ProcessInPlace(channels[ch])
		return nil
	})

	total := 0
	for _, c := range counts {
		total += c
	}

	return total, err
}

// eachChannel runs fn for every channel index, concurrently when the
// pipeline is parallel.
func (pl *Pipeline) eachChannel(n int, fn func(ch int) error) error {
	if !pl.parallel || n < 2 {
		for ch := range n {
			if err := fn(ch); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	for ch := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[ch] = fn(ch)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
