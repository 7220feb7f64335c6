package gain

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-remix/dsp/core"
)

const (
	// DefaultCeiling is full scale for float PCM.
	DefaultCeiling = 1.0

	// MinDB and MaxDB bound the accepted gain.
	MinDB = -200.0
	MaxDB = 200.0
)

// Factor converts a gain in dB to a linear factor, 10^(db/20). NaN is
// treated as 0 dB and values outside [MinDB, MaxDB] are clamped.
func Factor(db float64) float64 {
	return core.DBToLinear(clampDB(db))
}

// Apply writes src scaled by db into dst with the default ceiling and returns
// the number of samples that were clipped. Only min(len(dst), len(src))
// samples are processed.
func Apply(dst, src []float64, db float64) int {
	return apply(dst, src, Factor(db), DefaultCeiling)
}

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	ceiling float64
}

// WithCeiling sets the clipping ceiling, a positive finite linear level.
func WithCeiling(ceiling float64) Option {
	return func(cfg *config) error {
		if !core.IsFinitePositive(ceiling) {
			return fmt.Errorf("%w: gain ceiling must be positive and finite: %f",
				core.ErrInvalidParameter, ceiling)
		}

		cfg.ceiling = ceiling

		return nil
	}
}

// Stage is a configured gain stage. It is stateless and safe for concurrent
// use once constructed.
type Stage struct {
	db      float64
	factor  float64
	ceiling float64
}

// NewStage returns a stage applying db of gain.
func NewStage(db float64, opts ...Option) (*Stage, error) {
	cfg := config{ceiling: DefaultCeiling}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &Stage{ceiling: cfg.ceiling}
	s.SetGainDB(db)

	return s, nil
}

// GainDB returns the applied gain in dB after clamping.
func (s *Stage) GainDB() float64 { return s.db }

// Factor returns the linear gain factor.
func (s *Stage) Factor() float64 { return s.factor }

// Ceiling returns the clipping ceiling.
func (s *Stage) Ceiling() float64 { return s.ceiling }

// SetGainDB updates the gain. NaN becomes 0 dB; values outside
// [MinDB, MaxDB] are clamped.
func (s *Stage) SetGainDB(db float64) {
	s.db = clampDB(db)
	s.factor = core.DBToLinear(s.db)
}

// Process returns a scaled copy of input and the clipped sample count.
func (s *Stage) Process(input []float64) ([]float64, int) {
	if len(input) == 0 {
		return nil, 0
	}

	out := make([]float64, len(input))

	return out, apply(out, input, s.factor, s.ceiling)
}

// ProcessInPlace scales buf in place and returns the clipped sample count.
func (s *Stage) ProcessInPlace(buf []float64) int {
	return apply(buf, buf, s.factor, s.ceiling)
}

func apply(dst, src []float64, factor, ceiling float64) int {
	n := min(len(dst), len(src))
	clipped := 0

	for i := range n {
		v := src[i]
		switch {
		case math.IsNaN(v):
			dst[i] = 0
			continue
		case math.IsInf(v, 1):
			dst[i] = ceiling
			clipped++
			continue
		case math.IsInf(v, -1):
			dst[i] = -ceiling
			clipped++
			continue
		}

		v *= factor
		if v > ceiling {
			v = ceiling
			clipped++
		} else if v < -ceiling {
			v = -ceiling
			clipped++
		}

		dst[i] = v
	}

	return clipped
}

func clampDB(db float64) float64 {
	if math.IsNaN(db) {
		return 0
	}

	return core.Clamp(db, MinDB, MaxDB)
}
