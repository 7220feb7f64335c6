package remix

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Preset is the YAML document form of Params:
//
//	tempo: 1.25
//	pitch: "-3"
//	gain: -6
//	legacy_coupled_pitch: false
//	pitch_mode: time-domain
//
// Absent keys keep their identity values.
type Preset struct {
	Tempo              *float64  `yaml:"tempo,omitempty"`
	Pitch              PitchText `yaml:"pitch"`
	Gain               float64   `yaml:"gain"`
	LegacyCoupledPitch bool      `yaml:"legacy_coupled_pitch"`
	PitchMode          string    `yaml:"pitch_mode,omitempty"`
}

// PitchText is a semitone value that accepts free text in YAML. Text that
// is not a number decodes to 0, like ParsePitch.
type PitchText float64

// UnmarshalYAML decodes pitch text.
func (p *PitchText) UnmarshalYAML(b []byte) error {
	*p = PitchText(ParsePitch(unquote(strings.TrimSpace(string(b)))))
	return nil
}

// MarshalYAML encodes the shortest decimal form.
func (p PitchText) MarshalYAML() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(p), 'g', -1, 64)), nil
}

// PresetFrom converts p to its YAML form.
func PresetFrom(p Params) Preset {
	tempo := p.TempoRatio
	pr := Preset{
		Tempo:              &tempo,
		Pitch:              PitchText(p.PitchSemitones),
		Gain:               p.GainDB,
		LegacyCoupledPitch: p.LegacyCoupledPitch,
	}
	if p.PitchMode != PitchModeTimeDomain {
		pr.PitchMode = p.PitchMode.String()
	}
	return pr
}

// Params converts the preset to Params.
func (pr Preset) Params() (Params, error) {
	mode, err := ParsePitchMode(pr.PitchMode)
	if err != nil {
		return Params{}, fmt.Errorf("remix: preset: %w", err)
	}

	tempo := 1.0
	if pr.Tempo != nil {
		tempo = *pr.Tempo
	}

	return Params{
		TempoRatio:         tempo,
		PitchSemitones:     float64(pr.Pitch),
		GainDB:             pr.Gain,
		LegacyCoupledPitch: pr.LegacyCoupledPitch,
		PitchMode:          mode,
	}, nil
}

// ParsePreset decodes a YAML preset. Unknown keys are rejected.
func ParsePreset(data []byte) (Params, error) {
	var pr Preset
	if err := yaml.UnmarshalWithOptions(data, &pr, yaml.DisallowUnknownField()); err != nil {
		return Params{}, fmt.Errorf("remix: preset: %w", err)
	}

	return pr.Params()
}

// LoadPreset reads and decodes the YAML preset at path.
func LoadPreset(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("%w: read preset: %w", ErrIO, err)
	}

	p, err := ParsePreset(data)
	if err != nil {
		return Params{}, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// MarshalPreset encodes p as a YAML preset document.
func MarshalPreset(p Params) ([]byte, error) {
	b, err := yaml.Marshal(PresetFrom(p))
	if err != nil {
		return nil, fmt.Errorf("remix: preset: %w", err)
	}
	return b, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
