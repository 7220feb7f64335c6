package dither

import (
	"fmt"
	"strings"
)

// Preset names a built-in noise-shaping filter for FIRShaper.
type Preset int

// Shaping presets, ordered roughly by aggressiveness. The Sharp presets are
// tuned for 44.1 kHz material.
const (
	PresetNone Preset = iota
	PresetEFB
	Preset2SC
	Preset2MEC
	Preset3MEC
	Preset9MEC
	Preset5IEC
	Preset9IEC
	Preset3FC
	Preset9FC
	PresetSBM
	PresetSBMReduced
	PresetSharp14k
	PresetSharp15k
	PresetSharp16k
	PresetExperimental

	numPresets
)

type presetInfo struct {
	name   string
	coeffs []float64
}

var presets = [numPresets]presetInfo{
	PresetNone:         {"None", nil},
	PresetEFB:          {"EFB", coeffEFB},
	Preset2SC:          {"2SC", coeff2SC},
	Preset2MEC:         {"2MEC", coeff2MEC},
	Preset3MEC:         {"3MEC", coeff3MEC},
	Preset9MEC:         {"9MEC", coeff9MEC},
	Preset5IEC:         {"5IEC", coeff5IEC},
	Preset9IEC:         {"9IEC", coeff9IEC},
	Preset3FC:          {"3FC", coeff3FC},
	Preset9FC:          {"9FC", coeff9FC},
	PresetSBM:          {"SBM", coeffSBM},
	PresetSBMReduced:   {"SBMReduced", coeffSBMr},
	PresetSharp14k:     {"Sharp14k", coeff14kSharp44100},
	PresetSharp15k:     {"Sharp15k", coeff15kSharp44100},
	PresetSharp16k:     {"Sharp16k", coeff16kSharp44100},
	PresetExperimental: {"Experimental", coeffEX},
}

// Valid reports whether p names a built-in preset.
func (p Preset) Valid() bool { return p >= 0 && p < numPresets }

func (p Preset) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Preset(%d)", int(p))
	}

	return presets[p].name
}

// Coefficients returns a fresh copy of the preset's feedback taps, or nil
// for PresetNone and unknown presets.
func (p Preset) Coefficients() []float64 {
	if !p.Valid() || len(presets[p].coeffs) == 0 {
		return nil
	}

	return append([]float64(nil), presets[p].coeffs...)
}

// ParsePreset looks a preset up by name, ignoring case. An empty name means
// PresetNone.
func ParsePreset(name string) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PresetNone, nil
	}

	for p := range numPresets {
		if strings.EqualFold(presets[p].name, name) {
			return p, nil
		}
	}

	return PresetNone, fmt.Errorf("dither: unknown noise-shaping preset %q", name)
}

// Feedback taps, most recent error first.

var coeffEFB = []float64{1}

var coeff2SC = []float64{1.0, -0.5}

var coeff2MEC = []float64{1.537, -0.8367}

var coeff3MEC = []float64{1.652, -1.049, 0.1382}

var coeff9MEC = []float64{
	1.662, -1.263, 0.4827, -0.2913, 0.1268,
	-0.1124, 0.03252, -0.01265, -0.03524,
}

var coeff5IEC = []float64{2.033, -2.165, 1.959, -1.590, 0.6149}

var coeff9IEC = []float64{
	2.847, -4.685, 6.214, -7.184, 6.639,
	-5.032, 3.263, -1.632, 0.4191,
}

var coeff3FC = []float64{1.623, -0.982, 0.109}

var coeff9FC = []float64{
	2.412, -3.370, 3.937, -4.174, 3.353,
	-2.205, 1.281, -0.569, 0.0847,
}

var coeffSBM = []float64{
	1.47933, -1.59032, 1.64436, -1.36613,
	0.926704, -0.557931, 0.26786, -0.106726,
	0.028516, 0.00123066, -0.00616555, 0.003067,
}

var coeffSBMr = []float64{
	1.47933, -1.59032, 1.64436, -1.36613,
	0.926704, -0.557931, 0.26786, -0.106726,
	0.028516, 0.00123066,
}

var coeffEX = []float64{
	1.2194769820734, -1.77912468394129,
	2.18256539389233, -2.33622087251503,
	2.2010985277411, -1.81964871362306,
	1.29830681491534, -0.767889385169331,
	0.320990893363264,
}

var coeff14kSharp44100 = []float64{
	1.62019206878484, -2.26551157411517,
	2.50884415683988, -2.25007947643775,
	1.62160867255441, -0.899114621685913,
	0.35350816625238,
}

var coeff15kSharp44100 = []float64{
	1.34860378444905, -1.80123976889643,
	2.04804746376671, -1.93234174830592,
	1.59264693241396, -1.04979311664936,
	0.599422666305319, -0.213194268754789,
}

var coeff16kSharp44100 = []float64{
	1.07618924753262, -1.41232919229157,
	1.61374140100329, -1.5996973679788,
	1.42711666927426, -1.09986023030973,
	0.750589080482029, -0.418709259968069,
	0.185132272731155,
}
