// Package pitch provides duration-preserving pitch shifters.
//
// Included processors:
//   - PitchShifter: time-domain, WSOLA stretch followed by Hermite
//     interpolation back to the input length.
//   - SpectralPitchShifter: frequency-domain phase vocoder with bin shifting
//     for small ratios and stretch-plus-resample for large ones.
//   - PitchProcessor: shared interface; NewProcessor builds either by Method.
//
// Shifts are limited to ±MaxSemitones (ratios 0.25 to 4).
package pitch
