// Package tempo changes the playback speed of sampled audio.
//
// Stretcher implements WSOLA time-scale modification: the output is built
// from overlapping input segments whose splice points are chosen by
// waveform similarity, so duration changes while pitch stays put.
//
// Change wraps the two supported behaviors behind a Mode:
//   - ModePreservePitch stretches with WSOLA (duration only)
//   - ModeLegacyCoupled converts the sample rate (duration and pitch)
//
// Tempo ratios follow playback-speed semantics: 2 plays twice as fast and
// halves the duration.
package tempo
