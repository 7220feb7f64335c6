// Package remix renders tempo, pitch and volume changes of decoded audio.
//
// A Pipeline applies three stages in a fixed order to a pcm.Buffer:
//
//  1. tempo: WSOLA time-stretch by 1/TempoRatio, pitch unchanged
//  2. pitch: shift by PitchSemitones, duration unchanged (or, with
//     LegacyCoupledPitch, a plain rate change that also scales duration)
//  3. gain: GainDB with hard clipping at full scale
//
// Every call recomputes from the source buffer, which is never modified, so
// a Session can render any number of previews from one decoded file. Params
// are normalized before use: see Params.Normalize for the clamping rules.
package remix
