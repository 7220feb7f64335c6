// Package loudness meters programme loudness per EBU R128 / ITU-R BS.1770:
// K-weighting, 400 ms momentary and 3 s short-term windows, and gated
// integrated loudness in LUFS.
package loudness
