// Package resample converts whole signals between sample rates by a
// rational factor with a polyphase Kaiser-windowed sinc filter.
//
// The legacy tempo mode uses it to play samples back at a different rate,
// the spectral pitch shifter to undo its time stretch, and the MP3 encoder
// to reach an MPEG-1 sample rate. Output is delay-compensated, so it lines
// up with the input.
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
