// Package codec decodes audio files into pcm.Buffer values and encodes
// rendered buffers back to disk.
//
// Supported containers:
//
//	format  decode                       encode
//	WAV     go-audio/wav (8-32 bit PCM)  go-audio/wav (8, 16, 24, 32 bit)
//	MP3     hajimehoshi/go-mp3           braheezy/shine-mp3
//	FLAC    mewkiz/flac                  not supported
//
// Export quantization runs through dsp/dither: TPDF dither by default, with
// optional FIR noise shaping and a seed for reproducible files. MP3 export
// resamples to 44.1 kHz when the buffer rate is not an MPEG-1 rate.
//
// Probe reports the stream layout without decoding, and CopyTags carries
// ID3 tags from a source MP3 to a rendered one.
package codec
