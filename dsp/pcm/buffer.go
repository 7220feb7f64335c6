package pcm

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-remix/dsp/core"
)

const defaultBitDepth = 16

var (
	// ErrIndexOutOfRange indicates a (channel, frame) access outside the buffer.
	ErrIndexOutOfRange = errors.New("pcm: index out of range")
	// ErrInvalidFormat indicates a non-positive sample rate or channel count,
	// or channels of unequal length.
	ErrInvalidFormat = errors.New("pcm: invalid format")
)

// Buffer holds planar PCM audio in float64 working format.
type Buffer struct {
	sampleRate int
	bitDepth   int
	channels   [][]float64
}

// New returns a silent Buffer with the given layout.
func New(sampleRate, channels, frames int) (*Buffer, error) {
	if err := validateLayout(sampleRate, channels); err != nil {
		return nil, err
	}
	if frames < 0 {
		frames = 0
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}

	return &Buffer{sampleRate: sampleRate, bitDepth: defaultBitDepth, channels: data}, nil
}

// FromChannels copies per-channel sample slices into a new Buffer.
// All channels must have the same length.
func FromChannels(sampleRate int, channels [][]float64) (*Buffer, error) {
	if err := validateLayout(sampleRate, len(channels)); err != nil {
		return nil, err
	}

	frames := len(channels[0])
	data := make([][]float64, len(channels))
	for ch, src := range channels {
		if len(src) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d",
				ErrInvalidFormat, ch, len(src), frames)
		}
		data[ch] = core.Clone(src)
	}

	return &Buffer{sampleRate: sampleRate, bitDepth: defaultBitDepth, channels: data}, nil
}

// FromInterleaved de-interleaves frame-major samples into a new Buffer.
// A trailing partial frame is dropped.
func FromInterleaved(sampleRate, channels int, samples []float64) (*Buffer, error) {
	if err := validateLayout(sampleRate, channels); err != nil {
		return nil, err
	}

	frames := len(samples) / channels
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	for i := range frames {
		base := i * channels
		for ch := range channels {
			data[ch][i] = samples[base+ch]
		}
	}

	return &Buffer{sampleRate: sampleRate, bitDepth: defaultBitDepth, channels: data}, nil
}

// WithBitDepth returns a copy of b carrying bits as its source bit depth.
// Non-positive values are ignored.
func (b *Buffer) WithBitDepth(bits int) *Buffer {
	out := b.Clone()
	if bits > 0 {
		out.bitDepth = bits
	}
	return out
}

// SampleRate returns the sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Channels returns the channel count.
func (b *Buffer) Channels() int { return len(b.channels) }

// BitDepth returns the bit depth of the material the buffer was decoded from.
// It is metadata only: samples are always float64.
func (b *Buffer) BitDepth() int { return b.bitDepth }

// Frames returns the number of samples per channel.
func (b *Buffer) Frames() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Seconds returns the duration in seconds.
func (b *Buffer) Seconds() float64 {
	return float64(b.Frames()) / float64(b.sampleRate)
}

// Duration returns the duration rounded to the nearest nanosecond.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(math.Round(b.Seconds() * float64(time.Second)))
}

// At returns the sample at frame i of channel ch.
func (b *Buffer) At(ch, i int) (float64, error) {
	if ch < 0 || ch >= len(b.channels) || i < 0 || i >= b.Frames() {
		return 0, fmt.Errorf("%w: channel %d frame %d (channels=%d frames=%d)",
			ErrIndexOutOfRange, ch, i, len(b.channels), b.Frames())
	}
	return b.channels[ch][i], nil
}

// Channel returns a copy of channel ch.
func (b *Buffer) Channel(ch int) ([]float64, error) {
	if ch < 0 || ch >= len(b.channels) {
		return nil, fmt.Errorf("%w: channel %d (channels=%d)", ErrIndexOutOfRange, ch, len(b.channels))
	}
	return core.Clone(b.channels[ch]), nil
}

// Slice returns a new Buffer holding frames [start, end).
func (b *Buffer) Slice(start, end int) (*Buffer, error) {
	if start < 0 || end < start || end > b.Frames() {
		return nil, fmt.Errorf("%w: slice [%d:%d] of %d frames", ErrIndexOutOfRange, start, end, b.Frames())
	}

	data := make([][]float64, len(b.channels))
	for ch, src := range b.channels {
		data[ch] = core.Clone(src[start:end])
	}

	return &Buffer{sampleRate: b.sampleRate, bitDepth: b.bitDepth, channels: data}, nil
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([][]float64, len(b.channels))
	for ch, src := range b.channels {
		data[ch] = core.Clone(src)
	}
	return &Buffer{sampleRate: b.sampleRate, bitDepth: b.bitDepth, channels: data}
}

// Interleaved returns the samples in frame-major order.
func (b *Buffer) Interleaved() []float64 {
	nch := len(b.channels)
	out := make([]float64, b.Frames()*nch)
	for ch, src := range b.channels {
		for i, v := range src {
			out[i*nch+ch] = v
		}
	}
	return out
}

// Mono returns the per-frame average of all channels.
func (b *Buffer) Mono() []float64 {
	if len(b.channels) == 1 {
		return core.Clone(b.channels[0])
	}

	out := make([]float64, b.Frames())
	for _, src := range b.channels {
		for i, v := range src {
			out[i] += v
		}
	}

	scale := 1 / float64(len(b.channels))
	for i := range out {
		out[i] *= scale
	}
	return out
}

// Peak returns the largest absolute sample value across all channels.
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, src := range b.channels {
		for _, v := range src {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// Finite reports whether every sample is neither NaN nor ±Inf.
func (b *Buffer) Finite() bool {
	for _, src := range b.channels {
		for _, v := range src {
			if !core.IsFinite(v) {
				return false
			}
		}
	}
	return true
}

// Equal reports whether b and other share a layout and all samples differ by
// at most eps.
func (b *Buffer) Equal(other *Buffer, eps float64) bool {
	if other == nil || b.sampleRate != other.sampleRate ||
		len(b.channels) != len(other.channels) || b.Frames() != other.Frames() {
		return false
	}

	for ch, src := range b.channels {
		for i, v := range src {
			if math.Abs(v-other.channels[ch][i]) > eps {
				return false
			}
		}
	}
	return true
}

// MapChannels applies fn to a private copy of every channel and assembles the
// results into a new Buffer at the same sample rate. Every result must have
// the same length.
func (b *Buffer) MapChannels(fn func(ch int, samples []float64) ([]float64, error)) (*Buffer, error) {
	data := make([][]float64, len(b.channels))
	for ch, src := range b.channels {
		out, err := fn(ch, core.Clone(src))
		if err != nil {
			return nil, err
		}
		data[ch] = out
	}

	return assemble(b, data)
}

// View calls fn with each channel's backing slice. fn must not modify or
// retain the slice; it exists so read-only consumers (stages, analysis)
// avoid a copy per channel.
func (b *Buffer) View(fn func(ch int, samples []float64)) {
	for ch, src := range b.channels {
		fn(ch, src)
	}
}

// Derive builds a new Buffer from already-processed channel data, keeping
// b's sample rate and bit depth. The slices are adopted without copying and
// must not be modified afterwards by the caller.
func (b *Buffer) Derive(channels [][]float64) (*Buffer, error) {
	if len(channels) != len(b.channels) {
		return nil, fmt.Errorf("%w: derived %d channels from %d", ErrInvalidFormat, len(channels), len(b.channels))
	}
	return assemble(b, channels)
}

func assemble(src *Buffer, data [][]float64) (*Buffer, error) {
	frames := len(data[0])
	for ch, s := range data {
		if len(s) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d",
				ErrInvalidFormat, ch, len(s), frames)
		}
	}
	return &Buffer{sampleRate: src.sampleRate, bitDepth: src.bitDepth, channels: data}, nil
}

func validateLayout(sampleRate, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %d", ErrInvalidFormat, sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("%w: channel count must be > 0: %d", ErrInvalidFormat, channels)
	}
	return nil
}
