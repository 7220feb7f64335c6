package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"

	"github.com/cwbudde/algo-remix/dsp/pcm"
)

// Decode reads the file at path, inferring the container from its extension.
func Decode(path string) (*pcm.Buffer, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer file.Close()

	buf, err := DecodeReader(file, f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return buf, nil
}

// DecodeReader decodes a complete stream of format f into a Buffer.
func DecodeReader(r io.ReadSeeker, f Format) (*pcm.Buffer, error) {
	switch f {
	case FormatWAV:
		return decodeWAV(r)
	case FormatMP3:
		return decodeMP3(r)
	case FormatFLAC:
		return decodeFLAC(r)
	default:
		return nil, fmt.Errorf("%w: decode %v", ErrUnsupportedFormat, f)
	}
}

func decodeWAV(r io.ReadSeeker) (*pcm.Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM wav stream", ErrUnsupportedFormat)
	}

	ib, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: wav: %w", ErrIO, err)
	}

	bits := ib.SourceBitDepth
	if bits <= 0 {
		bits = int(d.BitDepth)
	}

	samples := make([]float64, len(ib.Data))
	switch {
	case bits == 8:
		// 8-bit WAV is unsigned.
		for i, v := range ib.Data {
			samples[i] = float64(v-128) / 128
		}
	default:
		scale := 1 / math.Exp2(float64(bits-1))
		for i, v := range ib.Data {
			samples[i] = float64(v) * scale
		}
	}

	buf, err := pcm.FromInterleaved(ib.Format.SampleRate, ib.Format.NumChannels, samples)
	if err != nil {
		return nil, err
	}

	return buf.WithBitDepth(bits), nil
}

func decodeMP3(r io.ReadSeeker) (*pcm.Buffer, error) {
	// go-mp3 always yields stereo; the first frame header tells whether the
	// stream was mono.
	first, err := firstFrame(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: mp3 rewind: %w", ErrIO, err)
	}

	d, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %w", ErrUnsupportedFormat, err)
	}

	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %w", ErrIO, err)
	}

	frames := len(raw) / 4
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range frames {
		left[i] = float64(int16(binary.LittleEndian.Uint16(raw[4*i:]))) / 32768
		right[i] = float64(int16(binary.LittleEndian.Uint16(raw[4*i+2:]))) / 32768
	}

	channels := [][]float64{left, right}
	if first.mono {
		channels = channels[:1]
	}

	return pcm.FromChannels(d.SampleRate(), channels)
}

func decodeFLAC(r io.Reader) (*pcm.Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: flac: %w", ErrUnsupportedFormat, err)
	}
	defer stream.Close()

	info := stream.Info
	nch := int(info.NChannels)
	bits := int(info.BitsPerSample)
	scale := 1 / math.Exp2(float64(bits-1))

	channels := make([][]float64, nch)
	for ch := range channels {
		channels[ch] = make([]float64, 0, int(info.NSamples))
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: flac frame: %w", ErrIO, err)
		}

		for ch := range nch {
			for _, v := range frame.Subframes[ch].Samples {
				channels[ch] = append(channels[ch], float64(v)*scale)
			}
		}
	}

	buf, err := pcm.FromChannels(int(info.SampleRate), channels)
	if err != nil {
		return nil, err
	}

	return buf.WithBitDepth(bits), nil
}
