package codec

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/braheezy/shine-mp3/pkg/mp3"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-remix/dsp/dither"
	"github.com/cwbudde/algo-remix/dsp/pcm"
	"github.com/cwbudde/algo-remix/dsp/resample"
)

const (
	wavPCMFormat    = 1
	mp3BitDepth     = 16
	mp3MaxChans     = 2
	mp3FallbackRate = 44100

	// Frames per MPEG-1 layer III pass (two granules of 576).
	mp3FramesPerPass = 1152
)

// EncodeOption configures export quantization.
type EncodeOption func(*encodeConfig) error

type encodeConfig struct {
	bitDepth   int
	ditherType dither.DitherType
	shaping    dither.Preset
	seed       uint64
	seeded     bool
	logger     *slog.Logger
}

func defaultEncodeConfig() encodeConfig {
	return encodeConfig{
		ditherType: dither.DitherTriangular,
		shaping:    dither.PresetNone,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// WithBitDepth sets the WAV sample width (8, 16, 24 or 32). Zero keeps the
// buffer's source bit depth. MP3 export always quantizes to 16 bits.
func WithBitDepth(bits int) EncodeOption {
	return func(cfg *encodeConfig) error {
		switch bits {
		case 0, 8, 16, 24, 32:
			cfg.bitDepth = bits
			return nil
		}
		return fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, bits)
	}
}

// WithDither selects the dither noise PDF (default TPDF).
func WithDither(dt dither.DitherType) EncodeOption {
	return func(cfg *encodeConfig) error {
		if !dt.Valid() {
			return fmt.Errorf("codec: invalid dither type %d", dt)
		}
		cfg.ditherType = dt
		return nil
	}
}

// WithNoiseShaping selects a FIR noise-shaping preset (default none).
func WithNoiseShaping(p dither.Preset) EncodeOption {
	return func(cfg *encodeConfig) error {
		if !p.Valid() {
			return fmt.Errorf("codec: invalid noise-shaping preset %d", p)
		}
		cfg.shaping = p
		return nil
	}
}

// WithSeed makes dither noise reproducible.
func WithSeed(seed uint64) EncodeOption {
	return func(cfg *encodeConfig) error {
		cfg.seed = seed
		cfg.seeded = true
		return nil
	}
}

// WithLogger sets the logger for export diagnostics.
func WithLogger(l *slog.Logger) EncodeOption {
	return func(cfg *encodeConfig) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// Encode writes buf to path in format f. If f is FormatUnknown the format is
// inferred from the extension. A partially written file is removed on error.
func Encode(buf *pcm.Buffer, path string, f Format, opts ...EncodeOption) (err error) {
	if f == FormatUnknown {
		if f, err = FormatFromPath(path); err != nil {
			return err
		}
	}
	if f == FormatFLAC {
		return fmt.Errorf("%w: flac encoding", ErrUnsupportedFormat)
	}

	file, err := os.Create(path)
	if err != nil {
		return ioError("create", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = ioError("close", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return EncodeWriter(file, buf, f, opts...)
}

// EncodeWriter writes buf to w in format f.
func EncodeWriter(w io.WriteSeeker, buf *pcm.Buffer, f Format, opts ...EncodeOption) error {
	cfg := defaultEncodeConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return err
		}
	}

	switch f {
	case FormatWAV:
		return encodeWAV(w, buf, cfg)
	case FormatMP3:
		return encodeMP3(w, buf, cfg)
	default:
		return fmt.Errorf("%w: encode %v", ErrUnsupportedFormat, f)
	}
}

func encodeWAV(w io.WriteSeeker, buf *pcm.Buffer, cfg encodeConfig) error {
	bits := cfg.bitDepth
	if bits == 0 {
		bits = buf.BitDepth()
	}
	switch bits {
	case 8, 16, 24, 32:
	default:
		cfg.logger.Debug("unsupported source bit depth, exporting 16-bit", "bits", bits)
		bits = 16
	}

	data, err := quantize(buf, bits, cfg)
	if err != nil {
		return err
	}
	if bits == 8 {
		for i := range data {
			data[i] += 128
		}
	}

	enc := wav.NewEncoder(w, buf.SampleRate(), bits, buf.Channels(), wavPCMFormat)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: buf.Channels(), SampleRate: buf.SampleRate()},
		Data:           data,
		SourceBitDepth: bits,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("%w: wav write: %w", ErrIO, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: wav finalize: %w", ErrIO, err)
	}

	return nil
}

func encodeMP3(w io.Writer, buf *pcm.Buffer, cfg encodeConfig) error {
	if buf.Channels() > mp3MaxChans {
		return fmt.Errorf("%w: mp3 supports at most %d channels, got %d",
			ErrUnsupportedFormat, mp3MaxChans, buf.Channels())
	}

	if !isMPEG1Rate(buf.SampleRate()) {
		cfg.logger.Debug("resampling for mp3 export", "from", buf.SampleRate(), "to", mp3FallbackRate)

		var err error
		buf, err = convertRate(buf, mp3FallbackRate)
		if err != nil {
			return err
		}
	}

	data, err := quantize(buf, mp3BitDepth, cfg)
	if err != nil {
		return err
	}

	samples := mp3Passes(data, buf.Channels())
	pass := mp3FramesPerPass * buf.Channels()

	enc := mp3.NewEncoder(buf.SampleRate(), buf.Channels())
	for off := 0; off < len(samples); off += pass {
		if err := enc.Write(w, samples[off:off+pass]); err != nil {
			return fmt.Errorf("%w: mp3 write: %w", ErrIO, err)
		}
	}

	return nil
}

// mp3Passes converts interleaved samples to int16 and zero-pads them to a
// whole number of encoder passes. The encoder reads a full pass per call.
func mp3Passes(data []int, channels int) []int16 {
	pass := mp3FramesPerPass * channels
	n := (len(data) + pass - 1) / pass * pass

	samples := make([]int16, n)
	for i, v := range data {
		samples[i] = int16(v)
	}

	return samples
}

// quantize returns interleaved integer samples. Each channel gets its own
// quantizer so noise-shaping state never leaks across channels.
func quantize(buf *pcm.Buffer, bits int, cfg encodeConfig) ([]int, error) {
	nch := buf.Channels()
	out := make([]int, buf.Frames()*nch)

	var qerr error
	buf.View(func(ch int, samples []float64) {
		if qerr != nil {
			return
		}

		opts := []dither.Option{
			dither.WithBitDepth(bits),
			dither.WithDitherType(cfg.ditherType),
			dither.WithFIRPreset(cfg.shaping),
		}
		if cfg.seeded {
			opts = append(opts, dither.WithSeed(cfg.seed+uint64(ch)))
		}

		q, err := dither.NewQuantizer(float64(buf.SampleRate()), opts...)
		if err != nil {
			qerr = fmt.Errorf("codec: quantizer: %w", err)
			return
		}

		for i, v := range samples {
			out[i*nch+ch] = q.ProcessInteger(v)
		}
	})

	return out, qerr
}

func isMPEG1Rate(rate int) bool {
	return rate == 32000 || rate == 44100 || rate == 48000
}

func convertRate(buf *pcm.Buffer, rate int) (*pcm.Buffer, error) {
	channels := make([][]float64, buf.Channels())

	var cerr error
	buf.View(func(ch int, samples []float64) {
		if cerr != nil {
			return
		}
		channels[ch], cerr = resample.ConvertRates(samples, float64(buf.SampleRate()), float64(rate))
	})
	if cerr != nil {
		return nil, fmt.Errorf("codec: resample to %d Hz: %w", rate, cerr)
	}

	out, err := pcm.FromChannels(rate, channels)
	if err != nil {
		return nil, err
	}

	return out.WithBitDepth(buf.BitDepth()), nil
}
