package codec

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

// Info describes an audio file without decoding its samples.
type Info struct {
	Path       string
	Format     Format
	SampleRate int
	Channels   int
	Frames     int64
	BitDepth   int
	Duration   time.Duration

	// MP3 only.
	MP3Frames int
	Tags      Tags
}

// Probe reads the header information of the file at path.
func Probe(path string) (Info, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Info{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return Info{}, ioError("open", path, err)
	}
	defer file.Close()

	info := Info{Path: path, Format: f}
	switch f {
	case FormatWAV:
		err = probeWAV(file, &info)
	case FormatFLAC:
		err = probeFLAC(file, &info)
	case FormatMP3:
		err = probeMP3(file, path, &info)
	default:
		err = fmt.Errorf("%w: probe %v", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}

	if info.Duration == 0 && info.SampleRate > 0 {
		info.Duration = framesToDuration(info.Frames, info.SampleRate)
	}

	return info, nil
}

func probeWAV(file *os.File, info *Info) error {
	d := wav.NewDecoder(file)
	if !d.IsValidFile() {
		return fmt.Errorf("%w: not a PCM wav stream", ErrUnsupportedFormat)
	}
	if err := d.FwdToPCM(); err != nil {
		return fmt.Errorf("%w: wav data chunk: %w", ErrIO, err)
	}

	info.SampleRate = int(d.SampleRate)
	info.Channels = int(d.NumChans)
	info.BitDepth = int(d.BitDepth)

	frameBytes := int64(info.Channels) * int64((info.BitDepth-1)/8+1)
	if frameBytes > 0 {
		info.Frames = d.PCMLen() / frameBytes
	}

	return nil
}

func probeFLAC(file *os.File, info *Info) error {
	stream, err := flac.New(file)
	if err != nil {
		return fmt.Errorf("%w: flac: %w", ErrUnsupportedFormat, err)
	}
	defer stream.Close()

	info.SampleRate = int(stream.Info.SampleRate)
	info.Channels = int(stream.Info.NChannels)
	info.BitDepth = int(stream.Info.BitsPerSample)
	info.Frames = int64(stream.Info.NSamples)

	return nil
}

func probeMP3(file *os.File, path string, info *Info) error {
	scan, err := scanMP3(file)
	if err != nil {
		return err
	}

	info.SampleRate = scan.sampleRate
	info.Channels = 2
	if scan.mono {
		info.Channels = 1
	}
	info.BitDepth = mp3BitDepth
	info.Frames = int64(scan.samples)
	info.Duration = scan.duration
	info.MP3Frames = scan.frames

	tags, err := ReadTags(path)
	if err != nil {
		return err
	}
	info.Tags = tags

	return nil
}

func framesToDuration(frames int64, rate int) time.Duration {
	return time.Duration(math.Round(float64(frames) / float64(rate) * float64(time.Second)))
}
