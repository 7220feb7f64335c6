package codec

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tcolgate/mp3"
)

type mp3Scan struct {
	sampleRate int
	mono       bool
	frames     int
	samples    int
	duration   time.Duration
}

// firstFrame reads the first MPEG audio frame header.
func firstFrame(r io.Reader) (mp3Scan, error) {
	var (
		f       mp3.Frame
		skipped int
	)

	if err := mp3.NewDecoder(r).Decode(&f, &skipped); err != nil {
		return mp3Scan{}, fmt.Errorf("%w: mp3 frame sync: %w", ErrUnsupportedFormat, err)
	}

	h := f.Header()

	return mp3Scan{
		sampleRate: int(h.SampleRate()),
		mono:       h.ChannelMode() == mp3.SingleChannel,
		frames:     1,
		samples:    f.Samples(),
		duration:   f.Duration(),
	}, nil
}

// scanMP3 walks every frame to total the stream length.
func scanMP3(r io.Reader) (mp3Scan, error) {
	var (
		s       mp3Scan
		f       mp3.Frame
		skipped int
		d       = mp3.NewDecoder(r)
	)

	for {
		if err := d.Decode(&f, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if s.frames > 0 && (errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, mp3.ErrPrematureEOF)) {
				// Truncated trailing frame.
				break
			}
			return mp3Scan{}, fmt.Errorf("%w: mp3 frame %d: %w", ErrUnsupportedFormat, s.frames, err)
		}

		if s.frames == 0 {
			h := f.Header()
			s.sampleRate = int(h.SampleRate())
			s.mono = h.ChannelMode() == mp3.SingleChannel
		}

		s.frames++
		s.samples += f.Samples()
		s.duration += f.Duration()
	}

	if s.frames == 0 {
		return mp3Scan{}, fmt.Errorf("%w: no mp3 frames", ErrUnsupportedFormat)
	}

	return s, nil
}
