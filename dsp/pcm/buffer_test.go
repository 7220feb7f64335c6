package pcm

import (
	"errors"
	"math"
	"testing"
	"time"
)

func stereo(t *testing.T) *Buffer {
	t.Helper()
	b, err := FromChannels(4, [][]float64{
		{0.1, 0.2, 0.3, 0.4},
		{-0.1, -0.2, -0.3, -0.4},
	})
	if err != nil {
		t.Fatalf("FromChannels: %v", err)
	}
	return b
}

func TestNewValidatesLayout(t *testing.T) {
	tests := []struct {
		name     string
		rate     int
		channels int
	}{
		{name: "zero rate", rate: 0, channels: 1},
		{name: "negative rate", rate: -44100, channels: 1},
		{name: "no channels", rate: 44100, channels: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rate, tt.channels, 10)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("err = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestNewIsSilent(t *testing.T) {
	b, err := New(8000, 2, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Frames() != 16 || b.Channels() != 2 || b.SampleRate() != 8000 {
		t.Fatalf("layout = %d frames %d ch %d Hz", b.Frames(), b.Channels(), b.SampleRate())
	}
	if b.Peak() != 0 {
		t.Fatalf("peak = %v, want 0", b.Peak())
	}
	if b.BitDepth() != 16 {
		t.Fatalf("bit depth = %d, want 16", b.BitDepth())
	}
}

func TestFromChannelsRejectsRagged(t *testing.T) {
	_, err := FromChannels(44100, [][]float64{{1, 2}, {1}})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestFromChannelsCopies(t *testing.T) {
	src := []float64{0.5, 0.25}
	b, err := FromChannels(10, [][]float64{src})
	if err != nil {
		t.Fatalf("FromChannels: %v", err)
	}
	src[0] = 9
	v, _ := b.At(0, 0)
	if v != 0.5 {
		t.Fatalf("buffer aliased caller slice: got %v", v)
	}
}

func TestInterleavedRoundTrip(t *testing.T) {
	b := stereo(t)
	inter := b.Interleaved()
	want := []float64{0.1, -0.1, 0.2, -0.2, 0.3, -0.3, 0.4, -0.4}
	for i := range want {
		if inter[i] != want[i] {
			t.Fatalf("interleaved[%d] = %v, want %v", i, inter[i], want[i])
		}
	}

	back, err := FromInterleaved(4, 2, inter)
	if err != nil {
		t.Fatalf("FromInterleaved: %v", err)
	}
	if !back.Equal(b, 0) {
		t.Fatal("interleave round trip changed samples")
	}
}

func TestFromInterleavedDropsPartialFrame(t *testing.T) {
	b, err := FromInterleaved(10, 2, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("FromInterleaved: %v", err)
	}
	if b.Frames() != 1 {
		t.Fatalf("frames = %d, want 1", b.Frames())
	}
}

func TestAtOutOfRange(t *testing.T) {
	b := stereo(t)
	for _, idx := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 4}} {
		if _, err := b.At(idx[0], idx[1]); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("At(%d,%d) err = %v, want ErrIndexOutOfRange", idx[0], idx[1], err)
		}
	}
	if _, err := b.Channel(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Channel(3) err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestDuration(t *testing.T) {
	b, _ := New(44100, 1, 22050)
	if b.Seconds() != 0.5 {
		t.Fatalf("seconds = %v, want 0.5", b.Seconds())
	}
	if b.Duration() != 500*time.Millisecond {
		t.Fatalf("duration = %v, want 500ms", b.Duration())
	}
}

func TestSlice(t *testing.T) {
	b := stereo(t)
	s, err := b.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if s.Frames() != 2 {
		t.Fatalf("frames = %d, want 2", s.Frames())
	}
	v, _ := s.At(1, 0)
	if v != -0.2 {
		t.Fatalf("s[1][0] = %v, want -0.2", v)
	}
	if _, err := b.Slice(3, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestMono(t *testing.T) {
	m := stereo(t).Mono()
	for i, v := range m {
		if math.Abs(v) > 1e-15 {
			t.Fatalf("mono[%d] = %v, want 0", i, v)
		}
	}
}

func TestMapChannelsDoesNotMutateSource(t *testing.T) {
	b := stereo(t)
	out, err := b.MapChannels(func(_ int, s []float64) ([]float64, error) {
		for i := range s {
			s[i] *= 2
		}
		return s, nil
	})
	if err != nil {
		t.Fatalf("MapChannels: %v", err)
	}
	v, _ := b.At(0, 3)
	if v != 0.4 {
		t.Fatalf("source mutated: %v", v)
	}
	w, _ := out.At(0, 3)
	if w != 0.8 {
		t.Fatalf("out = %v, want 0.8", w)
	}
}

func TestMapChannelsRejectsUnequalResults(t *testing.T) {
	b := stereo(t)
	_, err := b.MapChannels(func(ch int, s []float64) ([]float64, error) {
		return s[:ch+1], nil
	})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestFiniteAndPeak(t *testing.T) {
	b := stereo(t)
	if !b.Finite() {
		t.Fatal("expected finite buffer")
	}
	if b.Peak() != 0.4 {
		t.Fatalf("peak = %v, want 0.4", b.Peak())
	}

	bad, _ := FromChannels(4, [][]float64{{0, math.NaN()}})
	if bad.Finite() {
		t.Fatal("expected NaN to be reported")
	}
}

func TestWithBitDepth(t *testing.T) {
	b := stereo(t)
	c := b.WithBitDepth(24)
	if c.BitDepth() != 24 || b.BitDepth() != 16 {
		t.Fatalf("bit depth c=%d b=%d", c.BitDepth(), b.BitDepth())
	}
	if c.WithBitDepth(0).BitDepth() != 24 {
		t.Fatal("non-positive bit depth should be ignored")
	}
}
