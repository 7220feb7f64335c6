package testutil

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-remix/dsp/pcm"
)

// SineBuffer returns a buffer holding the same sine on every channel.
func SineBuffer(t testing.TB, freqHz float64, sampleRate, channels int, seconds, amplitude float64) *pcm.Buffer {
	t.Helper()

	x := DeterministicSine(freqHz, float64(sampleRate), amplitude, int(math.Round(seconds*float64(sampleRate))))
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = x
	}

	buf, err := pcm.FromChannels(sampleRate, data)
	if err != nil {
		t.Fatalf("SineBuffer: %v", err)
	}

	return buf
}

// RequireBuffersNearlyEqual fails if the buffers differ in layout or any
// sample differs by more than eps.
func RequireBuffersNearlyEqual(t testing.TB, got, want *pcm.Buffer, eps float64) {
	t.Helper()

	if got.SampleRate() != want.SampleRate() || got.Channels() != want.Channels() || got.Frames() != want.Frames() {
		t.Fatalf("layout mismatch: got %d Hz %d ch %d frames, want %d Hz %d ch %d frames",
			got.SampleRate(), got.Channels(), got.Frames(),
			want.SampleRate(), want.Channels(), want.Frames())
	}

	for ch := range want.Channels() {
		g, _ := got.Channel(ch)
		w, _ := want.Channel(ch)
		for i := range w {
			if d := math.Abs(g[i] - w[i]); d > eps {
				t.Fatalf("channel %d sample %d: got %v want %v (diff %g > %g)", ch, i, g[i], w[i], d, eps)
			}
		}
	}
}
