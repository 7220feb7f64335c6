package testutil

import "testing"

func TestSineBuffer(t *testing.T) {
	buf := SineBuffer(t, 440, 8000, 2, 0.5, 0.25)
	if buf.SampleRate() != 8000 || buf.Channels() != 2 || buf.Frames() != 4000 {
		t.Fatalf("layout = %d Hz %d ch %d frames", buf.SampleRate(), buf.Channels(), buf.Frames())
	}
	if p := buf.Peak(); p > 0.25 || p < 0.24 {
		t.Fatalf("peak = %v", p)
	}

	RequireBuffersNearlyEqual(t, buf, buf.Clone(), 0)
}
