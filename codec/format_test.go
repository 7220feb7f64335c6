package codec

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"wav", FormatWAV},
		{".WAV", FormatWAV},
		{"wave", FormatWAV},
		{"mp3", FormatMP3},
		{" .Mp3 ", FormatMP3},
		{"flac", FormatFLAC},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	for _, bad := range []string{"", "ogg", "aiff"} {
		if _, err := ParseFormat(bad); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", bad, err)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("/music/song.final.mp3"); err != nil || f != FormatMP3 {
		t.Fatalf("FormatFromPath(mp3) = %v, %v", f, err)
	}
	if _, err := FormatFromPath("/music/song"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("FormatFromPath(no ext) error = %v", err)
	}
}

func TestFormatString(t *testing.T) {
	if FormatFLAC.String() != "flac" || FormatWAV.Extension() != ".wav" || FormatUnknown.Extension() != "" {
		t.Fatal("unexpected format names")
	}
	if got := Format(42).String(); got != "Format(42)" {
		t.Fatalf("Format(42).String() = %q", got)
	}
}
