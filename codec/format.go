package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat indicates an unknown container or an operation a
	// container does not support (FLAC encoding, more than two MP3 channels).
	ErrUnsupportedFormat = errors.New("codec: unsupported format")
	// ErrIO wraps filesystem and stream failures.
	ErrIO = errors.New("codec: i/o error")
)

// Format identifies an audio container.
type Format int

const (
	FormatUnknown Format = iota
	FormatWAV
	FormatMP3
	FormatFLAC
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatWAV:     "wav",
	FormatMP3:     "mp3",
	FormatFLAC:    "flac",
}

// String returns the lower-case container name.
func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + f.String()
}

// ParseFormat resolves a container name such as "wav" or ".MP3".
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "wav", "wave":
		return FormatWAV, nil
	case "mp3":
		return FormatMP3, nil
	case "flac":
		return FormatFLAC, nil
	}

	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromPath infers the container from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return FormatUnknown, fmt.Errorf("%w: no extension in %q", ErrUnsupportedFormat, path)
	}

	return ParseFormat(ext)
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
