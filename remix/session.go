package remix

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-remix/codec"
	"github.com/cwbudde/algo-remix/dsp/pcm"
	"github.com/cwbudde/algo-remix/sink"
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger for load, preview and export events.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session holds one loaded source. Every Render, Preview and Export
// recomputes from the unmodified source. A Session is not safe for
// concurrent Load calls.
type Session struct {
	pipeline *Pipeline
	logger   *slog.Logger

	path   string
	format codec.Format
	source *pcm.Buffer
}

// NewSession returns an empty session rendering with pl, or with the
// default pipeline if pl is nil.
func NewSession(pl *Pipeline, opts ...SessionOption) *Session {
	if pl == nil {
		pl = defaultPipeline
	}

	s := &Session{
		pipeline: pl,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load decodes path and makes it the session source. On error the previous
// source is kept.
func (s *Session) Load(path string) error {
	f, err := codec.FormatFromPath(path)
	if err != nil {
		return err
	}

	buf, err := codec.Decode(path)
	if err != nil {
		return err
	}

	s.path, s.format, s.source = path, f, buf
	s.logger.Info("loaded", "path", path, "format", f,
		"rate", buf.SampleRate(), "channels", buf.Channels(), "seconds", buf.Seconds())

	return nil
}

// SetSource replaces the source with an in-memory buffer that has no file
// behind it.
func (s *Session) SetSource(buf *pcm.Buffer) {
	s.path, s.format, s.source = "", codec.FormatUnknown, buf
}

// Source returns the loaded buffer or nil.
func (s *Session) Source() *pcm.Buffer { return s.source }

// Path returns the path of the loaded file, or "" for none.
func (s *Session) Path() string { return s.path }

// Loaded reports whether a source is present.
func (s *Session) Loaded() bool { return s.source != nil }

// Render applies p to the source.
func (s *Session) Render(p Params) (*pcm.Buffer, error) {
	out, _, err := s.RenderReport(p)
	return out, err
}

// RenderReport is Render that also returns the pipeline report.
func (s *Session) RenderReport(p Params) (*pcm.Buffer, Report, error) {
	if s.source == nil {
		return nil, Report{}, ErrNoSource
	}
	return s.pipeline.ProcessReport(s.source, p)
}

// Preview renders p and plays it on out. A missing player is not an error.
func (s *Session) Preview(ctx context.Context, p Params, out sink.Sink) error {
	buf, err := s.Render(p)
	if err != nil {
		return err
	}

	if err := sink.Preview(ctx, out, buf, s.logger); err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}

// Export renders p and writes it to path. If f is codec.FormatUnknown the
// format comes from the extension. When both the source and the output are
// MP3, ID3 tags are copied and the BPM tag is scaled by the tempo ratio.
func (s *Session) Export(p Params, path string, f codec.Format, opts ...codec.EncodeOption) (Report, error) {
	if s.source == nil {
		return Report{}, ErrNoSource
	}

	if f == codec.FormatUnknown {
		var err error
		if f, err = codec.FormatFromPath(path); err != nil {
			return Report{}, fmt.Errorf("save failed: %w", err)
		}
	}

	buf, report, err := s.pipeline.ProcessReport(s.source, p)
	if err != nil {
		return Report{}, err
	}

	opts = append([]codec.EncodeOption{codec.WithLogger(s.logger)}, opts...)
	if err := s.writeExport(buf, path, f, report.Params.TempoRatio, opts); err != nil {
		return Report{}, fmt.Errorf("save failed: %w", err)
	}

	s.logger.Info("exported", "path", path, "format", f, "clipped", report.ClippedSamples)

	return report, nil
}

// writeExport encodes into a temporary file next to path and renames it
// into place, so the source stays readable for tag copying even when path
// is the loaded file.
func (s *Session) writeExport(buf *pcm.Buffer, path string, f codec.Format, tempoRatio float64, opts []codec.EncodeOption) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".remix-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := codec.Encode(buf, tmpPath, f, opts...); err != nil {
		return err
	}

	if s.format == codec.FormatMP3 && f == codec.FormatMP3 {
		if err := codec.CopyTags(s.path, tmpPath, tempoRatio); err != nil {
			return fmt.Errorf("tags: %w", err)
		}
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	committed = true

	return nil
}
