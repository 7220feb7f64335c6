// Package sink plays rendered audio for previews.
//
// Playback is delegated to an external player program: the buffer is
// written to a temporary WAV file which the player opens. Detect picks the
// first known player found on $PATH and falls back to Discard, which
// reports ErrUnavailable.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/cwbudde/algo-remix/codec"
	"github.com/cwbudde/algo-remix/dsp/pcm"
)

// ErrUnavailable indicates that no audio output is available.
var ErrUnavailable = errors.New("sink: no audio player available")

// Sink plays a buffer and returns when playback has finished.
type Sink interface {
	Play(ctx context.Context, buf *pcm.Buffer) error
}

// Player describes an external program that plays a WAV file passed as its
// last argument.
type Player struct {
	Name string
	Args []string
}

// Players lists the known players in order of preference.
var Players = []Player{
	{Name: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{Name: "aplay", Args: []string{"-q"}},
	{Name: "afplay"},
	{Name: "paplay"},
}

// Command plays audio through an external program.
type Command struct {
	path   string
	args   []string
	logger *slog.Logger
}

// NewCommand returns a sink running path with args followed by the name of
// a temporary WAV file.
func NewCommand(path string, args ...string) *Command {
	return &Command{path: path, args: args, logger: slog.New(slog.DiscardHandler)}
}

// WithLogger returns c logging to l.
func (c *Command) WithLogger(l *slog.Logger) *Command {
	if l != nil {
		c.logger = l
	}
	return c
}

// Path returns the player executable.
func (c *Command) Path() string { return c.path }

// Play renders buf to a temporary 16-bit WAV file and runs the player on it.
// Cancelling ctx kills the player.
func (c *Command) Play(ctx context.Context, buf *pcm.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "remix-preview-*.wav")
	if err != nil {
		return fmt.Errorf("sink: temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	encErr := codec.EncodeWriter(tmp, buf, codec.FormatWAV, codec.WithBitDepth(16))
	if cerr := tmp.Close(); encErr == nil {
		encErr = cerr
	}
	if encErr != nil {
		return fmt.Errorf("sink: render preview: %w", encErr)
	}

	args := append(append([]string{}, c.args...), name)
	cmd := exec.CommandContext(ctx, c.path, args...)

	c.logger.Debug("starting player", "player", c.path, "file", name, "seconds", buf.Seconds())
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("sink: %s: %w: %s", c.path, err, out)
	}

	return nil
}

type discard struct{}

func (discard) Play(context.Context, *pcm.Buffer) error { return ErrUnavailable }

// Discard is the sink used when no player is installed. Play always fails
// with ErrUnavailable.
var Discard Sink = discard{}

// Detect returns a Command for the first entry of Players found on $PATH,
// or Discard.
func Detect() Sink {
	return DetectWith(exec.LookPath)
}

// DetectWith is Detect with a custom executable lookup.
func DetectWith(lookPath func(string) (string, error)) Sink {
	for _, p := range Players {
		if path, err := lookPath(p.Name); err == nil {
			return NewCommand(path, p.Args...)
		}
	}

	return Discard
}

// Preview plays buf on s. A missing player is not an error: it is logged at
// debug level and Preview returns nil.
func Preview(ctx context.Context, s Sink, buf *pcm.Buffer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if s == nil {
		s = Discard
	}

	err := s.Play(ctx, buf)
	if errors.Is(err, ErrUnavailable) {
		logger.Debug("preview skipped", "reason", err)
		return nil
	}

	return err
}
