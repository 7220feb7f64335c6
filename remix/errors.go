package remix

import (
	"errors"

	"github.com/cwbudde/algo-remix/codec"
	"github.com/cwbudde/algo-remix/dsp/core"
	"github.com/cwbudde/algo-remix/dsp/pcm"
)

// ErrNoSource is returned when an operation needs audio but none is loaded.
var ErrNoSource = errors.New("remix: no file loaded")

// Error kinds of the packages remix builds on, re-exported for hosts.
var (
	ErrInvalidParameter  = core.ErrInvalidParameter
	ErrUnsupportedFormat = codec.ErrUnsupportedFormat
	ErrIO                = codec.ErrIO
	ErrIndexOutOfRange   = pcm.ErrIndexOutOfRange
)
