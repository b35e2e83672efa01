package disc

import (
	"context"
	"errors"
)

const (
	// SectorSize is the number of CD-DA bytes per frame: 588 stereo 16-bit samples.
	SectorSize = 2352
	// SampleRate, Channels and BitsPerSample describe CD-DA PCM.
	SampleRate    = 44100
	Channels      = 2
	BitsPerSample = 16
)

// ErrUnsupportedPlatform is returned where no drive implementation exists.
var ErrUnsupportedPlatform = errors.New("optical drive access is only supported on linux")

// Drive abstracts the optical drive used for a rip.
type Drive interface {
	ReadTOC(ctx context.Context) (TOC, error)
	// ReadTrack returns the track's PCM as little-endian interleaved 16-bit
	// stereo samples.
	ReadTrack(ctx context.Context, toc TOC, number uint8) ([]byte, error)
	Eject(ctx context.Context) error
	Close() error
}
