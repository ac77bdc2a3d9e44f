// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import (
	"context"
	"errors"

	"github.com/Sendspin/chime/pkg/audio"
)

var (
	// ErrUnsupported is returned when a device cannot play the requested spec
	ErrUnsupported = errors.New("output: spec not supported by device")

	// ErrNotWritable is returned when a readiness wait wakes without the device accepting data
	ErrNotWritable = errors.New("output: device not writable")
)

// Device represents an open, configured playback device
type Device interface {
	// WaitWritable blocks until the device accepts more data.
	// It returns ctx.Err() once ctx is done; cancellation wins over readiness.
	WaitWritable(ctx context.Context) error

	// Write writes PCM data, possibly partially (blocks until written)
	Write(p []byte) (int, error)

	// Close releases the device handle
	Close() error
}

// Opener opens devices configured for a stream spec
type Opener interface {
	// Open opens the named device (empty for the backend default) for spec
	Open(spec audio.Spec, device string) (Device, error)
}
