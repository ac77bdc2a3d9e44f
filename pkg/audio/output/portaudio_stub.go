//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"

	"github.com/Sendspin/chime/pkg/audio"
)

const portAudioEnabled = false

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Opener {
	return &PortAudio{}
}

// Open always fails without the portaudio build tag
func (p *PortAudio) Open(spec audio.Spec, device string) (Device, error) {
	return nil, fmt.Errorf("%w: PortAudio support not enabled (build with -tags portaudio)", ErrUnsupported)
}
