//go:build !linux && !freebsd

// ABOUTME: OSS stub for platforms without /dev/dsp
// ABOUTME: Provides compile-time placeholder where OSS is not available
package output

import (
	"fmt"

	"github.com/Sendspin/chime/pkg/audio"
)

// DefaultOSSDevice is opened when no device name is given
const DefaultOSSDevice = "/dev/dsp"

// OSS output implementation (stub)
type OSS struct{}

// NewOSS creates an OSS opener
func NewOSS() Opener {
	return &OSS{}
}

// Open always fails on this platform
func (o *OSS) Open(spec audio.Spec, device string) (Device, error) {
	if err := CheckSpec(spec); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: OSS not available on this platform", ErrUnsupported)
}
