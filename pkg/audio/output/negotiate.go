// ABOUTME: Device format negotiation
// ABOUTME: Propose/verify exchange for encoding, channel count and sample rate
package output

import (
	"fmt"
	"math"

	"github.com/Sendspin/chime/pkg/audio"
)

// RateTolerance is the largest relative sample rate deviation accepted from a device
const RateTolerance = 0.05

// Configurer proposes a value to a device and returns what the device accepted
type Configurer interface {
	SetFormat(f audio.Format) (audio.Format, error)
	SetChannels(n int) (int, error)
	SetRate(hz int) (int, error)
}

// CheckSpec rejects specs no backend can play before any device is opened.
// Devices have no channel mapping facility, so only mono and stereo are accepted.
func CheckSpec(spec audio.Spec) error {
	if spec.Channels > audio.MaxChannels {
		return fmt.Errorf("%w: %d channels", ErrUnsupported, spec.Channels)
	}
	if !spec.Valid() {
		return fmt.Errorf("%w: %v", ErrUnsupported, spec)
	}
	return nil
}

// Negotiate configures c for spec and returns the accepted spec.
// Encoding and channels must match exactly; the rate must be within RateTolerance.
func Negotiate(c Configurer, spec audio.Spec) (audio.Spec, error) {
	accepted := spec

	format, err := c.SetFormat(spec.Format)
	if err != nil {
		return accepted, fmt.Errorf("failed to set format %v: %w", spec.Format, err)
	}
	if format != spec.Format {
		return accepted, fmt.Errorf("%w: format %v, device offered %v", ErrUnsupported, spec.Format, format)
	}

	channels, err := c.SetChannels(spec.Channels)
	if err != nil {
		return accepted, fmt.Errorf("failed to set channels %d: %w", spec.Channels, err)
	}
	if channels != spec.Channels {
		return accepted, fmt.Errorf("%w: %d channels, device offered %d", ErrUnsupported, spec.Channels, channels)
	}

	rate, err := c.SetRate(spec.Rate)
	if err != nil {
		return accepted, fmt.Errorf("failed to set rate %d: %w", spec.Rate, err)
	}
	if !RateAcceptable(spec.Rate, rate) {
		return accepted, fmt.Errorf("%w: rate %dHz, device offered %dHz", ErrUnsupported, spec.Rate, rate)
	}

	accepted.Rate = rate
	return accepted, nil
}

// RateAcceptable reports whether accepted is within RateTolerance of requested
func RateAcceptable(requested, accepted int) bool {
	return math.Abs(float64(accepted-requested)) <= float64(requested)*RateTolerance
}
