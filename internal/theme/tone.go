// ABOUTME: tone: pseudo file names
// ABOUTME: Parses tone:<hz>[:<ms>] into a generated sine source
package theme

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/Sendspin/chime/pkg/audio/tone"
)

// TonePrefix marks a media file name that asks for a generated tone
const TonePrefix = "tone:"

// DefaultToneDuration applies when a tone name gives no length
const DefaultToneDuration = 200 * time.Millisecond

// ErrInvalidTone is returned for malformed tone: names
var ErrInvalidTone = errors.New("invalid tone name")

// IsTone reports whether name uses the tone: scheme
func IsTone(name string) bool {
	return strings.HasPrefix(name, TonePrefix)
}

// ParseTone splits tone:<hz>[:<ms>] into frequency and duration
func ParseTone(name string) (float64, time.Duration, error) {
	if !IsTone(name) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTone, name)
	}

	hzPart, msPart, hasMs := strings.Cut(strings.TrimPrefix(name, TonePrefix), ":")

	freq, err := strconv.ParseFloat(hzPart, 64)
	if err != nil || freq <= 0 {
		return 0, 0, fmt.Errorf("%w: frequency %q", ErrInvalidTone, hzPart)
	}

	d := DefaultToneDuration
	if hasMs {
		ms, err := strconv.Atoi(msPart)
		if err != nil || ms <= 0 {
			return 0, 0, fmt.Errorf("%w: duration %q", ErrInvalidTone, msPart)
		}
		d = time.Duration(ms) * time.Millisecond
	}

	return freq, d, nil
}

// OpenTone creates the source for a tone: name
func OpenTone(name string, spec audio.Spec) (audio.Source, error) {
	freq, d, err := ParseTone(name)
	if err != nil {
		return nil, err
	}
	return tone.New(spec, freq, d)
}
