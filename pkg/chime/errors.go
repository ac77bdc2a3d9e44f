// ABOUTME: Error classification into the status taxonomy
// ABOUTME: Maps decoder, device and OS errors onto Status values
package chime

import (
	"context"
	"errors"
	"io/fs"
	"log"

	"github.com/Sendspin/chime/internal/theme"
	"github.com/Sendspin/chime/pkg/audio/decode"
	"github.com/Sendspin/chime/pkg/audio/output"
)

// classify maps err onto a status. known is false when err was folded into IOError
// without being recognized.
func classify(err error) (status Status, known bool) {
	switch {
	case err == nil:
		return Success, true
	case errors.Is(err, context.Canceled):
		return Canceled, true
	case errors.Is(err, decode.ErrUnsupported), errors.Is(err, output.ErrUnsupported):
		return NotSupported, true
	case errors.Is(err, output.ErrNotWritable):
		return IOError, true
	case errors.Is(err, theme.ErrNoSound), errors.Is(err, theme.ErrInvalidTone):
		return InvalidArgument, true
	case errors.Is(err, theme.ErrNotFound), errors.Is(err, theme.ErrDisabled):
		return NotFound, true
	}

	if status, ok := translateErrno(err); ok {
		return status, true
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NotFound, true
	case errors.Is(err, fs.ErrPermission):
		return AccessDenied, true
	}

	return IOError, false
}

// statusOf classifies err, logging unrecognized causes when debug is on
func (d *Driver) statusOf(err error) Status {
	var s Status
	if errors.As(err, &s) {
		return s
	}

	status, known := classify(err)
	if !known && d.config.Debug {
		log.Printf("[DEBUG] Got unhandled error from output device: %v", err)
	}
	return status
}
