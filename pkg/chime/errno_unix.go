//go:build unix

// ABOUTME: errno translation for Unix output devices
// ABOUTME: Fixed mapping of device errnos onto Status values
package chime

import (
	"errors"

	"golang.org/x/sys/unix"
)

// translateErrno maps a wrapped errno onto a status
func translateErrno(err error) (Status, bool) {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return Success, false
	}

	switch errno {
	case unix.ENODEV, unix.ENOENT:
		return NotFound, true
	case unix.EACCES, unix.EPERM:
		return AccessDenied, true
	case unix.ENOMEM:
		return OutOfMemory, true
	case unix.EBUSY:
		return NotAvailable, true
	case unix.EINVAL:
		return InvalidArgument, true
	case unix.ENOSYS:
		return NotSupported, true
	default:
		return IOError, false
	}
}
