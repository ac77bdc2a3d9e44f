// ABOUTME: Status codes surfaced through callbacks and return values
// ABOUTME: Fixed enumeration plus the Error type that carries a status and its cause
package chime

import (
	"errors"
	"fmt"
)

// Status is the outcome of a driver operation or of a finished sound
type Status int

const (
	Success Status = iota
	OutOfMemory
	AccessDenied
	NotFound
	NotAvailable
	InvalidArgument
	NotSupported
	SystemError
	IOError
	Canceled
	Destroyed
	InvalidState
)

var statusNames = [...]string{
	Success:         "success",
	OutOfMemory:     "out of memory",
	AccessDenied:    "access denied",
	NotFound:        "not found",
	NotAvailable:    "not available",
	InvalidArgument: "invalid argument",
	NotSupported:    "not supported",
	SystemError:     "system error",
	IOError:         "I/O error",
	Canceled:        "canceled",
	Destroyed:       "destroyed",
	InvalidState:    "invalid state",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Error lets a Status be matched with errors.Is. Success is never returned as an error.
func (s Status) Error() string {
	return "chime: " + s.String()
}

// Error reports a failed operation
type Error struct {
	Op     string
	Status Status
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("chime: %s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("chime: %s: %s: %v", e.Op, e.Status, e.Err)
}

// Unwrap exposes both the status and the cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Status}
	}
	return []error{e.Status, e.Err}
}

func newError(op string, status Status, err error) error {
	return &Error{Op: op, Status: status, Err: err}
}

// StatusOf returns the status carried by err.
// nil is Success; errors without a status are classified by cause.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	status, _ := classify(err)
	return status
}
