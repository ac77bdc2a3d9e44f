//go:build !unix

// ABOUTME: errno translation fallback for non-Unix platforms
// ABOUTME: Leaves classification to the portable fs error checks
package chime

func translateErrno(err error) (Status, bool) {
	return Success, false
}
