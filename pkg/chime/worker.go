// ABOUTME: Streaming worker for one request
// ABOUTME: Waits for the device, refills from the source and writes until done
package chime

import (
	"errors"
	"io"
	"log"

	"github.com/Sendspin/chime/pkg/audio/output"
)

// chunkSize is the refill buffer size before frame alignment
const chunkSize = 4096

// errCanceled marks a worker that stopped because its request was canceled
var errCanceled = errors.New("request canceled")

// run streams the request to completion and cleans up. It owns r from here on.
func (r *request) run() {
	d := r.driver
	err := r.stream()

	status := Success
	if err != nil {
		status = d.statusOf(err)
	}

	if d.config.Debug {
		log.Printf("[DEBUG] Sound %d stopped: %v (err=%v)", r.id, status, err)
	}

	if !errors.Is(err, errCanceled) && d.registry.claim(r) {
		r.notify(status)
	}

	r.release()
	d.registry.unregister(r)
}

// stream returns nil at end of stream, errCanceled on cancellation, or the failure
func (r *request) stream() error {
	frame := r.source.Spec().FrameSize()
	size := chunkSize
	if frame > 0 {
		size = chunkSize / frame * frame
	}
	buf := make([]byte, size)

	var pending []byte
	var readErr error

	for {
		if err := r.device.WaitWritable(r.ctx); err != nil {
			if r.ctx.Err() != nil {
				return errCanceled
			}
			if errors.Is(err, output.ErrNotWritable) {
				return newError("wait", IOError, err)
			}
			return newError("wait", SystemError, err)
		}

		if len(pending) == 0 {
			if readErr != nil {
				return readErr
			}

			n, err := r.source.Read(buf)
			if err != nil && !errors.Is(err, io.EOF) {
				readErr = err
			}
			if n == 0 {
				return readErr
			}
			pending = buf[:n]
		}

		n, err := r.device.Write(pending)
		if err != nil {
			return err
		}
		pending = pending[n:]
	}
}
