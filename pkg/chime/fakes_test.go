// ABOUTME: Test doubles for the driver
// ABOUTME: In-memory sources, devices, openers and a callback recorder
package chime

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/Sendspin/chime/pkg/audio/output"
)

var stereo16 = audio.Spec{Format: audio.S16LE, Channels: 2, Rate: 44100}

type fakeSource struct {
	spec    audio.Spec
	remain  int
	readErr error

	mu     sync.Mutex
	closed bool
}

func (s *fakeSource) Spec() audio.Spec { return s.spec }

func (s *fakeSource) Read(p []byte) (int, error) {
	if s.remain == 0 {
		if s.readErr != nil {
			return 0, s.readErr
		}
		return 0, io.EOF
	}
	n := min(len(p), s.remain)
	for i := range p[:n] {
		p[i] = byte(i)
	}
	s.remain -= n
	return n, nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDevice struct {
	// block makes WaitWritable wait for cancellation
	block    bool
	waitErr  error
	writeErr error
	// maxWrite limits how much each Write accepts
	maxWrite int
	// blockAfter makes WaitWritable block once this many waits succeeded
	blockAfter int

	mu      sync.Mutex
	waits   int
	written int
	writes  int
	closed  bool
}

func (d *fakeDevice) WaitWritable(ctx context.Context) error {
	d.mu.Lock()
	d.waits++
	stall := d.blockAfter > 0 && d.waits > d.blockAfter
	d.mu.Unlock()

	if d.block || stall {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.waitErr
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	n := len(p)
	if d.maxWrite > 0 && n > d.maxWrite {
		n = d.maxWrite
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.written += n
	d.writes++
	return n, nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) stats() (written, writes int, closed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.written, d.writes, d.closed
}

// fakeOpener hands out devices produced by newDevice and remembers what it was asked for
type fakeOpener struct {
	newDevice func() *fakeDevice
	err       error

	mu      sync.Mutex
	devices []*fakeDevice
	names   []string
}

func (o *fakeOpener) Open(spec audio.Spec, device string) (output.Device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.names = append(o.names, device)
	if o.err != nil {
		return nil, o.err
	}
	d := &fakeDevice{}
	if o.newDevice != nil {
		d = o.newDevice()
	}
	o.devices = append(o.devices, d)
	return d, nil
}

func (o *fakeOpener) all() []*fakeDevice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*fakeDevice(nil), o.devices...)
}

// fakeResolver returns sources built by newSource and counts Close calls
type fakeResolver struct {
	newSource func(Props) (audio.Source, error)

	mu      sync.Mutex
	sources []*fakeSource
	props   []Props
	closes  int
}

func (r *fakeResolver) Resolve(props Props) (audio.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.props = append(r.props, props)
	if r.newSource != nil {
		return r.newSource(props)
	}
	s := &fakeSource{spec: stereo16, remain: 10000}
	r.sources = append(r.sources, s)
	return s, nil
}

func (r *fakeResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	return nil
}

type finished struct {
	id     uint32
	status Status
}

// recorder collects callbacks
type recorder struct {
	mu    sync.Mutex
	calls []finished
	ch    chan finished
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan finished, 64)}
}

func (r *recorder) finish(d *Driver, id uint32, status Status) {
	r.mu.Lock()
	r.calls = append(r.calls, finished{id, status})
	r.mu.Unlock()
	r.ch <- finished{id, status}
}

func (r *recorder) all() []finished {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]finished(nil), r.calls...)
}

func (r *recorder) count(id uint32) int {
	n := 0
	for _, c := range r.all() {
		if c.id == id {
			n++
		}
	}
	return n
}

func (r *recorder) wait(t *testing.T) finished {
	t.Helper()
	select {
	case f := <-r.ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for finish callback")
		return finished{}
	}
}

func newTestDriver(t *testing.T, opener *fakeOpener, resolver Resolver) *Driver {
	t.Helper()
	if opener == nil {
		opener = &fakeOpener{}
	}
	if resolver == nil {
		resolver = &fakeResolver{}
	}
	d, err := Open(Config{Opener: opener, Resolver: resolver})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return d
}

func blocking() *fakeDevice { return &fakeDevice{block: true} }
