// ABOUTME: Outstanding request state
// ABOUTME: One accepted Play call and the resources its worker owns
package chime

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/Sendspin/chime/pkg/audio/output"
)

// FinishFunc receives the terminal status of a sound. It is invoked exactly once
// per accepted Play, never while the driver's lock is held, so it may call
// back into d. d cannot be destroyed from inside the callback.
type FinishFunc func(d *Driver, id uint32, status Status)

type request struct {
	key    uuid.UUID
	id     uint32
	finish FinishFunc
	driver *Driver

	source audio.Source
	device output.Device

	ctx    context.Context
	cancel context.CancelFunc

	// dead is guarded by the registry mutex
	dead bool
}

func newRequest(d *Driver, id uint32, cb FinishFunc, src audio.Source, dev output.Device) *request {
	ctx, cancel := context.WithCancel(context.Background())
	return &request{
		key:    uuid.New(),
		id:     id,
		finish: cb,
		driver: d,
		source: src,
		device: dev,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *request) notify(status Status) {
	if r.finish != nil {
		r.finish(r.driver.handle(), r.id, status)
	}
}

// release frees everything the request owns
func (r *request) release() {
	r.cancel()
	if err := r.device.Close(); err != nil && r.driver.config.Debug {
		log.Printf("[DEBUG] Closing device for sound %d: %v", r.id, err)
	}
	if err := r.source.Close(); err != nil && r.driver.config.Debug {
		log.Printf("[DEBUG] Closing source for sound %d: %v", r.id, err)
	}
}
