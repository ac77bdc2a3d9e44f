// ABOUTME: Driver lifecycle and public operations
// ABOUTME: Open, Play, Cancel, Destroy and the property and device setters
package chime

import (
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"sync"

	"github.com/Sendspin/chime/internal/theme"
	"github.com/Sendspin/chime/pkg/audio"
	"github.com/Sendspin/chime/pkg/audio/output"
)

// Output backend names accepted by Config.Driver
const (
	DriverOSS       = "oss"
	DriverOto       = "oto"
	DriverPortAudio = "portaudio"
)

// Resolver turns request properties into a sound source
type Resolver interface {
	Resolve(props Props) (audio.Source, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(props Props) (audio.Source, error)

func (f ResolverFunc) Resolve(props Props) (audio.Source, error) { return f(props) }

// DisplayFunc shows a visual cue for a sound that was accepted for playback.
// It runs on the goroutine calling Play and should return quickly.
type DisplayFunc func(props Props)

// Config holds driver configuration
type Config struct {
	// Driver selects the output backend; defaults to oss
	Driver string
	// Device names the output device; empty uses the backend default
	Device string
	// Props apply to every request and are overridden by request props
	Props Props
	Debug bool

	// Opener overrides the backend selected by Driver
	Opener output.Opener
	// Resolver overrides XDG sound theme lookup
	Resolver Resolver
	// Display, if set, is called with the merged properties of every accepted Play
	Display DisplayFunc
}

// Driver plays sounds on one output device
type Driver struct {
	*driverState

	// callback marks the handle passed to a FinishFunc
	callback bool
}

type driverState struct {
	config   Config
	opener   output.Opener
	resolver Resolver
	registry *registry

	// mu guards device and props
	mu     sync.Mutex
	device string
	props  Props
}

// Open creates a driver
func Open(config Config) (*Driver, error) {
	opener := config.Opener
	if opener == nil {
		var err error
		opener, err = openerFor(config.Driver)
		if err != nil {
			return nil, err
		}
	}

	resolver := config.Resolver
	if resolver == nil {
		resolver = &themeResolver{theme.NewResolver(theme.Options{
			Theme: config.Props.Get(PropThemeName),
		})}
	}

	props := make(Props).Merge(config.Props)

	if config.Debug {
		log.Printf("[DEBUG] Opened driver backend=%q device=%q", config.Driver, config.Device)
	}

	return &Driver{driverState: &driverState{
		config:   config,
		opener:   opener,
		resolver: resolver,
		registry: newRegistry(),
		device:   config.Device,
		props:    props,
	}}, nil
}

func openerFor(name string) (output.Opener, error) {
	switch name {
	case "", DriverOSS:
		return output.NewOSS(), nil
	case DriverOto:
		return output.NewOto(), nil
	case DriverPortAudio:
		return output.NewPortAudio(), nil
	default:
		return nil, newError("open", NotSupported, fmt.Errorf("unknown driver %q", name))
	}
}

// Play starts a sound asynchronously. cb receives its terminal status exactly once.
// A non-nil error means the request was not accepted and cb will not be called.
func (d *Driver) Play(id uint32, props Props, cb FinishFunc) error {
	if d == nil || props == nil {
		return newError("play", InvalidArgument, nil)
	}
	if d.registry.closed() {
		return newError("play", InvalidState, nil)
	}

	d.mu.Lock()
	merged := d.props.Merge(props)
	device := d.device
	d.mu.Unlock()

	if v := merged.Get(PropDevice); v != "" {
		device = v
	}

	src, err := d.resolver.Resolve(merged)
	if err != nil {
		return newError("play", d.statusOf(err), err)
	}

	dev, err := d.opener.Open(src.Spec(), device)
	if err != nil {
		src.Close()
		return newError("play", d.statusOf(err), err)
	}

	r := newRequest(d, id, cb, src, dev)
	if !d.registry.register(r) {
		r.release()
		return newError("play", InvalidState, nil)
	}

	if d.config.Debug {
		log.Printf("[DEBUG] Playing sound %d (%v) on %q", id, src.Spec(), device)
	}

	if d.config.Display != nil {
		d.config.Display(maps.Clone(merged))
	}

	go r.run()
	return nil
}

// Cancel stops every live request with id. Their callbacks receive Canceled
// before Cancel returns. Canceling an id with nothing playing is not an error.
func (d *Driver) Cancel(id uint32) error {
	if d == nil {
		return newError("cancel", InvalidArgument, nil)
	}
	if d.registry.closed() {
		return newError("cancel", InvalidState, nil)
	}

	matched := d.registry.markDead(id)
	for _, r := range matched {
		r.notify(Canceled)
	}
	for _, r := range matched {
		r.cancel()
	}
	d.registry.delivered(len(matched))

	if d.config.Debug && len(matched) > 0 {
		log.Printf("[DEBUG] Canceled %d request(s) for sound %d", len(matched), id)
	}
	return nil
}

// Playing reports whether a live request with id exists
func (d *Driver) Playing(id uint32) bool {
	if d == nil {
		return false
	}
	return d.registry.playing(id)
}

// Destroy cancels every live request with Destroyed and waits until all workers
// have exited. The driver cannot be used afterwards. Called through the handle
// a FinishFunc receives, Destroy returns InvalidState instead of waiting on itself.
func (d *Driver) Destroy() error {
	if d == nil {
		return newError("destroy", InvalidArgument, nil)
	}
	if d.callback {
		return newError("destroy", InvalidState, errors.New("called from a finish callback"))
	}

	live, ok := d.registry.drain()
	if !ok {
		return newError("destroy", InvalidState, nil)
	}

	for _, r := range live {
		r.notify(Destroyed)
	}
	for _, r := range live {
		r.cancel()
	}

	d.registry.wait()

	if c, ok := d.resolver.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("Warning: failed to release sound lookup cache: %v", err)
		}
	}

	if d.config.Debug {
		log.Printf("[DEBUG] Driver destroyed after draining %d request(s)", len(live))
	}
	return nil
}

// ChangeDevice switches the output device for subsequent Play calls.
// Sounds already playing keep their device.
func (d *Driver) ChangeDevice(name string) error {
	if d == nil {
		return newError("change device", InvalidArgument, nil)
	}
	if d.registry.closed() {
		return newError("change device", InvalidState, nil)
	}

	d.mu.Lock()
	d.device = name
	d.mu.Unlock()
	return nil
}

// ChangeProps merges props into the properties applied to every request
func (d *Driver) ChangeProps(props Props) error {
	if d == nil || props == nil {
		return newError("change props", InvalidArgument, nil)
	}
	if d.registry.closed() {
		return newError("change props", InvalidState, nil)
	}

	d.mu.Lock()
	d.props = d.props.Merge(props)
	d.mu.Unlock()
	return nil
}

// Cache would preload a sound; this driver streams every sound from its source.
func (d *Driver) Cache(props Props) error {
	return newError("cache", NotSupported, nil)
}

// handle returns the view of d passed to finish callbacks
func (d *Driver) handle() *Driver {
	return &Driver{driverState: d.driverState, callback: true}
}

// themeResolver adapts theme lookup to request properties
type themeResolver struct {
	*theme.Resolver
}

func (t *themeResolver) Resolve(props Props) (audio.Source, error) {
	return t.Resolver.Resolve(theme.Request{
		EventID:  props.Get(PropEventID),
		Filename: props.Get(PropMediaFilename),
		Theme:    props.Get(PropThemeName),
	})
}
