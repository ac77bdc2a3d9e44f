// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams PCM through one shared oto context, one player per stream
package output

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// drainInterval is how often Close checks whether a finished player went idle
const drainInterval = 10 * time.Millisecond

// Oto output implementation using oto library.
// oto allows a single context per process, so the first stream fixes the
// device format and later streams must negotiate against it.
type Oto struct {
	mu     sync.Mutex
	otoCtx *oto.Context
	spec   audio.Spec
}

// NewOto creates a new Oto output
func NewOto() Opener {
	return &Oto{}
}

// Open negotiates spec against the shared context and starts a player
func (o *Oto) Open(spec audio.Spec, device string) (Device, error) {
	if err := CheckSpec(spec); err != nil {
		return nil, err
	}

	if device != "" {
		log.Printf("Warning: oto cannot select output devices, ignoring device=%q", device)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		if err := o.initContext(spec); err != nil {
			return nil, err
		}
	}

	if _, err := Negotiate(otoConfigurer{o.spec}, spec); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	player := o.otoCtx.NewPlayer(pr)
	player.Play()

	return &otoDevice{
		player: player,
		pr:     pr,
		pw:     pw,
	}, nil
}

// initContext creates the process-wide oto context (must hold o.mu)
func (o *Oto) initContext(spec audio.Spec) error {
	format, ok := otoFormat(spec.Format)
	if !ok {
		// The context still has to exist; negotiation reports the mismatch
		format = oto.FormatSignedInt16LE
	}

	op := &oto.NewContextOptions{
		SampleRate:   spec.Rate,
		ChannelCount: spec.Channels,
		Format:       format,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.spec = audio.Spec{
		Format:   fromOtoFormat(format),
		Channels: spec.Channels,
		Rate:     spec.Rate,
	}

	log.Printf("Audio output initialized: %v (oto)", o.spec)
	return nil
}

func otoFormat(f audio.Format) (oto.Format, bool) {
	switch f {
	case audio.U8:
		return oto.FormatUnsignedInt8, true
	case audio.S16LE:
		return oto.FormatSignedInt16LE, true
	default:
		return 0, false
	}
}

func fromOtoFormat(f oto.Format) audio.Format {
	switch f {
	case oto.FormatUnsignedInt8:
		return audio.U8
	case oto.FormatSignedInt16LE:
		return audio.S16LE
	default:
		return audio.FormatInvalid
	}
}

// otoConfigurer answers every proposal with the context's fixed format
type otoConfigurer struct {
	spec audio.Spec
}

func (c otoConfigurer) SetFormat(audio.Format) (audio.Format, error) { return c.spec.Format, nil }
func (c otoConfigurer) SetChannels(int) (int, error)                  { return c.spec.Channels, nil }
func (c otoConfigurer) SetRate(int) (int, error)                      { return c.spec.Rate, nil }

// otoDevice feeds one oto player through a pipe
type otoDevice struct {
	player      *oto.Player
	pr          *io.PipeReader
	pw          *io.PipeWriter
	interrupted atomic.Bool
	closeOnce   sync.Once
}

// WaitWritable never blocks on readiness: the pipe write itself blocks until the player reads
func (d *otoDevice) WaitWritable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		d.interrupted.Store(true)
		return err
	}
	if err := d.player.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotWritable, err)
	}
	return nil
}

func (d *otoDevice) Write(p []byte) (int, error) {
	return d.pw.Write(p)
}

// Close lets a finished stream play out, then releases the player.
// An interrupted stream is cut off immediately.
func (d *otoDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.pw.Close()
		if !d.interrupted.Load() {
			for d.player.IsPlaying() {
				time.Sleep(drainInterval)
			}
		}
		err = d.player.Close()
		d.pr.Close()
	})
	return err
}
