//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform blocking-write output using PortAudio
package output

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// portAudioBufferBytes matches the streaming chunk size so each chunk is one blocking write
const portAudioBufferBytes = 4096

const portAudioEnabled = true

// PortAudio output implementation
type PortAudio struct {
	initOnce sync.Once
	initErr  error
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Opener {
	return &PortAudio{}
}

// Open opens a blocking output stream for spec
func (p *PortAudio) Open(spec audio.Spec, device string) (Device, error) {
	if err := CheckSpec(spec); err != nil {
		return nil, err
	}

	p.initOnce.Do(func() {
		p.initErr = portaudio.Initialize()
	})
	if p.initErr != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", p.initErr)
	}

	params, err := p.parameters(device)
	if err != nil {
		return nil, err
	}

	d := &portAudioDevice{spec: spec}
	if _, err := Negotiate(portAudioConfigurer{}, spec); err != nil {
		return nil, err
	}

	frames := portAudioBufferBytes / spec.FrameSize()
	params.Output.Channels = spec.Channels
	params.SampleRate = float64(spec.Rate)
	params.FramesPerBuffer = frames

	var buffer interface{}
	if spec.Format == audio.U8 {
		d.u8 = make([]uint8, frames*spec.Channels)
		buffer = d.u8
	} else {
		d.s16 = make([]int16, frames*spec.Channels)
		buffer = d.s16
	}

	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	if info := stream.Info(); info != nil && !RateAcceptable(spec.Rate, int(info.SampleRate)) {
		stream.Close()
		return nil, fmt.Errorf("%w: rate %dHz, device offered %.0fHz", ErrUnsupported, spec.Rate, info.SampleRate)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	d.stream = stream
	return d, nil
}

// parameters selects the named output device, or the default one
func (p *PortAudio) parameters(device string) (portaudio.StreamParameters, error) {
	if device == "" {
		out, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return portaudio.StreamParameters{}, fmt.Errorf("no default output device: %w", err)
		}
		return portaudio.HighLatencyParameters(nil, out), nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return portaudio.StreamParameters{}, fmt.Errorf("failed to list devices: %w", err)
	}
	for _, dev := range devices {
		if dev.Name == device && dev.MaxOutputChannels > 0 {
			return portaudio.HighLatencyParameters(nil, dev), nil
		}
	}
	return portaudio.StreamParameters{}, fmt.Errorf("output device %q not found", device)
}

// portAudioConfigurer accepts unsigned 8-bit and native 16-bit samples
type portAudioConfigurer struct{}

func (portAudioConfigurer) SetFormat(f audio.Format) (audio.Format, error) {
	if f == audio.U8 {
		return audio.U8, nil
	}
	return audio.S16NE, nil
}
func (portAudioConfigurer) SetChannels(n int) (int, error) { return n, nil }
func (portAudioConfigurer) SetRate(hz int) (int, error)    { return hz, nil }

type portAudioDevice struct {
	spec      audio.Spec
	stream    *portaudio.Stream
	u8        []uint8
	s16       []int16
	closeOnce sync.Once
}

// WaitWritable only checks for cancellation: Write blocks until the device takes the buffer
func (d *portAudioDevice) WaitWritable(ctx context.Context) error {
	return ctx.Err()
}

// Write copies one buffer of whole frames and plays it, zero-padding a short tail
func (d *portAudioDevice) Write(p []byte) (int, error) {
	var n int
	if d.u8 != nil {
		n = copy(d.u8, p)
		clear(d.u8[n:])
	} else {
		samples := min(len(p)/2, len(d.s16))
		for i := 0; i < samples; i++ {
			d.s16[i] = int16(binary.NativeEndian.Uint16(p[i*2:]))
		}
		clear(d.s16[samples:])
		n = samples * 2
	}

	if err := d.stream.Write(); err != nil {
		return 0, err
	}
	return n, nil
}

func (d *portAudioDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if stopErr := d.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		if closeErr := d.stream.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
