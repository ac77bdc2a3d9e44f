// ABOUTME: Generated sine tone source
// ABOUTME: Renders beep generator output to pass-through PCM of a requested spec
// Package tone generates sine tones as audio.Source streams.
package tone

import (
	"fmt"
	"io"
	"time"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Source renders a finite sine tone
type Source struct {
	spec     audio.Spec
	streamer beep.Streamer
	samples  [][2]float64
	closed   bool
}

// New creates a tone of freq Hz lasting d, rendered to spec.
// The tone plays at half amplitude.
func New(spec audio.Spec, freq float64, d time.Duration) (*Source, error) {
	if !spec.Valid() || spec.Channels > audio.MaxChannels {
		return nil, fmt.Errorf("invalid tone spec: %v", spec)
	}

	sr := beep.SampleRate(spec.Rate)
	sine, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, fmt.Errorf("failed to create sine generator: %w", err)
	}

	return &Source{
		spec: spec,
		streamer: &effects.Volume{
			Streamer: beep.Take(sr.N(d), sine),
			Base:     2,
			Volume:   -1,
		},
	}, nil
}

func (s *Source) Spec() audio.Spec { return s.spec }

// Read fills p with whole frames
func (s *Source) Read(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}

	frameSize := s.spec.FrameSize()
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}

	if cap(s.samples) < frames {
		s.samples = make([][2]float64, frames)
	}
	samples := s.samples[:frames]

	n, ok := s.streamer.Stream(samples)
	if !ok || n == 0 {
		if err := s.streamer.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	off := 0
	for i := 0; i < n; i++ {
		for ch := 0; ch < s.spec.Channels; ch++ {
			s.put(p[off:], samples[i][ch])
			off += s.spec.Format.BytesPerSample()
		}
	}

	return off, nil
}

// put encodes one float sample in [-1, 1]
func (s *Source) put(p []byte, v float64) {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}

	if s.spec.Format == audio.U8 {
		p[0] = byte(int(v*127) + 128)
		return
	}
	audio.PutInt16(p, s.spec.Format, int16(v*32767))
}

func (s *Source) Close() error {
	s.closed = true
	return nil
}
