// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC frames to interleaved 16-bit PCM via mewkiz/flac
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACSource decodes a FLAC file frame by frame
type FLACSource struct {
	file     *os.File
	stream   *flac.Stream
	bitDepth int
	spec     audio.Spec

	// Interleaved PCM of the last parsed frame not yet handed out
	pending []byte
}

// NewFLAC creates a FLAC source. The source owns f.
func NewFLAC(f *os.File) (*FLACSource, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	return &FLACSource{
		file:     f,
		stream:   stream,
		bitDepth: int(info.BitsPerSample),
		spec: audio.Spec{
			Format:   audio.S16LE,
			Channels: int(info.NChannels),
			Rate:     int(info.SampleRate),
		},
	}, nil
}

func (s *FLACSource) Spec() audio.Spec { return s.spec }

func (s *FLACSource) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		if err := s.parseFrame(); err != nil {
			return 0, err
		}
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// parseFrame decodes the next frame into pending
func (s *FLACSource) parseFrame() error {
	frame, err := s.stream.ParseNext()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return fmt.Errorf("failed to parse FLAC frame: %w", err)
	}

	channels := len(frame.Subframes)
	blockSize := int(frame.BlockSize)
	buf := make([]byte, blockSize*channels*2)

	off := 0
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < channels; ch++ {
			sample := audio.ScaleToInt16(frame.Subframes[ch].Samples[i], s.bitDepth)
			audio.PutInt16(buf[off:], audio.S16LE, sample)
			off += 2
		}
	}

	s.pending = buf
	return nil
}

func (s *FLACSource) Close() error {
	return s.file.Close()
}
