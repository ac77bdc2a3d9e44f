// ABOUTME: WAV audio decoder
// ABOUTME: Reads 8-bit and 16-bit PCM data chunks through youpy/go-wav
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/youpy/go-wav"
)

// WAVSource reads PCM from a WAV file
type WAVSource struct {
	file   *os.File
	reader *wav.Reader
	spec   audio.Spec
}

// NewWAV creates a WAV source. The source owns f.
func NewWAV(f *os.File) (*WAVSource, error) {
	reader := wav.NewReader(f)

	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV header: %w", err)
	}

	if format.AudioFormat != wav.AudioFormatPCM {
		return nil, fmt.Errorf("%w: WAV encoding %d", ErrUnsupported, format.AudioFormat)
	}

	var sf audio.Format
	switch format.BitsPerSample {
	case 8:
		sf = audio.U8
	case 16:
		sf = audio.S16LE
	default:
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupported, format.BitsPerSample)
	}

	return &WAVSource{
		file:   f,
		reader: reader,
		spec: audio.Spec{
			Format:   sf,
			Channels: int(format.NumChannels),
			Rate:     int(format.SampleRate),
		},
	}, nil
}

func (s *WAVSource) Spec() audio.Spec { return s.spec }

func (s *WAVSource) Read(p []byte) (int, error) {
	n, err := s.reader.Read(p)
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

func (s *WAVSource) Close() error {
	return s.file.Close()
}
