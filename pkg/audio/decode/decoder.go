// ABOUTME: Decoder entry point
// ABOUTME: Selects a decoder by file extension and opens it as an audio.Source
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sendspin/chime/pkg/audio"
)

// ErrUnsupported is returned for files no decoder understands
var ErrUnsupported = errors.New("unsupported audio format")

// Extensions lists the file extensions Open accepts, in lookup preference order
var Extensions = []string{".wav", ".flac", ".mp3"}

// Open opens a sound file and returns a decoder for it
func Open(path string) (audio.Source, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var open func(*os.File) (audio.Source, error)
	switch ext {
	case ".wav":
		open = func(f *os.File) (audio.Source, error) { return NewWAV(f) }
	case ".mp3":
		open = func(f *os.File) (audio.Source, error) { return NewMP3(f) }
	case ".flac":
		open = func(f *os.File) (audio.Source, error) { return NewFLAC(f) }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}

	src, err := open(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return src, nil
}
