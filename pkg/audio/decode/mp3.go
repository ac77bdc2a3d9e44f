// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 files to 16-bit stereo PCM via go-mp3
package decode

import (
	"fmt"
	"io"
	"os"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// NewMP3 creates an MP3 source. The source owns f.
// go-mp3 always produces stereo s16le.
func NewMP3(f *os.File) (*PCMSource, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	stream := struct {
		io.Reader
		io.Closer
	}{decoder, f}

	return NewPCM(stream, audio.Spec{
		Format:   audio.S16LE,
		Channels: 2,
		Rate:     decoder.SampleRate(),
	})
}
