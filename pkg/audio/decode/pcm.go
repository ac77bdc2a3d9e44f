// ABOUTME: Raw PCM source
// ABOUTME: Wraps a reader that already carries PCM data of a known spec
package decode

import (
	"fmt"
	"io"

	"github.com/Sendspin/chime/pkg/audio"
)

// PCMSource reads raw PCM bytes
type PCMSource struct {
	r    io.Reader
	c    io.Closer
	spec audio.Spec
}

// NewPCM creates a source over raw PCM data.
// If r also implements io.Closer it is closed with the source.
func NewPCM(r io.Reader, spec audio.Spec) (*PCMSource, error) {
	if !spec.Valid() {
		return nil, fmt.Errorf("%w: invalid PCM spec %v", ErrUnsupported, spec)
	}

	s := &PCMSource{r: r, spec: spec}
	if c, ok := r.(io.Closer); ok {
		s.c = c
	}
	return s, nil
}

func (s *PCMSource) Spec() audio.Spec { return s.spec }

func (s *PCMSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *PCMSource) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}
