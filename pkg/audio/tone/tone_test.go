// ABOUTME: Tests for the tone source
// ABOUTME: Checks rendered length and frame alignment
package tone

import (
	"io"
	"testing"
	"time"

	"github.com/Sendspin/chime/pkg/audio"
)

// readAll drains src in 4 KiB reads
func readAll(src *Source) ([]byte, error) {
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

func TestToneLength(t *testing.T) {
	tests := []struct {
		name string
		spec audio.Spec
		d    time.Duration
	}{
		{"mono s16", audio.Spec{Format: audio.S16LE, Channels: 1, Rate: 44100}, 100 * time.Millisecond},
		{"stereo s16be", audio.Spec{Format: audio.S16BE, Channels: 2, Rate: 48000}, 50 * time.Millisecond},
		{"mono u8", audio.Spec{Format: audio.U8, Channels: 1, Rate: 8000}, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(tt.spec, 440, tt.d)
			if err != nil {
				t.Fatalf("failed to create tone: %v", err)
			}
			defer src.Close()

			data, err := readAll(src)
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}

			frames := int(tt.d.Seconds() * float64(tt.spec.Rate))
			expected := frames * tt.spec.FrameSize()
			if len(data) != expected {
				t.Errorf("expected %d bytes, got %d", expected, len(data))
			}
		})
	}
}

func TestToneRejectsSurround(t *testing.T) {
	_, err := New(audio.Spec{Format: audio.S16LE, Channels: 4, Rate: 48000}, 440, time.Second)
	if err == nil {
		t.Fatal("expected error for 4 channels")
	}
}

func TestToneShortBuffer(t *testing.T) {
	src, err := New(audio.Spec{Format: audio.S16LE, Channels: 2, Rate: 48000}, 440, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	n, err := src.Read(make([]byte, 3))
	if n != 0 || err != nil {
		t.Errorf("expected 0, nil for sub-frame buffer, got %d, %v", n, err)
	}
}
