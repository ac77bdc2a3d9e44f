// ABOUTME: Tests for decoder selection and WAV decoding
// ABOUTME: Builds WAV files on disk and checks specs and PCM payloads
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Sendspin/chime/pkg/audio"
)

// writeWAV writes a canonical 44-byte-header PCM WAV file
func writeWAV(t *testing.T, name string, channels, rate, bits int, data []byte) string {
	t.Helper()

	var buf bytes.Buffer
	blockAlign := channels * bits / 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write WAV: %v", err)
	}
	return path
}

func TestOpenWAV(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		rate     int
		bits     int
		expected audio.Spec
	}{
		{"mono 16-bit", 1, 44100, 16, audio.Spec{Format: audio.S16LE, Channels: 1, Rate: 44100}},
		{"stereo 8-bit", 2, 22050, 8, audio.Spec{Format: audio.U8, Channels: 2, Rate: 22050}},
		{"surround passes through", 6, 48000, 16, audio.Spec{Format: audio.S16LE, Channels: 6, Rate: 48000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, tt.channels*tt.bits/8*16)
			for i := range data {
				data[i] = byte(i)
			}
			path := writeWAV(t, "test.wav", tt.channels, tt.rate, tt.bits, data)

			src, err := Open(path)
			if err != nil {
				t.Fatalf("failed to open: %v", err)
			}
			defer src.Close()

			if src.Spec() != tt.expected {
				t.Errorf("expected spec %v, got %v", tt.expected, src.Spec())
			}

			got, err := io.ReadAll(src)
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("expected %d payload bytes, got %d", len(data), len(got))
			}
		})
	}
}

func TestOpenWAV_Unsupported24Bit(t *testing.T) {
	path := writeWAV(t, "deep.wav", 2, 48000, 24, make([]byte, 12))

	_, err := Open(path)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestOpen_UnknownExtension(t *testing.T) {
	_, err := Open("/tmp/sound.ogg")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestOpen_Garbage(t *testing.T) {
	for _, name := range []string{"junk.flac", "junk.mp3"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, []byte("this is not audio"), 0o644); err != nil {
				t.Fatal(err)
			}

			src, err := Open(path)
			if err == nil {
				src.Close()
				t.Fatal("expected decode error, got nil")
			}
		})
	}
}
