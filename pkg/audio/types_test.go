// ABOUTME: Tests for audio types
// ABOUTME: Tests frame sizes and sample conversion functions
package audio

import "testing"

func TestFrameSize(t *testing.T) {
	tests := []struct {
		name     string
		spec     Spec
		expected int
	}{
		{"mono u8", Spec{Format: U8, Channels: 1, Rate: 8000}, 1},
		{"stereo u8", Spec{Format: U8, Channels: 2, Rate: 8000}, 2},
		{"mono s16", Spec{Format: S16LE, Channels: 1, Rate: 44100}, 2},
		{"stereo s16be", Spec{Format: S16BE, Channels: 2, Rate: 48000}, 4},
		{"invalid", Spec{Channels: 2, Rate: 48000}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.FrameSize(); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestSpecValid(t *testing.T) {
	if !(Spec{Format: S16LE, Channels: 2, Rate: 44100}).Valid() {
		t.Error("expected stereo s16 spec to be valid")
	}
	if (Spec{Format: S16LE, Channels: 0, Rate: 44100}).Valid() {
		t.Error("expected zero channels to be invalid")
	}
	if (Spec{Format: S16LE, Channels: 1}).Valid() {
		t.Error("expected zero rate to be invalid")
	}
}

func TestS16NE(t *testing.T) {
	if S16NE != S16LE && S16NE != S16BE {
		t.Errorf("unexpected native format %v", S16NE)
	}
}

func TestScaleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		bitDepth int
		expected int16
	}{
		{"16 bit passthrough", -1234, 16, -1234},
		{"24 bit", 0x123456, 24, 0x1234},
		{"8 bit", 0x12, 8, 0x1200},
		{"20 bit negative", -16, 20, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScaleToInt16(tt.input, tt.bitDepth); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestPutInt16(t *testing.T) {
	buf := make([]byte, 2)

	PutInt16(buf, S16LE, 0x0102)
	if buf[0] != 0x02 || buf[1] != 0x01 {
		t.Errorf("little endian: got %x", buf)
	}

	PutInt16(buf, S16BE, 0x0102)
	if buf[0] != 0x01 || buf[1] != 0x02 {
		t.Errorf("big endian: got %x", buf)
	}
}
