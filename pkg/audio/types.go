// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM formats, stream specs and the Source interface
package audio

import (
	"encoding/binary"
	"fmt"
)

// MaxChannels is the widest layout an output device accepts
const MaxChannels = 2

// Format is the sample encoding of a PCM stream
type Format int

const (
	FormatInvalid Format = iota
	U8
	S16LE
	S16BE
)

// S16NE is signed 16-bit in host byte order
var S16NE = nativeS16()

func nativeS16() Format {
	if binary.NativeEndian.Uint16([]byte{0x01, 0x00}) == 0x0001 {
		return S16LE
	}
	return S16BE
}

// BytesPerSample returns the storage size of one sample
func (f Format) BytesPerSample() int {
	switch f {
	case U8:
		return 1
	case S16LE, S16BE:
		return 2
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case U8:
		return "u8"
	case S16LE:
		return "s16le"
	case S16BE:
		return "s16be"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Spec describes a PCM stream
type Spec struct {
	Format   Format
	Channels int
	Rate     int
}

// FrameSize returns the size in bytes of one frame (one sample per channel)
func (s Spec) FrameSize() int {
	return s.Format.BytesPerSample() * s.Channels
}

// Valid reports whether s describes a playable stream
func (s Spec) Valid() bool {
	return s.Format.BytesPerSample() > 0 && s.Channels > 0 && s.Rate > 0
}

func (s Spec) String() string {
	return fmt.Sprintf("%s %dch %dHz", s.Format, s.Channels, s.Rate)
}

// Source is a sequential readable PCM stream.
// Read returns 0, io.EOF at end of stream.
type Source interface {
	Spec() Spec
	Read(p []byte) (int, error)
	Close() error
}

// ScaleToInt16 converts a sample of the given bit depth to int16
func ScaleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(sample)
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	default:
		return int16(sample << (16 - bitDepth))
	}
}

// PutInt16 stores one sample at p in the byte order of f
func PutInt16(p []byte, f Format, sample int16) {
	if f == S16BE {
		binary.BigEndian.PutUint16(p, uint16(sample))
		return
	}
	binary.LittleEndian.PutUint16(p, uint16(sample))
}
