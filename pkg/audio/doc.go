// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Spec and Source types shared by decoders and outputs
// Package audio provides the PCM types shared by decoders, output devices and the
// playback driver.
//
// This package defines:
//   - Format: sample encoding of a PCM stream (U8, S16LE, S16BE)
//   - Spec: format, channel count and sample rate of a stream
//   - Source: a sequential readable PCM stream
//
// It also provides helpers for moving samples between bit depths.
//
// Example:
//
//	spec := audio.Spec{
//	    Format:   audio.S16LE,
//	    Channels: 2,
//	    Rate:     44100,
//	}
//
//	frame := spec.FrameSize() // 4 bytes
package audio
