// ABOUTME: Audio decoder package for sound files
// ABOUTME: Provides Open and Source implementations for WAV, MP3, FLAC and raw PCM
// Package decode turns sound files into audio.Source streams.
//
// Supports: WAV (8/16-bit PCM), MP3, FLAC and raw PCM with a known spec.
//
// Decoders emit pass-through PCM: WAV keeps its native encoding, MP3 and FLAC
// produce signed 16-bit little-endian samples.
//
// Example:
//
//	src, err := decode.Open("/usr/share/sounds/freedesktop/stereo/bell.wav")
//	spec := src.Spec()
//	n, err := src.Read(buf)
package decode
