// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Device/Opener interfaces, format negotiation and OSS, oto and PortAudio backends
// Package output opens and configures playback devices.
//
// Every backend negotiates the requested audio.Spec with a propose/verify
// exchange and rejects specs it cannot represent with ErrUnsupported.
//
// Supported backends:
//   - OSS (/dev/dsp) on Linux and FreeBSD, one device handle per stream
//   - oto, sharing one process-wide context between streams
//   - PortAudio (build with -tags portaudio)
//
// Example:
//
//	dev, err := output.NewOSS().Open(src.Spec(), "")
//	if err := dev.WaitWritable(ctx); err == nil {
//	    n, err := dev.Write(buf)
//	}
//	dev.Close()
package output
