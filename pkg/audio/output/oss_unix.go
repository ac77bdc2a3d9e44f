//go:build linux || freebsd

// ABOUTME: OSS output implementation
// ABOUTME: Opens /dev/dsp style devices, negotiates via SNDCTL ioctls and polls for writability
package output

import (
	"context"
	"fmt"
	"io"
	"sync"
	"unsafe"

	"github.com/Sendspin/chime/pkg/audio"
	"golang.org/x/sys/unix"
)

// DefaultOSSDevice is opened when no device name is given
const DefaultOSSDevice = "/dev/dsp"

// OSS ioctl requests, _IOWR('P', n, int) on both Linux and FreeBSD
const (
	sndctlDSPSpeed    = 0xC0045002
	sndctlDSPSetFmt   = 0xC0045005
	sndctlDSPChannels = 0xC0045006
)

// OSS sample format bits
const (
	afmtU8    = 0x00000008
	afmtS16LE = 0x00000010
	afmtS16BE = 0x00000020
)

// OSS opens one device handle per stream
type OSS struct{}

// NewOSS creates an OSS opener
func NewOSS() Opener {
	return &OSS{}
}

// Open opens and configures an OSS device for spec
func (o *OSS) Open(spec audio.Spec, device string) (Device, error) {
	if err := CheckSpec(spec); err != nil {
		return nil, err
	}

	if device == "" {
		device = DefaultOSSDevice
	}

	// Open non-blocking so a busy device cannot hang us, then switch to blocking writes
	fd, err := unix.Open(device, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", device, err)
	}

	d := &ossDevice{fd: fd, wake: [2]int{-1, -1}}

	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("fcntl F_GETFL for %s failed: %w", device, err)
	}
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags&^unix.O_NONBLOCK); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to set blocking mode on %s: %w", device, err)
	}

	if _, err := Negotiate(d, spec); err != nil {
		d.Close()
		return nil, err
	}

	if err := unix.Pipe2(d.wake[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to create wake pipe: %w", err)
	}

	return d, nil
}

// ossDevice is an open OSS handle plus the pipe used to interrupt its poll
type ossDevice struct {
	fd   int
	wake [2]int

	// mu orders wake-ups against Close so no byte lands on a recycled descriptor
	mu     sync.Mutex
	closed bool
}

func (d *ossDevice) ioctl(req uint, val int) (int, error) {
	v := int32(val)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), uintptr(req), uintptr(unsafe.Pointer(&v)))
	if errno != 0 {
		return 0, errno
	}
	return int(v), nil
}

func (d *ossDevice) SetFormat(f audio.Format) (audio.Format, error) {
	var val int
	switch f {
	case audio.U8:
		val = afmtU8
	case audio.S16LE:
		val = afmtS16LE
	case audio.S16BE:
		val = afmtS16BE
	default:
		return audio.FormatInvalid, nil
	}

	got, err := d.ioctl(sndctlDSPSetFmt, val)
	if err != nil {
		return audio.FormatInvalid, err
	}

	switch got {
	case afmtU8:
		return audio.U8, nil
	case afmtS16LE:
		return audio.S16LE, nil
	case afmtS16BE:
		return audio.S16BE, nil
	default:
		return audio.FormatInvalid, nil
	}
}

func (d *ossDevice) SetChannels(n int) (int, error) {
	return d.ioctl(sndctlDSPChannels, n)
}

func (d *ossDevice) SetRate(hz int) (int, error) {
	return d.ioctl(sndctlDSPSpeed, hz)
}

// WaitWritable polls the device and the wake pipe together
func (d *ossDevice) WaitWritable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, d.wakeUp)
	defer stop()

	fds := []unix.PollFd{
		{Fd: int32(d.wake[0]), Events: unix.POLLIN},
		{Fd: int32(d.fd), Events: unix.POLLOUT},
	}

	for {
		_, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}
		break
	}

	// Poll can report the device ready before the wake byte arrives
	if err := ctx.Err(); err != nil {
		return err
	}

	if fds[1].Revents != unix.POLLOUT {
		return fmt.Errorf("%w: revents 0x%x", ErrNotWritable, fds[1].Revents)
	}

	return nil
}

func (d *ossDevice) wakeUp() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.wake[1] < 0 {
		return
	}
	unix.Write(d.wake[1], []byte{0})
}

func (d *ossDevice) Write(p []byte) (int, error) {
	for {
		n, err := unix.Write(d.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n <= 0 {
			return 0, io.ErrShortWrite
		}
		return n, nil
	}
}

// Close closes the wake pipe and the device handle
func (d *ossDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	for i, fd := range d.wake {
		if fd >= 0 {
			unix.Close(fd)
			d.wake[i] = -1
		}
	}

	var err error
	if d.fd >= 0 {
		err = unix.Close(d.fd)
		d.fd = -1
	}
	return err
}
