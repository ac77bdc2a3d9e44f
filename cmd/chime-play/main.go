// ABOUTME: Entry point for the chime-play command
// ABOUTME: Plays one sound locally or through a daemon and exits with its status
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sendspin/chime/internal/client"
	"github.com/Sendspin/chime/internal/config"
	"github.com/Sendspin/chime/internal/discovery"
	"github.com/Sendspin/chime/internal/protocol"
	"github.com/Sendspin/chime/internal/theme"
	"github.com/Sendspin/chime/internal/version"
	"github.com/Sendspin/chime/pkg/chime"
	"github.com/google/uuid"
)

type options struct {
	id      uint
	file    string
	event   string
	tone    string
	device  string
	backend string
	theme   string
	remote  string
	debug   bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}

	var opts options
	flag.UintVar(&opts.id, "id", 1, "Sound id")
	flag.StringVar(&opts.file, "file", "", "Sound file to play (WAV, FLAC, MP3)")
	flag.StringVar(&opts.event, "event", "", "Event id to look up in the sound theme")
	flag.StringVar(&opts.tone, "tone", "", "Play a generated tone: <hz>[:<ms>]")
	flag.StringVar(&opts.device, "device", cfg.Device, "Output device (default: backend default)")
	flag.StringVar(&opts.backend, "backend", cfg.Backend, "Output backend: oss, oto or portaudio")
	flag.StringVar(&opts.theme, "theme", cfg.Theme, "XDG sound theme (default: freedesktop)")
	flag.StringVar(&opts.remote, "remote", "", "Play through a chime daemon at host:port, or \"auto\" to discover one")
	flag.BoolVar(&opts.debug, "debug", cfg.Debug, "Enable debug logging")
	logFile := flag.String("log-file", "", "Also log to this file")
	flag.Parse()

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	props, err := opts.props()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chime-play: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	// Ctrl-C cancels the sound instead of killing the process
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var status chime.Status
	if opts.remote != "" {
		status, err = playRemote(ctx, opts, props)
	} else {
		status, err = playLocal(ctx, opts, props)
	}
	if err != nil {
		log.Printf("Error: %v", err)
	}

	if status != chime.Success {
		fmt.Fprintf(os.Stderr, "chime-play: %s\n", status)
		os.Exit(1)
	}
}

// props builds the request properties from the flags
func (o options) props() (chime.Props, error) {
	props := chime.Props{chime.PropApplicationName: "chime-play"}

	set := 0
	if o.file != "" {
		props[chime.PropMediaFilename] = o.file
		set++
	}
	if o.tone != "" {
		props[chime.PropMediaFilename] = theme.TonePrefix + o.tone
		set++
	}
	if o.event != "" {
		props[chime.PropEventID] = o.event
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of -file, -tone or -event is required")
	}

	if o.device != "" {
		props[chime.PropDevice] = o.device
	}
	if o.theme != "" {
		props[chime.PropThemeName] = o.theme
	}
	return props, nil
}

func playLocal(ctx context.Context, opts options, props chime.Props) (chime.Status, error) {
	driver, err := chime.Open(chime.Config{
		Driver: opts.backend,
		Debug:  opts.debug,
	})
	if err != nil {
		return chime.StatusOf(err), err
	}

	id := uint32(opts.id)
	done := make(chan chime.Status, 1)
	if err := driver.Play(id, props, func(_ *chime.Driver, _ uint32, status chime.Status) {
		done <- status
	}); err != nil {
		driver.Destroy()
		return chime.StatusOf(err), err
	}

	var status chime.Status
	select {
	case status = <-done:
	case <-ctx.Done():
		log.Printf("Canceling sound %d", id)
		driver.Cancel(id)
		status = <-done
	}

	if err := driver.Destroy(); err != nil {
		return status, err
	}
	return status, nil
}

func playRemote(ctx context.Context, opts options, props chime.Props) (chime.Status, error) {
	addr, path := opts.remote, ""
	if addr == "auto" {
		findCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		server, err := discovery.FindServer(findCtx, 3*time.Second)
		cancel()
		if err != nil {
			return chime.NotFound, err
		}
		log.Printf("Using daemon %s at %s", server.Name, server.Addr())
		addr, path = server.Addr(), server.Path
	}

	hostname, _ := os.Hostname()
	c := client.NewClient(client.Config{
		ServerAddr: addr,
		Path:       path,
		ClientID:   uuid.New().String(),
		Name:       fmt.Sprintf("%s-chime-play", hostname),
		DeviceInfo: protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	})
	if err := c.Connect(); err != nil {
		return chime.NotAvailable, err
	}
	defer c.Close()

	id := uint32(opts.id)
	if err := c.Play(id, props); err != nil {
		return chime.IOError, err
	}

	f, err := c.Wait(ctx, id)
	if err != nil && ctx.Err() != nil {
		log.Printf("Canceling sound %d", id)
		if err := c.Cancel(id); err != nil {
			return chime.IOError, err
		}
		waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		f, err = c.Wait(waitCtx, id)
	}
	if err != nil {
		return chime.IOError, err
	}

	if f.Error != "" {
		return chime.Status(f.Code), fmt.Errorf("%s", f.Error)
	}
	return chime.Status(f.Code), nil
}
