// ABOUTME: Entry point for the chime daemon
// ABOUTME: Parses CLI flags, opens the sound driver and serves remote clients
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sendspin/chime/internal/config"
	"github.com/Sendspin/chime/internal/server"
	"github.com/Sendspin/chime/pkg/chime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}

	port := flag.Int("port", cfg.Port, "WebSocket server port")
	name := flag.String("name", cfg.Name, "Daemon friendly name")
	backend := flag.String("backend", cfg.Backend, "Output backend: oss, oto or portaudio")
	device := flag.String("device", cfg.Device, "Output device (default: backend default)")
	theme := flag.String("theme", cfg.Theme, "XDG sound theme (default: freedesktop)")
	logFile := flag.String("log-file", "chimed.log", "Log file path")
	debug := flag.Bool("debug", cfg.Debug, "Enable debug logging")
	noMDNS := flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	flag.Parse()

	// Set up logging (both file and console)
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	log.SetOutput(io.MultiWriter(os.Stdout, f))

	log.Printf("Starting chime daemon: %s on port %d (backend: %s)", *name, *port, *backend)
	if *debug {
		log.Printf("Debug logging enabled")
	}
	log.Printf("Logging to: %s", *logFile)
	log.Printf("Press Ctrl-C to stop")

	props := chime.Props{chime.PropApplicationName: "chimed"}
	if *theme != "" {
		props[chime.PropThemeName] = *theme
	}

	driver, err := chime.Open(chime.Config{
		Driver:  *backend,
		Device:  *device,
		Props:   props,
		Debug:   *debug,
		Display: showEvent,
	})
	if err != nil {
		log.Fatalf("Failed to open sound driver: %v", err)
	}

	srv := server.New(server.Config{
		Port:       *port,
		Name:       *name,
		EnableMDNS: !*noMDNS,
		Debug:      *debug,
	}, driver)

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("\nReceived %v signal, shutting down gracefully...", sig)
		srv.Stop()
	}()

	serveErr := srv.Start()

	if err := driver.Destroy(); err != nil {
		log.Printf("Error destroying sound driver: %v", err)
	}

	if serveErr != nil {
		log.Fatalf("Server error: %v", serveErr)
	}

	log.Printf("Server stopped")
}

// showEvent is the visual cue for a playing sound: the event name in the log
func showEvent(props chime.Props) {
	name := props.Get(chime.PropEventID)
	if name == "" {
		name = props.Get(chime.PropMediaFilename)
	}
	log.Printf("♪ %s (%s)", name, props.Get(chime.PropApplicationName))
}
