// ABOUTME: Environment configuration for chime commands
// ABOUTME: Loads an optional .env file and reads CHIME_* variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvDevice  = "CHIME_DEVICE"
	EnvBackend = "CHIME_BACKEND"
	EnvTheme   = "CHIME_THEME"
	EnvDebug   = "CHIME_DEBUG"
	EnvPort    = "CHIME_PORT"
	EnvName    = "CHIME_NAME"
)

// DefaultPort is the daemon's listen port
const DefaultPort = 8928

// Config holds settings shared by the chime commands
type Config struct {
	Device  string
	Backend string
	Theme   string
	Debug   bool
	Port    int
	Name    string
}

// Load reads the given .env files (default ".env") if they exist and builds a Config
// from the environment. Variables already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return FromEnv()
}

// FromEnv builds a Config from the current environment
func FromEnv() (*Config, error) {
	cfg := &Config{
		Device:  os.Getenv(EnvDevice),
		Backend: os.Getenv(EnvBackend),
		Theme:   os.Getenv(EnvTheme),
		Name:    os.Getenv(EnvName),
		Port:    DefaultPort,
	}

	if cfg.Backend == "" {
		cfg.Backend = "oss"
	}

	if cfg.Name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "chime"
		}
		cfg.Name = hostname + "-chime"
	}

	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s=%q: %w", EnvDebug, v, err)
		}
		cfg.Debug = debug
	}

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid %s=%q", EnvPort, v)
		}
		cfg.Port = port
	}

	return cfg, nil
}
