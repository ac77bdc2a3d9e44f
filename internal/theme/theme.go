// ABOUTME: XDG sound theme lookup
// ABOUTME: Resolves event ids and file names into playable audio sources
// Package theme resolves sound requests against XDG sound themes.
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Sendspin/chime/pkg/audio"
	"github.com/Sendspin/chime/pkg/audio/decode"
)

// DefaultTheme is searched after the requested theme and everything it inherits
const DefaultTheme = "freedesktop"

// DefaultProfile is the output profile subdirectory searched when a theme has no index
const DefaultProfile = "stereo"

var (
	// ErrNoSound is returned for requests naming neither a file nor an event id
	ErrNoSound = errors.New("no sound named")
	// ErrNotFound is returned when no theme provides the event
	ErrNotFound = errors.New("sound not found")
	// ErrDisabled is returned when a theme explicitly disables the event
	ErrDisabled = errors.New("sound disabled by theme")
)

// Request names the sound to resolve
type Request struct {
	EventID  string
	Filename string
	Theme    string
}

// Options configures a Resolver
type Options struct {
	// Theme is used when a request names none
	Theme string
	// DataDirs are searched in order; defaults to the XDG data directories
	DataDirs []string
	// ToneSpec is the PCM layout of generated tones
	ToneSpec audio.Spec
}

// Resolver looks sounds up in XDG sound themes. It caches directory listings
// and theme indexes until Close.
type Resolver struct {
	opts Options

	mu       sync.Mutex
	listings map[string]map[string]bool
	indexes  map[string]*index
}

// NewResolver creates a resolver, filling defaults from the environment
func NewResolver(opts Options) *Resolver {
	if opts.Theme == "" {
		opts.Theme = DefaultTheme
	}
	if len(opts.DataDirs) == 0 {
		opts.DataDirs = DataDirs()
	}
	if !opts.ToneSpec.Valid() {
		opts.ToneSpec = audio.Spec{Format: audio.S16NE, Channels: 2, Rate: 44100}
	}

	return &Resolver{
		opts:     opts,
		listings: make(map[string]map[string]bool),
		indexes:  make(map[string]*index),
	}
}

// DataDirs returns $XDG_DATA_HOME followed by $XDG_DATA_DIRS, with XDG defaults
func DataDirs() []string {
	var dirs []string

	home := os.Getenv("XDG_DATA_HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(h, ".local", "share")
		}
	}
	if home != "" {
		dirs = append(dirs, home)
	}

	system := os.Getenv("XDG_DATA_DIRS")
	if system == "" {
		system = "/usr/local/share:/usr/share"
	}
	for _, d := range strings.Split(system, ":") {
		if d != "" {
			dirs = append(dirs, d)
		}
	}

	return dirs
}

// Resolve opens the sound named by req
func (r *Resolver) Resolve(req Request) (audio.Source, error) {
	if req.Filename != "" {
		if IsTone(req.Filename) {
			return OpenTone(req.Filename, r.opts.ToneSpec)
		}
		return decode.Open(req.Filename)
	}

	path, err := r.Lookup(req)
	if err != nil {
		return nil, err
	}
	return decode.Open(path)
}

// Lookup returns the path of the themed file for req.EventID.
// Each dash-separated suffix of the id is dropped in turn until a theme provides it.
func (r *Resolver) Lookup(req Request) (string, error) {
	if req.EventID == "" {
		return "", ErrNoSound
	}

	name := req.Theme
	if name == "" {
		name = r.opts.Theme
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	chain := r.chainLocked(name)
	for id := req.EventID; id != ""; id = parentID(id) {
		for _, t := range chain {
			path, err := r.findLocked(t, id)
			if err != nil {
				return "", err
			}
			if path != "" {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, req.EventID)
}

// Close drops all cached listings and indexes
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings = make(map[string]map[string]bool)
	r.indexes = make(map[string]*index)
	return nil
}

// chainLocked returns name, the themes it inherits from, then the default theme
func (r *Resolver) chainLocked(name string) []string {
	var chain []string
	seen := make(map[string]bool)

	var walk func(string)
	walk = func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		chain = append(chain, t)
		for _, parent := range r.indexLocked(t).inherits {
			walk(parent)
		}
	}

	walk(name)
	walk(DefaultTheme)
	return chain
}

// findLocked searches every data dir for id in theme t
func (r *Resolver) findLocked(t, id string) (string, error) {
	idx := r.indexLocked(t)

	for _, base := range r.opts.DataDirs {
		root := filepath.Join(base, "sounds", t)
		for _, sub := range idx.directories {
			dir := filepath.Join(root, sub)
			files := r.listingLocked(dir)

			if files[id+".disabled"] {
				return "", fmt.Errorf("%w: %s", ErrDisabled, id)
			}
			for _, ext := range decode.Extensions {
				if files[id+ext] {
					return filepath.Join(dir, id+ext), nil
				}
			}
		}
	}

	return "", nil
}

// listingLocked returns the cached set of file names in dir
func (r *Resolver) listingLocked(dir string) map[string]bool {
	if files, ok := r.listings[dir]; ok {
		return files
	}

	files := make(map[string]bool)
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				files[e.Name()] = true
			}
		}
	}

	r.listings[dir] = files
	return files
}

// indexLocked returns the merged index.theme of t across the data dirs
func (r *Resolver) indexLocked(t string) *index {
	if idx, ok := r.indexes[t]; ok {
		return idx
	}

	idx := &index{}
	for _, base := range r.opts.DataDirs {
		f, err := os.Open(filepath.Join(base, "sounds", t, "index.theme"))
		if err != nil {
			continue
		}
		parsed := parseIndex(f)
		f.Close()
		idx.merge(parsed)
	}
	if len(idx.directories) == 0 {
		idx.directories = []string{DefaultProfile, "."}
	}

	r.indexes[t] = idx
	return idx
}

func parentID(id string) string {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 {
		return ""
	}
	return id[:i]
}
