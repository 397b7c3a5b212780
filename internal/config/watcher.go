package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/MrWong99/pdxparks/internal/filewatch"
)

// Watcher keeps the most recent valid version of a config file and reports
// every effective change to a callback.
//
// An edit that fails to parse or validate is logged and ignored; the previous
// config stays current until the file is fixed.
type Watcher struct {
	path     string
	onChange func(old, new *Config)
	overlay  func(*Config) error
	poller   *filewatch.Poller

	mu       sync.Mutex
	current  *Config
	lastHash [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*watcherOptions)

type watcherOptions struct {
	interval time.Duration
	overlay  func(*Config) error
}

// WithInterval sets the polling interval. The default is
// [filewatch.DefaultInterval].
func WithInterval(d time.Duration) WatcherOption {
	return func(o *watcherOptions) { o.interval = d }
}

// WithOverlay applies fn to every freshly decoded config before it is
// validated and compared, so that environment variables and flags keep
// precedence over the file across reloads.
func WithOverlay(fn func(*Config) error) WatcherOption {
	return func(o *watcherOptions) { o.overlay = fn }
}

// NewWatcher loads the config at path and returns a watcher for it. The
// initial load must succeed. Call [Watcher.Run] to start polling.
func NewWatcher(path string, onChange func(old, new *Config), opts ...WatcherOption) (*Watcher, error) {
	var o watcherOptions
	for _, opt := range opts {
		opt(&o)
	}

	w := &Watcher{path: path, onChange: onChange, overlay: o.overlay}
	cfg, hash, err := w.read()
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	w.current, w.lastHash = cfg, hash
	w.poller = filewatch.New(path, o.interval, w.reload)
	return w, nil
}

// Current returns the most recently loaded valid config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run polls the file until ctx is cancelled and then returns nil.
func (w *Watcher) Run(ctx context.Context) error { return w.poller.Run(ctx) }

// reload is called by the poller after the file's mtime moved.
func (w *Watcher) reload() error {
	cfg, hash, err := w.read()
	if err != nil {
		slog.Warn("config watcher: ignoring invalid config", "path", w.path, "err", err)
		return err
	}

	w.mu.Lock()
	if hash == w.lastHash {
		w.mu.Unlock()
		return nil
	}
	old := w.current
	w.current, w.lastHash = cfg, hash
	w.mu.Unlock()

	slog.Info("config watcher: configuration reloaded", "path", w.path)
	// Outside the lock: the callback may call Current.
	if w.onChange != nil {
		w.onChange(old, cfg)
	}
	return nil
}

// read loads, overlays and validates the file, returning the config and the
// SHA-256 of the raw bytes. The hash covers the file only, so an overlay
// change alone never counts as an edit.
func (w *Watcher) read() (*Config, [sha256.Size]byte, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, [sha256.Size]byte{}, err
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, [sha256.Size]byte{}, err
	}
	if w.overlay != nil {
		if err := w.overlay(cfg); err != nil {
			return nil, [sha256.Size]byte{}, err
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, [sha256.Size]byte{}, err
	}
	return cfg, sha256.Sum256(data), nil
}
