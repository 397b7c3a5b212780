package config_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MrWong99/pdxparks/internal/config"
)

const (
	infoYAML = "server:\n  log_level: info\ndata:\n  path: ./db/parks.json\n"
	// Only the log level differs from infoYAML.
	debugYAML = "server:\n  log_level: debug\ndata:\n  path: ./db/parks.json\n"
	// Fails validation.
	badLevelYAML = "server:\n  log_level: bananas\n"
)

// changes records the callbacks made by a watcher.
type changes struct {
	mu    sync.Mutex
	pairs [][2]*config.Config
	ch    chan struct{}
}

func newChanges() *changes { return &changes{ch: make(chan struct{}, 16)} }

func (c *changes) record(old, new *config.Config) {
	c.mu.Lock()
	c.pairs = append(c.pairs, [2]*config.Config{old, new})
	c.mu.Unlock()
	c.ch <- struct{}{}
}

func (c *changes) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pairs)
}

func (c *changes) wait(t *testing.T) [2]*config.Config {
	t.Helper()
	select {
	case <-c.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher callback not invoked")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pairs[len(c.pairs)-1]
}

// edit rewrites path and moves its mtime forward so the change is visible on
// filesystems with coarse timestamps.
func edit(t *testing.T, path, content string, bump time.Duration) {
	t.Helper()
	writeFile(t, path, content)
	at := time.Now().Add(bump)
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

// startWatcher writes infoYAML, creates a fast-polling watcher and runs it
// until test cleanup.
func startWatcher(t *testing.T, opts ...config.WatcherOption) (string, *config.Watcher, *changes) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pdxparks.yaml")
	writeFile(t, path, infoYAML)

	rec := newChanges()
	opts = append([]config.WatcherOption{config.WithInterval(10 * time.Millisecond)}, opts...)
	w, err := config.NewWatcher(path, rec.record, opts...)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	})
	return path, w, rec
}

// ─── Initial load ────────────────────────────────────────────────────────────

func TestNewWatcher_LoadsImmediately(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pdxparks.yaml")
	writeFile(t, path, infoYAML)

	w, err := config.NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if got := w.Current().Server.LogLevel; got != config.LogInfo {
		t.Errorf("log level = %q, want info", got)
	}
}

func TestNewWatcher_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	invalid := filepath.Join(dir, "bad.yaml")
	writeFile(t, invalid, badLevelYAML)

	for name, path := range map[string]string{
		"missing": filepath.Join(dir, "absent.yaml"),
		"invalid": invalid,
	} {
		if _, err := config.NewWatcher(path, nil); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestNewWatcher_OverlayAppliedAndValidated(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pdxparks.yaml")
	writeFile(t, path, infoYAML)

	w, err := config.NewWatcher(path, nil, config.WithOverlay(func(c *config.Config) error {
		c.Server.Port = 9999
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got := w.Current().Server.Port; got != 9999 {
		t.Errorf("port = %d, want overlay value 9999", got)
	}

	_, err = config.NewWatcher(path, nil, config.WithOverlay(func(c *config.Config) error {
		c.Server.Port = -1
		return nil
	}))
	if err == nil {
		t.Error("overlay producing an invalid config should fail")
	}
}

// ─── Reloads ─────────────────────────────────────────────────────────────────

func TestWatcher_ReportsEdit(t *testing.T) {
	t.Parallel()
	path, w, rec := startWatcher(t)

	edit(t, path, debugYAML, 2*time.Second)
	pair := rec.wait(t)

	if pair[0].Server.LogLevel != config.LogInfo || pair[1].Server.LogLevel != config.LogDebug {
		t.Errorf("callback got %q -> %q, want info -> debug", pair[0].Server.LogLevel, pair[1].Server.LogLevel)
	}
	if w.Current() != pair[1] {
		t.Error("Current() should return the config passed to the callback")
	}
}

func TestWatcher_OverlayReappliedOnReload(t *testing.T) {
	t.Parallel()
	path, _, rec := startWatcher(t, config.WithOverlay(func(c *config.Config) error {
		c.Server.Host = "10.1.2.3"
		return nil
	}))

	edit(t, path, debugYAML, 2*time.Second)
	pair := rec.wait(t)
	if pair[1].Server.Host != "10.1.2.3" {
		t.Errorf("reloaded host = %q, overlay should win", pair[1].Server.Host)
	}
}

func TestWatcher_InvalidEditIgnoredThenRecovered(t *testing.T) {
	t.Parallel()
	path, w, rec := startWatcher(t)

	edit(t, path, badLevelYAML, 2*time.Second)
	time.Sleep(100 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("callback fired %d times for an invalid edit", rec.count())
	}
	if got := w.Current().Server.LogLevel; got != config.LogInfo {
		t.Errorf("Current() log level = %q, want previous info", got)
	}

	edit(t, path, debugYAML, 3*time.Second)
	if pair := rec.wait(t); pair[1].Server.LogLevel != config.LogDebug {
		t.Errorf("recovered log level = %q, want debug", pair[1].Server.LogLevel)
	}
}

func TestWatcher_TouchWithoutEdit(t *testing.T) {
	t.Parallel()
	path, _, rec := startWatcher(t)

	at := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("callback fired %d times for a touch", rec.count())
	}
}
