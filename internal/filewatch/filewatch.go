// Package filewatch polls a single file for modifications.
//
// Polling is used instead of inotify-style notifications: the watched files
// (the parks dataset and the YAML config) are tiny, edited by hand or by
// config management, and often live on volumes where change events are not
// delivered reliably (bind mounts, ConfigMaps).
package filewatch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// DefaultInterval is the polling interval used when none is given.
const DefaultInterval = 5 * time.Second

// Poller calls a function whenever the modification time of a file moves.
//
// If the function returns an error the old modification time is kept, so the
// next tick retries. Content-level deduplication (for files that were touched
// but not edited) is left to the function.
type Poller struct {
	path     string
	interval time.Duration
	onChange func() error

	lastMtime time.Time
	statFails bool // last stat failed; warn only on the transition
}

// New returns a poller for path. The current modification time is recorded
// immediately, so only changes after New trigger onChange. A non-positive
// interval selects [DefaultInterval].
func New(path string, interval time.Duration, onChange func() error) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{path: path, interval: interval, onChange: onChange}
	if info, err := os.Stat(path); err == nil {
		p.lastMtime = info.ModTime()
	}
	return p
}

// Interval returns the polling interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// Run polls until ctx is cancelled and then returns nil. Run must not be
// called concurrently on the same Poller.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll performs a single check. It reports whether onChange ran and
// succeeded.
func (p *Poller) Poll() bool {
	info, err := os.Stat(p.path)
	if err != nil {
		if !p.statFails {
			slog.Warn("filewatch: cannot stat file", "path", p.path, "err", err)
			p.statFails = true
		}
		return false
	}
	if p.statFails {
		slog.Info("filewatch: file is readable again", "path", p.path)
		p.statFails = false
	}
	mtime := info.ModTime()
	if mtime.Equal(p.lastMtime) {
		return false
	}
	if err := p.onChange(); err != nil {
		return false
	}
	p.lastMtime = mtime
	return true
}
