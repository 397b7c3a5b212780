package parks

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrWong99/pdxparks/internal/filewatch"
)

// Watcher reloads a [Store] whenever its dataset file is modified. A file
// that was touched but not edited is detected by the store's content hash
// and does not swap the table.
type Watcher struct {
	poller *filewatch.Poller
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*watcherOptions)

type watcherOptions struct {
	interval time.Duration
}

// WithInterval sets the polling interval. The default is
// [filewatch.DefaultInterval].
func WithInterval(d time.Duration) WatcherOption {
	return func(o *watcherOptions) { o.interval = d }
}

// NewWatcher creates a watcher for s. Call [Watcher.Run] to start polling.
func NewWatcher(s *Store, opts ...WatcherOption) *Watcher {
	var o watcherOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Watcher{
		poller: filewatch.New(s.Path(), o.interval, func() error {
			changed, err := s.Reload()
			if changed {
				slog.Info("parks watcher: dataset reloaded", "path", s.Path())
			}
			// A failed reload is logged by the store; returning it makes the
			// poller retry on the next tick.
			return err
		}),
	}
}

// Run polls until ctx is cancelled and then returns nil.
func (w *Watcher) Run(ctx context.Context) error { return w.poller.Run(ctx) }
