package parks

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// LoadObserver is notified after every load attempt. t is the table now being
// served and err is the load error, if any.
type LoadObserver func(t *Table, err error)

// Store owns the table currently served to lookups.
//
// The table pointer is swapped atomically, so [Store.Table] never blocks and
// callers always see a complete dataset. Reloads are serialised.
type Store struct {
	path     string
	observer LoadObserver

	table atomic.Pointer[Table]

	mu       sync.Mutex // serialises reloads; guards the fields below
	lastHash [sha256.Size]byte
	lastErr  error
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithLoadObserver registers fn to be called after every load attempt.
func WithLoadObserver(fn LoadObserver) StoreOption {
	return func(s *Store) { s.observer = fn }
}

// NewStore creates a store for the dataset at path and performs the initial
// load. A failed initial load is logged and leaves the store serving an empty
// table; it is not returned as an error because the server stays usable (every
// lookup answers with [InvalidLocationMessage]). Use [Store.Err] to inspect it.
func NewStore(path string, opts ...StoreOption) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{path: path}
	for _, o := range opts {
		o(s)
	}
	s.table.Store(NewTable(nil))
	_, _ = s.Reload()
	return s
}

// NewStaticStore returns a store that always serves t. It has no backing file;
// [Store.Reload] on it is a no-op. Intended for tests and embedding.
func NewStaticStore(t *Table) *Store {
	if t == nil {
		t = NewTable(nil)
	}
	s := &Store{}
	s.table.Store(t)
	return s
}

// Path returns the dataset file path, or "" for a static store.
func (s *Store) Path() string { return s.path }

// Table returns the table currently being served. It is never nil.
func (s *Store) Table() *Table { return s.table.Load() }

// Err returns the error from the most recent load attempt, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reload re-reads the dataset file. changed reports whether a new table was
// installed; it is false when the file content is identical to what is
// already being served.
//
// When the load fails the previously served table is kept, so a bad edit to
// the dataset never takes a working server down to the empty table. Only the
// first load, which has nothing to keep, leaves the store empty.
func (s *Store) Reload() (changed bool, err error) {
	if s.path == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, hash, err := loadAndHash(s.path)
	s.lastErr = err
	if err != nil {
		logLoadError(s.path, err)
		s.notify(err)
		return false, err
	}
	if hash == s.lastHash {
		return false, nil
	}

	s.table.Store(t)
	s.lastHash = hash
	slog.Info("parks: dataset loaded",
		"path", s.path,
		"districts", t.Len(),
		"parks", t.ParkCount(),
	)
	s.notify(nil)
	return true, nil
}

func (s *Store) notify(err error) {
	if s.observer != nil {
		s.observer(s.table.Load(), err)
	}
}

// loadAndHash reads the dataset file, decodes it, and returns the table
// alongside the SHA-256 of the raw bytes.
func loadAndHash(path string) (*Table, [sha256.Size]byte, error) {
	var zero [sha256.Size]byte

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zero, fmt.Errorf("%w: %q: %w", ErrDatasetNotFound, path, err)
		}
		return nil, zero, fmt.Errorf("parks: read %q: %w", path, err)
	}
	t, err := Decode(data)
	if err != nil {
		return nil, zero, fmt.Errorf("%w (%q)", err, path)
	}
	return t, sha256.Sum256(data), nil
}

// logLoadError reports a failed load. Missing and malformed datasets are
// operator mistakes and log at warn; anything else logs at error.
func logLoadError(path string, err error) {
	switch {
	case errors.Is(err, ErrDatasetNotFound):
		slog.Warn("parks: dataset file not found", "path", path, "err", err)
	case errors.Is(err, ErrDatasetMalformed):
		slog.Warn("parks: dataset is not properly formatted, check the source file", "path", path, "err", err)
	default:
		slog.Error("parks: failed to load dataset", "path", path, "err", err)
	}
}

// ErrorKind classifies a load error for metrics and logs: "not_found",
// "malformed", "unexpected", or "" for a nil error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDatasetNotFound):
		return "not_found"
	case errors.Is(err, ErrDatasetMalformed):
		return "malformed"
	default:
		return "unexpected"
	}
}
