package toolhost

import (
	"slices"
	"sync"
	"time"
)

// defaultWindowSize is the default capacity of each tool's rolling window.
const defaultWindowSize = 100

// rollingWindow tracks the last N tool call latencies for percentile
// calculation. It uses a ring buffer so that only the most recent [size]
// measurements are kept. All methods are safe for concurrent use.
type rollingWindow struct {
	mu      sync.Mutex
	samples []time.Duration // ring buffer of latency measurements
	failed  []bool          // parallel to samples; true when that call errored
	pos     int             // next write position
	count   int             // total samples written (may exceed len(samples))
	size    int             // window capacity
}

// newRollingWindow creates a new rolling window with the given capacity.
// A size of 0 or negative defaults to [defaultWindowSize].
func newRollingWindow(size int) *rollingWindow {
	if size <= 0 {
		size = defaultWindowSize
	}
	return &rollingWindow{
		samples: make([]time.Duration, size),
		failed:  make([]bool, size),
		size:    size,
	}
}

// Record adds a latency measurement to the window. The oldest measurement is
// overwritten once the buffer is full.
func (w *rollingWindow) Record(latency time.Duration, isError bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples[w.pos] = latency
	w.failed[w.pos] = isError
	w.pos = (w.pos + 1) % w.size
	w.count++
}

// windowLen returns the number of meaningful samples in the buffer (≤ size).
func (w *rollingWindow) windowLen() int {
	return min(w.count, w.size)
}

// sortedCopy returns a sorted copy of the current window samples.
func (w *rollingWindow) sortedCopy() []time.Duration {
	n := w.windowLen()
	if n == 0 {
		return nil
	}
	cp := slices.Clone(w.samples[:n])
	slices.Sort(cp)
	return cp
}

// percentile returns the q-th quantile (0..1) of the window, or 0 when empty.
func (w *rollingWindow) percentile(q float64) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	sorted := w.sortedCopy()
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*q)]
}

// P50 returns the median latency.
func (w *rollingWindow) P50() time.Duration { return w.percentile(0.5) }

// P99 returns the 99th-percentile latency.
func (w *rollingWindow) P99() time.Duration { return w.percentile(0.99) }

// ErrorRate returns the fraction of calls in the current window that resulted
// in an error (0.0–1.0). Returns 0 if no measurements have been recorded.
func (w *rollingWindow) ErrorRate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.windowLen()
	if n == 0 {
		return 0
	}
	errs := 0
	for _, f := range w.failed[:n] {
		if f {
			errs++
		}
	}
	return float64(errs) / float64(n)
}

// Count returns the total number of invocations recorded (may exceed window
// capacity).
func (w *rollingWindow) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
