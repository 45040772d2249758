// Package watch recomputes hashversions when project sources change.
package watch

import (
	"slices"
	"sync"
	"time"
)

// MaxPending is the maximum number of paths that can be pending.
// Reaching it flushes immediately, bounding memory during mass changes
// such as a branch checkout.
const MaxPending = 1000

// Debouncer coalesces rapid file change events into one batch. Events
// within the window extend it, so an editor saving many files or a
// formatter run produce a single recomputation.
type Debouncer struct {
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	window  time.Duration
	onFlush func(paths []string)
	stopped bool
}

// NewDebouncer creates a debouncer with the given window duration.
// onFlush receives the sorted set of changed paths once the window
// expires with no new events.
func NewDebouncer(window time.Duration, onFlush func(paths []string)) *Debouncer {
	return &Debouncer{
		pending: make(map[string]struct{}),
		window:  window,
		onFlush: onFlush,
	}
}

// Add records a changed path.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.pending[path] = struct{}{}

	if len(d.pending) >= MaxPending {
		d.stopTimerLocked()
		paths := d.drainLocked()
		d.mu.Unlock()
		d.emit(paths)
		return
	}

	// A timer that already fired may still run flush; it then finds
	// nothing pending or the paths added here, both of which are fine.
	d.stopTimerLocked()
	d.timer = time.AfterFunc(d.window, d.FlushNow)
	d.mu.Unlock()
}

// FlushNow emits pending paths without waiting for the window.
func (d *Debouncer) FlushNow() {
	d.mu.Lock()
	d.stopTimerLocked()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	paths := d.drainLocked()
	d.mu.Unlock()
	d.emit(paths)
}

// Stop stops the debouncer after emitting pending paths. Later Add calls
// are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.stopTimerLocked()
	paths := d.drainLocked()
	d.mu.Unlock()
	d.emit(paths)
}

// PendingCount returns the number of paths waiting to be flushed.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// drainLocked returns and clears the pending set. Caller must hold d.mu.
func (d *Debouncer) drainLocked() []string {
	if len(d.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	slices.Sort(paths)
	return paths
}

func (d *Debouncer) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// emit calls onFlush outside the lock.
func (d *Debouncer) emit(paths []string) {
	if len(paths) > 0 && d.onFlush != nil {
		d.onFlush(paths)
	}
}
