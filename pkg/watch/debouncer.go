package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid file events so a burst of writes triggers a
// single database rebuild. Paths seen within the window are merged into
// one batch, emitted after the window elapses with no flush pending.
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	output  chan []string
	stopped bool
}

// NewDebouncer creates a debouncer with the given window duration.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]struct{}),
		output:  make(chan []string, 4),
	}
}

// Add records a changed path. Duplicate paths within one window
// collapse into a single entry.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || len(d.pending) == 0 {
		return
	}

	batch := make([]string, 0, len(d.pending))
	for p := range d.pending {
		batch = append(batch, p)
	}
	d.pending = make(map[string]struct{})

	// Non-blocking: if the consumer is mid-rebuild and the buffer is
	// full, the next event re-arms the timer anyway.
	select {
	case d.output <- batch:
	default:
	}
}

// Output returns the channel of coalesced path batches.
func (d *Debouncer) Output() <-chan []string {
	return d.output
}

// Stop stops the debouncer and closes the output channel. Safe to call
// multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
