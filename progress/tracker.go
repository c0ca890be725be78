// Package progress reports progress of long running batch operations
// such as ingestion and re-embedding.
package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Tracker tracks how many items of a known total have been processed.
// When constructed with a nil writer it only counts; nothing is rendered.
// A nil *Tracker is valid and does nothing.
type Tracker struct {
	bar       *progressbar.ProgressBar
	total     int
	current   int
	startTime time.Time
	started   bool
	stopped   bool
	mu        sync.Mutex
}

// NewTracker creates a tracker for total items.
// writer: where to render the bar (typically os.Stderr), or nil for none
// description: label shown in front of the bar
func NewTracker(writer io.Writer, total int, description string) *Tracker {
	t := &Tracker{total: total}
	if writer != nil && total > 0 {
		t.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(32),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	return t
}

// Start begins tracking progress.
func (t *Tracker) Start() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = time.Now()
	t.started = true
	t.stopped = false
	t.current = 0
}

// Add increases the current progress by delta, capped at the total.
func (t *Tracker) Add(delta int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.stopped {
		return
	}

	if t.current+delta > t.total {
		delta = t.total - t.current
	}
	t.current += delta
	if t.bar != nil && delta > 0 {
		_ = t.bar.Add(delta)
	}
}

// Finish marks the operation as complete.
func (t *Tracker) Finish() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.stopped {
		return
	}

	t.stopped = true
	t.current = t.total
	if t.bar != nil {
		_ = t.bar.Finish()
	}
}

// Abort stops a failed operation. The bar is cleared without being filled,
// the count keeps its current value and later updates are ignored.
func (t *Tracker) Abort() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.stopped {
		return
	}

	t.stopped = true
	if t.bar != nil {
		_ = t.bar.Exit()
		_ = t.bar.Clear()
	}
}

// Current returns the number of items processed so far.
func (t *Tracker) Current() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Elapsed returns the time elapsed since Start was called.
func (t *Tracker) Elapsed() time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return 0
	}
	return time.Since(t.startTime)
}

// DefaultWriter returns os.Stderr when it is a terminal and nil otherwise,
// so piped output stays free of bar redraws.
func DefaultWriter() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return nil
}
