// Package scrollback provides a bounded, append-only line buffer shared
// between a producing test run and the rendering view. The writer only ever
// appends; readers take consistent snapshots of a visible window.
package scrollback

import "sync"

// DefaultRetention is the default maximum number of lines kept before the
// oldest lines are evicted.
const DefaultRetention = 5000

// Buffer is a bounded line store. One goroutine appends while another reads;
// all access is serialized by an internal mutex so readers never observe a
// partially written line.
type Buffer struct {
	mu        sync.Mutex
	lines     []string
	retention int
	evicted   int // total lines dropped from the head
}

// New returns a Buffer that retains at most retention lines. A retention of
// zero or less falls back to DefaultRetention.
func New(retention int) *Buffer {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Buffer{retention: retention}
}

// Append adds line at the tail, evicting from the head if the retention cap
// is exceeded. Implements runner.LineSink.
func (b *Buffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.retention {
		drop := len(b.lines) - b.retention
		b.lines = append(b.lines[:0], b.lines[drop:]...)
		b.evicted += drop
	}
}

// Len returns the number of retained lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Evicted returns the total number of lines dropped due to the retention cap.
func (b *Buffer) Evicted() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evicted
}

// VisibleWindow returns a copy of up to height lines starting at top.
// top is clamped into [0, max(0, Len()-height)] so scrolling past either end
// is safe. A non-positive height returns nil.
func (b *Buffer) VisibleWindow(top, height int) []string {
	if height <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	maxTop := len(b.lines) - height
	if maxTop < 0 {
		maxTop = 0
	}
	if top > maxTop {
		top = maxTop
	}
	if top < 0 {
		top = 0
	}

	end := top + height
	if end > len(b.lines) {
		end = len(b.lines)
	}

	window := make([]string, end-top)
	copy(window, b.lines[top:end])
	return window
}

// Lines returns a copy of all retained lines in order.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// MaxTop returns the largest valid top offset for a window of the given
// height. Used by views to clamp scroll state and to detect "pinned to tail".
func (b *Buffer) MaxTop(height int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	maxTop := len(b.lines) - height
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

// Reset discards all retained lines. Called between runs so each run's view
// starts from an empty pane.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = b.lines[:0]
	b.evicted = 0
}
