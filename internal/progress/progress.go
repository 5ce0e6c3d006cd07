package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Bar draws a single-line hashing progress bar. It is safe for concurrent
// use by the hashing workers.
type Bar struct {
	label      string
	total      int64
	current    int64
	width      int
	writer     io.Writer
	mu         sync.Mutex
	enabled    bool
	started    time.Time
	lastUpdate time.Time
}

// New returns a bar writing to w. Drawing is enabled only when w is a
// terminal; use Force to draw anyway.
func New(w io.Writer, label string) *Bar {
	return &Bar{
		label:   label,
		width:   40,
		writer:  w,
		enabled: isTerminal(w),
	}
}

// Force enables or disables drawing regardless of the writer.
func (b *Bar) Force(enabled bool) *Bar {
	b.enabled = enabled
	return b
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start resets the bar for a pass over total items.
func (b *Bar) Start(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = total
	b.current = 0
	b.started = time.Now()
	b.lastUpdate = time.Time{}
	if b.enabled && total > 0 {
		b.render()
	}
}

func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	if !b.enabled {
		return
	}

	// Update at most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

// Current returns the number of increments since Start.
func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// render must be called with mu already locked
func (b *Bar) render() {
	if b.total == 0 {
		return
	}

	current := min(b.current, b.total)
	filledWidth := int(int64(b.width) * current / b.total)
	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)
	percent := current * 100 / b.total

	fmt.Fprintf(b.writer, "\r\033[K%s [%s] %3d%% (%d/%d)", b.label, bar, percent, current, b.total)
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled || b.total == 0 {
		return
	}

	b.current = b.total
	b.render()
	fmt.Fprintf(b.writer, " %s\n", time.Since(b.started).Round(time.Millisecond))
}
