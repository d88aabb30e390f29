package display

import (
	"sync"
	"time"
)

// debounceInterval filters mechanical bounce and double-taps on the page
// button.
const debounceInterval = 250 * time.Millisecond

// Pager cycles the active telemetry page. Button edges arrive from an
// input goroutine as a single-slot pending event; the tick thread drains
// it once per tick and debounces by timestamp.
type Pager struct {
	mu      sync.Mutex
	pending bool

	page     int
	lastFlip time.Time
}

// Request records a pending page-advance event. A second event before the
// drain collapses into the first.
func (p *Pager) Request() {
	p.mu.Lock()
	p.pending = true
	p.mu.Unlock()
}

// Drain consumes the pending event, advancing the page unless within the
// debounce window. Returns the current page.
func (p *Pager) Drain(now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending {
		p.pending = false
		if p.lastFlip.IsZero() || now.Sub(p.lastFlip) > debounceInterval {
			p.page = (p.page + 1) % NumPages
			p.lastFlip = now
		}
	}

	return p.page
}

// Page returns the current page without draining.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.page
}
