package style

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of added elements into a single callback. The
// window opens with the first buffered element and is not extended by later
// arrivals, which keeps latency bounded on noisy pages.
type debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	fire     func([]Element)
	pending  []Element
	timer    *time.Timer
	stopped  bool
}

func newDebouncer(interval time.Duration, fire func([]Element)) *debouncer {
	return &debouncer{interval: interval, fire: fire}
}

func (d *debouncer) add(els []Element) {
	if len(els) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = append(d.pending, els...)
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.flush)
	}
}

func (d *debouncer) flush() {
	d.mu.Lock()
	els := d.pending
	d.pending = nil
	d.timer = nil
	stopped := d.stopped
	d.mu.Unlock()
	if stopped || len(els) == 0 {
		return
	}
	d.fire(els)
}

// reset discards buffered elements and disarms the timer while keeping the
// debouncer usable.
func (d *debouncer) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// stop is reset plus a terminal flag; further adds are ignored.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
