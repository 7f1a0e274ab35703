// Package monitor watches runtime health while the theme is active: a
// responsiveness loop that notices long stalls and a memory loop that
// warns when the process grows past its budget. Warnings surface through a
// single reusable indicator that hides itself shortly after the last one.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultLongTaskThreshold is the stall length that triggers a
	// responsiveness warning.
	DefaultLongTaskThreshold = 500 * time.Millisecond
	// DefaultSampleInterval is the responsiveness loop cadence.
	DefaultSampleInterval = 100 * time.Millisecond
	// DefaultMemoryInterval is the memory loop cadence.
	DefaultMemoryInterval = 2 * time.Second
	// DefaultMemoryLimit is the usage above which the memory warning
	// fires.
	DefaultMemoryLimit = uint64(1) << 30
	// DefaultAutoHide is how long the indicator stays up after the most
	// recent warning.
	DefaultAutoHide = 2 * time.Second
)

// Options tune a Monitor. Zero values fall back to defaults.
type Options struct {
	LongTaskThreshold time.Duration
	SampleInterval    time.Duration
	MemoryInterval    time.Duration
	MemoryLimit       uint64
	AutoHide          time.Duration
	// Indicator receives warnings. Defaults to the log-backed indicator.
	Indicator Indicator
	// ReadMemory samples current usage in bytes. A false report means the
	// platform exposes no statistics and the memory loop stays silent.
	ReadMemory func() (uint64, bool)
}

// Monitor runs the health loops. Start is idempotent and Stop tears
// everything down, indicator included.
type Monitor struct {
	longTask   time.Duration
	sampleEach time.Duration
	memEach    time.Duration
	memLimit   uint64
	autoHide   time.Duration
	indicator  Indicator
	readMemory func() (uint64, bool)

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	hideTimer *time.Timer
}

// New builds a Monitor from opts.
func New(opts Options) *Monitor {
	if opts.LongTaskThreshold <= 0 {
		opts.LongTaskThreshold = DefaultLongTaskThreshold
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = DefaultSampleInterval
	}
	if opts.MemoryInterval <= 0 {
		opts.MemoryInterval = DefaultMemoryInterval
	}
	if opts.MemoryLimit == 0 {
		opts.MemoryLimit = DefaultMemoryLimit
	}
	if opts.AutoHide <= 0 {
		opts.AutoHide = DefaultAutoHide
	}
	if opts.Indicator == nil {
		opts.Indicator = NewLogIndicator()
	}
	if opts.ReadMemory == nil {
		opts.ReadMemory = residentBytes
	}
	return &Monitor{
		longTask:   opts.LongTaskThreshold,
		sampleEach: opts.SampleInterval,
		memEach:    opts.MemoryInterval,
		memLimit:   opts.MemoryLimit,
		autoHide:   opts.AutoHide,
		indicator:  opts.Indicator,
		readMemory: opts.ReadMemory,
	}
}

// Running reports whether the loops are active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Start launches both loops. A running monitor is left untouched.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(2)
	go m.watchResponsiveness(ctx)
	go m.watchMemory(ctx)
}

// Stop halts the loops, waits for them, and hides the indicator.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	m.cancel = nil
	if m.hideTimer != nil {
		m.hideTimer.Stop()
		m.hideTimer = nil
	}
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.indicator.Hide()
}

// watchResponsiveness measures the gap between ticker wakeups. A gap far
// beyond the cadence means the process was stalled that long.
func (m *Monitor) watchResponsiveness(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.sampleEach)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			if delta > m.longTask {
				m.warn(fmt.Sprintf("Long task detected: %dms", delta.Milliseconds()))
			}
		}
	}
}

func (m *Monitor) watchMemory(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.memEach)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			used, ok := m.readMemory()
			if !ok {
				continue
			}
			if used > m.memLimit {
				gib := float64(used) / float64(1<<30)
				m.warn(fmt.Sprintf("High memory usage: %.2f GiB", gib))
			}
		}
	}
}

// warn surfaces a message on the shared indicator and re-arms the hide
// timer, so back-to-back warnings reuse the same surface.
func (m *Monitor) warn(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.indicator.Show(msg)
	if m.hideTimer != nil {
		m.hideTimer.Stop()
	}
	m.hideTimer = time.AfterFunc(m.autoHide, func() {
		m.mu.Lock()
		m.hideTimer = nil
		m.mu.Unlock()
		m.indicator.Hide()
	})
}
