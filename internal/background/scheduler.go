package background

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/store"
)

// BoundaryFunc runs when the automatic schedule crosses a start or end
// boundary.
type BoundaryFunc func(now time.Time)

// Scheduler arms cron entries at the schedule's start and end times and
// re-arms them whenever the record changes. Without an enabled schedule it
// keeps no entries at all.
type Scheduler struct {
	cron       *cron.Cron
	st         store.Store
	onBoundary BoundaryFunc
	unsub      func()

	mu      sync.Mutex
	entries []cron.EntryID
}

// NewScheduler creates a scheduler over st. onBoundary may be nil.
func NewScheduler(st store.Store, onBoundary BoundaryFunc) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		st:         st,
		onBoundary: onBoundary,
	}
}

// Start arms the current schedule and follows future record changes.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.reload(ctx); err != nil {
		return err
	}
	s.cron.Start()
	s.unsub = s.st.Subscribe(func(ch store.Change) {
		if ch.Key != store.KeySettings {
			return
		}
		if err := s.reload(context.Background()); err != nil {
			logging.Warn(fmt.Sprintf("Schedule reload failed: %v", err))
		}
	})
	logging.Debug("Schedule watcher started")
	return nil
}

// Stop detaches from the store and halts the cron runner.
func (s *Scheduler) Stop() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.cron.Stop()
	logging.Debug("Schedule watcher stopped")
}

// EntryCount reports how many boundary entries are armed.
func (s *Scheduler) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Scheduler) reload(ctx context.Context) error {
	record, err := s.st.Settings(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.entries {
		s.cron.Remove(id)
	}
	s.entries = nil

	sched := record.Schedule
	if !sched.Enabled {
		return nil
	}
	for _, at := range []string{sched.Start, sched.End} {
		spec, err := cronSpec(at)
		if err != nil {
			logging.Warn(fmt.Sprintf("Skipping unusable schedule boundary %q: %v", at, err))
			continue
		}
		id, err := s.cron.AddFunc(spec, s.boundary)
		if err != nil {
			logging.Warn(fmt.Sprintf("Failed to arm boundary %q: %v", at, err))
			continue
		}
		s.entries = append(s.entries, id)
	}
	logging.Debug(fmt.Sprintf("Armed %d schedule boundaries (%s to %s)", len(s.entries), sched.Start, sched.End))
	return nil
}

func (s *Scheduler) boundary() {
	now := time.Now()
	logging.Info("Schedule boundary crossed")
	if s.onBoundary != nil {
		s.onBoundary(now)
	}
}

// cronSpec converts a sanitized HH:MM time into a daily cron expression.
func cronSpec(hhmm string) (string, error) {
	hs, ms, ok := strings.Cut(hhmm, ":")
	if !ok {
		return "", fmt.Errorf("malformed time %q", hhmm)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("bad hour in %q", hhmm)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("bad minute in %q", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", m, h), nil
}
