package store

import "sync"

// hub fans one Change out to every subscriber. Each subscription is wrapped
// in its own struct so unsubscribing removes exactly that registration by
// pointer identity, even when the same function is registered twice.
type hub struct {
	mu   sync.RWMutex
	subs []*subscription
}

type subscription struct {
	fn func(Change)
}

func (h *hub) subscribe(fn func(Change)) func() {
	s := &subscription{fn: fn}
	h.mu.Lock()
	h.subs = append(h.subs, s)
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, cur := range h.subs {
			if cur == s {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				return
			}
		}
	}
}

// publish snapshots the subscriber list, then notifies outside the lock so
// a callback may subscribe or unsubscribe without deadlocking.
func (h *hub) publish(c Change) {
	h.mu.RLock()
	subs := make([]*subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, s := range subs {
		s.fn(c)
	}
}

func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
