// Package background is the daemon side of the system: an in-memory mirror
// of the settings store for cheap state queries, a schedule boundary
// watcher, and the HTTP control API the CLI talks to.
package background

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/store"
	"github.com/mxnstrexgl/cyberdark/internal/style"
)

// Cache mirrors the store in memory so the is-enabled/is-blacklisted
// question never costs a storage read. Every store change replaces the
// mirrored state wholesale.
type Cache struct {
	st    store.Store
	unsub func()

	mu      sync.RWMutex
	record  *settings.Settings
	enabled bool
}

var _ style.StateQuerier = (*Cache)(nil)

// NewCache primes a cache from st and keeps it current until Close.
func NewCache(ctx context.Context, st store.Store) (*Cache, error) {
	c := &Cache{st: st}
	if err := c.refresh(ctx); err != nil {
		return nil, fmt.Errorf("prime cache: %w", err)
	}
	c.unsub = st.Subscribe(func(store.Change) {
		if err := c.refresh(context.Background()); err != nil {
			logging.Warn(fmt.Sprintf("Cache refresh failed: %v", err))
		}
	})
	return c, nil
}

func (c *Cache) refresh(ctx context.Context) error {
	record, err := c.st.Settings(ctx)
	if err != nil {
		return err
	}
	enabled, err := c.st.Enabled(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.record = record
	c.enabled = enabled
	c.mu.Unlock()
	return nil
}

// EnabledState answers the fast-path query from cached state only.
func (c *Cache) EnabledState(ctx context.Context, hostname string) (bool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.record == nil {
		return false, false, errors.New("cache not primed")
	}
	blacklisted := style.BuiltinExcluded(hostname) ||
		settings.MatchesAny(hostname, c.record.Blacklist)
	return c.enabled, blacklisted, nil
}

// Record returns a copy of the mirrored settings record.
func (c *Cache) Record() *settings.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.record.Clone()
}

// Enabled returns the mirrored enabled flag.
func (c *Cache) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Close detaches the cache from the store.
func (c *Cache) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
}
