// Package store provides the shared settings store: asynchronous key-value
// persistence with change notifications. Two backends exist, a watched JSON
// file and a SQLite database; both hand out only sanitized records.
package store

import (
	"context"
	"errors"

	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Canonical keys carried by change notifications.
const (
	KeySettings = "settingsRecord"
	KeyEnabled  = "enabledFlag"
)

// ErrQuotaExceeded is returned before any write when the record would not
// fit the sync storage quota. The stored state is untouched.
var ErrQuotaExceeded = errors.New("settings exceed sync storage quota")

// Change describes one key transition, delivered to subscribers after the
// write has landed. OldValue and NewValue are *settings.Settings for
// KeySettings and bool for KeyEnabled.
type Change struct {
	Key      string
	OldValue any
	NewValue any
}

// Store is the persistence contract consumed by the rest of the system.
// Reads return a defensive copy that already passed the sanitizer; writes
// re-validate and replace the record wholesale.
type Store interface {
	Settings(ctx context.Context) (*settings.Settings, error)
	SaveSettings(ctx context.Context, s *settings.Settings) error
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
	// Subscribe registers a change listener and returns its unsubscribe
	// function. Notifications run on the writer's goroutine.
	Subscribe(fn func(Change)) func()
	Close() error
}
