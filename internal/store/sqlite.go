package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver (pure Go)
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite WASM binary

	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

// SQLiteStore keeps the two canonical keys in a kv table. Change
// notifications fan out in-process; unlike the file backend there is no
// cross-process watch, which the daemon compensates for by being the only
// writer in sqlite deployments.
type SQLiteStore struct {
	db  *sql.DB
	hub hub

	// Serializes read-modify-write cycles so old values in notifications
	// are accurate under concurrent writers.
	mu sync.Mutex
}

// OpenSQLite creates a new SQLite-backed store with optimized settings.
// It creates the database directory if it doesn't exist, applies
// performance pragmas, and runs pending migrations.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	log := logging.FromContext(ctx)

	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), storeDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pool parameters must be set before any queries run.
	configurePool(db)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("settings database opened")
	return &SQLiteStore{db: db}, nil
}

// applyPragmas configures SQLite for this workload.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",   // Write-Ahead Logging for concurrent access
		"PRAGMA synchronous = NORMAL", // Safe in WAL mode
		"PRAGMA temp_store = MEMORY",  // Temporary tables in RAM
		"PRAGMA busy_timeout = 5000",  // Wait 5 seconds on lock contention
		"PRAGMA foreign_keys = ON",    // Enable referential integrity
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	return nil
}

// configurePool limits connections; SQLite is single-writer.
func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
}

func (s *SQLiteStore) get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

func (s *SQLiteStore) put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Settings returns the sanitized record, or defaults when none is stored.
func (s *SQLiteStore) Settings(ctx context.Context) (*settings.Settings, error) {
	raw, found, err := s.get(ctx, KeySettings)
	if err != nil {
		return nil, err
	}
	if !found {
		return settings.Defaults(), nil
	}
	return decodeRecord(raw), nil
}

// SaveSettings validates, quota-checks, and replaces the stored record.
func (s *SQLiteStore) SaveSettings(ctx context.Context, in *settings.Settings) error {
	validated := settings.ValidateSettings(in, settings.Defaults())
	if !settings.FitsInSyncQuota(validated) {
		return ErrQuotaExceeded
	}
	record, err := json.Marshal(validated)
	if err != nil {
		return fmt.Errorf("failed to serialize settings record: %w", err)
	}

	s.mu.Lock()
	old, err := s.Settings(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if recordsEqual(old, validated) {
		s.mu.Unlock()
		return nil
	}
	if err := s.put(ctx, KeySettings, record); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.hub.publish(Change{Key: KeySettings, OldValue: old, NewValue: validated.Clone()})
	return nil
}

// Enabled reports the opt-in flag; false until the user enables styling.
func (s *SQLiteStore) Enabled(ctx context.Context) (bool, error) {
	raw, found, err := s.get(ctx, KeyEnabled)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	var enabled bool
	if err := json.Unmarshal(raw, &enabled); err != nil {
		logging.Warn(fmt.Sprintf("stored enabled flag unreadable, treating as off: %v", err))
		return false, nil
	}
	return enabled, nil
}

// SetEnabled flips the opt-in flag.
func (s *SQLiteStore) SetEnabled(ctx context.Context, enabled bool) error {
	value, err := json.Marshal(enabled)
	if err != nil {
		return fmt.Errorf("failed to serialize enabled flag: %w", err)
	}

	s.mu.Lock()
	old, err := s.Enabled(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if old == enabled {
		s.mu.Unlock()
		return nil
	}
	if err := s.put(ctx, KeyEnabled, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.hub.publish(Change{Key: KeyEnabled, OldValue: old, NewValue: enabled})
	return nil
}

// Subscribe registers a change listener; the returned function removes it.
func (s *SQLiteStore) Subscribe(fn func(Change)) func() {
	return s.hub.subscribe(fn)
}

// Close closes the database connection gracefully.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
