package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
)

const (
	storeDirPerm  = 0o750
	storeFilePerm = 0o600
)

// fileDocument is the on-disk shape: the two canonical keys in one file.
type fileDocument struct {
	Enabled  bool            `json:"enabledFlag"`
	Settings json.RawMessage `json:"settingsRecord"`
}

// FileStore persists the settings record in one JSON file and watches it
// with fsnotify, so edits made by other processes (or by hand) raise the
// same change notifications as API writes.
type FileStore struct {
	path      string
	hub       hub
	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once

	mu             sync.Mutex
	enabled        bool
	current        *settings.Settings
	skipNextReload bool
}

// OpenFile loads (or creates) the store file at path and starts watching it.
func OpenFile(ctx context.Context, path string) (*FileStore, error) {
	log := logging.FromContext(ctx)

	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), storeDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	fs := &FileStore{
		path: path,
		done: make(chan struct{}),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: dark mode ships disabled until the user opts in.
		fs.enabled = false
		fs.current = settings.Defaults()
		if err := fs.persistLocked(); err != nil {
			return nil, fmt.Errorf("failed to write initial store file: %w", err)
		}
		log.Info().Str("path", path).Msg("created settings store with defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	default:
		var doc fileDocument
		if jsonErr := json.Unmarshal(data, &doc); jsonErr != nil {
			return nil, fmt.Errorf("store file is not valid JSON: %w", jsonErr)
		}
		fs.enabled = doc.Enabled
		fs.current = decodeRecord(doc.Settings)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create store watcher: %w", err)
	}
	// Watch the directory, not the file: atomic replaces swap the inode.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch store directory: %w", err)
	}
	fs.watcher = watcher
	go fs.watchLoop()

	log.Debug().Str("path", path).Msg("settings store opened")
	return fs, nil
}

func (fs *FileStore) watchLoop() {
	for {
		select {
		case <-fs.done:
			return
		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(fs.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fs.reload()
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn(fmt.Sprintf("settings store watcher error: %v", err))
		}
	}
}

// reload re-reads the file after an external change and publishes the keys
// that actually differ. Writes made through this process are skipped: the
// in-memory state is already correct and the notification was published by
// the writer.
func (fs *FileStore) reload() {
	fs.mu.Lock()
	if fs.skipNextReload {
		fs.skipNextReload = false
		fs.mu.Unlock()
		return
	}

	data, err := os.ReadFile(fs.path)
	if err != nil {
		fs.mu.Unlock()
		logging.Warn(fmt.Sprintf("failed to re-read settings store: %v", err))
		return
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		fs.mu.Unlock()
		logging.Warn(fmt.Sprintf("ignoring malformed settings store edit: %v", err))
		return
	}

	newSettings := decodeRecord(doc.Settings)
	oldEnabled, oldSettings := fs.enabled, fs.current
	fs.enabled = doc.Enabled
	fs.current = newSettings

	var changes []Change
	if oldEnabled != doc.Enabled {
		changes = append(changes, Change{Key: KeyEnabled, OldValue: oldEnabled, NewValue: doc.Enabled})
	}
	if !recordsEqual(oldSettings, newSettings) {
		changes = append(changes, Change{Key: KeySettings, OldValue: oldSettings, NewValue: newSettings.Clone()})
	}
	fs.mu.Unlock()

	for _, c := range changes {
		fs.hub.publish(c)
	}
}

// Settings returns a sanitized copy of the current record.
func (fs *FileStore) Settings(ctx context.Context) (*settings.Settings, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.current.Clone(), nil
}

// SaveSettings validates, quota-checks, and replaces the stored record.
func (fs *FileStore) SaveSettings(ctx context.Context, in *settings.Settings) error {
	validated := settings.ValidateSettings(in, settings.Defaults())
	if !settings.FitsInSyncQuota(validated) {
		return ErrQuotaExceeded
	}

	fs.mu.Lock()
	if recordsEqual(fs.current, validated) {
		fs.mu.Unlock()
		return nil
	}
	old := fs.current
	fs.current = validated
	fs.skipNextReload = true
	if err := fs.persistLocked(); err != nil {
		fs.current = old
		fs.skipNextReload = false
		fs.mu.Unlock()
		return err
	}
	fs.mu.Unlock()

	fs.hub.publish(Change{Key: KeySettings, OldValue: old, NewValue: validated.Clone()})
	return nil
}

// Enabled reports the opt-in flag; false until the user enables styling.
func (fs *FileStore) Enabled(ctx context.Context) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.enabled, nil
}

// SetEnabled flips the opt-in flag.
func (fs *FileStore) SetEnabled(ctx context.Context, enabled bool) error {
	fs.mu.Lock()
	if fs.enabled == enabled {
		fs.mu.Unlock()
		return nil
	}
	old := fs.enabled
	fs.enabled = enabled
	fs.skipNextReload = true
	if err := fs.persistLocked(); err != nil {
		fs.enabled = old
		fs.skipNextReload = false
		fs.mu.Unlock()
		return err
	}
	fs.mu.Unlock()

	fs.hub.publish(Change{Key: KeyEnabled, OldValue: old, NewValue: enabled})
	return nil
}

// Subscribe registers a change listener; the returned function removes it.
func (fs *FileStore) Subscribe(fn func(Change)) func() {
	return fs.hub.subscribe(fn)
}

// Close stops the watcher. The file remains valid for the next open.
func (fs *FileStore) Close() error {
	var err error
	fs.closeOnce.Do(func() {
		close(fs.done)
		if fs.watcher != nil {
			err = fs.watcher.Close()
		}
	})
	return err
}

// persistLocked writes the document atomically. Callers hold fs.mu.
func (fs *FileStore) persistLocked() error {
	record, err := json.Marshal(fs.current)
	if err != nil {
		return fmt.Errorf("failed to serialize settings record: %w", err)
	}
	doc := fileDocument{Enabled: fs.enabled, Settings: record}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize store document: %w", err)
	}
	data = append(data, '\n')

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, storeFilePerm); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// decodeRecord leniently decodes a stored record, falling back to defaults
// when the bytes are unreadable. Reads never fail on bad data, they heal.
func decodeRecord(raw json.RawMessage) *settings.Settings {
	if len(raw) == 0 {
		return settings.Defaults()
	}
	s, err := settings.DecodeImport(raw)
	if err != nil {
		logging.Warn(fmt.Sprintf("stored settings record unreadable, using defaults: %v", err))
		return settings.Defaults()
	}
	return s
}

func recordsEqual(a, b *settings.Settings) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
