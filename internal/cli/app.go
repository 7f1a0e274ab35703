// Package cli provides CLI commands using Bubble Tea TUI.
package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mxnstrexgl/cyberdark/internal/background"
	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
	"github.com/mxnstrexgl/cyberdark/internal/config"
	"github.com/mxnstrexgl/cyberdark/internal/logging"
	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/store"
)

// BuildInfo carries version details injected at link time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// App holds CLI dependencies. Commands go through the daemon's control API
// when one is running and fall back to the settings store directly when not,
// so every command works with or without a daemon.
type App struct {
	Config    *config.Config
	Theme     *styles.Theme
	BuildInfo BuildInfo
	Daemon    *background.Client

	mu  sync.Mutex
	st  store.Store
	ctx context.Context
}

// NewApp creates a new CLI application with all dependencies.
func NewApp() (*App, error) {
	cfg := loadConfig()

	logLevel := cfg.Logging.Level
	if envLevel := os.Getenv("CYBERDARK_LOG_LEVEL"); envLevel != "" {
		logLevel = envLevel
	}
	logger := logging.New(logging.Config{
		Level:      logging.ParseLevel(logLevel),
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
	})
	logging.Setup(logger)
	ctx := logging.WithContext(context.Background(), logger)

	return &App{
		Config: cfg,
		Theme:  styles.NewTheme(),
		Daemon: background.NewClient(cfg.API.ListenAddr),
		ctx:    ctx,
	}, nil
}

// Close releases all resources.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.st != nil {
		err := a.st.Close()
		a.st = nil
		return err
	}
	return nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Store lazily opens the configured settings store for direct access.
func (a *App) Store(ctx context.Context) (store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.st != nil {
		return a.st, nil
	}

	var (
		st  store.Store
		err error
	)
	switch a.Config.Store.Backend {
	case config.BackendSQLite:
		st, err = store.OpenSQLite(ctx, a.Config.Store.Path)
	default:
		st, err = store.OpenFile(ctx, a.Config.Store.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	a.st = st
	return st, nil
}

// Settings returns the current sanitized record.
func (a *App) Settings(ctx context.Context) (*settings.Settings, error) {
	if a.Daemon.Healthy(ctx) {
		return a.Daemon.Settings(ctx)
	}
	st, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	return st.Settings(ctx)
}

// SaveSettings replaces the record and returns what was actually stored
// after sanitization.
func (a *App) SaveSettings(ctx context.Context, record *settings.Settings) (*settings.Settings, error) {
	if a.Daemon.Healthy(ctx) {
		return a.Daemon.SaveSettings(ctx, record)
	}
	st, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.SaveSettings(ctx, record); err != nil {
		return nil, err
	}
	return st.Settings(ctx)
}

// Enabled reads the master switch.
func (a *App) Enabled(ctx context.Context) (bool, error) {
	if a.Daemon.Healthy(ctx) {
		return a.Daemon.Enabled(ctx)
	}
	st, err := a.Store(ctx)
	if err != nil {
		return false, err
	}
	return st.Enabled(ctx)
}

// SetEnabled flips the master switch.
func (a *App) SetEnabled(ctx context.Context, enabled bool) error {
	if a.Daemon.Healthy(ctx) {
		return a.Daemon.SetEnabled(ctx, enabled)
	}
	st, err := a.Store(ctx)
	if err != nil {
		return err
	}
	return st.SetEnabled(ctx, enabled)
}

// Export produces the signed settings envelope.
func (a *App) Export(ctx context.Context) ([]byte, error) {
	if a.Daemon.Healthy(ctx) {
		return a.Daemon.Export(ctx)
	}
	st, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	record, err := st.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.Export(record)
}

// Import decodes a raw or signed settings document, stores it, and returns
// the sanitized record.
func (a *App) Import(ctx context.Context, raw []byte) (*settings.Settings, error) {
	if a.Daemon.Healthy(ctx) {
		return a.Daemon.Import(ctx, raw)
	}
	record, err := settings.DecodeImport(raw)
	if err != nil {
		return nil, err
	}
	st, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.SaveSettings(ctx, record); err != nil {
		return nil, err
	}
	return st.Settings(ctx)
}

// loadConfig loads configuration from standard locations.
func loadConfig() *config.Config {
	mgr, err := config.NewManager()
	if err == nil {
		if err := mgr.Load(); err == nil {
			return mgr.Get()
		}
	}

	// Fall back to defaults when the config file is unusable.
	cfg := config.DefaultConfig()
	if path, err := config.DefaultStorePath(cfg.Store.Backend); err == nil {
		cfg.Store.Path = path
	}
	return cfg
}
