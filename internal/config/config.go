// Package config provides configuration management for cyberdark with Viper
// integration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mxnstrexgl/cyberdark/internal/logging"
)

// File permission constants
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// StoreBackend selects where the settings record lives.
type StoreBackend string

const (
	BackendFile   StoreBackend = "file"
	BackendSQLite StoreBackend = "sqlite"
)

// Config represents the complete configuration for cyberdark.
type Config struct {
	Store   StoreConfig   `mapstructure:"store" toml:"store" json:"store"`
	API     APIConfig     `mapstructure:"api" toml:"api" json:"api"`
	Logging LoggingConfig `mapstructure:"logging" toml:"logging" json:"logging"`
	Monitor MonitorConfig `mapstructure:"monitor" toml:"monitor" json:"monitor"`
}

// StoreConfig holds settings storage configuration.
type StoreConfig struct {
	Backend StoreBackend `mapstructure:"backend" toml:"backend" json:"backend" jsonschema:"enum=file,enum=sqlite"`
	// Path overrides the default store location. Empty means the XDG data
	// directory.
	Path string `mapstructure:"path" toml:"path" json:"path,omitempty"`
}

// APIConfig holds the daemon control API configuration.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr" toml:"listen_addr" json:"listen_addr"`
}

// LoggingConfig holds logging configuration. The file sink is only used
// by the daemon; one-shot commands log to stderr.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" json:"level"`
	Format string `mapstructure:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json"`

	FileEnabled bool `mapstructure:"file_enabled" toml:"file_enabled" json:"file_enabled"`
	// Dir overrides where daemon log files go. Empty means the XDG state
	// directory.
	Dir        string `mapstructure:"dir" toml:"dir" json:"dir,omitempty"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days" json:"max_age_days"`
	Compress   bool   `mapstructure:"compress" toml:"compress" json:"compress"`
}

// MonitorConfig holds resource monitor configuration.
type MonitorConfig struct {
	Enabled        bool `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	MemoryLimitMiB int  `mapstructure:"memory_limit_mib" toml:"memory_limit_mib" json:"memory_limit_mib"`
	LongTaskMillis int  `mapstructure:"long_task_millis" toml:"long_task_millis" json:"long_task_millis"`
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()
	v.SetConfigName("config")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("CYBERDARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"store.backend":            "STORE_BACKEND",
		"store.path":               "STORE_PATH",
		"api.listen_addr":          "API_LISTEN_ADDR",
		"logging.level":            "LOG_LEVEL",
		"logging.format":           "LOG_FORMAT",
		"logging.file_enabled":     "LOG_FILE_ENABLED",
		"logging.dir":              "LOG_DIR",
		"monitor.enabled":          "MONITOR_ENABLED",
		"monitor.memory_limit_mib": "MONITOR_MEMORY_LIMIT_MIB",
		"monitor.long_task_millis": "MONITOR_LONG_TASK_MILLIS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "CYBERDARK_"+env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if err := m.createDefaultConfig(); err != nil {
				return fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := m.unmarshalLocked()
	if err != nil {
		return err
	}
	m.config = config
	return nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	configCopy := *m.config
	return &configCopy
}

// Watch starts watching the config file for changes and reloads
// automatically.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(_ fsnotify.Event) {
		if err := m.reload(); err != nil {
			logging.Warn(fmt.Sprintf("Failed to reload config: %v", err))
			return
		}

		m.mu.RLock()
		config := m.config
		callbacks := make([]func(*Config), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, callback := range callbacks {
			callback(config)
		}
	})

	m.watching = true
	return nil
}

// OnConfigChange registers a callback run after every successful reload.
func (m *Manager) OnConfigChange(callback func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

func (m *Manager) reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.viper.ReadInConfig(); err != nil {
		return err
	}
	config, err := m.unmarshalLocked()
	if err != nil {
		return err
	}
	m.config = config
	return nil
}

// unmarshalLocked decodes, normalizes and validates the viper state.
func (m *Manager) unmarshalLocked() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch StoreBackend(strings.ToLower(string(config.Store.Backend))) {
	case BackendFile, "":
		config.Store.Backend = BackendFile
	case BackendSQLite:
		config.Store.Backend = BackendSQLite
	default:
		logging.Warn(fmt.Sprintf("Unknown store backend %q, using %q", config.Store.Backend, BackendFile))
		config.Store.Backend = BackendFile
	}

	if config.Store.Path == "" {
		path, err := DefaultStorePath(config.Store.Backend)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve store path: %w", err)
		}
		config.Store.Path = path
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("store.backend", string(defaults.Store.Backend))
	m.viper.SetDefault("store.path", defaults.Store.Path)
	m.viper.SetDefault("api.listen_addr", defaults.API.ListenAddr)
	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.file_enabled", defaults.Logging.FileEnabled)
	m.viper.SetDefault("logging.dir", defaults.Logging.Dir)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)
	m.viper.SetDefault("monitor.enabled", defaults.Monitor.Enabled)
	m.viper.SetDefault("monitor.memory_limit_mib", defaults.Monitor.MemoryLimitMiB)
	m.viper.SetDefault("monitor.long_task_millis", defaults.Monitor.LongTaskMillis)
}

// createDefaultConfig writes the default config file so users have
// something to edit.
func (m *Manager) createDefaultConfig() error {
	path, err := GetConfigFile()
	if err != nil {
		return err
	}
	if err := WriteConfigOrdered(DefaultConfig(), path); err != nil {
		return err
	}
	if err := GenerateSchemaFile(); err != nil {
		logging.Warn(fmt.Sprintf("Failed to write config schema: %v", err))
	}
	m.viper.SetConfigFile(path)
	return m.viper.ReadInConfig()
}
