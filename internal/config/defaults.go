// Package config provides default configuration values for cyberdark.
package config

// Default configuration constants
const (
	// Control API default bind address, localhost only
	defaultListenAddr = "127.0.0.1:8793"

	// Monitor defaults
	defaultMemoryLimitMiB = 1024 // 1 GiB
	defaultLongTaskMillis = 500

	// Daemon log rotation defaults
	defaultMaxLogSizeMB  = 10
	defaultMaxBackups    = 3
	defaultMaxLogAgeDays = 7
)

// DefaultConfig returns the default configuration values for cyberdark.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendFile,
		},
		API: APIConfig{
			ListenAddr: defaultListenAddr,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "console",
			FileEnabled: true,
			MaxSizeMB:   defaultMaxLogSizeMB,
			MaxBackups:  defaultMaxBackups,
			MaxAgeDays:  defaultMaxLogAgeDays,
			Compress:    true,
		},
		Monitor: MonitorConfig{
			Enabled:        true,
			MemoryLimitMiB: defaultMemoryLimitMiB,
			LongTaskMillis: defaultLongTaskMillis,
		},
	}
}
