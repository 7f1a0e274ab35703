// Package config provides validation utilities for configuration values.
package config

import (
	"fmt"
	"net"
	"strings"
)

// validateConfig performs comprehensive validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	// Validate store backend
	switch config.Store.Backend {
	case BackendFile, BackendSQLite:
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("store.backend must be one of: file, sqlite (got: %s)", config.Store.Backend))
	}

	// Validate API listen address
	if config.API.ListenAddr == "" {
		validationErrors = append(validationErrors, "api.listen_addr cannot be empty")
	} else if _, _, err := net.SplitHostPort(config.API.ListenAddr); err != nil {
		validationErrors = append(validationErrors, fmt.Sprintf("api.listen_addr must be a host:port pair (got: %s)", config.API.ListenAddr))
	}

	// Validate logging values
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[config.Logging.Level] {
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level must be one of: trace, debug, info, warn, error (got: %s)", config.Logging.Level))
	}

	switch config.Logging.Format {
	case "console", "json":
		// Valid
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.format must be one of: console, json (got: %s)", config.Logging.Format))
	}

	if config.Logging.MaxSizeMB < 0 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be non-negative")
	}
	if config.Logging.MaxBackups < 0 {
		validationErrors = append(validationErrors, "logging.max_backups must be non-negative")
	}
	if config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_age_days must be non-negative")
	}

	// Validate monitor thresholds
	if config.Monitor.MemoryLimitMiB < 0 {
		validationErrors = append(validationErrors, "monitor.memory_limit_mib must be non-negative")
	}
	if config.Monitor.LongTaskMillis < 0 {
		validationErrors = append(validationErrors, "monitor.long_task_millis must be non-negative")
	}

	// If there are validation errors, return them
	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}
