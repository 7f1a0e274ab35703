package logging

import (
	"sync"

	"github.com/rs/zerolog"
)

var (
	globalMu     sync.RWMutex
	globalLogger zerolog.Logger
	globalSet    bool
)

// Setup installs the process-wide logger used by the package-level helpers.
func Setup(logger zerolog.Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
	globalSet = true
}

func global() zerolog.Logger {
	globalMu.RLock()
	if globalSet {
		l := globalLogger
		globalMu.RUnlock()
		return l
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if !globalSet {
		globalLogger = NewFromEnv()
		globalSet = true
	}
	return globalLogger
}

// Trace logs a pre-formatted message at trace level.
func Trace(msg string) {
	l := global()
	l.Trace().Msg(msg)
}

// Debug logs a pre-formatted message at debug level.
func Debug(msg string) {
	l := global()
	l.Debug().Msg(msg)
}

// Info logs a pre-formatted message at info level.
func Info(msg string) {
	l := global()
	l.Info().Msg(msg)
}

// Warn logs a pre-formatted message at warn level.
func Warn(msg string) {
	l := global()
	l.Warn().Msg(msg)
}

// Error logs a pre-formatted message at error level.
func Error(msg string) {
	l := global()
	l.Error().Msg(msg)
}
