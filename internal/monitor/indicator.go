package monitor

import "github.com/mxnstrexgl/cyberdark/internal/logging"

// Indicator is the warning surface. Implementations must tolerate repeated
// Show calls without stacking anything; there is one indicator, reused.
type Indicator interface {
	Show(message string)
	Hide()
}

// logIndicator routes warnings to the log. Hide is a no-op since log lines
// have nothing to tear down.
type logIndicator struct{}

// NewLogIndicator returns the default log-backed indicator.
func NewLogIndicator() Indicator {
	return logIndicator{}
}

func (logIndicator) Show(message string) {
	logging.Warn(message)
}

func (logIndicator) Hide() {}
