//go:build linux || darwin

package monitor

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// residentBytes reads the process resident set size. Linux reports Maxrss
// in kilobytes, darwin in bytes.
func residentBytes() (uint64, bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, false
	}
	rss := uint64(ru.Maxrss)
	if runtime.GOOS == "linux" {
		rss *= 1024
	}
	return rss, true
}
