//go:build !windows

package mem

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PeakRSS returns the maximum resident set size of the process in bytes.
func PeakRSS() (int64, bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, false
	}
	// Darwin reports bytes, Linux and the BSDs report KiB.
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		return int64(ru.Maxrss), true
	}
	return int64(ru.Maxrss) * 1024, true
}
