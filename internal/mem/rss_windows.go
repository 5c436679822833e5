//go:build windows

package mem

// PeakRSS is not available on Windows.
func PeakRSS() (int64, bool) {
	return 0, false
}
