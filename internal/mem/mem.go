package mem

import "runtime"

// Usage is a point-in-time view of process memory.
type Usage struct {
	HeapAlloc uint64 // bytes of live heap objects
	HeapSys   uint64 // bytes of heap obtained from the OS
	PeakRSS   int64  // maximum resident set size, 0 when unavailable
}

// Read samples the Go heap and the peak resident set size.
func Read() Usage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	rss, _ := PeakRSS()
	return Usage{HeapAlloc: ms.HeapAlloc, HeapSys: ms.HeapSys, PeakRSS: rss}
}
