// Package resource governs the memory, worker and IO budgets shared by the
// indexes of one process.
//
//	┌──────────────────────────────────────────────────────┐
//	│                     Controller                       │
//	├──────────────────┬─────────────────┬─────────────────┤
//	│  Memory budget   │  Loader slots   │  IO limiter     │
//	│  (fail-fast)     │  (semaphore)    │  (token bucket) │
//	├──────────────────┼─────────────────┼─────────────────┤
//	│  TryAcquireMemory│  AcquireWorker  │  AcquireIO      │
//	│  ReleaseMemory   │  ReleaseWorker  │  NewReader      │
//	└──────────────────┴─────────────────┴─────────────────┘
//
// Index arenas reserve node chunks with TryAcquireMemory. A refusal becomes an
// allocation failure at the index level, which callers may handle by retrying
// with a smaller structure:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 256 << 20})
//	orch, err := skyindex.Build(ctx, ds, skyindex.WithResourceController(rc))
//
// All methods are safe for concurrent use and treat a nil *Controller as
// "no limits".
package resource
