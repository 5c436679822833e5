// Package skyindex maintains flights, passengers and seat reservations under
// two competing index strategies and compares them query by query.
//
// # Quick Start
//
//	ds := dataset.Generate(dataset.Medium, 42)
//	orch, err := skyindex.Build(ctx, ds, skyindex.WithValidation(capacity.AtMost))
//	if err != nil {
//	    return err
//	}
//	defer orch.Close()
//
//	c, _ := orch.Compare(ctx, skyindex.PassengersOnFlight(1000))
//	fmt.Println(c.Agree, c.Baseline.Duration, c.Optimized.Duration)
//
// # Prototypes
//
//	┌────────────────┬────────────────────┬──────────────────────────┐
//	│                │ Baseline           │ Optimized                │
//	├────────────────┼────────────────────┼──────────────────────────┤
//	│ Flights        │ unbalanced BST     │ AVL tree                 │
//	│ Passengers     │ sorted linked list │ chained hash, prime size │
//	│ Reservations   │ dynamic array      │ composite-key BST        │
//	└────────────────┴────────────────────┴──────────────────────────┘
//
// Both engines are built from the same record slices and hold no shared
// state. Query results are returned in the same order by both, so a
// Comparison can check them for equality.
//
// # Capacity
//
// With WithValidation, every reservation passes capacity admission: a flight
// never holds more distinct passengers than seats, while a passenger already
// on the flight may book additional seats. Engine.ValidateCapacity reports
// Valid, Under or Over per flight; Over is always an error.
//
// # Memory
//
// All nodes live in per-index arenas. WithResourceController puts them under
// a shared memory budget. Orchestrator.Close frees every node exactly once
// and reports a leak as an error.
//
// # Concurrency
//
// Engines are single-threaded. Build them, then query them; do not share an
// Orchestrator across goroutines without external synchronization.
package skyindex
