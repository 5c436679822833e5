// Package arena provides a typed slab allocator for index nodes.
//
// Nodes live in fixed-size chunks and are addressed by Ref handles instead of
// pointers. Ref 0 is reserved as Nil so zero-valued links mean "no child".
//
// # Accounting
//
// Every Alloc and Free is counted. After an index releases all of its nodes,
// Stats().Live must be zero; anything else is a leak.
//
// # Memory Budget
//
// Chunk memory is reserved through an optional MemoryAcquirer before it is
// allocated. A refused reservation surfaces as ErrAllocationFailed and leaves
// the arena unchanged.
//
// # Safety
//
// Free returns errors instead of panicking on invalid or already-freed refs.
// The arena is not safe for concurrent use.
package arena
