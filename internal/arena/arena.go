package arena

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"unsafe"
)

// MemoryAcquirer reserves memory without blocking.
// *resource.Controller satisfies it.
type MemoryAcquirer interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

var (
	// ErrAllocationFailed is returned when the memory budget refuses a new chunk.
	ErrAllocationFailed = errors.New("arena: allocation failed")
	// ErrMaxSlotsExceeded is returned when the handle space is exhausted.
	ErrMaxSlotsExceeded = errors.New("arena: max slots exceeded")
	// ErrInvalidRef is returned for Nil or out-of-range refs.
	ErrInvalidRef = errors.New("arena: invalid ref")
	// ErrDoubleFree is returned when a ref is freed twice.
	ErrDoubleFree = errors.New("arena: double free")
)

const (
	// DefaultChunkSlots is the default number of slots per chunk.
	DefaultChunkSlots = 4096
	// MaxSlots bounds the handle space; Ref 0 is reserved.
	MaxSlots = math.MaxUint32 - 1
)

// Ref is a handle to a slot. The zero value is Nil.
type Ref uint32

// Nil is the empty reference.
const Nil Ref = 0

// IsNil reports whether r is the empty reference.
func (r Ref) IsNil() bool { return r == Nil }

// Stats reports allocation counters.
type Stats struct {
	Allocs        uint64 // Historical: total successful allocations
	Frees         uint64 // Historical: total successful frees
	Live          uint64 // Current: allocated and not yet freed
	Chunks        uint64 // Current: chunks held
	BytesReserved int64  // Current: bytes reserved from the acquirer
}

type slot[T any] struct {
	value T
	live  bool
}

// Arena is a slab of T values addressed by Ref.
type Arena[T any] struct {
	chunks    [][]slot[T]
	chunkBits uint
	chunkMask uint32
	next      uint32 // next never-used slot index
	free      []Ref
	slotBytes int64
	acquirer  MemoryAcquirer
	stats     Stats
}

type config struct {
	chunkSlots int
	acquirer   MemoryAcquirer
}

// Option configures an Arena.
type Option func(*config)

// WithChunkSlots sets the number of slots per chunk (rounded up to a power of two).
func WithChunkSlots(n int) Option {
	return func(c *config) {
		c.chunkSlots = n
	}
}

// WithMemoryAcquirer sets the memory budget for chunk reservations.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(c *config) {
		c.acquirer = acquirer
	}
}

// New creates an empty Arena. No memory is reserved until the first Alloc.
func New[T any](opts ...Option) *Arena[T] {
	cfg := config{chunkSlots: DefaultChunkSlots}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.chunkSlots <= 0 {
		cfg.chunkSlots = DefaultChunkSlots
	}

	// Round up to a power of two so slot lookup is a shift and a mask.
	chunkBits := uint(bits.Len(uint(cfg.chunkSlots - 1))) //nolint:gosec // chunkSlots > 0

	var s slot[T]
	return &Arena[T]{
		chunkBits: chunkBits,
		chunkMask: (1 << chunkBits) - 1,
		slotBytes: int64(unsafe.Sizeof(s)),
		acquirer:  cfg.acquirer,
	}
}

// Alloc stores v in a free slot and returns its handle.
func (a *Arena[T]) Alloc(v T) (Ref, error) {
	if n := len(a.free); n > 0 {
		r := a.free[n-1]
		a.free = a.free[:n-1]
		s := a.slot(r)
		s.value = v
		s.live = true
		a.stats.Allocs++
		a.stats.Live++
		return r, nil
	}

	if a.next >= MaxSlots {
		return Nil, ErrMaxSlotsExceeded
	}

	if int(a.next>>a.chunkBits) >= len(a.chunks) {
		if err := a.grow(); err != nil {
			return Nil, err
		}
	}

	idx := a.next
	a.next++
	r := Ref(idx + 1)
	s := a.slot(r)
	s.value = v
	s.live = true
	a.stats.Allocs++
	a.stats.Live++
	return r, nil
}

// Get returns a pointer to the value behind r, or nil if r is not live.
// The pointer stays valid until r is freed or the arena is released.
func (a *Arena[T]) Get(r Ref) *T {
	if !a.valid(r) {
		return nil
	}
	s := a.slot(r)
	if !s.live {
		return nil
	}
	return &s.value
}

// Free returns the slot behind r to the free list.
func (a *Arena[T]) Free(r Ref) error {
	if !a.valid(r) {
		return fmt.Errorf("%w: %d", ErrInvalidRef, r)
	}
	s := a.slot(r)
	if !s.live {
		return fmt.Errorf("%w: %d", ErrDoubleFree, r)
	}
	var zero T
	s.value = zero
	s.live = false
	a.free = append(a.free, r)
	a.stats.Frees++
	a.stats.Live--
	return nil
}

// Stats returns a snapshot of the allocation counters.
func (a *Arena[T]) Stats() Stats {
	return a.stats
}

// Release drops every chunk and returns reserved memory to the acquirer.
// Counters other than Chunks and BytesReserved are kept so callers can
// still compare Allocs with Frees afterwards.
func (a *Arena[T]) Release() {
	if a.acquirer != nil && a.stats.BytesReserved > 0 {
		a.acquirer.ReleaseMemory(a.stats.BytesReserved)
	}
	a.chunks = nil
	a.free = nil
	a.next = 0
	a.stats.Chunks = 0
	a.stats.BytesReserved = 0
}

func (a *Arena[T]) grow() error {
	slots := 1 << a.chunkBits
	bytes := a.slotBytes * int64(slots)
	if a.acquirer != nil && !a.acquirer.TryAcquireMemory(bytes) {
		return fmt.Errorf("%w: chunk of %d bytes", ErrAllocationFailed, bytes)
	}
	a.chunks = append(a.chunks, make([]slot[T], slots))
	a.stats.Chunks++
	a.stats.BytesReserved += bytes
	return nil
}

func (a *Arena[T]) valid(r Ref) bool {
	return r != Nil && uint32(r) <= a.next
}

func (a *Arena[T]) slot(r Ref) *slot[T] {
	idx := uint32(r) - 1
	return &a.chunks[idx>>a.chunkBits][idx&a.chunkMask]
}
