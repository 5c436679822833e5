// Package passengerhash provides the optimized passenger index: a chained
// hash table keyed by passenger id.
//
// # Layout
//
// Each bucket holds one entry inline plus an overflow chain of arena nodes.
// New colliding entries are appended at the tail of the chain.
//
// # Sizing
//
// The bucket count is always prime (see TableSize). Before a new id is
// inserted, the table grows to TableSize(2(n+1)), where n is the current
// count, if the insert would push the
// load above LoadFactor. Growth is all-or-nothing: if memory for the new
// table cannot be reserved the insert fails and the table is unchanged.
package passengerhash

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"unsafe"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/internal/arena"
	"github.com/hupe1980/skyindex/model"
)

// Compile-time check to ensure Table satisfies the index contract.
var _ index.PassengerIndex = (*Table)(nil)

// MaxTableSize is the largest bucket count a table may allocate.
const MaxTableSize = 1 << 28

// Options contains configuration options for the table.
type Options struct {
	// MemoryAcquirer bounds bucket and chain memory. Nil means unlimited.
	MemoryAcquirer index.MemoryAcquirer

	// ChunkSlots is the number of chain nodes allocated per arena chunk.
	ChunkSlots int

	// DisableGrowth keeps the initial bucket count regardless of load.
	DisableGrowth bool
}

// DefaultOptions contains the default configuration options for the table.
var DefaultOptions = Options{
	ChunkSlots: 1024,
}

type bucket struct {
	entry model.Passenger
	used  bool
	chain arena.Ref
}

type node struct {
	passenger model.Passenger
	next      arena.Ref
}

var bucketBytes = int64(unsafe.Sizeof(bucket{}))

// ChainStats describes how entries are spread across buckets.
type ChainStats struct {
	Buckets      int
	UsedBuckets  int
	LongestChain int // entries in the fullest bucket, inline included
	Resizes      int
}

// Table is a chained hash table of passengers.
type Table struct {
	opts     Options
	buckets  []bucket
	count    int
	nodes    *arena.Arena[node]
	reserved int64
	resizes  int
	closed   bool
}

// New creates a table sized for desired entries.
// It returns an *index.AllocationError if the bucket array cannot be reserved.
func New(desired int, optFns ...func(o *Options)) (*Table, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	arenaOpts := []arena.Option{arena.WithChunkSlots(opts.ChunkSlots)}
	if opts.MemoryAcquirer != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(opts.MemoryAcquirer))
	}

	t := &Table{
		opts:  opts,
		nodes: arena.New[node](arenaOpts...),
	}

	size := TableSize(desired)
	buckets, err := t.reserve(size)
	if err != nil {
		return nil, err
	}
	t.buckets = buckets
	t.reserved = int64(size) * bucketBytes
	return t, nil
}

// Insert adds p, or replaces the stored passenger with the same id.
func (t *Table) Insert(p model.Passenger) error {
	if t.closed {
		return index.ErrClosed
	}

	if stored := t.lookup(p.ID); stored != nil {
		*stored = p
		return nil
	}

	if !t.opts.DisableGrowth && float64(t.count+1) > float64(len(t.buckets))*LoadFactor(t.count+1) {
		if err := t.grow(TableSize(2 * (t.count + 1))); err != nil {
			return err
		}
	}

	if _, err := t.place(t.buckets, p); err != nil {
		return err
	}
	t.count++
	return nil
}

// Find returns the passenger with the given id.
func (t *Table) Find(id int32) (model.Passenger, bool) {
	if stored := t.lookup(id); stored != nil {
		return *stored, true
	}
	return model.Passenger{}, false
}

// FindByName returns the lowest-id passenger whose name contains substr, ignoring case.
func (t *Table) FindByName(substr string) (model.Passenger, bool) {
	var (
		best  model.Passenger
		found bool
	)
	for p := range t.All() {
		if index.ContainsFold(p.Name, substr) && (!found || p.ID < best.ID) {
			best, found = p, true
		}
	}
	return best, found
}

// SearchByName returns every passenger whose name contains substr, in id order.
func (t *Table) SearchByName(substr string) []model.Passenger {
	var out []model.Passenger
	for p := range t.All() {
		if index.ContainsFold(p.Name, substr) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, byID)
	return out
}

// All yields passengers in bucket order.
func (t *Table) All() iter.Seq[model.Passenger] {
	return func(yield func(model.Passenger) bool) {
		for i := range t.buckets {
			b := &t.buckets[i]
			if !b.used {
				continue
			}
			if !yield(b.entry) {
				return
			}
			for cur := b.chain; !cur.IsNil(); {
				n := t.nodes.Get(cur)
				if !yield(n.passenger) {
					return
				}
				cur = n.next
			}
		}
	}
}

// Sorted returns every passenger in ascending id order.
func (t *Table) Sorted() []model.Passenger {
	out := slices.Collect(t.All())
	slices.SortFunc(out, byID)
	return out
}

// Len returns the number of distinct passengers.
func (t *Table) Len() int { return t.count }

// Size returns the number of buckets.
func (t *Table) Size() int { return len(t.buckets) }

// Load returns the current entries-per-bucket ratio.
func (t *Table) Load() float64 {
	if len(t.buckets) == 0 {
		return 0
	}
	return float64(t.count) / float64(len(t.buckets))
}

// ChainStats reports bucket occupancy.
func (t *Table) ChainStats() ChainStats {
	s := ChainStats{Buckets: len(t.buckets), Resizes: t.resizes}
	for i := range t.buckets {
		b := &t.buckets[i]
		if !b.used {
			continue
		}
		s.UsedBuckets++
		length := 1
		for cur := b.chain; !cur.IsNil(); cur = t.nodes.Get(cur).next {
			length++
		}
		s.LongestChain = max(s.LongestChain, length)
	}
	return s
}

// NodeStats returns chain node allocation counters.
func (t *Table) NodeStats() index.NodeStats { return index.NodeStatsOf(t.nodes.Stats()) }

// Validate checks bucket placement, id uniqueness, the entry count and,
// unless growth is disabled, the load bound.
func (t *Table) Validate() error {
	seen := make(map[int32]struct{}, t.count)
	for i := range t.buckets {
		b := &t.buckets[i]
		if !b.used {
			if !b.chain.IsNil() {
				return &index.InvariantError{Index: "passengerhash", Detail: fmt.Sprintf("bucket %d: chain without inline entry", i)}
			}
			continue
		}
		check := func(p model.Passenger) error {
			if got := slot(p.ID, len(t.buckets)); got != i {
				return &index.InvariantError{Index: "passengerhash", Detail: fmt.Sprintf("passenger %d in bucket %d, hashes to %d", p.ID, i, got)}
			}
			if _, dup := seen[p.ID]; dup {
				return &index.InvariantError{Index: "passengerhash", Detail: fmt.Sprintf("passenger %d stored twice", p.ID)}
			}
			seen[p.ID] = struct{}{}
			return nil
		}
		if err := check(b.entry); err != nil {
			return err
		}
		for cur := b.chain; !cur.IsNil(); {
			n := t.nodes.Get(cur)
			if err := check(n.passenger); err != nil {
				return err
			}
			cur = n.next
		}
	}

	if len(seen) != t.count {
		return &index.InvariantError{Index: "passengerhash", Detail: fmt.Sprintf("count %d, found %d entries", t.count, len(seen))}
	}
	if !t.opts.DisableGrowth && float64(t.count) > float64(len(t.buckets))*LoadFactor(t.count) {
		return &index.InvariantError{Index: "passengerhash", Detail: fmt.Sprintf("load %.3f above %.1f", t.Load(), LoadFactor(t.count))}
	}
	return nil
}

// Close releases every chain node and the bucket array.
// Calling Close again is a no-op.
func (t *Table) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	err := t.freeChains(t.buckets)
	t.buckets = nil
	t.count = 0
	t.release(t.reserved)
	t.reserved = 0
	if err != nil {
		return err
	}
	if live := t.nodes.Stats().Live; live != 0 {
		return &index.LeakError{Index: "passengerhash", Live: live}
	}
	t.nodes.Release()
	return nil
}

func (t *Table) lookup(id int32) *model.Passenger {
	if len(t.buckets) == 0 {
		return nil
	}
	b := &t.buckets[slot(id, len(t.buckets))]
	if !b.used {
		return nil
	}
	if b.entry.ID == id {
		return &b.entry
	}
	for cur := b.chain; !cur.IsNil(); {
		n := t.nodes.Get(cur)
		if n.passenger.ID == id {
			return &n.passenger
		}
		cur = n.next
	}
	return nil
}

// place stores p in buckets without checking for duplicates. It returns the
// chain node allocated for p, or arena.Nil if p went inline.
func (t *Table) place(buckets []bucket, p model.Passenger) (arena.Ref, error) {
	b := &buckets[slot(p.ID, len(buckets))]
	if !b.used {
		b.entry = p
		b.used = true
		return arena.Nil, nil
	}

	ref, err := t.nodes.Alloc(node{passenger: p})
	if err != nil {
		return arena.Nil, index.WrapArenaError("passenger chain node", err)
	}
	if b.chain.IsNil() {
		b.chain = ref
		return ref, nil
	}
	tail := t.nodes.Get(b.chain)
	for !tail.next.IsNil() {
		tail = t.nodes.Get(tail.next)
	}
	tail.next = ref
	return ref, nil
}

// grow rehashes into size buckets. On failure every partial allocation is
// rolled back and the current table is untouched.
func (t *Table) grow(size int) error {
	buckets, err := t.reserve(size)
	if err != nil {
		return err
	}
	newBytes := int64(size) * bucketBytes

	var fresh []arena.Ref
	rollback := func(cause error) error {
		for _, ref := range fresh {
			_ = t.nodes.Free(ref)
		}
		t.release(newBytes)
		return cause
	}

	for p := range t.All() {
		ref, err := t.place(buckets, p)
		if err != nil {
			return rollback(err)
		}
		if !ref.IsNil() {
			fresh = append(fresh, ref)
		}
	}

	old := t.buckets
	t.release(t.reserved)
	t.buckets = buckets
	t.reserved = newBytes
	t.resizes++
	return t.freeChains(old)
}

func (t *Table) reserve(size int) ([]bucket, error) {
	if size > MaxTableSize {
		return nil, index.NewAllocationError("hash buckets", int64(size), fmt.Errorf("exceeds max table size %d", MaxTableSize))
	}
	bytes := int64(size) * bucketBytes
	if t.opts.MemoryAcquirer != nil && !t.opts.MemoryAcquirer.TryAcquireMemory(bytes) {
		return nil, index.NewAllocationError("hash buckets", int64(size), nil)
	}
	return make([]bucket, size), nil
}

func (t *Table) release(bytes int64) {
	if t.opts.MemoryAcquirer != nil && bytes > 0 {
		t.opts.MemoryAcquirer.ReleaseMemory(bytes)
	}
}

func (t *Table) freeChains(buckets []bucket) error {
	var firstErr error
	for i := range buckets {
		for cur := buckets[i].chain; !cur.IsNil(); {
			next := t.nodes.Get(cur).next
			if err := t.nodes.Free(cur); err != nil && firstErr == nil {
				firstErr = err
			}
			cur = next
		}
	}
	return firstErr
}

// slot maps an id to a bucket index. Negative ids wrap into range.
func slot(id int32, size int) int {
	s := int64(size)
	return int(((int64(id) % s) + s) % s)
}

func byID(a, b model.Passenger) int { return cmp.Compare(a.ID, b.ID) }
