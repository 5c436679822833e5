// Package passengerlist provides the baseline passenger index: a singly
// linked list kept sorted by passenger id.
package passengerlist

import (
	"iter"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/internal/arena"
	"github.com/hupe1980/skyindex/model"
)

// Compile-time check to ensure List satisfies the index contract.
var _ index.PassengerIndex = (*List)(nil)

// Options contains configuration options for the list.
type Options struct {
	// MemoryAcquirer bounds node memory. Nil means unlimited.
	MemoryAcquirer index.MemoryAcquirer

	// ChunkSlots is the number of nodes allocated per arena chunk.
	ChunkSlots int
}

// DefaultOptions contains the default configuration options for the list.
var DefaultOptions = Options{
	ChunkSlots: arena.DefaultChunkSlots,
}

type node struct {
	passenger model.Passenger
	next      arena.Ref
}

// List is a sorted singly linked list of passengers.
type List struct {
	nodes  *arena.Arena[node]
	head   arena.Ref
	n      int
	closed bool
}

// New creates an empty list.
func New(optFns ...func(o *Options)) *List {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	arenaOpts := []arena.Option{arena.WithChunkSlots(opts.ChunkSlots)}
	if opts.MemoryAcquirer != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(opts.MemoryAcquirer))
	}
	return &List{nodes: arena.New[node](arenaOpts...)}
}

// Insert adds p at its sorted position, or replaces the passenger with the same id.
func (l *List) Insert(p model.Passenger) error {
	if l.closed {
		return index.ErrClosed
	}

	prev, cur := arena.Nil, l.head
	for !cur.IsNil() {
		n := l.nodes.Get(cur)
		if n.passenger.ID == p.ID {
			n.passenger = p
			return nil
		}
		if n.passenger.ID > p.ID {
			break
		}
		prev, cur = cur, n.next
	}

	ref, err := l.nodes.Alloc(node{passenger: p, next: cur})
	if err != nil {
		return index.WrapArenaError("passenger node", err)
	}
	if prev.IsNil() {
		l.head = ref
	} else {
		l.nodes.Get(prev).next = ref
	}
	l.n++
	return nil
}

// Find returns the passenger with the given id.
func (l *List) Find(id int32) (model.Passenger, bool) {
	for cur := l.head; !cur.IsNil(); {
		n := l.nodes.Get(cur)
		if n.passenger.ID == id {
			return n.passenger, true
		}
		if n.passenger.ID > id {
			break
		}
		cur = n.next
	}
	return model.Passenger{}, false
}

// FindByName returns the lowest-id passenger whose name contains substr, ignoring case.
func (l *List) FindByName(substr string) (model.Passenger, bool) {
	for p := range l.All() {
		if index.ContainsFold(p.Name, substr) {
			return p, true
		}
	}
	return model.Passenger{}, false
}

// SearchByName returns every passenger whose name contains substr, in id order.
func (l *List) SearchByName(substr string) []model.Passenger {
	var out []model.Passenger
	for p := range l.All() {
		if index.ContainsFold(p.Name, substr) {
			out = append(out, p)
		}
	}
	return out
}

// All yields passengers in ascending id order.
func (l *List) All() iter.Seq[model.Passenger] {
	return func(yield func(model.Passenger) bool) {
		for cur := l.head; !cur.IsNil(); {
			n := l.nodes.Get(cur)
			if !yield(n.passenger) {
				return
			}
			cur = n.next
		}
	}
}

// Len returns the number of passengers.
func (l *List) Len() int { return l.n }

// NodeStats returns node allocation counters.
func (l *List) NodeStats() index.NodeStats { return index.NodeStatsOf(l.nodes.Stats()) }

// Close releases every node. Calling Close again is a no-op.
func (l *List) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	var firstErr error
	for cur := l.head; !cur.IsNil(); {
		next := l.nodes.Get(cur).next
		if err := l.nodes.Free(cur); err != nil && firstErr == nil {
			firstErr = err
		}
		cur = next
	}
	l.head = arena.Nil
	l.n = 0
	if firstErr != nil {
		return firstErr
	}
	if live := l.nodes.Stats().Live; live != 0 {
		return &index.LeakError{Index: "passengerlist", Live: live}
	}
	l.nodes.Release()
	return nil
}
