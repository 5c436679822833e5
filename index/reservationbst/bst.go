// Package reservationbst provides the optimized reservation index: a binary
// search tree ordered by (FlightID, PassengerID, SeatNumber).
//
// Because FlightID is the most significant key component, all reservations
// of one flight form a contiguous in-order range. ByFlight exploits this by
// pruning subtrees that lie entirely before or after that range. Every
// traversal is iterative with an explicit stack.
package reservationbst

import (
	"iter"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/internal/arena"
	"github.com/hupe1980/skyindex/internal/tree"
	"github.com/hupe1980/skyindex/model"
)

// Compile-time check to ensure Tree satisfies the index contract.
var _ index.ReservationIndex = (*Tree)(nil)

// DefaultStackHint is the initial traversal stack capacity.
const DefaultStackHint = tree.DefaultStackHint

// Options contains configuration options for the tree.
type Options struct {
	// MemoryAcquirer bounds node memory. Nil means unlimited.
	MemoryAcquirer index.MemoryAcquirer

	// ChunkSlots is the number of nodes allocated per arena chunk.
	ChunkSlots int
}

// DefaultOptions contains the default configuration options for the tree.
var DefaultOptions = Options{
	ChunkSlots: arena.DefaultChunkSlots,
}

type node struct {
	res         model.Reservation
	left, right arena.Ref
}

func links(n *node) (arena.Ref, arena.Ref) { return n.left, n.right }

// Tree is a composite-key BST of reservations.
type Tree struct {
	nodes  *arena.Arena[node]
	root   arena.Ref
	n      int
	stack  []arena.Ref // scratch for ByFlight
	closed bool
}

// New creates an empty tree.
func New(optFns ...func(o *Options)) *Tree {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	arenaOpts := []arena.Option{arena.WithChunkSlots(opts.ChunkSlots)}
	if opts.MemoryAcquirer != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(opts.MemoryAcquirer))
	}
	return &Tree{
		nodes: arena.New[node](arenaOpts...),
		stack: make([]arena.Ref, 0, DefaultStackHint),
	}
}

// Insert adds r, or replaces the reservation with the same composite key.
func (t *Tree) Insert(r model.Reservation) error {
	if t.closed {
		return index.ErrClosed
	}

	key := r.Key()
	parent, cur := arena.Nil, t.root
	c := 0
	for !cur.IsNil() {
		n := t.nodes.Get(cur)
		c = key.Compare(n.res.Key())
		if c == 0 {
			n.res = r
			return nil
		}
		parent = cur
		if c < 0 {
			cur = n.left
		} else {
			cur = n.right
		}
	}

	ref, err := t.nodes.Alloc(node{res: r})
	if err != nil {
		return index.WrapArenaError("reservation node", err)
	}
	switch {
	case parent.IsNil():
		t.root = ref
	case c < 0:
		t.nodes.Get(parent).left = ref
	default:
		t.nodes.Get(parent).right = ref
	}
	t.n++
	return nil
}

// AddWithValidation inserts r if index.Admit allows it. A rejected
// reservation leaves the tree unchanged.
func (t *Tree) AddWithValidation(r model.Reservation, flights index.FlightLookup) error {
	if t.closed {
		return index.ErrClosed
	}
	if err := index.Admit(r, flights, t.ByFlight(r.FlightID)); err != nil {
		return err
	}
	return t.Insert(r)
}

// ByFlight returns the reservations of a flight in key order.
func (t *Tree) ByFlight(flightID int32) []model.Reservation {
	var out []model.Reservation

	stack := t.stack[:0]
	cur := t.root
	for !cur.IsNil() || len(stack) > 0 {
		for !cur.IsNil() {
			n := t.nodes.Get(cur)
			if n.res.FlightID < flightID {
				// n and its left subtree sort before the range.
				cur = n.right
				continue
			}
			stack = append(stack, cur)
			cur = n.left
		}
		if len(stack) == 0 {
			break
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes.Get(top)
		if n.res.FlightID > flightID {
			// Everything after n in key order is beyond the range.
			break
		}
		out = append(out, n.res)
		cur = n.right
	}

	t.stack = stack[:0]
	return out
}

// ByPassenger returns the reservations of a passenger in key order.
// Passenger id is not the leading key, so the whole tree is visited.
func (t *Tree) ByPassenger(passengerID int32) []model.Reservation {
	var out []model.Reservation
	for n := range tree.InOrder(t.nodes, t.root, links) {
		if n.res.PassengerID == passengerID {
			out = append(out, n.res)
		}
	}
	return out
}

// CountUniquePassengers returns the number of distinct passengers on a flight.
func (t *Tree) CountUniquePassengers(flightID int32) int {
	return index.CountUnique(t.ByFlight(flightID))
}

// CountByPassenger returns the number of reservations a passenger holds.
func (t *Tree) CountByPassenger(passengerID int32) int {
	count := 0
	for n := range tree.InOrder(t.nodes, t.root, links) {
		if n.res.PassengerID == passengerID {
			count++
		}
	}
	return count
}

// FlightsForPassenger returns the distinct flights a passenger booked, ascending.
func (t *Tree) FlightsForPassenger(passengerID int32) []int32 {
	return index.DistinctFlights(t.ByPassenger(passengerID))
}

// All yields every reservation in key order.
func (t *Tree) All() iter.Seq[model.Reservation] {
	return func(yield func(model.Reservation) bool) {
		for n := range tree.InOrder(t.nodes, t.root, links) {
			if !yield(n.res) {
				return
			}
		}
	}
}

// Len returns the number of reservations.
func (t *Tree) Len() int { return t.n }

// Height returns the tree height.
func (t *Tree) Height() int { return tree.Height(t.nodes, t.root, links) }

// NodeStats returns node allocation counters.
func (t *Tree) NodeStats() index.NodeStats { return index.NodeStatsOf(t.nodes.Stats()) }

// Close releases every node. Calling Close again is a no-op.
func (t *Tree) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	err := tree.FreeAll(t.nodes, t.root, links)
	t.root = arena.Nil
	t.n = 0
	if err != nil {
		return err
	}
	if live := t.nodes.Stats().Live; live != 0 {
		return &index.LeakError{Index: "reservationbst", Live: live}
	}
	t.nodes.Release()
	return nil
}
