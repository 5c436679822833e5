// Package flightbst provides the baseline flight index: an unbalanced binary
// search tree keyed by flight id.
//
// Insert order determines the shape. Sorted input degenerates the tree into
// a list with O(n) lookups, which is the behavior flightavl is measured
// against.
package flightbst

import (
	"iter"
	"strings"

	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/internal/arena"
	"github.com/hupe1980/skyindex/internal/tree"
	"github.com/hupe1980/skyindex/model"
)

// Compile-time check to ensure Tree satisfies the index contract.
var _ index.FlightIndex = (*Tree)(nil)

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
	flight      model.Flight
	left, right arena.Ref
}

func links(n *node) (arena.Ref, arena.Ref) { return n.left, n.right }

// Tree is an unbalanced BST of flights.
type Tree struct {
	nodes  *arena.Arena[node]
	root   arena.Ref
	n      int
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
	return &Tree{nodes: arena.New[node](arenaOpts...)}
}

// Insert adds f, or replaces the stored flight with the same id.
func (t *Tree) Insert(f model.Flight) error {
	if t.closed {
		return index.ErrClosed
	}

	parent, cur := arena.Nil, t.root
	left := false
	for !cur.IsNil() {
		n := t.nodes.Get(cur)
		switch {
		case f.ID < n.flight.ID:
			parent, cur, left = cur, n.left, true
		case f.ID > n.flight.ID:
			parent, cur, left = cur, n.right, false
		default:
			n.flight = f
			return nil
		}
	}

	ref, err := t.nodes.Alloc(node{flight: f})
	if err != nil {
		return index.WrapArenaError("flight node", err)
	}

	switch {
	case parent.IsNil():
		t.root = ref
	case left:
		t.nodes.Get(parent).left = ref
	default:
		t.nodes.Get(parent).right = ref
	}
	t.n++
	return nil
}

// Find returns the flight with the given id.
func (t *Tree) Find(id int32) (model.Flight, bool) {
	cur := t.root
	for !cur.IsNil() {
		n := t.nodes.Get(cur)
		switch {
		case id < n.flight.ID:
			cur = n.left
		case id > n.flight.ID:
			cur = n.right
		default:
			return n.flight, true
		}
	}
	return model.Flight{}, false
}

// FindByNumber returns the lowest-id flight whose number equals number, ignoring case.
func (t *Tree) FindByNumber(number string) (model.Flight, bool) {
	for f := range t.All() {
		if strings.EqualFold(f.FlightNumber, number) {
			return f, true
		}
	}
	return model.Flight{}, false
}

// Delete removes the flight with the given id. A node with two children takes
// its in-order successor's value, and the successor node is removed instead.
func (t *Tree) Delete(id int32) bool {
	if t.closed {
		return false
	}

	parent, cur := arena.Nil, t.root
	for !cur.IsNil() {
		n := t.nodes.Get(cur)
		if id == n.flight.ID {
			break
		}
		parent = cur
		if id < n.flight.ID {
			cur = n.left
		} else {
			cur = n.right
		}
	}
	if cur.IsNil() {
		return false
	}

	target := t.nodes.Get(cur)
	if !target.left.IsNil() && !target.right.IsNil() {
		succParent, succ := cur, target.right
		for s := t.nodes.Get(succ); !s.left.IsNil(); s = t.nodes.Get(succ) {
			succParent, succ = succ, s.left
		}
		target.flight = t.nodes.Get(succ).flight
		parent, cur = succParent, succ
	}

	removed := t.nodes.Get(cur)
	child := removed.left
	if child.IsNil() {
		child = removed.right
	}
	t.replaceChild(parent, cur, child)
	_ = t.nodes.Free(cur)
	t.n--
	return true
}

// All yields flights in ascending id order.
func (t *Tree) All() iter.Seq[model.Flight] {
	return func(yield func(model.Flight) bool) {
		for n := range tree.InOrder(t.nodes, t.root, links) {
			if !yield(n.flight) {
				return
			}
		}
	}
}

// Len returns the number of flights.
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
		return &index.LeakError{Index: "flightbst", Live: live}
	}
	t.nodes.Release()
	return nil
}

func (t *Tree) replaceChild(parent, old, child arena.Ref) {
	if parent.IsNil() {
		t.root = child
		return
	}
	p := t.nodes.Get(parent)
	if p.left == old {
		p.left = child
	} else {
		p.right = child
	}
}
