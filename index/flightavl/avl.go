// Package flightavl provides the optimized flight index: an AVL tree keyed by
// flight id.
//
// Every insert and delete restores |height(left) - height(right)| <= 1 at each
// node on the modified path, so lookups stay O(log n) for any insert order.
package flightavl

import (
	"fmt"
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
	height      int32
}

func links(n *node) (arena.Ref, arena.Ref) { return n.left, n.right }

// Tree is a height-balanced BST of flights.
type Tree struct {
	nodes  *arena.Arena[node]
	root   arena.Ref
	n      int
	path   []arena.Ref // scratch: ancestors of the modified node
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
		path:  make([]arena.Ref, 0, 64),
	}
}

// Insert adds f, or replaces the stored flight with the same id.
// Replacing a value does not change the shape of the tree.
func (t *Tree) Insert(f model.Flight) error {
	if t.closed {
		return index.ErrClosed
	}

	path := t.path[:0]
	cur := t.root
	for !cur.IsNil() {
		n := t.nodes.Get(cur)
		if f.ID == n.flight.ID {
			n.flight = f
			return nil
		}
		path = append(path, cur)
		if f.ID < n.flight.ID {
			cur = n.left
		} else {
			cur = n.right
		}
	}

	ref, err := t.nodes.Alloc(node{flight: f, height: 1})
	if err != nil {
		return index.WrapArenaError("flight node", err)
	}

	if len(path) == 0 {
		t.root = ref
	} else {
		p := t.nodes.Get(path[len(path)-1])
		if f.ID < p.flight.ID {
			p.left = ref
		} else {
			p.right = ref
		}
	}
	t.n++

	t.rebalancePath(path)
	t.path = path
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

// Delete removes the flight with the given id and rebalances the path to the root.
func (t *Tree) Delete(id int32) bool {
	if t.closed {
		return false
	}

	path := t.path[:0]
	cur := t.root
	for !cur.IsNil() {
		n := t.nodes.Get(cur)
		if id == n.flight.ID {
			break
		}
		path = append(path, cur)
		if id < n.flight.ID {
			cur = n.left
		} else {
			cur = n.right
		}
	}
	if cur.IsNil() {
		t.path = path
		return false
	}

	target := t.nodes.Get(cur)
	if !target.left.IsNil() && !target.right.IsNil() {
		path = append(path, cur)
		succ := target.right
		for s := t.nodes.Get(succ); !s.left.IsNil(); s = t.nodes.Get(succ) {
			path = append(path, succ)
			succ = s.left
		}
		target.flight = t.nodes.Get(succ).flight
		cur = succ
	}

	removed := t.nodes.Get(cur)
	child := removed.left
	if child.IsNil() {
		child = removed.right
	}
	parent := arena.Nil
	if len(path) > 0 {
		parent = path[len(path)-1]
	}
	t.replaceChild(parent, cur, child)
	_ = t.nodes.Free(cur)
	t.n--

	t.rebalancePath(path)
	t.path = path
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

// Height returns the stored height of the root.
func (t *Tree) Height() int { return int(t.height(t.root)) }

// NodeStats returns node allocation counters.
func (t *Tree) NodeStats() index.NodeStats { return index.NodeStatsOf(t.nodes.Stats()) }

// Validate checks key order, stored heights, balance factors and the node count.
func (t *Tree) Validate() error {
	count := 0
	first := true
	var prev int32
	for n := range tree.InOrder(t.nodes, t.root, links) {
		if !first && n.flight.ID <= prev {
			return &index.InvariantError{Index: "flightavl", Detail: fmt.Sprintf("keys out of order: %d after %d", n.flight.ID, prev)}
		}
		first, prev = false, n.flight.ID
		count++

		hl, hr := t.height(n.left), t.height(n.right)
		if want := 1 + max(hl, hr); n.height != want {
			return &index.InvariantError{Index: "flightavl", Detail: fmt.Sprintf("node %d: height %d, want %d", n.flight.ID, n.height, want)}
		}
		if b := hl - hr; b > 1 || b < -1 {
			return &index.InvariantError{Index: "flightavl", Detail: fmt.Sprintf("node %d: balance %d", n.flight.ID, b)}
		}
	}
	if count != t.n {
		return &index.InvariantError{Index: "flightavl", Detail: fmt.Sprintf("count %d, want %d", count, t.n)}
	}
	return nil
}

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
		return &index.LeakError{Index: "flightavl", Live: live}
	}
	t.nodes.Release()
	return nil
}

// rebalancePath walks path bottom-up, refreshing heights and rotating where
// a node is out of balance.
func (t *Tree) rebalancePath(path []arena.Ref) {
	for i := len(path) - 1; i >= 0; i-- {
		ref := path[i]
		sub := t.rebalance(ref)
		if sub == ref {
			continue
		}
		parent := arena.Nil
		if i > 0 {
			parent = path[i-1]
		}
		t.replaceChild(parent, ref, sub)
	}
}

// rebalance fixes the subtree rooted at ref and returns its new root.
func (t *Tree) rebalance(ref arena.Ref) arena.Ref {
	t.updateHeight(ref)
	n := t.nodes.Get(ref)

	switch b := t.balance(ref); {
	case b > 1:
		if t.balance(n.left) < 0 {
			n.left = t.rotateLeft(n.left) // LR
		}
		return t.rotateRight(ref) // LL
	case b < -1:
		if t.balance(n.right) > 0 {
			n.right = t.rotateRight(n.right) // RL
		}
		return t.rotateLeft(ref) // RR
	}
	return ref
}

func (t *Tree) rotateRight(yRef arena.Ref) arena.Ref {
	y := t.nodes.Get(yRef)
	xRef := y.left
	x := t.nodes.Get(xRef)

	y.left = x.right
	x.right = yRef

	t.updateHeight(yRef)
	t.updateHeight(xRef)
	return xRef
}

func (t *Tree) rotateLeft(xRef arena.Ref) arena.Ref {
	x := t.nodes.Get(xRef)
	yRef := x.right
	y := t.nodes.Get(yRef)

	x.right = y.left
	y.left = xRef

	t.updateHeight(xRef)
	t.updateHeight(yRef)
	return yRef
}

func (t *Tree) height(ref arena.Ref) int32 {
	if ref.IsNil() {
		return 0
	}
	return t.nodes.Get(ref).height
}

func (t *Tree) balance(ref arena.Ref) int32 {
	if ref.IsNil() {
		return 0
	}
	n := t.nodes.Get(ref)
	return t.height(n.left) - t.height(n.right)
}

func (t *Tree) updateHeight(ref arena.Ref) {
	n := t.nodes.Get(ref)
	n.height = 1 + max(t.height(n.left), t.height(n.right))
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
