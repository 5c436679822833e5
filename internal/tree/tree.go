// Package tree provides iterative traversals over arena-backed binary trees.
//
// Nothing here recurses, so degenerate trees built from sorted input do not
// grow the goroutine stack.
package tree

import (
	"iter"

	"github.com/hupe1980/skyindex/internal/arena"
)

// DefaultStackHint is the initial capacity of traversal stacks. Stacks grow
// past it when a tree is deeper.
const DefaultStackHint = 1024

// Links returns the left and right children of a node.
type Links[N any] func(n *N) (left, right arena.Ref)

// InOrder yields nodes in ascending key order. The sequence is restartable
// and stops early when yield returns false. The tree must not be modified
// while the sequence is being consumed.
func InOrder[N any](a *arena.Arena[N], root arena.Ref, links Links[N]) iter.Seq[*N] {
	return func(yield func(*N) bool) {
		stack := make([]arena.Ref, 0, stackHint(root))
		cur := root
		for !cur.IsNil() || len(stack) > 0 {
			for !cur.IsNil() {
				stack = append(stack, cur)
				cur, _ = links(a.Get(cur))
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			n := a.Get(top)
			if !yield(n) {
				return
			}
			_, cur = links(n)
		}
	}
}

// Height returns the number of nodes on the longest root-to-leaf path.
func Height[N any](a *arena.Arena[N], root arena.Ref, links Links[N]) int {
	type frame struct {
		ref   arena.Ref
		depth int
	}
	if root.IsNil() {
		return 0
	}
	h := 0
	stack := make([]frame, 0, DefaultStackHint)
	stack = append(stack, frame{root, 1})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		h = max(h, f.depth)
		l, r := links(a.Get(f.ref))
		if !l.IsNil() {
			stack = append(stack, frame{l, f.depth + 1})
		}
		if !r.IsNil() {
			stack = append(stack, frame{r, f.depth + 1})
		}
	}
	return h
}

// FreeAll releases every node reachable from root exactly once.
// Children are read before their parent is freed. The first error is returned
// after the walk completes.
func FreeAll[N any](a *arena.Arena[N], root arena.Ref, links Links[N]) error {
	if root.IsNil() {
		return nil
	}
	var firstErr error
	stack := make([]arena.Ref, 0, DefaultStackHint)
	stack = append(stack, root)
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := a.Get(ref)
		if n == nil {
			continue
		}
		l, r := links(n)
		if !l.IsNil() {
			stack = append(stack, l)
		}
		if !r.IsNil() {
			stack = append(stack, r)
		}
		if err := a.Free(ref); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func stackHint(root arena.Ref) int {
	if root.IsNil() {
		return 0
	}
	return DefaultStackHint
}
