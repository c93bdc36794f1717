// Package rlheap is the decoder's priority-queue engine: a heap.Interface
// driver matching libstdc++'s sift-up/sift-down implementation rather than
// container/heap's. It backs the score-ordered queues used by CubePruner
// and the n-best contenders queue; HypothesisStack.PruneToSize sorts with
// the sort package instead.
package rlheap

import "container/heap"

// Init establishes the heap invariants over h. Required before any Push or
// Pop if h was not built incrementally via Push.
func Init(h heap.Interface) {
	n := h.Len()
	for i := n/2 - 1; i >= 0; i-- {
		down(h, i, n)
	}
}

// Push adds x to the heap.
func Push(h heap.Interface, x interface{}) {
	h.Push(x)
	up(h, h.Len()-1)
}

// Pop removes and returns the top element (the one for which Less(top, x)
// is true for every other x).
func Pop(h heap.Interface) interface{} {
	n := h.Len() - 1
	h.Swap(0, n)
	down(h, 0, n)
	return h.Pop()
}

func up(h heap.Interface, j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		j = i
	}
}

// down restores the heap invariant below index i (heap length n). When the
// last node has no sibling (j1 == n after adjustment), it is compared
// directly against its parent rather than against a nonexistent sibling.
func down(h heap.Interface, i, n int) {
	for {
		j1 := 2 * (i + 1)
		if j1 >= n || j1 < 0 {
			if j1 == n {
				j1--
				if h.Less(j1, i) {
					h.Swap(i, j1)
				}
			}
			break
		}
		j := j1
		if j2 := j1 - 1; j2 < n && h.Less(j2, j1) {
			j = j2
		}
		less1, less2 := h.Less(i, j), h.Less(j, i)
		if less1 && less1 != less2 {
			break
		}
		h.Swap(i, j)
		i = j
	}
}

// Sort performs an in-place heapsort of h (descending in the heap's own
// Less order), leaving h in sorted, non-heap order.
func Sort(h heap.Interface) {
	for i := h.Len(); i > 1; {
		i--
		h.Swap(0, i)
		down(h, 0, i)
	}
	if h.Len() > 1 && h.Less(0, 1) {
		h.Swap(0, 1)
	}
}
