// Package cube implements best-first grid enumeration over a hypothesis
// row and a translation-option column, bounding the number of new
// hypotheses produced by a coverage × extension-range pairing.
package cube

import (
	"container/heap"

	"github.com/neubig/mosesdecoder/pkg/hypothesis"
	"github.com/neubig/mosesdecoder/pkg/lm"
	"github.com/neubig/mosesdecoder/pkg/option"
	"github.com/neubig/mosesdecoder/pkg/rlheap"
)

// Pruner enumerates up to k new hypotheses from the product of a row of
// hypotheses and a column of translation options, expanding the grid
// best-first rather than exhaustively scoring every cell.
type Pruner struct {
	Model      lm.Model
	Store      option.Store
	Distortion hypothesis.DistortionScorer
	// Dist computes the reordering distance between a row hypothesis's
	// current range and a column option's range; supplied by the caller,
	// who owns the source.Sentence this decode is running over.
	Dist func(rowIdx int, opt *option.TranslationOption) int
	// Slack widens the explored frontier beyond k before truncating.
	Slack int
}

// item is one popped or pending grid cell: the hypothesis produced by
// extending rows[x] with cols[y], plus its position for duplicate-push
// prevention and diagnostics.
type item struct {
	x, y int
	h    *hypothesis.Hypothesis
}

// itemHeap is a max-heap (best score first, ascending id as tie-break)
// over pending grid cells, driven by rlheap.
type itemHeap []*item

func (q itemHeap) Len() int { return len(q) }
func (q itemHeap) Less(i, j int) bool {
	if q[i].h.ScoreTotal != q[j].h.ScoreTotal {
		return q[i].h.ScoreTotal > q[j].h.ScoreTotal
	}
	return q[i].h.ID < q[j].h.ID
}
func (q itemHeap) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *itemHeap) Push(x interface{}) { *q = append(*q, x.(*item)) }
func (q *itemHeap) Pop() interface{} {
	old := *q
	n := len(old)
	last := old[n-1]
	*q = old[:n-1]
	return last
}

var _ heap.Interface = (*itemHeap)(nil)

// Prune runs best-first grid enumeration and returns up to k new
// hypotheses, best score first. rows must already be ordered best score
// first; cols best option score first.
func (p Pruner) Prune(arena *hypothesis.Arena, rows []*hypothesis.Hypothesis, cols []*option.TranslationOption, k int) []*hypothesis.Hypothesis {
	if len(rows) == 0 || len(cols) == 0 || k <= 0 {
		return nil
	}

	pending := &itemHeap{}
	visited := make(map[[2]int]bool)

	extend := func(x, y int) *item {
		h := hypothesis.Extend(arena, rows[x], cols[y], p.Model, p.Store, p.Dist(x, cols[y]), p.Distortion)
		h.GridX, h.GridY = x, y
		return &item{x: x, y: y, h: h}
	}

	push := func(x, y int) {
		pos := [2]int{x, y}
		if visited[pos] {
			return
		}
		visited[pos] = true
		rlheap.Push(pending, extend(x, y))
	}

	push(0, 0)

	limit := k + p.Slack
	buf := make([]*item, 0, limit)

	for pending.Len() > 0 && len(buf) < limit {
		popped := rlheap.Pop(pending).(*item)
		buf = append(buf, popped)

		if popped.y+1 < len(cols) {
			push(popped.x, popped.y+1)
		}
		if popped.x+1 < len(rows) {
			push(popped.x+1, popped.y)
		}
	}

	sortItems(buf)
	if len(buf) > k {
		for _, it := range buf[k:] {
			arena.Release(it.h)
		}
		buf = buf[:k]
	}
	for pending.Len() > 0 {
		discarded := rlheap.Pop(pending).(*item)
		arena.Release(discarded.h)
	}

	out := make([]*hypothesis.Hypothesis, len(buf))
	for i, it := range buf {
		out[i] = it.h
	}
	return out
}

// sortItems orders buf by the same score-desc, id-asc ordering the heap
// uses, via rlheap.Sort (a plain sort.Slice would duplicate the ordering
// logic that itemHeap.Less already states once). rlheap.Sort leaves the
// best item last, so the result is reversed to put it first.
func sortItems(buf []*item) {
	h := itemHeap(buf)
	rlheap.Init(&h)
	rlheap.Sort(&h)
	for i, j := 0, len(h)-1; i < j; i, j = i+1, j-1 {
		h[i], h[j] = h[j], h[i]
	}
	copy(buf, h)
}
