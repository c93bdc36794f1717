// Package nbest mines the top-scoring distinct target strings out of a
// completed search graph, by generating "deviations" of a path that
// substitute a recombination arc at one edge while keeping the rest of
// the path unchanged.
package nbest

import (
	"container/heap"
	"strings"

	"github.com/neubig/mosesdecoder/pkg/hypothesis"
	"github.com/neubig/mosesdecoder/pkg/rlheap"
)

// Path is a root-to-leaf view over the hypothesis graph: a sequence of
// nodes (seed first) plus the incremental score each node contributed
// over its predecessor, so that substituting one node (a deviation)
// only requires recomputing the prefix it replaces.
type Path struct {
	Nodes  []*hypothesis.Hypothesis
	Deltas []float64
	Score  float64
}

func deltasFor(chain []*hypothesis.Hypothesis) []float64 {
	deltas := make([]float64, len(chain))
	prev := 0.0
	for i, h := range chain {
		deltas[i] = h.ScoreTotal - prev
		prev = h.ScoreTotal
	}
	return deltas
}

// NewPath builds the straight back-pointer chain path ending at leaf.
func NewPath(arena *hypothesis.Arena, leaf *hypothesis.Hypothesis) *Path {
	chain := arena.Chain(leaf)
	return &Path{
		Nodes:  chain,
		Deltas: deltasFor(chain),
		Score:  leaf.ScoreTotal,
	}
}

// Surface renders the path's target-side output, words in emission order.
func (p *Path) Surface() string {
	parts := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		parts = append(parts, n.TargetPhrase()...)
	}
	return strings.Join(parts, " ")
}

// Deviations generates one new path per stored arc at every edge of p:
// the node at that edge is replaced by the arc's own ancestry chain,
// while every node after it is shared verbatim with p (recombined
// hypotheses agree on coverage, trailing LM context, and current source
// right edge, so whatever was legally built on top of the winner is
// equally legal on top of the loser).
func (p *Path) Deviations(arena *hypothesis.Arena) []*Path {
	var out []*Path
	for i, node := range p.Nodes {
		for _, arcID := range node.Arcs {
			arc := arena.Get(arcID)
			chain := arena.Chain(arc)

			newNodes := make([]*hypothesis.Hypothesis, 0, len(chain)+len(p.Nodes)-i-1)
			newNodes = append(newNodes, chain...)
			newNodes = append(newNodes, p.Nodes[i+1:]...)

			newDeltas := make([]float64, 0, len(newNodes))
			newDeltas = append(newDeltas, deltasFor(chain)...)
			newDeltas = append(newDeltas, p.Deltas[i+1:]...)

			suffixScore := p.Score - node.ScoreTotal
			out = append(out, &Path{
				Nodes:  newNodes,
				Deltas: newDeltas,
				Score:  arc.ScoreTotal + suffixScore,
			})
		}
	}
	return out
}

// pathHeap is a max-heap over pending contenders, best score first.
type pathHeap []*Path

func (q pathHeap) Len() int            { return len(q) }
func (q pathHeap) Less(i, j int) bool  { return q[i].Score > q[j].Score }
func (q pathHeap) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathHeap) Push(x interface{}) { *q = append(*q, x.(*Path)) }
func (q *pathHeap) Pop() interface{} {
	old := *q
	n := len(old)
	last := old[n-1]
	*q = old[:n-1]
	return last
}

var _ heap.Interface = (*pathHeap)(nil)

// Extractor mines an n-best list from a sentence's final stack.
type Extractor struct {
	Arena *hypothesis.Arena

	// Distinct suppresses re-emission of a surface form already output.
	Distinct bool
	// NBestFactor bounds the contenders queue to Count*NBestFactor after
	// each pop, when Distinct is set. 0 means unbounded.
	NBestFactor int
}

// Extract enumerates up to count paths, best score first, from the given
// final-stack members. Stops when count is reached, contenders are
// exhausted, or the count*20 iteration cap is hit.
func (e Extractor) Extract(finalStack []*hypothesis.Hypothesis, count int) []*Path {
	if count <= 0 || len(finalStack) == 0 {
		return nil
	}

	contenders := &pathHeap{}
	for _, h := range finalStack {
		rlheap.Push(contenders, NewPath(e.Arena, h))
	}

	seen := make(map[string]bool)
	out := make([]*Path, 0, count)
	iterCap := count * 20

	for iter := 0; iter < iterCap && contenders.Len() > 0 && len(out) < count; iter++ {
		p := rlheap.Pop(contenders).(*Path)

		if !e.Distinct || !seen[p.Surface()] {
			out = append(out, p)
			if e.Distinct {
				seen[p.Surface()] = true
			}
		}

		for _, dev := range p.Deviations(e.Arena) {
			rlheap.Push(contenders, dev)
		}

		if e.Distinct && e.NBestFactor > 0 {
			truncate(contenders, count*e.NBestFactor)
		}
	}

	return out
}

// truncate keeps only the best max entries of h, discarding the rest.
func truncate(h *pathHeap, max int) {
	if h.Len() <= max {
		return
	}
	rlheap.Sort(h) // leaves the best entries last
	*h = (*h)[h.Len()-max:]
	rlheap.Init(h)
}
