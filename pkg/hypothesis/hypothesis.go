// Package hypothesis implements the search-graph node and its arena.
// Hypotheses live in a per-sentence arena keyed by monotone id; parent and
// arc links hold ids, not owning pointers, so the arena can be dropped
// wholesale at sentence end, and the back-pointer chain can never cycle
// (parent links only ever point to smaller ids; an arc may point to a
// newer hypothesis that lost a recombination to an older one).
package hypothesis

import (
	"fmt"
	"strings"

	"github.com/neubig/mosesdecoder/pkg/coverage"
	"github.com/neubig/mosesdecoder/pkg/lm"
	"github.com/neubig/mosesdecoder/pkg/option"
	"github.com/neubig/mosesdecoder/pkg/span"
)

// ID is a stable, monotone index into an Arena.
type ID int

// None is the id used for "no parent" (the seed hypothesis).
const None ID = -1

// Hypothesis is one node of the search graph: a partial coverage, the
// trailing target-side context the language model conditions on, the
// accumulated score, and a back-pointer to its parent. Arcs are recombined
// equivalents retained only when n-best extraction is enabled.
type Hypothesis struct {
	ID ID

	Parent ID                        // None for the seed
	Option *option.TranslationOption // nil for the seed

	Coverage        *coverage.Bitmap
	LastContext     []string
	CurrSourceRange span.Range // the range covered by Option; {-1,-1} sentinel for the seed
	ScoreTotal      float64

	Arcs []ID // recombined-away equivalents, n-best mode only

	GridX, GridY int // diagnostics: the cube-pruning grid cell this hypothesis was produced at

	refCount int // inbound references from other hypotheses' Parent links
}

// EquivKey returns the recombination key: hypotheses that agree on
// (coverage, last_context, current-source-right-edge) are interchangeable
// for future extensions and scoring.
func (h *Hypothesis) EquivKey() string {
	var sb strings.Builder
	sb.WriteString(h.Coverage.Key())
	sb.WriteByte('|')
	sb.WriteString(strings.Join(h.LastContext, "\x1f"))
	sb.WriteByte('|')
	fmt.Fprintf(&sb, "%d", h.CurrSourceRange.To)
	return sb.String()
}

// Arena owns every hypothesis created for one sentence. It is the single
// point of allocation and the single point of teardown.
type Arena struct {
	hyps []*Hypothesis
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Seed creates and returns the empty hypothesis: no parent, no option,
// empty coverage, score 0. CurrSourceRange is set to the {-1,-1} sentinel
// rather than the span.Range zero value {0,0}, so callers computing the
// next lattice node from CurrSourceRange.To+1 land on node 0 (the lattice
// start) instead of mistaking the seed for a hypothesis that has already
// covered source position 0.
func (a *Arena) Seed(n int) *Hypothesis {
	h := &Hypothesis{
		ID:              ID(len(a.hyps)),
		Parent:          None,
		Coverage:        coverage.New(n),
		CurrSourceRange: span.Range{From: -1, To: -1},
	}
	a.hyps = append(a.hyps, h)
	return h
}

// New allocates a fresh hypothesis extending parent with opt. Callers are
// expected to fill in Coverage, LastContext, CurrSourceRange, and
// ScoreTotal (see hypothesis.Extend, which does exactly this); New only
// handles id assignment, arena bookkeeping, and parent ref-counting.
func (a *Arena) New(parent *Hypothesis, opt *option.TranslationOption) *Hypothesis {
	h := &Hypothesis{
		ID:     ID(len(a.hyps)),
		Parent: parent.ID,
		Option: opt,
	}
	a.hyps = append(a.hyps, h)
	parent.refCount++
	return h
}

// Get resolves an id to its hypothesis. Panics on an out-of-range id,
// which would indicate a programmer error (a dangling link into a torn-
// down or never-allocated arena).
func (a *Arena) Get(id ID) *Hypothesis {
	if id < 0 || int(id) >= len(a.hyps) {
		panic(fmt.Sprintf("hypothesis: id %d out of range for arena of size %d", id, len(a.hyps)))
	}
	return a.hyps[id]
}

// AddArc records loser as a recombined-away equivalent of winner, for
// later n-best mining. Loser keeps its hold on its own parent, so its
// ancestry stays counted as referenced.
func (a *Arena) AddArc(winner, loser *Hypothesis) {
	winner.Arcs = append(winner.Arcs, loser.ID)
}

// Release decrements the ref count inbound to h's parent, as if h were
// being freed outright (used when a losing hypothesis in recombination is
// discarded rather than kept as an arc). It does not remove h from the
// arena: the arena only ever grows and is dropped wholesale at sentence
// end.
func (a *Arena) Release(h *Hypothesis) {
	if h.Parent == None {
		return
	}
	parent := a.Get(h.Parent)
	if parent.refCount > 0 {
		parent.refCount--
	}
}

// RefCount returns the number of live inbound references to h (from
// other hypotheses' Parent links; arcs pointing at h are not counted).
func (h *Hypothesis) RefCount() int { return h.refCount }

// Chain returns the back-pointer chain from h to the seed, root first.
func (a *Arena) Chain(h *Hypothesis) []*Hypothesis {
	var chain []*Hypothesis
	for cur := h; ; {
		chain = append(chain, cur)
		if cur.Parent == None {
			break
		}
		cur = a.Get(cur.Parent)
	}
	// reverse in place
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// TargetPhrase returns the sequence of target tokens this hypothesis's
// Option contributed, or nil for the seed.
func (h *Hypothesis) TargetPhrase() []string {
	if h.Option == nil {
		return nil
	}
	return h.Option.TargetPhrase
}

// String renders a compact one-line summary for debug output, matching the
// flavor of Moses' Hypothesis::PrintHypothesis / operator<<.
func (h *Hypothesis) String() string {
	phrase := strings.Join(h.TargetPhrase(), " ")
	return fmt.Sprintf("#%d[%s]:%.4f %q", h.ID, h.Coverage.String(), h.ScoreTotal, phrase)
}

// DistortionScorer weights the reordering distance between consecutively
// translated ranges. Distortion is cheap enough to keep as a plain
// weighted linear term, so no separate collaborator interface is
// warranted.
type DistortionScorer struct {
	Weight float64
}

// Cost returns the weighted distortion penalty for moving from prev to
// next, via dist (typically source.Sentence.DistortionDistance(prev, next)).
func (d DistortionScorer) Cost(dist int) float64 {
	return d.Weight * float64(dist)
}

// Extend allocates a new hypothesis continuing parent with opt, scored as:
//
//	score_total(h') = score_total(h) - future_cost(h.coverage)
//	                + option_score(o) + lm_score_delta + distortion_cost
//	                + future_cost(h'.coverage)
//
// dist is the distortion distance between parent's current range and
// opt's range, supplied by the caller (who owns the source.Sentence and
// its lattice-aware DistortionDistance).
func Extend(a *Arena, parent *Hypothesis, opt *option.TranslationOption, model lm.Model, store option.Store, dist int, distortion DistortionScorer) *Hypothesis {
	h := a.New(parent, opt)

	h.Coverage = parent.Coverage.Union(opt.SourceRange.From, opt.SourceRange.To)
	h.CurrSourceRange = opt.SourceRange

	lmDelta, newContext := model.ScoreExtension(parent.LastContext, opt.TargetPhrase)
	h.LastContext = newContext

	score := parent.ScoreTotal - store.FutureScore(parent.Coverage)
	score += opt.TotalScore
	score += lmDelta
	score += distortion.Cost(dist)
	score += store.FutureScore(h.Coverage)
	h.ScoreTotal = score

	return h
}
