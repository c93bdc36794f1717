// Package stack implements the per-coverage-count beam: a bounded
// collection of hypotheses with recombination by equivalence key,
// beam-threshold discarding, and lazy size pruning, grounded on Moses'
// HypothesisStack.{h,cpp}.
package stack

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/neubig/mosesdecoder/pkg/decodeerr"
	"github.com/neubig/mosesdecoder/pkg/hypothesis"
)

// Stats tallies the three dispositions a new hypothesis can meet,
// mirrored from SentenceStats::AddDiscarded/AddRecombination/AddPruning.
type Stats struct {
	Discarded  int // below the beam threshold, never inserted
	Recombined int // merged into an existing equivalence class
	Pruned     int // evicted by PruneToSize after insertion
}

// Stack holds every live hypothesis for one coverage-count step of the
// search. The zero value is not usable; construct with New.
type Stack struct {
	arena *hypothesis.Arena

	byID     map[hypothesis.ID]*hypothesis.Hypothesis
	byEquiv  map[string]hypothesis.ID   // equivalence key -> representative id
	byCover  map[string][]hypothesis.ID // coverage key -> member ids, for coverage_set(B)

	maxSize       int
	beamThreshold float64 // <= 0; hypotheses below best+threshold are cut

	bestScore  float64
	worstScore float64

	nBestEnabled bool
	nBestFactor  int // cap on arcs kept per hypothesis when n-best is enabled

	strictStackSize bool // see Config.StrictStackSize

	Stats Stats
}

// New returns an empty stack. maxSize <= 0 means unbounded (no size
// pruning, matching Moses' numeric_limits<size_t>::max() sentinel).
// beamThreshold is a non-positive log-score delta: hypotheses scoring
// below bestScore+beamThreshold are discarded outright. nBestFactor bounds
// how many arcs CleanupArcList retains per hypothesis; it is ignored when
// nBestEnabled is false. strictStackSize controls PruneToSize's
// tie-at-threshold behavior: see Config.StrictStackSize.
func New(arena *hypothesis.Arena, maxSize int, beamThreshold float64, nBestEnabled bool, nBestFactor int, strictStackSize bool) *Stack {
	return &Stack{
		arena:           arena,
		byID:            make(map[hypothesis.ID]*hypothesis.Hypothesis),
		byEquiv:         make(map[string]hypothesis.ID),
		byCover:         make(map[string][]hypothesis.ID),
		maxSize:         maxSize,
		beamThreshold:   beamThreshold,
		bestScore:       math.Inf(-1),
		worstScore:      math.Inf(-1),
		nBestEnabled:    nBestEnabled,
		nBestFactor:     nBestFactor,
		strictStackSize: strictStackSize,
	}
}

// Len reports the number of hypotheses currently in the stack.
func (s *Stack) Len() int { return len(s.byID) }

// BestScore and WorstScore expose the stack's score-range bookkeeping,
// for logging (Manager::OutputHypoStackSize's equivalent).
func (s *Stack) BestScore() float64  { return s.bestScore }
func (s *Stack) WorstScore() float64 { return s.worstScore }

// add inserts h unconditionally, tracking the best/worst-score bookkeeping
// Moses keeps inline in HypothesisStack::Add, and lazily prunes once the
// stack has grown to twice its target size. Callers must have already
// resolved any recombination against byEquiv (AddPrune does this before
// ever calling add); finding a live, distinct equivalence-class occupant
// still in byID here means a caller inserted without going through that
// path, which would silently orphan the existing occupant's stack
// membership — an internal invariant violation, not a reachable outcome
// of a normal decode.
func (s *Stack) add(h *hypothesis.Hypothesis) {
	key := h.EquivKey()
	if existingID, exists := s.byEquiv[key]; exists && existingID != h.ID {
		if _, stillLive := s.byID[existingID]; stillLive {
			decodeerr.Panic("stack.add", fmt.Sprintf(
				"equivalence key %q already held by hypothesis %d when inserting %d: recombination must go through AddPrune",
				key, existingID, h.ID))
		}
	}

	s.byID[h.ID] = h
	s.byEquiv[key] = h.ID
	covKey := h.Coverage.Key()
	s.byCover[covKey] = append(s.byCover[covKey], h.ID)

	if h.ScoreTotal > s.bestScore {
		s.bestScore = h.ScoreTotal
		if s.bestScore+s.beamThreshold > s.worstScore {
			s.worstScore = s.bestScore + s.beamThreshold
		}
	}

	if s.maxSize > 0 && len(s.byID) > 2*s.maxSize-1 {
		s.PruneToSize()
	}
}

// remove drops id from the stack's indices without touching the arena:
// the hypothesis itself stays allocated, it is simply no longer a live
// member of this beam.
func (s *Stack) remove(h *hypothesis.Hypothesis) {
	delete(s.byID, h.ID)
	if s.byEquiv[h.EquivKey()] == h.ID {
		delete(s.byEquiv, h.EquivKey())
	}

	key := h.Coverage.Key()
	ids := s.byCover[key]
	for i, id := range ids {
		if id == h.ID {
			s.byCover[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byCover[key]) == 0 {
		delete(s.byCover, key)
	}
}

// CoverageSet returns every live member whose coverage equals key (as
// produced by coverage.Bitmap.Key), ordered by score descending.
func (s *Stack) CoverageSet(key string) []*hypothesis.Hypothesis {
	ids := s.byCover[key]
	out := make([]*hypothesis.Hypothesis, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.arena.Get(id))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScoreTotal != out[j].ScoreTotal {
			return out[i].ScoreTotal > out[j].ScoreTotal
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Coverages returns every distinct coverage key currently present in the
// stack, sorted lexicographically, for the Manager's "process each
// coverage once" grouping pass. The order must be deterministic: the
// order coverage groups are visited in affects which hypotheses
// AddPrune's worst-score threshold discards, so leaving this at Go's
// randomized map iteration order would make a decode's result depend on
// process-local map seeding rather than sentence and config alone.
func (s *Stack) Coverages() []string {
	keys := make([]string, 0, len(s.byCover))
	for k := range s.byCover {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddPrune is the main entry point for the decode loop: it discards h
// outright if it is already worse than the current worst-score threshold,
// otherwise inserts it, recombining with any existing hypothesis that
// shares h's equivalence key and keeping only the higher-scoring of the
// two (the loser becomes an arc, or is released, depending on whether
// n-best mining is enabled).
func (s *Stack) AddPrune(h *hypothesis.Hypothesis) {
	if h.ScoreTotal < s.worstScore {
		s.Stats.Discarded++
		s.arena.Release(h)
		return
	}

	existingID, exists := s.byEquiv[h.EquivKey()]
	if !exists {
		s.add(h)
		return
	}

	existing := s.arena.Get(existingID)
	s.Stats.Recombined++

	if h.ScoreTotal > existing.ScoreTotal {
		if s.nBestEnabled {
			s.arena.AddArc(h, existing)
		} else {
			s.arena.Release(existing)
		}
		s.remove(existing)
		s.add(h)
		return
	}

	if s.nBestEnabled {
		s.arena.AddArc(existing, h)
	} else {
		s.arena.Release(h)
	}
}

// PruneToSize keeps only the maxSize best-scoring hypotheses, matching
// HypothesisStack::PruneToSize's priority-queue threshold approach
// (implemented here with a plain sort, since the stack sizes involved are
// small relative to a sort's constant factor). By default, every
// hypothesis tying the threshold score survives, so the stack can end up
// larger than maxSize — Moses' own behavior. When strictStackSize is set,
// ties at the threshold are broken by hypothesis ID so the stack never
// exceeds maxSize.
func (s *Stack) PruneToSize() {
	if s.maxSize <= 0 || len(s.byID) <= s.maxSize {
		return
	}

	survivors := make([]*hypothesis.Hypothesis, 0, len(s.byID))
	for _, h := range s.byID {
		if h.ScoreTotal > s.bestScore+s.beamThreshold {
			survivors = append(survivors, h)
		}
	}
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].ScoreTotal != survivors[j].ScoreTotal {
			return survivors[i].ScoreTotal > survivors[j].ScoreTotal
		}
		return survivors[i].ID < survivors[j].ID
	})

	keep := s.maxSize
	if keep > len(survivors) {
		keep = len(survivors)
	}
	if keep == 0 {
		return
	}
	threshold := survivors[keep-1].ScoreTotal

	if s.strictStackSize {
		kept := make(map[hypothesis.ID]bool, keep)
		for _, h := range survivors[:keep] {
			kept[h.ID] = true
		}
		for _, h := range s.byID {
			if !kept[h.ID] {
				s.remove(h)
				s.arena.Release(h)
				s.Stats.Pruned++
			}
		}
		s.worstScore = threshold
		return
	}

	for _, h := range s.byID {
		if h.ScoreTotal < threshold {
			s.remove(h)
			s.arena.Release(h)
			s.Stats.Pruned++
		}
	}
	s.worstScore = threshold
}

// GetBestHypothesis returns the highest-scoring hypothesis in the stack,
// or nil if the stack is empty.
func (s *Stack) GetBestHypothesis() *hypothesis.Hypothesis {
	var best *hypothesis.Hypothesis
	for _, h := range s.byID {
		if best == nil || h.ScoreTotal > best.ScoreTotal {
			best = h
		}
	}
	return best
}

// GetSortedList returns every hypothesis in the stack, best score first.
func (s *Stack) GetSortedList() []*hypothesis.Hypothesis {
	out := make([]*hypothesis.Hypothesis, 0, len(s.byID))
	for _, h := range s.byID {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScoreTotal != out[j].ScoreTotal {
			return out[i].ScoreTotal > out[j].ScoreTotal
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CleanupArcList sorts each surviving hypothesis's arc list best-score
// first and truncates it to nBestFactor entries, matching
// Hypothesis::CleanupArcList. A no-op when n-best mining is disabled.
func (s *Stack) CleanupArcList() {
	if !s.nBestEnabled {
		return
	}
	for _, h := range s.byID {
		arcs := h.Arcs
		sort.Slice(arcs, func(i, j int) bool {
			return s.arena.Get(arcs[i]).ScoreTotal > s.arena.Get(arcs[j]).ScoreTotal
		})
		if s.nBestFactor > 0 && len(arcs) > s.nBestFactor {
			for _, dropped := range arcs[s.nBestFactor:] {
				s.arena.Release(s.arena.Get(dropped))
			}
			h.Arcs = arcs[:s.nBestFactor]
		}
	}
}

// RemoveDeadendHypotheses drops every hypothesis with zero remaining
// references other than exclude, matching
// HypothesisStack::RemoveDeadendHypotheses: once the search has moved
// past this stack, any hypothesis nothing downstream points to any more
// is dead weight.
func (s *Stack) RemoveDeadendHypotheses(exclude *hypothesis.Hypothesis) {
	for _, h := range s.byID {
		if h == exclude {
			continue
		}
		if h.RefCount() == 0 {
			s.remove(h)
		}
	}
}

// String dumps the stack's contents one hypothesis per line, best first,
// for debug output.
func (s *Stack) String() string {
	var sb strings.Builder
	for _, h := range s.GetSortedList() {
		fmt.Fprintln(&sb, h)
	}
	return sb.String()
}
