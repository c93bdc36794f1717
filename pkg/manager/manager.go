// Package manager implements the stack-by-stack decoding loop: seeding the
// empty hypothesis, grouping each stack by coverage, enumerating legal
// extensions under the reordering limit, and routing cube-pruning output
// back into later stacks. Grounded on Moses' Manager::ProcessSentence.
package manager

import (
	"context"
	"sort"

	"github.com/neubig/mosesdecoder/internal/config"
	"github.com/neubig/mosesdecoder/pkg/cube"
	"github.com/neubig/mosesdecoder/pkg/decodeerr"
	"github.com/neubig/mosesdecoder/pkg/hypothesis"
	"github.com/neubig/mosesdecoder/pkg/lm"
	"github.com/neubig/mosesdecoder/pkg/option"
	"github.com/neubig/mosesdecoder/pkg/source"
	"github.com/neubig/mosesdecoder/pkg/span"
	"github.com/neubig/mosesdecoder/pkg/stack"
)

// State is the decoder's output: the full set of per-coverage-count
// stacks plus whether the search was cut short by a deadline.
type State struct {
	Arena            *hypothesis.Arena
	Stacks           []*stack.Stack
	DeadlineExceeded bool
}

// StackSizes returns the member count of each stack, for diagnostics.
func (s *State) StackSizes() []int {
	sizes := make([]int, len(s.Stacks))
	for i, st := range s.Stacks {
		sizes[i] = st.Len()
	}
	return sizes
}

// StackScoreRange returns the (best, worst) score bookkeeping of stack i,
// mirroring Manager::OutputHypoStackSize's per-stack log line.
func (s *State) StackScoreRange(i int) (best, worst float64) {
	return s.Stacks[i].BestScore(), s.Stacks[i].WorstScore()
}

// Best returns the highest-scoring hypothesis on the highest-index
// non-empty stack: in the normal case this is the fully-covered final
// stack, but a deadline may cut the search off earlier.
func (s *State) Best() *hypothesis.Hypothesis {
	for i := len(s.Stacks) - 1; i >= 0; i-- {
		if best := s.Stacks[i].GetBestHypothesis(); best != nil {
			return best
		}
	}
	return nil
}

// Manager owns one sentence's decode: its stacks, its arena, and the
// external collaborators (store, language model, source sentence).
type Manager struct {
	cfg      config.Config
	arena    *hypothesis.Arena
	stacks   []*stack.Stack
	store    option.Store
	model    lm.Model
	sentence source.Sentence
	cube     cube.Pruner
}

// New builds a Manager for sentence, materializing its translation
// options and seeding stack 0 with the empty hypothesis. Returns
// ConfigError if cfg is invalid, ModelError if the option store fails.
func New(cfg config.Config, sentence source.Sentence, store option.Store, model lm.Model) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := store.CreateFor(sentence); err != nil {
		return nil, &decodeerr.ModelError{Op: "create_for", Err: err}
	}

	n := sentence.Size()
	arena := hypothesis.NewArena()
	stacks := make([]*stack.Stack, n+1)
	for i := range stacks {
		stacks[i] = stack.New(arena, cfg.MaxStackSize, cfg.BeamThreshold, cfg.NBestEnabled, cfg.NBestFactor, cfg.StrictStackSize)
	}

	seed := arena.Seed(n)
	stacks[0].AddPrune(seed)

	m := &Manager{
		cfg:      cfg,
		arena:    arena,
		stacks:   stacks,
		store:    store,
		model:    model,
		sentence: sentence,
		cube: cube.Pruner{
			Model:      model,
			Store:      store,
			Distortion: hypothesis.DistortionScorer{Weight: cfg.DistortionWeight},
			Slack:      cfg.CubeSlack,
		},
	}
	return m, nil
}

// Decode runs the full stack-by-stack loop until every stack is settled
// or ctx is cancelled.
func (m *Manager) Decode(ctx context.Context) *State {
	state := &State{Arena: m.arena, Stacks: m.stacks}

	n := len(m.stacks) - 1
	for i := 0; i <= n; i++ {
		if ctx.Err() != nil {
			state.DeadlineExceeded = true
			return state
		}

		s := m.stacks[i]
		s.PruneToSize()
		s.CleanupArcList()

		if i == n {
			continue // the final stack has nothing left to extend
		}

		if m.expandStack(ctx, s) {
			state.DeadlineExceeded = true
			return state
		}
	}
	return state
}

// expandStack processes every coverage group in s exactly once,
// enumerating legal extensions and cube-pruning into later stacks.
// Returns true if ctx expired mid-expansion.
func (m *Manager) expandStack(ctx context.Context, s *stack.Stack) bool {
	for _, covKey := range s.Coverages() {
		group := s.CoverageSet(covKey)
		if len(group) == 0 {
			continue
		}
		rep := group[0]
		rows := group
		if len(rows) > m.cfg.CubeTopK {
			rows = rows[:m.cfg.CubeTopK]
		}

		for _, r := range legalExtensions(rep, m.sentence, m.cfg.MaxDistortion, m.cfg.MaxPhraseLen) {
			if ctx.Err() != nil {
				return true
			}

			opts := m.store.OptionsFor(r)
			if len(opts) == 0 {
				continue
			}
			cols := topOptions(opts, m.cfg.CubeTopK)

			m.cube.Dist = func(rowIdx int, opt *option.TranslationOption) int {
				row := rows[rowIdx]
				if row.Option == nil {
					return 0 // no previous range to measure reordering against
				}
				return m.sentence.DistortionDistance(row.CurrSourceRange, opt.SourceRange)
			}
			produced := m.cube.Prune(m.arena, rows, cols, m.cfg.CubeTopK)
			for _, h := range produced {
				m.stacks[h.Coverage.CountSet()].AddPrune(h)
			}
		}
	}
	return false
}

// topOptions returns the k best-scoring options, best first, without
// mutating the caller's slice.
func topOptions(opts []*option.TranslationOption, k int) []*option.TranslationOption {
	sorted := make([]*option.TranslationOption, len(opts))
	copy(sorted, opts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TotalScore > sorted[j].TotalScore })
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// legalExtensions enumerates the ranges allowed as the next step from a
// hypothesis with coverage rep.Coverage and current range
// rep.CurrSourceRange, under the reordering and phrase-length limits.
func legalExtensions(rep *hypothesis.Hypothesis, sentence source.Sentence, maxDistortion, maxPhraseLen int) []span.Range {
	cov := rep.Coverage
	ns := cov.Size()
	g := cov.FirstGap()
	if g >= ns {
		return nil
	}

	var out []span.Range
	for start := g; start < ns; start++ {
		end := start + maxPhraseLen - 1
		if end > ns-1 {
			end = ns - 1
		}
		for stop := start; stop <= end; stop++ {
			r := span.Range{From: start, To: stop}
			if cov.Overlaps(start, stop) {
				continue
			}
			if sentence.Type() == source.WordLattice {
				if !sentence.CoveragePossible(r) {
					continue
				}
				if !sentence.ExtensionPossible(rep.CurrSourceRange, r) {
					continue
				}
			}
			if maxDistortion < 0 || start == g {
				out = append(out, r)
				continue
			}
			if sentence.DistortionDistance(r, span.Range{From: g, To: g}) <= maxDistortion {
				out = append(out, r)
			}
		}
	}
	return out
}
