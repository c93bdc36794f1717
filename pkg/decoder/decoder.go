// Package decoder is the facade exposed to callers: decode, best, nbest,
// stack_sizes. It wires together Manager (the search loop) and Extractor
// (n-best mining) behind the four operations the core promises external
// callers.
package decoder

import (
	"context"

	"github.com/neubig/mosesdecoder/internal/config"
	"github.com/neubig/mosesdecoder/internal/stats"
	"github.com/neubig/mosesdecoder/pkg/hypothesis"
	"github.com/neubig/mosesdecoder/pkg/lm"
	"github.com/neubig/mosesdecoder/pkg/manager"
	"github.com/neubig/mosesdecoder/pkg/nbest"
	"github.com/neubig/mosesdecoder/pkg/option"
	"github.com/neubig/mosesdecoder/pkg/source"
	"github.com/neubig/mosesdecoder/pkg/stack"
)

// Decoder holds the configuration and external collaborators shared
// across every sentence it decodes; it carries no per-sentence state.
type Decoder struct {
	Config config.Config
	Store  option.Store
	Model  lm.Model
}

// New validates cfg and returns a ready Decoder.
func New(cfg config.Config, store option.Store, model lm.Model) (*Decoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{Config: cfg, Store: store, Model: model}, nil
}

// Decode runs one sentence's search to completion or until ctx expires.
func (d *Decoder) Decode(ctx context.Context, sentence source.Sentence) (*manager.State, error) {
	m, err := manager.New(d.Config, sentence, d.Store, d.Model)
	if err != nil {
		return nil, err
	}
	return m.Decode(ctx), nil
}

// Best returns the highest-scoring hypothesis of state, or nil.
func Best(state *manager.State) *hypothesis.Hypothesis {
	return state.Best()
}

// NBest mines up to count target strings from state's final (or, under a
// deadline, partial) stack.
func (d *Decoder) NBest(state *manager.State, count int, distinct bool) []*nbest.Path {
	final := lastNonEmpty(state)
	if final == nil {
		return nil
	}
	ex := nbest.Extractor{
		Arena:       state.Arena,
		Distinct:    distinct,
		NBestFactor: d.Config.NBestFactor,
	}
	return ex.Extract(final.GetSortedList(), count)
}

// StackSizes returns state's per-stack member counts, best for logging.
func StackSizes(state *manager.State) []int {
	return state.StackSizes()
}

// Stats builds the stats.Sentence counters for state, identified by id.
func Stats(id string, state *manager.State) stats.Sentence {
	perStack := make([]stack.Stats, len(state.Stacks))
	for i, s := range state.Stacks {
		perStack[i] = s.Stats
	}
	return stats.Sentence{ID: id, PerStack: perStack}
}

// ScoreSummary summarizes the score distribution of state's final
// (or, under a deadline, last non-empty) stack.
func ScoreSummary(state *manager.State) stats.Summary {
	final := lastNonEmpty(state)
	if final == nil {
		return stats.Summary{}
	}
	members := final.GetSortedList()
	scores := make([]float64, len(members))
	for i, h := range members {
		scores[i] = h.ScoreTotal
	}
	return stats.Summarize(scores)
}

func lastNonEmpty(state *manager.State) *stack.Stack {
	for i := len(state.Stacks) - 1; i >= 0; i-- {
		if state.Stacks[i].Len() > 0 {
			return state.Stacks[i]
		}
	}
	return nil
}
