// Package stats accumulates per-sentence decoding statistics, replacing
// a global singleton with an explicit value threaded through one decode.
package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/neubig/mosesdecoder/pkg/stack"
)

// Summary is the distributional snapshot of one stack's final scores,
// used for diagnostics and regression comparisons across decoder runs.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes Summary over scores. Returns the zero Summary for an
// empty slice.
func Summarize(scores []float64) Summary {
	if len(scores) == 0 {
		return Summary{}
	}
	mean, stddev := stat.MeanStdDev(scores, nil)
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return Summary{Count: len(scores), Mean: mean, StdDev: stddev, Min: min, Max: max}
}

// Sentence aggregates the per-stack Stats produced over one decode,
// mirroring Moses' SentenceStats: separate discard/recombination/pruning
// counters kept across every stack a sentence visits.
type Sentence struct {
	ID string // uuid-generated session identity for this decode

	PerStack []stack.Stats
}

// Totals sums every stack's counters into one Stats value.
func (s Sentence) Totals() stack.Stats {
	var t stack.Stats
	for _, st := range s.PerStack {
		t.Discarded += st.Discarded
		t.Recombined += st.Recombined
		t.Pruned += st.Pruned
	}
	return t
}

func (s Sentence) String() string {
	t := s.Totals()
	return fmt.Sprintf("sentence %s: discarded=%d recombined=%d pruned=%d over %d stacks",
		s.ID, t.Discarded, t.Recombined, t.Pruned, len(s.PerStack))
}
