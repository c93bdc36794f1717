// Package testmodel provides a JSON-fed in-memory TranslationOptionStore
// and LanguageModel, standing in for a real phrase-table lookup and LM
// runtime. Intended for the CLI demo and for tests that want a small,
// fully controlled model.
package testmodel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/neubig/mosesdecoder/pkg/coverage"
	"github.com/neubig/mosesdecoder/pkg/option"
	"github.com/neubig/mosesdecoder/pkg/span"
)

// PhraseEntry is one row of a phrase table file: a contiguous source
// span and a weighted target-phrase candidate.
type PhraseEntry struct {
	From         int      `json:"from"`
	To           int      `json:"to"`
	TargetPhrase []string `json:"target_phrase"`
	Score        float64  `json:"score"`
}

// Table is a flat JSON phrase table, the unit LoadTable reads.
type Table struct {
	Entries []PhraseEntry `json:"entries"`
}

// LoadTable reads a Table from path.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read phrase table %s: %w", path, err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parse phrase table %s: %w", path, err)
	}
	return t, nil
}

// Store is an in-memory option.Store backed by a Table, with a constant
// per-word future-cost estimate standing in for a real future-cost table.
type Store struct {
	byRange       map[span.Range][]*option.TranslationOption
	perWordFuture float64
}

// NewStore indexes table by source range. perWordFuture is multiplied by
// the number of uncovered positions to produce FutureScore's estimate.
func NewStore(table Table, perWordFuture float64) *Store {
	s := &Store{byRange: make(map[span.Range][]*option.TranslationOption), perWordFuture: perWordFuture}
	for _, e := range table.Entries {
		r := span.Range{From: e.From, To: e.To}
		s.byRange[r] = append(s.byRange[r], &option.TranslationOption{
			SourceRange:  r,
			TargetPhrase: e.TargetPhrase,
			FeatureScore: e.Score,
			TotalScore:   e.Score,
		})
	}
	return s
}

func (s *Store) CreateFor(option.Sentence) error { return nil }

func (s *Store) OptionsFor(r span.Range) []*option.TranslationOption {
	return s.byRange[r]
}

func (s *Store) FutureScore(cov *coverage.Bitmap) float64 {
	uncovered := cov.Size() - cov.CountSet()
	return s.perWordFuture * float64(uncovered)
}

// Model is a degenerate n-gram LanguageModel: it scores every extension
// with a constant per-word penalty that ignores the context, while still
// carrying the last NgramOrder-1 tokens forward as the new context, enough
// to exercise the decoder's LM-call sites without a real LM runtime.
type Model struct {
	NgramOrder int
	PerWordLM  float64
}

func (m Model) Order() int { return m.NgramOrder }

func (m Model) ScoreExtension(context, phrase []string) (float64, []string) {
	delta := m.PerWordLM * float64(len(phrase))
	merged := append(append([]string{}, context...), phrase...)
	if n := m.NgramOrder - 1; n >= 0 && len(merged) > n {
		merged = merged[len(merged)-n:]
	}
	return delta, merged
}
