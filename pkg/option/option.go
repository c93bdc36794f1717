// Package option defines the translation-option type and the store
// interface the decoder queries for candidates. Loading phrase tables and
// estimating future scores happens elsewhere; only the shapes the decoder
// core consumes are defined here.
package option

import (
	"github.com/neubig/mosesdecoder/pkg/coverage"
	"github.com/neubig/mosesdecoder/pkg/span"
)

// TranslationOption is a source range with a weighted target-phrase
// candidate. Immutable after construction.
type TranslationOption struct {
	SourceRange  span.Range
	TargetPhrase []string
	FeatureScore float64 // translation-model contribution, pre-weighted
	TotalScore   float64 // precomputed total (includes feature + future-ish terms the store chooses to fold in)
}

// Store is the external collaborator that materializes translation
// options for a sentence and answers span queries. Loading the phrase
// table is one-shot via CreateFor; OptionsFor and FutureScore are called
// many times during one decode.
type Store interface {
	// CreateFor materializes every candidate option for the sentence. It is
	// called exactly once, before the decode loop starts.
	CreateFor(sentence Sentence) error

	// OptionsFor returns every option covering exactly r, or nil if none
	// exist.
	OptionsFor(r span.Range) []*TranslationOption

	// FutureScore returns an admissible estimate of the remaining
	// translation cost for the uncovered positions of cov.
	FutureScore(cov *coverage.Bitmap) float64
}

// Sentence is the minimal view of the source sentence the option store
// needs to build its candidate set; it is a subset of source.Sentence to
// avoid an import cycle between option and source.
type Sentence interface {
	Size() int
	Token(i int) string
}
