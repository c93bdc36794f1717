package manager

import (
	"context"
	"testing"

	"github.com/neubig/mosesdecoder/internal/config"
	"github.com/neubig/mosesdecoder/pkg/coverage"
	"github.com/neubig/mosesdecoder/pkg/option"
	"github.com/neubig/mosesdecoder/pkg/source"
	"github.com/neubig/mosesdecoder/pkg/span"
)

type zeroLM struct{}

func (zeroLM) Order() int { return 1 }
func (zeroLM) ScoreExtension(context, phrase []string) (float64, []string) { return 0, nil }

// fixedStore serves a fixed table of options per range, with zero future
// cost everywhere (an admissible but uninformative estimate).
type fixedStore struct {
	table map[span.Range][]*option.TranslationOption
}

func (f *fixedStore) CreateFor(option.Sentence) error { return nil }

func (f *fixedStore) OptionsFor(r span.Range) []*option.TranslationOption {
	return f.table[r]
}

func (f *fixedStore) FutureScore(cov *coverage.Bitmap) float64 { return 0 }

func TestDecodeSeedOnly(t *testing.T) {
	sentence := source.NewLinear([]string{"a"})
	store := &fixedStore{table: map[span.Range][]*option.TranslationOption{
		{From: 0, To: 0}: {{SourceRange: span.Range{From: 0, To: 0}, TargetPhrase: []string{"x"}, TotalScore: 0}},
	}}

	cfg := config.Default()
	cfg.MaxDistortion = -1

	m, err := New(cfg, sentence, store, zeroLM{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	state := m.Decode(context.Background())

	if state.DeadlineExceeded {
		t.Fatal("should not hit a deadline")
	}
	final := state.Stacks[1]
	if final.Len() != 1 {
		t.Fatalf("final stack len = %d, want 1", final.Len())
	}
	best := final.GetBestHypothesis()
	if best.ScoreTotal != 0 {
		t.Errorf("best.ScoreTotal = %f, want 0", best.ScoreTotal)
	}
}

func TestDecodeDistortionLimitRejectsNonGapStart(t *testing.T) {
	sentence := source.NewLinear([]string{"a", "b", "c"})
	opt := func(r span.Range) *option.TranslationOption {
		return &option.TranslationOption{SourceRange: r, TargetPhrase: []string{"x"}, TotalScore: 0}
	}
	store := &fixedStore{table: map[span.Range][]*option.TranslationOption{
		{From: 0, To: 0}: {opt(span.Range{From: 0, To: 0})},
		{From: 1, To: 1}: {opt(span.Range{From: 1, To: 1})},
		{From: 2, To: 2}: {opt(span.Range{From: 2, To: 2})},
	}}

	cfg := config.Default()
	cfg.MaxDistortion = 0
	cfg.MaxPhraseLen = 1

	m, err := New(cfg, sentence, store, zeroLM{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// directly exercise the legal-extension policy against the seed.
	seed := m.arena.Seed(sentence.Size())
	ranges := legalExtensions(seed, sentence, cfg.MaxDistortion, cfg.MaxPhraseLen)
	if len(ranges) != 1 || ranges[0] != (span.Range{From: 0, To: 0}) {
		t.Errorf("legal extensions from empty coverage = %v, want only [0,0]", ranges)
	}
}

func TestDecodeRoutesToCorrectCoverageCountStack(t *testing.T) {
	sentence := source.NewLinear([]string{"a", "b"})
	opt := func(r span.Range, score float64) *option.TranslationOption {
		return &option.TranslationOption{SourceRange: r, TargetPhrase: []string{"x"}, TotalScore: score}
	}
	store := &fixedStore{table: map[span.Range][]*option.TranslationOption{
		{From: 0, To: 0}: {opt(span.Range{From: 0, To: 0}, -1)},
		{From: 1, To: 1}: {opt(span.Range{From: 1, To: 1}, -1)},
		{From: 0, To: 1}: {opt(span.Range{From: 0, To: 1}, -1)},
	}}

	cfg := config.Default()
	cfg.MaxDistortion = -1

	m, err := New(cfg, sentence, store, zeroLM{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	state := m.Decode(context.Background())

	if state.Stacks[1].Len() == 0 {
		t.Error("stack 1 (one word covered) should be non-empty")
	}
	if state.Stacks[2].Len() == 0 {
		t.Error("stack 2 (fully covered) should be non-empty")
	}
}

func TestDecodeOverLatticeAllowsFirstExtension(t *testing.T) {
	// single-path lattice over two tokens: node 0 -> node 1 -> node 2.
	sentence := source.NewLattice([]string{"a", "b"}, []source.Arc{
		{From: 0, To: 1},
		{From: 1, To: 2},
	})
	opt := func(r span.Range) *option.TranslationOption {
		return &option.TranslationOption{SourceRange: r, TargetPhrase: []string{"x"}, TotalScore: 0}
	}
	store := &fixedStore{table: map[span.Range][]*option.TranslationOption{
		{From: 0, To: 0}: {opt(span.Range{From: 0, To: 0})},
		{From: 1, To: 1}: {opt(span.Range{From: 1, To: 1})},
	}}

	cfg := config.Default()
	cfg.MaxDistortion = -1

	m, err := New(cfg, sentence, store, zeroLM{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	state := m.Decode(context.Background())

	if state.DeadlineExceeded {
		t.Fatal("should not hit a deadline")
	}
	// before the seed's CurrSourceRange sentinel fix, the first extension
	// off the seed was always rejected by the lattice's ExtensionPossible
	// check, leaving every stack after stack 0 empty.
	if state.Stacks[1].Len() == 0 {
		t.Fatal("stack 1 should be non-empty: the seed's first extension must be legal")
	}
	if state.Stacks[2].Len() == 0 {
		t.Fatal("stack 2 (fully covered) should be non-empty")
	}
}

func TestDecodeRespectsCancelledContext(t *testing.T) {
	sentence := source.NewLinear([]string{"a", "b", "c"})
	store := &fixedStore{table: map[span.Range][]*option.TranslationOption{}}
	cfg := config.Default()

	m, err := New(cfg, sentence, store, zeroLM{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := m.Decode(ctx)
	if !state.DeadlineExceeded {
		t.Error("expected DeadlineExceeded with a pre-cancelled context")
	}
}
