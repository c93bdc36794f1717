package decoder

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

type fixedStore struct {
	table map[span.Range][]*option.TranslationOption
}

func (f *fixedStore) CreateFor(option.Sentence) error                   { return nil }
func (f *fixedStore) OptionsFor(r span.Range) []*option.TranslationOption { return f.table[r] }
func (f *fixedStore) FutureScore(cov *coverage.Bitmap) float64          { return 0 }

func TestDecodeBestAndNBest(t *testing.T) {
	sentence := source.NewLinear([]string{"a", "b"})
	store := &fixedStore{table: map[span.Range][]*option.TranslationOption{
		{From: 0, To: 0}: {
			{SourceRange: span.Range{From: 0, To: 0}, TargetPhrase: []string{"x"}, TotalScore: -1},
			{SourceRange: span.Range{From: 0, To: 0}, TargetPhrase: []string{"z"}, TotalScore: -5},
		},
		{From: 1, To: 1}: {
			{SourceRange: span.Range{From: 1, To: 1}, TargetPhrase: []string{"y"}, TotalScore: -1},
		},
	}}

	cfg := config.Default()
	cfg.MaxDistortion = -1
	cfg.NBestEnabled = true

	d, err := New(cfg, store, zeroLM{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	state, err := d.Decode(context.Background(), sentence)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	best := Best(state)
	if best == nil {
		t.Fatal("Best() returned nil")
	}
	if best.ScoreTotal != -2 {
		t.Errorf("best score = %f, want -2", best.ScoreTotal)
	}

	sizes := StackSizes(state)
	if len(sizes) != 3 {
		t.Fatalf("len(sizes) = %d, want 3", len(sizes))
	}

	paths := d.NBest(state, 2, false)
	if len(paths) == 0 {
		t.Fatal("NBest returned no paths")
	}
	if paths[0].Score != best.ScoreTotal {
		t.Errorf("first n-best path score = %f, want %f", paths[0].Score, best.ScoreTotal)
	}
}

func TestDecodeRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxStackSize = 0
	if _, err := New(cfg, &fixedStore{}, zeroLM{}); err == nil {
		t.Error("expected ConfigError for invalid config")
	}
}
