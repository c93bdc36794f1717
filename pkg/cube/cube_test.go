package cube

import (
	"testing"

	"github.com/neubig/mosesdecoder/pkg/coverage"
	"github.com/neubig/mosesdecoder/pkg/hypothesis"
	"github.com/neubig/mosesdecoder/pkg/option"
	"github.com/neubig/mosesdecoder/pkg/span"
)

type zeroLM struct{}

func (zeroLM) Order() int { return 1 }
func (zeroLM) ScoreExtension(context, phrase []string) (float64, []string) { return 0, nil }

type zeroStore struct{}

func (zeroStore) CreateFor(option.Sentence) error                       { return nil }
func (zeroStore) OptionsFor(span.Range) []*option.TranslationOption     { return nil }
func (zeroStore) FutureScore(cov *coverage.Bitmap) float64              { return 0 }

// buildRow returns n hypotheses, all extending a common seed at disjoint
// ranges so coverage never collides, with the given descending scores.
func buildRow(a *hypothesis.Arena, seed *hypothesis.Hypothesis, scores []float64, offset int) []*hypothesis.Hypothesis {
	rows := make([]*hypothesis.Hypothesis, len(scores))
	for i, sc := range scores {
		opt := &option.TranslationOption{SourceRange: span.Range{From: offset + i, To: offset + i}}
		h := hypothesis.Extend(a, seed, opt, zeroLM{}, zeroStore{}, 0, hypothesis.DistortionScorer{})
		h.ScoreTotal = sc
		rows[i] = h
	}
	return rows
}

func TestPruneMonotoneGridTop3(t *testing.T) {
	a := hypothesis.NewArena()
	seed := a.Seed(20)

	rows := buildRow(a, seed, []float64{0, -1, -2, -3, -4}, 0)
	cols := []*option.TranslationOption{
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: 0},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -1},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -2},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -3},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -4},
	}

	p := Pruner{
		Model:      zeroLM{},
		Store:      zeroStore{},
		Distortion: hypothesis.DistortionScorer{},
		Dist:       func(int, *option.TranslationOption) int { return 0 },
	}

	out := p.Prune(a, rows, cols, 3)
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}

	wantScores := []float64{0, -1, -1}
	for i, h := range out {
		if h.ScoreTotal != wantScores[i] {
			t.Errorf("out[%d].ScoreTotal = %f, want %f", i, h.ScoreTotal, wantScores[i])
		}
	}
	if out[0].GridX != 0 || out[0].GridY != 0 {
		t.Errorf("out[0] grid pos = (%d,%d), want (0,0)", out[0].GridX, out[0].GridY)
	}
}

func TestPruneEmptyInputs(t *testing.T) {
	a := hypothesis.NewArena()
	p := Pruner{Model: zeroLM{}, Store: zeroStore{}, Dist: func(int, *option.TranslationOption) int { return 0 }}
	if out := p.Prune(a, nil, nil, 3); out != nil {
		t.Errorf("Prune with no rows/cols = %v, want nil", out)
	}
}

func TestPruneReleasesDiscardedCandidates(t *testing.T) {
	a := hypothesis.NewArena()
	seed := a.Seed(20)
	rows := buildRow(a, seed, []float64{0}, 0)
	cols := []*option.TranslationOption{
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: 0},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -1},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -2},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -3},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -4},
	}
	p := Pruner{Model: zeroLM{}, Store: zeroStore{}, Dist: func(int, *option.TranslationOption) int { return 0 }}

	out := p.Prune(a, rows, cols, 1)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}

	// every candidate cell extended rows[0], bumping its ref count; every
	// candidate that didn't survive into out must have been released.
	if got := rows[0].RefCount(); got != len(out) {
		t.Errorf("rows[0].RefCount() = %d, want %d (only kept candidates still referencing it)", got, len(out))
	}
}

func TestPruneNeverRevisitsCell(t *testing.T) {
	a := hypothesis.NewArena()
	seed := a.Seed(20)
	rows := buildRow(a, seed, []float64{0, -1}, 0)
	cols := []*option.TranslationOption{
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: 0},
		{SourceRange: span.Range{From: 10, To: 10}, TotalScore: -1},
	}
	p := Pruner{Model: zeroLM{}, Store: zeroStore{}, Dist: func(int, *option.TranslationOption) int { return 0 }}

	out := p.Prune(a, rows, cols, 4) // grid only has 4 cells total
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4 (entire 2x2 grid)", len(out))
	}
}
