package nbest

import (
	"testing"

	"github.com/neubig/mosesdecoder/pkg/hypothesis"
	"github.com/neubig/mosesdecoder/pkg/option"
	"github.com/neubig/mosesdecoder/pkg/span"
)

func manual(a *hypothesis.Arena, parent *hypothesis.Hypothesis, phrase []string, score float64, r span.Range) *hypothesis.Hypothesis {
	opt := &option.TranslationOption{SourceRange: r, TargetPhrase: phrase}
	h := a.New(parent, opt)
	h.Coverage = parent.Coverage.Union(r.From, r.To)
	h.ScoreTotal = score
	return h
}

func TestNewPathChainAndScore(t *testing.T) {
	a := hypothesis.NewArena()
	seed := a.Seed(2)
	h1 := manual(a, seed, []string{"a"}, -1, span.Range{From: 0, To: 0})
	h2 := manual(a, h1, []string{"b"}, -3, span.Range{From: 1, To: 1})

	p := NewPath(a, h2)

	if len(p.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(p.Nodes))
	}
	if p.Score != -3 {
		t.Errorf("Score = %f, want -3", p.Score)
	}
	if got := p.Surface(); got != "a b" {
		t.Errorf("Surface = %q, want %q", got, "a b")
	}
	wantDeltas := []float64{0, -1, -2}
	for i, d := range p.Deltas {
		if d != wantDeltas[i] {
			t.Errorf("Deltas[%d] = %f, want %f", i, d, wantDeltas[i])
		}
	}
}

func TestDeviationsSubstitutesEdgeKeepsSuffix(t *testing.T) {
	a := hypothesis.NewArena()
	seed := a.Seed(2)

	winner := manual(a, seed, []string{"a"}, -1, span.Range{From: 0, To: 0})
	loser := manual(a, seed, []string{"c"}, -2, span.Range{From: 0, To: 0})
	a.AddArc(winner, loser)

	leaf := manual(a, winner, []string{"b"}, -3, span.Range{From: 1, To: 1})

	p := NewPath(a, leaf)
	devs := p.Deviations(a)

	if len(devs) != 1 {
		t.Fatalf("len(devs) = %d, want 1", len(devs))
	}
	dev := devs[0]

	wantScore := loser.ScoreTotal + (p.Score - winner.ScoreTotal)
	if dev.Score != wantScore {
		t.Errorf("dev.Score = %f, want %f", dev.Score, wantScore)
	}
	if got := dev.Surface(); got != "c b" {
		t.Errorf("dev.Surface = %q, want %q", got, "c b")
	}
	// the leaf-ward suffix (the "b" step) is the identical node, not a copy
	if dev.Nodes[len(dev.Nodes)-1] != leaf {
		t.Error("deviation should share the trailing node with the original path")
	}
}

func TestExtractOrdersByScoreDescending(t *testing.T) {
	a := hypothesis.NewArena()
	seed := a.Seed(2)
	h1 := manual(a, seed, []string{"x"}, -5, span.Range{From: 0, To: 0})
	h2 := manual(a, seed, []string{"y"}, -1, span.Range{From: 1, To: 1})

	e := Extractor{Arena: a}
	out := e.Extract([]*hypothesis.Hypothesis{h1, h2}, 2)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].Surface() != "y" || out[1].Surface() != "x" {
		t.Errorf("order = [%q, %q], want [y, x]", out[0].Surface(), out[1].Surface())
	}
}

func TestExtractDistinctSuppressesDuplicateSurface(t *testing.T) {
	a := hypothesis.NewArena()
	seed := a.Seed(2)

	winner := manual(a, seed, []string{"a"}, -1, span.Range{From: 0, To: 0})
	loser := manual(a, seed, []string{"a"}, -2, span.Range{From: 0, To: 0}) // same surface as winner
	a.AddArc(winner, loser)
	leaf := manual(a, winner, []string{"b"}, -3, span.Range{From: 1, To: 1})

	e := Extractor{Arena: a, Distinct: true, NBestFactor: 10}
	out := e.Extract([]*hypothesis.Hypothesis{leaf}, 5)

	// only one distinct surface ("a b") exists in the whole graph, so only
	// one output is produced even though count=5 and a deviation exists.
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
}

func TestExtractEmptyFinalStack(t *testing.T) {
	a := hypothesis.NewArena()
	e := Extractor{Arena: a}
	if out := e.Extract(nil, 5); out != nil {
		t.Errorf("Extract with no final-stack members = %v, want nil", out)
	}
}
