package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gonuts/flag"

	"github.com/neubig/mosesdecoder/internal/config"
	"github.com/neubig/mosesdecoder/internal/diagnostics"
	"github.com/neubig/mosesdecoder/internal/stats"
	"github.com/neubig/mosesdecoder/internal/statsstore"
	"github.com/neubig/mosesdecoder/internal/testmodel"
	"github.com/neubig/mosesdecoder/pkg/decoder"
	"github.com/neubig/mosesdecoder/pkg/source"
)

// runFlags are the flags every subcommand shares: the phrase table to
// load, the sentence to decode, and the search's configuration knobs.
type runFlags struct {
	table           string
	sentence        string
	maxStackSize    int
	beamThreshold   float64
	maxDistortion   int
	maxPhraseLen    int
	cubeTopK        int
	strictStackSize bool
	nbestEnabled    bool
	nbestFactor     int
	timeoutMS       int
	perWordFuture   float64
	perWordLM       float64
	lmOrder         int
	verbosity       int
	statsDB         string
}

// runID identifies one decode invocation in logs and, if -stats-db is
// set, in the persisted sentence_runs table.
func (rf *runFlags) runID() string {
	return uuid.NewString()
}

func (rf *runFlags) logger() diagnostics.Logger {
	return diagnostics.Logger{Level: diagnostics.Level(rf.verbosity)}
}

// recordStats opens -stats-db (if set) and inserts one sentence-run row,
// folding sentence's per-stack counters down via Totals.
func (rf *runFlags) recordStats(sentence stats.Sentence, bestScore float64, stackCount int, deadlineHit bool) error {
	if rf.statsDB == "" {
		return nil
	}
	s, err := statsstore.Open(rf.statsDB)
	if err != nil {
		return fmt.Errorf("open stats db: %w", err)
	}
	defer s.Close()

	totals := sentence.Totals()
	return s.Insert(statsstore.Record{
		ID:          sentence.ID,
		Discarded:   totals.Discarded,
		Recombined:  totals.Recombined,
		Pruned:      totals.Pruned,
		BestScore:   bestScore,
		StackCount:  stackCount,
		DeadlineHit: deadlineHit,
	}, time.Now())
}

func bindRunFlags(fs *flag.FlagSet) *runFlags {
	rf := &runFlags{}
	fs.StringVar(&rf.table, "table", "", "phrase table JSON file")
	fs.StringVar(&rf.sentence, "sentence", "", "space-separated source sentence")
	fs.IntVar(&rf.maxStackSize, "max-stack-size", config.Default().MaxStackSize, "max hypotheses per stack")
	fs.Float64Var(&rf.beamThreshold, "beam-threshold", config.Default().BeamThreshold, "beam threshold (log-score, <= 0)")
	fs.IntVar(&rf.maxDistortion, "max-distortion", config.Default().MaxDistortion, "max distortion, < 0 disables")
	fs.IntVar(&rf.maxPhraseLen, "max-phrase-len", config.Default().MaxPhraseLen, "max source phrase length")
	fs.IntVar(&rf.cubeTopK, "cube-top-k", config.Default().CubeTopK, "cube pruning top-k")
	fs.BoolVar(&rf.strictStackSize, "strict-stack-size", config.Default().StrictStackSize, "cap stacks at exactly max-stack-size, breaking threshold ties by hypothesis ID")
	fs.BoolVar(&rf.nbestEnabled, "nbest-enabled", false, "retain arcs for n-best extraction")
	fs.IntVar(&rf.nbestFactor, "nbest-factor", config.Default().NBestFactor, "n-best contenders-queue factor")
	fs.IntVar(&rf.timeoutMS, "timeout-ms", 0, "decode deadline in milliseconds, 0 = none")
	fs.Float64Var(&rf.perWordFuture, "per-word-future", -0.1, "constant per-uncovered-word future-cost estimate")
	fs.Float64Var(&rf.perWordLM, "per-word-lm", -0.5, "constant per-word language-model penalty")
	fs.IntVar(&rf.lmOrder, "lm-order", 3, "language-model n-gram order")
	fs.IntVar(&rf.verbosity, "verbose", int(diagnostics.Off), "trace verbosity: 0=off 1=normal 2=trace 3=debug")
	fs.StringVar(&rf.statsDB, "stats-db", "", "SQLite path to persist per-run stats, empty = disabled")
	return rf
}

func (rf *runFlags) buildDecoder() (*decoder.Decoder, source.Sentence, error) {
	if rf.sentence == "" {
		return nil, nil, fmt.Errorf("-sentence is required")
	}
	if rf.table == "" {
		return nil, nil, fmt.Errorf("-table is required")
	}

	table, err := testmodel.LoadTable(rf.table)
	if err != nil {
		return nil, nil, err
	}
	store := testmodel.NewStore(table, rf.perWordFuture)
	model := testmodel.Model{NgramOrder: rf.lmOrder, PerWordLM: rf.perWordLM}

	cfg := config.Default()
	cfg.MaxStackSize = rf.maxStackSize
	cfg.BeamThreshold = rf.beamThreshold
	cfg.MaxDistortion = rf.maxDistortion
	cfg.MaxPhraseLen = rf.maxPhraseLen
	cfg.CubeTopK = rf.cubeTopK
	cfg.StrictStackSize = rf.strictStackSize
	cfg.NBestEnabled = rf.nbestEnabled
	cfg.NBestFactor = rf.nbestFactor

	d, err := decoder.New(cfg, store, model)
	if err != nil {
		return nil, nil, err
	}

	tokens := strings.Fields(rf.sentence)
	sentence := source.NewLinear(tokens)
	return d, sentence, nil
}

func (rf *runFlags) context() (context.Context, context.CancelFunc) {
	if rf.timeoutMS <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), time.Duration(rf.timeoutMS)*time.Millisecond)
}
