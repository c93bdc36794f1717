package main

import (
	"fmt"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"github.com/neubig/mosesdecoder/internal/diagnostics"
	"github.com/neubig/mosesdecoder/pkg/decoder"
)

// DecodeCmd runs one sentence to completion and prints its best
// translation.
func DecodeCmd() *commander.Command {
	cmd := &commander.Command{
		UsageLine: "decode -table <phrase table> -sentence <text>",
		Short:     "decode a sentence and print its best translation",
		Long: `
decode a sentence and print its best translation

	$ decoder decode -table phrases.json -sentence "le chat noir"

`,
		Flag: *flag.NewFlagSet("decode", flag.ExitOnError),
	}
	rf := bindRunFlags(&cmd.Flag)
	cmd.Run = func(cmd *commander.Command, args []string) error {
		runDecode(rf)
		return nil
	}
	return cmd
}

func runDecode(rf *runFlags) {
	id := rf.runID()
	log := rf.logger()

	d, sentence, err := rf.buildDecoder()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	ctx, cancel := rf.context()
	defer cancel()

	log.Logf(diagnostics.Normal, "run %s: decoding %q", id, rf.sentence)
	state, err := d.Decode(ctx, sentence)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	best := decoder.Best(state)
	if best == nil {
		fmt.Println("no translation found")
		return
	}
	fmt.Printf("score=%.4f deadline_exceeded=%v\n", best.ScoreTotal, state.DeadlineExceeded)
	fmt.Println(best)

	sentStats := decoder.Stats(id, state)
	log.Logf(diagnostics.Trace, "run %s: %s", id, sentStats)
	summary := decoder.ScoreSummary(state)
	log.Logf(diagnostics.Debug, "run %s: score distribution mean=%.4f stddev=%.4f min=%.4f max=%.4f over %d hypotheses",
		id, summary.Mean, summary.StdDev, summary.Min, summary.Max, summary.Count)

	if err := rf.recordStats(sentStats, best.ScoreTotal, len(state.Stacks), state.DeadlineExceeded); err != nil {
		fmt.Println("warning: failed to persist stats:", err)
	}
}

// NBestCmd runs a sentence and prints its top-count translations.
func NBestCmd() *commander.Command {
	cmd := &commander.Command{
		UsageLine: "nbest -table <phrase table> -sentence <text> -count <n>",
		Short:     "decode a sentence and print its n best translations",
		Flag:      *flag.NewFlagSet("nbest", flag.ExitOnError),
	}
	rf := bindRunFlags(&cmd.Flag)
	var count int
	var distinct bool
	cmd.Flag.IntVar(&count, "count", 5, "number of translations to emit")
	cmd.Flag.BoolVar(&distinct, "distinct", false, "suppress duplicate surface forms")
	rf.nbestEnabled = true

	cmd.Run = func(cmd *commander.Command, args []string) error {
		rf.nbestEnabled = true
		runNBest(rf, count, distinct)
		return nil
	}
	return cmd
}

func runNBest(rf *runFlags, count int, distinct bool) {
	id := rf.runID()
	log := rf.logger()

	d, sentence, err := rf.buildDecoder()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	ctx, cancel := rf.context()
	defer cancel()

	log.Logf(diagnostics.Normal, "run %s: decoding %q for nbest", id, rf.sentence)
	state, err := d.Decode(ctx, sentence)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	paths := d.NBest(state, count, distinct)
	sentStats := decoder.Stats(id, state)
	log.Logf(diagnostics.Trace, "run %s: %s", id, sentStats)
	var bestScore float64
	if best := decoder.Best(state); best != nil {
		bestScore = best.ScoreTotal
	}
	if err := rf.recordStats(sentStats, bestScore, len(state.Stacks), state.DeadlineExceeded); err != nil {
		fmt.Println("warning: failed to persist stats:", err)
	}
	for i, p := range paths {
		fmt.Printf("%d. score=%.4f %s\n", i+1, p.Score, p.Surface())
	}
}

// StacksCmd runs a sentence and prints per-stack diagnostics.
func StacksCmd() *commander.Command {
	cmd := &commander.Command{
		UsageLine: "stacks -table <phrase table> -sentence <text>",
		Short:     "decode a sentence and print per-stack size diagnostics",
		Flag:      *flag.NewFlagSet("stacks", flag.ExitOnError),
	}
	rf := bindRunFlags(&cmd.Flag)
	cmd.Run = func(cmd *commander.Command, args []string) error {
		runStacks(rf)
		return nil
	}
	return cmd
}

func runStacks(rf *runFlags) {
	d, sentence, err := rf.buildDecoder()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	ctx, cancel := rf.context()
	defer cancel()

	state, err := d.Decode(ctx, sentence)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	for i, n := range decoder.StackSizes(state) {
		best, worst := state.StackScoreRange(i)
		fmt.Printf("stack %2d: size=%-4d best=%.4f worst=%.4f\n", i, n, best, worst)
	}
}
