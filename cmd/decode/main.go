// Command decode is the CLI front end for the phrase-based decoder
// core: it loads a JSON phrase table and a degenerate language model,
// then runs decode/best, nbest, or stacks over one source sentence.
package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

var cmd *commander.Commander

func init() {
	cmd = allCommands()
}

func allCommands() *commander.Commander {
	return &commander.Commander{
		Name: os.Args[0],
		Commands: []*commander.Command{
			DecodeCmd(),
			NBestCmd(),
			StacksCmd(),
		},
		Flag: *flag.NewFlagSet("decode", flag.ExitOnError),
	}
}

func main() {
	if err := cmd.Flag.Parse(os.Args[1:]); err != nil {
		fmt.Printf("**err**: %v\n", err)
		os.Exit(1)
	}

	args := cmd.Flag.Args()
	if err := cmd.Run(args); err != nil {
		fmt.Printf("**err**: %v\n", err)
		os.Exit(1)
	}
}
