package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/miluoalbert/invest-master/cmd"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the CLI for shell completion. Complete() exits the
// process when invoked by the shell, and is a no-op otherwise.
func completion() {
	dateFlags := map[string]complete.Predictor{
		"d": predict.Nothing,
		"c": predict.Set{"CNY", "USD", "EUR", "HKD"},
	}
	cli := &complete.Command{
		Sub: map[string]*complete.Command{
			"holding": {Flags: dateFlags},
			"summary": {Flags: dateFlags},
			"exposure": {Flags: map[string]complete.Predictor{
				"d":     predict.Nothing,
				"c":     predict.Set{"CNY", "USD", "EUR", "HKD"},
				"depth": predict.Set{"1", "2", "3", "4"},
			}},
			"rebalance": {Flags: map[string]complete.Predictor{
				"d":    predict.Nothing,
				"f":    predict.Files("*.yaml"),
				"s":    predict.Nothing,
				"t":    predict.Nothing,
				"cash": predict.Nothing,
			}},
			"import-components": {Flags: map[string]complete.Predictor{
				"feeds": predict.Files("*.yaml"),
				"d":     predict.Nothing,
				"n":     predict.Nothing,
			}},
			"migrate": {},
			"topic": {Args: predict.Set{
				"readme", "valuation", "fx", "lookthrough", "rebalancing",
			}},
			"assist": {},
		},
	}
	cli.Complete("invest")
}

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
