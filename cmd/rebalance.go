package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/date"
	"github.com/miluoalbert/invest-master/renderer"
	"github.com/shopspring/decimal"
)

type rebalanceCmd struct {
	date         string
	currency     string
	strategyFile string
	strategy     string
	tolerance    float64
	maxDepth     int
	includeCash  bool
}

func (*rebalanceCmd) Name() string { return "rebalance" }
func (*rebalanceCmd) Synopsis() string {
	return "compare actual look-through exposure against a target strategy"
}
func (*rebalanceCmd) Usage() string {
	return `invest rebalance [-d <date>] (-f <strategy.yaml> | -s <strategy>) [-t <tolerance>]

  Evaluates a rebalancing strategy: aggregates the portfolio's look-through
  exposure per target, computes the drift of each target and flags the ones
  beyond tolerance. Targets come from a YAML file (-f) or from the stored
  strategy by name (-s).
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date for the evaluation")
	f.StringVar(&c.currency, "c", baseCurrency(), "Reporting currency")
	f.StringVar(&c.strategyFile, "f", "", "YAML strategy file")
	f.StringVar(&c.strategy, "s", "", "Stored strategy name")
	f.Float64Var(&c.tolerance, "t", 0, "Tolerance override applied to every target (e.g. 0.02)")
	f.IntVar(&c.maxDepth, "depth", invest.DefaultMaxDepth, "Maximum look-through recursion depth")
	f.BoolVar(&c.includeCash, "cash", false, "Count cash balances as CASH class exposure")
}

func (c *rebalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.strategyFile == "") == (c.strategy == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of -f or -s is expected")
		return subcommands.ExitUsageError
	}

	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	log := newLogger()
	store, err := openStore(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()
	defer log.Sync()

	strategy := c.strategy
	var targets []invest.Target
	if c.strategyFile != "" {
		strategy, targets, err = invest.LoadStrategy(c.strategyFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading strategy: %v\n", err)
			return subcommands.ExitFailure
		}
	} else {
		targets, err = store.Targets(ctx, strategy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading strategy %q: %v\n", strategy, err)
			return subcommands.ExitFailure
		}
		if len(targets) == 0 {
			fmt.Fprintf(os.Stderr, "Error: strategy %q has no targets\n", strategy)
			return subcommands.ExitFailure
		}
	}

	book, err := invest.Load(ctx, store, on, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	opts := invest.EvaluateOptions{
		MaxDepth:    c.maxDepth,
		IncludeCash: c.includeCash,
	}
	if c.tolerance > 0 {
		opts.Tolerance = decimal.NewFromFloat(c.tolerance)
	}

	report, err := invest.Evaluate(book.System, book.Compositions, targets, strategy, on, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error evaluating strategy: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RebalanceMarkdown(report))
	return subcommands.ExitSuccess
}
