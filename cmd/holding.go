package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/miluoalbert/invest-master/date"
	"github.com/miluoalbert/invest-master/renderer"
)

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	date     string
	currency string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display detailed holdings for a specific date" }
func (*holdingCmd) Usage() string {
	return `invest holding [-d <date>] [-c <currency>]

  Displays the portfolio holdings (securities and cash) on a given date,
  valued in the reporting currency.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date for the holdings report")
	f.StringVar(&c.currency, "c", baseCurrency(), "Reporting currency for market values")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	book, cleanup, err := loadBook(ctx, on, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	valuation, err := book.System.Valuation(on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HoldingMarkdown(valuation))
	return subcommands.ExitSuccess
}
