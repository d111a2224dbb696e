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

type summaryCmd struct {
	date     string
	currency string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio's headline numbers" }
func (*summaryCmd) Usage() string {
	return `invest summary [-d <date>] [-c <currency>]

  Displays the total value and its distribution by asset class, currency
  and account on a given date.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date for the summary")
	f.StringVar(&c.currency, "c", baseCurrency(), "Reporting currency for market values")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	printMarkdown(renderer.SummaryMarkdown(valuation))
	return subcommands.ExitSuccess
}
