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
)

type exposureCmd struct {
	date     string
	currency string
	maxDepth int
}

func (*exposureCmd) Name() string     { return "exposure" }
func (*exposureCmd) Synopsis() string { return "decompose a fund into its ultimate underlyings" }
func (*exposureCmd) Usage() string {
	return `invest exposure [-d <date>] [-depth <n>] <ticker>

  Resolves the look-through composition of a fund as of a date: every
  ultimate underlying with its effective weight.
`
}

func (c *exposureCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Date for the exposure report")
	f.StringVar(&c.currency, "c", baseCurrency(), "Reporting currency")
	f.IntVar(&c.maxDepth, "depth", invest.DefaultMaxDepth, "Maximum look-through recursion depth")
}

func (c *exposureCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one ticker is expected")
		return subcommands.ExitUsageError
	}
	ticker := f.Arg(0)

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

	resolver := invest.NewResolver(book.Compositions, book.System.Market, c.maxDepth)
	exposures, err := resolver.Resolve(ticker, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving %s: %v\n", ticker, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ExposureMarkdown(exposures))
	return subcommands.ExitSuccess
}
