package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/miluoalbert/invest-master/date"
	"github.com/miluoalbert/invest-master/fundjson"
	"gopkg.in/yaml.v3"
)

// importComponentsCmd downloads fund composition feeds and stores the
// resulting look-through rows.
type importComponentsCmd struct {
	feedsFile string
	date      string
	rps       int
	dryRun    bool
}

func (*importComponentsCmd) Name() string { return "import-components" }
func (*importComponentsCmd) Synopsis() string {
	return "fetch fund composition feeds and store their look-through rows"
}
func (*importComponentsCmd) Usage() string {
	return `invest import-components -feeds <feeds.yaml> [-d <report_date>] [-n]

  Downloads each configured holdings feed, extracts the composition rows
  and upserts them, keyed by (parent, report date, underlying).

  The feeds file lists one entry per fund:

    - parent: SPY
      url: https://provider.example/spy/holdings.json
      mapping:
        items: $.holdings
        ticker: $.symbol
        name: $.name
        weight: $.weight
        percent_weights: true
`
}

func (c *importComponentsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.feedsFile, "feeds", "feeds.yaml", "YAML file listing the holdings feeds")
	f.StringVar(&c.date, "d", date.Today().String(), "Report date stamped on the imported rows")
	f.IntVar(&c.rps, "rps", 2, "Maximum requests per second against providers")
	f.BoolVar(&c.dryRun, "n", false, "Fetch and parse but do not store")
}

func (c *importComponentsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	raw, err := os.ReadFile(c.feedsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading feeds file: %v\n", err)
		return subcommands.ExitFailure
	}
	var feeds []fundjson.Feed
	if err := yaml.Unmarshal(raw, &feeds); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing feeds file: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(feeds) == 0 {
		fmt.Fprintln(os.Stderr, "Error: feeds file lists no feeds")
		return subcommands.ExitFailure
	}

	log := newLogger()
	defer log.Sync()

	fetcher := fundjson.NewFetcher(c.rps, log)
	defer fetcher.Close()

	comps, err := fetcher.FetchAll(ctx, feeds, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching compositions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Fetched %d composition rows from %d feeds.\n", len(comps), len(feeds))

	if c.dryRun {
		return subcommands.ExitSuccess
	}

	store, err := openStore(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.UpsertComponents(ctx, comps); err != nil {
		fmt.Fprintf(os.Stderr, "Error storing compositions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
