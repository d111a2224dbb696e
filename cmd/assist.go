package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/agent"
	"github.com/miluoalbert/invest-master/date"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	currency string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `invest assist [question...]

  Start an interactive session with the AI assistant. It can read the
  portfolio, decompose funds and research the markets.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", baseCurrency(), "Reporting currency")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	log := newLogger()
	defer log.Sync()
	store, err := openStore(log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error connecting to store:", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	load := func(ctx context.Context, on date.Date) (*invest.Book, error) {
		return invest.Load(ctx, store, on, c.currency)
	}

	analyst := agent.NewAnalyst(load)
	researcher := agent.NewResearcher()
	a := agent.New(os.Stdout, os.Stdin, analyst, researcher)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
