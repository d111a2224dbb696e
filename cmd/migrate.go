package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database schema migrations" }
func (*migrateCmd) Usage() string {
	return `invest migrate

  Applies every pending schema migration to the configured postgres.
`
}

func (*migrateCmd) SetFlags(_ *flag.FlagSet) {}

func (c *migrateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger()
	defer log.Sync()

	store, err := openStore(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying migrations: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
