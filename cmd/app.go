// Package cmd implements the CLI application to analyze the investment ledger.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/date"
	"github.com/miluoalbert/invest-master/pgstore"
	"go.uber.org/zap"
)

// Register registers every subcommand on the commander.
func Register(c *subcommands.Commander) {
	c.Register(&holdingCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&exposureCmd{}, "reports")
	c.Register(&rebalanceCmd{}, "reports")

	c.Register(&importComponentsCmd{}, "data")
	c.Register(&migrateCmd{}, "data")

	c.Register(&topicCmd{}, "help")
	c.Register(&assistCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// rely on process-wide state for configuration.

// baseCurrency is the reporting currency, overridable per command with -c.
func baseCurrency() string {
	if c := os.Getenv("INVEST_BASE_CURRENCY"); c != "" {
		return c
	}
	return "CNY"
}

// newLogger builds the process logger. Reports go to stdout, logs to stderr.
func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	return logger.Sugar()
}

// openStore loads .env if present and connects to the configured postgres.
func openStore(log *zap.SugaredLogger) (*pgstore.Store, error) {
	// .env is a development convenience, its absence is fine
	_ = godotenv.Load()
	return pgstore.Open(pgstore.NewConfigFromEnv().Setup(), log)
}

// loadBook pulls everything needed to value the portfolio as of 'on'.
func loadBook(ctx context.Context, on date.Date, base string) (*invest.Book, func(), error) {
	log := newLogger()
	store, err := openStore(log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		store.Close()
		log.Sync()
	}
	book, err := invest.Load(ctx, store, on, base)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return book, cleanup, nil
}
