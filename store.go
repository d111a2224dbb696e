package invest

import (
	"context"
	"fmt"

	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

// RateQuote is one stored FX observation.
type RateQuote struct {
	Date date.Date
	From string
	To   string
	Rate decimal.Decimal
}

// PriceQuote is one stored closing price.
type PriceQuote struct {
	Date   date.Date
	Ticker string
	Price  decimal.Decimal
}

// TxFilter narrows a transaction query. Zero values match everything.
type TxFilter struct {
	Account string
	Ticker  string
	From    date.Date
	To      date.Date
}

// Matches reports whether the transaction passes the filter.
func (f TxFilter) Matches(tx Transaction) bool {
	if f.Account != "" && tx.Account != f.Account {
		return false
	}
	if f.Ticker != "" && tx.Ticker != f.Ticker {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	return true
}

// DataSource is what the engine needs from a backing store. The postgres
// implementation lives in the pgstore package; tests use in-memory fakes.
type DataSource interface {
	Assets(ctx context.Context) ([]Asset, error)
	Accounts(ctx context.Context) ([]Account, error)
	Transactions(ctx context.Context, filter TxFilter) ([]Transaction, error)
	Prices(ctx context.Context, tickers []string, until date.Date) ([]PriceQuote, error)
	Rates(ctx context.Context, until date.Date) ([]RateQuote, error)
	Components(ctx context.Context, until date.Date) ([]Component, error)
	Targets(ctx context.Context, strategy string) ([]Target, error)
}

// Book is everything loaded from a data source for one valuation date.
type Book struct {
	System       *AccountingSystem
	Compositions *Compositions
	Accounts     []Account
}

// Load pulls every dataset needed to value and analyze the portfolio as of
// 'on', and assembles the in-memory engine around it.
func Load(ctx context.Context, src DataSource, on date.Date, base string) (*Book, error) {
	assets, err := src.Assets(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	market := NewMarketData()
	tickers := make([]string, 0, len(assets))
	for _, asset := range assets {
		market.Add(asset)
		tickers = append(tickers, asset.Ticker)
	}

	prices, err := src.Prices(ctx, tickers, on)
	if err != nil {
		return nil, fmt.Errorf("loading prices: %w", err)
	}
	for _, p := range prices {
		market.Append(p.Ticker, p.Date, p.Price)
	}

	txs, err := src.Transactions(ctx, TxFilter{To: on})
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	ledger := NewLedger()
	ledger.Append(txs...)

	quotes, err := src.Rates(ctx, on)
	if err != nil {
		return nil, fmt.Errorf("loading rates: %w", err)
	}
	rates := NewRateTable()
	for _, q := range quotes {
		rates.Append(q.Date, q.From, q.To, q.Rate)
	}

	rows, err := src.Components(ctx, on)
	if err != nil {
		return nil, fmt.Errorf("loading compositions: %w", err)
	}
	comps := NewCompositions()
	comps.Append(rows...)

	accounts, err := src.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}

	as, err := NewAccountingSystem(ledger, market, rates, base)
	if err != nil {
		return nil, err
	}
	return &Book{System: as, Compositions: comps, Accounts: accounts}, nil
}
