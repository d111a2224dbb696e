package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

// day converts a database timestamp into a calendar date.
func day(t time.Time) date.Date { return date.New(t.Year(), t.Month(), t.Day()) }

type assetRow struct {
	Ticker       string         `db:"ticker"`
	Name         string         `db:"name"`
	Class        string         `db:"asset_class"`
	SubClass     sql.NullString `db:"sub_class"`
	Currency     string         `db:"currency"`
	Exchange     sql.NullString `db:"exchange"`
	ISIN         sql.NullString `db:"isin"`
	TrackedIndex sql.NullString `db:"tracked_index_code"`
}

// Assets returns the asset catalog.
func (s *Store) Assets(ctx context.Context) ([]invest.Asset, error) {
	var rows []assetRow
	const q = `
		SELECT ticker, name, asset_class::TEXT, sub_class, currency, exchange, isin, tracked_index_code
		FROM tb_assets
		ORDER BY ticker`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}

	assets := make([]invest.Asset, 0, len(rows))
	for _, row := range rows {
		class, err := invest.ParseAssetClass(row.Class)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", row.Ticker, err)
		}
		assets = append(assets, invest.Asset{
			Ticker:       row.Ticker,
			Name:         row.Name,
			Class:        class,
			SubClass:     row.SubClass.String,
			Currency:     row.Currency,
			Exchange:     row.Exchange.String,
			ISIN:         row.ISIN.String,
			TrackedIndex: row.TrackedIndex.String,
		})
	}
	return assets, nil
}

// Accounts returns the custody accounts.
func (s *Store) Accounts(ctx context.Context) ([]invest.Account, error) {
	var rows []struct {
		Name         string         `db:"name"`
		Broker       sql.NullString `db:"broker"`
		BaseCurrency string         `db:"base_currency"`
	}
	const q = `SELECT name, broker, base_currency FROM tb_accounts ORDER BY name`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}

	accounts := make([]invest.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, invest.Account{
			Name:         row.Name,
			Broker:       row.Broker.String,
			BaseCurrency: row.BaseCurrency,
		})
	}
	return accounts, nil
}

type txRow struct {
	ID       int64               `db:"id"`
	Date     time.Time           `db:"date"`
	Type     string              `db:"type"`
	Account  string              `db:"account_name"`
	Ticker   sql.NullString      `db:"ticker"`
	Qty      decimal.NullDecimal `db:"qty"`
	Price    decimal.NullDecimal `db:"price"`
	Fee      decimal.NullDecimal `db:"fee"`
	Tax      decimal.NullDecimal `db:"tax"`
	CashFlow decimal.NullDecimal `db:"cash_flow"`
	Currency string              `db:"currency"`
	FXRate   decimal.NullDecimal `db:"fx_rate_to_base"`
	Note     sql.NullString      `db:"note"`
}

// Transactions returns ledger rows matching the filter, in replay order.
func (s *Store) Transactions(ctx context.Context, filter invest.TxFilter) ([]invest.Transaction, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Account != "" {
		where = append(where, "acc.name = "+arg(filter.Account))
	}
	if filter.Ticker != "" {
		where = append(where, "a.ticker = "+arg(filter.Ticker))
	}
	if !filter.From.IsZero() {
		where = append(where, "t.date >= "+arg(filter.From.String()))
	}
	if !filter.To.IsZero() {
		where = append(where, "t.date <= "+arg(filter.To.String()))
	}

	q := `
		SELECT t.id, t.date, t.type::TEXT, acc.name AS account_name, a.ticker,
		       t.qty, t.price, t.fee, t.tax, t.cash_flow, t.currency, t.fx_rate_to_base, t.note
		FROM tb_transactions t
		JOIN tb_accounts acc ON t.account_id = acc.id
		LEFT JOIN tb_assets a ON t.asset_id = a.id`
	if len(where) > 0 {
		q += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	q += "\n\t\tORDER BY t.date, t.id"

	var rows []txRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}

	txs := make([]invest.Transaction, 0, len(rows))
	for _, row := range rows {
		kind, err := invest.ParseTxType(row.Type)
		if err != nil {
			return nil, fmt.Errorf("transaction #%d: %w", row.ID, err)
		}
		txs = append(txs, invest.Transaction{
			ID:       row.ID,
			Date:     day(row.Date),
			Type:     kind,
			Account:  row.Account,
			Ticker:   row.Ticker.String,
			Quantity: invest.Q(row.Qty.Decimal),
			Price:    invest.M(row.Price.Decimal, row.Currency),
			Fee:      invest.M(row.Fee.Decimal, row.Currency),
			Tax:      invest.M(row.Tax.Decimal, row.Currency),
			CashFlow: invest.M(row.CashFlow.Decimal, row.Currency),
			Currency: row.Currency,
			FXRate:   row.FXRate.Decimal,
			Note:     row.Note.String,
		})
	}
	return txs, nil
}

// Prices returns every closing price up to and including 'until' for the
// given tickers; an empty list means all of them.
func (s *Store) Prices(ctx context.Context, tickers []string, until date.Date) ([]invest.PriceQuote, error) {
	var rows []struct {
		Ticker string          `db:"ticker"`
		Date   time.Time       `db:"date"`
		Price  decimal.Decimal `db:"close_price"`
	}
	q := `
		SELECT a.ticker, md.date, md.close_price
		FROM tb_market_data md
		JOIN tb_assets a ON md.asset_id = a.id
		WHERE md.date <= $1`
	args := []any{until.String()}
	if len(tickers) > 0 {
		q += ` AND a.ticker = ANY($2)`
		args = append(args, pq.Array(tickers))
	}
	q += ` ORDER BY a.ticker, md.date`
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("querying prices: %w", err)
	}

	quotes := make([]invest.PriceQuote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, invest.PriceQuote{Ticker: row.Ticker, Date: day(row.Date), Price: row.Price})
	}
	return quotes, nil
}

// Rates returns every FX observation up to and including 'until'.
func (s *Store) Rates(ctx context.Context, until date.Date) ([]invest.RateQuote, error) {
	var rows []struct {
		Date time.Time       `db:"date"`
		From string          `db:"from_currency"`
		To   string          `db:"to_currency"`
		Rate decimal.Decimal `db:"rate"`
	}
	const q = `
		SELECT date, from_currency, to_currency, rate
		FROM tb_exchange_rates
		WHERE date <= $1
		ORDER BY date, from_currency, to_currency`
	if err := s.db.SelectContext(ctx, &rows, q, until.String()); err != nil {
		return nil, fmt.Errorf("querying rates: %w", err)
	}

	quotes := make([]invest.RateQuote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, invest.RateQuote{Date: day(row.Date), From: row.From, To: row.To, Rate: row.Rate})
	}
	return quotes, nil
}

// Components returns every look-through row reported up to 'until'.
func (s *Store) Components(ctx context.Context, until date.Date) ([]invest.Component, error) {
	var rows []struct {
		Parent     string          `db:"parent_ticker"`
		ReportDate time.Time       `db:"report_date"`
		Underlying string          `db:"underlying_ticker"`
		Name       sql.NullString  `db:"underlying_name"`
		Weight     decimal.Decimal `db:"weight"`
		Sector     sql.NullString  `db:"sector"`
		Region     sql.NullString  `db:"region"`
		Country    sql.NullString  `db:"country"`
		Currency   sql.NullString  `db:"currency"`
	}
	const q = `
		SELECT parent_ticker, report_date, underlying_ticker, underlying_name,
		       weight, sector, region, country, currency
		FROM tb_lookthrough_components
		WHERE report_date <= $1
		ORDER BY parent_ticker, report_date, underlying_ticker`
	if err := s.db.SelectContext(ctx, &rows, q, until.String()); err != nil {
		return nil, fmt.Errorf("querying compositions: %w", err)
	}

	comps := make([]invest.Component, 0, len(rows))
	for _, row := range rows {
		comps = append(comps, invest.Component{
			Parent:     row.Parent,
			ReportDate: day(row.ReportDate),
			Underlying: row.Underlying,
			Name:       row.Name.String,
			Weight:     row.Weight,
			Sector:     row.Sector.String,
			Region:     row.Region.String,
			Country:    row.Country.String,
			Currency:   row.Currency.String,
		})
	}
	return comps, nil
}

// Targets returns the allocation targets of a strategy; an empty strategy
// name returns every stored target.
func (s *Store) Targets(ctx context.Context, strategy string) ([]invest.Target, error) {
	var rows []struct {
		Strategy  string          `db:"strategy"`
		Type      string          `db:"target_type"`
		Key       string          `db:"target_key"`
		Weight    decimal.Decimal `db:"weight"`
		Tolerance decimal.Decimal `db:"tolerance"`
	}
	q := `
		SELECT strategy, target_type::TEXT, target_key, weight, tolerance
		FROM tb_rebalance_targets`
	var args []any
	if strategy != "" {
		q += ` WHERE strategy = $1`
		args = append(args, strategy)
	}
	q += ` ORDER BY strategy, target_key`
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("querying targets: %w", err)
	}

	targets := make([]invest.Target, 0, len(rows))
	for _, row := range rows {
		kind, err := invest.ParseTargetType(row.Type)
		if err != nil {
			return nil, fmt.Errorf("target %s/%s: %w", row.Strategy, row.Key, err)
		}
		targets = append(targets, invest.Target{
			Strategy:  row.Strategy,
			Type:      kind,
			Key:       row.Key,
			Weight:    row.Weight,
			Tolerance: row.Tolerance,
		})
	}
	return targets, nil
}
