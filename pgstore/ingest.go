package pgstore

import (
	"context"
	"fmt"

	invest "github.com/miluoalbert/invest-master"
	"github.com/shopspring/decimal"
)

// UpsertAssets inserts or refreshes catalog rows, keyed by ticker.
func (s *Store) UpsertAssets(ctx context.Context, assets []invest.Asset) error {
	const q = `
		INSERT INTO tb_assets (ticker, name, asset_class, sub_class, currency, exchange, isin, tracked_index_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			asset_class = EXCLUDED.asset_class,
			sub_class = EXCLUDED.sub_class,
			currency = EXCLUDED.currency,
			exchange = EXCLUDED.exchange,
			isin = EXCLUDED.isin,
			tracked_index_code = EXCLUDED.tracked_index_code`
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, a := range assets {
		if _, err := tx.ExecContext(ctx, q,
			a.Ticker, a.Name, a.Class.String(), nullable(a.SubClass), a.Currency,
			nullable(a.Exchange), nullable(a.ISIN), nullable(a.TrackedIndex)); err != nil {
			return fmt.Errorf("upserting asset %s: %w", a.Ticker, err)
		}
	}
	s.log.Infow("assets upserted", "count", len(assets))
	return tx.Commit()
}

// UpsertPrices stores closing prices, keyed by (asset, date).
func (s *Store) UpsertPrices(ctx context.Context, quotes []invest.PriceQuote) error {
	const q = `
		INSERT INTO tb_market_data (asset_id, date, close_price)
		SELECT id, $2, $3 FROM tb_assets WHERE ticker = $1
		ON CONFLICT (asset_id, date) DO UPDATE SET close_price = EXCLUDED.close_price`
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, quote := range quotes {
		res, err := tx.ExecContext(ctx, q, quote.Ticker, quote.Date.String(), quote.Price)
		if err != nil {
			return fmt.Errorf("upserting price %s@%s: %w", quote.Ticker, quote.Date, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("upserting price: unknown ticker %q", quote.Ticker)
		}
	}
	s.log.Infow("prices upserted", "count", len(quotes))
	return tx.Commit()
}

// UpsertRates stores FX observations, keyed by (date, from, to).
func (s *Store) UpsertRates(ctx context.Context, quotes []invest.RateQuote) error {
	const q = `
		INSERT INTO tb_exchange_rates (date, from_currency, to_currency, rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date, from_currency, to_currency) DO UPDATE SET rate = EXCLUDED.rate`
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, quote := range quotes {
		if _, err := tx.ExecContext(ctx, q, quote.Date.String(), quote.From, quote.To, quote.Rate); err != nil {
			return fmt.Errorf("upserting rate %s/%s@%s: %w", quote.From, quote.To, quote.Date, err)
		}
	}
	s.log.Infow("rates upserted", "count", len(quotes))
	return tx.Commit()
}

// UpsertComponents replaces the look-through rows of one parent for one
// report date, keyed by (parent, date, underlying).
func (s *Store) UpsertComponents(ctx context.Context, comps []invest.Component) error {
	const q = `
		INSERT INTO tb_lookthrough_components
			(parent_ticker, report_date, underlying_ticker, underlying_name, weight, sector, region, country, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (parent_ticker, report_date, underlying_ticker) DO UPDATE SET
			underlying_name = EXCLUDED.underlying_name,
			weight = EXCLUDED.weight,
			sector = EXCLUDED.sector,
			region = EXCLUDED.region,
			country = EXCLUDED.country,
			currency = EXCLUDED.currency`
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, c := range comps {
		if _, err := tx.ExecContext(ctx, q,
			c.Parent, c.ReportDate.String(), c.Underlying, nullable(c.Name), c.Weight,
			nullable(c.Sector), nullable(c.Region), nullable(c.Country), nullable(c.Currency)); err != nil {
			return fmt.Errorf("upserting component %s/%s: %w", c.Parent, c.Underlying, err)
		}
	}
	s.log.Infow("components upserted", "count", len(comps))
	return tx.Commit()
}

// AddTransaction appends one ledger row and returns its id.
func (s *Store) AddTransaction(ctx context.Context, tx invest.Transaction) (int64, error) {
	const q = `
		INSERT INTO tb_transactions
			(date, type, account_id, asset_id, qty, price, fee, tax, cash_flow, currency, fx_rate_to_base, note)
		VALUES ($1, $2,
			(SELECT id FROM tb_accounts WHERE name = $3),
			(SELECT id FROM tb_assets WHERE ticker = NULLIF($4, '')),
			$5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	var id int64
	err := s.db.QueryRowxContext(ctx, q,
		tx.Date.String(), tx.Type.String(), tx.Account, tx.Ticker,
		tx.Quantity.Decimal(), tx.Price.Amount(), tx.Fee.Amount(), tx.Tax.Amount(),
		tx.CashFlow.Amount(), tx.Currency, nullRate(tx.FXRate), nullable(tx.Note),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}
	return id, nil
}

// SaveTargets replaces the targets of one strategy.
func (s *Store) SaveTargets(ctx context.Context, strategy string, targets []invest.Target) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM tb_rebalance_targets WHERE strategy = $1`, strategy); err != nil {
		return fmt.Errorf("clearing targets of %q: %w", strategy, err)
	}
	const q = `
		INSERT INTO tb_rebalance_targets (strategy, target_type, target_key, weight, tolerance)
		VALUES ($1, $2, $3, $4, $5)`
	for _, target := range targets {
		if _, err := tx.ExecContext(ctx, q,
			strategy, target.Type.String(), target.Key, target.Weight, target.Tolerance); err != nil {
			return fmt.Errorf("saving target %q: %w", target.Key, err)
		}
	}
	s.log.Infow("strategy saved", "strategy", strategy, "targets", len(targets))
	return tx.Commit()
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullRate maps a zero rate to SQL NULL.
func nullRate(r decimal.Decimal) any {
	if r.IsZero() {
		return nil
	}
	return r
}
