package invest

import (
	"iter"
	"maps"
	"slices"

	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

// MarketData holds the asset catalog and the price history of each asset.
// Prices are sparse: not every asset has a price every day, so lookups use
// as-of semantics with a stale-price fallback.
type MarketData struct {
	assets map[string]Asset
	prices map[string]*date.History[decimal.Decimal]
}

// NewMarketData returns an empty market data collection.
func NewMarketData() *MarketData {
	return &MarketData{
		assets: make(map[string]Asset),
		prices: make(map[string]*date.History[decimal.Decimal]),
	}
}

// Add declares an asset. Ticker is the unique key; re-adding overwrites.
func (m *MarketData) Add(a Asset) { m.assets[a.Ticker] = a }

// Has reports whether the ticker is a declared asset.
func (m *MarketData) Has(ticker string) bool {
	_, ok := m.assets[ticker]
	return ok
}

// Get returns the asset declared with this ticker, or nil if unknown.
func (m *MarketData) Get(ticker string) *Asset {
	a, ok := m.assets[ticker]
	if !ok {
		return nil
	}
	return &a
}

// Assets iterates over all declared assets in ticker order.
func (m *MarketData) Assets() iter.Seq[Asset] {
	return func(yield func(Asset) bool) {
		for _, ticker := range slices.Sorted(maps.Keys(m.assets)) {
			if !yield(m.assets[ticker]) {
				return
			}
		}
	}
}

// Append records a close price (or NAV) for a (ticker, day).
func (m *MarketData) Append(ticker string, on date.Date, price decimal.Decimal) {
	h, ok := m.prices[ticker]
	if !ok {
		h = new(date.History[decimal.Decimal])
		m.prices[ticker] = h
	}
	h.Append(on, price)
}

// PriceAsOf returns the price of the asset on a given day, falling back to
// the most recent prior price. It fails with *PriceUnavailableError when no
// price exists at or before the day.
func (m *MarketData) PriceAsOf(ticker string, on date.Date) (decimal.Decimal, error) {
	if h, ok := m.prices[ticker]; ok {
		if p, ok := h.ValueAsOf(on); ok {
			return p, nil
		}
	}
	return decimal.Decimal{}, &PriceUnavailableError{Ticker: ticker, Date: on}
}

// PriceDateAsOf is like PriceAsOf but also reports the observation day, so
// callers can tell a fresh price from a stale one.
func (m *MarketData) PriceDateAsOf(ticker string, on date.Date) (date.Date, decimal.Decimal, error) {
	if h, ok := m.prices[ticker]; ok {
		if day, p, ok := h.DateAsOf(on); ok {
			return day, p, nil
		}
	}
	return date.Date{}, decimal.Decimal{}, &PriceUnavailableError{Ticker: ticker, Date: on}
}
