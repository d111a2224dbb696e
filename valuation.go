package invest

import (
	"fmt"
	"sort"

	"github.com/Rhymond/go-money"
	"github.com/miluoalbert/invest-master/date"
)

// ValidateCurrency reports an error when code is not a known ISO 4217 currency.
func ValidateCurrency(code string) error {
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("unknown currency code %q", code)
	}
	return nil
}

// AccountingSystem combines the transactional record with market data and
// exchange rates. It is the central point of access for querying portfolio
// state at a point in time, expressed in a single base currency.
type AccountingSystem struct {
	Ledger       *Ledger
	Market       *MarketData
	Rates        *RateTable
	BaseCurrency string
}

// NewAccountingSystem creates an accounting system for a base reporting currency.
func NewAccountingSystem(ledger *Ledger, market *MarketData, rates *RateTable, base string) (*AccountingSystem, error) {
	if err := ValidateCurrency(base); err != nil {
		return nil, fmt.Errorf("invalid base currency: %w", err)
	}
	return &AccountingSystem{Ledger: ledger, Market: market, Rates: rates, BaseCurrency: base}, nil
}

// PriceSource tells how a position's price was obtained.
type PriceSource int

const (
	// PriceMarket: a market price or NAV observed on the valuation day.
	PriceMarket PriceSource = iota
	// PriceStale: the most recent prior market price, older than the valuation day.
	PriceStale
	// PricePar: cash-class assets value at par, one unit of their currency.
	PricePar
)

func (s PriceSource) String() string {
	switch s {
	case PriceMarket:
		return "market"
	case PriceStale:
		return "stale"
	case PricePar:
		return "par"
	default:
		return "unknown"
	}
}

// PositionValue is one valued position.
type PositionValue struct {
	Account   string
	Ticker    string
	Class     AssetClass
	Currency  string
	Quantity  Quantity
	Price     Money     // unit price in the asset currency
	PriceDate date.Date // day the price was observed on
	Source    PriceSource
	CostBasis Money
	Local     Money // Quantity × Price, in the asset currency
	Value     Money // in the base currency
}

// CashValue is one valued cash balance.
type CashValue struct {
	Account  string
	Currency string
	Balance  Money
	Value    Money // in the base currency
}

// Valuation is the portfolio state at a single point in time. Positions
// that could not be valued are isolated in Issues and excluded from totals.
type Valuation struct {
	Date         date.Date
	BaseCurrency string
	Positions    []PositionValue
	Cash         []CashValue
	TotalValue   Money
	Issues       []Issue
}

// Valuation replays the ledger into positions and cash balances as of 'on',
// prices every position and converts everything into the base currency.
//
// A missing price or missing rate fails that position only: it is recorded
// as an Issue and the rest of the portfolio still values.
func (as *AccountingSystem) Valuation(on date.Date) (*Valuation, error) {
	if as.BaseCurrency == "" {
		return nil, fmt.Errorf("base currency is not set in accounting system")
	}
	v := &Valuation{Date: on, BaseCurrency: as.BaseCurrency, TotalValue: M(0, as.BaseCurrency)}

	positions := as.Ledger.PositionsAsOf(on)
	keys := make([]PositionKey, 0, len(positions))
	for k := range positions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Account != keys[j].Account {
			return keys[i].Account < keys[j].Account
		}
		return keys[i].Ticker < keys[j].Ticker
	})

	for _, key := range keys {
		pos := positions[key]
		pv, err := as.value(pos, on)
		if err != nil {
			v.Issues = append(v.Issues, Issue{Account: pos.Account, Ticker: pos.Ticker, Err: err})
			continue
		}
		v.Positions = append(v.Positions, pv)
		v.TotalValue = v.TotalValue.Add(pv.Value)
	}

	balances := as.Ledger.CashBalancesAsOf(on)
	cashKeys := make([]CashKey, 0, len(balances))
	for k := range balances {
		cashKeys = append(cashKeys, k)
	}
	sort.Slice(cashKeys, func(i, j int) bool {
		if cashKeys[i].Account != cashKeys[j].Account {
			return cashKeys[i].Account < cashKeys[j].Account
		}
		return cashKeys[i].Currency < cashKeys[j].Currency
	})

	for _, key := range cashKeys {
		balance := balances[key]
		converted, err := as.Rates.Convert(balance, as.BaseCurrency, on)
		if err != nil {
			v.Issues = append(v.Issues, Issue{Account: key.Account, Ticker: key.Currency, Err: err})
			continue
		}
		v.Cash = append(v.Cash, CashValue{Account: key.Account, Currency: key.Currency, Balance: balance, Value: converted})
		v.TotalValue = v.TotalValue.Add(converted)
	}

	return v, nil
}

// value prices a single position and converts it to the base currency.
func (as *AccountingSystem) value(pos Position, on date.Date) (PositionValue, error) {
	pv := PositionValue{
		Account:   pos.Account,
		Ticker:    pos.Ticker,
		Currency:  pos.Currency,
		Quantity:  pos.Quantity,
		CostBasis: pos.CostBasis,
	}

	asset := as.Market.Get(pos.Ticker)
	if asset != nil {
		pv.Class = asset.Class
		if asset.Currency != "" {
			pv.Currency = asset.Currency
		}
	}

	switch {
	case asset != nil && asset.Class == Cash:
		// cash-type assets value at par, no market price required
		pv.Price = M(1, pv.Currency)
		pv.PriceDate = on
		pv.Source = PricePar
	default:
		day, price, err := as.Market.PriceDateAsOf(pos.Ticker, on)
		if err != nil {
			return PositionValue{}, err
		}
		pv.Price = M(price, pv.Currency)
		pv.PriceDate = day
		if day == on {
			pv.Source = PriceMarket
		} else {
			pv.Source = PriceStale
		}
	}

	pv.Local = pv.Price.Mul(pv.Quantity)
	converted, err := as.Rates.Convert(pv.Local, as.BaseCurrency, on)
	if err != nil {
		return PositionValue{}, err
	}
	pv.Value = converted
	return pv, nil
}
