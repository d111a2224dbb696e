package invest

import (
	"slices"

	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

// rateDigits is the fixed precision of exchange rates. Keeping rates at six
// fractional digits bounds the rounding drift of multi-hop conversions.
const rateDigits = 6

var one = decimal.NewFromInt(1)

// RateTable resolves an exchange rate for any (date, currency pair) from the
// rates it was fed. Stored rates are not guaranteed symmetric or complete:
// the inverse and one-hop cross rates are derived on demand.
type RateTable struct {
	direct     map[string]*date.History[decimal.Decimal] // keyed from+to
	currencies []string                                  // sorted, for deterministic pivots
}

// NewRateTable returns an empty rate table.
func NewRateTable() *RateTable {
	return &RateTable{direct: make(map[string]*date.History[decimal.Decimal])}
}

// Append records the rate observed on a day for the from→to pair.
// A later Append on the same (day, pair) overwrites.
func (t *RateTable) Append(on date.Date, from, to string, rate decimal.Decimal) {
	key := from + to
	h, ok := t.direct[key]
	if !ok {
		h = new(date.History[decimal.Decimal])
		t.direct[key] = h
	}
	h.Append(on, rate.Round(rateDigits))
	t.addCurrency(from)
	t.addCurrency(to)
}

func (t *RateTable) addCurrency(c string) {
	if i, found := slices.BinarySearch(t.currencies, c); !found {
		t.currencies = slices.Insert(t.currencies, i, c)
	}
}

// Currencies returns the sorted set of currencies the table knows about.
func (t *RateTable) Currencies() []string { return slices.Clone(t.currencies) }

// Rate returns the from→to rate as of 'on': the most recent stored rate at
// or before that day, never a future one. Resolution order is identity,
// direct, inverse, then one-hop cross through a common pivot currency.
// It fails with *RateUnavailableError when no path connects the pair.
func (t *RateTable) Rate(on date.Date, from, to string) (decimal.Decimal, error) {
	if from == to {
		return one, nil
	}
	if r, ok := t.lookup(on, from, to); ok {
		return r, nil
	}
	// One-hop cross-rate through a pivot: from→pivot then pivot→to.
	// Pivots are tried in sorted order so derivation is deterministic.
	for _, pivot := range t.currencies {
		if pivot == from || pivot == to {
			continue
		}
		left, ok := t.lookup(on, from, pivot)
		if !ok {
			continue
		}
		right, ok := t.lookup(on, pivot, to)
		if !ok {
			continue
		}
		return left.Mul(right).Round(rateDigits), nil
	}
	return decimal.Decimal{}, &RateUnavailableError{Date: on, From: from, To: to}
}

// lookup resolves a direct or inverse stored rate as of 'on'.
func (t *RateTable) lookup(on date.Date, from, to string) (decimal.Decimal, bool) {
	if h, ok := t.direct[from+to]; ok {
		if r, ok := h.ValueAsOf(on); ok {
			return r, true
		}
	}
	if h, ok := t.direct[to+from]; ok {
		if r, ok := h.ValueAsOf(on); ok && !r.IsZero() {
			return one.DivRound(r, rateDigits), true
		}
	}
	return decimal.Decimal{}, false
}

// Convert converts a money value into the target currency as of 'on'.
func (t *RateTable) Convert(m Money, to string, on date.Date) (Money, error) {
	if m.Currency() == to {
		return m, nil
	}
	r, err := t.Rate(on, m.Currency(), to)
	if err != nil {
		return Money{}, err
	}
	return M(m.Amount().Mul(r), to), nil
}
