package invest

import (
	"iter"
	"maps"
	"slices"

	"github.com/miluoalbert/invest-master/date"
)

// Ledger is an append-only list of transactions kept in replay order:
// chronological, with the insertion ID as tie-break within a day so that
// replays are deterministic.
type Ledger struct {
	txs []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger { return &Ledger{} }

// Append adds transactions to the ledger, preserving replay order.
func (l *Ledger) Append(txs ...Transaction) {
	l.txs = append(l.txs, txs...)
	slices.SortStableFunc(l.txs, func(a, b Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.txs) }

// Transactions iterates over all transactions in replay order.
func (l *Ledger) Transactions() iter.Seq[Transaction] {
	return slices.Values(l.txs)
}

// transactionsAsOf iterates over transactions dated at or before 'on'.
func (l *Ledger) transactionsAsOf(on date.Date) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.txs {
			if tx.Date.After(on) {
				// the ledger is sorted, nothing later can qualify
				return
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// PositionKey identifies a position: an asset held in an account.
type PositionKey struct {
	Account string
	Ticker  string
}

// Position is the replayed state of one (account, asset) pair: the signed
// quantity held and the average-cost basis of the remaining units, in the
// asset's trading currency.
type Position struct {
	Account   string
	Ticker    string
	Quantity  Quantity
	CostBasis Money
	Currency  string
}

// AvgCost returns the average cost per remaining unit, zero for a flat position.
func (p Position) AvgCost() Money {
	if p.Quantity.IsZero() {
		return M(0, p.Currency)
	}
	return p.CostBasis.Div(p.Quantity)
}

// PositionsAsOf replays all transactions dated at or before 'on' into the
// open positions. Only BUY and SELL legs move quantity and cost basis; all
// other transaction types affect cash alone. Sells release cost basis
// proportionally to the quantity sold (average-cost method), so the basis
// always reflects only the remaining units. Flat positions are dropped.
func (l *Ledger) PositionsAsOf(on date.Date) map[PositionKey]Position {
	positions := make(map[PositionKey]Position)
	for tx := range l.transactionsAsOf(on) {
		if !tx.movesPosition() || tx.Ticker == "" {
			continue
		}
		key := PositionKey{Account: tx.Account, Ticker: tx.Ticker}
		pos, ok := positions[key]
		if !ok {
			pos = Position{Account: tx.Account, Ticker: tx.Ticker, Currency: tx.Currency, CostBasis: M(0, tx.Currency)}
		}
		switch tx.Type {
		case Buy:
			pos.CostBasis = pos.CostBasis.Add(tx.Price.Mul(tx.Quantity))
			pos.Quantity = pos.Quantity.Add(tx.Quantity)
		case Sell:
			// tx.Quantity is negative on sells by the sign convention.
			sold := tx.Quantity.Neg()
			if !pos.Quantity.IsZero() {
				released := pos.CostBasis.Mul(sold).Div(pos.Quantity)
				pos.CostBasis = pos.CostBasis.Sub(released)
			}
			pos.Quantity = pos.Quantity.Add(tx.Quantity)
		}
		positions[key] = pos
	}
	// drop flat positions: they carry no exposure
	maps.DeleteFunc(positions, func(_ PositionKey, p Position) bool {
		return p.Quantity.IsZero()
	})
	return positions
}

// CashKey identifies a cash balance: a currency held in an account.
type CashKey struct {
	Account  string
	Currency string
}

// CashBalancesAsOf sums the signed cash flow of every transaction dated at
// or before 'on' per (account, currency). By the sign convention this net
// sum is the cash balance of the account in that currency.
func (l *Ledger) CashBalancesAsOf(on date.Date) map[CashKey]Money {
	balances := make(map[CashKey]Money)
	for tx := range l.transactionsAsOf(on) {
		if tx.CashFlow.IsZero() {
			continue
		}
		key := CashKey{Account: tx.Account, Currency: tx.Currency}
		bal, ok := balances[key]
		if !ok {
			bal = M(0, tx.Currency)
		}
		balances[key] = bal.Add(tx.CashFlow)
	}
	maps.DeleteFunc(balances, func(_ CashKey, m Money) bool { return m.IsZero() })
	return balances
}

// Accounts returns the sorted set of account names seen in the ledger.
func (l *Ledger) Accounts() []string {
	seen := make(map[string]bool)
	for _, tx := range l.txs {
		seen[tx.Account] = true
	}
	return slices.Sorted(maps.Keys(seen))
}

// FirstDate returns the date of the earliest transaction, or the zero date.
func (l *Ledger) FirstDate() date.Date {
	if len(l.txs) == 0 {
		return date.Date{}
	}
	return l.txs[0].Date
}

// LastDate returns the date of the latest transaction, or the zero date.
func (l *Ledger) LastDate() date.Date {
	if len(l.txs) == 0 {
		return date.Date{}
	}
	return l.txs[len(l.txs)-1].Date
}
