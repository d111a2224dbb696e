package invest

import (
	"fmt"

	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

// TxType identifies the kind of a ledger transaction.
type TxType int

const (
	Buy TxType = iota
	Sell
	Dividend
	Interest
	Deposit
	Withdraw
	Convert
	Tax
	Fee
)

func (t TxType) String() string {
	switch t {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Dividend:
		return "DIVIDEND"
	case Interest:
		return "INTEREST"
	case Deposit:
		return "DEPOSIT"
	case Withdraw:
		return "WITHDRAW"
	case Convert:
		return "FX_CONVERT"
	case Tax:
		return "TAX"
	case Fee:
		return "FEE"
	default:
		return "unknown"
	}
}

// ParseTxType parses the storage representation of a transaction type.
func ParseTxType(s string) (TxType, error) {
	switch s {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "DIVIDEND":
		return Dividend, nil
	case "INTEREST":
		return Interest, nil
	case "DEPOSIT":
		return Deposit, nil
	case "WITHDRAW":
		return Withdraw, nil
	case "FX_CONVERT":
		return Convert, nil
	case "TAX":
		return Tax, nil
	case "FEE":
		return Fee, nil
	default:
		return 0, fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Transaction is one immutable ledger fact. The engine only ever reads them.
//
// Sign conventions: Quantity is signed by direction (buys positive, sells
// negative) and CashFlow is negative for outflows (buys, withdrawals, taxes
// and fees paid) and positive for inflows (sell proceeds, dividends,
// interests, deposits).
type Transaction struct {
	ID       int64 // insertion order, the replay tie-break within a day
	Date     date.Date
	Type     TxType
	Account  string
	Ticker   string // empty for pure cash movements
	Quantity Quantity
	Price    Money
	Fee      Money
	Tax      Money
	CashFlow Money
	Currency string
	// FXRate is the realized rate to the account base currency, recorded on
	// FX_CONVERT rows. Zero when not applicable.
	FXRate decimal.Decimal
	Note   string
}

// When returns the transaction date.
func (t Transaction) When() date.Date { return t.Date }

// movesPosition reports whether the transaction changes a security position.
func (t Transaction) movesPosition() bool { return t.Type == Buy || t.Type == Sell }
