package invest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a display-oriented ratio: 0.05 renders as "5.00%".
// Weight arithmetic stays in decimal.Decimal; Percent only formats results.
type Percent float64

// PercentOf returns the ratio part/total as a Percent.
func PercentOf(part, total decimal.Decimal) Percent {
	if total.IsZero() {
		return 0
	}
	return Percent(part.Div(total).InexactFloat64())
}

// WeightPercent converts a decimal weight (0.05) to a Percent.
func WeightPercent(w decimal.Decimal) Percent { return Percent(w.InexactFloat64()) }

func (p Percent) Equal(q Percent) bool {
	// compared at reporting precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p)*100)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p)*100)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
