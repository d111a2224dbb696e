package invest

import (
	"fmt"

	"github.com/miluoalbert/invest-master/date"
)

// RateUnavailableError reports that no path of known exchange rates connects
// a currency pair at or before a date. It must propagate: a conversion is
// never silently replaced by a rate of 1.
type RateUnavailableError struct {
	Date date.Date
	From string
	To   string
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no exchange rate from %s to %s as of %s", e.From, e.To, e.Date)
}

// PriceUnavailableError reports that an asset has no price at or before a
// date. It is fatal for that position only: other positions still value.
type PriceUnavailableError struct {
	Ticker string
	Date   date.Date
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no price for %q as of %s", e.Ticker, e.Date)
}

// Issue records a per-position failure collected during an evaluation, so a
// single missing price or rate never aborts the whole portfolio run.
type Issue struct {
	Account string
	Ticker  string
	Err     error
}

func (i Issue) String() string {
	return fmt.Sprintf("%s/%s: %v", i.Account, i.Ticker, i.Err)
}

// WarningKind classifies non-fatal findings attached to results.
type WarningKind int

const (
	// CompositionDrift: the effective weights of a fully resolved parent do
	// not sum close enough to 1.0. The composition data is stale or incomplete.
	CompositionDrift WarningKind = iota
	// DimensionConflict: two look-through paths disagree on the descriptive
	// dimensions of the same underlying; the first encountered is kept.
	DimensionConflict
	// CyclicComposition: a fund structure references itself through its
	// holdings; descent was truncated at the repeated ticker.
	CyclicComposition
	// TargetSumDrift: the target weights of a strategy do not sum close
	// enough to 1.0.
	TargetSumDrift
)

func (k WarningKind) String() string {
	switch k {
	case CompositionDrift:
		return "composition-drift"
	case DimensionConflict:
		return "dimension-conflict"
	case CyclicComposition:
		return "cyclic-composition"
	case TargetSumDrift:
		return "target-sum-drift"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal finding surfaced alongside results for visibility.
type Warning struct {
	Kind   WarningKind
	Ticker string
	Detail string
}

func (w Warning) String() string {
	if w.Ticker == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
	}
	return fmt.Sprintf("%s %s: %s", w.Kind, w.Ticker, w.Detail)
}
