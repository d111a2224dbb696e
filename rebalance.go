package invest

import (
	"fmt"
	"sort"

	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

// TargetType selects the grouping key a target is expressed against.
type TargetType int

const (
	// TargetAsset groups exposure by the underlying ticker.
	TargetAsset TargetType = iota
	// TargetClass groups exposure by the underlying's asset class.
	TargetClass
)

func (t TargetType) String() string {
	switch t {
	case TargetAsset:
		return "ASSET"
	case TargetClass:
		return "CLASS"
	default:
		return "unknown"
	}
}

// ParseTargetType parses the storage representation of a target type.
func ParseTargetType(s string) (TargetType, error) {
	switch s {
	case "ASSET":
		return TargetAsset, nil
	case "CLASS":
		return TargetClass, nil
	default:
		return 0, fmt.Errorf("unknown target type: %q", s)
	}
}

// Target is one allocation target of a strategy: the key (a ticker or an
// asset class name) should weigh Weight of the portfolio, give or take
// Tolerance.
type Target struct {
	Strategy  string
	Type      TargetType
	Key       string
	Weight    decimal.Decimal
	Tolerance decimal.Decimal
}

// DriftEntry compares one target against the portfolio's actual exposure.
type DriftEntry struct {
	Key          string
	Type         TargetType
	TargetWeight decimal.Decimal
	ActualWeight decimal.Decimal
	Drift        decimal.Decimal // ActualWeight − TargetWeight
	Tolerance    decimal.Decimal
	Value        Money // absolute exposure in the base currency
	ActionNeeded bool
}

// UnallocatedEntry is exposure matched by no target. It is reported rather
// than dropped so total exposure always reconciles.
type UnallocatedEntry struct {
	Key          string
	Type         TargetType
	ActualWeight decimal.Decimal
	Value        Money
}

// RebalanceReport is the outcome of evaluating a strategy on a date.
type RebalanceReport struct {
	Strategy     string
	Date         date.Date
	BaseCurrency string
	TotalValue   Money
	Entries      []DriftEntry
	Unallocated  []UnallocatedEntry
	Warnings     []Warning
	Issues       []Issue
}

// EvaluateOptions carries the scalar knobs of an evaluation.
type EvaluateOptions struct {
	// MaxDepth bounds look-through recursion; zero means DefaultMaxDepth.
	MaxDepth int
	// Tolerance overrides every target's own tolerance when positive.
	Tolerance decimal.Decimal
	// IncludeCash counts cash balances as exposure of class CASH that
	// targets can claim. When false cash is reported as unallocated.
	IncludeCash bool
}

// Evaluate values the whole portfolio as of 'on', resolves the look-through
// exposure of every position, aggregates per target key and reports the
// drift of each target of the strategy.
//
// Per-position valuation failures and resolver warnings are carried on the
// report; they never abort the evaluation.
func Evaluate(as *AccountingSystem, comps *Compositions, targets []Target, strategy string, on date.Date, opts EvaluateOptions) (*RebalanceReport, error) {
	valuation, err := as.Valuation(on)
	if err != nil {
		return nil, fmt.Errorf("could not value portfolio: %w", err)
	}

	report := &RebalanceReport{
		Strategy:     strategy,
		Date:         on,
		BaseCurrency: as.BaseCurrency,
		TotalValue:   valuation.TotalValue,
		Issues:       valuation.Issues,
	}

	resolver := NewResolver(comps, as.Market, opts.MaxDepth)

	// absolute exposure per ticker and per asset class, in base currency
	byAsset := make(map[string]Money)
	byClass := make(map[string]Money)
	assetClass := make(map[string]string)

	for _, pos := range valuation.Positions {
		exposures, err := resolver.Resolve(pos.Ticker, on)
		if err != nil {
			report.Issues = append(report.Issues, Issue{Account: pos.Account, Ticker: pos.Ticker, Err: err})
			continue
		}
		report.Warnings = append(report.Warnings, exposures.Warnings...)
		for _, x := range exposures.List {
			value := pos.Value.Scale(x.Weight)
			class := as.classOf(x.Ticker)
			addMoney(byAsset, x.Ticker, value)
			addMoney(byClass, class, value)
			assetClass[x.Ticker] = class
		}
	}

	if opts.IncludeCash {
		for _, cash := range valuation.Cash {
			key := "CASH:" + cash.Currency
			addMoney(byAsset, key, cash.Value)
			addMoney(byClass, Cash.String(), cash.Value)
			assetClass[key] = Cash.String()
		}
	}

	total := valuation.TotalValue
	matchedAssets := make(map[string]bool)
	matchedClasses := make(map[string]bool)

	targetSum := decimal.Decimal{}
	for _, target := range targets {
		if target.Strategy != "" && target.Strategy != strategy {
			continue
		}
		targetSum = targetSum.Add(target.Weight)

		var value Money
		switch target.Type {
		case TargetAsset:
			value = moneyOrZero(byAsset, target.Key, as.BaseCurrency)
			matchedAssets[target.Key] = true
		case TargetClass:
			value = moneyOrZero(byClass, target.Key, as.BaseCurrency)
			matchedClasses[target.Key] = true
		}

		actual := decimal.Decimal{}
		if !total.IsZero() {
			actual = value.DivValue(total)
		}
		tolerance := target.Tolerance
		if opts.Tolerance.IsPositive() {
			tolerance = opts.Tolerance
		}
		drift := actual.Sub(target.Weight)
		report.Entries = append(report.Entries, DriftEntry{
			Key:          target.Key,
			Type:         target.Type,
			TargetWeight: target.Weight,
			ActualWeight: actual,
			Drift:        drift,
			Tolerance:    tolerance,
			Value:        value,
			ActionNeeded: drift.Abs().GreaterThan(tolerance),
		})
	}

	if drift := targetSum.Sub(one).Abs(); len(report.Entries) > 0 && drift.GreaterThan(compositionEpsilon) {
		report.Warnings = append(report.Warnings, Warning{
			Kind:   TargetSumDrift,
			Detail: fmt.Sprintf("strategy %q target weights sum to %s", strategy, targetSum),
		})
	}

	report.Unallocated = unallocated(byAsset, assetClass, matchedAssets, matchedClasses, total)

	// cash kept out of the exposure pool still weighs in TotalValue:
	// report its share so the entries reconcile.
	if !opts.IncludeCash {
		byCash := make(map[string]Money)
		for _, cash := range valuation.Cash {
			if !cash.Value.IsZero() {
				addMoney(byCash, "CASH:"+cash.Currency, cash.Value)
			}
		}
		cashClass := make(map[string]string, len(byCash))
		for key := range byCash {
			cashClass[key] = Cash.String()
		}
		report.Unallocated = append(report.Unallocated, unallocated(byCash, cashClass, nil, nil, total)...)
	}
	return report, nil
}

// unallocated lists exposure matched by no target. An asset already counted
// through a class target is not unallocated.
func unallocated(byAsset map[string]Money, assetClass map[string]string, matchedAssets, matchedClasses map[string]bool, total Money) []UnallocatedEntry {
	var entries []UnallocatedEntry
	for key, value := range byAsset {
		if matchedAssets[key] || matchedClasses[assetClass[key]] {
			continue
		}
		actual := decimal.Decimal{}
		if !total.IsZero() {
			actual = value.DivValue(total)
		}
		entries = append(entries, UnallocatedEntry{Key: key, Type: TargetAsset, ActualWeight: actual, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// UnclassifiedKey groups exposure of look-through rows whose underlying the
// asset catalog does not declare. Unknown holdings never count toward a
// declared class target.
const UnclassifiedKey = "UNCLASSIFIED"

// classOf returns the asset-class grouping key of an exposure ticker: the
// declared class when the ticker is a known asset, UnclassifiedKey otherwise.
func (as *AccountingSystem) classOf(ticker string) string {
	if asset := as.Market.Get(ticker); asset != nil {
		return asset.Class.String()
	}
	return UnclassifiedKey
}

func addMoney(m map[string]Money, key string, v Money) {
	if cur, ok := m[key]; ok {
		m[key] = cur.Add(v)
		return
	}
	m[key] = v
}

func moneyOrZero(m map[string]Money, key, currency string) Money {
	if v, ok := m[key]; ok {
		return v
	}
	return M(0, currency)
}
