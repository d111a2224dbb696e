package invest

import (
	"testing"

	"github.com/shopspring/decimal"
)

// rebalanceSystem holds exactly one ETF position worth 35,000 CNY and no
// cash: the deposit funds the purchase to the cent.
func rebalanceSystem(t *testing.T) *AccountingSystem {
	t.Helper()

	ledger := NewLedger()
	ledger.Append(
		Transaction{ID: 1, Date: jan(2), Type: Deposit, Account: "ibkr", CashFlow: M(5000, "USD"), Currency: "USD"},
		buyTx(2, jan(10), "ibkr", "SPY", 100, 50, "USD"),
	)

	market := NewMarketData()
	market.Add(Asset{Ticker: "SPY", Name: "S&P 500 ETF", Class: Equity, Currency: "USD"})
	market.Add(Asset{Ticker: "NVDA", Name: "NVIDIA Corp", Class: Equity, SubClass: "Technology", Currency: "USD"})
	market.Append("SPY", jan(15), decimal.NewFromInt(50))

	rates := NewRateTable()
	rates.Append(jan(1), "USD", "CNY", decimal.NewFromFloat(7.0))

	as, err := NewAccountingSystem(ledger, market, rates, "CNY")
	if err != nil {
		t.Fatalf("NewAccountingSystem() error = %v", err)
	}
	return as
}

func spyComposition() *Compositions {
	comps := NewCompositions()
	comps.Append(
		Component{Parent: "SPY", ReportDate: jan(1), Underlying: "NVDA", Name: "NVIDIA Corp", Weight: w(0.10), Sector: "Technology"},
		Component{Parent: "SPY", ReportDate: jan(1), Underlying: "OTHER", Name: "Remaining holdings", Weight: w(0.90)},
	)
	return comps
}

func TestEvaluateFlagsDrift(t *testing.T) {
	as := rebalanceSystem(t)
	targets := []Target{{
		Strategy:  "core",
		Type:      TargetAsset,
		Key:       "NVDA",
		Weight:    w(0.05),
		Tolerance: w(0.02),
	}}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if want := M(35000, "CNY"); !report.TotalValue.Equal(want) {
		t.Fatalf("TotalValue = %v want %v", report.TotalValue, want)
	}
	if len(report.Entries) != 1 {
		t.Fatalf("Entries = %+v want one", report.Entries)
	}

	entry := report.Entries[0]
	// 0.10 of 35,000 CNY flows through to NVDA.
	if want := M(3500, "CNY"); !entry.Value.Equal(want) {
		t.Errorf("NVDA Value = %v want %v", entry.Value, want)
	}
	if !entry.ActualWeight.Equal(w(0.10)) {
		t.Errorf("ActualWeight = %v want 0.10", entry.ActualWeight)
	}
	if !entry.Drift.Equal(w(0.05)) {
		t.Errorf("Drift = %v want +0.05", entry.Drift)
	}
	if !entry.ActionNeeded {
		t.Error("ActionNeeded = false, drift of 5% exceeds 2% tolerance")
	}
}

func TestEvaluateWithinTolerance(t *testing.T) {
	as := rebalanceSystem(t)
	targets := []Target{{
		Type:      TargetAsset,
		Key:       "NVDA",
		Weight:    w(0.09),
		Tolerance: w(0.02),
	}}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if entry := report.Entries[0]; entry.ActionNeeded {
		t.Errorf("ActionNeeded = true for drift %v within tolerance %v", entry.Drift, entry.Tolerance)
	}
}

func TestEvaluateToleranceOverride(t *testing.T) {
	as := rebalanceSystem(t)
	targets := []Target{{
		Type:      TargetAsset,
		Key:       "NVDA",
		Weight:    w(0.09),
		Tolerance: w(0.02),
	}}

	opts := EvaluateOptions{Tolerance: w(0.005)}
	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), opts)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	entry := report.Entries[0]
	if !entry.Tolerance.Equal(w(0.005)) {
		t.Errorf("Tolerance = %v want the 0.005 override", entry.Tolerance)
	}
	if !entry.ActionNeeded {
		t.Error("ActionNeeded = false, 1% drift exceeds the 0.5% override")
	}
}

func TestEvaluateClassTarget(t *testing.T) {
	as := rebalanceSystem(t)
	as.Market.Add(Asset{Ticker: "OTHER", Name: "Remaining holdings", Class: Equity, Currency: "USD"})
	targets := []Target{{
		Type:      TargetClass,
		Key:       "EQUITY",
		Weight:    w(1.0),
		Tolerance: w(0.02),
	}}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	entry := report.Entries[0]
	// NVDA and the remainder both aggregate under EQUITY.
	if !entry.ActualWeight.Equal(w(1.0)) {
		t.Errorf("EQUITY ActualWeight = %v want 1.0", entry.ActualWeight)
	}
	if entry.ActionNeeded {
		t.Errorf("ActionNeeded = true for a fully on-target class")
	}
	// every exposure falls under the class target, nothing left over
	if len(report.Unallocated) != 0 {
		t.Errorf("Unallocated = %+v want none", report.Unallocated)
	}
}

func TestEvaluateUnknownTickerIsUnclassified(t *testing.T) {
	as := rebalanceSystem(t)
	targets := []Target{{
		Type:      TargetClass,
		Key:       "EQUITY",
		Weight:    w(1.0),
		Tolerance: w(0.02),
	}}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	// OTHER is absent from the asset catalog: only NVDA counts as EQUITY.
	entry := report.Entries[0]
	if !entry.ActualWeight.Equal(w(0.10)) {
		t.Errorf("EQUITY ActualWeight = %v want 0.10, unknown holdings excluded", entry.ActualWeight)
	}
	if len(report.Unallocated) != 1 || report.Unallocated[0].Key != "OTHER" {
		t.Fatalf("Unallocated = %+v want the OTHER remainder", report.Unallocated)
	}

	// An UNCLASSIFIED class target picks the remainder up.
	targets = append(targets, Target{Type: TargetClass, Key: UnclassifiedKey, Weight: w(0), Tolerance: w(1)})
	report, err = Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(report.Unallocated) != 0 {
		t.Errorf("Unallocated = %+v want none once UNCLASSIFIED is targeted", report.Unallocated)
	}
}

func TestEvaluateUnallocated(t *testing.T) {
	as := rebalanceSystem(t)
	targets := []Target{{
		Type:      TargetAsset,
		Key:       "NVDA",
		Weight:    w(0.05),
		Tolerance: w(0.02),
	}}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(report.Unallocated) != 1 {
		t.Fatalf("Unallocated = %+v want the OTHER remainder", report.Unallocated)
	}
	other := report.Unallocated[0]
	if other.Key != "OTHER" {
		t.Errorf("Unallocated key = %q want OTHER", other.Key)
	}
	if want := M(31500, "CNY"); !other.Value.Equal(want) {
		t.Errorf("Unallocated Value = %v want %v", other.Value, want)
	}
}

func TestEvaluateTargetSumDriftWarning(t *testing.T) {
	as := rebalanceSystem(t)
	targets := []Target{
		{Type: TargetAsset, Key: "NVDA", Weight: w(0.05), Tolerance: w(0.02)},
		{Type: TargetAsset, Key: "OTHER", Weight: w(0.50), Tolerance: w(0.02)},
	}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !hasWarning(report.Warnings, TargetSumDrift) {
		t.Errorf("Warnings = %+v want a TargetSumDrift, weights sum to 0.55", report.Warnings)
	}
}

func TestEvaluateIncludeCash(t *testing.T) {
	as := testSystem(t) // 5,000 USD cash remains after the purchase
	targets := []Target{{
		Type:      TargetClass,
		Key:       "CASH",
		Weight:    w(0.50),
		Tolerance: w(0.02),
	}}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{IncludeCash: true})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	entry := report.Entries[0]
	// 35,000 CNY of cash on a 70,000 CNY book
	if !entry.ActualWeight.Equal(w(0.50)) {
		t.Errorf("CASH ActualWeight = %v want 0.50", entry.ActualWeight)
	}
	if entry.ActionNeeded {
		t.Error("ActionNeeded = true for on-target cash")
	}
}

func TestEvaluateExcludedCashIsUnallocated(t *testing.T) {
	as := testSystem(t) // 5,000 USD cash remains after the purchase
	targets := []Target{{
		Type:      TargetAsset,
		Key:       "NVDA",
		Weight:    w(0.05),
		Tolerance: w(0.02),
	}}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	var cash *UnallocatedEntry
	for i := range report.Unallocated {
		if report.Unallocated[i].Key == "CASH:USD" {
			cash = &report.Unallocated[i]
		}
	}
	if cash == nil {
		t.Fatalf("Unallocated = %+v want the excluded cash surfaced", report.Unallocated)
	}
	// 35,000 CNY of cash on a 70,000 CNY book
	if !cash.ActualWeight.Equal(w(0.50)) {
		t.Errorf("cash ActualWeight = %v want 0.50", cash.ActualWeight)
	}
	if want := M(35000, "CNY"); !cash.Value.Equal(want) {
		t.Errorf("cash Value = %v want %v", cash.Value, want)
	}

	// target + unallocated entries account for the whole book
	sum := report.Entries[0].ActualWeight
	for _, u := range report.Unallocated {
		sum = sum.Add(u.ActualWeight)
	}
	if !sum.Equal(w(1.0)) {
		t.Errorf("actual weights sum to %v want 1.0", sum)
	}
}

func TestEvaluateSkipsOtherStrategies(t *testing.T) {
	as := rebalanceSystem(t)
	targets := []Target{
		{Strategy: "core", Type: TargetAsset, Key: "NVDA", Weight: w(0.05), Tolerance: w(0.02)},
		{Strategy: "aggressive", Type: TargetAsset, Key: "NVDA", Weight: w(0.20), Tolerance: w(0.02)},
	}

	report, err := Evaluate(as, spyComposition(), targets, "core", jan(15), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(report.Entries) != 1 {
		t.Fatalf("Entries = %+v want only the core target", report.Entries)
	}
	if !report.Entries[0].TargetWeight.Equal(w(0.05)) {
		t.Errorf("TargetWeight = %v want the core 0.05", report.Entries[0].TargetWeight)
	}
}

func hasWarning(warnings []Warning, kind WarningKind) bool {
	for _, warning := range warnings {
		if warning.Kind == kind {
			return true
		}
	}
	return false
}
