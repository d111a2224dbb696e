package renderer

import (
	"strings"
	"testing"
	"time"

	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

func jun(day int) date.Date { return date.New(2025, time.June, day) }

func sampleValuation() *invest.Valuation {
	return &invest.Valuation{
		Date:         jun(30),
		BaseCurrency: "CNY",
		Positions: []invest.PositionValue{{
			Account:   "ibkr",
			Ticker:    "SPY",
			Class:     invest.Equity,
			Currency:  "USD",
			Quantity:  invest.Q(100),
			Price:     invest.M(50, "USD"),
			PriceDate: jun(27),
			Source:    invest.PriceStale,
			Local:     invest.M(5000, "USD"),
			Value:     invest.M(35000, "CNY"),
		}},
		Cash: []invest.CashValue{{
			Account:  "ibkr",
			Currency: "USD",
			Balance:  invest.M(5000, "USD"),
			Value:    invest.M(35000, "CNY"),
		}},
		TotalValue: invest.M(70000, "CNY"),
	}
}

func TestHoldingMarkdown(t *testing.T) {
	out := HoldingMarkdown(sampleValuation())

	for _, want := range []string{"# Holdings on 2025-06-30", "## Securities", "SPY", "(stale)", "## Cash", "Total Value"} {
		if !strings.Contains(out, want) {
			t.Errorf("HoldingMarkdown() missing %q in:\n%s", want, out)
		}
	}
}

func TestHoldingMarkdownListsIssues(t *testing.T) {
	v := sampleValuation()
	v.Issues = append(v.Issues, invest.Issue{
		Account: "ibkr", Ticker: "MYSTERY",
		Err: &invest.PriceUnavailableError{Ticker: "MYSTERY", Date: jun(30)},
	})

	out := HoldingMarkdown(v)
	if !strings.Contains(out, "## Issues") || !strings.Contains(out, "MYSTERY") {
		t.Errorf("HoldingMarkdown() does not surface issues:\n%s", out)
	}
}

func TestExposureMarkdown(t *testing.T) {
	e := &invest.Exposures{
		Parent: "SPY",
		Date:   jun(30),
		List: []invest.Exposure{
			{Ticker: "NVDA", Name: "NVIDIA Corp", Weight: decimal.NewFromFloat(0.10), Dims: invest.Dimensions{Sector: "Technology"}},
			{Ticker: "OTHER", Name: "Remaining holdings", Weight: decimal.NewFromFloat(0.90)},
		},
	}

	out := ExposureMarkdown(e)
	for _, want := range []string{"# Exposure of SPY on 2025-06-30", "NVDA", "10.00%", "Technology", "Total Weight"} {
		if !strings.Contains(out, want) {
			t.Errorf("ExposureMarkdown() missing %q in:\n%s", want, out)
		}
	}
}

func TestRebalanceMarkdown(t *testing.T) {
	r := &invest.RebalanceReport{
		Strategy:     "core",
		Date:         jun(30),
		BaseCurrency: "CNY",
		TotalValue:   invest.M(35000, "CNY"),
		Entries: []invest.DriftEntry{{
			Key:          "NVDA",
			Type:         invest.TargetAsset,
			TargetWeight: decimal.NewFromFloat(0.05),
			ActualWeight: decimal.NewFromFloat(0.10),
			Drift:        decimal.NewFromFloat(0.05),
			Tolerance:    decimal.NewFromFloat(0.02),
			Value:        invest.M(3500, "CNY"),
			ActionNeeded: true,
		}},
		Unallocated: []invest.UnallocatedEntry{{
			Key:          "OTHER",
			Type:         invest.TargetAsset,
			ActualWeight: decimal.NewFromFloat(0.90),
			Value:        invest.M(31500, "CNY"),
		}},
	}

	out := RebalanceMarkdown(r)
	for _, want := range []string{`# Rebalancing "core" on 2025-06-30`, "NVDA", "+5.00%", "rebalance", "## Unallocated", "OTHER"} {
		if !strings.Contains(out, want) {
			t.Errorf("RebalanceMarkdown() missing %q in:\n%s", want, out)
		}
	}
}

func TestSummaryMarkdown(t *testing.T) {
	out := SummaryMarkdown(sampleValuation())
	for _, want := range []string{"# Portfolio Summary on 2025-06-30", "## By Asset Class", "EQUITY", "CASH", "## By Currency", "USD", "## By Account", "ibkr", "Stale prices"} {
		if !strings.Contains(out, want) {
			t.Errorf("SummaryMarkdown() missing %q in:\n%s", want, out)
		}
	}
}
