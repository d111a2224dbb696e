package fundjson

import (
	"testing"
	"time"

	invest "github.com/miluoalbert/invest-master"
	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

var ishares = Mapping{
	Items:          "$.aaData",
	Ticker:         "$.ticker",
	Name:           "$.name",
	Weight:         "$.weight",
	Sector:         "$.sector",
	PercentWeights: true,
}

const isharesDoc = `{
	"aaData": [
		{"ticker": "NVDA", "name": "NVIDIA CORP", "weight": 7.2, "sector": "Information Technology"},
		{"ticker": "MSFT", "name": "MICROSOFT CORP", "weight": "6.5", "sector": "Information Technology"}
	]
}`

func TestParse(t *testing.T) {
	on := date.New(2025, time.June, 30)
	comps, err := Parse([]byte(isharesDoc), "IVV", on, ishares)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(comps) != 2 {
		t.Fatalf("Parse() = %+v want two holdings", comps)
	}

	nvda := comps[0]
	want := invest.Component{
		Parent:     "IVV",
		ReportDate: on,
		Underlying: "NVDA",
		Name:       "NVIDIA CORP",
		Weight:     decimal.NewFromFloat(0.072),
		Sector:     "Information Technology",
	}
	if nvda.Parent != want.Parent || nvda.Underlying != want.Underlying || nvda.Name != want.Name || nvda.Sector != want.Sector {
		t.Errorf("Parse()[0] = %+v want %+v", nvda, want)
	}
	if !nvda.Weight.Equal(want.Weight) {
		t.Errorf("NVDA weight = %v want 0.072", nvda.Weight)
	}
	// numeric strings parse too
	if !comps[1].Weight.Equal(decimal.NewFromFloat(0.065)) {
		t.Errorf("MSFT weight = %v want 0.065", comps[1].Weight)
	}
}

func TestParseFractionalWeights(t *testing.T) {
	doc := `{"holdings": [{"symbol": "AAPL", "w": 0.05}]}`
	mapping := Mapping{Items: "$.holdings", Ticker: "$.symbol", Weight: "$.w"}

	comps, err := Parse([]byte(doc), "QQQ", date.New(2025, time.June, 30), mapping)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !comps[0].Weight.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("weight = %v want 0.05 untouched", comps[0].Weight)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	on := date.New(2025, time.June, 30)
	cases := []struct {
		name    string
		doc     string
		mapping Mapping
	}{
		{"not json", `{{{`, ishares},
		{"items not an array", `{"aaData": {"ticker": "NVDA"}}`, ishares},
		{"missing ticker", `{"aaData": [{"weight": 1.0}]}`, ishares},
		{"weight not numeric", `{"aaData": [{"ticker": "NVDA", "weight": "n/a"}]}`, ishares},
		{"no weight path", `{"aaData": [{"ticker": "NVDA"}]}`, Mapping{Items: "$.aaData", Ticker: "$.ticker"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc), "IVV", on, tc.mapping); err == nil {
				t.Error("Parse() accepted a bad document")
			}
		})
	}
}
