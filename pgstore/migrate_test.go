package pgstore

import (
	"strings"
	"testing"

	invest "github.com/miluoalbert/invest-master"
)

// The SQL enums gate what UpsertAssets and AddTransaction can write and what
// the readers can parse back. Every Go enum value must be declared in the
// schema, or the round trip breaks on the first row using it.
func TestSchemaEnumsCoverGoEnums(t *testing.T) {
	schema, err := migrations.ReadFile("migrations/0001_schema.up.sql")
	if err != nil {
		t.Fatalf("reading embedded schema: %v", err)
	}
	sql := string(schema)

	classes := []invest.AssetClass{
		invest.Equity, invest.Bond, invest.Commodity, invest.REITs,
		invest.Cash, invest.Alternative, invest.Multi, invest.Benchmark,
	}
	for _, c := range classes {
		if !strings.Contains(sql, "'"+c.String()+"'") {
			t.Errorf("asset_class enum is missing %q", c.String())
		}
	}

	types := []invest.TxType{
		invest.Buy, invest.Sell, invest.Dividend, invest.Interest,
		invest.Deposit, invest.Withdraw, invest.Convert, invest.Tax, invest.Fee,
	}
	for _, x := range types {
		if !strings.Contains(sql, "'"+x.String()+"'") {
			t.Errorf("transaction_type enum is missing %q", x.String())
		}
	}

	for _, x := range []invest.TargetType{invest.TargetAsset, invest.TargetClass} {
		if !strings.Contains(sql, "'"+x.String()+"'") {
			t.Errorf("rebalance_target_type enum is missing %q", x.String())
		}
	}
}
