package invest

import "fmt"

// AssetClass is the broad classification of an asset.
type AssetClass int

const (
	Equity AssetClass = iota
	Bond
	Commodity
	REITs
	Cash
	Alternative
	Multi
	Benchmark
)

func (c AssetClass) String() string {
	switch c {
	case Equity:
		return "EQUITY"
	case Bond:
		return "BOND"
	case Commodity:
		return "COMMODITY"
	case REITs:
		return "REITS"
	case Cash:
		return "CASH"
	case Alternative:
		return "ALTERNATIVE"
	case Multi:
		return "MULTI"
	case Benchmark:
		return "BENCHMARK"
	default:
		return "unknown"
	}
}

// ParseAssetClass parses the storage representation of an asset class.
func ParseAssetClass(s string) (AssetClass, error) {
	switch s {
	case "EQUITY":
		return Equity, nil
	case "BOND":
		return Bond, nil
	case "COMMODITY":
		return Commodity, nil
	case "REITS":
		return REITs, nil
	case "CASH":
		return Cash, nil
	case "ALTERNATIVE":
		return Alternative, nil
	case "MULTI":
		return Multi, nil
	case "BENCHMARK":
		return Benchmark, nil
	default:
		return 0, fmt.Errorf("unknown asset class: %q", s)
	}
}

// Asset identifies a tradable instrument. Ticker is the unique key.
type Asset struct {
	Ticker   string
	Name     string
	Class    AssetClass
	SubClass string
	Currency string
	Exchange string
	ISIN     string
	// TrackedIndex optionally links an ETF to the ticker of the index it
	// replicates. Empty when the asset tracks nothing.
	TrackedIndex string
}

// Account is a custody location with a base currency. It is independent of
// the assets held in it.
type Account struct {
	Name         string
	Broker       string
	BaseCurrency string
}
