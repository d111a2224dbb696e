package invest

import "sort"

// Distribution is one slice of the portfolio grouped by a key, with its
// weight of the total value.
type Distribution struct {
	Key    string
	Value  Money
	Weight Percent
	Count  int
}

// Summary condenses a valuation into a few headline numbers.
type Summary struct {
	Date          string
	BaseCurrency  string
	TotalValue    Money
	SecurityValue Money
	CashValue     Money
	Positions     int
	Accounts      int
	StalePrices   int
	Issues        int
}

// Summarize folds the valuation into its headline numbers.
func (v *Valuation) Summarize() Summary {
	s := Summary{
		Date:          v.Date.String(),
		BaseCurrency:  v.BaseCurrency,
		TotalValue:    v.TotalValue,
		SecurityValue: M(0, v.BaseCurrency),
		CashValue:     M(0, v.BaseCurrency),
		Positions:     len(v.Positions),
		Issues:        len(v.Issues),
	}
	accounts := make(map[string]bool)
	for _, pos := range v.Positions {
		s.SecurityValue = s.SecurityValue.Add(pos.Value)
		accounts[pos.Account] = true
		if pos.Source == PriceStale {
			s.StalePrices++
		}
	}
	for _, cash := range v.Cash {
		s.CashValue = s.CashValue.Add(cash.Value)
		accounts[cash.Account] = true
	}
	s.Accounts = len(accounts)
	return s
}

// ByClass breaks the valuation down per asset class. Cash balances count
// under the CASH class.
func (v *Valuation) ByClass() []Distribution {
	return v.distribute(func(pos PositionValue) string { return pos.Class.String() }, Cash.String())
}

// ByCurrency breaks the valuation down per original asset currency.
func (v *Valuation) ByCurrency() []Distribution {
	return v.distribute(func(pos PositionValue) string { return pos.Currency }, "")
}

// ByAccount breaks the valuation down per custody account.
func (v *Valuation) ByAccount() []Distribution {
	return v.distribute(func(pos PositionValue) string { return pos.Account }, "")
}

// distribute groups position values by key and folds cash in. cashKey ""
// groups cash by the same dimension as positions (currency or account).
func (v *Valuation) distribute(key func(PositionValue) string, cashKey string) []Distribution {
	values := make(map[string]Money)
	counts := make(map[string]int)
	add := func(k string, m Money) {
		if cur, ok := values[k]; ok {
			values[k] = cur.Add(m)
		} else {
			values[k] = m
		}
		counts[k]++
	}

	for _, pos := range v.Positions {
		add(key(pos), pos.Value)
	}
	for _, cash := range v.Cash {
		switch cashKey {
		case "":
			// cash groups under its own currency or account
			add(cashGroup(key, cash), cash.Value)
		default:
			add(cashKey, cash.Value)
		}
	}

	list := make([]Distribution, 0, len(values))
	for k, value := range values {
		d := Distribution{Key: k, Value: value, Count: counts[k]}
		if !v.TotalValue.IsZero() {
			d.Weight = PercentOf(value.Amount(), v.TotalValue.Amount())
		}
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Value.GreaterThan(list[j].Value) })
	return list
}

// cashGroup reuses the position grouping function on a synthetic position so
// cash lands in the right currency or account bucket.
func cashGroup(key func(PositionValue) string, cash CashValue) string {
	return key(PositionValue{Account: cash.Account, Currency: cash.Currency})
}
