package invest

import "testing"

func TestSummarize(t *testing.T) {
	as := testSystem(t)
	v, err := as.Valuation(jan(15))
	if err != nil {
		t.Fatalf("Valuation() error = %v", err)
	}

	s := v.Summarize()
	if want := M(35000, "CNY"); !s.SecurityValue.Equal(want) {
		t.Errorf("SecurityValue = %v want %v", s.SecurityValue, want)
	}
	if want := M(35000, "CNY"); !s.CashValue.Equal(want) {
		t.Errorf("CashValue = %v want %v", s.CashValue, want)
	}
	if s.Positions != 1 || s.Accounts != 1 {
		t.Errorf("Positions = %d Accounts = %d want 1 and 1", s.Positions, s.Accounts)
	}
	if s.StalePrices != 0 {
		t.Errorf("StalePrices = %d want 0, the Jan 15 close is fresh", s.StalePrices)
	}
}

func TestSummarizeCountsStalePrices(t *testing.T) {
	as := testSystem(t)
	v, err := as.Valuation(jan(20))
	if err != nil {
		t.Fatalf("Valuation() error = %v", err)
	}
	if s := v.Summarize(); s.StalePrices != 1 {
		t.Errorf("StalePrices = %d want 1", s.StalePrices)
	}
}

func TestDistributionByClass(t *testing.T) {
	as := testSystem(t)
	v, err := as.Valuation(jan(15))
	if err != nil {
		t.Fatalf("Valuation() error = %v", err)
	}

	dist := v.ByClass()
	if len(dist) != 2 {
		t.Fatalf("ByClass() = %+v want EQUITY and CASH", dist)
	}
	for _, d := range dist {
		switch d.Key {
		case "EQUITY", "CASH":
			if want := M(35000, "CNY"); !d.Value.Equal(want) {
				t.Errorf("%s Value = %v want %v", d.Key, d.Value, want)
			}
			if !d.Weight.Equal(Percent(0.5)) {
				t.Errorf("%s Weight = %v want 50%%", d.Key, d.Weight)
			}
		default:
			t.Errorf("unexpected class %q", d.Key)
		}
	}
}

func TestDistributionByCurrency(t *testing.T) {
	as := testSystem(t)
	v, err := as.Valuation(jan(15))
	if err != nil {
		t.Fatalf("Valuation() error = %v", err)
	}

	dist := v.ByCurrency()
	// position and cash are both USD-denominated
	if len(dist) != 1 || dist[0].Key != "USD" {
		t.Fatalf("ByCurrency() = %+v want a single USD bucket", dist)
	}
	if dist[0].Count != 2 {
		t.Errorf("USD Count = %d want 2", dist[0].Count)
	}
	if !dist[0].Weight.Equal(Percent(1)) {
		t.Errorf("USD Weight = %v want 100%%", dist[0].Weight)
	}
}
