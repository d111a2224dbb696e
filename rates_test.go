package invest

import (
	"errors"
	"testing"
	"time"

	"github.com/miluoalbert/invest-master/date"
	"github.com/shopspring/decimal"
)

func d(day int) date.Date { return date.New(2025, time.June, day) }

func TestRateIdentity(t *testing.T) {
	rt := NewRateTable()
	r, err := rt.Rate(d(1), "USD", "USD")
	if err != nil {
		t.Fatalf("Rate(USD, USD) error = %v", err)
	}
	if !r.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Rate(USD, USD) = %v want 1", r)
	}
}

func TestRateDirectAsOf(t *testing.T) {
	rt := NewRateTable()
	rt.Append(d(1), "USD", "CNY", decimal.NewFromFloat(7.0))
	rt.Append(d(10), "USD", "CNY", decimal.NewFromFloat(7.2))

	tests := []struct {
		day  date.Date
		want string
	}{
		{d(1), "7"},
		{d(5), "7"},   // most recent at or before the 5th
		{d(10), "7.2"},
		{d(20), "7.2"}, // never a future rate, the 10th still applies
	}
	for _, tc := range tests {
		r, err := rt.Rate(tc.day, "USD", "CNY")
		if err != nil {
			t.Fatalf("Rate(%v) error = %v", tc.day, err)
		}
		if r.String() != tc.want {
			t.Errorf("Rate(%v) = %v want %v", tc.day, r, tc.want)
		}
	}

	// Before the first stored rate there is no path at all.
	if _, err := rt.Rate(d(1).Add(-1), "USD", "CNY"); err == nil {
		t.Errorf("Rate before first stored day = nil error, want RateUnavailableError")
	}
}

func TestRateInverse(t *testing.T) {
	rt := NewRateTable()
	rt.Append(d(1), "CNY", "USD", decimal.NewFromFloat(0.14))

	r, err := rt.Rate(d(1), "USD", "CNY")
	if err != nil {
		t.Fatalf("Rate(USD, CNY) error = %v", err)
	}
	inv, err := rt.Rate(d(1), "CNY", "USD")
	if err != nil {
		t.Fatalf("Rate(CNY, USD) error = %v", err)
	}
	want := decimal.NewFromInt(1).DivRound(inv, rateDigits)
	if !r.Equal(want) {
		t.Errorf("Rate(USD, CNY) = %v want 1/Rate(CNY, USD) = %v", r, want)
	}
}

func TestRateCrossOneHop(t *testing.T) {
	rt := NewRateTable()
	// No direct HKD/CNY pair, but both legs exist against USD.
	rt.Append(d(1), "HKD", "USD", decimal.NewFromFloat(0.128))
	rt.Append(d(1), "USD", "CNY", decimal.NewFromFloat(7.0))

	r, err := rt.Rate(d(1), "HKD", "CNY")
	if err != nil {
		t.Fatalf("Rate(HKD, CNY) error = %v", err)
	}
	if want := decimal.NewFromFloat(0.896); !r.Equal(want) {
		t.Errorf("Rate(HKD, CNY) = %v want %v", r, want)
	}
}

func TestRateUnavailable(t *testing.T) {
	rt := NewRateTable()
	rt.Append(d(1), "USD", "CNY", decimal.NewFromFloat(7.0))

	_, err := rt.Rate(d(1), "GBP", "JPY")
	var rateErr *RateUnavailableError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Rate(GBP, JPY) error = %v want *RateUnavailableError", err)
	}
	if rateErr.From != "GBP" || rateErr.To != "JPY" {
		t.Errorf("RateUnavailableError = %+v want GBP/JPY", rateErr)
	}
}

func TestConvert(t *testing.T) {
	rt := NewRateTable()
	rt.Append(d(1), "USD", "CNY", decimal.NewFromFloat(7.0))

	got, err := rt.Convert(M(5000, "USD"), "CNY", d(1))
	if err != nil {
		t.Fatalf("Convert error = %v", err)
	}
	if want := M(35000, "CNY"); !got.Equal(want) {
		t.Errorf("Convert(5000 USD, CNY) = %v want %v", got, want)
	}

	// Same currency conversion is the identity even on an empty table.
	same, err := NewRateTable().Convert(M(42, "EUR"), "EUR", d(1))
	if err != nil || !same.Equal(M(42, "EUR")) {
		t.Errorf("Convert(EUR, EUR) = %v, %v want 42 EUR, nil", same, err)
	}
}
