package date

import (
	"testing"
	"time"
)

func TestNewNormalizes(t *testing.T) {
	// Day 32 of January must roll over to February 1st.
	d := New(2025, time.January, 32)
	if got, want := d.String(), "2025-02-01"; got != want {
		t.Errorf("New(2025, January, 32) = %v want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-07-01", want: "2025-07-01"},
		{in: "2025-7-1", want: "2025-07-01"},
		{in: "not-a-date", wantErr: true},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err == nil && got.String() != tc.want {
			t.Errorf("Parse(%q) = %v want %v", tc.in, got, tc.want)
		}
	}
}

func TestCompare(t *testing.T) {
	a, b := New(2025, time.March, 1), New(2025, time.March, 2)
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare is not a total order: %v vs %v", a, b)
	}
}

func TestAddCrossesMonth(t *testing.T) {
	d := New(2025, time.January, 31).Add(1)
	if got, want := d.String(), "2025-02-01"; got != want {
		t.Errorf("Add(1) = %v want %v", got, want)
	}
}
