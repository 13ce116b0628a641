package findash

import (
	"testing"
	"time"

	"github.com/etnz/findash/date"
	"github.com/shopspring/decimal"
)

func decimals(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func TestSum(t *testing.T) {
	if got := Sum(nil); !got.IsZero() {
		t.Errorf("Sum(nil) = %v, want 0", got)
	}
	if got := Sum(decimals(1.1, 2.2, 3.3)); !got.Equal(dec(6.6)) {
		t.Errorf("Sum() = %v, want 6.6", got)
	}
}

func TestRollingSum(t *testing.T) {
	testCases := []struct {
		name   string
		values []decimal.Decimal
		window int
		want   []any // nil for invalid values
	}{
		{
			name:   "window of 3",
			values: decimals(1, 2, 3, 4, 5),
			window: 3,
			want:   []any{nil, nil, 6.0, 9.0, 12.0},
		},
		{
			name:   "window of 1 is identity",
			values: decimals(4, -1, 2),
			window: 1,
			want:   []any{4.0, -1.0, 2.0},
		},
		{
			name:   "window larger than data",
			values: decimals(1, 2),
			window: 30,
			want:   []any{nil, nil},
		},
		{
			name:   "empty",
			values: nil,
			window: 30,
			want:   []any{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RollingSum(tc.values, tc.window)
			if err != nil {
				t.Fatalf("RollingSum() failed: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("len(RollingSum()) = %d, want %d", len(got), len(tc.want))
			}
			for i, w := range tc.want {
				if w == nil {
					if got[i].Valid {
						t.Errorf("RollingSum()[%d] = %v, want invalid", i, got[i].Decimal)
					}
					continue
				}
				if !got[i].Valid || !got[i].Decimal.Equal(dec(w.(float64))) {
					t.Errorf("RollingSum()[%d] = %v (valid=%v), want %v", i, got[i].Decimal, got[i].Valid, w)
				}
			}
		})
	}
	if _, err := RollingSum(decimals(1), 0); err == nil {
		t.Errorf("RollingSum() with a zero window should fail")
	}
}

func TestMonthlySum(t *testing.T) {
	dates := []date.Date{
		date.New(2024, time.October, 30),
		date.New(2024, time.November, 2),
		date.New(2025, time.October, 1), // same calendar month as the first one.
	}
	months, err := MonthlySum(dates, decimals(10, 20, 5))
	if err != nil {
		t.Fatal(err)
	}
	for m, v := range months {
		want := 0.0
		switch time.Month(m + 1) {
		case time.October:
			want = 15
		case time.November:
			want = 20
		}
		if !v.Equal(dec(want)) {
			t.Errorf("MonthlySum()[%s] = %v, want %v", time.Month(m+1), v, want)
		}
	}
	if _, err := MonthlySum(dates, decimals(1)); err == nil {
		t.Errorf("MonthlySum() with mismatched lengths should fail")
	}
}

func TestExpenseTotals(t *testing.T) {
	totals, err := ExpenseTotals(newTestDataset(t, 3))
	if err != nil {
		t.Fatal(err)
	}
	want := []CategoryAmount{
		{Column: "Rent Expense", Amount: USD(6)},
		{Column: "Travel Expense", Amount: USD(12)},
	}
	if len(totals) != len(want) {
		t.Fatalf("ExpenseTotals() = %v, want %v", totals, want)
	}
	for i := range want {
		if totals[i].Column != want[i].Column || !totals[i].Amount.Equal(want[i].Amount) {
			t.Errorf("ExpenseTotals()[%d] = %v, want %v", i, totals[i], want[i])
		}
	}
}
