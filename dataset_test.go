package findash

import (
	"errors"
	"testing"
	"time"

	"github.com/etnz/findash/date"
	"github.com/google/go-cmp/cmp"
)

func TestDatasetColumns(t *testing.T) {
	ds := newTestDataset(t, 0)
	want := []string{
		"Date", "Revenue", "Profit", "Cash Inflow", "Cash Outflow",
		"Current Ratio", "Quick Ratio", "Debt-to-Equity Ratio", "Gross Margin",
		"Rent Expense", "Travel Expense",
	}
	if diff := cmp.Diff(want, ds.Columns()); diff != "" {
		t.Errorf("Columns() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Rent Expense", "Travel Expense"}, ds.ExpenseColumns()); diff != "" {
		t.Errorf("ExpenseColumns() mismatch (-want +got):\n%s", diff)
	}
}

func TestDatasetAppendKeepsOrder(t *testing.T) {
	ds := NewDataset("USD")
	for _, d := range []int{3, 1, 2} {
		rec := Record{Date: date.New(2025, time.May, d), Revenue: USD(1), Profit: USD(1), CashInflow: USD(1), CashOutflow: USD(1)}
		if err := ds.Append(rec); err != nil {
			t.Fatalf("Append(%d) failed: %v", d, err)
		}
	}
	want := []date.Date{date.New(2025, time.May, 1), date.New(2025, time.May, 2), date.New(2025, time.May, 3)}
	if diff := cmp.Diff(want, ds.Dates(), cmp.Comparer(func(a, b date.Date) bool { return a == b })); diff != "" {
		t.Errorf("Dates() mismatch (-want +got):\n%s", diff)
	}
}

func TestDatasetAppendErrors(t *testing.T) {
	ds := newTestDataset(t, 1)
	base := ds.Records()[0]

	dup := base
	if err := ds.Append(dup); err == nil {
		t.Errorf("Append() of a duplicate date should fail")
	}

	missing := base
	missing.Date = base.Date.Add(1)
	missing.Expenses = []Money{USD(1)}
	if err := ds.Append(missing); err == nil {
		t.Errorf("Append() with missing expenses should fail")
	}

	wrongCur := base
	wrongCur.Date = base.Date.Add(2)
	wrongCur.Revenue = M(1, "EUR")
	if err := ds.Append(wrongCur); err == nil {
		t.Errorf("Append() with a foreign currency should fail")
	}

	undated := base
	undated.Date = date.Date{}
	if err := ds.Append(undated); err == nil {
		t.Errorf("Append() without a date should fail")
	}
	if ds.Len() != 1 {
		t.Errorf("Len() = %d after rejected appends, want 1", ds.Len())
	}
}

func TestValidateCategories(t *testing.T) {
	tests := []struct {
		categories []string
		valid      bool
	}{
		{DefaultCategories, true},
		{[]string{"Rent"}, true},
		{nil, false},
		{[]string{"Salaries", "Salaries"}, false},
		{[]string{"A", ""}, false},
		{[]string{" A"}, false},
	}
	for _, tc := range tests {
		err := ValidateCategories(tc.categories)
		if (err == nil) != tc.valid {
			t.Errorf("ValidateCategories(%q) = %v, want valid=%v", tc.categories, err, tc.valid)
		}
	}
}

func TestDatasetColumn(t *testing.T) {
	ds := newTestDataset(t, 3)
	got, err := ds.Column("Travel Expense")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 4, 6}
	for i := range want {
		if !got[i].Equal(dec(want[i])) {
			t.Errorf("Column()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if _, err := ds.Column("Coffee Expense"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("Column(unknown) error = %v, want ErrUnknownColumn", err)
	}
}

func TestDatasetLatest(t *testing.T) {
	ds := newTestDataset(t, 5)
	testCases := []struct {
		n    int
		want []int // day of month
	}{
		{n: 0, want: []int{}},
		{n: 2, want: []int{5, 4}},
		{n: 12, want: []int{5, 4, 3, 2, 1}},
		{n: -1, want: []int{}},
	}
	for _, tc := range testCases {
		got := []int{}
		for _, r := range ds.Latest(tc.n) {
			got = append(got, r.Date.Day())
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Latest(%d) mismatch (-want +got):\n%s", tc.n, diff)
		}
	}
}

func TestDatasetCells(t *testing.T) {
	ds := newTestDataset(t, 1)
	want := []string{"2025-01-01", "100", "10", "150", "140", "1.50", "1.10", "0.75", "0.40", "1", "2"}
	if diff := cmp.Diff(want, ds.Cells(ds.Records()[0])); diff != "" {
		t.Errorf("Cells() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordTotals(t *testing.T) {
	r := newTestDataset(t, 2).Records()[1]
	if got := r.TotalExpenses(); !got.Equal(USD(6)) {
		t.Errorf("TotalExpenses() = %v, want $6.00", got)
	}
	if got := r.NetCashFlow(); !got.Equal(USD(20)) {
		t.Errorf("NetCashFlow() = %v, want $20.00", got)
	}
}
