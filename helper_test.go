package findash

import (
	"testing"
	"time"

	"github.com/etnz/findash/date"
	"github.com/shopspring/decimal"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// dec is a helper for test to create decimals from const
func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// newTestDataset returns a small dataset with two expense categories.
//
// day i (from 0) of January 2025 has revenue 100*(i+1), profit 10*(i+1),
// inflow 150*(i+1), outflow 140*(i+1), and expenses (i+1, 2*(i+1)).
func newTestDataset(t *testing.T, days int) *Dataset {
	t.Helper()
	ds := NewDataset("USD", "Rent", "Travel")
	for i := range days {
		n := float64(i + 1)
		err := ds.Append(Record{
			Date:         date.New(2025, time.January, 1).Add(i),
			Revenue:      USD(100 * n),
			Profit:       USD(10 * n),
			CashInflow:   USD(150 * n),
			CashOutflow:  USD(140 * n),
			CurrentRatio: R(1.5),
			QuickRatio:   R(1.1),
			DebtToEquity: R(0.75),
			GrossMargin:  R(0.4),
			Expenses:     []Money{USD(n), USD(2 * n)},
		})
		if err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}
	return ds
}
