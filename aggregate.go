package findash

import (
	"fmt"
	"time"

	"github.com/etnz/findash/date"
	"github.com/shopspring/decimal"
)

// Sum returns the sum of values.
func Sum(values []decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, values...)
}

// RollingSum returns the trailing window sum of values.
//
// Element i holds the sum of values[i-window+1:i+1]. The first window-1
// elements are not valid, there are not enough values to fill the window.
func RollingSum(values []decimal.Decimal, window int) ([]decimal.NullDecimal, error) {
	if window <= 0 {
		return nil, fmt.Errorf("invalid rolling window %d", window)
	}
	out := make([]decimal.NullDecimal, len(values))
	acc := decimal.Zero
	for i, v := range values {
		acc = acc.Add(v)
		if i >= window {
			acc = acc.Sub(values[i-window])
		}
		if i >= window-1 {
			out[i] = decimal.NullDecimal{Decimal: acc, Valid: true}
		}
	}
	return out, nil
}

// MonthlySum groups values by calendar month, regardless of the year.
//
// The result is indexed by month, January first. Months without values are zero.
func MonthlySum(dates []date.Date, values []decimal.Decimal) ([12]decimal.Decimal, error) {
	var months [12]decimal.Decimal
	for i := range months {
		months[i] = decimal.Zero
	}
	if len(dates) != len(values) {
		return months, fmt.Errorf("cannot group %d values by %d dates", len(values), len(dates))
	}
	for i, d := range dates {
		m := d.Month() - time.January
		months[m] = months[m].Add(values[i])
	}
	return months, nil
}

// CategoryAmount is an amount aggregated by expense column.
type CategoryAmount struct {
	Column string
	Amount Money
}

// ExpenseTotals returns the total of each expense column, in column order.
func ExpenseTotals(ds *Dataset) ([]CategoryAmount, error) {
	cols := ds.ExpenseColumns()
	totals := make([]CategoryAmount, 0, len(cols))
	for _, col := range cols {
		values, err := ds.Column(col)
		if err != nil {
			return nil, err
		}
		totals = append(totals, CategoryAmount{Column: col, Amount: M(Sum(values), ds.Currency())})
	}
	return totals, nil
}
