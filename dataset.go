package findash

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/findash/date"
	"github.com/shopspring/decimal"
)

// Column names, in file order.
const (
	ColDate         = "Date"
	ColRevenue      = "Revenue"
	ColProfit       = "Profit"
	ColCashInflow   = "Cash Inflow"
	ColCashOutflow  = "Cash Outflow"
	ColCurrentRatio = "Current Ratio"
	ColQuickRatio   = "Quick Ratio"
	ColDebtToEquity = "Debt-to-Equity Ratio"
	ColGrossMargin  = "Gross Margin"

	// expenseMarker identifies expense columns, "<Category> Expense".
	expenseMarker = "Expense"
)

// baseColumns are the columns every dataset has, before the expense columns.
var baseColumns = []string{
	ColDate, ColRevenue, ColProfit, ColCashInflow, ColCashOutflow,
	ColCurrentRatio, ColQuickRatio, ColDebtToEquity, ColGrossMargin,
}

// DefaultCategories are the expense categories of a generated dataset.
var DefaultCategories = []string{"Salaries", "Marketing", "R&D", "Operations", "Miscellaneous"}

// ExpenseColumn returns the column name holding the expenses of a category.
func ExpenseColumn(category string) string { return category + " " + expenseMarker }

// IsExpenseColumn reports whether a column holds expenses.
func IsExpenseColumn(col string) bool { return strings.Contains(col, expenseMarker) }

// ValidateCategories checks that categories name distinct expense columns
// that a CSV file can hold and read back.
func ValidateCategories(categories []string) error {
	if len(categories) == 0 {
		return fmt.Errorf("at least one expense category is required")
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c == "" || strings.TrimSpace(c) != c {
			return fmt.Errorf("invalid expense category %q", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate expense category %q", c)
		}
		seen[c] = true
	}
	return nil
}

// Record is one day of financial figures.
type Record struct {
	Date         date.Date
	Revenue      Money
	Profit       Money
	CashInflow   Money
	CashOutflow  Money
	CurrentRatio Ratio
	QuickRatio   Ratio
	DebtToEquity Ratio
	GrossMargin  Ratio
	// Expenses are aligned with the dataset categories.
	Expenses []Money
}

// NetCashFlow returns the cash inflow minus the cash outflow.
func (r Record) NetCashFlow() Money { return r.CashInflow.Sub(r.CashOutflow) }

// TotalExpenses returns the sum of all expense categories of the day.
func (r Record) TotalExpenses() Money {
	total := M(0, r.Revenue.Currency())
	for _, e := range r.Expenses {
		total = total.Add(e)
	}
	return total
}

// Dataset is an in-memory table of daily records, in chronological order.
type Dataset struct {
	currency   string
	categories []string
	records    []Record
}

// NewDataset creates an empty dataset with the given currency and expense categories.
func NewDataset(currency string, categories ...string) *Dataset {
	return &Dataset{currency: currency, categories: slices.Clone(categories)}
}

// Currency returns the currency of every amount in the dataset.
func (ds *Dataset) Currency() string { return ds.currency }

// Categories returns the expense categories, in column order.
func (ds *Dataset) Categories() []string { return slices.Clone(ds.categories) }

// Len returns the number of records.
func (ds *Dataset) Len() int { return len(ds.records) }

// Records returns the records in chronological order.
func (ds *Dataset) Records() []Record { return slices.Clone(ds.records) }

// Span returns the range of dates covered by the dataset.
func (ds *Dataset) Span() (date.Range, bool) {
	if len(ds.records) == 0 {
		return date.Range{}, false
	}
	return date.Range{From: ds.records[0].Date, To: ds.records[len(ds.records)-1].Date}, true
}

// Append adds a record, keeping the chronological order.
func (ds *Dataset) Append(rec Record) error {
	if rec.Date.IsZero() {
		return fmt.Errorf("record has no date")
	}
	if len(rec.Expenses) != len(ds.categories) {
		return fmt.Errorf("record %s has %d expenses, want %d", rec.Date, len(rec.Expenses), len(ds.categories))
	}
	for _, m := range []Money{rec.Revenue, rec.Profit, rec.CashInflow, rec.CashOutflow} {
		if m.Currency() != ds.currency {
			return fmt.Errorf("record %s: currency %q does not match dataset currency %q", rec.Date, m.Currency(), ds.currency)
		}
	}
	rec.Expenses = slices.Clone(rec.Expenses)
	i, found := slices.BinarySearchFunc(ds.records, rec.Date, func(r Record, d date.Date) int {
		return r.Date.Time().Compare(d.Time())
	})
	if found {
		return fmt.Errorf("duplicate record for %s", rec.Date)
	}
	ds.records = slices.Insert(ds.records, i, rec)
	return nil
}

// Columns returns the header of the table, in file order.
func (ds *Dataset) Columns() []string {
	cols := slices.Clone(baseColumns)
	for _, c := range ds.categories {
		cols = append(cols, ExpenseColumn(c))
	}
	return cols
}

// ExpenseColumns returns every column whose name contains "Expense".
func (ds *Dataset) ExpenseColumns() []string {
	var cols []string
	for _, c := range ds.Columns() {
		if IsExpenseColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column returns the values of a numeric column, in chronological order.
func (ds *Dataset) Column(name string) ([]decimal.Decimal, error) {
	get, err := ds.accessor(name)
	if err != nil {
		return nil, err
	}
	values := make([]decimal.Decimal, len(ds.records))
	for i, r := range ds.records {
		values[i] = get(r)
	}
	return values, nil
}

// Dates returns the date column.
func (ds *Dataset) Dates() []date.Date {
	dates := make([]date.Date, len(ds.records))
	for i, r := range ds.records {
		dates[i] = r.Date
	}
	return dates
}

// accessor returns a function reading a numeric column from a record.
func (ds *Dataset) accessor(name string) (func(Record) decimal.Decimal, error) {
	switch name {
	case ColRevenue:
		return func(r Record) decimal.Decimal { return r.Revenue.Decimal() }, nil
	case ColProfit:
		return func(r Record) decimal.Decimal { return r.Profit.Decimal() }, nil
	case ColCashInflow:
		return func(r Record) decimal.Decimal { return r.CashInflow.Decimal() }, nil
	case ColCashOutflow:
		return func(r Record) decimal.Decimal { return r.CashOutflow.Decimal() }, nil
	case ColCurrentRatio:
		return func(r Record) decimal.Decimal { return r.CurrentRatio.Decimal() }, nil
	case ColQuickRatio:
		return func(r Record) decimal.Decimal { return r.QuickRatio.Decimal() }, nil
	case ColDebtToEquity:
		return func(r Record) decimal.Decimal { return r.DebtToEquity.Decimal() }, nil
	case ColGrossMargin:
		return func(r Record) decimal.Decimal { return r.GrossMargin.Decimal() }, nil
	}
	for i, c := range ds.categories {
		if ExpenseColumn(c) == name {
			return func(r Record) decimal.Decimal { return r.Expenses[i].Decimal() }, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownColumn, name)
}

// Latest returns at most n records, newest first.
func (ds *Dataset) Latest(n int) []Record {
	n = min(max(n, 0), len(ds.records))
	latest := make([]Record, 0, n)
	for i := len(ds.records) - 1; i >= len(ds.records)-n; i-- {
		latest = append(latest, ds.records[i])
	}
	return latest
}

// Cells returns the record values as strings, in column order.
func (ds *Dataset) Cells(r Record) []string {
	cells := []string{
		r.Date.String(),
		r.Revenue.Plain(),
		r.Profit.Plain(),
		r.CashInflow.Plain(),
		r.CashOutflow.Plain(),
		r.CurrentRatio.String(),
		r.QuickRatio.String(),
		r.DebtToEquity.String(),
		r.GrossMargin.String(),
	}
	for _, e := range r.Expenses {
		cells = append(cells, e.Plain())
	}
	return cells
}
