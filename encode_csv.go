package findash

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/findash/date"
	"github.com/shopspring/decimal"
)

// This file persists datasets as flat CSV files, one row per day, with the
// header of Dataset.Columns.

// EncodeCSV writes the dataset as CSV.
func EncodeCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns()); err != nil {
		return err
	}
	for _, r := range ds.records {
		if err := cw.Write(ds.Cells(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// recordSetter stores a parsed cell into a record.
type recordSetter func(r *Record, cell string) error

// DecodeCSV reads a dataset from CSV. name is for error messages only.
//
// Columns may come in any order. Date, Revenue, Profit, Cash Inflow and Cash
// Outflow are required, ratio columns are optional, and every "<Category>
// Expense" column becomes an expense category.
func DecodeCSV(r io.Reader, name, currency string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse error %s: missing header: %w", name, ErrEmptyDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("parse error %s: %w", name, err)
	}

	var categories []string
	setters := make([]recordSetter, len(header))
	seen := make(map[string]bool)
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if seen[col] {
			return nil, fmt.Errorf("parse error %s:1: duplicate column %q", name, col)
		}
		seen[col] = true
		if IsExpenseColumn(col) {
			category, ok := strings.CutSuffix(col, " "+expenseMarker)
			if !ok || category == "" {
				return nil, fmt.Errorf("parse error %s:1: expense column %q must be named \"<Category> %s\"", name, col, expenseMarker)
			}
			setters[i] = expenseSetter(len(categories), currency)
			categories = append(categories, category)
			continue
		}
		setter, err := columnSetter(col, currency)
		if err != nil {
			return nil, fmt.Errorf("parse error %s:1: %w", name, err)
		}
		setters[i] = setter
	}
	for _, col := range []string{ColDate, ColRevenue, ColProfit, ColCashInflow, ColCashOutflow} {
		if !seen[col] {
			return nil, fmt.Errorf("parse error %s:1: missing column %q", name, col)
		}
	}

	ds := NewDataset(currency, categories...)
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", name, line, err)
		}
		rec := Record{
			Revenue:     M(0, currency),
			Profit:      M(0, currency),
			CashInflow:  M(0, currency),
			CashOutflow: M(0, currency),
			Expenses:    make([]Money, len(categories)),
		}
		for i, cell := range cells {
			if err := setters[i](&rec, strings.TrimSpace(cell)); err != nil {
				return nil, fmt.Errorf("parse error %s:%d: column %q: %w", name, line, header[i], err)
			}
		}
		if err := ds.Append(rec); err != nil {
			return nil, fmt.Errorf("parse error %s:%d: %w", name, line, err)
		}
	}
	return ds, nil
}

func columnSetter(col, currency string) (recordSetter, error) {
	money := func(field func(*Record) *Money) recordSetter {
		return func(r *Record, cell string) error {
			v, err := decimal.NewFromString(cell)
			if err != nil {
				return err
			}
			*field(r) = M(v, currency)
			return nil
		}
	}
	ratio := func(field func(*Record) *Ratio) recordSetter {
		return func(r *Record, cell string) error {
			if cell == "" {
				return nil
			}
			v, err := decimal.NewFromString(cell)
			if err != nil {
				return err
			}
			*field(r) = R(v)
			return nil
		}
	}
	switch col {
	case ColDate:
		return func(r *Record, cell string) (err error) {
			r.Date, err = date.Parse(cell)
			return err
		}, nil
	case ColRevenue:
		return money(func(r *Record) *Money { return &r.Revenue }), nil
	case ColProfit:
		return money(func(r *Record) *Money { return &r.Profit }), nil
	case ColCashInflow:
		return money(func(r *Record) *Money { return &r.CashInflow }), nil
	case ColCashOutflow:
		return money(func(r *Record) *Money { return &r.CashOutflow }), nil
	case ColCurrentRatio:
		return ratio(func(r *Record) *Ratio { return &r.CurrentRatio }), nil
	case ColQuickRatio:
		return ratio(func(r *Record) *Ratio { return &r.QuickRatio }), nil
	case ColDebtToEquity:
		return ratio(func(r *Record) *Ratio { return &r.DebtToEquity }), nil
	case ColGrossMargin:
		return ratio(func(r *Record) *Ratio { return &r.GrossMargin }), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownColumn, col)
	}
}

func expenseSetter(i int, currency string) recordSetter {
	return func(r *Record, cell string) error {
		v, err := decimal.NewFromString(cell)
		if err != nil {
			return err
		}
		r.Expenses[i] = M(v, currency)
		return nil
	}
}

// ReadCSVFile decodes the dataset stored in a CSV file.
func ReadCSVFile(filename, currency string) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeCSV(f, filename, currency)
}

// WriteCSVFile stores the dataset in a CSV file.
//
// The content is written to a temporary file first and then renamed, so that
// readers never observe a partially written file.
func WriteCSVFile(filename string, ds *Dataset) (err error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".findash-*.csv")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	if err := EncodeCSV(tmp, ds); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot encode %q: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
