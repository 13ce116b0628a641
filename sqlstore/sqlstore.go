// Package sqlstore persists datasets in a SQLite database.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/etnz/findash"
	"github.com/etnz/findash/date"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
    date           TEXT PRIMARY KEY,
    revenue        TEXT NOT NULL,
    profit         TEXT NOT NULL,
    cash_inflow    TEXT NOT NULL,
    cash_outflow   TEXT NOT NULL,
    current_ratio  TEXT NOT NULL,
    quick_ratio    TEXT NOT NULL,
    debt_to_equity TEXT NOT NULL,
    gross_margin   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS expenses (
    date     TEXT NOT NULL REFERENCES records(date) ON DELETE CASCADE,
    category TEXT NOT NULL,
    amount   TEXT NOT NULL,
    PRIMARY KEY (date, category)
);`

const (
	metaCurrency   = "currency"
	metaCategories = "categories"
)

// DB is a dataset stored in SQLite. It implements findash.Source and findash.Sink.
//
// Amounts are stored as decimal strings to keep them exact.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (s *DB) Close() error { return s.db.Close() }

// Save replaces the stored dataset, in a single transaction.
func (s *DB) Save(ctx context.Context, ds *findash.Dataset) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range []string{"DELETE FROM expenses", "DELETE FROM records", "DELETE FROM meta"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	categories, err := json.Marshal(ds.Categories())
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO meta(key, value) VALUES (?, ?), (?, ?)",
		metaCurrency, ds.Currency(), metaCategories, string(categories)); err != nil {
		return err
	}

	insertRecord, err := tx.PrepareContext(ctx, `INSERT INTO records
        (date, revenue, profit, cash_inflow, cash_outflow, current_ratio, quick_ratio, debt_to_equity, gross_margin)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertRecord.Close()
	insertExpense, err := tx.PrepareContext(ctx, "INSERT INTO expenses(date, category, amount) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer insertExpense.Close()

	cats := ds.Categories()
	for _, r := range ds.Records() {
		day := r.Date.String()
		if _, err := insertRecord.ExecContext(ctx, day,
			r.Revenue.Decimal().String(), r.Profit.Decimal().String(),
			r.CashInflow.Decimal().String(), r.CashOutflow.Decimal().String(),
			r.CurrentRatio.String(), r.QuickRatio.String(),
			r.DebtToEquity.String(), r.GrossMargin.String()); err != nil {
			return fmt.Errorf("cannot insert record %s: %w", day, err)
		}
		for i, e := range r.Expenses {
			if _, err := insertExpense.ExecContext(ctx, day, cats[i], e.Decimal().String()); err != nil {
				return fmt.Errorf("cannot insert %s expense of %s: %w", cats[i], day, err)
			}
		}
	}
	return tx.Commit()
}

// Load rebuilds the stored dataset.
func (s *DB) Load(ctx context.Context) (*findash.Dataset, error) {
	meta := map[string]string{}
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, err
		}
		meta[k] = v
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	cur, ok := meta[metaCurrency]
	if !ok {
		return nil, fmt.Errorf("database holds no dataset: %w", findash.ErrEmptyDataset)
	}
	var categories []string
	if err := json.Unmarshal([]byte(meta[metaCategories]), &categories); err != nil {
		return nil, fmt.Errorf("invalid categories %q: %w", meta[metaCategories], err)
	}
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c] = i
	}

	expenses, err := s.loadExpenses(ctx, cur, index)
	if err != nil {
		return nil, err
	}

	ds := findash.NewDataset(cur, categories...)
	rows, err = s.db.QueryContext(ctx, `SELECT date, revenue, profit, cash_inflow, cash_outflow,
        current_ratio, quick_ratio, debt_to_equity, gross_margin FROM records ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var day string
		var cols [8]string
		if err := rows.Scan(&day, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5], &cols[6], &cols[7]); err != nil {
			return nil, err
		}
		var values [8]decimal.Decimal
		for i, c := range cols {
			if values[i], err = decimal.NewFromString(c); err != nil {
				return nil, fmt.Errorf("record %s: %w", day, err)
			}
		}
		on, err := date.Parse(day)
		if err != nil {
			return nil, err
		}
		exp, ok := expenses[day]
		if !ok {
			exp = make([]findash.Money, len(categories))
		}
		for i := range exp {
			if exp[i].Currency() == "" {
				exp[i] = findash.M(0, cur)
			}
		}
		err = ds.Append(findash.Record{
			Date:         on,
			Revenue:      findash.M(values[0], cur),
			Profit:       findash.M(values[1], cur),
			CashInflow:   findash.M(values[2], cur),
			CashOutflow:  findash.M(values[3], cur),
			CurrentRatio: findash.R(values[4]),
			QuickRatio:   findash.R(values[5]),
			DebtToEquity: findash.R(values[6]),
			GrossMargin:  findash.R(values[7]),
			Expenses:     exp,
		})
		if err != nil {
			return nil, err
		}
	}
	return ds, rows.Err()
}

func (s *DB) loadExpenses(ctx context.Context, cur string, index map[string]int) (map[string][]findash.Money, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date, category, amount FROM expenses")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	expenses := make(map[string][]findash.Money)
	for rows.Next() {
		var day, category, amount string
		if err := rows.Scan(&day, &category, &amount); err != nil {
			return nil, err
		}
		i, ok := index[category]
		if !ok {
			return nil, fmt.Errorf("expense of %s: unknown category %q", day, category)
		}
		v, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("expense of %s: %w", day, err)
		}
		if expenses[day] == nil {
			expenses[day] = make([]findash.Money, len(index))
		}
		expenses[day][i] = findash.M(v, cur)
	}
	return expenses, rows.Err()
}
