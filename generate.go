package findash

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/etnz/findash/date"
)

// DefaultDays is the number of days a generated dataset spans.
const DefaultDays = 365

// DefaultCurrency is the currency of generated datasets.
const DefaultCurrency = "USD"

// bounds is a half-open [lo, hi) interval for integer draws.
type bounds struct{ lo, hi int }

// Generation bounds, upper bound excluded.
var (
	revenueBounds = bounds{50_000, 150_000}
	costBounds    = bounds{20_000, 100_000} // profit = revenue - cost
	expenseBounds = bounds{5_000, 30_000}
	extraInflow   = bounds{10_000, 50_000} // inflow = revenue + extra
	currentRatio  = [2]float64{1.0, 3.0}
	quickRatio    = [2]float64{0.8, 2.5}
	debtToEquity  = [2]float64{0.5, 2.0}
	grossMargin   = [2]float64{0.2, 0.6}
)

// Generator produces synthetic daily financial datasets.
//
// Its zero value generates DefaultDays days ending yesterday, with the
// DefaultCategories in DefaultCurrency, from a random seed.
type Generator struct {
	Days       int       // number of daily records
	End        date.Date // first day after the generated range, defaults to today
	Categories []string  // expense categories
	Currency   string
	Seed       uint64 // 0 picks a time based seed
}

// Generate builds a new dataset.
func (g Generator) Generate() (*Dataset, error) {
	days := g.Days
	if days == 0 {
		days = DefaultDays
	}
	if days < 0 {
		return nil, fmt.Errorf("invalid number of days %d", days)
	}
	end := g.End
	if end.IsZero() {
		end = date.Today()
	}
	categories := g.Categories
	if categories == nil {
		categories = DefaultCategories
	}
	if err := ValidateCategories(categories); err != nil {
		return nil, err
	}
	cur := g.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	if !KnownCurrency(cur) {
		return nil, fmt.Errorf("unknown currency %q", cur)
	}
	seed := g.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	intn := func(b bounds) int { return b.lo + rng.IntN(b.hi-b.lo) }
	uniform := func(b [2]float64) Ratio { return R(b[0] + rng.Float64()*(b[1]-b[0])) }

	ds := NewDataset(cur, categories...)
	for on := range date.LastDays(end, days).Days() {
		revenue := intn(revenueBounds)
		profit := revenue - intn(costBounds)
		inflow := revenue + intn(extraInflow)
		rec := Record{
			Date:         on,
			Revenue:      M(revenue, cur),
			Profit:       M(profit, cur),
			CashInflow:   M(inflow, cur),
			CashOutflow:  M(inflow-profit, cur),
			CurrentRatio: uniform(currentRatio),
			QuickRatio:   uniform(quickRatio),
			DebtToEquity: uniform(debtToEquity),
			GrossMargin:  uniform(grossMargin),
			Expenses:     make([]Money, len(categories)),
		}
		for i := range categories {
			rec.Expenses[i] = M(intn(expenseBounds), cur)
		}
		if err := ds.Append(rec); err != nil {
			return nil, err
		}
	}
	return ds, nil
}
