package findash

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/findash/date"
	"github.com/shopspring/decimal"
)

// Title is the title of the dashboard.
const Title = "Financial CEO Dashboard"

// Chart identifiers, in display order.
const (
	ChartRollingRevenue      = "rolling-revenue"
	ChartRollingProfit       = "rolling-profit"
	ChartMonthlyProfit       = "monthly-profit"
	ChartExpenseDistribution = "expense-distribution"
)

// ChartKind is the type of plot used to display a figure.
type ChartKind string

const (
	Line ChartKind = "line"
	Bar  ChartKind = "bar"
	Pie  ChartKind = "pie"
)

// Theme selects the colour palette of rendered charts and pages.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// ParseTheme parses a theme name.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case Dark, Light:
		return t, nil
	case "":
		return Dark, nil
	default:
		return Dark, fmt.Errorf("unknown theme %q (want %q or %q)", s, Dark, Light)
	}
}

// Options tune how a dashboard is computed.
type Options struct {
	RollingWindow int // number of rows summed by the rolling charts
	TableRows     int // number of rows displayed in the table
	Theme         Theme
}

// DefaultOptions returns a 30 days rolling window, 12 table rows and the dark theme.
func DefaultOptions() Options {
	return Options{RollingWindow: 30, TableRows: 12, Theme: Dark}
}

// Figure is the data of one chart.
type Figure struct {
	ID     string
	Title  string
	Kind   ChartKind
	Series string // name of the plotted series
	// Dates are the x values of line charts.
	Dates []date.Date
	// Labels are the categories of bar and pie charts.
	Labels []string
	// Values are aligned with Dates or Labels; invalid values are not plotted.
	Values []decimal.NullDecimal
}

// Points returns the number of valid values.
func (f Figure) Points() int {
	n := 0
	for _, v := range f.Values {
		if v.Valid {
			n++
		}
	}
	return n
}

// Last returns the last valid value of the figure.
func (f Figure) Last() (decimal.Decimal, bool) {
	for i := len(f.Values) - 1; i >= 0; i-- {
		if f.Values[i].Valid {
			return f.Values[i].Decimal, true
		}
	}
	return decimal.Zero, false
}

// MarshalJSON encodes the figure as a plotly compatible figure.
func (f Figure) MarshalJSON() ([]byte, error) {
	x := make([]string, 0, len(f.Values))
	for _, d := range f.Dates {
		x = append(x, d.String())
	}
	x = append(x, f.Labels...)

	y := make([]*float64, len(f.Values))
	for i, v := range f.Values {
		if v.Valid {
			fv := v.Decimal.InexactFloat64()
			y[i] = &fv
		}
	}

	var trace jsonObjectWriter
	switch f.Kind {
	case Line:
		trace.Append("type", "scatter").Append("mode", "lines")
	default:
		trace.Append("type", string(f.Kind))
	}
	trace.Optional("name", f.Series)
	if f.Kind == Pie {
		trace.Append("labels", x).Append("values", y)
	} else {
		trace.Append("x", x).Append("y", y)
	}
	rawTrace, err := trace.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var w jsonObjectWriter
	w.Append("id", f.ID)
	w.Append("title", f.Title)
	w.Append("kind", f.Kind)
	w.AppendRaw("data", append(append([]byte{'['}, rawTrace...), ']'))
	w.Append("layout", map[string]any{"title": map[string]any{"text": f.Title, "x": 0.5}})
	return w.MarshalJSON()
}

// Table is the most recent rows of the dataset, newest first.
type Table struct {
	Header []string
	Rows   [][]string
}

// Dashboard is every view derived from a dataset.
type Dashboard struct {
	Title   string
	Options Options
	Span    date.Range
	Records int
	KPIs    KPIs
	Charts  []Figure
	Table   Table
}

// NewDashboard computes the KPIs, charts and table of a dataset.
func NewDashboard(ds *Dataset, opts Options) (*Dashboard, error) {
	if opts.RollingWindow <= 0 {
		return nil, fmt.Errorf("invalid rolling window %d", opts.RollingWindow)
	}
	if opts.TableRows < 0 {
		return nil, fmt.Errorf("invalid number of table rows %d", opts.TableRows)
	}
	d := &Dashboard{
		Title:   Title,
		Options: opts,
		Records: ds.Len(),
		KPIs:    ComputeKPIs(ds),
	}
	d.Span, _ = ds.Span()

	dates := ds.Dates()
	for _, build := range []func() (Figure, error){
		func() (Figure, error) {
			return rollingFigure(ds, dates, ColRevenue, opts.RollingWindow,
				ChartRollingRevenue, fmt.Sprintf("Rolling %d Day Revenue", opts.RollingWindow))
		},
		func() (Figure, error) {
			return rollingFigure(ds, dates, ColProfit, opts.RollingWindow,
				ChartRollingProfit, "Profit Over Time")
		},
		func() (Figure, error) { return monthlyProfitFigure(ds, dates) },
		func() (Figure, error) { return expenseFigure(ds) },
	} {
		fig, err := build()
		if err != nil {
			return nil, err
		}
		d.Charts = append(d.Charts, fig)
	}

	d.Table.Header = ds.Columns()
	for _, r := range ds.Latest(opts.TableRows) {
		d.Table.Rows = append(d.Table.Rows, ds.Cells(r))
	}
	return d, nil
}

func rollingFigure(ds *Dataset, dates []date.Date, col string, window int, id, title string) (Figure, error) {
	values, err := ds.Column(col)
	if err != nil {
		return Figure{}, err
	}
	rolled, err := RollingSum(values, window)
	if err != nil {
		return Figure{}, err
	}
	return Figure{ID: id, Title: title, Kind: Line, Series: col, Dates: dates, Values: rolled}, nil
}

func monthlyProfitFigure(ds *Dataset, dates []date.Date) (Figure, error) {
	profit, err := ds.Column(ColProfit)
	if err != nil {
		return Figure{}, err
	}
	months, err := MonthlySum(dates, profit)
	if err != nil {
		return Figure{}, err
	}
	fig := Figure{ID: ChartMonthlyProfit, Title: "Monthly Profit", Kind: Bar, Series: ColProfit}
	for m := time.January; m <= time.December; m++ {
		fig.Labels = append(fig.Labels, m.String()[:3])
		fig.Values = append(fig.Values, decimal.NewNullDecimal(months[m-time.January]))
	}
	return fig, nil
}

func expenseFigure(ds *Dataset) (Figure, error) {
	totals, err := ExpenseTotals(ds)
	if err != nil {
		return Figure{}, err
	}
	fig := Figure{ID: ChartExpenseDistribution, Title: "Expense Distribution", Kind: Pie}
	for _, t := range totals {
		fig.Labels = append(fig.Labels, t.Column)
		fig.Values = append(fig.Values, decimal.NewNullDecimal(t.Amount.Decimal()))
	}
	return fig, nil
}

// Chart returns the figure with the given identifier.
func (d *Dashboard) Chart(id string) (Figure, error) {
	for _, f := range d.Charts {
		if f.ID == id {
			return f, nil
		}
	}
	return Figure{}, fmt.Errorf("%w %q", ErrUnknownChart, id)
}

// MarshalJSON encodes the dashboard with a stable field order.
func (d *Dashboard) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("title", d.Title)
	w.Append("records", d.Records)
	if d.Records > 0 {
		w.Append("from", d.Span.From).Append("to", d.Span.To)
	}
	w.Append("rollingWindow", d.Options.RollingWindow)
	w.Append("kpis", d.KPIs)
	charts := make([]json.RawMessage, 0, len(d.Charts))
	for _, f := range d.Charts {
		raw, err := f.MarshalJSON()
		if err != nil {
			return nil, err
		}
		charts = append(charts, raw)
	}
	w.Append("charts", charts)
	w.Append("table", map[string]any{"header": d.Table.Header, "rows": nonNil(d.Table.Rows)})
	return w.MarshalJSON()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
