package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/etnz/findash"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart dimensions, in pixels.
const (
	chartWidth  = 720
	chartHeight = 360
)

// palette is the set of colours of a theme.
type palette struct {
	background drawing.Color
	text       drawing.Color
	grid       drawing.Color
	series     []drawing.Color
}

var seriesColors = []drawing.Color{
	drawing.ColorFromHex("636efa"),
	drawing.ColorFromHex("ef553b"),
	drawing.ColorFromHex("00cc96"),
	drawing.ColorFromHex("ab63fa"),
	drawing.ColorFromHex("ffa15a"),
	drawing.ColorFromHex("19d3f3"),
	drawing.ColorFromHex("ff6692"),
	drawing.ColorFromHex("b6e880"),
}

var palettes = map[findash.Theme]palette{
	findash.Dark: {
		background: drawing.ColorFromHex("111111"),
		text:       drawing.ColorFromHex("f2f5fa"),
		grid:       drawing.ColorFromHex("283442"),
		series:     seriesColors,
	},
	findash.Light: {
		background: drawing.ColorWhite,
		text:       drawing.ColorFromHex("2a3f5f"),
		grid:       drawing.ColorFromHex("e5ecf6"),
		series:     seriesColors,
	},
}

func paletteOf(theme findash.Theme) palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[findash.Dark]
}

func (p palette) color(i int) drawing.Color { return p.series[i%len(p.series)] }

func (p palette) titleStyle() chart.Style {
	return chart.Style{FontColor: p.text, FontSize: 14}
}

func (p palette) backgroundStyle() chart.Style {
	return chart.Style{
		FillColor: p.background,
		Padding:   chart.Box{Top: 56, Left: 16, Right: 24, Bottom: 16},
	}
}

func (p palette) axisStyle() chart.Style {
	return chart.Style{FontColor: p.text, StrokeColor: p.grid, FontSize: 9}
}

// ChartSVG renders a figure as an SVG image.
//
// Figures without enough data to be plotted are rendered as a titled
// placeholder.
func ChartSVG(w io.Writer, fig findash.Figure, theme findash.Theme) error {
	p := paletteOf(theme)
	switch fig.Kind {
	case findash.Line:
		return lineSVG(w, fig, p)
	case findash.Bar:
		return barSVG(w, fig, p)
	case findash.Pie:
		return pieSVG(w, fig, p)
	default:
		return fmt.Errorf("unsupported chart kind %q", fig.Kind)
	}
}

func amountFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return Amount(f)
	}
	return ""
}

func lineSVG(w io.Writer, fig findash.Figure, p palette) error {
	var xs []time.Time
	var ys []float64
	for i, v := range fig.Values {
		if !v.Valid || i >= len(fig.Dates) {
			continue
		}
		xs = append(xs, fig.Dates[i].Time())
		ys = append(ys, v.Decimal.InexactFloat64())
	}
	if len(xs) < 2 {
		return placeholderSVG(w, fig.Title, "Not enough data to plot.", p)
	}

	c := chart.Chart{
		Title:      fig.Title,
		TitleStyle: p.titleStyle(),
		Width:      chartWidth,
		Height:     chartHeight,
		Background: p.backgroundStyle(),
		Canvas:     chart.Style{FillColor: p.background},
		XAxis: chart.XAxis{
			Style:          p.axisStyle(),
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			Style:          p.axisStyle(),
			ValueFormatter: amountFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    fig.Series,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: p.color(0), StrokeWidth: 2},
			},
		},
	}
	// a flat series has no range to scale on
	if lo, hi := bounds(ys); lo == hi {
		c.YAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return c.Render(chart.SVG, w)
}

func barSVG(w io.Writer, fig findash.Figure, p palette) error {
	var bars []chart.Value
	var ys []float64
	for i, v := range fig.Values {
		if !v.Valid || i >= len(fig.Labels) {
			continue
		}
		y := v.Decimal.InexactFloat64()
		ys = append(ys, y)
		bars = append(bars, chart.Value{
			Label: fig.Labels[i],
			Value: y,
			Style: chart.Style{FillColor: p.color(0), StrokeColor: p.color(0)},
		})
	}
	if len(bars) == 0 {
		return placeholderSVG(w, fig.Title, "Not enough data to plot.", p)
	}
	lo, hi := bounds(ys)
	lo, hi = min(lo, 0), max(hi, 0)
	if lo == hi {
		hi = lo + 1
	}

	c := chart.BarChart{
		Title:      fig.Title,
		TitleStyle: p.titleStyle(),
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   36,
		BarSpacing: 12,
		Background: p.backgroundStyle(),
		Canvas:     chart.Style{FillColor: p.background},
		XAxis:      p.axisStyle(),
		YAxis: chart.YAxis{
			Style:          p.axisStyle(),
			ValueFormatter: amountFormatter,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		},
		UseBaseValue: lo < 0,
		BaseValue:    0,
		Bars:         bars,
	}
	return c.Render(chart.SVG, w)
}

func pieSVG(w io.Writer, fig findash.Figure, p palette) error {
	var values []chart.Value
	for i, v := range fig.Values {
		if !v.Valid || !v.Decimal.IsPositive() || i >= len(fig.Labels) {
			continue
		}
		values = append(values, chart.Value{
			Label: fig.Labels[i],
			Value: v.Decimal.InexactFloat64(),
			Style: chart.Style{FillColor: p.color(i), StrokeColor: p.background, FontColor: p.text},
		})
	}
	if len(values) == 0 {
		return placeholderSVG(w, fig.Title, "No expenses to plot.", p)
	}

	c := chart.PieChart{
		Title:      fig.Title,
		TitleStyle: p.titleStyle(),
		Width:      chartHeight,
		Height:     chartHeight,
		Background: p.backgroundStyle(),
		Canvas:     chart.Style{FillColor: p.background},
		Values:     values,
	}
	return c.Render(chart.SVG, w)
}

// placeholderSVG draws a titled message instead of a chart.
func placeholderSVG(w io.Writer, title, msg string, p palette) error {
	r, err := chart.SVG(chartWidth, chartHeight)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFillColor(p.background)
	r.MoveTo(0, 0)
	r.LineTo(chartWidth, 0)
	r.LineTo(chartWidth, chartHeight)
	r.LineTo(0, chartHeight)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(p.text)
	r.SetFontSize(14)
	r.Text(title, 16, 32)
	r.SetFontSize(11)
	r.Text(msg, 16, chartHeight/2)
	return r.Save(w)
}

func bounds(values []float64) (lo, hi float64) {
	for i, v := range values {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	return lo, hi
}
