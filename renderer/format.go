package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/findash"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Cell formats a table cell for display: integers get thousands separators,
// anything else is left untouched.
func Cell(s string) string {
	if strings.ContainsAny(s, ".eE") {
		return s
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return s
	}
	return printer.Sprint(number.Decimal(n))
}

// Amount formats a chart value with thousands separators and no decimals.
func Amount(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// Highlight summarizes a figure in a few words.
//
// Line charts show their last value, bar and pie charts their largest entry.
func Highlight(f findash.Figure) string {
	if f.Kind == findash.Line {
		last, ok := f.Last()
		if !ok {
			return "n/a"
		}
		return Amount(last.InexactFloat64())
	}
	best := -1
	var max decimal.Decimal
	for i, v := range f.Values {
		if !v.Valid || i >= len(f.Labels) {
			continue
		}
		if best < 0 || v.Decimal.GreaterThan(max) {
			best, max = i, v.Decimal
		}
	}
	if best < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%s (%s)", f.Labels[best], Amount(max.InexactFloat64()))
}
