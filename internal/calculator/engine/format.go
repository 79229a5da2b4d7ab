package engine

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders a dollar amount for result emails and summaries,
// rounded to whole dollars with thousands separators.
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return currencyPrinter.Sprintf("$%d", int64(math.Round(amount)))
}
