package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders numbers with Indian digit grouping (lakh/crore).
var printer = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders a rupee amount with grouping and no decimals.
func FormatINR(amount float64) string {
	return printer.Sprintf("₹%.0f", amount)
}

// FormatQuantity renders a measurement with grouping and the given decimals.
func FormatQuantity(value float64, decimals int) string {
	return printer.Sprintf("%.*f", decimals, value)
}
