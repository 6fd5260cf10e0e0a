package utils

import (
	"golang.org/x/text/language" // Locale tags
	"golang.org/x/text/message"  // Locale-aware number formatting
)

var usd = message.NewPrinter(language.English)

// FormatUSD renders an amount as dollars with thousands separators, e.g. $1,234.50
func FormatUSD(v float64) string {
	return usd.Sprintf("$%.2f", v)
}
