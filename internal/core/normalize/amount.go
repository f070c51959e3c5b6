package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var groupingStripper = strings.NewReplacer(".", "", ",", "")

// ParseAmount reads a localized money string. Every "." and "," is dropped
// and the last two remaining digits become the cents. Anything that is not
// a digit run after stripping yields zero.
func ParseAmount(s string) decimal.Decimal {
	digits := groupingStripper.Replace(strings.TrimSpace(s))
	if digits == "" {
		return decimal.Zero
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return decimal.Zero
		}
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	if len(digits) >= 2 {
		d = d.Shift(-2)
	}
	return d
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders d with thousands grouping and two decimals, e.g. 9,136.40.
func FormatAmount(d decimal.Decimal) string {
	return amountPrinter.Sprintf("%.2f", d.Round(2).InexactFloat64())
}
