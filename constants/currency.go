package constants

import "strings"

// DefaultCurrency is used whenever classification is inconclusive.
const DefaultCurrency = "ARS"

// currencySymbols is the fixed display table. Symbols are not unique.
var currencySymbols = map[string]string{
	"ARS": "$",
	"USD": "US$",
	"EUR": "€",
	"MXN": "$",
	"BRL": "R$",
	"CLP": "$",
	"UYU": "$U",
	"COP": "$",
	"PEN": "S/",
}

// CurrencySymbol returns the display symbol for an ISO code.
func CurrencySymbol(code string) (string, bool) {
	sym, ok := currencySymbols[strings.ToUpper(strings.TrimSpace(code))]
	return sym, ok
}

// IsKnownCurrency reports whether code belongs to the supported set.
func IsKnownCurrency(code string) bool {
	_, ok := CurrencySymbol(code)
	return ok
}

// CanonicalCurrency returns the upper-cased code when it is known and
// DefaultCurrency otherwise, along with its symbol.
func CanonicalCurrency(code string) (string, string) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if sym, ok := currencySymbols[c]; ok {
		return c, sym
	}
	return DefaultCurrency, currencySymbols[DefaultCurrency]
}

// Currencies lists the supported codes (unordered).
func Currencies() []string {
	out := make([]string, 0, len(currencySymbols))
	for c := range currencySymbols {
		out = append(out, c)
	}
	return out
}
