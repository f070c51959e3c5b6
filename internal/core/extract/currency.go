package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// CurrencyConfidence is attached to the currency field whichever branch of
// ClassifyCurrency fired.
const CurrencyConfidence = 0.85

// CurrencyResult is the classifier output.
type CurrencyResult struct {
	Code      string
	Symbol    string
	Reasoning string
}

var (
	usdMarker     = regexp.MustCompile(`USD|US\$|U\$S`)
	dollarsMarker = regexp.MustCompile(`(?i)\b(?:dollars?|d[oó]lares)\b`)
)

// ClassifyCurrency infers the document currency. Checks run in order and the
// first hit wins: US dollar markers, then Argentine tax markers, then ARS as
// an uncertain default.
func ClassifyCurrency(text string) CurrencyResult {
	switch {
	case usdMarker.MatchString(text) || dollarsMarker.MatchString(text):
		sym, _ := constants.CurrencySymbol("USD")
		return CurrencyResult{
			Code:      "USD",
			Symbol:    sym,
			Reasoning: "El documento menciona dólares estadounidenses (USD/US$).",
		}
	case strings.Contains(text, "CUIT") || strings.Contains(text, "AFIP"):
		sym, _ := constants.CurrencySymbol("ARS")
		return CurrencyResult{
			Code:      "ARS",
			Symbol:    sym,
			Reasoning: "Factura argentina (CUIT/AFIP); se asume peso argentino.",
		}
	default:
		code, sym := constants.CanonicalCurrency(constants.DefaultCurrency)
		return CurrencyResult{
			Code:      code,
			Symbol:    sym,
			Reasoning: "Sin indicios claros de moneda; se usa ARS por defecto con baja certeza.",
		}
	}
}
