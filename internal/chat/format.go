package chat

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

var titler = cases.Title(language.Spanish)

// fieldLabel turns supplier_cuit into "Supplier Cuit".
func fieldLabel(f entity.Field) string {
	return titler.String(strings.ReplaceAll(string(f), "_", " "))
}

func percent(c float64) string {
	return fmt.Sprintf("%.0f%%", normalize.NormalizeConfidence(c)*100)
}

func money(symbol string, d *decimal.Decimal) string {
	if d == nil {
		return "no detectado"
	}
	if symbol == "" {
		symbol = "$"
	}
	return symbol + normalize.FormatAmount(*d)
}

func orMissing(s *string) string {
	if s == nil || *s == "" {
		return "no detectado"
	}
	return *s
}

// meanConfidence averages the normalized confidence values. ok is false when
// the record carries none.
func meanConfidence(inv *entity.ExtractedInvoice) (float64, bool) {
	if len(inv.Confidence) == 0 {
		return 0, false
	}
	var sum float64
	for _, c := range inv.Confidence {
		sum += normalize.NormalizeConfidence(c)
	}
	return sum / float64(len(inv.Confidence)), true
}

// orderedConfidence walks the confidence map in record field order.
func orderedConfidence(inv *entity.ExtractedInvoice, fn func(f entity.Field, c float64)) {
	for _, f := range entity.AllFields {
		if c, ok := inv.Confidence[f]; ok {
			fn(f, normalize.NormalizeConfidence(c))
		}
	}
}
