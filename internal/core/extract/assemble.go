package extract

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Assemble merges a field record with the currency classification into a
// fresh record. The input is not modified.
//
// A known currency already on fields wins over the classifier; the symbol is
// always taken from the fixed table. pointSale is re-derived from
// invoiceNumber, items default to empty, amountNoGrav and amountExen default
// to zero, and confidence or reasoning entries for unpopulated fields are
// dropped.
func Assemble(fields *entity.ExtractedInvoice, cur CurrencyResult) *entity.ExtractedInvoice {
	out := fields.Clone()
	if out == nil {
		out = entity.NewExtractedInvoice()
	}
	if out.Confidence == nil {
		out.Confidence = map[entity.Field]float64{}
	}
	if out.Reasoning == nil {
		out.Reasoning = map[entity.Field]string{}
	}

	if constants.IsKnownCurrency(out.Currency) {
		out.Currency, out.CurrencySymbol = constants.CanonicalCurrency(out.Currency)
		if _, ok := out.Confidence[entity.FieldCurrency]; !ok {
			out.Annotate(entity.FieldCurrency, CurrencyConfidence, "")
		}
	} else {
		out.Currency, out.CurrencySymbol = constants.CanonicalCurrency(cur.Code)
		out.Annotate(entity.FieldCurrency, CurrencyConfidence, cur.Reasoning)
	}

	if out.InvoiceNumber != nil {
		out.PointSale = PointOfSale(*out.InvoiceNumber)
	}
	if out.DocumentDate != nil {
		out.DocumentDate = entity.StringPtr(normalize.NormalizeDate(*out.DocumentDate))
	}
	if out.DueDate != nil {
		out.DueDate = entity.StringPtr(normalize.NormalizeDate(*out.DueDate))
	}
	if out.Items == nil {
		out.Items = []entity.LineItem{}
	}
	if out.AmountNoGrav == nil {
		out.AmountNoGrav = entity.DecimalPtr(decimal.Zero)
	}
	if out.AmountExen == nil {
		out.AmountExen = entity.DecimalPtr(decimal.Zero)
	}
	if out.Client.Empty() {
		out.Client = nil
	}

	for f := range out.Confidence {
		if !out.Populated(f) {
			delete(out.Confidence, f)
		}
	}
	for f := range out.Reasoning {
		if !out.Populated(f) {
			delete(out.Reasoning, f)
		}
	}
	return out
}
