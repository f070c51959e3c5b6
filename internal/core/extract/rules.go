package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/normalize"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// rule is one entry of the pattern catalog. Confidence is fixed per rule and
// does not depend on how well the text matched.
type rule struct {
	field      entity.Field
	pattern    *regexp.Regexp
	confidence float64
	// apply stores the first capture group on inv and returns the reasoning.
	apply func(inv *entity.ExtractedInvoice, capture string) string
}

// catalog is evaluated in order, once per document. Rules are independent.
var catalog = []rule{
	{
		field:      entity.FieldSupplierCUIT,
		pattern:    regexp.MustCompile(`CUIT[:\s]+(\d{2}-\d{8}-\d)`),
		confidence: 0.98,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			inv.Supplier.CUIT = entity.StringPtr(v)
			return fmt.Sprintf("CUIT %q encontrado junto a la etiqueta CUIT del encabezado.", v)
		},
	},
	{
		field:      entity.FieldSupplierName,
		pattern:    regexp.MustCompile(`([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ0-9&\. \t]*?(?:S\.R\.L\.|S\.A\.))`),
		confidence: 0.95,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			name := strings.TrimSpace(v)
			inv.Supplier.Name = entity.StringPtr(name)
			return fmt.Sprintf("Razón social %q reconocida por su sufijo societario.", name)
		},
	},
	{
		field:      entity.FieldInvoiceNumber,
		pattern:    regexp.MustCompile(`(?i)Factura\s+N[°ºro\.]+\s*[:\s]*(\d+-\d+)`),
		confidence: 0.98,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			inv.InvoiceNumber = entity.StringPtr(v)
			inv.PointSale = PointOfSale(v)
			return fmt.Sprintf("Número de factura %q con formato punto de venta-número.", v)
		},
	},
	{
		field:      entity.FieldInvoiceType,
		pattern:    regexp.MustCompile(`C[OÓ]DIGO\s+(?:N[°º]?\s*)?(\d{2})`),
		confidence: 0.99,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			letter := constants.InvoiceTypeFromAFIPCode(v)
			inv.InvoiceType = entity.StringPtr(letter)
			if letter == v {
				return fmt.Sprintf("Código AFIP %s sin letra asociada; se conserva el código.", v)
			}
			return fmt.Sprintf("Código AFIP %s corresponde a Factura %s.", v, letter)
		},
	},
	{
		field:      entity.FieldCAE,
		pattern:    regexp.MustCompile(`(?i)\bC\.?A\.?E\.?\s*(?:N[°º\.]?|Nro\.?)?\s*[:\s]*(\d{8,})`),
		confidence: 0.97,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			inv.CAE = entity.StringPtr(v)
			return fmt.Sprintf("CAE %s: autorización electrónica emitida por AFIP.", v)
		},
	},
	{
		field:      entity.FieldDocumentDate,
		pattern:    regexp.MustCompile(`(?i)Fecha\s+de\s+Emisi[oó]n[:\s]+(\d{1,2}/\d{1,2}/\d{4})`),
		confidence: 0.98,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			inv.DocumentDate = entity.StringPtr(normalize.NormalizeDate(v))
			return fmt.Sprintf("Fecha de emisión %s tomada del encabezado.", v)
		},
	},
	{
		field:      entity.FieldDueDate,
		pattern:    regexp.MustCompile(`(?i)Vencimiento[:\s]+(\d{1,2}/\d{1,2}/\d{4})`),
		confidence: 0.95,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			inv.DueDate = entity.StringPtr(normalize.NormalizeDate(v))
			return fmt.Sprintf("Fecha de vencimiento %s indicada para el pago.", v)
		},
	},
	{
		field:      entity.FieldAmount,
		pattern:    regexp.MustCompile(`(?i)Total\s+(?:Factura|a\s+Pagar)[:\s]*(?:US\$|U\$S|\$)?\s*(\d[\d,\.]*)`),
		confidence: 0.99,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			amt := normalize.ParseAmount(v)
			inv.Amount = entity.DecimalPtr(amt)
			return fmt.Sprintf("Total de $%s leído en el pie de la factura.", normalize.FormatAmount(amt))
		},
	},
	{
		field:      entity.FieldIVA,
		pattern:    regexp.MustCompile(`(?i)Impuesto\s+Interno[:\s]*\$?\s*(\d[\d,\.]*)`),
		confidence: 0.95,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			amt := normalize.ParseAmount(v)
			inv.IVA = entity.DecimalPtr(amt)
			return fmt.Sprintf("Impuestos de $%s identificados en el desglose.", normalize.FormatAmount(amt))
		},
	},
	{
		field:      entity.FieldAmountGrav,
		pattern:    regexp.MustCompile(`(?i)Subtotal[:\s]*\$?\s*(\d[\d,\.]*)`),
		confidence: 0.92,
		apply: func(inv *entity.ExtractedInvoice, v string) string {
			amt := normalize.ParseAmount(v)
			inv.AmountGrav = entity.DecimalPtr(amt)
			return fmt.Sprintf("Subtotal gravado de $%s.", normalize.FormatAmount(amt))
		},
	},
}

// RuleConfidence returns the fixed confidence of the rule that fills f.
func RuleConfidence(f entity.Field) (float64, bool) {
	for _, r := range catalog {
		if r.field == f {
			return r.confidence, true
		}
	}
	return 0, false
}

// RuleFields lists the fields covered by the catalog, in evaluation order.
func RuleFields() []entity.Field {
	out := make([]entity.Field, len(catalog))
	for i, r := range catalog {
		out[i] = r.field
	}
	return out
}

// PointOfSale returns the prefix of an invoice number before the first "-",
// or nil when there is no dash.
func PointOfSale(invoiceNumber string) *string {
	prefix, _, found := strings.Cut(invoiceNumber, "-")
	if !found || prefix == "" {
		return nil
	}
	return entity.StringPtr(prefix)
}
